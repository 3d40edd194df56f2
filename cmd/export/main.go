package main

import (
	"context"
	"flag"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"go-guildsync/internal/engine"
	"go-guildsync/internal/roster/services"
	"go-guildsync/pkg/app"
)

func main() {
	out := flag.String("out", "guild.json", "snapshot file to write")
	csvOut := flag.String("csv", "", "also write the roster power CSV to this file")
	restore := flag.Bool("restore", false, "export the last persisted pull instead of pulling")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appCtx, err := app.InitializeApp(ctx, "guildsync")
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer appCtx.Shutdown(context.Background())

	eng, err := engine.New(ctx, appCtx)
	if err != nil {
		log.Fatalf("Failed to build engine: %v", err)
	}
	svc := eng.Roster.Service()

	if *restore {
		if svc.Snapshot() == nil {
			slog.Error("No persisted pull to export")
			os.Exit(1)
		}
	} else {
		slog.Info("Pulling guild data...")
		if _, err := svc.PullData(ctx); err != nil {
			slog.Error("Guild data pull failed", "error", err)
			os.Exit(1)
		}
	}

	if err := writeFile(*out, svc.Export); err != nil {
		slog.Error("Export failed", "file", *out, "error", err)
		os.Exit(1)
	}
	slog.Info("Snapshot exported", "file", *out, "players", len(svc.Snapshot().Roster))

	if *csvOut != "" {
		snap, err := svc.ReadySnapshot()
		if err != nil {
			slog.Error("Roster not ready for CSV", "error", err)
			os.Exit(1)
		}
		if err := writeFile(*csvOut, func(w io.Writer) error { return services.WriteRosterCSV(w, snap.Roster) }); err != nil {
			slog.Error("CSV export failed", "file", *csvOut, "error", err)
			os.Exit(1)
		}
		slog.Info("Roster CSV written", "file", *csvOut)
	}
}

// writeFile writes through a temp file so a failed export leaves no partial file
func writeFile(path string, write func(io.Writer) error) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
