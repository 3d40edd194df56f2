package main

import (
	"context"
	"flag"
	"io"
	"log"
	"log/slog"
	"os"

	"go-guildsync/internal/engine"
	squadservices "go-guildsync/internal/squads/services"
	"go-guildsync/pkg/app"
)

func main() {
	in := flag.String("in", "guild.json", "snapshot file to import")
	reportOut := flag.String("report", "squads.csv", "preset report CSV to write; empty to skip")
	minStars := flag.Int("min-stars", 0, "minimum star level per unit (1-7, 0 to disable)")
	minGear := flag.Int("min-gear", 0, "minimum gear level per unit (1-13, 0 to disable)")
	minUnitPower := flag.String("min-unit-power", "", "minimum power per unit")
	minSquadPower := flag.String("min-squad-power", "", "minimum total squad power")
	flag.Parse()

	ctx := context.Background()

	appCtx, err := app.InitializeApp(ctx, "guildsync")
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer appCtx.Shutdown(ctx)

	eng, err := engine.New(ctx, appCtx)
	if err != nil {
		log.Fatalf("Failed to build engine: %v", err)
	}

	f, err := os.Open(*in)
	if err != nil {
		slog.Error("Failed to open snapshot", "file", *in, "error", err)
		os.Exit(1)
	}
	snap, err := eng.Roster.Service().ImportFrom(ctx, f)
	f.Close()
	if err != nil {
		slog.Error("Import failed", "file", *in, "error", err)
		os.Exit(1)
	}
	slog.Info("Snapshot imported", "file", *in, "players", len(snap.Roster))

	if *reportOut == "" {
		return
	}

	filter := squadservices.FilterInput{}
	if *minStars != 0 {
		filter.MinStars = minStars
	}
	if *minGear != 0 {
		filter.MinGear = minGear
	}
	if *minUnitPower != "" {
		filter.MinUnitPower = minUnitPower
	}
	if *minSquadPower != "" {
		filter.MinSquadPower = minSquadPower
	}

	report, err := eng.Squads.Service().Report(ctx, filter)
	if err != nil {
		slog.Error("Preset report failed", "error", err)
		os.Exit(1)
	}

	out, err := os.Create(*reportOut)
	if err != nil {
		slog.Error("Failed to create report file", "file", *reportOut, "error", err)
		os.Exit(1)
	}
	if err := writeReport(out, report.WriteCSV); err != nil {
		slog.Error("Failed to write report", "file", *reportOut, "error", err)
		os.Exit(1)
	}
	slog.Info("Preset report written", "file", *reportOut, "presets", len(report.Presets), "players", len(report.Rows))
}

func writeReport(f *os.File, write func(io.Writer) error) error {
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
