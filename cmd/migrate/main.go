package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go-guildsync/pkg/app"
	pkgMigrations "go-guildsync/pkg/migrations"

	localMigrations "go-guildsync/migrations"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, status")
		steps   = flag.Int("steps", 1, "Number of migrations to rollback (for down command)")
		dryRun  = flag.Bool("dry-run", false, "Show the status without executing")
		asJSON  = flag.Bool("json", false, "Print status as JSON")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	appCtx, err := app.InitializeApp(ctx, "guildsync-migrate")
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer appCtx.Shutdown(context.Background())

	if appCtx.MongoDB == nil {
		log.Fatal("MONGODB_URI must point at a reachable MongoDB to run migrations")
	}

	runner := pkgMigrations.NewRunner(appCtx.MongoDB.Database)
	localMigrations.RegisterAll(runner)

	if *dryRun && *command != "status" {
		fmt.Println("DRY RUN: no changes will be made")
		*command = "status"
	}

	switch *command {
	case "up":
		applied, err := runner.Run(ctx)
		if err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		fmt.Printf("Applied %d migration(s)\n", len(applied))
		for _, v := range applied {
			fmt.Println("  " + v)
		}

	case "down":
		reverted, err := runner.Rollback(ctx, *steps)
		if err != nil {
			log.Fatalf("Rollback failed: %v", err)
		}
		fmt.Printf("Rolled back %d migration(s)\n", len(reverted))
		for _, v := range reverted {
			fmt.Println("  " + v)
		}

	case "status":
		status, err := runner.Status(ctx)
		if err != nil {
			log.Fatalf("Failed to get migration status: %v", err)
		}
		if *asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(status); err != nil {
				log.Fatalf("Failed to encode status: %v", err)
			}
			return
		}
		printStatus(status)

	default:
		log.Fatalf("Unknown command: %s", *command)
	}
}

func printStatus(status []pkgMigrations.Status) {
	applied := 0
	for _, s := range status {
		state := "pending"
		suffix := ""
		if s.Applied {
			applied++
			state = "applied"
			suffix = " (at " + s.AppliedAt.Format("2006-01-02 15:04:05") + ")"
			if s.Modified {
				suffix += " [modified since applied]"
			}
		}
		fmt.Printf("%-8s %s - %s%s\n", state, s.Version, s.Description, suffix)
	}
	fmt.Printf("\nTotal: %d migrations (%d applied, %d pending)\n", len(status), applied, len(status)-applied)
}
