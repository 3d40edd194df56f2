// Package migrations holds the schema steps for the roster collections.
// Each step records itself from init; cmd/migrate hands them to the runner.
package migrations

import (
	"fmt"

	"go-guildsync/pkg/migrations"
)

// Migration is one schema step. Down may be nil for steps that cannot be undone.
type Migration struct {
	Version     string
	Description string
	Up          migrations.MigrationFunc
	Down        migrations.MigrationFunc
}

var steps []migrations.RegisteredMigration

// Register records a step. Registering a version twice panics.
func Register(m Migration) {
	for _, s := range steps {
		if s.Version == m.Version {
			panic(fmt.Sprintf("migrations: version %s registered twice", m.Version))
		}
	}
	steps = append(steps, migrations.RegisteredMigration{
		Version:     m.Version,
		Description: m.Description,
		Up:          m.Up,
		Down:        m.Down,
	})
}

// RegisterAll hands every recorded step to runner and returns how many there were
func RegisterAll(runner *migrations.Runner) int {
	for _, s := range steps {
		runner.Register(s)
	}
	return len(steps)
}
