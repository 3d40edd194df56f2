package migrations

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName holds one record per applied migration
const CollectionName = "_migrations"

// Migration is the record stored for an applied migration
type Migration struct {
	Version     string    `bson:"version"`
	Description string    `bson:"description"`
	AppliedAt   time.Time `bson:"applied_at"`
	Checksum    string    `bson:"checksum"`
}

// MigrationFunc defines a migration function signature
type MigrationFunc func(ctx context.Context, db *mongo.Database) error

// RegisteredMigration holds migration metadata and functions. Down is optional.
type RegisteredMigration struct {
	Version     string
	Description string
	Up          MigrationFunc
	Down        MigrationFunc
}

// Status describes one registered migration against the applied records
type Status struct {
	Version     string     `json:"version"`
	Description string     `json:"description"`
	Applied     bool       `json:"applied"`
	AppliedAt   *time.Time `json:"applied_at,omitempty"`
	Modified    bool       `json:"modified"`
}

// Runner applies registered migrations in version order
type Runner struct {
	db         *mongo.Database
	collection *mongo.Collection
	migrations []RegisteredMigration
}

// NewRunner creates a new migration runner
func NewRunner(db *mongo.Database) *Runner {
	return &Runner{
		db:         db,
		collection: db.Collection(CollectionName),
	}
}

// Register adds a migration to the runner
func (r *Runner) Register(migration RegisteredMigration) {
	r.migrations = append(r.migrations, migration)
	sort.SliceStable(r.migrations, func(i, j int) bool { return r.migrations[i].Version < r.migrations[j].Version })
}

// Migrations returns the registered migrations in version order
func (r *Runner) Migrations() []RegisteredMigration {
	return r.migrations
}

// Run applies every pending migration and returns the versions applied.
// Migrations only create indexes, so they run without a transaction and a
// standalone server is enough.
func (r *Runner) Run(ctx context.Context) ([]string, error) {
	if err := r.ensureMigrationsIndex(ctx); err != nil {
		return nil, fmt.Errorf("failed to create migrations index: %w", err)
	}

	applied, err := r.getAppliedMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	var done []string
	for _, migration := range pendingMigrations(r.migrations, applied) {
		slog.InfoContext(ctx, "Running migration", "version", migration.Version, "description", migration.Description)

		if err := migration.Up(ctx, r.db); err != nil {
			return done, fmt.Errorf("migration %s failed: %w", migration.Version, err)
		}

		record := Migration{
			Version:     migration.Version,
			Description: migration.Description,
			AppliedAt:   time.Now().UTC(),
			Checksum:    calculateChecksum(migration),
		}
		if _, err := r.collection.InsertOne(ctx, record); err != nil {
			return done, fmt.Errorf("failed to record migration %s: %w", migration.Version, err)
		}
		done = append(done, migration.Version)
	}

	return done, nil
}

// Rollback reverts the last steps applied migrations, newest first. A
// migration without a Down function is skipped and stays recorded.
func (r *Runner) Rollback(ctx context.Context, steps int) ([]string, error) {
	applied, err := r.getAppliedMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	plan, err := rollbackPlan(r.migrations, applied, steps)
	if err != nil {
		return nil, err
	}

	var reverted []string
	for _, migration := range plan {
		if migration.Down == nil {
			slog.WarnContext(ctx, "Migration has no rollback function, skipping", "version", migration.Version)
			continue
		}

		slog.InfoContext(ctx, "Rolling back migration", "version", migration.Version)
		if err := migration.Down(ctx, r.db); err != nil {
			return reverted, fmt.Errorf("rollback %s failed: %w", migration.Version, err)
		}
		if _, err := r.collection.DeleteOne(ctx, bson.M{"version": migration.Version}); err != nil {
			return reverted, fmt.Errorf("failed to remove migration record %s: %w", migration.Version, err)
		}
		reverted = append(reverted, migration.Version)
	}

	return reverted, nil
}

// Status reports every registered migration and whether it has been applied
func (r *Runner) Status(ctx context.Context) ([]Status, error) {
	applied, err := r.getAppliedMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}
	return statusOf(r.migrations, applied), nil
}

func (r *Runner) ensureMigrationsIndex(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "version", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *Runner) getAppliedMigrations(ctx context.Context) ([]Migration, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "version", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var migrations []Migration
	if err := cursor.All(ctx, &migrations); err != nil {
		return nil, err
	}
	return migrations, nil
}

func pendingMigrations(registered []RegisteredMigration, applied []Migration) []RegisteredMigration {
	done := make(map[string]bool, len(applied))
	for _, m := range applied {
		done[m.Version] = true
	}

	var pending []RegisteredMigration
	for _, m := range registered {
		if !done[m.Version] {
			pending = append(pending, m)
		}
	}
	return pending
}

func rollbackPlan(registered []RegisteredMigration, applied []Migration, steps int) ([]RegisteredMigration, error) {
	if steps > len(applied) {
		steps = len(applied)
	}

	byVersion := make(map[string]RegisteredMigration, len(registered))
	for _, m := range registered {
		byVersion[m.Version] = m
	}

	plan := make([]RegisteredMigration, 0, steps)
	for i := len(applied) - 1; i >= len(applied)-steps; i-- {
		m, ok := byVersion[applied[i].Version]
		if !ok {
			return nil, fmt.Errorf("migration %s not found in registered migrations", applied[i].Version)
		}
		plan = append(plan, m)
	}
	return plan, nil
}

func statusOf(registered []RegisteredMigration, applied []Migration) []Status {
	records := make(map[string]Migration, len(applied))
	for _, m := range applied {
		records[m.Version] = m
	}

	out := make([]Status, 0, len(registered))
	for _, m := range registered {
		s := Status{Version: m.Version, Description: m.Description}
		if rec, ok := records[m.Version]; ok {
			at := rec.AppliedAt
			s.Applied = true
			s.AppliedAt = &at
			s.Modified = rec.Checksum != calculateChecksum(m)
		}
		out = append(out, s)
	}
	return out
}

// calculateChecksum fingerprints the migration metadata
func calculateChecksum(migration RegisteredMigration) string {
	sum := sha256.Sum256([]byte(migration.Version + ":" + migration.Description))
	return hex.EncodeToString(sum[:])
}
