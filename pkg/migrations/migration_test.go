package migrations

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

func noop(context.Context, *mongo.Database) error { return nil }

func registered() []RegisteredMigration {
	return []RegisteredMigration{
		{Version: "001_players", Description: "players", Up: noop, Down: noop},
		{Version: "002_guilds", Description: "guilds", Up: noop},
		{Version: "003_reports", Description: "reports", Up: noop, Down: noop},
	}
}

func record(m RegisteredMigration) Migration {
	return Migration{Version: m.Version, Description: m.Description, AppliedAt: time.Unix(100, 0).UTC(), Checksum: calculateChecksum(m)}
}

func versions(ms []RegisteredMigration) []string {
	var out []string
	for _, m := range ms {
		out = append(out, m.Version)
	}
	return out
}

func TestRegisterSortsByVersion(t *testing.T) {
	r := &Runner{}
	all := registered()
	r.Register(all[2])
	r.Register(all[0])
	r.Register(all[1])
	assert.Equal(t, []string{"001_players", "002_guilds", "003_reports"}, versions(r.Migrations()))
}

func TestPendingMigrations(t *testing.T) {
	all := registered()

	tests := []struct {
		name    string
		applied []Migration
		want    []string
	}{
		{"fresh database", nil, []string{"001_players", "002_guilds", "003_reports"}},
		{"partially applied", []Migration{record(all[0])}, []string{"002_guilds", "003_reports"}},
		{"up to date", []Migration{record(all[0]), record(all[1]), record(all[2])}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, versions(pendingMigrations(all, tt.applied)))
		})
	}
}

func TestRollbackPlan(t *testing.T) {
	all := registered()
	applied := []Migration{record(all[0]), record(all[1]), record(all[2])}

	t.Run("newest first", func(t *testing.T) {
		plan, err := rollbackPlan(all, applied, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"003_reports", "002_guilds"}, versions(plan))
	})

	t.Run("steps capped at applied count", func(t *testing.T) {
		plan, err := rollbackPlan(all, applied[:1], 5)
		require.NoError(t, err)
		assert.Equal(t, []string{"001_players"}, versions(plan))
	})

	t.Run("unknown applied version", func(t *testing.T) {
		_, err := rollbackPlan(all, []Migration{{Version: "000_legacy"}}, 1)
		assert.Error(t, err)
	})
}

func TestStatusOf(t *testing.T) {
	all := registered()
	changed := record(all[1])
	changed.Checksum = "stale"

	got := statusOf(all, []Migration{record(all[0]), changed})
	require.Len(t, got, 3)

	assert.True(t, got[0].Applied)
	assert.False(t, got[0].Modified)
	require.NotNil(t, got[0].AppliedAt)

	assert.True(t, got[1].Applied)
	assert.True(t, got[1].Modified)

	assert.False(t, got[2].Applied)
	assert.Nil(t, got[2].AppliedAt)
}

func TestCalculateChecksumStable(t *testing.T) {
	m := registered()[0]
	assert.Equal(t, calculateChecksum(m), calculateChecksum(m))
	assert.Len(t, calculateChecksum(m), 64)
	assert.NotEqual(t, calculateChecksum(m), calculateChecksum(registered()[1]))
}
