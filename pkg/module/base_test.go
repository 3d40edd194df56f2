package module

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedule(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		wantErr bool
	}{
		{"empty spec is a no-op", "", false},
		{"seconds precision", "*/30 * * * * *", false},
		{"malformed", "every day", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewBaseModule("roster")
			defer m.Stop()

			err := m.Schedule(tt.spec, func() {})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestScheduledTaskRuns(t *testing.T) {
	m := NewBaseModule("gamedata")
	ran := make(chan struct{}, 1)
	require.NoError(t, m.Schedule("* * * * * *", func() {
		select {
		case ran <- struct{}{}:
		default:
		}
	}))
	defer m.Stop()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("scheduled task did not run")
	}
}

func TestStartBackgroundTasksReturnsOnStop(t *testing.T) {
	m := NewBaseModule("events")
	assert.Equal(t, "events", m.Name())

	done := make(chan struct{})
	go func() {
		m.StartBackgroundTasks(context.Background())
		close(done)
	}()

	m.Stop()
	m.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("background tasks did not return after Stop")
	}
}

func TestStartBackgroundTasksReturnsOnCancel(t *testing.T) {
	m := NewBaseModule("squads")
	defer m.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m.StartBackgroundTasks(ctx)
}
