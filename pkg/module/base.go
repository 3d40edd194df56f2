package module

import (
	"context"
	"log/slog"
	"sync"

	"github.com/danielgtaylor/huma/v2"
	"github.com/robfig/cron/v3"
)

// Module defines the interface that all application modules implement
type Module interface {
	// Name returns the module name for logging and identification
	Name() string

	// RegisterUnifiedRoutes registers the module's operations under basePath
	RegisterUnifiedRoutes(api huma.API, basePath string)

	// StartBackgroundTasks starts any scheduled work for this module
	StartBackgroundTasks(ctx context.Context)

	// Stop gracefully stops the module and its background tasks
	Stop()
}

// BaseModule provides common functionality for all modules
type BaseModule struct {
	name     string
	stopCh   chan struct{}
	stopOnce sync.Once

	cronMu sync.Mutex
	cron   *cron.Cron
}

// NewBaseModule creates a new base module
func NewBaseModule(name string) *BaseModule {
	return &BaseModule{
		name:   name,
		stopCh: make(chan struct{}),
	}
}

func (b *BaseModule) Name() string {
	return b.name
}

// Schedule registers fn on a seconds-precision cron spec. An empty spec is a no-op.
// The scheduler starts on the first successful registration.
func (b *BaseModule) Schedule(spec string, fn func()) error {
	if spec == "" {
		return nil
	}

	b.cronMu.Lock()
	defer b.cronMu.Unlock()

	if b.cron == nil {
		b.cron = cron.New(cron.WithSeconds())
		b.cron.Start()
	}
	if _, err := b.cron.AddFunc(spec, fn); err != nil {
		return err
	}

	slog.Info("Scheduled task registered", "module", b.name, "schedule", spec)
	return nil
}

// Stop stops the scheduler, waits for running jobs and closes the stop channel
func (b *BaseModule) Stop() {
	b.stopOnce.Do(func() {
		b.cronMu.Lock()
		if b.cron != nil {
			<-b.cron.Stop().Done()
		}
		b.cronMu.Unlock()

		close(b.stopCh)
		slog.Info("Module stopped", "module", b.name)
	})
}

// StartBackgroundTasks blocks until the context is cancelled or the module stops
func (b *BaseModule) StartBackgroundTasks(ctx context.Context) {
	slog.Info("Starting background tasks", "module", b.name)

	select {
	case <-ctx.Done():
		slog.Info("Background tasks context cancelled", "module", b.name)
	case <-b.stopCh:
		slog.Info("Background tasks stopped", "module", b.name)
	}
}
