package repository

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultMaxIdle is how long a session may stay silent before the
	// janitor discards it.
	DefaultMaxIdle = 30 * time.Minute
	// DefaultSweepInterval is the pause between janitor sweeps.
	DefaultSweepInterval = 5 * time.Minute
)

// CleanupConfig configures the idle-session janitor.
type CleanupConfig struct {
	MaxIdle       time.Duration
	SweepInterval time.Duration
}

// CleanupJob periodically prunes idle sessions from a MemoryStore. Hosts
// that keep the engine alive for days use it to shed abandoned sessions.
type CleanupJob struct {
	store  *MemoryStore
	config CleanupConfig
	logger *zap.Logger

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	done     chan struct{}
}

// NewCleanupJob creates a janitor for the given store. Zero config fields
// fall back to the defaults; a nil logger disables logging.
func NewCleanupJob(store *MemoryStore, config CleanupConfig, logger *zap.Logger) *CleanupJob {
	if config.MaxIdle <= 0 {
		config.MaxIdle = DefaultMaxIdle
	}
	if config.SweepInterval <= 0 {
		config.SweepInterval = DefaultSweepInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CleanupJob{
		store:  store,
		config: config,
		logger: logger,
	}
}

// Start launches the sweep loop in a goroutine. Starting a running job is
// a no-op.
func (j *CleanupJob) Start() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.running {
		return
	}
	j.running = true
	j.stopChan = make(chan struct{})
	j.done = make(chan struct{})

	go j.run(j.stopChan, j.done)

	j.logger.Info("session janitor started",
		zap.Duration("max_idle", j.config.MaxIdle),
		zap.Duration("sweep_interval", j.config.SweepInterval))
}

// Stop halts the sweep loop and waits for it to exit.
func (j *CleanupJob) Stop() {
	j.mu.Lock()
	if !j.running {
		j.mu.Unlock()
		return
	}
	j.running = false
	close(j.stopChan)
	done := j.done
	j.mu.Unlock()

	<-done
}

func (j *CleanupJob) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(j.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if removed := j.store.PruneIdle(j.config.MaxIdle); removed > 0 {
				j.logger.Info("pruned idle sessions", zap.Int("removed", removed))
			}
		}
	}
}
