package ops

import (
	"context"
	"os"
	"sync/atomic"
	"time"

	"github.com/yanun0323/logs"
)

// RuntimeConfig holds the currently active Loaded configuration behind an
// atomic.Value so readers on the hot path never block on a reload.
type RuntimeConfig struct {
	v atomic.Value
}

// NewRuntimeConfig creates a RuntimeConfig seeded with loaded.
func NewRuntimeConfig(loaded Loaded) *RuntimeConfig {
	var rc RuntimeConfig
	rc.v.Store(loaded)
	return &rc
}

// Load returns the currently active configuration.
func (r *RuntimeConfig) Load() Loaded {
	return r.v.Load().(Loaded)
}

// Update atomically swaps in a new configuration.
func (r *RuntimeConfig) Update(loaded Loaded) {
	r.v.Store(loaded)
}

// Watch polls path's mtime on the given interval and reloads the config
// into rc whenever it changes. It blocks until ctx is cancelled.
func Watch(ctx context.Context, path string, interval time.Duration, rc *RuntimeConfig) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastMod time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			info, err := os.Stat(path)
			if err != nil {
				logs.Errorf("ops: config stat failed: %v", err)
				continue
			}
			if !info.ModTime().After(lastMod) {
				continue
			}
			loaded, err := Load(path)
			if err != nil {
				logs.Errorf("ops: config reload failed: %v", err)
				continue
			}
			rc.Update(loaded)
			lastMod = info.ModTime()
			logs.Infof("ops: config reloaded from %s", path)
		}
	}
}
