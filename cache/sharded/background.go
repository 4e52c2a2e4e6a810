package sharded

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// backgroundLoop is a long-lived worker with a stop flag, shared by the
// optimization and cleanup loops below. Both are opt-in and idempotent to
// start and stop.
type backgroundLoop struct {
	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

func (l *backgroundLoop) start(interval time.Duration, tick func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return
	}
	l.running = true
	l.stop = make(chan struct{})
	l.done = make(chan struct{})

	var stop, done = l.stop, l.done
	go func() {
		defer close(done)
		var ticker = time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				tick()
			}
		}
	}()
}

func (l *backgroundLoop) stopLoop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	var stop, done = l.stop, l.done
	l.mu.Unlock()

	close(stop)
	<-done
}

// optimize and cleanup are embedded, one pair per Cache, lazily allocated
// on first StartOptimizationLoop/StartCleanupLoop call.
type background struct {
	optimize backgroundLoop
	cleanup  backgroundLoop
}

// StartOptimizationLoop starts a long-lived worker that periodically
// recomputes and logs a hot-key summary across every shard. It evicts
// nothing; it exists purely to surface working-set visibility. Starting an
// already-running loop is a no-op.
func (c *Cache[V]) StartOptimizationLoop(interval time.Duration, topN int) {
	c.bg().optimize.start(interval, func() {
		for i, s := range c.shards {
			s.mu.RLock()
			var hot = s.manager.HotKeys(topN)
			s.mu.RUnlock()
			log.WithFields(log.Fields{"shard": i, "hot_keys": hot}).Debug("cache optimization summary")
		}
	})
}

// StopOptimizationLoop stops a running optimization loop. Stopping an
// already-stopped loop is a no-op.
func (c *Cache[V]) StopOptimizationLoop() { c.bg().optimize.stopLoop() }

// StartCleanupLoop starts a long-lived worker that calls ResetStatistics on
// every shard on the given cadence. Starting an already-running loop is a
// no-op.
func (c *Cache[V]) StartCleanupLoop(interval time.Duration) {
	c.bg().cleanup.start(interval, func() {
		for _, s := range c.shards {
			s.mu.Lock()
			s.manager.ResetStatistics()
			s.mu.Unlock()
		}
	})
}

// StopCleanupLoop stops a running cleanup loop. Stopping an already-stopped
// loop is a no-op.
func (c *Cache[V]) StopCleanupLoop() { c.bg().cleanup.stopLoop() }

func (c *Cache[V]) bg() *background {
	c.bgMu.Lock()
	defer c.bgMu.Unlock()
	if c.bgState == nil {
		c.bgState = &background{}
	}
	return c.bgState
}
