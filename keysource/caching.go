package keysource

import (
	"context"
	"sync"
	"time"

	goPoP "github.com/MrEthical07/goPoP"
)

// Caching wraps a Source with an in-memory freshness window.
//
// Refresh policy: at most one refresh is in flight at a time. Callers that
// arrive while a refresh runs are served the stale-but-present material
// rather than blocked; only callers with nothing cached at all wait for the
// refresh to finish. A failed refresh serves stale material when any exists
// and surfaces the error only when the cache is empty.
type Caching struct {
	source goPoP.KeySource
	ttl    time.Duration

	mu       sync.Mutex
	material goPoP.SigningMaterial
	fetched  time.Time
	has      bool
	inflight chan struct{}
}

// NewCaching wraps source with the given freshness window. A non-positive ttl
// means material never goes stale once fetched.
func NewCaching(source goPoP.KeySource, ttl time.Duration) *Caching {
	return &Caching{source: source, ttl: ttl}
}

// Material implements goPoP.KeySource.
func (c *Caching) Material(ctx context.Context) (goPoP.SigningMaterial, error) {
	if c == nil || c.source == nil {
		return goPoP.SigningMaterial{}, ErrNoMaterial
	}

	for {
		c.mu.Lock()

		if c.has && (c.ttl <= 0 || time.Since(c.fetched) < c.ttl) {
			material := c.material
			c.mu.Unlock()
			return material, nil
		}

		if c.inflight != nil {
			if c.has {
				// stale over blocking: another caller is already refreshing
				material := c.material
				c.mu.Unlock()
				return material, nil
			}
			wait := c.inflight
			c.mu.Unlock()
			select {
			case <-wait:
			case <-ctx.Done():
				return goPoP.SigningMaterial{}, ctx.Err()
			}
			continue
		}

		done := make(chan struct{})
		c.inflight = done
		c.mu.Unlock()

		material, err := c.source.Material(ctx)

		c.mu.Lock()
		c.inflight = nil
		close(done)
		if err != nil {
			if c.has {
				stale := c.material
				c.mu.Unlock()
				return stale, nil
			}
			c.mu.Unlock()
			return goPoP.SigningMaterial{}, err
		}
		c.material, c.fetched, c.has = material, time.Now(), true
		c.mu.Unlock()
		return material, nil
	}
}

var _ goPoP.KeySource = (*Caching)(nil)
