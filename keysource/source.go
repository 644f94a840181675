package keysource

import (
	"context"
	"fmt"

	goPoP "github.com/MrEthical07/goPoP"
)

// Fetcher retrieves the current signing record from a backend: a secrets
// manager, a metadata document endpoint, a file. It is called at most once
// per refresh.
type Fetcher func(ctx context.Context) (Record, error)

// Static is a Source that always serves the same material. Useful for tests
// and single-key deployments.
type Static struct {
	material goPoP.SigningMaterial
}

// NewStatic builds a Static source.
func NewStatic(m goPoP.SigningMaterial) *Static {
	return &Static{material: m}
}

// Material implements goPoP.KeySource.
func (s *Static) Material(context.Context) (goPoP.SigningMaterial, error) {
	if s == nil || s.material.Key == nil {
		return goPoP.SigningMaterial{}, ErrNoMaterial
	}
	return s.material, nil
}

// Remote adapts a Fetcher into a Source, parsing each fetched record. It does
// no caching; wrap it in [Caching] or [RedisCache] for that.
type Remote struct {
	fetch Fetcher
}

// NewRemote builds a Remote source over fetch.
func NewRemote(fetch Fetcher) *Remote {
	return &Remote{fetch: fetch}
}

// Material implements goPoP.KeySource.
func (r *Remote) Material(ctx context.Context) (goPoP.SigningMaterial, error) {
	if r == nil || r.fetch == nil {
		return goPoP.SigningMaterial{}, ErrNoMaterial
	}
	record, err := r.fetch(ctx)
	if err != nil {
		return goPoP.SigningMaterial{}, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return record.Material()
}

var (
	_ goPoP.KeySource = (*Static)(nil)
	_ goPoP.KeySource = (*Remote)(nil)
)
