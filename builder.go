package goPoP

import (
	"context"
	"errors"
)

// Builder assembles an [Engine]. A builder is single-use: Build refuses to
// run twice so a half-configured builder cannot leak into two engines.
type Builder struct {
	config    Config
	keys      KeySource
	auditSink AuditSink

	built bool
}

// New returns a builder seeded with the default configuration: all structural
// claims enabled, metrics on, audit off.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithKeySource sets the source the engine fills descriptor signing material
// from when the descriptor carries none.
func (b *Builder) WithKeySource(src KeySource) *Builder {
	b.keys = src
	return b
}

// WithSigningMaterial is shorthand for a key source that always returns the
// given material.
func (b *Builder) WithSigningMaterial(m SigningMaterial) *Builder {
	b.keys = staticKeySource{material: m}
	return b
}

// WithClaims replaces the engine-level default claims configuration.
func (b *Builder) WithClaims(cfg ClaimsConfig) *Builder {
	b.config.Claims = cfg
	return b
}

// WithAuditSink enables auditing into the given sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.config.Audit.Enabled = true
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles the engine counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the issue-latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns the engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	engine := &Engine{
		config:  cfg,
		keys:    b.keys,
		audit:   newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics: NewMetrics(cfg.Metrics),
	}

	b.built = true

	return engine, nil
}

type staticKeySource struct {
	material SigningMaterial
}

func (s staticKeySource) Material(context.Context) (SigningMaterial, error) {
	return s.material, nil
}
