package goPoP

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Engine is the configured token issuer. It is immutable after
// [Builder.Build] and safe for concurrent use: the creation pipeline is
// stateless per call and the only blocking step is the delegated signature
// (and, when configured, the key-source fetch).
type Engine struct {
	config  Config
	keys    KeySource
	audit   *auditDispatcher
	metrics *Metrics
}

// Close stops the audit dispatcher after draining queued events. The engine
// must not be used afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns audit events lost to dispatcher backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Issue mints one PoP request token for the descriptor.
//
// The descriptor is read, never mutated: the engine works on a copy. When the
// descriptor carries no signing material the engine's key source supplies it;
// when it carries no claims configuration the engine's configured claims
// apply. Cancellation is honored before the signature step; a failed signing
// attempt surfaces immediately and is never retried here.
func (e *Engine) Issue(ctx context.Context, d *CreationDescriptor) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	if d == nil {
		e.metricInc(MetricInvalidArgument)
		return "", ErrNilDescriptor
	}

	desc := *d
	if desc.Claims == nil {
		claims := e.config.Claims
		desc.Claims = &claims
	}
	if desc.Material.isZero() && e.keys != nil {
		material, err := e.fetchMaterial(ctx)
		if err != nil {
			e.metricInc(MetricKeySourceError)
			e.emitAudit(ctx, AuditEvent{
				Timestamp: time.Now(),
				EventType: AuditKeySourceFail,
				Error:     err.Error(),
			})
			return "", fmt.Errorf("%w: %v", ErrKeySourceUnavailable, err)
		}
		desc.Material = material
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	token, err := CreateToken(&desc)
	if err != nil {
		e.countFailure(err)
		e.emitAudit(ctx, AuditEvent{
			Timestamp: time.Now(),
			EventType: AuditTokenRejected,
			KeyID:     desc.Material.KeyID,
			Algorithm: desc.Material.Algorithm,
			Error:     err.Error(),
		})
		return "", err
	}

	e.metricInc(MetricTokenIssued)
	if desc.Claims.Nonce && desc.Claims.CustomNonce == nil {
		e.metricInc(MetricNonceGenerated)
	}
	if e.metrics.LatencyEnabled() {
		e.metrics.Observe(MetricIssueLatency, time.Since(start))
	}
	e.emitAudit(ctx, AuditEvent{
		Timestamp: time.Now(),
		EventType: AuditTokenIssued,
		KeyID:     desc.Material.KeyID,
		Algorithm: desc.Material.Algorithm,
		Claims:    enabledClaims(*desc.Claims),
		Success:   true,
	})

	return token, nil
}

func (e *Engine) fetchMaterial(ctx context.Context) (SigningMaterial, error) {
	e.metricInc(MetricKeySourceFetch)
	if timeout := e.config.KeySource.FetchTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return e.keys.Material(ctx)
}

func (e *Engine) countFailure(err error) {
	switch {
	case errors.Is(err, ErrInvalidArgument):
		e.metricInc(MetricInvalidArgument)
	case errors.Is(err, ErrClaimCreation):
		e.metricInc(MetricClaimCreationError)
	case errors.Is(err, ErrSigning):
		e.metricInc(MetricSigningError)
	}
}

func (e *Engine) emitAudit(ctx context.Context, event AuditEvent) {
	if e.audit == nil {
		return
	}
	e.audit.Emit(ctx, event)
}

func enabledClaims(cfg ClaimsConfig) []string {
	claims := make([]string, 0, 9)
	claims = append(claims, ClaimAccessToken)
	if cfg.Timestamp {
		claims = append(claims, ClaimTimestamp)
	}
	if cfg.Method {
		claims = append(claims, ClaimMethod)
	}
	if cfg.Host {
		claims = append(claims, ClaimHost)
	}
	if cfg.Path {
		claims = append(claims, ClaimPath)
	}
	if cfg.Query {
		claims = append(claims, ClaimQuery)
	}
	if cfg.Headers {
		claims = append(claims, ClaimHeaders)
	}
	if cfg.Body {
		claims = append(claims, ClaimBody)
	}
	if cfg.Nonce {
		claims = append(claims, ClaimNonce)
	}
	return claims
}
