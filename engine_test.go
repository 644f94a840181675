package goPoP

import (
	"context"
	"errors"
	"testing"
	"time"
)

type keySourceFunc func(ctx context.Context) (SigningMaterial, error)

func (f keySourceFunc) Material(ctx context.Context) (SigningMaterial, error) {
	return f(ctx)
}

func testDescriptor(t *testing.T) *CreationDescriptor {
	t.Helper()
	return &CreationDescriptor{
		AccessToken: "at-value",
		Request: HTTPRequestData{
			Method:  "GET",
			URL:     testURL(t, "https://example.com/resource?a=1"),
			Headers: []HeaderField{{Name: "Accept", Values: []string{"*/*"}}},
		},
	}
}

func waitForEvent(t *testing.T, sink *ChannelSink, eventType string) AuditEvent {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case event := <-sink.Events():
			if event.EventType == eventType {
				return event
			}
		case <-deadline:
			t.Fatalf("no %s audit event received", eventType)
		}
	}
}

func TestBuilderProducesWorkingEngine(t *testing.T) {
	engine, err := New().
		WithSigningMaterial(testMaterial()).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer engine.Close()

	token, err := engine.Issue(context.Background(), testDescriptor(t))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	_, payload := tokenParts(t, token)
	for _, claim := range []string{"at", "ts", "m", "u", "p", "q", "h", "b", "nonce"} {
		if _, ok := payload[claim]; !ok {
			t.Errorf("claim %q missing from default-configured payload", claim)
		}
	}

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricTokenIssued] != 1 {
		t.Errorf("token_issued = %d, want 1", snap.Counters[MetricTokenIssued])
	}
	if snap.Counters[MetricNonceGenerated] != 1 {
		t.Errorf("nonce_generated = %d, want 1", snap.Counters[MetricNonceGenerated])
	}
}

func TestBuilderIsSingleUse(t *testing.T) {
	b := New().WithSigningMaterial(testMaterial())

	engine, err := b.Build()
	if err != nil {
		t.Fatalf("first Build: %v", err)
	}
	defer engine.Close()

	if _, err := b.Build(); err == nil {
		t.Fatal("second Build succeeded, want error")
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.Audit.BufferSize = -1

	if _, err := New().WithConfig(cfg).Build(); err == nil {
		t.Fatal("Build accepted invalid config")
	}
}

func TestEngineFillsMaterialFromKeySource(t *testing.T) {
	var fetches int
	engine, err := New().
		WithKeySource(keySourceFunc(func(context.Context) (SigningMaterial, error) {
			fetches++
			return testMaterial(), nil
		})).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer engine.Close()

	if _, err := engine.Issue(context.Background(), testDescriptor(t)); err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if fetches != 1 {
		t.Errorf("key source fetched %d times, want 1", fetches)
	}
	if got := engine.MetricsSnapshot().Counters[MetricKeySourceFetch]; got != 1 {
		t.Errorf("keysource_fetch = %d, want 1", got)
	}
}

func TestEngineDescriptorMaterialWins(t *testing.T) {
	engine, err := New().
		WithKeySource(keySourceFunc(func(context.Context) (SigningMaterial, error) {
			t.Fatal("key source consulted despite descriptor material")
			return SigningMaterial{}, nil
		})).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer engine.Close()

	d := testDescriptor(t)
	d.Material = testMaterial()
	if _, err := engine.Issue(context.Background(), d); err != nil {
		t.Fatalf("Issue: %v", err)
	}
}

func TestEngineKeySourceFailure(t *testing.T) {
	sink := NewChannelSink(8)
	sourceErr := errors.New("remote down")

	engine, err := New().
		WithKeySource(keySourceFunc(func(context.Context) (SigningMaterial, error) {
			return SigningMaterial{}, sourceErr
		})).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer engine.Close()

	_, err = engine.Issue(context.Background(), testDescriptor(t))
	if !errors.Is(err, ErrKeySourceUnavailable) {
		t.Fatalf("err = %v, want %v", err, ErrKeySourceUnavailable)
	}

	if got := engine.MetricsSnapshot().Counters[MetricKeySourceError]; got != 1 {
		t.Errorf("keysource_error = %d, want 1", got)
	}

	event := waitForEvent(t, sink, AuditKeySourceFail)
	if event.Success {
		t.Error("keysource failure event marked as success")
	}
	if event.Error == "" {
		t.Error("keysource failure event carries no error text")
	}
}

func TestEngineCountsFailureKinds(t *testing.T) {
	sink := NewChannelSink(8)
	engine, err := New().
		WithSigningMaterial(testMaterial()).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer engine.Close()

	d := testDescriptor(t)
	d.Request.Method = "get"
	if _, err := engine.Issue(context.Background(), d); !errors.Is(err, ErrClaimCreation) {
		t.Fatalf("err = %v, want claim-creation kind", err)
	}

	if _, err := engine.Issue(context.Background(), nil); !errors.Is(err, ErrNilDescriptor) {
		t.Fatalf("err = %v, want %v", err, ErrNilDescriptor)
	}

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricClaimCreationError] != 1 {
		t.Errorf("claim_creation_error = %d, want 1", snap.Counters[MetricClaimCreationError])
	}
	if snap.Counters[MetricInvalidArgument] != 1 {
		t.Errorf("invalid_argument = %d, want 1", snap.Counters[MetricInvalidArgument])
	}
	if snap.Counters[MetricTokenIssued] != 0 {
		t.Errorf("token_issued = %d, want 0", snap.Counters[MetricTokenIssued])
	}

	event := waitForEvent(t, sink, AuditTokenRejected)
	if event.Success {
		t.Error("rejection event marked as success")
	}
}

func TestEngineAuditsIssuedToken(t *testing.T) {
	sink := NewChannelSink(8)
	engine, err := New().
		WithSigningMaterial(testMaterial()).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer engine.Close()

	if _, err := engine.Issue(context.Background(), testDescriptor(t)); err != nil {
		t.Fatalf("Issue: %v", err)
	}

	event := waitForEvent(t, sink, AuditTokenIssued)
	if !event.Success {
		t.Error("issued event not marked as success")
	}
	if event.KeyID != "test-key" {
		t.Errorf("event key id = %q, want test-key", event.KeyID)
	}
	if len(event.Claims) == 0 {
		t.Error("issued event carries no claim list")
	}
}

func TestEngineHonorsCancellation(t *testing.T) {
	engine, err := New().WithSigningMaterial(testMaterial()).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer engine.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := engine.Issue(ctx, testDescriptor(t)); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestEngineDoesNotMutateDescriptor(t *testing.T) {
	engine, err := New().WithSigningMaterial(testMaterial()).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer engine.Close()

	d := testDescriptor(t)
	if _, err := engine.Issue(context.Background(), d); err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if d.Claims != nil {
		t.Error("engine wrote claims config back into the caller's descriptor")
	}
	if !d.Material.isZero() {
		t.Error("engine wrote signing material back into the caller's descriptor")
	}
}

func TestNilEngine(t *testing.T) {
	var engine *Engine

	if _, err := engine.Issue(context.Background(), nil); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("err = %v, want %v", err, ErrEngineNotReady)
	}
	engine.Close()
	if engine.AuditDropped() != 0 {
		t.Error("nil engine reports dropped events")
	}
	if snap := engine.MetricsSnapshot(); len(snap.Counters) != 0 {
		t.Error("nil engine reports counters")
	}
}

func TestEngineKeySourceTimeout(t *testing.T) {
	cfg := defaultConfig()
	cfg.KeySource.FetchTimeout = 10 * time.Millisecond

	engine, err := New().
		WithConfig(cfg).
		WithKeySource(keySourceFunc(func(ctx context.Context) (SigningMaterial, error) {
			<-ctx.Done()
			return SigningMaterial{}, ctx.Err()
		})).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer engine.Close()

	_, err = engine.Issue(context.Background(), testDescriptor(t))
	if !errors.Is(err, ErrKeySourceUnavailable) {
		t.Fatalf("err = %v, want %v", err, ErrKeySourceUnavailable)
	}
}
