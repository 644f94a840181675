package goPoP

import (
	"context"
	"net/url"
	"testing"
	"time"
)

func benchDescriptor(b *testing.B) *CreationDescriptor {
	b.Helper()
	u, err := url.Parse("https://example.com/resource?a=1&b=2")
	if err != nil {
		b.Fatalf("parse: %v", err)
	}
	cfg := DefaultClaims()
	return &CreationDescriptor{
		AccessToken: "benchmark-access-token",
		Material: SigningMaterial{
			Key:       []byte("0123456789abcdef0123456789abcdef"),
			Algorithm: "HS256",
			KeyID:     "bench",
		},
		Request: HTTPRequestData{
			Method: "POST",
			URL:    u,
			Headers: []HeaderField{
				{Name: "Accept", Values: []string{"application/json"}},
				{Name: "Content-Type", Values: []string{"application/json"}},
			},
			Body: []byte(`{"k":"v"}`),
		},
		Claims: &cfg,
	}
}

func BenchmarkCreateToken(b *testing.B) {
	d := benchDescriptor(b)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := CreateToken(d); err != nil {
			b.Fatalf("CreateToken: %v", err)
		}
	}
}

func BenchmarkEngineIssue(b *testing.B) {
	engine, err := New().
		WithSigningMaterial(SigningMaterial{
			Key:       []byte("0123456789abcdef0123456789abcdef"),
			Algorithm: "HS256",
		}).
		Build()
	if err != nil {
		b.Fatalf("Build: %v", err)
	}
	defer engine.Close()

	d := benchDescriptor(b)
	d.Material = SigningMaterial{}
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.Issue(ctx, d); err != nil {
			b.Fatalf("Issue: %v", err)
		}
	}
}

func BenchmarkMetricsInc(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			m.Inc(MetricTokenIssued)
		}
	})
}

func BenchmarkMetricsObserve(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		m.Observe(MetricIssueLatency, 7*time.Millisecond)
	}
}
