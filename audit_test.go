package goPoP

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type countingSink struct {
	count atomic.Int64
}

func (s *countingSink) Emit(context.Context, AuditEvent) {
	s.count.Add(1)
}

func (s *countingSink) Count() int64 {
	return s.count.Load()
}

type gateSink struct {
	gate chan struct{}
}

func newGateSink() *gateSink {
	return &gateSink{gate: make(chan struct{})}
}

func (s *gateSink) Emit(context.Context, AuditEvent) {
	<-s.gate
}

func TestDispatcherDeliversEvents(t *testing.T) {
	sink := &countingSink{}
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 16, DropIfFull: true}, sink)

	for i := 0; i < 5; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: AuditTokenIssued})
	}
	d.Close()

	if got := sink.Count(); got != 5 {
		t.Fatalf("delivered %d events, want 5", got)
	}
	if got := d.Dropped(); got != 0 {
		t.Fatalf("dropped %d events, want 0", got)
	}
}

func TestDispatcherDropsUnderBackpressure(t *testing.T) {
	sink := newGateSink()
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	// First event is picked up by the run loop and blocks in the sink;
	// the second fills the buffer; everything after that must drop.
	d.Emit(context.Background(), AuditEvent{EventType: AuditTokenIssued})

	deadline := time.Now().Add(2 * time.Second)
	for d.Dropped() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no event dropped under backpressure")
		}
		d.Emit(context.Background(), AuditEvent{EventType: AuditTokenIssued})
	}

	close(sink.gate)
	d.Close()
}

func TestDispatcherBlockingEmitHonorsContext(t *testing.T) {
	sink := newGateSink()
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 1, DropIfFull: false}, sink)

	// Fill the pipeline so the next Emit has to block.
	d.Emit(context.Background(), AuditEvent{EventType: AuditTokenIssued})
	d.Emit(context.Background(), AuditEvent{EventType: AuditTokenIssued})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		d.Emit(ctx, AuditEvent{EventType: AuditTokenIssued})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("blocking Emit did not return on context expiry")
	}

	close(sink.gate)
	d.Close()
}

func TestDispatcherCloseDrainsQueue(t *testing.T) {
	sink := &countingSink{}
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 64, DropIfFull: true}, sink)

	for i := 0; i < 40; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: AuditTokenIssued})
	}
	d.Close()

	if got := sink.Count() + int64(d.Dropped()); got != 40 {
		t.Fatalf("delivered+dropped = %d, want 40", got)
	}
}

func TestDispatcherDisabledIsNil(t *testing.T) {
	d := newAuditDispatcher(AuditConfig{Enabled: false}, &countingSink{})
	if d != nil {
		t.Fatal("disabled dispatcher should be nil")
	}
	d.Emit(context.Background(), AuditEvent{})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher reports drops")
	}
}

func TestJSONWriterSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), AuditEvent{
		Timestamp: time.Unix(1_700_000_000, 0).UTC(),
		EventType: AuditTokenIssued,
		KeyID:     "k1",
		Success:   true,
	})
	sink.Emit(context.Background(), AuditEvent{
		EventType: AuditTokenRejected,
		Error:     "claim creation failed",
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("wrote %d lines, want 2", len(lines))
	}

	var first AuditEvent
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("first line is not valid JSON: %v", err)
	}
	if first.EventType != AuditTokenIssued || first.KeyID != "k1" || !first.Success {
		t.Errorf("first event = %+v", first)
	}

	var second AuditEvent
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("second line is not valid JSON: %v", err)
	}
	if second.Success || second.Error == "" {
		t.Errorf("second event = %+v", second)
	}
}
