package events

import (
	"context"
	"testing"
	"time"

	"github.com/avfabric/medianode-core/internal/resource"
)

// captureSink records published states on a channel.
type captureSink struct {
	ch chan capturedEvent
}

type capturedEvent struct {
	sourceID string
	state    resource.Data
}

func newCaptureSink() *captureSink {
	return &captureSink{ch: make(chan capturedEvent, 16)}
}

func (s *captureSink) PublishEvent(sourceID string, state resource.Data) {
	s.ch <- capturedEvent{sourceID: sourceID, state: state}
}

func (s *captureSink) next(t *testing.T) capturedEvent {
	t.Helper()
	select {
	case ev := <-s.ch:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("sink never received an event")
		return capturedEvent{}
	}
}

func TestPumpPublishesInitialAndChangedState(t *testing.T) {
	m := behaviourModel(t)
	sink := newCaptureSink()

	pump := NewPump(m, sink)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pump.Start(ctx)

	// The pump publishes the state present at startup.
	first := sink.next(t)
	if first.sourceID != testSourceID {
		t.Errorf("first event source = %q, want %q", first.sourceID, testSourceID)
	}
	if v, ok := StatePayloadValue(first.state); !ok || v != 20.1 {
		t.Errorf("initial payload = %v ok=%v, want 20.1", v, ok)
	}

	// A committed state change is published to the sink.
	m.Lock()
	err := m.Events.Modify(testSourceID, func(r *resource.Resource) {
		r.Data["state"] = map[string]any(MakeNumberState(testSourceID, 225, 10, TemperatureCelsius))
	})
	if err != nil {
		m.Unlock()
		t.Fatalf("Modify: %v", err)
	}
	m.Notify()
	m.Unlock()

	second := sink.next(t)
	if v, ok := StatePayloadValue(second.state); !ok || v != 22.5 {
		t.Errorf("changed payload = %v ok=%v, want 22.5", v, ok)
	}

	m.Shutdown()
	pump.Wait()
}

func TestPumpFansOutToAllSinks(t *testing.T) {
	m := behaviourModel(t)
	a := newCaptureSink()
	b := newCaptureSink()

	pump := NewPump(m, a, b)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pump.Start(ctx)

	if ev := a.next(t); ev.sourceID != testSourceID {
		t.Errorf("sink a got %q", ev.sourceID)
	}
	if ev := b.next(t); ev.sourceID != testSourceID {
		t.Errorf("sink b got %q", ev.sourceID)
	}

	m.Shutdown()
	pump.Wait()
}

func TestPumpStopsOnShutdown(t *testing.T) {
	m := behaviourModel(t)
	sink := newCaptureSink()

	pump := NewPump(m, sink)
	pump.Start(context.Background())
	sink.next(t) // initial publication

	m.Shutdown()

	done := make(chan struct{})
	go func() {
		pump.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("pump did not terminate on shutdown")
	}
}
