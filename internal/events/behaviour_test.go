package events

import (
	"context"
	"testing"
	"time"

	"github.com/avfabric/medianode-core/internal/model"
	"github.com/avfabric/medianode-core/internal/resource"
)

const testSourceID = "temp-source"

func behaviourModel(t *testing.T) *model.Model {
	t.Helper()

	m := model.New(model.Settings{EventsEnabled: true})
	state := MakeNumberState(testSourceID, 201, 10, TemperatureCelsius)
	typ := MakeNumberType([2]int64{-200, 10}, [2]int64{1000, 10}, [2]int64{1, 10}, "C")

	m.Lock()
	defer m.Unlock()
	if err := m.Events.Insert(MakeEventsSource(testSourceID, state, typ)); err != nil {
		t.Fatalf("insert events source: %v", err)
	}
	return m
}

func sourceVersion(m *model.Model, id string) resource.Version {
	m.Lock()
	defer m.Unlock()
	r, err := m.Events.Get(id)
	if err != nil {
		return resource.Version{}
	}
	return r.Version
}

// waitForVersionChange blocks until the source's version advances past
// v, using the model's own notification mechanism.
func waitForVersionChange(t *testing.T, m *model.Model, v resource.Version) {
	t.Helper()

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Lock()
		defer m.Unlock()
		m.Wait(func() bool {
			r, err := m.Events.Get(testSourceID)
			return err == nil && v.Less(r.Version)
		})
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		m.Shutdown()
		t.Fatal("event source version never advanced")
	}
}

func TestBehaviourTaskUpdatesState(t *testing.T) {
	m := behaviourModel(t)

	task := NewBehaviourTask(m, testSourceID)
	task.MinInterval = time.Millisecond
	task.MaxInterval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	v0 := sourceVersion(m, testSourceID)
	task.Start(ctx)

	// Two consecutive updates prove the timer re-arms.
	waitForVersionChange(t, m, v0)
	v1 := sourceVersion(m, testSourceID)
	waitForVersionChange(t, m, v1)

	m.Lock()
	r, err := m.Events.Get(testSourceID)
	if err != nil {
		m.Unlock()
		t.Fatalf("event source: %v", err)
	}
	state := resource.DeepCopyData(r.Data.Object("state"))
	m.Unlock()

	value, ok := StatePayloadValue(state)
	if !ok {
		t.Fatal("updated state has no numeric payload")
	}
	// Triangle wave bounds: 17.5 to 22.5 C
	if value < 17.5 || value > 22.5 {
		t.Errorf("temperature %v outside wave bounds", value)
	}
	if state.String("event_type") != TemperatureCelsius {
		t.Errorf("event_type = %q", state.String("event_type"))
	}

	cancel()
	task.Wait()
}

func TestBehaviourTaskStopsOnCancel(t *testing.T) {
	m := behaviourModel(t)

	task := NewBehaviourTask(m, testSourceID)
	task.MinInterval = time.Millisecond
	task.MaxInterval = 2 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	task.Start(ctx)

	waitForVersionChange(t, m, sourceVersion(m, testSourceID))

	cancel()
	task.Wait()

	// No further mutations after the task has joined.
	v := sourceVersion(m, testSourceID)
	time.Sleep(20 * time.Millisecond)
	if after := sourceVersion(m, testSourceID); v.Less(after) {
		t.Error("event source mutated after cancellation")
	}
}

func TestBehaviourTaskStopsOnShutdown(t *testing.T) {
	m := behaviourModel(t)

	task := NewBehaviourTask(m, testSourceID)
	task.MinInterval = time.Millisecond
	task.MaxInterval = 2 * time.Millisecond

	task.Start(context.Background())
	waitForVersionChange(t, m, sourceVersion(m, testSourceID))

	m.Shutdown()
	// Wait must be called without the model lock held.
	task.Wait()
}
