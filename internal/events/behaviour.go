package events

import (
	"context"
	"math/rand"
	"time"

	"github.com/avfabric/medianode-core/internal/model"
	"github.com/avfabric/medianode-core/internal/resource"
)

// Logger defines the logging interface used by this package.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Default interval bounds for the behaviour task.
const (
	DefaultMinInterval = 500 * time.Millisecond
	DefaultMaxInterval = 5 * time.Second
)

// BehaviourTask models a live data source. On a schedule drawn
// uniformly from [MinInterval, MaxInterval] it updates the temperature
// event source's state under the model lock and notifies waiters.
type BehaviourTask struct {
	model    *model.Model
	sourceID string

	// MinInterval and MaxInterval bound the random update schedule.
	MinInterval time.Duration
	MaxInterval time.Duration

	logger Logger
	rng    *rand.Rand
	done   chan struct{}
}

// NewBehaviourTask creates a behaviour task for the given event source.
func NewBehaviourTask(m *model.Model, sourceID string) *BehaviourTask {
	return &BehaviourTask{
		model:       m,
		sourceID:    sourceID,
		MinInterval: DefaultMinInterval,
		MaxInterval: DefaultMaxInterval,
		logger:      noopLogger{},
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		done:        make(chan struct{}),
	}
}

// SetLogger sets the logger for the task.
func (t *BehaviourTask) SetLogger(logger Logger) {
	t.logger = logger
}

// Start launches the task. It runs until ctx is cancelled or the
// model shuts down.
func (t *BehaviourTask) Start(ctx context.Context) {
	go t.run(ctx)
}

// Wait blocks until the task has fully terminated. It must be called
// without the model lock held: the task acquires the lock for its
// final iteration, so waiting inside the critical section would
// deadlock.
func (t *BehaviourTask) Wait() {
	<-t.done
}

// run is the task loop. Cancellation interrupts the in-flight timer
// wait and prevents further iterations; no final mutation is
// performed after cancellation.
func (t *BehaviourTask) run(ctx context.Context) {
	defer close(t.done)

	timer := time.NewTimer(t.nextInterval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			t.logger.Debug("behaviour task cancelled", "source_id", t.sourceID)
			return
		case <-timer.C:
		}

		if !t.update() {
			return
		}
		timer.Reset(t.nextInterval())
	}
}

// update performs one state mutation. It returns false when the model
// is shutting down.
func (t *BehaviourTask) update() bool {
	t.model.Lock()
	defer t.model.Unlock()

	if t.model.ShuttingDown() {
		return false
	}

	// Triangle wave around 20 C: 175 + |sec mod 100 - 50| tenths,
	// i.e. 17.5 to 22.5 C.
	sec := time.Now().UTC().Unix() % 100
	value := 175 + abs(sec-50)

	err := t.model.Events.Modify(t.sourceID, func(r *resource.Resource) {
		r.Data["state"] = map[string]any(MakeNumberState(t.sourceID, value, 10, TemperatureCelsius))
	})
	if err != nil {
		t.logger.Error("event source update failed", "source_id", t.sourceID, "error", err)
		return true
	}
	t.model.Notify()

	t.logger.Debug("temperature updated", "source_id", t.sourceID, "value", float64(value)/10)
	return true
}

// nextInterval draws the next schedule interval uniformly from the
// configured bounds.
func (t *BehaviourTask) nextInterval() time.Duration {
	span := t.MaxInterval - t.MinInterval
	if span <= 0 {
		return t.MinInterval
	}
	return t.MinInterval + time.Duration(t.rng.Int63n(int64(span)))
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
