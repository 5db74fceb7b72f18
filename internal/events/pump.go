package events

import (
	"context"

	"github.com/avfabric/medianode-core/internal/model"
	"github.com/avfabric/medianode-core/internal/resource"
)

// Sink receives committed event states. Implementations must not
// require the model lock; the pump calls them outside the critical
// section with deep-copied documents.
type Sink interface {
	PublishEvent(sourceID string, state resource.Data)
}

// Pump relays event source state changes from the model to one or
// more delivery sinks.
type Pump struct {
	model  *model.Model
	sinks  []Sink
	logger Logger
	done   chan struct{}
}

// NewPump creates a pump delivering to the given sinks.
func NewPump(m *model.Model, sinks ...Sink) *Pump {
	return &Pump{
		model:  m,
		sinks:  sinks,
		logger: noopLogger{},
		done:   make(chan struct{}),
	}
}

// SetLogger sets the logger for the pump.
func (p *Pump) SetLogger(logger Logger) {
	p.logger = logger
}

// Start launches the pump. It runs until the model shuts down.
//
// The pump blocks on the model's change condition, so ctx cancellation
// alone does not wake it; the cancellation is observed on the next
// Notify or Shutdown. Owners stopping the pump must call
// Model.Shutdown (cancelling ctx as well is fine but optional).
func (p *Pump) Start(ctx context.Context) {
	go p.run(ctx)
}

// Wait blocks until the pump has fully terminated. Like the behaviour
// task, it must be called without the model lock held.
func (p *Pump) Wait() {
	<-p.done
}

// run waits on the model's change condition, snapshots every event
// source whose version advanced, and publishes outside the lock.
func (p *Pump) run(ctx context.Context) {
	defer close(p.done)

	seen := make(map[string]resource.Version)

	p.model.Lock()
	defer p.model.Unlock()

	for {
		changed := p.collect(seen)
		if len(changed) == 0 {
			if !p.model.Wait(func() bool {
				return ctx.Err() != nil || len(p.collect(seen)) > 0
			}) {
				return
			}
			if ctx.Err() != nil {
				return
			}
			changed = p.collect(seen)
		}

		// Record versions under the lock, publish outside it.
		snapshots := make(map[string]resource.Data, len(changed))
		for _, r := range changed {
			seen[r.ID] = r.Version
			snapshots[r.ID] = r.Data.Object("state")
		}

		p.model.Unlock()
		for id, state := range snapshots {
			for _, sink := range p.sinks {
				sink.PublishEvent(id, state)
			}
		}
		p.model.Lock()

		if p.model.ShuttingDown() || ctx.Err() != nil {
			return
		}
	}
}

// collect returns deep copies of every event source whose version has
// advanced past the recorded one. The caller must hold the model lock.
func (p *Pump) collect(seen map[string]resource.Version) []*resource.Resource {
	var changed []*resource.Resource
	for _, r := range p.model.Events.ListByType(resource.TypeEventsSource) {
		last, ok := seen[r.ID]
		if !ok || last.Less(r.Version) {
			changed = append(changed, r)
		}
	}
	return changed
}
