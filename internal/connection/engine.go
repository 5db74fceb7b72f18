package connection

import (
	"fmt"
	"time"

	"github.com/avfabric/medianode-core/internal/model"
	"github.com/avfabric/medianode-core/internal/resource"
)

// Logger defines the logging interface used by the Engine.
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

// State identifies where an activation attempt is in its lifecycle.
type State string

// Activation states. An attempt moves through validating, resolving
// and committing to active; any failure before commit moves it to
// rejected with the prior active document untouched.
const (
	StateStagedPending State = "staged-pending"
	StateValidating    State = "validating"
	StateResolving     State = "resolving"
	StateCommitting    State = "committing"
	StateActive        State = "active"
	StateRejected      State = "rejected"
)

// Validator inspects a merged staged document before resolution and
// may reject it with a reason. A nil Validator means schema-level
// validation only, performed by the HTTP layer.
type Validator func(res, connRes *resource.Resource, staged resource.Data) error

// TransportFileSetter recomputes the derived transport file (session
// description) from the resource graph and the resolved active
// transport parameters. It runs before commit so downstream consumers
// read the active document and the artifact atomically. It must return
// ErrMissingReference (possibly wrapped) if a referenced source or
// flow is absent.
type TransportFileSetter func(res, connRes *resource.Resource, active []resource.Data) (resource.Data, error)

// ActivationHandler runs after a successful commit, outside the model
// lock, to drive application side effects such as subscribing a
// WebSocket receiver to its event source. By the time it runs the
// activation is already acknowledged; handler failures are logged, not
// rolled back.
type ActivationHandler func(res, connRes *resource.Resource)

// MessageHandler is invoked per inbound state message on a push-style
// receiver.
type MessageHandler func(receiver, connReceiver *resource.Resource, message resource.Data)

// Callbacks bundles the injected policy of an Engine. Any field may be
// nil; the engine substitutes a no-op.
type Callbacks struct {
	Validate         Validator
	ResolveAuto      AutoResolver
	SetTransportFile TransportFileSetter
	OnActivated      ActivationHandler
}

// Engine drives the staged-to-active transition for connection
// resources held in a Model.
//
// The engine owns no policy: validation, auto resolution, transport
// file synthesis and post-activation behaviour are all injected.
type Engine struct {
	model     *model.Model
	callbacks Callbacks
	logger    Logger
}

// NewEngine creates an activation engine over the given model.
func NewEngine(m *model.Model, callbacks Callbacks) *Engine {
	return &Engine{
		model:     m,
		callbacks: callbacks,
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the engine.
func (e *Engine) SetLogger(logger Logger) {
	e.logger = logger
}

// Stage merges a proposed staged document into the connection
// resource's staged endpoint and bumps its version. The patch may be a
// partial replacement: transport parameter legs are merged field by
// field, other fields replace their staged counterparts.
//
// Stage returns a deep copy of the merged staged document.
func (e *Engine) Stage(connID string, patch resource.Data) (resource.Data, error) {
	e.model.Lock()
	defer e.model.Unlock()

	connRes, err := e.findConnection(connID)
	if err != nil {
		return nil, err
	}

	// The leg count is fixed when the connection resource is
	// constructed; a patch may address a subset of legs but never add
	// legs the resolver and transport file have no rules for.
	if v, ok := patch[FieldTransportParams]; ok {
		patchLegs := TransportParams(resource.Data{FieldTransportParams: v})
		current := TransportParams(Staged(connRes))
		if len(patchLegs) > len(current) {
			return nil, fmt.Errorf("%w: patch carries %d transport legs, connection has %d",
				ErrValidationRejected, len(patchLegs), len(current))
		}
	}

	err = e.model.Connection.Modify(connID, func(r *resource.Resource) {
		mergeStaged(Staged(r), patch)
	})
	if err != nil {
		return nil, err
	}
	e.model.Notify()

	merged := resource.DeepCopyData(Staged(connRes))
	e.logger.Debug("staged document updated", "id", connID)
	return merged, nil
}

// Activate drives the connection resource's staged document through
// validation, auto resolution and transport file synthesis, then
// commits it to the active endpoint.
//
// On any failure before commit the active document is left exactly as
// it was; there is no partial commit. Reactivating with an identical
// staged document is not short-circuited: resolution and side effects
// re-run, the version is bumped and waiters are notified, so clients
// always observe a fresh activation timestamp.
func (e *Engine) Activate(connID string) error {
	res, connRes, err := e.activate(connID)
	if err != nil {
		return err
	}

	// The post-activation handler performs subscription management and
	// runs outside the critical section, on snapshots.
	if e.callbacks.OnActivated != nil {
		e.callbacks.OnActivated(res, connRes)
	}
	return nil
}

// activate performs the locked portion of an activation attempt. The
// deferred unlock releases the model lock on every exit path, a
// panicking callback included, so a failure can never strand waiters.
// On success it returns deep copies for the post-activation handler.
func (e *Engine) activate(connID string) (*resource.Resource, *resource.Resource, error) {
	e.model.Lock()
	defer e.model.Unlock()

	state := StateStagedPending
	res, connRes, err := e.lookup(connID)
	if err != nil {
		return nil, nil, err
	}

	// Validate
	state = StateValidating
	staged := Staged(connRes)
	if e.callbacks.Validate != nil {
		if err := e.callbacks.Validate(res, connRes, staged); err != nil {
			e.logger.Warn("activation rejected", "id", connID, "state", string(state), "error", err)
			return nil, nil, fmt.Errorf("%w: %w", ErrValidationRejected, err)
		}
	}

	// Resolve, on a copy so a later failure leaves staged untouched too
	state = StateResolving
	legs := copyLegs(TransportParams(staged))
	if e.callbacks.ResolveAuto != nil {
		e.callbacks.ResolveAuto(res, connRes, legs)
	}
	if err := CheckResolved(legs); err != nil {
		e.logger.Error("activation aborted", "id", connID, "state", string(state), "error", err)
		return nil, nil, err
	}

	// Synthesize the transport file before commit so active state and
	// artifact appear atomically
	state = StateCommitting
	var transportFile resource.Data
	if e.callbacks.SetTransportFile != nil {
		transportFile, err = e.callbacks.SetTransportFile(res, connRes, legs)
		if err != nil {
			e.logger.Error("activation aborted", "id", connID, "state", string(state), "error", err)
			return nil, nil, err
		}
	}

	// Commit
	err = e.model.Connection.Modify(connID, func(r *resource.Resource) {
		active := resource.DeepCopyData(Staged(r))
		setTransportParams(active, legs)
		if transportFile != nil {
			active[FieldTransportFile] = map[string]any(transportFile)
		}
		activation := active.Object(FieldActivation)
		if activation == nil {
			activation = resource.Data{}
			active[FieldActivation] = map[string]any(activation)
		}
		activation[FieldActivationTime] = time.Now().UTC().Format(time.RFC3339Nano)
		r.Data[FieldActive] = map[string]any(active)
	})
	if err != nil {
		return nil, nil, err
	}
	e.model.Notify()

	state = StateActive
	e.logger.Info("activation committed", "id", connID, "state", string(state))

	return res.DeepCopy(), connRes.DeepCopy(), nil
}

// lookup finds the connection resource and its parent registration
// resource (the sender or receiver it manages transport for). The
// caller must hold the model lock.
func (e *Engine) lookup(connID string) (res, connRes *resource.Resource, err error) {
	connRes, err = e.findConnection(connID)
	if err != nil {
		return nil, nil, err
	}

	parentType := resource.TypeSender
	if connRes.Type == resource.TypeConnectionReceiver {
		parentType = resource.TypeReceiver
	}
	res, err = e.model.Registration.Find(connID, parentType)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s %s", ErrMissingReference, parentType, connID)
	}
	return res, connRes, nil
}

// findConnection locates a connection resource of either role.
func (e *Engine) findConnection(connID string) (*resource.Resource, error) {
	if connRes, err := e.model.Connection.Find(connID, resource.TypeConnectionSender); err == nil {
		return connRes, nil
	}
	return e.model.Connection.Find(connID, resource.TypeConnectionReceiver)
}

// mergeStaged merges a staged patch into the current staged document.
// Transport parameter legs merge field by field; every other field
// replaces its staged counterpart. The leg count never changes: Stage
// rejects patches with surplus legs before merging.
func mergeStaged(staged, patch resource.Data) {
	for key, v := range patch {
		if key != FieldTransportParams {
			staged[key] = deepCopyPatchValue(v)
			continue
		}

		current := TransportParams(staged)
		patchLegs := TransportParams(resource.Data{FieldTransportParams: v})
		for i, patchLeg := range patchLegs {
			if i >= len(current) {
				break
			}
			for field, fv := range patchLeg {
				current[i][field] = deepCopyPatchValue(fv)
			}
		}
		setTransportParams(staged, current)
	}
}

// deepCopyPatchValue clones a patch value so later client mutation of
// the request body cannot alias into the store.
func deepCopyPatchValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return map[string]any(resource.DeepCopyData(resource.Data(val)))
	case resource.Data:
		return map[string]any(resource.DeepCopyData(val))
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = deepCopyPatchValue(elem)
		}
		return out
	default:
		return v
	}
}
