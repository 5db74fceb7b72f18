package node

import (
	"fmt"

	"github.com/avfabric/medianode-core/internal/connection"
	"github.com/avfabric/medianode-core/internal/events"
	"github.com/avfabric/medianode-core/internal/model"
	"github.com/avfabric/medianode-core/internal/resource"
	"github.com/avfabric/medianode-core/internal/sdp"
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

// legLabels name the transport legs in synthesized session
// descriptions.
var legLabels = []string{"PRIMARY", "SECONDARY"}

// BuildResources populates the model with this node's resource graph.
//
// It must run before the APIs start serving. Connection resources are
// resolved and, for the RTP sender, given a transport file immediately
// so that the active endpoints are never observed with placeholder
// values.
func BuildResources(m *model.Model, logger Logger) error {
	if logger == nil {
		logger = noopLogger{}
	}
	ids := DeriveIDs(m.Settings.SeedID)
	label := m.Settings.Label
	resolve := MakeAutoResolver(m.Settings)
	setTransportFile := MakeTransportFileSetter(m)

	m.Lock()
	defer m.Unlock()

	insert := func(s *model.Store, r *resource.Resource) error {
		if err := s.Insert(r); err != nil {
			logger.Error("model update error", "id", r.ID, "type", string(r.Type), "error", err)
			return fmt.Errorf("inserting %s %s: %w", r.Type, r.ID, err)
		}
		logger.Info("updated model", "id", r.ID, "type", string(r.Type))
		return nil
	}

	// node
	if err := insert(m.Registration, MakeNode(ids.Node, label)); err != nil {
		return err
	}

	// device
	senders := []string{ids.Sender}
	if m.Settings.EventsEnabled {
		senders = append(senders, ids.TemperatureSender)
	}
	receivers := []string{ids.Receiver}
	if m.Settings.EventsEnabled {
		receivers = append(receivers, ids.TemperatureReceiver)
	}
	if err := insert(m.Registration, MakeDevice(ids.Device, ids.Node, senders, receivers, label)); err != nil {
		return err
	}

	// video source, flow and sender. The transport file setter needs
	// the matching source and flow, so they are inserted first.
	if err := insert(m.Registration, MakeVideoSource(ids.Source, ids.Device, [2]int{25, 1}, label)); err != nil {
		return err
	}
	if err := insert(m.Registration, MakeRawVideoFlow(ids.Flow, ids.Source, ids.Device)); err != nil {
		return err
	}
	sender := MakeSender(ids.Sender, ids.Flow, ids.Device, TransportRTPMulticast, []string{"example", "example"}, label, "sender 0")
	connSender := connection.MakeRTPSender(ids.Sender, true)
	if err := activateInitial(sender, connSender, resolve, setTransportFile); err != nil {
		return err
	}
	if err := insert(m.Registration, sender); err != nil {
		return err
	}
	if err := insert(m.Connection, connSender); err != nil {
		return err
	}

	// video receiver
	receiver := MakeReceiver(ids.Receiver, ids.Device, TransportRTPMulticast, "urn:x-nmos:format:video", []string{"example", "example"}, label, "receiver 0")
	connReceiver := connection.MakeRTPReceiver(ids.Receiver, true)
	if err := activateInitial(receiver, connReceiver, resolve, nil); err != nil {
		return err
	}
	if err := insert(m.Registration, receiver); err != nil {
		return err
	}
	if err := insert(m.Connection, connReceiver); err != nil {
		return err
	}

	if m.Settings.EventsEnabled {
		if err := buildEventsResources(m, ids, label, resolve, insert); err != nil {
			return err
		}
	}

	m.Notify()
	return nil
}

// buildEventsResources inserts the temperature event source with its
// WebSocket sender and receiver. The caller must hold the model lock.
func buildEventsResources(m *model.Model, ids IDs, label string, resolve connection.AutoResolver, insert func(*model.Store, *resource.Resource) error) error {
	if err := insert(m.Registration, MakeDataSource(ids.TemperatureSource, ids.Device, events.TemperatureCelsius, label)); err != nil {
		return err
	}
	if err := insert(m.Registration, MakeDataFlow(ids.TemperatureFlow, ids.TemperatureSource, ids.Device, "application/json")); err != nil {
		return err
	}

	wsSender := MakeSender(ids.TemperatureSender, ids.TemperatureFlow, ids.Device, TransportWebSocket, []string{"example"}, label, "sender 1")
	connWSSender := connection.MakeEventsWebSocketSender(ids.TemperatureSender)
	if err := activateInitial(wsSender, connWSSender, resolve, nil); err != nil {
		return err
	}
	if err := insert(m.Registration, wsSender); err != nil {
		return err
	}
	if err := insert(m.Connection, connWSSender); err != nil {
		return err
	}

	wsReceiver := MakeReceiver(ids.TemperatureReceiver, ids.Device, TransportWebSocket, "urn:x-nmos:format:data", []string{"example"}, label, "receiver 1")
	connWSReceiver := connection.MakeEventsWebSocketReceiver(ids.TemperatureReceiver)
	if err := activateInitial(wsReceiver, connWSReceiver, resolve, nil); err != nil {
		return err
	}
	if err := insert(m.Registration, wsReceiver); err != nil {
		return err
	}
	if err := insert(m.Connection, connWSReceiver); err != nil {
		return err
	}

	// -20.0 to 100.0 C in steps of 0.1, starting at 20.1 C
	typ := events.MakeNumberType([2]int64{-200, 10}, [2]int64{1000, 10}, [2]int64{1, 10}, "C")
	state := events.MakeNumberState(ids.TemperatureSource, 201, 10, events.TemperatureCelsius)
	return insert(m.Events, events.MakeEventsSource(ids.TemperatureSource, state, typ))
}

// activateInitial resolves a freshly constructed connection resource's
// active legs and, when a setter is supplied, synthesizes its initial
// transport file, so the active endpoint starts fully concrete.
func activateInitial(res, connRes *resource.Resource, resolve connection.AutoResolver, setTransportFile connection.TransportFileSetter) error {
	active := connection.Active(connRes)
	legs := connection.TransportParams(active)
	resolve(res, connRes, legs)
	if err := connection.CheckResolved(legs); err != nil {
		return err
	}
	raw := make([]any, len(legs))
	for i, leg := range legs {
		raw[i] = map[string]any(leg)
	}
	active[connection.FieldTransportParams] = raw

	if setTransportFile != nil {
		tf, err := setTransportFile(res, connRes, legs)
		if err != nil {
			return err
		}
		if tf != nil {
			active[connection.FieldTransportFile] = map[string]any(tf)
		}
	}
	return nil
}

// MakeAutoResolver builds this node's "auto" resolution policy.
//
// Which fields need defaulting depends on the resource, and the
// default is almost always different for each one, so rules are keyed
// by resource identity.
func MakeAutoResolver(settings model.Settings) connection.AutoResolver {
	ids := DeriveIDs(settings.SeedID)
	eventsURI := fmt.Sprintf("ws://%s:%d/ws", settings.Host, settings.Port)

	return func(res, connRes *resource.Resource, params []resource.Data) {
		switch connRes.ID {
		case ids.Sender:
			connection.ResolveRTPAuto(params)
			resolveLeg(params, 0, "source_ip", "192.168.255.0")
			resolveLeg(params, 1, "source_ip", "192.168.255.1")
			resolveLeg(params, 0, "destination_ip", "239.255.255.0")
			resolveLeg(params, 1, "destination_ip", "239.255.255.1")
		case ids.Receiver:
			connection.ResolveRTPAuto(params)
			resolveLeg(params, 0, "interface_ip", "192.168.255.2")
			resolveLeg(params, 1, "interface_ip", "192.168.255.3")
		case ids.TemperatureSender:
			if len(params) > 0 {
				connection.ResolveAuto(params[0], "connection_uri", func() any { return eventsURI })
				connection.ResolveAuto(params[0], "connection_authorization", func() any { return false })
			}
		case ids.TemperatureReceiver:
			if len(params) > 0 {
				connection.ResolveAuto(params[0], "connection_authorization", func() any { return false })
			}
		}
	}
}

// resolveLeg applies a fixed string default to one leg, if present.
func resolveLeg(params []resource.Data, i int, field, value string) {
	if i < len(params) {
		connection.ResolveAuto(params[i], field, func() any { return value })
	}
}

// MakeTransportFileSetter builds the callback that recomputes the RTP
// sender's session description during activation.
//
// The model lock is already held by the calling thread, so direct
// access to the registration store is safe.
func MakeTransportFileSetter(m *model.Model) connection.TransportFileSetter {
	ids := DeriveIDs(m.Settings.SeedID)

	return func(res, connRes *resource.Resource, active []resource.Data) (resource.Data, error) {
		if connRes.ID != ids.Sender {
			// only the RTP sender carries a transport file
			return nil, nil
		}

		source, err := m.Registration.Find(ids.Source, resource.TypeSource)
		if err != nil {
			return nil, fmt.Errorf("%w: source %s", connection.ErrMissingReference, ids.Source)
		}
		flow, err := m.Registration.Find(ids.Flow, resource.TypeFlow)
		if err != nil {
			return nil, fmt.Errorf("%w: flow %s", connection.ErrMissingReference, ids.Flow)
		}

		params := sdp.MakeParameters(source.Data, flow.Data, res.Data, legLabels)
		session, err := sdp.MakeSessionDescription(params, active)
		if err != nil {
			return nil, err
		}
		return resource.Data{
			"data": session,
			"type": "application/sdp",
		}, nil
	}
}

// MakeActivationHandler builds the post-commit callback that manages
// event subscriptions for WebSocket receivers. Activating a receiver
// with master_enable set subscribes it to the event source behind its
// staged sender; parking it unsubscribes.
func MakeActivationHandler(m *model.Model, subs *events.Subscriptions, logger Logger) connection.ActivationHandler {
	if logger == nil {
		logger = noopLogger{}
	}

	return func(res, connRes *resource.Resource) {
		if connRes.Type != resource.TypeConnectionReceiver || res.Data.String("transport") != TransportWebSocket {
			return
		}

		active := connection.Active(connRes)
		if !active.Bool(connection.FieldMasterEnable) {
			subs.Unsubscribe(connRes.ID)
			logger.Info("events receiver unsubscribed", "receiver_id", connRes.ID)
			return
		}

		sourceID := eventSourceFor(m, active.String("sender_id"))
		if sourceID == "" {
			logger.Warn("events receiver has no resolvable event source", "receiver_id", connRes.ID)
			return
		}
		subs.Subscribe(connRes.ID, sourceID)
		logger.Info("events receiver subscribed", "receiver_id", connRes.ID, "source_id", sourceID)
	}
}

// eventSourceFor walks sender -> flow -> source to find the event
// source a receiver should subscribe to. Any missing link yields "".
func eventSourceFor(m *model.Model, senderID string) string {
	if senderID == "" {
		return ""
	}

	m.Lock()
	defer m.Unlock()

	sender, err := m.Registration.Find(senderID, resource.TypeSender)
	if err != nil {
		return ""
	}
	flow, err := m.Registration.Find(sender.Data.String("flow_id"), resource.TypeFlow)
	if err != nil {
		return ""
	}
	return flow.Data.String("source_id")
}

// MakeMessageHandler builds the inbound event state handler for
// push-style receivers. This node just reports received temperatures.
func MakeMessageHandler(logger Logger) connection.MessageHandler {
	if logger == nil {
		logger = noopLogger{}
	}

	return func(receiver, connReceiver *resource.Resource, message resource.Data) {
		value, ok := events.StatePayloadValue(message)
		if !ok {
			logger.Warn("event state message without numeric payload", "receiver_id", receiver.ID)
			return
		}
		logger.Info("temperature received",
			"receiver_id", receiver.ID,
			"event_type", message.String("event_type"),
			"value", value,
		)
	}
}

// ReceiverDelivery is the events sink that loops committed event state
// back into locally subscribed receivers via the message handler,
// modelling the receive side of the push transport.
type ReceiverDelivery struct {
	model  *model.Model
	subs   *events.Subscriptions
	handle connection.MessageHandler
	logger Logger
}

// NewReceiverDelivery creates a delivery sink over the given
// subscription registry.
func NewReceiverDelivery(m *model.Model, subs *events.Subscriptions, handle connection.MessageHandler) *ReceiverDelivery {
	return &ReceiverDelivery{
		model:  m,
		subs:   subs,
		handle: handle,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the delivery sink.
func (d *ReceiverDelivery) SetLogger(logger Logger) {
	d.logger = logger
}

// PublishEvent delivers a state document to every receiver subscribed
// to the source. Resource snapshots are taken under the model lock;
// the handler runs outside it.
func (d *ReceiverDelivery) PublishEvent(sourceID string, state resource.Data) {
	if d.handle == nil {
		return
	}

	for _, receiverID := range d.subs.ReceiversFor(sourceID) {
		d.model.Lock()
		receiver, errRes := d.model.Registration.Find(receiverID, resource.TypeReceiver)
		connReceiver, errConn := d.model.Connection.Find(receiverID, resource.TypeConnectionReceiver)
		var receiverCopy, connCopy *resource.Resource
		if errRes == nil && errConn == nil {
			receiverCopy = receiver.DeepCopy()
			connCopy = connReceiver.DeepCopy()
		}
		d.model.Unlock()

		if receiverCopy == nil {
			d.logger.Warn("subscribed receiver missing from model", "receiver_id", receiverID)
			continue
		}
		d.handle(receiverCopy, connCopy, resource.DeepCopyData(state))
	}
}
