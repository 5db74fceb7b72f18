package events

import "sync"

// Subscriptions tracks which push-style receivers are subscribed to
// which event sources. The activation handler updates it as
// connection receivers are activated and parked; the delivery path
// reads it per emitted event.
//
// All methods are safe for concurrent use. Subscriptions has its own
// lock and is never touched while holding the model lock.
type Subscriptions struct {
	mu sync.RWMutex
	// bySource maps source id to the set of subscribed receiver ids.
	bySource map[string]map[string]struct{}
	// byReceiver maps receiver id to its subscribed source id.
	byReceiver map[string]string
}

// NewSubscriptions creates an empty subscription registry.
func NewSubscriptions() *Subscriptions {
	return &Subscriptions{
		bySource:   make(map[string]map[string]struct{}),
		byReceiver: make(map[string]string),
	}
}

// Subscribe points a receiver at an event source, replacing any
// previous subscription the receiver held.
func (s *Subscriptions) Subscribe(receiverID, sourceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.unsubscribeLocked(receiverID)
	if s.bySource[sourceID] == nil {
		s.bySource[sourceID] = make(map[string]struct{})
	}
	s.bySource[sourceID][receiverID] = struct{}{}
	s.byReceiver[receiverID] = sourceID
}

// Unsubscribe removes the receiver's subscription, if any.
func (s *Subscriptions) Unsubscribe(receiverID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unsubscribeLocked(receiverID)
}

func (s *Subscriptions) unsubscribeLocked(receiverID string) {
	sourceID, ok := s.byReceiver[receiverID]
	if !ok {
		return
	}
	delete(s.byReceiver, receiverID)
	if set := s.bySource[sourceID]; set != nil {
		delete(set, receiverID)
		if len(set) == 0 {
			delete(s.bySource, sourceID)
		}
	}
}

// ReceiversFor returns the ids of every receiver subscribed to the
// given source.
func (s *Subscriptions) ReceiversFor(sourceID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := s.bySource[sourceID]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// SourceFor returns the source id a receiver is subscribed to, or ""
// if it holds no subscription.
func (s *Subscriptions) SourceFor(receiverID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byReceiver[receiverID]
}
