package realtime

import (
	"strings"
	"sync"

	"github.com/kisumuhealth/frontdesk/pkg/logging"
)

// DepartmentAll subscribes to every department's events.
const DepartmentAll = "ALL"

const subscriberBuffer = 16

// Subscriber is one dashboard connection's event stream.
type Subscriber struct {
	department string
	events     chan Event
}

// Events returns the stream. The hub closes it on Unsubscribe.
func (s *Subscriber) Events() <-chan Event { return s.events }

// Department returns the subscription scope.
func (s *Subscriber) Department() string { return s.department }

func (s *Subscriber) wants(event Event) bool {
	if strings.EqualFold(s.department, DepartmentAll) {
		return true
	}
	return event.Department == "" || event.Department == s.department
}

// Hub fans events out to subscribers. Slow subscribers lose events rather
// than stalling the publisher.
type Hub struct {
	logger *logging.Logger

	mu          sync.RWMutex
	subscribers map[*Subscriber]struct{}
}

var _ Publisher = (*Hub)(nil)

// NewHub creates an empty hub.
func NewHub(logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Default()
	}
	return &Hub{
		logger:      logger,
		subscribers: make(map[*Subscriber]struct{}),
	}
}

// Subscribe registers a stream scoped to a department (DepartmentAll for
// everything).
func (h *Hub) Subscribe(department string) *Subscriber {
	department = strings.TrimSpace(department)
	if department == "" {
		department = DepartmentAll
	}
	sub := &Subscriber{
		department: department,
		events:     make(chan Event, subscriberBuffer),
	}
	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Unsubscribe removes the stream and closes its channel. Safe to call twice.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subscribers[sub]; !ok {
		return
	}
	delete(h.subscribers, sub)
	close(sub.events)
}

// Publish delivers the event to every matching subscriber without blocking.
func (h *Hub) Publish(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subscribers {
		if !sub.wants(event) {
			continue
		}
		select {
		case sub.events <- event:
		default:
			h.logger.Warn("realtime: dropping event for slow subscriber",
				"type", string(event.Type),
				"department", sub.department,
			)
		}
	}
}

// SubscriberCount reports active subscriptions.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
