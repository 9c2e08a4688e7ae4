package notifications

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventNewRequest EventType = "new_request"
	EventAccepted   EventType = "accepted"
	EventInProgress EventType = "in_progress"
	EventCompleted  EventType = "completed"
	EventRejected   EventType = "rejected"
)

// Event is what the subscription hub emits when it observes a watched
// transition. ID() identifies the underlying transition, so overlapping
// watches on the same booking cannot produce duplicate notifications.
type Event struct {
	Type         EventType
	BookingID    uuid.UUID
	ServiceType  string
	ProviderName string
	FromStatus   string
	ToStatus     string
	IsUrgent     bool
	Timestamp    time.Time
}

func (e Event) ID() string {
	if e.Type == EventNewRequest {
		return e.BookingID.String()
	}
	return fmt.Sprintf("%s:%s>%s", e.BookingID, e.FromStatus, e.ToStatus)
}

type Notification struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

// Center holds the session's notification list, most recent first. It is
// created at session start and handed to consumers by the injector; there
// is no package-level instance. The list only grows; read state is the
// only mutable part.
type Center struct {
	logger *slog.Logger

	mu    sync.Mutex
	items []Notification
	seen  map[string]struct{}
}

func NewCenter(logger *slog.Logger) *Center {
	return &Center{
		logger: logger,
		seen:   make(map[string]struct{}),
	}
}

func (c *Center) Notify(e Event) {
	n := render(e)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, dup := c.seen[n.ID]; dup {
		return
	}
	c.seen[n.ID] = struct{}{}
	c.items = append([]Notification{n}, c.items...)
	c.logger.Debug("notification added", "id", n.ID, "type", n.Type)
}

func (c *Center) List() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Center) UnreadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, n := range c.items {
		if !n.Read {
			count++
		}
	}
	return count
}

// MarkRead is a no-op if the id is absent or already read.
func (c *Center) MarkRead(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i].Read = true
			return
		}
	}
}

func (c *Center) MarkAllRead() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		c.items[i].Read = true
	}
}

func render(e Event) Notification {
	n := Notification{
		ID:        e.ID(),
		Type:      e.Type,
		Timestamp: e.Timestamp,
	}
	switch e.Type {
	case EventNewRequest:
		n.Title = "New Service Request"
		if e.IsUrgent {
			n.Message = fmt.Sprintf("New urgent %s service request received", e.ServiceType)
		} else {
			n.Message = fmt.Sprintf("New %s service request received", e.ServiceType)
		}
	case EventAccepted:
		n.Title = "Request Accepted"
		if e.ProviderName != "" {
			n.Message = fmt.Sprintf("%s accepted your %s request", e.ProviderName, e.ServiceType)
		} else {
			n.Message = fmt.Sprintf("Your %s request has been accepted", e.ServiceType)
		}
	case EventInProgress:
		n.Title = "Service Started"
		n.Message = fmt.Sprintf("Your %s service is now in progress", e.ServiceType)
	case EventCompleted:
		n.Title = "Service Completed"
		n.Message = fmt.Sprintf("Your %s service has been completed", e.ServiceType)
	case EventRejected:
		n.Title = "Request Declined"
		n.Message = fmt.Sprintf("Your %s request was declined", e.ServiceType)
	default:
		n.Title = "Service Update"
		n.Message = fmt.Sprintf("Service status updated to: %s", e.ToStatus)
	}
	return n
}
