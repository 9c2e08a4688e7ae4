package watch

import (
	"context"
	"log/slog"
	"sync"

	"homeserve/internal/domain/booking"
	"homeserve/internal/infra/docstore"
	"homeserve/internal/infra/repository"
	"homeserve/internal/usecase/notifications"
	"homeserve/internal/usecase/queries"

	"github.com/google/uuid"
)

// BookingSource is the live-query surface of the booking store adapter.
type BookingSource interface {
	WatchByID(ctx context.Context, id uuid.UUID, fn func(repository.Change)) (docstore.Unsubscribe, error)
	WatchByUser(ctx context.Context, userID uuid.UUID, fn func(repository.Change)) (docstore.Unsubscribe, error)
	WatchByStatus(ctx context.Context, status booking.Status, fn func(repository.Change)) (docstore.Unsubscribe, error)
}

// Notifier receives transition events. Implementations must deduplicate
// by Event.ID(): overlapping watches on the same booking deliver the same
// transition more than once.
type Notifier interface {
	Notify(e notifications.Event)
}

// Hub bridges raw store snapshots into transition events. Detection is
// edge-triggered: a snapshot produces an event only when its status
// differs from the previously seen one, so duplicate snapshots never
// re-notify.
type Hub struct {
	source   BookingSource
	notifier Notifier
	logger   *slog.Logger

	mu      sync.Mutex
	userSub docstore.Unsubscribe
	userID  *uuid.UUID
}

func NewHub(source BookingSource, notifier Notifier, logger *slog.Logger) *Hub {
	return &Hub{
		source:   source,
		notifier: notifier,
		logger:   logger,
	}
}

// tracker keeps the per-booking edge-detection state of one subscription.
// Callbacks of a single subscription are delivered serially, so no lock is
// needed; state mutation stays inside the callback.
type tracker struct {
	prevStatus  map[uuid.UUID]booking.Status
	hadProvider map[uuid.UUID]bool
	lastView    map[uuid.UUID]*queries.BookingView
}

func newTracker() *tracker {
	return &tracker{
		prevStatus:  make(map[uuid.UUID]booking.Status),
		hadProvider: make(map[uuid.UUID]bool),
		lastView:    make(map[uuid.UUID]*queries.BookingView),
	}
}

// WatchBooking follows a single booking and pushes fresh view models to
// sink. The returned disposer must be called when the consuming scope goes
// away; it is safe to call more than once.
func (h *Hub) WatchBooking(ctx context.Context, bookingID uuid.UUID, sink func(*queries.BookingView)) (docstore.Unsubscribe, error) {
	t := newTracker()
	return h.source.WatchByID(ctx, bookingID, func(c repository.Change) {
		if view := h.observe(t, c); view != nil {
			sink(view)
		}
	})
}

// WatchUserBookings follows every booking belonging to one user, feeding
// both the sink and the notification center.
func (h *Hub) WatchUserBookings(ctx context.Context, userID uuid.UUID, sink func(*queries.BookingView)) (docstore.Unsubscribe, error) {
	t := newTracker()
	return h.source.WatchByUser(ctx, userID, func(c repository.Change) {
		if view := h.observe(t, c); view != nil {
			sink(view)
		}
	})
}

// WatchPendingQueue feeds the provider dashboard. NewRequest events fire
// only for added documents; a pending booking modified in place must not
// re-announce itself, which is why the change kind is consulted instead of
// a field diff.
func (h *Hub) WatchPendingQueue(ctx context.Context, sink func(docstore.ChangeKind, *queries.BookingView)) (docstore.Unsubscribe, error) {
	return h.source.WatchByStatus(ctx, booking.StatusPending, func(c repository.Change) {
		if c.Err != nil {
			h.logger.Warn("pending queue snapshot failed, view may be stale", "error", c.Err)
			return
		}
		b := c.Booking
		view := queries.NewBookingView(b)

		if c.Kind == docstore.ChangeAdded {
			d := b.Details()
			h.notifier.Notify(notifications.Event{
				Type:        notifications.EventNewRequest,
				BookingID:   b.ID(),
				ServiceType: d.ServiceType.String(),
				IsUrgent:    d.IsUrgent,
				Timestamp:   b.CreatedAt(),
			})
		}
		sink(c.Kind, view)
	})
}

// BindUser reacts to login/logout edges from the identity collaborator.
// The previous user's watch is always disposed first; forgetting to do so
// is exactly the duplicate-notification defect this method exists to
// prevent.
func (h *Hub) BindUser(ctx context.Context, userID *uuid.UUID) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.userSub != nil {
		h.userSub()
		h.userSub = nil
	}
	h.userID = userID
	if userID == nil {
		return nil
	}

	t := newTracker()
	sub, err := h.source.WatchByUser(ctx, *userID, func(c repository.Change) {
		h.observe(t, c)
	})
	if err != nil {
		return err
	}
	h.userSub = sub
	return nil
}

// Close disposes every subscription the hub owns.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.userSub != nil {
		h.userSub()
		h.userSub = nil
	}
	h.userID = nil
}

// observe recomputes the derived view for one snapshot and emits events
// for detected edges. A failed snapshot degrades the view (stale flag)
// instead of tearing the subscription down.
func (h *Hub) observe(t *tracker, c repository.Change) *queries.BookingView {
	if c.Err != nil {
		h.logger.Warn("snapshot delivery failed, serving stale view",
			"booking_id", c.BookingID, "error", c.Err)
		if last, ok := t.lastView[c.BookingID]; ok {
			stale := *last
			stale.Stale = true
			return &stale
		}
		return nil
	}

	b := c.Booking
	id := b.ID()
	view := queries.NewBookingView(b)
	d := b.Details()

	// The first snapshot only primes the tracker: a provider or status
	// that was already in place before the watch opened is history, not
	// an edge.
	prev, seen := t.prevStatus[id]
	if seen && prev != b.Status() {
		h.notifier.Notify(statusEvent(b, prev))
	}
	if seen && b.ProviderName() != "" && !t.hadProvider[id] {
		// Provider appearance maps onto the acceptance transition, so an
		// overlapping status edge cannot double-notify.
		h.notifier.Notify(notifications.Event{
			Type:         notifications.EventAccepted,
			BookingID:    id,
			ServiceType:  d.ServiceType.String(),
			ProviderName: b.ProviderName(),
			FromStatus:   booking.StatusPending.String(),
			ToStatus:     booking.StatusAccepted.String(),
			IsUrgent:     d.IsUrgent,
			Timestamp:    b.UpdatedAt(),
		})
	}

	t.prevStatus[id] = b.Status()
	t.hadProvider[id] = b.ProviderName() != ""
	t.lastView[id] = view
	return view
}

func statusEvent(b *booking.Booking, from booking.Status) notifications.Event {
	d := b.Details()
	e := notifications.Event{
		BookingID:    b.ID(),
		ServiceType:  d.ServiceType.String(),
		ProviderName: b.ProviderName(),
		FromStatus:   from.String(),
		ToStatus:     b.Status().String(),
		IsUrgent:     d.IsUrgent,
		Timestamp:    b.UpdatedAt(),
	}
	switch b.Status() {
	case booking.StatusAccepted:
		e.Type = notifications.EventAccepted
	case booking.StatusInProgress:
		e.Type = notifications.EventInProgress
	case booking.StatusCompleted:
		e.Type = notifications.EventCompleted
	case booking.StatusRejected:
		e.Type = notifications.EventRejected
	default:
		e.Type = notifications.EventNewRequest
	}
	return e
}
