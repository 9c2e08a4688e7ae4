//go:build unit

package watch_test

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"homeserve/internal/domain/booking"
	"homeserve/internal/infra/docstore"
	"homeserve/internal/infra/repository"
	"homeserve/internal/usecase/notifications"
	"homeserve/internal/usecase/queries"
	"homeserve/internal/usecase/watch"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hubNow = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

// capturingNotifier mirrors the notification center's contract: events
// with an already seen ID are dropped.
type capturingNotifier struct {
	mu     sync.Mutex
	seen   map[string]struct{}
	events []notifications.Event
}

func (n *capturingNotifier) Notify(e notifications.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.seen == nil {
		n.seen = make(map[string]struct{})
	}
	if _, dup := n.seen[e.ID()]; dup {
		return
	}
	n.seen[e.ID()] = struct{}{}
	n.events = append(n.events, e)
}

func (n *capturingNotifier) snapshot() []notifications.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notifications.Event, len(n.events))
	copy(out, n.events)
	return out
}

type hubFixture struct {
	store    *docstore.MemoryStore
	repo     *repository.BookingRepository
	notifier *capturingNotifier
	hub      *watch.Hub
}

func newFixture(t *testing.T) *hubFixture {
	t.Helper()
	store := docstore.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	repo := repository.NewBookingRepository(store)
	notifier := &capturingNotifier{}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return &hubFixture{
		store:    store,
		repo:     repo,
		notifier: notifier,
		hub:      watch.NewHub(repo, notifier, logger),
	}
}

func (f *hubFixture) createBooking(t *testing.T, userID uuid.UUID) *booking.Booking {
	t.Helper()
	b, err := booking.NewBooking(
		booking.Contact{UserID: userID, FullName: "A", Email: "a@x.com", Phone: "123"},
		booking.Details{ServiceType: booking.ServicePlumbing, Date: "2024-01-01"},
		hubNow,
	)
	require.NoError(t, err)
	require.NoError(t, f.repo.Create(context.Background(), b))
	return b
}

func recvView(t *testing.T, ch <-chan *queries.BookingView) *queries.BookingView {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for view")
		return nil
	}
}

func eventsOfType(events []notifications.Event, et notifications.EventType) int {
	count := 0
	for _, e := range events {
		if e.Type == et {
			count++
		}
	}
	return count
}

func TestWatchBookingEdgeTriggering(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.createBooking(t, uuid.New())

	views := make(chan *queries.BookingView, 32)
	unsub, err := f.hub.WatchBooking(ctx, b.ID(), func(v *queries.BookingView) { views <- v })
	require.NoError(t, err)
	defer unsub()

	// Initial snapshot: derived view, no transition event.
	initial := recvView(t, views)
	assert.Equal(t, "pending", initial.Status)
	assert.True(t, initial.Steps[0].Completed)
	assert.False(t, initial.Steps[1].Completed)

	// Snapshot sequence pending, pending, accepted, accepted, completed:
	// exactly two status transitions must be reported.
	writeSame := func(expected booking.Status) {
		cur, findErr := f.repo.FindByID(ctx, b.ID())
		require.NoError(t, findErr)
		require.NoError(t, f.repo.Update(ctx, cur, expected))
	}
	writeSame(booking.StatusPending)

	cur, err := f.repo.FindByID(ctx, b.ID())
	require.NoError(t, err)
	require.NoError(t, cur.Accept(uuid.New(), "Jane", hubNow.Add(time.Minute)))
	require.NoError(t, f.repo.Update(ctx, cur, booking.StatusPending))
	writeSame(booking.StatusAccepted)

	cur, err = f.repo.FindByID(ctx, b.ID())
	require.NoError(t, err)
	require.NoError(t, cur.StartService(hubNow.Add(2*time.Minute)))
	require.NoError(t, f.repo.Update(ctx, cur, booking.StatusAccepted))
	cur, err = f.repo.FindByID(ctx, b.ID())
	require.NoError(t, err)
	require.NoError(t, cur.Complete(hubNow.Add(3*time.Minute)))
	require.NoError(t, f.repo.Update(ctx, cur, booking.StatusInProgress))

	// Drain the five write deliveries; the initial view is already consumed.
	var last *queries.BookingView
	for i := 0; i < 5; i++ {
		last = recvView(t, views)
	}
	assert.Equal(t, "completed", last.Status)
	assert.True(t, last.Steps[3].Completed)

	events := f.notifier.snapshot()
	assert.Equal(t, 1, eventsOfType(events, notifications.EventAccepted))
	assert.Equal(t, 1, eventsOfType(events, notifications.EventInProgress))
	assert.Equal(t, 1, eventsOfType(events, notifications.EventCompleted))
	assert.Equal(t, 0, eventsOfType(events, notifications.EventNewRequest))
}

func TestWatchBookingInitialSnapshotIsSilent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.createBooking(t, uuid.New())

	// Accepted before anyone watched: the acceptance is history, not an
	// edge, so the initial snapshot must not notify.
	cur, err := f.repo.FindByID(ctx, b.ID())
	require.NoError(t, err)
	require.NoError(t, cur.Accept(uuid.New(), "Jane", hubNow.Add(time.Minute)))
	require.NoError(t, f.repo.Update(ctx, cur, booking.StatusPending))

	views := make(chan *queries.BookingView, 32)
	unsub, err := f.hub.WatchBooking(ctx, b.ID(), func(v *queries.BookingView) { views <- v })
	require.NoError(t, err)
	defer unsub()

	initial := recvView(t, views)
	assert.Equal(t, "accepted", initial.Status)
	assert.Empty(t, f.notifier.snapshot())

	// The snapshot primed the tracker: the next real transition still fires.
	cur, err = f.repo.FindByID(ctx, b.ID())
	require.NoError(t, err)
	require.NoError(t, cur.StartService(hubNow.Add(2*time.Minute)))
	require.NoError(t, f.repo.Update(ctx, cur, booking.StatusAccepted))

	v := recvView(t, views)
	assert.Equal(t, "in-progress", v.Status)
	events := f.notifier.snapshot()
	assert.Equal(t, 0, eventsOfType(events, notifications.EventAccepted))
	assert.Equal(t, 1, eventsOfType(events, notifications.EventInProgress))
}

func TestWatchBookingAcceptedNotifiesExactlyOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.createBooking(t, uuid.New())

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	center := notifications.NewCenter(logger)
	hub := watch.NewHub(f.repo, center, logger)

	views := make(chan *queries.BookingView, 32)
	unsub, err := hub.WatchBooking(ctx, b.ID(), func(v *queries.BookingView) { views <- v })
	require.NoError(t, err)
	defer unsub()
	recvView(t, views)
	require.Equal(t, 0, center.UnreadCount())

	// Acceptance raises both a status edge and a provider appearance, but
	// they describe the same transition: unread count grows by exactly 1.
	cur, err := f.repo.FindByID(ctx, b.ID())
	require.NoError(t, err)
	require.NoError(t, cur.Accept(uuid.New(), "Jane", hubNow.Add(time.Minute)))
	require.NoError(t, f.repo.Update(ctx, cur, booking.StatusPending))

	v := recvView(t, views)
	assert.Equal(t, "accepted", v.Status)
	assert.True(t, v.Steps[1].Completed)
	assert.Equal(t, 1, center.UnreadCount())
}

func TestWatchPendingQueue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	type delivery struct {
		kind docstore.ChangeKind
		view *queries.BookingView
	}
	ch := make(chan delivery, 32)
	unsub, err := f.hub.WatchPendingQueue(ctx, func(kind docstore.ChangeKind, v *queries.BookingView) {
		ch <- delivery{kind, v}
	})
	require.NoError(t, err)
	defer unsub()

	b := f.createBooking(t, uuid.New())

	first := <-ch
	assert.Equal(t, docstore.ChangeAdded, first.kind)
	assert.Equal(t, b.ID(), first.view.ID)
	assert.Equal(t, 1, eventsOfType(f.notifier.snapshot(), notifications.EventNewRequest))

	// An in-place modification of a still-pending booking must not
	// re-announce it.
	cur, err := f.repo.FindByID(ctx, b.ID())
	require.NoError(t, err)
	require.NoError(t, f.repo.Update(ctx, cur, booking.StatusPending))

	second := <-ch
	assert.Equal(t, docstore.ChangeModified, second.kind)
	assert.Equal(t, 1, eventsOfType(f.notifier.snapshot(), notifications.EventNewRequest))

	// Acceptance removes it from the queue without a NewRequest.
	cur, err = f.repo.FindByID(ctx, b.ID())
	require.NoError(t, err)
	require.NoError(t, cur.Accept(uuid.New(), "Jane", hubNow.Add(time.Minute)))
	require.NoError(t, f.repo.Update(ctx, cur, booking.StatusPending))

	third := <-ch
	assert.Equal(t, docstore.ChangeRemoved, third.kind)
	assert.Equal(t, 1, eventsOfType(f.notifier.snapshot(), notifications.EventNewRequest))
}

func TestBindUserDisposesPreviousWatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	userID := uuid.New()
	b := f.createBooking(t, userID)

	require.NoError(t, f.hub.BindUser(ctx, &userID))
	// Re-login of the same user must replace, not stack, the watch.
	require.NoError(t, f.hub.BindUser(ctx, &userID))

	cur, err := f.repo.FindByID(ctx, b.ID())
	require.NoError(t, err)
	require.NoError(t, cur.Accept(uuid.New(), "Jane", hubNow.Add(time.Minute)))
	require.NoError(t, f.repo.Update(ctx, cur, booking.StatusPending))

	require.Eventually(t, func() bool {
		return eventsOfType(f.notifier.snapshot(), notifications.EventAccepted) >= 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, eventsOfType(f.notifier.snapshot(), notifications.EventAccepted))

	// Logout unbinds: later transitions are not observed.
	require.NoError(t, f.hub.BindUser(ctx, nil))
	cur, err = f.repo.FindByID(ctx, b.ID())
	require.NoError(t, err)
	require.NoError(t, cur.StartService(hubNow.Add(2*time.Minute)))
	require.NoError(t, f.repo.Update(ctx, cur, booking.StatusAccepted))

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, eventsOfType(f.notifier.snapshot(), notifications.EventInProgress))
}
