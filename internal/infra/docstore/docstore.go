// Package docstore provides a small document-database contract: JSON
// documents in named collections, equality-filtered queries, and live
// watches that deliver an initial snapshot followed by change events with
// added/modified/removed kinds. Two drivers exist: an in-memory one that
// defines the reference semantics, and a Postgres one backed by JSONB and
// LISTEN/NOTIFY.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("document not found")
	ErrDuplicateID     = errors.New("document id already exists")
	ErrConditionFailed = errors.New("update condition failed")
	ErrClosed          = errors.New("store is closed")
)

type ChangeKind string

const (
	ChangeAdded    ChangeKind = "added"
	ChangeModified ChangeKind = "modified"
	ChangeRemoved  ChangeKind = "removed"
)

type Document struct {
	ID        uuid.UUID
	Data      json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Change is one delivery on a watch. Kind is removed when a modified
// document stops matching the watch filter. Err is set when the store could
// not produce a fresh document for an observed commit; the subscription
// stays alive and Doc holds the last known state, possibly stale.
type Change struct {
	Kind ChangeKind
	Doc  Document
	Err  error
}

// Filter matches documents whose top-level field renders to the given
// string. Booleans and numbers compare through their canonical string form.
type Filter struct {
	Field  string
	Equals string
}

// Query selects documents in one collection. Results of List and the
// initial snapshot of Watch are ordered by createdAt descending.
type Query struct {
	Collection string
	Filters    []Filter
}

func (q Query) Matches(data json.RawMessage) bool {
	for _, f := range q.Filters {
		v, ok := FieldString(data, f.Field)
		if !ok || v != f.Equals {
			return false
		}
	}
	return true
}

// Condition guards an Update: the write applies only while the stored
// document's field still renders to Equals.
type Condition struct {
	Field  string
	Equals string
}

// Unsubscribe cancels a watch. Safe to call multiple times.
type Unsubscribe func()

// Store is the contract both drivers implement. Watch delivers the initial
// snapshot as added changes before any subsequent change event, and keeps
// per-document delivery order aligned with commit order.
type Store interface {
	Create(ctx context.Context, collection string, id uuid.UUID, data json.RawMessage, now time.Time) error
	Get(ctx context.Context, collection string, id uuid.UUID) (Document, error)
	Update(ctx context.Context, collection string, id uuid.UUID, data json.RawMessage, cond *Condition, now time.Time) error
	List(ctx context.Context, q Query) ([]Document, error)
	Watch(ctx context.Context, q Query, fn func(Change)) (Unsubscribe, error)
	Close() error
}

// FieldString extracts a top-level field from a JSON document as a string.
func FieldString(data json.RawMessage, field string) (string, bool) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return "", false
	}
	v, ok := m[field]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return "", false
	}
}

// dispatchQueue serializes watch deliveries. All changes enter one FIFO, so
// delivery order for a single document always reflects commit order, and a
// callback never runs concurrently with another.
type dispatchQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []func()
	closed bool
	done   chan struct{}
}

func newDispatchQueue() *dispatchQueue {
	q := &dispatchQueue{done: make(chan struct{})}
	q.cond = sync.NewCond(&q.mu)
	go q.run()
	return q
}

func (q *dispatchQueue) enqueue(fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.items = append(q.items, fn)
	q.cond.Signal()
}

func (q *dispatchQueue) run() {
	defer close(q.done)
	for {
		q.mu.Lock()
		for len(q.items) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.items) == 0 && q.closed {
			q.mu.Unlock()
			return
		}
		fn := q.items[0]
		q.items = q.items[1:]
		q.mu.Unlock()

		fn()
	}
}

// close drains remaining deliveries, then stops the worker.
func (q *dispatchQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.cond.Signal()
	q.mu.Unlock()
	<-q.done
}
