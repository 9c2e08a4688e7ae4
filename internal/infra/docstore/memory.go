package docstore

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps documents and live watches in-process. It is the
// default driver and the storage double in tests.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]map[uuid.UUID]Document
	watchers    map[int64]*memWatcher
	nextWatcher int64
	queue       *dispatchQueue
	closed      bool
}

type memWatcher struct {
	query     Query
	fn        func(Change)
	matched   map[uuid.UUID]bool
	cancelled atomic.Bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[uuid.UUID]Document),
		watchers:    make(map[int64]*memWatcher),
		queue:       newDispatchQueue(),
	}
}

func (s *MemoryStore) Create(_ context.Context, collection string, id uuid.UUID, data json.RawMessage, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	coll, ok := s.collections[collection]
	if !ok {
		coll = make(map[uuid.UUID]Document)
		s.collections[collection] = coll
	}
	if _, exists := coll[id]; exists {
		return ErrDuplicateID
	}

	doc := Document{ID: id, Data: cloneJSON(data), CreatedAt: now, UpdatedAt: now}
	coll[id] = doc
	s.fanOutLocked(collection, doc)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, collection string, id uuid.UUID) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Document{}, ErrClosed
	}

	doc, ok := s.collections[collection][id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return cloneDoc(doc), nil
}

func (s *MemoryStore) Update(_ context.Context, collection string, id uuid.UUID, data json.RawMessage, cond *Condition, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	coll := s.collections[collection]
	doc, ok := coll[id]
	if !ok {
		return ErrNotFound
	}
	if cond != nil {
		v, has := FieldString(doc.Data, cond.Field)
		if !has || v != cond.Equals {
			return ErrConditionFailed
		}
	}

	doc.Data = cloneJSON(data)
	doc.UpdatedAt = now
	coll[id] = doc
	s.fanOutLocked(collection, doc)
	return nil
}

func (s *MemoryStore) List(_ context.Context, q Query) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	var out []Document
	for _, doc := range s.collections[q.Collection] {
		if q.Matches(doc.Data) {
			out = append(out, cloneDoc(doc))
		}
	}
	sortByCreatedAtDesc(out)
	return out, nil
}

func (s *MemoryStore) Watch(_ context.Context, q Query, fn func(Change)) (Unsubscribe, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}

	w := &memWatcher{query: q, fn: fn, matched: make(map[uuid.UUID]bool)}
	s.nextWatcher++
	key := s.nextWatcher
	s.watchers[key] = w

	// Initial snapshot enqueued while still holding the lock, so no later
	// commit can be delivered ahead of it.
	var initial []Document
	for _, doc := range s.collections[q.Collection] {
		if q.Matches(doc.Data) {
			w.matched[doc.ID] = true
			initial = append(initial, cloneDoc(doc))
		}
	}
	sortByCreatedAtDesc(initial)
	for _, doc := range initial {
		s.deliver(w, Change{Kind: ChangeAdded, Doc: doc})
	}
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			w.cancelled.Store(true)
			s.mu.Lock()
			delete(s.watchers, key)
			s.mu.Unlock()
		})
	}, nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.watchers = make(map[int64]*memWatcher)
	s.mu.Unlock()

	s.queue.close()
	return nil
}

// fanOutLocked computes added/modified/removed per watcher from the match
// transition and enqueues deliveries. Caller holds s.mu.
func (s *MemoryStore) fanOutLocked(collection string, doc Document) {
	for _, w := range s.watchers {
		if w.query.Collection != collection {
			continue
		}
		was := w.matched[doc.ID]
		matches := w.query.Matches(doc.Data)

		var kind ChangeKind
		switch {
		case !was && matches:
			kind = ChangeAdded
		case was && matches:
			kind = ChangeModified
		case was && !matches:
			kind = ChangeRemoved
		default:
			continue
		}
		if matches {
			w.matched[doc.ID] = true
		} else {
			delete(w.matched, doc.ID)
		}
		s.deliver(w, Change{Kind: kind, Doc: cloneDoc(doc)})
	}
}

func (s *MemoryStore) deliver(w *memWatcher, change Change) {
	s.queue.enqueue(func() {
		if w.cancelled.Load() {
			return
		}
		w.fn(change)
	})
}

func cloneJSON(data json.RawMessage) json.RawMessage {
	out := make(json.RawMessage, len(data))
	copy(out, data)
	return out
}

func cloneDoc(doc Document) Document {
	doc.Data = cloneJSON(doc.Data)
	return doc
}

func sortByCreatedAtDesc(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
}
