package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	changeChannel = "homeserve_doc_changes"

	createTableSQL = `
CREATE TABLE IF NOT EXISTS documents (
    collection  text        NOT NULL,
    id          uuid        NOT NULL,
    data        jsonb       NOT NULL,
    created_at  timestamptz NOT NULL,
    updated_at  timestamptz NOT NULL,
    PRIMARY KEY (collection, id)
)`
)

type changePayload struct {
	Collection string     `json:"collection"`
	ID         uuid.UUID  `json:"id"`
	Kind       ChangeKind `json:"kind"`
}

// PostgresStore persists documents as JSONB rows and propagates commits to
// watchers through LISTEN/NOTIFY. NOTIFY fires inside the writing
// transaction, so listeners observe commits in commit order.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
	queue  *dispatchQueue

	mu          sync.Mutex
	watchers    map[int64]*pgWatcher
	nextWatcher int64
	closed      bool

	cancelListen context.CancelFunc
	listenerDone chan struct{}
}

type pgWatcher struct {
	query     Query
	fn        func(Change)
	matched   map[uuid.UUID]bool
	cancelled atomic.Bool
}

func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) (*PostgresStore, error) {
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		return nil, err
	}

	listenCtx, cancel := context.WithCancel(context.Background())
	s := &PostgresStore{
		pool:         pool,
		logger:       logger,
		queue:        newDispatchQueue(),
		watchers:     make(map[int64]*pgWatcher),
		cancelListen: cancel,
		listenerDone: make(chan struct{}),
	}
	go s.listen(listenCtx)
	return s, nil
}

func (s *PostgresStore) Create(ctx context.Context, collection string, id uuid.UUID, data json.RawMessage, now time.Time) error {
	err := s.withNotify(ctx, changePayload{Collection: collection, ID: id, Kind: ChangeAdded}, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx,
			`INSERT INTO documents (collection, id, data, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
			collection, id, data, now, now,
		)
		return execErr
	})
	if isDuplicateKey(err) {
		return ErrDuplicateID
	}
	return err
}

func (s *PostgresStore) Get(ctx context.Context, collection string, id uuid.UUID) (Document, error) {
	var doc Document
	err := s.pool.QueryRow(ctx,
		`SELECT id, data, created_at, updated_at FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&doc.ID, &doc.Data, &doc.CreatedAt, &doc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}

func (s *PostgresStore) Update(ctx context.Context, collection string, id uuid.UUID, data json.RawMessage, cond *Condition, now time.Time) error {
	return s.withNotify(ctx, changePayload{Collection: collection, ID: id, Kind: ChangeModified}, func(tx pgx.Tx) error {
		var (
			tag pgconn.CommandTag
			err error
		)
		if cond == nil {
			tag, err = tx.Exec(ctx,
				`UPDATE documents SET data = $3, updated_at = $4 WHERE collection = $1 AND id = $2`,
				collection, id, data, now,
			)
		} else {
			tag, err = tx.Exec(ctx,
				`UPDATE documents SET data = $3, updated_at = $4 WHERE collection = $1 AND id = $2 AND data->>$5 = $6`,
				collection, id, data, now, cond.Field, cond.Equals,
			)
		}
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			var exists bool
			if scanErr := tx.QueryRow(ctx,
				`SELECT EXISTS (SELECT 1 FROM documents WHERE collection = $1 AND id = $2)`,
				collection, id,
			).Scan(&exists); scanErr != nil {
				return scanErr
			}
			if !exists {
				return ErrNotFound
			}
			return ErrConditionFailed
		}
		return nil
	})
}

func (s *PostgresStore) List(ctx context.Context, q Query) ([]Document, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, data, created_at, updated_at FROM documents WHERE collection = $1 ORDER BY created_at DESC`,
		q.Collection,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Data, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, err
		}
		if q.Matches(doc.Data) {
			out = append(out, doc)
		}
	}
	return out, rows.Err()
}

func (s *PostgresStore) Watch(ctx context.Context, q Query, fn func(Change)) (Unsubscribe, error) {
	// Registration and the initial snapshot happen under the store lock:
	// a commit notified between the two would otherwise be lost. The
	// listener blocks on the same lock, so it cannot fan out ahead of the
	// snapshot deliveries.
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	w := &pgWatcher{query: q, fn: fn, matched: make(map[uuid.UUID]bool)}
	s.nextWatcher++
	key := s.nextWatcher
	s.watchers[key] = w

	initial, err := s.List(ctx, q)
	if err != nil {
		delete(s.watchers, key)
		s.mu.Unlock()
		return nil, err
	}
	for _, doc := range initial {
		w.matched[doc.ID] = true
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

func (s *PostgresStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.watchers = make(map[int64]*pgWatcher)
	s.mu.Unlock()

	s.cancelListen()
	<-s.listenerDone
	s.queue.close()
	return nil
}

// withNotify runs the write and the pg_notify call in one transaction.
func (s *PostgresStore) withNotify(ctx context.Context, payload changePayload, write func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			s.logger.Warn("failed to rollback docstore transaction", "error", rollbackErr)
		}
	}()

	if err := write(tx); err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, changeChannel, string(body)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// listen holds a dedicated connection on the change channel and fans
// notifications out to registered watchers. The loop survives connection
// loss by re-acquiring and re-listening.
func (s *PostgresStore) listen(ctx context.Context) {
	defer close(s.listenerDone)
	for ctx.Err() == nil {
		if err := s.listenOnce(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn("docstore listener disconnected, retrying", "error", err)
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			}
		}
	}
}

func (s *PostgresStore) listenOnce(ctx context.Context) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `LISTEN `+changeChannel); err != nil {
		return err
	}

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}

		var payload changePayload
		if err := json.Unmarshal([]byte(notification.Payload), &payload); err != nil {
			s.logger.Warn("docstore listener received malformed payload", "error", err)
			continue
		}
		s.handleChange(ctx, payload)
	}
}

func (s *PostgresStore) handleChange(ctx context.Context, payload changePayload) {
	doc, err := s.Get(ctx, payload.Collection, payload.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.watchers {
		if w.query.Collection != payload.Collection {
			continue
		}

		if err != nil {
			// Could not refresh the document for an observed commit; the
			// watcher stays subscribed and is told the view may be stale.
			if w.matched[payload.ID] {
				s.deliver(w, Change{Kind: ChangeModified, Doc: Document{ID: payload.ID}, Err: err})
			}
			continue
		}

		was := w.matched[payload.ID]
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
			w.matched[payload.ID] = true
		} else {
			delete(w.matched, payload.ID)
		}
		s.deliver(w, Change{Kind: kind, Doc: doc})
	}
}

func (s *PostgresStore) deliver(w *pgWatcher, change Change) {
	s.queue.enqueue(func() {
		if w.cancelled.Load() {
			return
		}
		w.fn(change)
	})
}

func isDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
