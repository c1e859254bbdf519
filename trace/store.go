package trace

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"github.com/hazyhaar/pagekit/dbopen"
)

// Schema creates the keyword trace table. Pass it to dbopen.WithSchema
// or call Store.Init.
const Schema = `
CREATE TABLE IF NOT EXISTS keyword_traces (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	trace_id TEXT NOT NULL DEFAULT '',
	transport TEXT NOT NULL DEFAULT 'go',
	page TEXT NOT NULL,
	keyword TEXT NOT NULL,
	args TEXT NOT NULL DEFAULT '',
	duration_us INTEGER NOT NULL,
	error TEXT NOT NULL DEFAULT '',
	timestamp INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_keyword_traces_timestamp ON keyword_traces(timestamp);
CREATE INDEX IF NOT EXISTS idx_keyword_traces_trace_id ON keyword_traces(trace_id) WHERE trace_id != '';
CREATE INDEX IF NOT EXISTS idx_keyword_traces_error ON keyword_traces(error) WHERE error != '';
`

// Store buffers entries in a channel and flushes them to SQLite in
// batches. A full buffer drops entries rather than blocking keyword
// dispatch.
type Store struct {
	db   *sql.DB
	ch   chan *Entry
	done chan struct{}
	once sync.Once
}

// NewStore wraps db and starts the flush goroutine. The db must stay
// open until Close returns.
func NewStore(db *sql.DB) *Store {
	s := &Store{
		db:   db,
		ch:   make(chan *Entry, 1024),
		done: make(chan struct{}),
	}
	go s.flushLoop()
	return s
}

// Init creates the trace table if it does not exist. Optional when the
// db was opened with dbopen.WithSchema(trace.Schema).
func (s *Store) Init() error {
	_, err := s.db.Exec(Schema)
	return err
}

// RecordAsync queues an entry without blocking. Entries are dropped
// when the buffer is full.
func (s *Store) RecordAsync(e *Entry) {
	select {
	case s.ch <- e:
	default:
		slog.Debug("trace store: buffer full, entry dropped", "keyword", e.Keyword)
	}
}

// Close drains pending entries and stops the flush goroutine.
func (s *Store) Close() error {
	s.once.Do(func() {
		close(s.ch)
		<-s.done
	})
	return nil
}

func (s *Store) flushLoop() {
	defer close(s.done)

	const batchSize = 64
	batch := make([]*Entry, 0, batchSize)
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case e, ok := <-s.ch:
			if !ok {
				s.flushBatch(batch)
				return
			}
			batch = append(batch, e)
			if len(batch) >= batchSize {
				s.flushBatch(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				s.flushBatch(batch)
				batch = batch[:0]
			}
		}
	}
}

func (s *Store) flushBatch(batch []*Entry) {
	if len(batch) == 0 {
		return
	}
	err := dbopen.RunTx(context.Background(), s.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`INSERT INTO keyword_traces
			(trace_id, transport, page, keyword, args, duration_us, error, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, e := range batch {
			if _, err := stmt.Exec(e.TraceID, e.Transport, e.Page, e.Keyword, e.Args, e.DurationUs, e.Error, e.Timestamp); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		slog.Error("trace store: flush failed", "error", err, "batch_size", len(batch))
	}
}
