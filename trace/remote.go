package trace

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// RemoteStore ships entries to a collector over HTTP POST instead of
// writing them locally. Same buffering behavior as Store: 1024-entry
// channel, batches of up to 64, flushed every second, dropped when
// full. The receiving end is IngestHandler.
//
//	rs := trace.NewRemoteStore("https://collector.example.com/traces", nil)
//	defer rs.Close()
//	page, _ := pagekit.New(opts, pagekit.WithRecorder(rs))
type RemoteStore struct {
	url    string
	client *http.Client
	ch     chan *Entry
	done   chan struct{}
	once   sync.Once
}

// NewRemoteStore creates a RemoteStore that POSTs JSON batches to url.
// A nil client gets a default with a 5s timeout.
func NewRemoteStore(url string, client *http.Client) *RemoteStore {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	rs := &RemoteStore{
		url:    url,
		client: client,
		ch:     make(chan *Entry, 1024),
		done:   make(chan struct{}),
	}
	go rs.flushLoop()
	return rs
}

// RecordAsync queues an entry without blocking. Entries are dropped
// when the buffer is full.
func (rs *RemoteStore) RecordAsync(e *Entry) {
	select {
	case rs.ch <- e:
	default:
	}
}

// Close drains the buffer and stops the flush goroutine.
func (rs *RemoteStore) Close() error {
	rs.once.Do(func() {
		close(rs.ch)
		<-rs.done
	})
	return nil
}

func (rs *RemoteStore) flushLoop() {
	defer close(rs.done)

	const batchSize = 64
	batch := make([]*Entry, 0, batchSize)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case e, ok := <-rs.ch:
			if !ok {
				rs.flushBatch(batch)
				return
			}
			batch = append(batch, e)
			if len(batch) >= batchSize {
				rs.flushBatch(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				rs.flushBatch(batch)
				batch = batch[:0]
			}
		}
	}
}

func (rs *RemoteStore) flushBatch(batch []*Entry) {
	if len(batch) == 0 {
		return
	}

	body, err := json.Marshal(batch)
	if err != nil {
		slog.Error("trace remote: marshal", "error", err)
		return
	}

	resp, err := rs.client.Post(rs.url, "application/json", bytes.NewReader(body))
	if err != nil {
		slog.Error("trace remote: post", "error", err, "url", rs.url, "entries", len(batch))
		return
	}
	resp.Body.Close()

	if resp.StatusCode >= 400 {
		slog.Error("trace remote: post rejected", "status", resp.StatusCode, "entries", len(batch))
	}
}
