// Package trace records keyword invocations: who ran what, with which
// arguments, how long it took, and how it ended. Dispatch stays
// non-blocking — entries are queued and flushed to SQLite in batches
// by a background goroutine.
//
//	db, _ := dbopen.Open("traces.db")
//	store := trace.NewStore(db)
//	store.Init()
//	defer store.Close()
//
//	page, _ := pagekit.New(opts, pagekit.WithRecorder(store))
//
// Entries carry the trace ID and transport from the request context
// (see the kit package), so a row in the store links back to the HTTP
// or MCP call that caused it. RemoteStore ships the same entries to a
// collector over HTTP instead; IngestHandler is the receiving end.
package trace

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hazyhaar/pagekit/kit"
)

// Entry is a single keyword invocation record.
type Entry struct {
	TraceID    string // correlation with the HTTP/MCP request
	Transport  string // "http", "mcp", "go"
	Page       string // page object display name
	Keyword    string // published keyword name
	Args       string // JSON-encoded argument list, empty if none
	DurationUs int64  // microseconds
	Error      string // empty if the invocation succeeded
	Timestamp  int64  // unix microseconds at invocation start
}

// Recorder is the interface trace sinks implement. Store (local
// SQLite) and RemoteStore (HTTP POST to a collector) both do.
type Recorder interface {
	RecordAsync(e *Entry)
	Close() error
}

// Observe builds an entry for one finished invocation and queues it.
// A nil recorder makes it a no-op, so dispatch can call it
// unconditionally.
func Observe(ctx context.Context, rec Recorder, page, keyword string, args []string, started time.Time, invokeErr error) {
	if rec == nil {
		return
	}
	e := &Entry{
		TraceID:    kit.GetTraceID(ctx),
		Transport:  kit.GetTransport(ctx),
		Page:       page,
		Keyword:    keyword,
		DurationUs: time.Since(started).Microseconds(),
		Timestamp:  started.UnixMicro(),
	}
	if len(args) > 0 {
		if data, err := json.Marshal(args); err == nil {
			e.Args = string(data)
		}
	}
	if invokeErr != nil {
		e.Error = invokeErr.Error()
	}
	rec.RecordAsync(e)
}
