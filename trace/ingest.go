package trace

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
)

// IngestHandler returns an HTTP handler that receives entry batches
// from a RemoteStore and forwards them to rec, typically a local
// Store. Expects POST with a JSON []*Entry body; responds 204 on
// success, 405 for wrong method, 400 for a bad payload.
//
//	r.Post("/traces", trace.IngestHandler(store))
func IngestHandler(rec Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20)) // 1 MB
		if err != nil {
			http.Error(w, "read error", http.StatusBadRequest)
			return
		}

		var entries []*Entry
		if err := json.Unmarshal(body, &entries); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}

		for _, e := range entries {
			if e != nil {
				rec.RecordAsync(e)
			}
		}

		slog.Debug("trace ingest", "entries", len(entries))
		w.WriteHeader(http.StatusNoContent)
	}
}
