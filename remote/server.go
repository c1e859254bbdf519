// Package remote exposes a Library's keyword surface over HTTP so
// out-of-process runners can list and invoke the same keywords the
// in-process and MCP surfaces publish. Replies use the keyword-host
// envelope: {"status":"PASS","return":...} on success,
// {"status":"FAIL","kind":...,"error":...} on failure.
package remote

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/hazyhaar/pagekit"
	"github.com/hazyhaar/pagekit/idgen"
	"github.com/hazyhaar/pagekit/kit"
	"github.com/hazyhaar/pagekit/trace"
)

const maxRunBody = 1 << 20

// Server bridges a keyword library onto an HTTP router.
type Server struct {
	lib    *pagekit.Library
	logger *slog.Logger
	user   string
	hash   []byte
	ingest trace.Recorder
	newID  idgen.Generator
}

type ServerOption func(*Server)

func ServerWithLogger(l *slog.Logger) ServerOption {
	return func(s *Server) { s.logger = l }
}

// ServerWithBasicAuth guards every route except /healthz. The hash is
// a bcrypt hash of the password, never the password itself.
func ServerWithBasicAuth(user, bcryptHash string) ServerOption {
	return func(s *Server) {
		s.user = user
		s.hash = []byte(bcryptHash)
	}
}

// ServerWithIngest mounts POST /traces so trace.RemoteStore batches
// from other processes land in the given recorder.
func ServerWithIngest(rec trace.Recorder) ServerOption {
	return func(s *Server) { s.ingest = rec }
}

func NewServer(lib *pagekit.Library, o ...ServerOption) *Server {
	s := &Server{
		lib:   lib,
		newID: idgen.Prefixed("trc_", idgen.Default),
	}
	for _, opt := range o {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Routes builds the HTTP surface. /healthz stays open; everything
// else honors basic auth when configured.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.stampContext)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		if len(s.hash) > 0 {
			r.Use(s.requireAuth)
		}
		r.Get("/keywords", s.handleKeywords)
		r.Post("/run", s.handleRun)
		if s.ingest != nil {
			r.Post("/traces", trace.IngestHandler(s.ingest))
		}
	})
	return r
}

// stampContext marks the request as HTTP transport and ensures a
// trace ID: X-Trace-Id when the caller sent one, minted otherwise.
// The ID is echoed back so callers can correlate.
func (s *Server) stampContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := kit.WithTransport(r.Context(), "http")
		id := r.Header.Get("X-Trace-Id")
		if id == "" {
			id = s.newID()
		}
		ctx = kit.WithTraceID(ctx, id)
		w.Header().Set("X-Trace-Id", id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.user ||
			bcrypt.CompareHashAndPassword(s.hash, []byte(pass)) != nil {
			w.Header().Set("WWW-Authenticate", `Basic realm="pagekit"`)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleKeywords(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"keywords": s.lib.KeywordNames()})
}

type runRequest struct {
	Keyword string   `json:"keyword"`
	Args    []string `json:"args"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxRunBody)
	var req runRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if req.Keyword == "" {
		writeFail(w, http.StatusBadRequest, "bad_request", "keyword is required")
		return
	}

	ret, err := s.lib.RunKeyword(r.Context(), req.Keyword, req.Args)
	if err != nil {
		var nf *pagekit.ErrKeywordNotFound
		if errors.As(err, &nf) {
			writeFail(w, http.StatusNotFound, "keyword_not_found", err.Error())
			return
		}
		// The keyword ran and failed; that is a valid outcome, not a
		// transport error.
		writeFail(w, http.StatusOK, "execution", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "PASS", "return": ret})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeFail(w http.ResponseWriter, code int, kind, msg string) {
	writeJSON(w, code, map[string]string{"status": "FAIL", "kind": kind, "error": msg})
}
