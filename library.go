package pagekit

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/hazyhaar/pagekit/trace"
)

// Library aggregates page objects into one keyword surface for a
// string-driven host: the bridge and the MCP adapter both serve a
// Library. Keyword names embed each page's display name, so
// collisions across pages are rare by construction — and errors when
// they happen.
type Library struct {
	logger   *slog.Logger
	recorder trace.Recorder

	mu        sync.RWMutex
	pages     []*Page
	byKeyword map[string]*Page
}

// LibraryOption configures a Library.
type LibraryOption func(*Library)

// LibraryWithLogger overrides the default slog logger.
func LibraryWithLogger(l *slog.Logger) LibraryOption {
	return func(lib *Library) { lib.logger = l }
}

// LibraryWithRecorder attaches a trace recorder. Pages added without
// their own recorder inherit it.
func LibraryWithRecorder(r trace.Recorder) LibraryOption {
	return func(lib *Library) { lib.recorder = r }
}

// NewLibrary returns an empty Library.
func NewLibrary(o ...LibraryOption) *Library {
	lib := &Library{byKeyword: make(map[string]*Page)}
	for _, opt := range o {
		opt(lib)
	}
	if lib.logger == nil {
		lib.logger = slog.Default()
	}
	return lib
}

// Add indexes the pages' keywords into the library. A keyword claimed
// by two pages is an error naming both; a failed Add leaves the
// library unchanged.
func (lib *Library) Add(pages ...*Page) error {
	lib.mu.Lock()
	defer lib.mu.Unlock()

	staged := make(map[string]*Page)
	for _, p := range pages {
		for _, kw := range p.KeywordNames() {
			if prev, ok := lib.byKeyword[kw]; ok {
				return &ErrDuplicateOperation{Name: kw, PageA: prev.name, PageB: p.name}
			}
			if prev, ok := staged[kw]; ok {
				return &ErrDuplicateOperation{Name: kw, PageA: prev.name, PageB: p.name}
			}
			staged[kw] = p
		}
	}

	for kw, p := range staged {
		lib.byKeyword[kw] = p
	}
	for _, p := range pages {
		if p.recorder == nil {
			p.recorder = lib.recorder
		}
		lib.pages = append(lib.pages, p)
		lib.logger.Info("library: page added", "page", p.name, "keywords", len(p.KeywordNames()))
	}
	return nil
}

// KeywordNames lists every published keyword across all pages, sorted.
func (lib *Library) KeywordNames() []string {
	lib.mu.RLock()
	defer lib.mu.RUnlock()

	names := make([]string, 0, len(lib.byKeyword))
	for kw := range lib.byKeyword {
		names = append(names, kw)
	}
	sort.Strings(names)
	return names
}

// RunKeyword routes the keyword to the page that publishes it.
func (lib *Library) RunKeyword(ctx context.Context, kw string, args []string) (any, error) {
	lib.mu.RLock()
	p, ok := lib.byKeyword[kw]
	lib.mu.RUnlock()

	if !ok {
		return nil, &ErrKeywordNotFound{Keyword: kw, Page: "library"}
	}
	return p.RunKeyword(ctx, kw, args)
}

// Pages returns the registered pages in registration order.
func (lib *Library) Pages() []*Page {
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	out := make([]*Page, len(lib.pages))
	copy(out, lib.pages)
	return out
}
