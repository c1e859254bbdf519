package pagekit

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/hazyhaar/pagekit/trace"
)

// reservedOps is the Driver method set in keyword form, computed once.
// Operations may not shadow it, so page objects can never republish
// the browser surface under their own names.
var reservedOps = func() map[string]struct{} {
	t := reflect.TypeOf((*Driver)(nil)).Elem()
	m := make(map[string]struct{}, t.NumMethod())
	for i := 0; i < t.NumMethod(); i++ {
		m[snake(t.Method(i).Name)] = struct{}{}
	}
	return m
}()

// Operation adds a handler to the page's table under stem. The
// published keyword becomes the registry's alias for the stem —
// by default "<stem>_<Underscored_Name>". Stems already taken, stems
// shadowing a Driver method, and nil handlers are registration
// errors.
func (p *Page) Operation(stem string, fn KeywordFunc) error {
	if fn == nil {
		return fmt.Errorf("pagekit: %s: nil handler for operation %q", p.name, stem)
	}
	if _, ok := reservedOps[stem]; ok {
		return &ErrReservedOperation{Name: stem, Page: p.name}
	}
	if _, ok := p.table[stem]; ok {
		return &ErrDuplicateOperation{Name: stem, PageA: p.name, PageB: p.name}
	}
	p.table[stem] = fn
	return nil
}

// KeywordNames lists the page's published keywords, sorted. Excluded
// stems are omitted; the rest appear under their registry alias.
func (p *Page) KeywordNames() []string {
	names := make([]string, 0, len(p.table))
	for stem := range p.table {
		if p.registry.Excluded(stem) {
			continue
		}
		names = append(names, p.registry.AliasFor(stem, p.uname))
	}
	sort.Strings(names)
	return names
}

// RunKeyword maps the published keyword back to its stem and invokes
// the handler. Both the alias and the bare stem dispatch. Every
// invocation logs one line and, when a recorder is attached, records
// one trace entry.
func (p *Page) RunKeyword(ctx context.Context, kw string, args []string) (any, error) {
	stem := p.registry.MethodFor(kw, p.uname)
	fn, ok := p.table[stem]
	if !ok || p.registry.Excluded(stem) {
		return nil, &ErrKeywordNotFound{Keyword: kw, Page: p.name}
	}

	started := time.Now()
	ret, err := fn(ctx, args...)
	elapsed := time.Since(started)

	if err != nil {
		p.logger.Info("keyword", "page", p.name, "keyword", kw,
			"duration", elapsed, "outcome", "fail", "error", err)
	} else {
		p.logger.Info("keyword", "page", p.name, "keyword", kw,
			"duration", elapsed, "outcome", "pass")
	}
	trace.Observe(ctx, p.recorder, p.name, kw, args, started, err)

	return ret, err
}
