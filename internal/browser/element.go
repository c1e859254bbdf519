package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/hazyhaar/pagekit"
)

// FindElement locates one element in the current session. With
// required set a miss is an error; without it a miss is (nil, nil).
func (m *Manager) FindElement(ctx context.Context, locator string, required bool) (pagekit.Element, error) {
	q, ok := pagekit.ParseLocator(locator)
	if !ok {
		return nil, fmt.Errorf("browser: bad locator %q", locator)
	}
	p, err := m.currentPage()
	if err != nil {
		return nil, err
	}

	findCtx, cancel := context.WithTimeout(ctx, m.cfg.NavTimeout)
	defer cancel()
	pg := p.Context(findCtx)

	if !required {
		var has bool
		var el *rod.Element
		if q.XPath {
			has, el, err = pg.HasX(q.Expr)
		} else {
			has, el, err = pg.Has(q.Expr)
		}
		if err != nil {
			return nil, fmt.Errorf("browser: find %q: %w", locator, err)
		}
		if !has {
			return nil, nil
		}
		return &element{el: el}, nil
	}

	var el *rod.Element
	if q.XPath {
		el, err = pg.ElementX(q.Expr)
	} else {
		el, err = pg.Element(q.Expr)
	}
	if err != nil {
		// Element waits for a match; expiry of the find deadline while
		// the caller's context is still live means nothing appeared.
		if ctx.Err() == nil && findCtx.Err() != nil {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, locator)
		}
		return nil, fmt.Errorf("browser: find %q: %w", locator, err)
	}
	return &element{el: el}, nil
}

// FindElements locates all matches in the current session; no match
// is an empty slice.
func (m *Manager) FindElements(ctx context.Context, locator string) ([]pagekit.Element, error) {
	q, ok := pagekit.ParseLocator(locator)
	if !ok {
		return nil, fmt.Errorf("browser: bad locator %q", locator)
	}
	p, err := m.currentPage()
	if err != nil {
		return nil, err
	}

	findCtx, cancel := context.WithTimeout(ctx, m.cfg.NavTimeout)
	defer cancel()
	pg := p.Context(findCtx)

	var els rod.Elements
	if q.XPath {
		els, err = pg.ElementsX(q.Expr)
	} else {
		els, err = pg.Elements(q.Expr)
	}
	if err != nil {
		return nil, fmt.Errorf("browser: find all %q: %w", locator, err)
	}

	out := make([]pagekit.Element, 0, len(els))
	for _, el := range els {
		out = append(out, &element{el: el})
	}
	return out, nil
}

// element adapts a rod element to the surface page objects consume.
type element struct {
	el *rod.Element
}

func (e *element) Click(ctx context.Context) error {
	if err := e.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("browser: click: %w", err)
	}
	return nil
}

func (e *element) Input(ctx context.Context, text string) error {
	if err := e.el.Context(ctx).Input(text); err != nil {
		return fmt.Errorf("browser: input: %w", err)
	}
	return nil
}

func (e *element) Clear(ctx context.Context) error {
	el := e.el.Context(ctx)
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("browser: clear: %w", err)
	}
	if err := el.Input(""); err != nil {
		return fmt.Errorf("browser: clear: %w", err)
	}
	return nil
}

func (e *element) Text(ctx context.Context) (string, error) {
	text, err := e.el.Context(ctx).Text()
	if err != nil {
		return "", fmt.Errorf("browser: text: %w", err)
	}
	return text, nil
}

func (e *element) Attribute(ctx context.Context, name string) (string, error) {
	v, err := e.el.Context(ctx).Attribute(name)
	if err != nil {
		return "", fmt.Errorf("browser: attribute %s: %w", name, err)
	}
	if v == nil {
		return "", nil
	}
	return *v, nil
}

func (e *element) Visible(ctx context.Context) (bool, error) {
	visible, err := e.el.Context(ctx).Visible()
	if err != nil {
		return false, fmt.Errorf("browser: visible: %w", err)
	}
	return visible, nil
}
