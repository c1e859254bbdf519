// Package pagekit is a page-object framework for keyword-driven
// browser testing. Page objects model pages of a web application and
// publish their operations ("keywords") through a string dispatch
// surface — list names, invoke by name — while staying usable as
// plain Go values in test code.
//
// A page is built from options (baseurl, browser, speed), address
// attributes (a fixed uri or an RFC 6570 uri template), a selector
// declaration chain merged at construction, and an operation table.
// Published keyword names embed the page's display name: an
// operation "search" on a page named "Pubmed Home Page" is published
// as "search_Pubmed_Home_Page", so a host loading many page objects
// never sees ambiguous names.
//
// The browser side is behind the Driver interface; internal/browser
// implements it on rod. Libraries aggregate pages for hosts speaking
// HTTP (the remote package) or MCP (RegisterMCP).
package pagekit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hazyhaar/pagekit/keyword"
	"github.com/hazyhaar/pagekit/options"
	"github.com/hazyhaar/pagekit/selectors"
	"github.com/hazyhaar/pagekit/trace"
	"github.com/hazyhaar/pagekit/wait"
)

// KeywordFunc is the handler shape every operation in a page's table
// shares. Arguments arrive as strings from the keyword host; the
// return value crosses back as JSON.
type KeywordFunc func(ctx context.Context, args ...string) (any, error)

// Page models one page or region of the application under test. It
// carries the address attributes URL resolution needs, the effective
// selector set merged from its composition chain, and the operation
// table string dispatch runs against.
//
// Concrete page objects embed *Page and register their operations at
// construction:
//
//	type LoginPage struct{ *pagekit.Page }
//
//	func NewLoginPage(opts *options.Options, d pagekit.Driver) (*LoginPage, error) {
//		p, err := pagekit.New(opts,
//			pagekit.WithName("Login Page"),
//			pagekit.WithURI("/login"),
//			pagekit.WithSelectors(loginSelectors),
//			pagekit.WithDriver(d),
//		)
//		if err != nil {
//			return nil, err
//		}
//		lp := &LoginPage{Page: p}
//		err = p.Operation("submit", func(ctx context.Context, args ...string) (any, error) {
//			return nil, lp.Submit(ctx)
//		})
//		return lp, err
//	}
type Page struct {
	name  string // display form, e.g. "Login Page"
	uname string // underscored form, e.g. "Login_Page"

	uri         string
	uriTemplate string

	opts      *options.Options
	selectors selectors.Set
	driver    Driver
	registry  *keyword.Registry
	logger    *slog.Logger
	recorder  trace.Recorder

	table map[string]KeywordFunc
}

// Option configures a page at construction.
type Option func(*pageConfig)

type pageConfig struct {
	name        string
	owner       string
	uri         string
	uriTemplate string
	decl        *selectors.Decl
	driver      Driver
	registry    *keyword.Registry
	logger      *slog.Logger
	recorder    trace.Recorder
}

// WithName sets the display name explicitly. It wins over WithOwner.
func WithName(name string) Option {
	return func(c *pageConfig) { c.name = name }
}

// WithOwner derives the display name from the owner's concrete type:
// a *PubmedHomePage owner yields "Pubmed Home Page".
func WithOwner(owner any) Option {
	return func(c *pageConfig) {
		t := strings.TrimPrefix(fmt.Sprintf("%T", owner), "*")
		if i := strings.LastIndex(t, "."); i >= 0 {
			t = t[i+1:]
		}
		c.owner = t
	}
}

// WithURI sets the page's fixed address, relative to the baseurl.
func WithURI(uri string) Option {
	return func(c *pageConfig) { c.uri = uri }
}

// WithURITemplate sets the page's RFC 6570 address template, relative
// to the baseurl.
func WithURITemplate(tmpl string) Option {
	return func(c *pageConfig) { c.uriTemplate = tmpl }
}

// WithSelectors attaches the page type's locator declarations. The
// composition chain is merged once, at construction.
func WithSelectors(decl *selectors.Decl) Option {
	return func(c *pageConfig) { c.decl = decl }
}

// WithDriver attaches the browser session manager. Every page built
// for one run should receive the same instance so they share the
// browser.
func WithDriver(d Driver) Option {
	return func(c *pageConfig) { c.driver = d }
}

// WithRegistry injects a keyword registry; absent, keyword.Default is
// used.
func WithRegistry(r *keyword.Registry) Option {
	return func(c *pageConfig) { c.registry = r }
}

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *pageConfig) { c.logger = l }
}

// WithRecorder attaches an invocation trace recorder.
func WithRecorder(r trace.Recorder) Option {
	return func(c *pageConfig) { c.recorder = r }
}

// New constructs a page. A nil opts uses plain defaults; callers that
// want env/var-file resolution pass options.Resolve output. Selector
// merge conflicts and operation-table collisions surface here.
func New(opts *options.Options, o ...Option) (*Page, error) {
	var cfg pageConfig
	for _, opt := range o {
		opt(&cfg)
	}
	if opts == nil {
		opts = options.Default()
	}

	name := cfg.name
	if name == "" {
		owner := cfg.owner
		if owner == "" {
			owner = "Page"
		}
		name = titleize(owner)
	}

	p := &Page{
		name:        name,
		uname:       underscored(name),
		uri:         cfg.uri,
		uriTemplate: cfg.uriTemplate,
		opts:        opts,
		driver:      cfg.driver,
		registry:    cfg.registry,
		logger:      cfg.logger,
		recorder:    cfg.recorder,
		table:       make(map[string]KeywordFunc),
	}
	if p.registry == nil {
		p.registry = keyword.Default
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}

	set, warns, err := cfg.decl.Merge()
	if err != nil {
		return nil, err
	}
	for _, w := range warns {
		p.logger.Warn("selector override",
			"page", p.name, "key", w.Key, "owner", w.Owner, "previous", w.Previous)
	}
	p.selectors = set

	if err := p.registerBuiltins(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Page) registerBuiltins() error {
	builtins := map[string]KeywordFunc{
		"open": func(ctx context.Context, args ...string) (any, error) {
			return p.Open(ctx, args...)
		},
		"close": func(ctx context.Context, args ...string) (any, error) {
			return nil, p.Close(ctx)
		},
		"page_title": func(ctx context.Context, args ...string) (any, error) {
			return p.PageTitle(ctx)
		},
		"page_text": func(ctx context.Context, args ...string) (any, error) {
			return p.PageText(ctx)
		},
		"page_location": func(ctx context.Context, args ...string) (any, error) {
			return p.PageLocation(ctx)
		},
	}
	for stem, fn := range builtins {
		if err := p.Operation(stem, fn); err != nil {
			return err
		}
	}
	return nil
}

// Name returns the display name.
func (p *Page) Name() string { return p.name }

// URI returns the fixed relative address, empty if templated only.
func (p *Page) URI() string { return p.uri }

// URITemplate returns the relative address template, if declared.
func (p *Page) URITemplate() string { return p.uriTemplate }

// MarshalJSON renders a page reference as its display name, so
// keyword returns travelling over HTTP or MCP stay readable.
func (p *Page) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"page": p.name})
}

// ResolveURL computes the absolute URL the page opens at, from the
// baseurl plus either the expanded uri template or the fixed uri.
func (p *Page) ResolveURL(vars map[string]string) (string, error) {
	return resolveURL(p.name, p.opts.BaseURL, p.uriTemplate, p.uri, vars)
}

// Open resolves the page's URL, opens a browser session there, and
// applies the configured action delay. Arguments are template
// variables in "name=value" form. Returns the page for chaining.
func (p *Page) Open(ctx context.Context, templateVars ...string) (*Page, error) {
	vars, err := parseTemplateVars(templateVars)
	if err != nil {
		return nil, err
	}
	target, err := p.ResolveURL(vars)
	if err != nil {
		return nil, err
	}
	if p.driver == nil {
		return nil, ErrNoDriver
	}
	handle, err := p.driver.OpenBrowser(ctx, target, p.opts.Browser)
	if err != nil {
		return nil, err
	}
	p.driver.SetSpeed(p.opts.SpeedDuration())
	p.logger.Info("open", "page", p.name, "handle", handle, "url", target)
	return p, nil
}

// Close closes the current browser session.
func (p *Page) Close(ctx context.Context) error {
	if p.driver == nil {
		return ErrNoDriver
	}
	if err := p.driver.CloseBrowser(ctx); err != nil {
		return err
	}
	p.logger.Info("close", "page", p.name)
	return nil
}

// PageTitle returns the document title of the current session.
func (p *Page) PageTitle(ctx context.Context) (string, error) {
	if p.driver == nil {
		return "", ErrNoDriver
	}
	return p.driver.Title(ctx)
}

// PageLocation returns the current session's URL.
func (p *Page) PageLocation(ctx context.Context) (string, error) {
	if p.driver == nil {
		return "", ErrNoDriver
	}
	return p.driver.URL(ctx)
}

// PageText returns the visible text of the current session, with
// markup and script/style content stripped.
func (p *Page) PageText(ctx context.Context) (string, error) {
	if p.driver == nil {
		return "", ErrNoDriver
	}
	src, err := p.driver.PageSource(ctx)
	if err != nil {
		return "", err
	}
	return extractText(src)
}

// FindElement resolves ref — a selector name or locator syntax — and
// locates one element. With required set a miss is an error; without
// it a miss is (nil, nil).
func (p *Page) FindElement(ctx context.Context, ref string, required bool) (Element, error) {
	locator, err := p.resolveRef(ref)
	if err != nil {
		return nil, err
	}
	if p.driver == nil {
		return nil, ErrNoDriver
	}
	p.logger.Debug("find", "page", p.name, "ref", ref, "locator", locator)
	return p.driver.FindElement(ctx, locator, required)
}

// FindElements resolves ref and locates all matches; no match is an
// empty slice.
func (p *Page) FindElements(ctx context.Context, ref string) ([]Element, error) {
	locator, err := p.resolveRef(ref)
	if err != nil {
		return nil, err
	}
	if p.driver == nil {
		return nil, ErrNoDriver
	}
	p.logger.Debug("find all", "page", p.name, "ref", ref, "locator", locator)
	return p.driver.FindElements(ctx, locator)
}

// resolveRef maps a selector name to its declared locator, passes
// locator syntax through, and rejects everything else.
func (p *Page) resolveRef(ref string) (string, error) {
	if locator, ok := p.selectors[ref]; ok {
		return locator, nil
	}
	if IsLocator(ref) {
		return ref, nil
	}
	return "", &ErrUnknownLocator{Page: p.name, Locator: ref}
}

// WaitFor polls cond with the package defaults until it holds. Use
// wait.Assertionf inside cond for "not yet" outcomes.
func (p *Page) WaitFor(ctx context.Context, cond wait.Condition) error {
	return wait.For(ctx, cond, wait.Options{Logger: p.logger})
}

// Log writes one info line tagged with the page name.
func (p *Page) Log(msg string, args ...any) {
	p.logger.Info(msg, append([]any{"page", p.name}, args...)...)
}
