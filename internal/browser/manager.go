// Package browser is the rod-backed Driver implementation: one shared
// Chrome process, sessions as browser pages keyed by generated
// handles, locator-driven element lookup.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/hazyhaar/pagekit"
	"github.com/hazyhaar/pagekit/idgen"
)

// Automation modes. Legacy browser names normalize onto these, so
// suites written against the old names keep working.
const (
	ModeHeadless = "headless"
	ModeHeadful  = "headful"
	ModeStealth  = "stealth"
)

// Sentinel failures callers branch on.
var (
	ErrNoSession = errors.New("browser: no open session")
	ErrNotFound  = errors.New("browser: element not found")
)

// NormalizeMode maps a requested browser name to a supported mode.
func NormalizeMode(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ModeHeadless, "phantomjs", "headlesschrome":
		return ModeHeadless, nil
	case ModeHeadful, "chrome", "gc", "googlechrome", "firefox", "ff":
		return ModeHeadful, nil
	case ModeStealth:
		return ModeStealth, nil
	default:
		return "", fmt.Errorf("browser: unknown browser %q", name)
	}
}

// Config configures the Manager.
type Config struct {
	// Browser is the mode used when a session does not request one.
	// Default: headless.
	Browser string

	// ControlURL is the DevTools WebSocket URL of an external browser.
	// Empty = launch a local one via launcher.
	ControlURL string

	// NavTimeout bounds navigation and element lookup. Default: 30s.
	NavTimeout time.Duration

	// SlowMotion pauses before each interaction. Zero = no pause.
	SlowMotion time.Duration

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Browser == "" {
		c.Browser = ModeHeadless
	}
	if c.NavTimeout <= 0 {
		c.NavTimeout = 30 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Manager owns the browser process and its sessions. Page objects
// built for one run share a single Manager so they act on the same
// browser.
type Manager struct {
	cfg Config

	mu       sync.Mutex
	browser  *rod.Browser
	lnch     *launcher.Launcher
	headless bool
	sessions map[string]*session
	order    []string // open order; the newest remaining becomes current after a close
	current  string
	newID    idgen.Generator
	closed   bool
}

type session struct {
	handle string
	mode   string
	page   *rod.Page
}

var _ pagekit.Driver = (*Manager)(nil)

// NewManager creates a Manager. The browser launches lazily on the
// first OpenBrowser.
func NewManager(cfg Config) *Manager {
	cfg.defaults()
	return &Manager{
		cfg:      cfg,
		sessions: make(map[string]*session),
		newID:    idgen.Prefixed("sess_", idgen.NanoID(12)),
	}
}

// OpenBrowser opens a new session at url and makes it current. An
// empty browser name uses the configured default mode.
func (m *Manager) OpenBrowser(ctx context.Context, url, browser string) (string, error) {
	if browser == "" {
		browser = m.cfg.Browser
	}
	mode, err := NormalizeMode(browser)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return "", fmt.Errorf("browser: manager is closed")
	}
	if err := m.ensureBrowserLocked(mode); err != nil {
		return "", err
	}

	var page *rod.Page
	if mode == ModeStealth {
		page, err = stealth.Page(m.browser)
	} else {
		page, err = m.browser.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return "", fmt.Errorf("browser: create session: %w", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, m.cfg.NavTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(url); err != nil {
		page.Close()
		return "", fmt.Errorf("browser: navigate %s: %w", url, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		m.cfg.Logger.Warn("browser: wait load timeout", "url", url, "error", err)
	}

	handle := m.newID()
	m.sessions[handle] = &session{handle: handle, mode: mode, page: page}
	m.order = append(m.order, handle)
	m.current = handle

	m.cfg.Logger.Info("browser: session opened", "handle", handle, "url", url, "mode", mode)
	return handle, nil
}

// CloseBrowser closes the current session. The most recently opened
// remaining session becomes current.
func (m *Manager) CloseBrowser(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.sessions[m.current]
	if s == nil {
		return ErrNoSession
	}
	delete(m.sessions, m.current)
	for i, h := range m.order {
		if h == s.handle {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	if err := s.page.Close(); err != nil {
		m.cfg.Logger.Warn("browser: close session", "handle", s.handle, "error", err)
	}
	m.current = ""
	if len(m.order) > 0 {
		m.current = m.order[len(m.order)-1]
	}

	m.cfg.Logger.Info("browser: session closed", "handle", s.handle)
	return nil
}

// Navigate points the current session at url.
func (m *Manager) Navigate(ctx context.Context, url string) error {
	p, err := m.currentPage()
	if err != nil {
		return err
	}

	navCtx, cancel := context.WithTimeout(ctx, m.cfg.NavTimeout)
	defer cancel()

	if err := p.Context(navCtx).Navigate(url); err != nil {
		return fmt.Errorf("browser: navigate %s: %w", url, err)
	}
	if err := p.Context(navCtx).WaitLoad(); err != nil {
		m.cfg.Logger.Warn("browser: wait load timeout", "url", url, "error", err)
	}
	return nil
}

// CurrentHandle returns the current session handle, empty when no
// session is open.
func (m *Manager) CurrentHandle() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// URL returns the current session's location.
func (m *Manager) URL(ctx context.Context) (string, error) {
	p, err := m.currentPage()
	if err != nil {
		return "", err
	}
	info, err := p.Context(ctx).Info()
	if err != nil {
		return "", fmt.Errorf("browser: page info: %w", err)
	}
	return info.URL, nil
}

// Title returns the current session's document title.
func (m *Manager) Title(ctx context.Context) (string, error) {
	p, err := m.currentPage()
	if err != nil {
		return "", err
	}
	info, err := p.Context(ctx).Info()
	if err != nil {
		return "", fmt.Errorf("browser: page info: %w", err)
	}
	return info.Title, nil
}

// PageSource serialises the current session's DOM as outer HTML.
func (m *Manager) PageSource(ctx context.Context) (string, error) {
	p, err := m.currentPage()
	if err != nil {
		return "", err
	}
	res, err := p.Context(ctx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return "", fmt.Errorf("browser: page source: %w", err)
	}
	return res.Value.Str(), nil
}

// SetSpeed inserts a pause before each interaction. Applies to the
// running browser immediately and to any launched later.
func (m *Manager) SetSpeed(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.SlowMotion = d
	if m.browser != nil {
		m.browser.SlowMotion(d)
	}
}

// Shutdown closes every session, the browser, and the launcher.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	for handle, s := range m.sessions {
		if err := s.page.Close(); err != nil {
			m.cfg.Logger.Debug("browser: close session", "handle", handle, "error", err)
		}
	}
	m.sessions = make(map[string]*session)
	m.order = nil
	m.current = ""

	if m.browser != nil {
		m.browser.Close()
		m.browser = nil
	}
	if m.lnch != nil {
		m.lnch.Cleanup()
		m.lnch = nil
	}

	m.cfg.Logger.Info("browser: shut down")
	return nil
}

func (m *Manager) ensureBrowserLocked(mode string) error {
	wantHeadless := mode != ModeHeadful
	if m.browser != nil {
		if wantHeadless != m.headless {
			m.cfg.Logger.Warn("browser: requested mode differs from running browser",
				"requested", mode)
		}
		return nil
	}

	var wsURL string
	if m.cfg.ControlURL != "" {
		wsURL = m.cfg.ControlURL
		m.cfg.Logger.Info("browser: connecting to remote", "url", wsURL)
	} else {
		l := launcher.New().Headless(wantHeadless)

		// Anti-detection flags.
		l = l.Set("disable-blink-features", "AutomationControlled")

		u, err := l.Launch()
		if err != nil {
			return fmt.Errorf("browser: launch: %w", err)
		}
		wsURL = u
		m.lnch = l
		m.cfg.Logger.Info("browser: launched", "url", wsURL, "mode", mode)
	}

	b := rod.New().ControlURL(wsURL)
	if m.cfg.SlowMotion > 0 {
		b = b.SlowMotion(m.cfg.SlowMotion)
	}
	if err := b.Connect(); err != nil {
		return fmt.Errorf("browser: connect: %w", err)
	}

	// Ignore certificate errors for dev/testing targets.
	if err := b.IgnoreCertErrors(true); err != nil {
		m.cfg.Logger.Warn("browser: ignore cert errors failed", "error", err)
	}

	m.browser = b
	m.headless = wantHeadless
	return nil
}

func (m *Manager) currentPage() (*rod.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sessions[m.current]
	if s == nil {
		return nil, ErrNoSession
	}
	return s.page, nil
}
