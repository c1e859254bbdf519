package pagekit

import (
	"context"
	"time"
)

// Driver is the browser collaborator behind every page object. The
// rod-backed implementation lives in internal/browser; tests
// substitute fakes. All page objects built for one test run should
// share a single Driver so they act on the same browser session.
//
// Driver method names are reserved: operations registered under the
// snake_case form of any method here are rejected, so page objects
// cannot shadow the session surface.
type Driver interface {
	// OpenBrowser starts or attaches to a browser, opens a new
	// session at url, makes it current, and returns its handle.
	OpenBrowser(ctx context.Context, url, browser string) (string, error)

	// CloseBrowser closes the current session.
	CloseBrowser(ctx context.Context) error

	// Navigate points the current session at url.
	Navigate(ctx context.Context, url string) error

	// CurrentHandle returns the current session handle, empty when
	// no session is open.
	CurrentHandle() string

	URL(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)

	// PageSource returns the serialized DOM of the current session.
	PageSource(ctx context.Context) (string, error)

	// FindElement locates one element. With required set a miss is an
	// error; without it a miss is (nil, nil).
	FindElement(ctx context.Context, locator string, required bool) (Element, error)

	// FindElements locates all matches; no match is an empty slice.
	FindElements(ctx context.Context, locator string) ([]Element, error)

	// SetSpeed inserts a pause before each interaction.
	SetSpeed(d time.Duration)

	// Shutdown closes every session and the browser itself.
	Shutdown(ctx context.Context) error
}

// Element is one located DOM element.
type Element interface {
	Click(ctx context.Context) error
	Input(ctx context.Context, text string) error
	Clear(ctx context.Context) error
	Text(ctx context.Context) (string, error)
	Attribute(ctx context.Context, name string) (string, error)
	Visible(ctx context.Context) (bool, error)
}
