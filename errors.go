package pagekit

import (
	"errors"
	"fmt"
)

// ErrNoDriver is returned when a browser-facing operation runs on a
// page constructed without a driver.
var ErrNoDriver = errors.New("pagekit: no driver configured")

// ErrNoBaseURL is returned when a page is opened without a baseurl in
// its resolved options.
type ErrNoBaseURL struct {
	Page string
}

func (e *ErrNoBaseURL) Error() string {
	return fmt.Sprintf("pagekit: cannot resolve url for %s: no baseurl configured", e.Page)
}

// ErrNoURI is returned when a page declares neither a uri to resolve
// against nor template variables to expand.
type ErrNoURI struct {
	Page string
}

func (e *ErrNoURI) Error() string {
	return fmt.Sprintf("pagekit: %s declares no uri", e.Page)
}

// ErrNoTemplate is returned when template variables are passed to a
// page that declares no uri template.
type ErrNoTemplate struct {
	Page string
}

func (e *ErrNoTemplate) Error() string {
	return fmt.Sprintf("pagekit: %s declares no uri template but template variables were given", e.Page)
}

// ErrAbsoluteURI is returned when a page's uri is already absolute;
// uris are always joined onto the baseurl.
type ErrAbsoluteURI struct {
	Page string
	URI  string
}

func (e *ErrAbsoluteURI) Error() string {
	return fmt.Sprintf("pagekit: %s: uri %q must be relative to the baseurl", e.Page, e.URI)
}

// ErrAbsoluteURITemplate is the template counterpart of ErrAbsoluteURI.
type ErrAbsoluteURITemplate struct {
	Page     string
	Template string
}

func (e *ErrAbsoluteURITemplate) Error() string {
	return fmt.Sprintf("pagekit: %s: uri template %q must be relative to the baseurl", e.Page, e.Template)
}

// ErrInvalidTemplateVar is returned when a supplied template variable
// does not appear in the page's uri template.
type ErrInvalidTemplateVar struct {
	Page     string
	Template string
	Var      string
}

func (e *ErrInvalidTemplateVar) Error() string {
	return fmt.Sprintf("pagekit: %s: variable %q does not appear in uri template %q", e.Page, e.Var, e.Template)
}

// ErrUnknownLocator is returned when a lookup string neither names a
// declared selector nor parses as locator syntax.
type ErrUnknownLocator struct {
	Page    string
	Locator string
}

func (e *ErrUnknownLocator) Error() string {
	return fmt.Sprintf("pagekit: %s: %q is neither a selector name nor a locator", e.Page, e.Locator)
}

// ErrKeywordNotFound is returned by dispatch when no operation answers
// to the requested keyword. Hosts can match on it to report an unknown
// keyword distinctly from a failing one.
type ErrKeywordNotFound struct {
	Keyword string
	Page    string
}

func (e *ErrKeywordNotFound) Error() string {
	return fmt.Sprintf("pagekit: %s does not implement keyword %q", e.Page, e.Keyword)
}

// ErrDuplicateOperation is returned when an operation stem is
// registered twice on the same page, or when a keyword computed for one
// page collides with another page's inside a Library.
type ErrDuplicateOperation struct {
	Name  string
	PageA string
	PageB string
}

func (e *ErrDuplicateOperation) Error() string {
	if e.PageA == e.PageB {
		return fmt.Sprintf("pagekit: %s registers operation %q twice", e.PageA, e.Name)
	}
	return fmt.Sprintf("pagekit: keyword %q is claimed by both %s and %s", e.Name, e.PageA, e.PageB)
}

// ErrReservedOperation is returned when a registration tries to claim
// an operation name that belongs to the browser driver surface.
type ErrReservedOperation struct {
	Name string
	Page string
}

func (e *ErrReservedOperation) Error() string {
	return fmt.Sprintf("pagekit: %s: operation %q shadows a browser driver method", e.Page, e.Name)
}
