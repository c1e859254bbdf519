// Package keyword maintains the naming rules that shape a page object's
// public operation surface: exclusions that hide an operation from
// listings, and alias templates that rename it.
//
// An alias template may embed the Placeholder token, which is replaced
// with the page object's underscored display name wrapped in
// underscores. Without a template, an operation named "search" on a
// page displayed as "Google_Search" is published as
// "search_Google_Search".
//
//	reg := keyword.New()
//	reg.Alias("enter_term", "type__name__term")
//	reg.AliasFor("enter_term", "Search") // "type_Search_term"
//	reg.MethodFor("type_Search_term", "Search") // "enter_term"
//
// A Registry is populated while page types are being defined and read
// during dispatch. Registration is idempotent per operation: the last
// registration wins.
package keyword

import (
	"strings"
	"sync"
)

// Placeholder is the token an alias template may embed where the page
// object's display name should appear.
const Placeholder = "__name__"

// Registry holds operation exclusions and alias templates. The zero
// value is not usable; call New.
type Registry struct {
	mu         sync.RWMutex
	exclusions map[string]struct{}
	aliases    map[string]string
}

// Default is the shared registry used by page objects that are not
// given one explicitly.
var Default = New()

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		exclusions: make(map[string]struct{}),
		aliases:    make(map[string]string),
	}
}

// Exclude hides the named operations from keyword listings. Excluding
// an unknown name is harmless.
func (r *Registry) Exclude(names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range names {
		r.exclusions[n] = struct{}{}
	}
}

// Excluded reports whether name has been excluded.
func (r *Registry) Excluded(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.exclusions[name]
	return ok
}

// Alias registers an alias template for an operation. The template may
// contain Placeholder; if it does not, the template is published
// verbatim.
func (r *Registry) Alias(name, template string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aliases[name] = template
}

// AliasFor returns the published keyword for an operation on a page
// with the given underscored display name. Operations without a
// registered template get the default "<name>_<displayName>" form.
func (r *Registry) AliasFor(name, displayName string) string {
	r.mu.RLock()
	template, ok := r.aliases[name]
	r.mu.RUnlock()
	if ok {
		return strings.ReplaceAll(template, Placeholder, "_"+displayName+"_")
	}
	return name + "_" + displayName
}

// MethodFor maps a published keyword back to the operation it names.
// Registered templates are checked first; otherwise the trailing
// "_<displayName>" suffix is stripped. A keyword that matches neither
// is returned unchanged.
func (r *Registry) MethodFor(alias, displayName string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for name, template := range r.aliases {
		if strings.ReplaceAll(template, Placeholder, "_"+displayName+"_") == alias {
			return name
		}
	}
	return strings.TrimSuffix(alias, "_"+displayName)
}
