// Package selectors resolves the element-locator maps a page object
// inherits across its composition chain.
//
// Each page type contributes one Decl: the locators it declares itself,
// the Decls of the types it builds on, and the subset of its entries
// that intentionally replace an inherited key. Merge resolves the whole
// chain into a flat Set, warning on unmarked shadowing and refusing
// outright when two unrelated bases claim the same key.
//
//	base := &selectors.Decl{Owner: "Page", Entries: selectors.Set{"search box": "id=q"}}
//	d := &selectors.Decl{
//		Owner:    "ResultPage",
//		Bases:    []*selectors.Decl{base},
//		Override: selectors.Set{"search box": "css=input.q"},
//	}
//	set, warns, err := d.Merge()
package selectors

import (
	"fmt"
	"sort"
)

// Set maps selector names to locator strings.
type Set map[string]string

// Decl is one page type's locator declarations. Bases lists the
// declarations of the types it composes, base-most first. Entries are
// the type's own locators; Override holds entries that deliberately
// replace a key inherited through Bases.
type Decl struct {
	Owner    string
	Bases    []*Decl
	Entries  Set
	Override Set
}

// KeyOverrideWarning records an inherited key shadowed without an
// Override marking. The shadowing value wins; the warning is meant to
// be logged, never raised.
type KeyOverrideWarning struct {
	Key      string
	Owner    string
	Previous string
	Locator  string
}

func (w KeyOverrideWarning) String() string {
	return fmt.Sprintf("selectors: %s overrides %q inherited from %s without marking it", w.Owner, w.Key, w.Previous)
}

// ErrDuplicateKey is returned when two declarations, neither composed
// from the other, claim the same selector key.
type ErrDuplicateKey struct {
	Key    string
	OwnerA string
	OwnerB string
}

func (e *ErrDuplicateKey) Error() string {
	return fmt.Sprintf("selectors: key %q is declared by both %s and %s", e.Key, e.OwnerA, e.OwnerB)
}

// Merge resolves the declaration and everything it composes into a
// single Set. Bases are resolved first, in order; the declaration's own
// entries land last and win. A shared base reachable through several
// paths is merged once.
func (d *Decl) Merge() (Set, []KeyOverrideWarning, error) {
	acc := make(Set)
	if d == nil {
		return acc, nil, nil
	}
	m := &merger{
		seen:  make(map[*Decl]bool),
		owner: make(map[string]*Decl),
	}
	var warns []KeyOverrideWarning
	if err := m.walk(d, acc, &warns); err != nil {
		return nil, nil, err
	}
	return acc, warns, nil
}

type merger struct {
	seen  map[*Decl]bool
	owner map[string]*Decl
}

func (m *merger) walk(d *Decl, acc Set, warns *[]KeyOverrideWarning) error {
	if d == nil || m.seen[d] {
		return nil
	}
	m.seen[d] = true
	for _, b := range d.Bases {
		if err := m.walk(b, acc, warns); err != nil {
			return err
		}
	}
	for _, k := range sortedKeys(d.Entries) {
		v := d.Entries[k]
		if prev, ok := m.owner[k]; ok && prev != d {
			if !derivesFrom(d, prev) {
				return &ErrDuplicateKey{Key: k, OwnerA: prev.Owner, OwnerB: d.Owner}
			}
			*warns = append(*warns, KeyOverrideWarning{
				Key:      k,
				Owner:    d.Owner,
				Previous: prev.Owner,
				Locator:  v,
			})
		}
		acc[k] = v
		m.owner[k] = d
	}
	for _, k := range sortedKeys(d.Override) {
		acc[k] = d.Override[k]
		m.owner[k] = d
	}
	return nil
}

// derivesFrom reports whether anc is reachable through d's bases.
func derivesFrom(d, anc *Decl) bool {
	for _, b := range d.Bases {
		if b == anc || derivesFrom(b, anc) {
			return true
		}
	}
	return false
}

func sortedKeys(s Set) []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
