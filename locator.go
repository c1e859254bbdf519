package pagekit

import "strings"

// Query is a locator translated for the browser layer: a CSS selector
// or an XPath expression.
type Query struct {
	XPath bool
	Expr  string
}

// strategies maps locator prefixes to query builders. Adding a
// strategy means adding a row.
var strategies = map[string]func(value string) Query{
	"id":    func(v string) Query { return Query{Expr: `[id="` + v + `"]`} },
	"name":  func(v string) Query { return Query{Expr: `[name="` + v + `"]`} },
	"class": func(v string) Query { return Query{Expr: "." + v} },
	"tag":   func(v string) Query { return Query{Expr: v} },
	"css":   func(v string) Query { return Query{Expr: v} },
	"xpath": func(v string) Query { return Query{XPath: true, Expr: v} },
	"identifier": func(v string) Query {
		return Query{XPath: true, Expr: `//*[@id="` + v + `" or @name="` + v + `"]`}
	},
	"link": func(v string) Query {
		return Query{XPath: true, Expr: `//a[normalize-space(.)="` + v + `"]`}
	},
	"partial link": func(v string) Query {
		return Query{XPath: true, Expr: `//a[contains(normalize-space(.), "` + v + `")]`}
	},
}

// ParseLocator translates locator syntax into a Query. Accepted forms
// are "strategy=value" with a known strategy prefix, or a bare XPath
// starting with "//". Anything else is not locator syntax.
func ParseLocator(locator string) (Query, bool) {
	if strings.HasPrefix(locator, "//") {
		return Query{XPath: true, Expr: locator}, true
	}
	prefix, value, found := strings.Cut(locator, "=")
	if !found {
		return Query{}, false
	}
	build, ok := strategies[strings.ToLower(strings.TrimSpace(prefix))]
	if !ok {
		return Query{}, false
	}
	return build(strings.TrimSpace(value)), true
}

// IsLocator reports whether s is recognizable locator syntax.
func IsLocator(s string) bool {
	_, ok := ParseLocator(s)
	return ok
}
