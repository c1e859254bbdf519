package pagekit

import (
	"fmt"
	"strings"

	"github.com/yosida95/uritemplate/v3"
)

var absolutePrefixes = []string{"http://", "https://", "file://"}

func isAbsolute(u string) bool {
	for _, p := range absolutePrefixes {
		if strings.HasPrefix(u, p) {
			return true
		}
	}
	return false
}

// resolveURL computes the absolute URL a page opens at.
//
// With template variables the page's uri template is validated and
// expanded against the baseurl. Without them the fixed uri is joined
// onto the baseurl by plain concatenation: no slash normalization, no
// escaping. Both the uri and the template must be relative; the
// baseurl carries the scheme and host.
func resolveURL(page, baseURL, tmpl, uri string, vars map[string]string) (string, error) {
	if baseURL == "" {
		return "", &ErrNoBaseURL{Page: page}
	}

	if len(vars) > 0 {
		if tmpl == "" {
			return "", &ErrNoTemplate{Page: page}
		}
		if isAbsolute(tmpl) {
			return "", &ErrAbsoluteURITemplate{Page: page, Template: tmpl}
		}
		t, err := uritemplate.New(tmpl)
		if err != nil {
			return "", fmt.Errorf("pagekit: %s: parse uri template %q: %w", page, tmpl, err)
		}
		declared := make(map[string]bool)
		for _, name := range t.Varnames() {
			declared[name] = true
		}
		values := uritemplate.Values{}
		for name, value := range vars {
			if !declared[name] {
				return "", &ErrInvalidTemplateVar{Page: page, Template: tmpl, Var: name}
			}
			values.Set(name, uritemplate.String(value))
		}
		full, err := uritemplate.New(baseURL + tmpl)
		if err != nil {
			return "", fmt.Errorf("pagekit: %s: parse uri template %q: %w", page, baseURL+tmpl, err)
		}
		expanded, err := full.Expand(values)
		if err != nil {
			return "", fmt.Errorf("pagekit: %s: expand uri template: %w", page, err)
		}
		return expanded, nil
	}

	if uri == "" {
		return "", &ErrNoURI{Page: page}
	}
	if isAbsolute(uri) {
		return "", &ErrAbsoluteURI{Page: page, URI: uri}
	}
	return baseURL + uri, nil
}

// parseTemplateVars turns "name=value" argument strings into the
// variable map resolveURL expects. Splitting happens on the first "=".
func parseTemplateVars(args []string) (map[string]string, error) {
	if len(args) == 0 {
		return nil, nil
	}
	vars := make(map[string]string, len(args))
	for _, a := range args {
		name, value, ok := strings.Cut(a, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("pagekit: template variable %q is not in name=value form", a)
		}
		vars[name] = value
	}
	return vars, nil
}
