package pagekit

import "testing"

func TestParseLocator(t *testing.T) {
	tests := []struct {
		in        string
		wantXPath bool
		wantExpr  string
	}{
		{"id=search-input", false, `[id="search-input"]`},
		{"name=q", false, `[name="q"]`},
		{"class=btn-primary", false, ".btn-primary"},
		{"tag=textarea", false, "textarea"},
		{"css=form input[type=text]", false, "form input[type=text]"},
		{"xpath=//div[@id='main']", true, "//div[@id='main']"},
		{"identifier=login", true, `//*[@id="login" or @name="login"]`},
		{"link=Sign in", true, `//a[normalize-space(.)="Sign in"]`},
		{"partial link=Sign", true, `//a[contains(normalize-space(.), "Sign")]`},
		{"//table/tbody/tr[1]", true, "//table/tbody/tr[1]"},
		// Prefix matching is case-insensitive and tolerant of spacing.
		{"ID = header", false, `[id="header"]`},
		{"Partial Link=More", true, `//a[contains(normalize-space(.), "More")]`},
	}
	for _, tt := range tests {
		q, ok := ParseLocator(tt.in)
		if !ok {
			t.Errorf("ParseLocator(%q): not recognized", tt.in)
			continue
		}
		if q.XPath != tt.wantXPath || q.Expr != tt.wantExpr {
			t.Errorf("ParseLocator(%q): got {%v %q}, want {%v %q}",
				tt.in, q.XPath, q.Expr, tt.wantXPath, tt.wantExpr)
		}
	}
}

func TestParseLocator_Rejects(t *testing.T) {
	for _, in := range []string{
		"search button",              // selector key, not a locator
		"input[name=q]",              // raw CSS needs the css= prefix
		"bogus=value",                // unknown strategy
		"/html/body",                 // absolute XPath needs xpath= or //
		"",
	} {
		if _, ok := ParseLocator(in); ok {
			t.Errorf("ParseLocator(%q): recognized, want rejection", in)
		}
	}
}

func TestIsLocator(t *testing.T) {
	if !IsLocator("css=.result") {
		t.Fatal("css=.result should be a locator")
	}
	if IsLocator("click me") {
		t.Fatal("plain text should not be a locator")
	}
}
