package pagekit

import "testing"

func TestTitleize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"MyPageObject", "My Page Object"},
		{"Page", "Page"},
		{"PubmedHomePage", "Pubmed Home Page"},
		{"Already Spaced", "Already Spaced"},
		{"lowercase", "lowercase"},
	}
	for _, tt := range tests {
		if got := titleize(tt.in); got != tt.want {
			t.Errorf("titleize(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUnderscored(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Page Object", "My_Page_Object"},
		{"My  Page", "My_Page"},
		{"Single", "Single"},
		{"tabs\tand spaces", "tabs_and_spaces"},
	}
	for _, tt := range tests {
		if got := underscored(tt.in); got != tt.want {
			t.Errorf("underscored(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSnake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"OpenBrowser", "open_browser"},
		{"CloseBrowser", "close_browser"},
		{"CurrentHandle", "current_handle"},
		{"SetSpeed", "set_speed"},
		{"Title", "title"},
		{"URL", "url"},
		{"PageSource", "page_source"},
	}
	for _, tt := range tests {
		if got := snake(tt.in); got != tt.want {
			t.Errorf("snake(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}
