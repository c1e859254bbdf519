// Package options resolves page-object settings from defaults, an
// optional YAML variable file, PO_-prefixed environment variables, and
// explicit overrides. Later sources win.
//
//	opts, err := options.Resolve(&options.Options{BaseURL: "http://localhost:8000"})
//
// The environment is read on every Resolve call, so test runners can
// steer a suite with PO_BASEURL et al. without touching code.
package options

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variable names. PO_VAR_FILE points at a YAML file loaded
// before the other variables are applied.
const (
	EnvVarFile       = "PO_VAR_FILE"
	EnvBaseURL       = "PO_BASEURL"
	EnvBrowser       = "PO_BROWSER"
	EnvSeleniumSpeed = "PO_SELENIUM_SPEED"
	EnvControlURL    = "PO_CONTROL_URL"
	EnvNavTimeout    = "PO_NAV_TIMEOUT"
	EnvTraceDB       = "PO_TRACE_DB"
	EnvLogLevel      = "PO_LOG_LEVEL"
)

// Options carries the resolved settings page objects run with.
type Options struct {
	// BaseURL is the scheme-and-host every page uri resolves against.
	BaseURL string `yaml:"baseurl"`
	// Browser selects the launch mode: headless (default), headful,
	// or stealth. The legacy identifiers phantomjs and chrome are
	// accepted as aliases for headless and headful.
	Browser string `yaml:"browser"`
	// SeleniumSpeed is the delay in seconds inserted between browser
	// actions. Default: 0.5.
	SeleniumSpeed float64 `yaml:"selenium_speed"`
	// ControlURL attaches to an already-running browser instead of
	// launching one.
	ControlURL string `yaml:"control_url"`
	// NavTimeout bounds page navigation. Default: 30s.
	NavTimeout time.Duration `yaml:"nav_timeout"`
	// TraceDB, when set, is the SQLite path keyword invocations are
	// recorded to.
	TraceDB string `yaml:"trace_db"`
	// LogLevel: debug | info | warn | error. Default: info.
	LogLevel string `yaml:"log_level"`
}

func (o *Options) applyDefaults() {
	if o.Browser == "" {
		o.Browser = "headless"
	}
	if o.SeleniumSpeed <= 0 {
		o.SeleniumSpeed = 0.5
	}
	if o.NavTimeout <= 0 {
		o.NavTimeout = 30 * time.Second
	}
	if o.LogLevel == "" {
		o.LogLevel = "info"
	}
}

// SpeedDuration converts SeleniumSpeed seconds into a duration.
func (o *Options) SpeedDuration() time.Duration {
	return time.Duration(o.SeleniumSpeed * float64(time.Second))
}

// Default returns Options with every field at its default, without
// consulting the environment or a var file.
func Default() *Options {
	o := &Options{}
	o.applyDefaults()
	return o
}

// Load reads a YAML variable file and applies defaults.
func Load(path string) (*Options, error) {
	o, err := readFile(path)
	if err != nil {
		return nil, err
	}
	o.applyDefaults()
	return o, nil
}

func readFile(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("options: read var file: %w", err)
	}
	var o Options
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("options: parse var file %s: %w", path, err)
	}
	return &o, nil
}

// Resolve layers the sources: var file (if PO_VAR_FILE is set), then
// environment variables, then explicit overrides, then defaults for
// whatever is still unset. Malformed numeric or duration values are
// errors, never silently defaulted.
func Resolve(overrides *Options) (*Options, error) {
	o := &Options{}
	if path := os.Getenv(EnvVarFile); path != "" {
		loaded, err := readFile(path)
		if err != nil {
			return nil, err
		}
		*o = *loaded
	}
	if err := o.fromEnv(); err != nil {
		return nil, err
	}
	if overrides != nil {
		o.merge(overrides)
	}
	o.applyDefaults()
	return o, nil
}

func (o *Options) fromEnv() error {
	if v := os.Getenv(EnvBaseURL); v != "" {
		o.BaseURL = v
	}
	if v := os.Getenv(EnvBrowser); v != "" {
		o.Browser = v
	}
	if v := os.Getenv(EnvSeleniumSpeed); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("options: %s=%q: %w", EnvSeleniumSpeed, v, err)
		}
		o.SeleniumSpeed = f
	}
	if v := os.Getenv(EnvControlURL); v != "" {
		o.ControlURL = v
	}
	if v := os.Getenv(EnvNavTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("options: %s=%q: %w", EnvNavTimeout, v, err)
		}
		o.NavTimeout = d
	}
	if v := os.Getenv(EnvTraceDB); v != "" {
		o.TraceDB = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		o.LogLevel = v
	}
	return nil
}

func (o *Options) merge(over *Options) {
	if over.BaseURL != "" {
		o.BaseURL = over.BaseURL
	}
	if over.Browser != "" {
		o.Browser = over.Browser
	}
	if over.SeleniumSpeed > 0 {
		o.SeleniumSpeed = over.SeleniumSpeed
	}
	if over.ControlURL != "" {
		o.ControlURL = over.ControlURL
	}
	if over.NavTimeout > 0 {
		o.NavTimeout = over.NavTimeout
	}
	if over.TraceDB != "" {
		o.TraceDB = over.TraceDB
	}
	if over.LogLevel != "" {
		o.LogLevel = over.LogLevel
	}
}
