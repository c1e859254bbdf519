// Package wait polls a condition until it holds or a deadline passes.
// It standardises the "wait for the page to settle" pattern so that
// every page object gets consistent timeouts, intervals, and logging.
//
// Conditions distinguish "not yet" from "broken": return an assertion
// failure built with Assertionf to keep polling, any other error to
// abort immediately.
//
//	err := wait.For(ctx, func(ctx context.Context) (bool, error) {
//		n, err := page.CountResults(ctx)
//		if err != nil {
//			return false, err
//		}
//		if n < 10 {
//			return false, wait.Assertionf("only %d results", n)
//		}
//		return true, nil
//	}, wait.Options{})
package wait

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Condition reports whether the awaited state has been reached. A
// false return or an assertion failure means "check again"; any other
// error aborts the wait.
type Condition func(ctx context.Context) (bool, error)

// Options tunes the polling loop.
type Options struct {
	// Timeout bounds the whole wait. Default: 10s.
	Timeout time.Duration
	// Interval is the polling frequency. Default: 500ms.
	Interval time.Duration
	// Logger overrides the default slog logger.
	Logger *slog.Logger
}

func (o *Options) defaults() {
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.Interval <= 0 {
		o.Interval = 500 * time.Millisecond
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

type assertionError struct {
	msg string
}

func (e *assertionError) Error() string { return e.msg }

// Assertionf builds an assertion failure: a condition outcome that
// means "not yet" rather than "broken".
func Assertionf(format string, args ...any) error {
	return &assertionError{msg: fmt.Sprintf(format, args...)}
}

// IsAssertion reports whether err was built with Assertionf.
func IsAssertion(err error) bool {
	var a *assertionError
	return errors.As(err, &a)
}

// ErrTimeout is returned when the condition never held within the
// timeout. Last carries the most recent assertion message, if any.
type ErrTimeout struct {
	Timeout time.Duration
	Last    string
}

func (e *ErrTimeout) Error() string {
	if e.Last != "" {
		return fmt.Sprintf("wait: condition not met within %s: %s", e.Timeout, e.Last)
	}
	return fmt.Sprintf("wait: condition not met within %s", e.Timeout)
}

// For evaluates cond immediately and then at every interval until it
// returns true, the timeout passes, the context is cancelled, or the
// condition fails with a non-assertion error.
func For(ctx context.Context, cond Condition, opts Options) error {
	opts.defaults()

	deadline := time.NewTimer(opts.Timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	var last string
	for {
		ok, err := cond(ctx)
		switch {
		case err != nil && !IsAssertion(err):
			return err
		case err != nil:
			last = err.Error()
			opts.Logger.Debug("wait not satisfied", "reason", last)
		case ok:
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return &ErrTimeout{Timeout: opts.Timeout, Last: last}
		case <-ticker.C:
		}
	}
}
