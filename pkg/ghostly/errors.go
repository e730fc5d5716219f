package ghostly

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidArgument marks errors caused by bad action input, such as an
// unknown navigation direction. Use errors.Is to detect it.
var ErrInvalidArgument = errors.New("invalid argument")

// ElementNotFoundError is returned when no qualifying element matched a
// selector before the resolution timeout expired.
type ElementNotFoundError struct {
	Selector string
	Timeout  time.Duration
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("could not find element matching %s within %s", e.Selector, e.Timeout)
}

// TimeoutKind distinguishes the two phases an xpath wait can time out in.
type TimeoutKind string

const (
	// TimeoutExistence means the element never appeared.
	TimeoutExistence TimeoutKind = "existence"

	// TimeoutVisibility means the element appeared but never became visible.
	TimeoutVisibility TimeoutKind = "visibility"
)

// TimeoutError is returned by XPathWait when its shared deadline passes.
// Kind reports which phase ran out of time.
type TimeoutError struct {
	XPath    string
	Kind     TimeoutKind
	Timeout  time.Duration
	Attempts int
	Elapsed  time.Duration
}

func (e *TimeoutError) Error() string {
	elapsed := e.Elapsed.Round(time.Millisecond)
	if e.Kind == TimeoutVisibility {
		return fmt.Sprintf("element selected via xpath %q but not visible within %s - attempted %d times over %s",
			e.XPath, e.Timeout, e.Attempts, elapsed)
	}
	return fmt.Sprintf("could not select xpath %q within %s - attempted %d times over %s",
		e.XPath, e.Timeout, e.Attempts, elapsed)
}

// AssertionError is returned when an assertion's actual state does not match
// the expected one. Message embeds both values.
type AssertionError struct {
	Message string
}

func (e *AssertionError) Error() string {
	return e.Message
}
