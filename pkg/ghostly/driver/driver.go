// Package driver defines the browser query provider that ghostly resolves
// elements against, and its Playwright-backed implementation.
//
// The package is built around three interfaces:
//
//  1. Scope: anything elements can be searched under - the document root or
//     a previously resolved element
//  2. Element: an opaque handle on a resolved element supporting the
//     operations ghostly's actions and assertions need
//  3. Driver: the document-level provider, combining a root Scope with
//     navigation, frame switching and session lifecycle
//
// The core library in pkg/ghostly depends only on these interfaces; tests
// substitute an in-memory implementation.
package driver

import (
	"fmt"
	"time"
)

// Scope is a search boundary for element lookups. Both the document root
// (Driver) and resolved elements (Element) are scopes.
//
// Each finder returns all matches in provider order. A nil error with an
// empty slice means "no match"; errors are reserved for malformed selectors
// and transport failures.
type Scope interface {
	FindByID(id string) ([]Element, error)
	FindByClass(class string) ([]Element, error)
	FindByTag(tag string) ([]Element, error)
	FindByName(name string) ([]Element, error)
	FindByCSS(selector string) ([]Element, error)
	FindByLinkText(text string) ([]Element, error)
	FindByXPath(xpath string) ([]Element, error)
}

// Element is an opaque handle on a resolved element. The handle stays valid
// only as long as the element is attached to the page; ghostly never retains
// one past the call that produced it.
type Element interface {
	Scope

	// TagName returns the element's tag name, lowercased.
	TagName() (string, error)

	// Attribute returns the value of the named attribute, or the empty
	// string if the attribute is absent.
	Attribute(name string) (string, error)

	// Text returns the element's visible text content.
	Text() (string, error)

	// IsVisible reports whether the element is currently rendered and
	// visible on the page.
	IsVisible() (bool, error)

	Click() error

	// SendKeys types text into the element as individual keystrokes.
	SendKeys(text string) error

	// Submit submits the form the element belongs to.
	Submit() error
}

// Driver is the browser query provider: a document-level Scope plus the
// navigation and session operations ghostly delegates to.
type Driver interface {
	Scope

	// Goto loads the given URL and waits for the page load event.
	Goto(url string) error

	Title() (string, error)
	CurrentURL() (string, error)

	// SwitchFrame retargets document-level lookups at the content frame of
	// the iframe matching the given selector. An empty selector switches
	// back to the main document.
	SwitchFrame(selector string) error

	Forward() error
	Back() error

	// SetImplicitWait sets the provider's own wait-for-element timeout.
	// This is a global, session-wide setting, not scoped to a single call;
	// ghostly zeroes it at construction so the resolver has exclusive
	// control of timing.
	SetImplicitWait(d time.Duration) error

	// Close shuts down the browser session and releases its resources.
	Close() error
}

// DriverDoesNotExistError is returned by Launch when the requested browser
// kind is not one the provider supports.
type DriverDoesNotExistError struct {
	Kind string
}

func (e *DriverDoesNotExistError) Error() string {
	return fmt.Sprintf("driver %q does not exist (valid kinds: %s, %s, %s)",
		e.Kind, KindChromium, KindFirefox, KindWebKit)
}
