package ghostly

import (
	"strings"
	"time"

	"github.com/spooklabs/ghostly/pkg/ghostly/driver"
)

// element resolves a selector to a single element using a stripped down
// version of the jQuery lookup grammar:
//   - #element_id
//   - .element_class
//   - element_name (tried as tag, name, id, CSS selector, then link text)
//
// A nil scope searches the whole document. The lookup is retried every poll
// interval until a qualifying element appears or timeout elapses, at which
// point ElementNotFoundError is returned. Sleeps are clamped to the deadline
// so the call never blocks meaningfully past timeout.
func (g *Ghostly) element(selector string, scope driver.Scope, timeout time.Duration) (driver.Element, error) {
	if scope == nil {
		scope = g.driver
	}

	deadline := time.Now().Add(timeout)
	for {
		if element := g.lookup(selector, scope); element != nil {
			return element, nil
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		sleep := g.pollInterval
		if sleep > remaining {
			sleep = remaining
		}
		time.Sleep(sleep)
	}

	g.log.Debugf("element not found: %s (timeout %s)", selector, timeout)
	return nil, &ElementNotFoundError{Selector: selector, Timeout: timeout}
}

// lookup makes a single resolution attempt. Strategy errors count as
// no-match so a selector that is malformed for one strategy can still be
// tried against the next.
func (g *Ghostly) lookup(selector string, scope driver.Scope) driver.Element {
	var matches []driver.Element

	switch {
	case strings.HasPrefix(selector, "#"):
		matches, _ = scope.FindByID(strings.TrimPrefix(selector, "#"))
	case strings.HasPrefix(selector, "."):
		matches, _ = scope.FindByClass(strings.TrimPrefix(selector, "."))
	default:
		strategies := []func(string) ([]driver.Element, error){
			scope.FindByTag,
			scope.FindByName,
			scope.FindByID,
			scope.FindByCSS,
			scope.FindByLinkText,
		}
		for _, find := range strategies {
			found, err := find(selector)
			if err != nil {
				continue
			}
			if len(found) > 0 {
				matches = found
				break
			}
		}
	}

	return firstQualifying(matches)
}

// firstQualifying returns the first match that is not a hidden form input,
// in provider order.
func firstQualifying(matches []driver.Element) driver.Element {
	for _, element := range matches {
		tag, err := element.TagName()
		if err != nil {
			continue
		}
		if strings.EqualFold(tag, "input") {
			if inputType, err := element.Attribute("type"); err == nil && inputType == "hidden" {
				continue
			}
		}
		return element
	}
	return nil
}

// XPath finds an element by xpath in a single attempt, without polling.
func (g *Ghostly) XPath(xpath string) (driver.Element, error) {
	matches, err := g.driver.FindByXPath(xpath)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, &ElementNotFoundError{Selector: xpath}
	}
	return matches[0], nil
}

// XPathWait waits up to timeout for xpath to exist and, when visible is
// true, to report itself visible. Both phases share one deadline computed at
// call start; the visibility phase does not get a fresh budget.
//
// Zero timeout or sleep select DefaultXPathTimeout and DefaultXPathSleep.
// The two failure modes are distinguished by TimeoutError.Kind.
func (g *Ghostly) XPathWait(xpath string, visible bool, timeout, sleep time.Duration) (driver.Element, error) {
	if timeout <= 0 {
		timeout = DefaultXPathTimeout
	}
	if sleep <= 0 {
		sleep = DefaultXPathSleep
	}

	start := time.Now()
	deadline := start.Add(timeout)
	attempts := 0

	// Phase 1: wait until the element can be found at all.
	var element driver.Element
	for {
		attempts++
		found, err := g.XPath(xpath)
		if err == nil {
			element = found
			break
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, &TimeoutError{
				XPath:    xpath,
				Kind:     TimeoutExistence,
				Timeout:  timeout,
				Attempts: attempts,
				Elapsed:  time.Since(start),
			}
		}
		if sleep < remaining {
			time.Sleep(sleep)
		} else {
			time.Sleep(remaining)
		}
	}

	if !visible {
		return element, nil
	}

	// Phase 2: wait until it is visible, against the same deadline.
	for {
		attempts++
		if shown, err := element.IsVisible(); err == nil && shown {
			return element, nil
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, &TimeoutError{
				XPath:    xpath,
				Kind:     TimeoutVisibility,
				Timeout:  timeout,
				Attempts: attempts,
				Elapsed:  time.Since(start),
			}
		}
		if sleep < remaining {
			time.Sleep(sleep)
		} else {
			time.Sleep(remaining)
		}
	}
}

// XPathClick clicks an element selected using xpath, then waits settle
// before returning. Settle of zero skips the wait.
func (g *Ghostly) XPathClick(xpath string, settle time.Duration) error {
	element, err := g.XPath(xpath)
	if err != nil {
		return err
	}
	if err := element.Click(); err != nil {
		return err
	}
	if settle > 0 {
		time.Sleep(settle)
	}
	return nil
}
