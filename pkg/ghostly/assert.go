package ghostly

import (
	"fmt"
	"strings"
	"time"
)

// assertSettle is the fixed delay applied before every assertion, giving the
// page a moment to settle after the preceding action.
var assertSettle = 1 * time.Second

// AssertText asserts that text occurs somewhere in the resolved element's
// text content. An empty selector checks the whole body.
func (g *Ghostly) AssertText(text, selector string) error {
	if selector == "" {
		selector = "body"
	}
	time.Sleep(assertSettle)

	element, err := g.element(selector, nil, g.timeout)
	if err != nil {
		return err
	}
	content, err := element.Text()
	if err != nil {
		return fmt.Errorf("failed to read text of %s: %w", selector, err)
	}
	if !strings.Contains(content, text) {
		return &AssertionError{Message: fmt.Sprintf("%q not in %q", text, content)}
	}
	return nil
}

// AssertElement asserts that at least one element matches the selector.
func (g *Ghostly) AssertElement(selector string) error {
	time.Sleep(assertSettle)

	if _, err := g.element(selector, nil, g.timeout); err != nil {
		return &AssertionError{Message: fmt.Sprintf("no element matched %s", selector)}
	}
	return nil
}

// AssertValue asserts that the value attribute of the resolved form element
// equals value exactly.
func (g *Ghostly) AssertValue(selector, value string) error {
	time.Sleep(assertSettle)

	element, err := g.element(selector, nil, g.timeout)
	if err != nil {
		return err
	}
	actual, err := element.Attribute("value")
	if err != nil {
		return fmt.Errorf("failed to read value of %s: %w", selector, err)
	}
	if actual != value {
		return &AssertionError{Message: fmt.Sprintf("%q != %q", actual, value)}
	}
	return nil
}

// AssertTitle asserts that the document title equals title exactly.
func (g *Ghostly) AssertTitle(title string) error {
	time.Sleep(assertSettle)

	actual, err := g.driver.Title()
	if err != nil {
		return fmt.Errorf("failed to read title: %w", err)
	}
	if actual != title {
		return &AssertionError{Message: fmt.Sprintf("title is %q not %q", actual, title)}
	}
	return nil
}

// AssertURL asserts that the current document URL equals url exactly.
func (g *Ghostly) AssertURL(url string) error {
	time.Sleep(assertSettle)

	actual, err := g.driver.CurrentURL()
	if err != nil {
		return fmt.Errorf("failed to read current url: %w", err)
	}
	if actual != url {
		return &AssertionError{Message: fmt.Sprintf("url is %q not %q", actual, url)}
	}
	return nil
}
