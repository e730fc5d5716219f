package driver

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Supported browser kinds for Launch.
const (
	KindChromium = "chromium"
	KindFirefox  = "firefox"
	KindWebKit   = "webkit"
)

// Options configures a launched browser session.
type Options struct {
	// Headless controls whether the browser runs without a visible window
	Headless bool

	// Viewport sets the initial viewport size
	Viewport *Viewport
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// Default values for launched sessions.
const (
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
)

// normalizeKind maps a user-provided browser kind to its canonical form.
func normalizeKind(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindChromium, "chrome":
		return KindChromium, nil
	case KindFirefox:
		return KindFirefox, nil
	case KindWebKit, "safari":
		return KindWebKit, nil
	default:
		return "", &DriverDoesNotExistError{Kind: kind}
	}
}

// Launch starts a Playwright-backed browser session of the given kind.
// Unknown kinds fail with DriverDoesNotExistError before any browser
// process is started.
func Launch(kind string, opts Options) (Driver, error) {
	canonical, err := normalizeKind(kind)
	if err != nil {
		return nil, err
	}

	if opts.Viewport == nil {
		opts.Viewport = &Viewport{
			Width:  DefaultViewportWidth,
			Height: DefaultViewportHeight,
		}
	}

	// Install and run Playwright quietly so driver bootstrap output does
	// not interleave with test output.
	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}
	if err := playwright.Install(runOpts); err != nil {
		return nil, fmt.Errorf("failed to install playwright: %w", err)
	}
	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	var browserType playwright.BrowserType
	switch canonical {
	case KindChromium:
		browserType = pw.Chromium
	case KindFirefox:
		browserType = pw.Firefox
	case KindWebKit:
		browserType = pw.WebKit
	}

	browser, err := browserType.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: &opts.Headless,
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch %s: %w", canonical, err)
	}

	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  opts.Viewport.Width,
			Height: opts.Viewport.Height,
		},
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		context.Close()
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	return &playwrightDriver{
		pw:      pw,
		browser: browser,
		context: context,
		page:    page,
	}, nil
}

// querier is the query surface shared by pages, frames and element handles.
type querier interface {
	QuerySelectorAll(selector string) ([]playwright.ElementHandle, error)
}

// playwrightDriver implements Driver over a single Playwright page. After
// SwitchFrame, document-level lookups are routed through the active frame.
type playwrightDriver struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	frame   playwright.Frame
}

// root returns the current document-level query target.
func (d *playwrightDriver) root() querier {
	if d.frame != nil {
		return d.frame
	}
	return d.page
}

func (d *playwrightDriver) FindByID(id string) ([]Element, error) {
	return queryAll(d.root(), fmt.Sprintf(`[id=%s]`, cssString(id)))
}

func (d *playwrightDriver) FindByClass(class string) ([]Element, error) {
	return queryAll(d.root(), fmt.Sprintf(`[class~=%s]`, cssString(class)))
}

func (d *playwrightDriver) FindByTag(tag string) ([]Element, error) {
	return queryAll(d.root(), tag)
}

func (d *playwrightDriver) FindByName(name string) ([]Element, error) {
	return queryAll(d.root(), fmt.Sprintf(`[name=%s]`, cssString(name)))
}

func (d *playwrightDriver) FindByCSS(selector string) ([]Element, error) {
	return queryAll(d.root(), "css="+selector)
}

func (d *playwrightDriver) FindByLinkText(text string) ([]Element, error) {
	return queryLinkText(d.root(), text)
}

func (d *playwrightDriver) FindByXPath(xpath string) ([]Element, error) {
	return queryAll(d.root(), "xpath="+xpath)
}

func (d *playwrightDriver) Goto(url string) error {
	if _, err := d.page.Goto(url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

func (d *playwrightDriver) Title() (string, error) {
	return d.page.Title()
}

func (d *playwrightDriver) CurrentURL() (string, error) {
	return d.page.URL(), nil
}

func (d *playwrightDriver) SwitchFrame(selector string) error {
	if selector == "" {
		d.frame = nil
		return nil
	}

	// Accept frame name or element id first, then a raw CSS selector.
	candidates := []string{
		fmt.Sprintf(`iframe[name=%s], frame[name=%s]`, cssString(selector), cssString(selector)),
		fmt.Sprintf(`iframe[id=%s], frame[id=%s]`, cssString(selector), cssString(selector)),
		selector,
	}
	for _, sel := range candidates {
		handles, err := d.page.QuerySelectorAll(sel)
		if err != nil || len(handles) == 0 {
			continue
		}
		frame, err := handles[0].ContentFrame()
		if err != nil {
			return fmt.Errorf("failed to enter frame %q: %w", selector, err)
		}
		d.frame = frame
		return nil
	}
	return fmt.Errorf("no frame matched %q", selector)
}

func (d *playwrightDriver) Forward() error {
	if _, err := d.page.GoForward(); err != nil {
		return fmt.Errorf("forward navigation failed: %w", err)
	}
	return nil
}

func (d *playwrightDriver) Back() error {
	if _, err := d.page.GoBack(); err != nil {
		return fmt.Errorf("back navigation failed: %w", err)
	}
	return nil
}

const (
	// disabledWaitTimeout stands in for a disabled implicit wait. Playwright
	// interprets a zero default timeout as no timeout at all, so disabling
	// maps to the smallest useful finite value instead of hanging every
	// auto-waiting operation.
	disabledWaitTimeout = 100 * time.Millisecond

	// navigationTimeout bounds page loads independently of the action
	// timeout, so a stalled server fails Goto instead of blocking it.
	navigationTimeout = 30 * time.Second
)

// defaultTimeoutMs converts an implicit-wait setting to the value handed to
// Playwright's default timeout. Zero and negative waits become the finite
// disabled-wait floor, never Playwright's "no timeout".
func defaultTimeoutMs(wait time.Duration) float64 {
	if wait <= 0 {
		return float64(disabledWaitTimeout.Milliseconds())
	}
	return float64(wait.Milliseconds())
}

func (d *playwrightDriver) SetImplicitWait(wait time.Duration) error {
	// Playwright's default timeout is the closest analogue: it governs how
	// long the provider's own operations wait before failing.
	d.page.SetDefaultTimeout(defaultTimeoutMs(wait))
	d.page.SetDefaultNavigationTimeout(float64(navigationTimeout.Milliseconds()))
	return nil
}

func (d *playwrightDriver) Close() error {
	var errs []error
	if err := d.page.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := d.context.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := d.browser.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := d.pw.Stop(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing session: %v", errs)
	}
	return nil
}

// playwrightElement implements Element over an element handle.
type playwrightElement struct {
	handle playwright.ElementHandle
}

func (e *playwrightElement) FindByID(id string) ([]Element, error) {
	return queryAll(e.handle, fmt.Sprintf(`[id=%s]`, cssString(id)))
}

func (e *playwrightElement) FindByClass(class string) ([]Element, error) {
	return queryAll(e.handle, fmt.Sprintf(`[class~=%s]`, cssString(class)))
}

func (e *playwrightElement) FindByTag(tag string) ([]Element, error) {
	return queryAll(e.handle, tag)
}

func (e *playwrightElement) FindByName(name string) ([]Element, error) {
	return queryAll(e.handle, fmt.Sprintf(`[name=%s]`, cssString(name)))
}

func (e *playwrightElement) FindByCSS(selector string) ([]Element, error) {
	return queryAll(e.handle, "css="+selector)
}

func (e *playwrightElement) FindByLinkText(text string) ([]Element, error) {
	return queryLinkText(e.handle, text)
}

func (e *playwrightElement) FindByXPath(xpath string) ([]Element, error) {
	return queryAll(e.handle, "xpath="+xpath)
}

func (e *playwrightElement) TagName() (string, error) {
	result, err := e.handle.Evaluate("el => el.tagName.toLowerCase()")
	if err != nil {
		return "", fmt.Errorf("failed to read tag name: %w", err)
	}
	tag, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("unexpected tag name result %T", result)
	}
	return tag, nil
}

func (e *playwrightElement) Attribute(name string) (string, error) {
	return e.handle.GetAttribute(name)
}

func (e *playwrightElement) Text() (string, error) {
	return e.handle.TextContent()
}

func (e *playwrightElement) IsVisible() (bool, error) {
	return e.handle.IsVisible()
}

func (e *playwrightElement) Click() error {
	return e.handle.Click()
}

func (e *playwrightElement) SendKeys(text string) error {
	return e.handle.Type(text)
}

func (e *playwrightElement) Submit() error {
	// Submit the enclosing form, or the element itself when it is a form.
	_, err := e.handle.Evaluate("el => { (el.tagName === 'FORM' ? el : el.form).submit() }")
	if err != nil {
		return fmt.Errorf("submit failed: %w", err)
	}
	return nil
}

// queryAll runs a selector against any query surface and wraps the handles.
func queryAll(q querier, selector string) ([]Element, error) {
	handles, err := q.QuerySelectorAll(selector)
	if err != nil {
		return nil, err
	}
	elements := make([]Element, 0, len(handles))
	for _, h := range handles {
		elements = append(elements, &playwrightElement{handle: h})
	}
	return elements, nil
}

// queryLinkText finds anchors whose trimmed text content equals text exactly.
func queryLinkText(q querier, text string) ([]Element, error) {
	handles, err := q.QuerySelectorAll("a")
	if err != nil {
		return nil, err
	}
	want := strings.TrimSpace(text)
	var elements []Element
	for _, h := range handles {
		content, err := h.TextContent()
		if err != nil {
			continue
		}
		if strings.TrimSpace(content) == want {
			elements = append(elements, &playwrightElement{handle: h})
		}
	}
	return elements, nil
}

var cssReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// cssString renders s as a double-quoted CSS string literal.
func cssString(s string) string {
	return `"` + cssReplacer.Replace(s) + `"`
}
