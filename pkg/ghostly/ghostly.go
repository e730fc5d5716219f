package ghostly

import (
	"crypto/rand"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spooklabs/ghostly/pkg/config"
	"github.com/spooklabs/ghostly/pkg/ghostly/driver"
	"github.com/spooklabs/ghostly/pkg/logging"
)

// Ghostly is a browser session exposing the seven actions and five
// assertions. It owns exactly one driver session for its lifetime and is not
// safe for concurrent use; a test drives it from a single goroutine.
type Ghostly struct {
	driver       driver.Driver
	log          *logging.Logger
	baseURL      string
	timeout      time.Duration
	pollInterval time.Duration
}

// New launches a browser session per the given configuration. The browser
// kind comes from cfg.Browser; an unknown kind fails with
// driver.DriverDoesNotExistError before any browser starts. A nil cfg uses
// defaults.
//
// The driver's own implicit wait is disabled at construction so the element
// resolver has exclusive control of timing. This is a session-wide setting,
// not scoped to individual calls.
func New(cfg *config.Config) (*Ghostly, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	d, err := driver.Launch(cfg.Browser, driver.Options{
		Headless: cfg.Headless,
		Viewport: launchViewport(cfg.Viewport),
	})
	if err != nil {
		return nil, err
	}

	g := NewWithDriver(d, cfg)
	if err := d.SetImplicitWait(0); err != nil {
		d.Close()
		return nil, fmt.Errorf("failed to disable implicit wait: %w", err)
	}
	g.log.Infof("session started: browser=%s headless=%t timeout=%s",
		cfg.Browser, cfg.Headless, g.timeout)
	return g, nil
}

// launchViewport converts the configured viewport for driver.Launch. A zero
// dimension means the size was never set, so the driver's own defaults apply.
func launchViewport(v config.ViewportConfig) *driver.Viewport {
	if v.Width <= 0 || v.Height <= 0 {
		return nil
	}
	return &driver.Viewport{Width: v.Width, Height: v.Height}
}

// NewWithDriver wraps an already constructed driver session. The caller is
// responsible for the driver's implicit-wait setting.
func NewWithDriver(d driver.Driver, cfg *config.Config) *Ghostly {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	log, _ := logging.NewLogger("ghostly")
	return &Ghostly{
		driver:       d,
		log:          log,
		baseURL:      cfg.BaseURL,
		timeout:      time.Duration(cfg.Timeout),
		pollInterval: time.Duration(cfg.PollInterval),
	}
}

// End closes the browser session.
func (g *Ghostly) End() error {
	g.log.Infof("session ended")
	g.log.Close()
	return g.driver.Close()
}

// Driver returns the underlying query provider, for callers that need
// operations outside the reduced vocabulary.
func (g *Ghostly) Driver() driver.Driver {
	return g.driver
}

// Get loads the given URL. When a base URL is configured, relative targets
// are resolved against it.
func (g *Ghostly) Get(target string) error {
	if g.baseURL != "" {
		if parsed, err := url.Parse(target); err == nil && !parsed.IsAbs() {
			if base, err := url.Parse(g.baseURL); err == nil {
				target = base.ResolveReference(parsed).String()
			}
		}
	}
	g.log.Debugf("get %s", target)
	return g.driver.Goto(target)
}

// Click resolves selector and clicks the element.
//
// The element can be selected with the full selector grammar:
//   - .class_name
//   - #element_id
//   - element
//   - "Link Text"
func (g *Ghostly) Click(selector string) error {
	element, err := g.element(selector, nil, g.timeout)
	if err != nil {
		return err
	}
	g.log.Debugf("click %s", selector)
	return element.Click()
}

// Fill fills out a form without submitting it. The form is located by
// selector; each field selector is resolved within the form's scope and its
// value typed in as keystrokes. The resolved form element is returned so
// Submit can reuse it.
func (g *Ghostly) Fill(selector string, fields ...FormField) (driver.Element, error) {
	token, err := randomToken(randomTokenLength)
	if err != nil {
		return nil, err
	}

	form, err := g.element(selector, nil, g.timeout)
	if err != nil {
		return nil, err
	}

	for _, field := range fields {
		value := strings.ReplaceAll(field.Value, RandomPlaceholder, token)
		element, err := g.element(field.Selector, form, g.timeout)
		if err != nil {
			return nil, err
		}
		if err := element.SendKeys(value); err != nil {
			return nil, fmt.Errorf("failed to fill %s: %w", field.Selector, err)
		}
	}
	g.log.Debugf("filled %d field(s) in %s", len(fields), selector)
	return form, nil
}

// Submit fills out a form and submits it.
func (g *Ghostly) Submit(selector string, fields ...FormField) error {
	form, err := g.Fill(selector, fields...)
	if err != nil {
		return err
	}
	g.log.Debugf("submit %s", selector)
	return form.Submit()
}

// Wait sleeps for the given number of seconds. Accepts numeric values or
// numeric strings; anything else fails with ErrInvalidArgument.
func (g *Ghostly) Wait(seconds interface{}) error {
	d, err := secondsToDuration(seconds)
	if err != nil {
		return err
	}
	time.Sleep(d)
	return nil
}

// SwitchTo changes the query scope to the named frame. Useful for navigating
// between iframes. An empty name switches back to the main document.
func (g *Ghostly) SwitchTo(frame string) error {
	g.log.Debugf("switch to frame %q", frame)
	return g.driver.SwitchFrame(frame)
}

// Navigate moves through the browser history. The only valid directions are
// "forward" and "back"; anything else fails with ErrInvalidArgument without
// touching the driver.
func (g *Ghostly) Navigate(direction string) error {
	switch direction {
	case "forward":
		return g.driver.Forward()
	case "back":
		return g.driver.Back()
	default:
		return fmt.Errorf("%w: navigation must be \"forward\" or \"back\", got %q",
			ErrInvalidArgument, direction)
	}
}

// secondsToDuration converts a numeric or numeric-string second count.
func secondsToDuration(seconds interface{}) (time.Duration, error) {
	switch v := seconds.(type) {
	case int:
		return time.Duration(v) * time.Second, nil
	case int64:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	case time.Duration:
		return v, nil
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: cannot parse %q as seconds", ErrInvalidArgument, v)
		}
		return time.Duration(parsed * float64(time.Second)), nil
	default:
		return 0, fmt.Errorf("%w: cannot interpret %T as seconds", ErrInvalidArgument, seconds)
	}
}

const randomAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// randomToken generates an n-character base36 token.
func randomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	for i, b := range buf {
		buf[i] = randomAlphabet[int(b)%len(randomAlphabet)]
	}
	return string(buf), nil
}
