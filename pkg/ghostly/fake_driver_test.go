package ghostly

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spooklabs/ghostly/pkg/ghostly/driver"
)

// fakeNode is an in-memory element used to exercise the resolver and actions
// without a real browser.
type fakeNode struct {
	tag     string
	id      string
	name    string
	classes []string
	attrs   map[string]string
	text    string
	visible bool
	xpath   string

	children []*fakeNode

	// interaction recording
	clicks    int
	typed     []string
	submitted bool
}

func (n *fakeNode) attr(name string) string {
	switch name {
	case "id":
		return n.id
	case "name":
		return n.name
	}
	return n.attrs[name]
}

func (n *fakeNode) hasClass(class string) bool {
	for _, c := range n.classes {
		if c == class {
			return true
		}
	}
	return false
}

// walk visits nodes depth-first in document order.
func walk(nodes []*fakeNode, visit func(*fakeNode)) {
	for _, n := range nodes {
		visit(n)
		walk(n.children, visit)
	}
}

// fakeDriver implements driver.Driver over a mutable in-memory tree. Tests
// may mutate the tree from a timer goroutine while the resolver polls, so
// every access goes through mu.
type fakeDriver struct {
	mu     sync.Mutex
	nodes  []*fakeNode
	frames map[string][]*fakeNode

	title string
	url   string

	activeFrame  string
	implicitWait []time.Duration
	gotoURLs     []string
	forwardCalls int
	backCalls    int
	queries      int
	closed       bool
}

func newFakeDriver(nodes ...*fakeNode) *fakeDriver {
	return &fakeDriver{
		nodes:  nodes,
		frames: make(map[string][]*fakeNode),
	}
}

func (d *fakeDriver) addNode(n *fakeNode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nodes = append(d.nodes, n)
}

func (d *fakeDriver) root() []*fakeNode {
	if d.activeFrame != "" {
		return d.frames[d.activeFrame]
	}
	return d.nodes
}

// collect gathers nodes in document order that satisfy match.
func (d *fakeDriver) collect(match func(*fakeNode) bool) []driver.Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queries++

	var out []driver.Element
	walk(d.root(), func(n *fakeNode) {
		if match(n) {
			out = append(out, &fakeElement{drv: d, node: n})
		}
	})
	return out
}

func (d *fakeDriver) FindByID(id string) ([]driver.Element, error) {
	return d.collect(func(n *fakeNode) bool { return n.id == id }), nil
}

func (d *fakeDriver) FindByClass(class string) ([]driver.Element, error) {
	return d.collect(func(n *fakeNode) bool { return n.hasClass(class) }), nil
}

func (d *fakeDriver) FindByTag(tag string) ([]driver.Element, error) {
	return d.collect(func(n *fakeNode) bool { return n.tag == tag }), nil
}

func (d *fakeDriver) FindByName(name string) ([]driver.Element, error) {
	return d.collect(func(n *fakeNode) bool { return n.name == name }), nil
}

func (d *fakeDriver) FindByCSS(selector string) ([]driver.Element, error) {
	match, err := cssMatcher(selector)
	if err != nil {
		return nil, err
	}
	return d.collect(match), nil
}

func (d *fakeDriver) FindByLinkText(text string) ([]driver.Element, error) {
	want := strings.TrimSpace(text)
	return d.collect(func(n *fakeNode) bool {
		return n.tag == "a" && strings.TrimSpace(n.text) == want
	}), nil
}

func (d *fakeDriver) FindByXPath(xpath string) ([]driver.Element, error) {
	return d.collect(func(n *fakeNode) bool { return n.xpath == xpath }), nil
}

func (d *fakeDriver) Goto(url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gotoURLs = append(d.gotoURLs, url)
	d.url = url
	return nil
}

func (d *fakeDriver) Title() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.title, nil
}

func (d *fakeDriver) CurrentURL() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.url, nil
}

func (d *fakeDriver) SwitchFrame(selector string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if selector == "" {
		d.activeFrame = ""
		return nil
	}
	if _, ok := d.frames[selector]; !ok {
		return fmt.Errorf("no frame matched %q", selector)
	}
	d.activeFrame = selector
	return nil
}

func (d *fakeDriver) Forward() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.forwardCalls++
	return nil
}

func (d *fakeDriver) Back() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.backCalls++
	return nil
}

func (d *fakeDriver) SetImplicitWait(wait time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.implicitWait = append(d.implicitWait, wait)
	return nil
}

func (d *fakeDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *fakeDriver) interactions() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.queries + d.forwardCalls + d.backCalls + len(d.gotoURLs)
}

// fakeElement implements driver.Element over a fakeNode. Scoped finds search
// the node's subtree only.
type fakeElement struct {
	drv  *fakeDriver
	node *fakeNode
}

func (e *fakeElement) collect(match func(*fakeNode) bool) []driver.Element {
	e.drv.mu.Lock()
	defer e.drv.mu.Unlock()
	e.drv.queries++

	var out []driver.Element
	walk(e.node.children, func(n *fakeNode) {
		if match(n) {
			out = append(out, &fakeElement{drv: e.drv, node: n})
		}
	})
	return out
}

func (e *fakeElement) FindByID(id string) ([]driver.Element, error) {
	return e.collect(func(n *fakeNode) bool { return n.id == id }), nil
}

func (e *fakeElement) FindByClass(class string) ([]driver.Element, error) {
	return e.collect(func(n *fakeNode) bool { return n.hasClass(class) }), nil
}

func (e *fakeElement) FindByTag(tag string) ([]driver.Element, error) {
	return e.collect(func(n *fakeNode) bool { return n.tag == tag }), nil
}

func (e *fakeElement) FindByName(name string) ([]driver.Element, error) {
	return e.collect(func(n *fakeNode) bool { return n.name == name }), nil
}

func (e *fakeElement) FindByCSS(selector string) ([]driver.Element, error) {
	match, err := cssMatcher(selector)
	if err != nil {
		return nil, err
	}
	return e.collect(match), nil
}

func (e *fakeElement) FindByLinkText(text string) ([]driver.Element, error) {
	want := strings.TrimSpace(text)
	return e.collect(func(n *fakeNode) bool {
		return n.tag == "a" && strings.TrimSpace(n.text) == want
	}), nil
}

func (e *fakeElement) FindByXPath(xpath string) ([]driver.Element, error) {
	return e.collect(func(n *fakeNode) bool { return n.xpath == xpath }), nil
}

func (e *fakeElement) TagName() (string, error) {
	return e.node.tag, nil
}

func (e *fakeElement) Attribute(name string) (string, error) {
	e.drv.mu.Lock()
	defer e.drv.mu.Unlock()
	return e.node.attr(name), nil
}

func (e *fakeElement) Text() (string, error) {
	e.drv.mu.Lock()
	defer e.drv.mu.Unlock()
	return e.node.text, nil
}

func (e *fakeElement) IsVisible() (bool, error) {
	e.drv.mu.Lock()
	defer e.drv.mu.Unlock()
	return e.node.visible, nil
}

func (e *fakeElement) Click() error {
	e.drv.mu.Lock()
	defer e.drv.mu.Unlock()
	e.node.clicks++
	return nil
}

func (e *fakeElement) SendKeys(text string) error {
	e.drv.mu.Lock()
	defer e.drv.mu.Unlock()
	e.node.typed = append(e.node.typed, text)
	return nil
}

func (e *fakeElement) Submit() error {
	e.drv.mu.Lock()
	defer e.drv.mu.Unlock()
	e.node.submitted = true
	return nil
}

// cssMatcher supports the small CSS subset the tests need: "tag", "#id",
// ".class" and "tag.class". Anything else is a strategy error.
func cssMatcher(selector string) (func(*fakeNode) bool, error) {
	switch {
	case selector == "":
		return nil, fmt.Errorf("empty selector")
	case strings.HasPrefix(selector, "#"):
		id := selector[1:]
		return func(n *fakeNode) bool { return n.id == id }, nil
	case strings.HasPrefix(selector, "."):
		class := selector[1:]
		return func(n *fakeNode) bool { return n.hasClass(class) }, nil
	case strings.Contains(selector, "."):
		parts := strings.SplitN(selector, ".", 2)
		return func(n *fakeNode) bool { return n.tag == parts[0] && n.hasClass(parts[1]) }, nil
	case strings.ContainsAny(selector, " >[]:"):
		return nil, fmt.Errorf("unsupported selector %q", selector)
	default:
		return func(n *fakeNode) bool { return n.tag == selector }, nil
	}
}

// newTestSession wires a Ghostly around a fake driver with fast timings.
func newTestSession(d driver.Driver) *Ghostly {
	g := NewWithDriver(d, nil)
	g.timeout = 500 * time.Millisecond
	g.pollInterval = 10 * time.Millisecond
	return g
}
