// Package ghostly provides lightweight browser acceptance testing with a
// deliberately reduced vocabulary: seven actions and five assertions.
//
// Browser actions: Get, Click, Fill, Submit, Wait, SwitchTo, Navigate
// Assertions: AssertText, AssertElement, AssertValue, AssertTitle, AssertURL
//
// # Architecture
//
// A Ghostly value owns one browser session for its lifetime. All element
// lookups go through a single resolver that interprets a small,
// priority-ordered selector grammar (#id, .class, then tag/name/id/CSS/link
// text, first strategy with a match wins) and polls the driver until a
// visible, non-hidden element appears or the timeout elapses. Hidden form
// inputs are always filtered out.
//
// The driver is abstracted behind the interfaces in the driver subpackage;
// the shipped implementation runs on Playwright. Tests substitute an
// in-memory driver.
//
// # Example Usage
//
//	cfg := config.DefaultConfig()
//	g, err := ghostly.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer g.End()
//
//	g.Get("http://localhost:8000/login")
//	g.Submit("#login-form",
//	    ghostly.FormField{Selector: "username", Value: "user-<random>"},
//	    ghostly.FormField{Selector: "password", Value: "hunter2"},
//	)
//	if err := g.AssertText("Welcome", ""); err != nil {
//	    log.Fatal(err)
//	}
//
// # Timing
//
// Ghostly disables the driver's own implicit wait at session construction
// and polls on its own schedule (config.PollInterval, default 100ms). Every
// assertion first sleeps a fixed second to let the page settle; this delay
// is intentionally not configurable.
package ghostly
