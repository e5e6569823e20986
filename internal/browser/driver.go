// Abstract page/session capability consumed by the pipeline.
// The concrete browser automation library lives behind these
// interfaces so the scrape logic can run against a fake in tests.

package browser

import (
	"context"
	"errors"
	"time"
)

// ErrNoPopup is returned by ExpectPopup when the trigger did not open
// a new tab within the timeout.
var ErrNoPopup = errors.New("browser: no popup observed")

// Session is one browser tab plus the identity state (cookies) that
// travels with it. A Session is owned by exactly one worker and is
// never shared across goroutines.
type Session interface {
	// Navigate loads url and waits for DOM content.
	Navigate(ctx context.Context, url string) error

	// CurrentURL returns the URL the session is showing right now.
	CurrentURL() string

	// Title returns the current page title ("" on error).
	Title() string

	// BodyText returns the visible body text ("" on error).
	BodyText() string

	// Find returns the elements matching a CSS selector.
	Find(selector string) ([]Element, error)

	// ExpectPopup runs trigger and waits up to timeout for a new
	// tab/page to open as a result. Returns ErrNoPopup on timeout.
	ExpectPopup(trigger func() error, timeout time.Duration) (Popup, error)

	// Humanize performs idle human-plausible behavior (mouse movement,
	// scrolling). Best effort, never fails the caller.
	Humanize()

	// Cookies snapshots the session's current cookies.
	Cookies() ([]Cookie, error)

	// InstallCookies adds cookies to the session's context.
	InstallCookies(cookies []Cookie) error

	// Screenshot captures the current page for debugging. Best effort.
	Screenshot(name string)

	Close() error
}

// Element is a handle to one DOM node inside a live page. Handles are
// only valid until the session navigates away.
type Element interface {
	Text() (string, error)
	Attribute(name string) (string, error)

	// Anchors returns the <a> elements within this element.
	Anchors() ([]Element, error)

	ScrollIntoView() error
	Hover() error
	Click() error
}

// Popup is a newly opened tab observed by ExpectPopup.
type Popup interface {
	URL() string
	Close() error
}

// Factory creates fresh sessions. The orchestrator uses one session
// per worker; the recovery path uses it for a separate visible session.
type Factory interface {
	NewSession(ctx context.Context) (Session, error)
}
