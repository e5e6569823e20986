package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Options controls how browser sessions are launched.
type Options struct {
	Headless  bool
	UserAgent string
	// Cookies are installed into every new session's context.
	Cookies []Cookie
	// LogDir is where debug screenshots land. Empty disables them.
	LogDir string
}

// Manager owns the playwright runtime and the shared browser process.
// Sessions created from it each get their own context, so cookie
// recovery on one worker never touches another.
type Manager struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	opts    Options
	shots   *ScreenshotDebugger
}

func NewManager(ctx context.Context, opts Options) (*Manager, error) {
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--no-first-run",
		},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	m := &Manager{pw: pw, browser: b, opts: opts}
	if opts.LogDir != "" {
		m.shots = NewScreenshotDebugger(opts.LogDir)
	}
	return m, nil
}

func (m *Manager) Close() error {
	if m.browser != nil {
		m.browser.Close()
	}
	if m.pw != nil {
		return m.pw.Stop()
	}
	return nil
}

// NewSession opens a fresh context+page with the manager's cookies and
// stealth init script installed.
func (m *Manager) NewSession(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bctx, err := m.browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(m.opts.UserAgent),
		Viewport:  &playwright.Size{Width: 1366, Height: 768},
	})
	if err != nil {
		return nil, fmt.Errorf("new browser context: %w", err)
	}

	if err := bctx.AddInitScript(playwright.Script{
		Content: playwright.String(initScript),
	}); err != nil {
		bctx.Close()
		return nil, fmt.Errorf("add init script: %w", err)
	}

	if len(m.opts.Cookies) > 0 {
		pwCookies := make([]playwright.OptionalCookie, len(m.opts.Cookies))
		for i, c := range m.opts.Cookies {
			pwCookies[i] = c.toPlaywright()
		}
		if err := bctx.AddCookies(pwCookies); err != nil {
			bctx.Close()
			return nil, fmt.Errorf("install cookies: %w", err)
		}
	}

	page, err := bctx.NewPage()
	if err != nil {
		bctx.Close()
		return nil, fmt.Errorf("new page: %w", err)
	}

	return &pwSession{bctx: bctx, page: page, shots: m.shots}, nil
}

// SolveInteractively opens a separate, visible browser for manual
// challenge solving, polls passed() until the challenge is gone or the
// timeout expires, and returns the resulting cookies.
func (m *Manager) SolveInteractively(ctx context.Context, url string, passed func(title, body string) bool, timeout time.Duration) ([]Cookie, error) {
	b, err := m.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("launch visible browser: %w", err)
	}
	defer b.Close()

	bctx, err := b.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(m.opts.UserAgent),
	})
	if err != nil {
		return nil, err
	}
	page, err := bctx.NewPage()
	if err != nil {
		return nil, err
	}

	if _, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(30000),
	}); err != nil {
		return nil, fmt.Errorf("open challenge page: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		title, _ := page.Title()
		body, _ := page.Locator("body").InnerText(playwright.LocatorInnerTextOptions{
			Timeout: playwright.Float(2000),
		})
		if passed(title, body) {
			pwCookies, err := bctx.Cookies()
			if err != nil {
				return nil, fmt.Errorf("capture cookies: %w", err)
			}
			cookies := make([]Cookie, len(pwCookies))
			for i, pc := range pwCookies {
				cookies[i] = fromPlaywright(pc)
			}
			return cookies, nil
		}
		time.Sleep(2 * time.Second)
	}
	return nil, fmt.Errorf("manual verification not completed within %s", timeout)
}

// pwSession adapts a playwright page to the Session interface.
type pwSession struct {
	bctx  playwright.BrowserContext
	page  playwright.Page
	shots *ScreenshotDebugger
}

func (s *pwSession) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(30000),
	})
	return err
}

func (s *pwSession) CurrentURL() string {
	return s.page.URL()
}

func (s *pwSession) Title() string {
	title, _ := s.page.Title()
	return title
}

func (s *pwSession) BodyText() string {
	text, _ := s.page.Locator("body").InnerText(playwright.LocatorInnerTextOptions{
		Timeout: playwright.Float(3000),
	})
	return text
}

func (s *pwSession) Find(selector string) ([]Element, error) {
	locators, err := s.page.Locator(selector).All()
	if err != nil {
		return nil, err
	}
	elements := make([]Element, len(locators))
	for i, l := range locators {
		elements[i] = &pwElement{loc: l}
	}
	return elements, nil
}

func (s *pwSession) ExpectPopup(trigger func() error, timeout time.Duration) (Popup, error) {
	popup, err := s.page.ExpectPopup(trigger, playwright.PageExpectPopupOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "timeout") {
			return nil, ErrNoPopup
		}
		return nil, err
	}
	return &pwPopup{page: popup}, nil
}

func (s *pwSession) Humanize() {
	MouseJiggle(s.page)
	SmoothScroll(s.page)
}

func (s *pwSession) Cookies() ([]Cookie, error) {
	pwCookies, err := s.bctx.Cookies()
	if err != nil {
		return nil, err
	}
	cookies := make([]Cookie, len(pwCookies))
	for i, pc := range pwCookies {
		cookies[i] = fromPlaywright(pc)
	}
	return cookies, nil
}

func (s *pwSession) InstallCookies(cookies []Cookie) error {
	pwCookies := make([]playwright.OptionalCookie, len(cookies))
	for i, c := range cookies {
		pwCookies[i] = c.toPlaywright()
	}
	return s.bctx.AddCookies(pwCookies)
}

func (s *pwSession) Screenshot(name string) {
	if s.shots != nil {
		s.shots.Capture(s.page, name)
	}
}

func (s *pwSession) Close() error {
	s.page.Close()
	return s.bctx.Close()
}

type pwElement struct {
	loc playwright.Locator
}

func (e *pwElement) Text() (string, error) {
	return e.loc.InnerText(playwright.LocatorInnerTextOptions{
		Timeout: playwright.Float(2000),
	})
}

func (e *pwElement) Attribute(name string) (string, error) {
	val, err := e.loc.GetAttribute(name, playwright.LocatorGetAttributeOptions{
		Timeout: playwright.Float(1000),
	})
	if err != nil {
		return "", err
	}
	return val, nil
}

func (e *pwElement) Anchors() ([]Element, error) {
	locators, err := e.loc.Locator("a").All()
	if err != nil {
		return nil, err
	}
	anchors := make([]Element, len(locators))
	for i, l := range locators {
		anchors[i] = &pwElement{loc: l}
	}
	return anchors, nil
}

func (e *pwElement) ScrollIntoView() error {
	return e.loc.ScrollIntoViewIfNeeded()
}

func (e *pwElement) Hover() error {
	return e.loc.Hover(playwright.LocatorHoverOptions{
		Timeout: playwright.Float(2000),
	})
}

func (e *pwElement) Click() error {
	return e.loc.Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(5000),
	})
}

type pwPopup struct {
	page playwright.Page
}

func (p *pwPopup) URL() string {
	return p.page.URL()
}

func (p *pwPopup) Close() error {
	return p.page.Close()
}
