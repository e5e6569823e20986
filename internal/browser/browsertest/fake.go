// Package browsertest provides an in-memory Session implementation for
// exercising the pipeline without a real browser.
package browsertest

import (
	"context"
	"sync"
	"time"

	"go-jobscout/internal/browser"
)

// PageDef is the scripted content served for one URL.
type PageDef struct {
	Title      string
	Body       string
	Containers []*Element
}

// Session is a scriptable browser.Session. Populate Pages (via AddPage)
// before use; every navigation just switches which PageDef is current.
type Session struct {
	mu sync.Mutex

	Pages      map[string]*PageDef
	currentURL string

	NavCalls     []string
	PopupsOpened int
	PopupsClosed int
	openPopups   int
	Screenshots  []string
	Closed       bool

	cookies      []browser.Cookie
	pendingPopup string
}

func NewSession() *Session {
	return &Session{Pages: make(map[string]*PageDef)}
}

// AddPage scripts the content behind url and binds its elements to this
// session so click effects land here.
func (s *Session) AddPage(url string, def *PageDef) {
	for _, el := range def.Containers {
		el.bind(s)
	}
	s.Pages[url] = def
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.NavCalls = append(s.NavCalls, url)
	s.currentURL = url
	return nil
}

func (s *Session) CurrentURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentURL
}

func (s *Session) current() *PageDef {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Pages[s.currentURL]
}

func (s *Session) Title() string {
	if def := s.current(); def != nil {
		return def.Title
	}
	return ""
}

func (s *Session) BodyText() string {
	if def := s.current(); def != nil {
		return def.Body
	}
	return ""
}

func (s *Session) Find(selector string) ([]browser.Element, error) {
	def := s.current()
	if def == nil {
		return nil, nil
	}
	out := make([]browser.Element, len(def.Containers))
	for i, el := range def.Containers {
		out[i] = el
	}
	return out, nil
}

func (s *Session) ExpectPopup(trigger func() error, timeout time.Duration) (browser.Popup, error) {
	if err := trigger(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pendingPopup == "" {
		return nil, browser.ErrNoPopup
	}
	url := s.pendingPopup
	s.pendingPopup = ""
	s.PopupsOpened++
	s.openPopups++
	return &popup{sess: s, url: url}, nil
}

func (s *Session) Humanize() {}

func (s *Session) Cookies() ([]browser.Cookie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]browser.Cookie(nil), s.cookies...), nil
}

func (s *Session) InstallCookies(cookies []browser.Cookie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cookies = append(s.cookies, cookies...)
	return nil
}

func (s *Session) Screenshot(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Screenshots = append(s.Screenshots, name)
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Closed = true
	return nil
}

// OpenTabs reports how many scripted popups are currently open. The
// resolver's cleanup guarantee means this returns to zero after every
// resolve call.
func (s *Session) OpenTabs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openPopups
}

// Element is a scriptable browser.Element.
type Element struct {
	sess *Session

	TextVal string
	Attrs   map[string]string
	Links   []*Element

	// Click effects.
	PopupURL string // clicking opens a popup at this URL
	NavURL   string // clicking navigates the session in place
	ClickErr error

	Hovered  bool
	Scrolled bool
	Clicked  bool
}

// NewContainer builds a job-card container with the given multi-line
// text and anchors.
func NewContainer(text string, anchors ...*Element) *Element {
	return &Element{TextVal: text, Links: anchors}
}

// NewAnchor builds an anchor element with visible text and an href.
func NewAnchor(text, href string) *Element {
	return &Element{TextVal: text, Attrs: map[string]string{"href": href}}
}

func (e *Element) bind(s *Session) {
	e.sess = s
	for _, child := range e.Links {
		child.bind(s)
	}
}

func (e *Element) Text() (string, error) {
	return e.TextVal, nil
}

func (e *Element) Attribute(name string) (string, error) {
	return e.Attrs[name], nil
}

func (e *Element) Anchors() ([]browser.Element, error) {
	out := make([]browser.Element, len(e.Links))
	for i, a := range e.Links {
		out[i] = a
	}
	return out, nil
}

func (e *Element) ScrollIntoView() error {
	e.Scrolled = true
	return nil
}

func (e *Element) Hover() error {
	e.Hovered = true
	return nil
}

func (e *Element) Click() error {
	e.Clicked = true
	if e.ClickErr != nil {
		return e.ClickErr
	}
	if e.sess != nil {
		e.sess.mu.Lock()
		if e.PopupURL != "" {
			e.sess.pendingPopup = e.PopupURL
		}
		if e.NavURL != "" {
			e.sess.currentURL = e.NavURL
		}
		e.sess.mu.Unlock()
	}
	return nil
}

type popup struct {
	sess *Session
	url  string
}

func (p *popup) URL() string {
	return p.url
}

func (p *popup) Close() error {
	p.sess.mu.Lock()
	defer p.sess.mu.Unlock()
	p.sess.openPopups--
	p.sess.PopupsClosed++
	return nil
}

// Factory hands out sessions built by the supplied script. Each call
// creates a fresh session and passes it to build for page setup.
type Factory struct {
	mu       sync.Mutex
	build    func(s *Session)
	Sessions []*Session
}

func NewFactory(build func(s *Session)) *Factory {
	return &Factory{build: build}
}

func (f *Factory) NewSession(ctx context.Context) (browser.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := NewSession()
	if f.build != nil {
		f.build(s)
	}
	f.mu.Lock()
	f.Sessions = append(f.Sessions, s)
	f.mu.Unlock()
	return s, nil
}
