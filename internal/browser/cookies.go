package browser

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/playwright-community/playwright-go"
)

// Cookie represents a browser cookie as stored in the JSON cookie files.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite"`
}

// LoadCookies reads a cookie file written by a previous run (or exported
// from a manual browser session).
func LoadCookies(path string) ([]Cookie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cookies []Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, fmt.Errorf("parse cookie file %s: %w", path, err)
	}
	return cookies, nil
}

// SaveCookies persists a cookie snapshot so the next run (or a recovered
// session) starts with a warm identity.
func SaveCookies(path string, cookies []Cookie) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c Cookie) toPlaywright() playwright.OptionalCookie {
	pc := playwright.OptionalCookie{
		Name:   c.Name,
		Value:  c.Value,
		Domain: playwright.String(c.Domain),
		Path:   playwright.String(c.Path),
	}

	if c.Expires > 0 {
		pc.Expires = playwright.Float(c.Expires)
	}
	if c.HTTPOnly {
		pc.HttpOnly = playwright.Bool(true)
	}
	if c.Secure {
		pc.Secure = playwright.Bool(true)
	}

	switch c.SameSite {
	case "Lax":
		pc.SameSite = playwright.SameSiteAttributeLax
	case "Strict":
		pc.SameSite = playwright.SameSiteAttributeStrict
	case "None":
		pc.SameSite = playwright.SameSiteAttributeNone
	}
	return pc
}

func fromPlaywright(pc playwright.Cookie) Cookie {
	c := Cookie{
		Name:     pc.Name,
		Value:    pc.Value,
		Domain:   pc.Domain,
		Path:     pc.Path,
		Expires:  pc.Expires,
		HTTPOnly: pc.HttpOnly,
		Secure:   pc.Secure,
	}
	if pc.SameSite != nil {
		c.SameSite = string(*pc.SameSite)
	}
	return c
}
