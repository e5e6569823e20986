package scraper

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// normalizeText lowercases, strips diacritics and collapses whitespace
// so cosmetic differences between scrapes don't defeat deduplication.
func normalizeText(str string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, str)
	return strings.Join(strings.Fields(strings.ToLower(result)), " ")
}

// canonicalURL strips query, fragment and a leading www so tracking
// parameters don't produce distinct fingerprints for the same job.
func canonicalURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return strings.ToLower(strings.TrimSpace(raw))
	}
	host := strings.ToLower(strings.TrimPrefix(u.Host, "www."))
	path := strings.TrimSuffix(u.Path, "/")
	return host + path
}

// Fingerprint derives the dedup key for a job. Two records with equal
// normalized title, company and apply URL hash identically regardless
// of when they were scraped.
func Fingerprint(title, company, applyURL string) string {
	h := sha256.New()
	h.Write([]byte(normalizeText(title)))
	h.Write([]byte{'|'})
	h.Write([]byte(normalizeText(company)))
	h.Write([]byte{'|'})
	h.Write([]byte(canonicalURL(applyURL)))
	return hex.EncodeToString(h.Sum(nil))
}
