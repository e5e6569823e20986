package store

import (
	"context"
	"fmt"
	"time"

	"go-jobscout/internal/scraper"
)

// Record is a stored job plus its store-side metadata.
type Record struct {
	scraper.ResolvedJob
	Applied     bool
	FirstSeenAt time.Time
}

const selectCols = `fingerprint, title, company, location, summary, salary, apply_url, ats_vendor, resolved, posted_text, age_bucket, source_site, source_keyword, applied, first_seen_at`

// Recent returns jobs first seen within the last `days` days, newest first.
func (s *Store) Recent(ctx context.Context, days int) ([]Record, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days).Format(time.RFC3339)
	return s.query(ctx,
		`SELECT `+selectCols+` FROM jobs WHERE first_seen_at >= ? ORDER BY first_seen_at DESC;`,
		cutoff)
}

// ByCompany returns all stored jobs for one company.
func (s *Store) ByCompany(ctx context.Context, company string) ([]Record, error) {
	return s.query(ctx,
		`SELECT `+selectCols+` FROM jobs WHERE company = ? ORDER BY first_seen_at DESC;`,
		company)
}

// Unapplied returns jobs not yet handed to the application component.
func (s *Store) Unapplied(ctx context.Context) ([]Record, error) {
	return s.query(ctx,
		`SELECT `+selectCols+` FROM jobs WHERE applied = 0 ORDER BY first_seen_at DESC;`)
}

// MarkApplied flags a job as handed off downstream.
func (s *Store) MarkApplied(ctx context.Context, fingerprint string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE jobs SET applied = 1 WHERE fingerprint = ?;`, fingerprint)
	if err != nil {
		return fmt.Errorf("mark applied: %w", err)
	}
	return nil
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var resolved, applied int
		var vendor, firstSeen string
		if err := rows.Scan(
			&r.Fingerprint, &r.Title, &r.Company, &r.Location, &r.Summary, &r.Salary,
			&r.ApplyURL, &vendor, &resolved, &r.PostedText, &r.AgeBucket,
			&r.SourceSite, &r.SourceKeyword, &applied, &firstSeen,
		); err != nil {
			return nil, err
		}
		r.ATSVendor = scraper.Vendor(vendor)
		r.Resolved = resolved != 0
		r.Applied = applied != 0
		if t, err := time.Parse(time.RFC3339, firstSeen); err == nil {
			r.FirstSeenAt = t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
