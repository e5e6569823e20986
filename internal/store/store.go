// Dedup & persistence store. The only shared mutation point in the
// pipeline: inserts are serialized through a single sqlite writer
// connection, reads may come from any goroutine.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"go-jobscout/internal/scraper"
)

type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	fingerprint    TEXT PRIMARY KEY,
	title          TEXT NOT NULL,
	company        TEXT NOT NULL,
	location       TEXT NOT NULL DEFAULT '',
	summary        TEXT NOT NULL DEFAULT '',
	salary         TEXT NOT NULL DEFAULT '',
	apply_url      TEXT NOT NULL,
	ats_vendor     TEXT NOT NULL DEFAULT 'Unknown',
	resolved       INTEGER NOT NULL DEFAULT 0,
	posted_text    TEXT NOT NULL DEFAULT '',
	age_bucket     TEXT NOT NULL DEFAULT 'unknown',
	source_site    TEXT NOT NULL DEFAULT '',
	source_keyword TEXT NOT NULL DEFAULT '',
	applied        INTEGER NOT NULL DEFAULT 0,
	first_seen_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_jobs_company ON jobs(company);
CREATE INDEX IF NOT EXISTS idx_jobs_first_seen ON jobs(first_seen_at);
`

// Open creates or opens the job store at path.
func Open(path string) (*Store, error) {
	// modernc sqlite DSN; busy_timeout covers the rare concurrent reader.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// sqlite wants a single writer
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Insert stores a job keyed by its fingerprint. Inserting a job whose
// fingerprint is already present is a no-op that returns (false, nil),
// never an error. Safe under concurrent calls.
func (s *Store) Insert(ctx context.Context, job scraper.ResolvedJob) (inserted bool, err error) {
	if job.Fingerprint == "" {
		return false, fmt.Errorf("insert job: empty fingerprint")
	}

	resolved := 0
	if job.Resolved {
		resolved = 1
	}
	res, err := s.db.ExecContext(ctx, `
INSERT OR IGNORE INTO jobs
(fingerprint, title, company, location, summary, salary, apply_url, ats_vendor, resolved, posted_text, age_bucket, source_site, source_keyword, first_seen_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		job.Fingerprint, job.Title, job.Company, job.Location, job.Summary, job.Salary,
		job.ApplyURL, string(job.ATSVendor), resolved, job.PostedText, job.AgeBucket,
		job.SourceSite, job.SourceKeyword, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("insert job: %w", err)
	}

	// RowsAffected is bound to this statement, so concurrent inserts
	// cannot cross-report each other's outcome.
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert job: %w", err)
	}
	return n > 0, nil
}

// Summary is the aggregate view used by maintenance tooling and the
// operator report.
type Summary struct {
	Total     int
	BySite    map[string]int
	ByCompany map[string]int
}

func (s *Store) Stats(ctx context.Context) (Summary, error) {
	sum := Summary{BySite: make(map[string]int), ByCompany: make(map[string]int)}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs;`).Scan(&sum.Total); err != nil {
		return sum, fmt.Errorf("store stats: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT source_site, COUNT(*) FROM jobs GROUP BY source_site;`)
	if err != nil {
		return sum, fmt.Errorf("store stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var site string
		var n int
		if err := rows.Scan(&site, &n); err != nil {
			return sum, err
		}
		sum.BySite[site] = n
	}

	companyRows, err := s.db.QueryContext(ctx, `SELECT company, COUNT(*) FROM jobs GROUP BY company;`)
	if err != nil {
		return sum, fmt.Errorf("store stats: %w", err)
	}
	defer companyRows.Close()
	for companyRows.Next() {
		var company string
		var n int
		if err := companyRows.Scan(&company, &n); err != nil {
			return sum, err
		}
		sum.ByCompany[company] = n
	}
	return sum, nil
}

// ClearAll wipes the store and reports how many records were removed.
// Used by maintenance tooling, never by the pipeline itself.
func (s *Store) ClearAll(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs;`)
	if err != nil {
		return 0, fmt.Errorf("clear store: %w", err)
	}
	return res.RowsAffected()
}
