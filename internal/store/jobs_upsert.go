package store

import (
	"context"
	"fmt"
	"time"

	"jobscrape-engine/internal/domain"
	"jobscrape-engine/internal/scrape"
)

// Upsert writes a record keyed by its identity key: a fresh posting inserts,
// a posting seen in a prior run updates in place. The UNIQUE index plus
// sqlite's single-writer connection make the upsert atomic per key, which is
// what lets concurrent site runs share one store.
func (s *Store) Upsert(ctx context.Context, rec domain.Record) (inserted bool, err error) {
	key := rec.IdentityKey()

	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM jobs WHERE identity_key = ?);`, key,
	).Scan(&exists); err != nil {
		return false, s.sinkErr(ctx, err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO jobs(identity_key, source_site, title, company, location, description,
                 job_type, experience_level, salary, date_posted, apply_url, scraped_at, is_active)
VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?)
ON CONFLICT(identity_key) DO UPDATE SET
	title            = excluded.title,
	company          = excluded.company,
	location         = excluded.location,
	description      = excluded.description,
	job_type         = excluded.job_type,
	experience_level = excluded.experience_level,
	salary           = excluded.salary,
	date_posted      = excluded.date_posted,
	apply_url        = excluded.apply_url,
	scraped_at       = excluded.scraped_at,
	is_active        = excluded.is_active;`,
		key,
		rec.SourceSite,
		rec.Title,
		rec.Company,
		rec.Location,
		rec.Description,
		rec.JobType,
		rec.ExperienceLevel,
		rec.Salary,
		rec.DatePosted,
		rec.ApplyURL,
		rec.ScrapedAt.Format(time.RFC3339),
		boolToInt(rec.IsActive),
	)
	if err != nil {
		return false, s.sinkErr(ctx, err)
	}
	return !exists, nil
}

// List returns every stored record, newest scrape first.
func (s *Store) List(ctx context.Context) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT source_site, title, company, location, description,
       job_type, experience_level, salary, date_posted, apply_url, scraped_at, is_active
FROM jobs
ORDER BY scraped_at DESC, id DESC;`)
	if err != nil {
		return nil, s.sinkErr(ctx, err)
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		var rec domain.Record
		var scrapedAt string
		var active int
		if err := rows.Scan(
			&rec.SourceSite, &rec.Title, &rec.Company, &rec.Location, &rec.Description,
			&rec.JobType, &rec.ExperienceLevel, &rec.Salary, &rec.DatePosted, &rec.ApplyURL,
			&scrapedAt, &active,
		); err != nil {
			return nil, err
		}
		rec.ScrapedAt, _ = time.Parse(time.RFC3339, scrapedAt)
		rec.IsActive = active != 0
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CountBySite returns how many postings each site has contributed.
func (s *Store) CountBySite(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_site, COUNT(*) FROM jobs GROUP BY source_site;`)
	if err != nil {
		return nil, s.sinkErr(ctx, err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var site string
		var n int
		if err := rows.Scan(&site, &n); err != nil {
			return nil, err
		}
		out[site] = n
	}
	return out, rows.Err()
}

// sinkErr tells a one-record failure apart from the sink being gone. When
// the database no longer answers a ping, callers should stop the run.
func (s *Store) sinkErr(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if pingErr := s.db.PingContext(ctx); pingErr != nil {
		return fmt.Errorf("%w: %v", scrape.ErrSinkUnavailable, pingErr)
	}
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
