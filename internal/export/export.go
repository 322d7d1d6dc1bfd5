// Package export writes scraped records out for downstream consumers.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"time"

	"jobscrape-engine/internal/domain"
)

// JSON writes records as an indented JSON array.
func JSON(w io.Writer, records []domain.Record) error {
	if records == nil {
		records = []domain.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

var csvHeader = []string{
	"source_site", "title", "company", "location", "description",
	"job_type", "experience_level", "salary", "date_posted",
	"apply_url", "scraped_at", "is_active",
}

// CSV writes records with a fixed header row.
func CSV(w io.Writer, records []domain.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		active := "false"
		if r.IsActive {
			active = "true"
		}
		row := []string{
			r.SourceSite, r.Title, r.Company, r.Location, r.Description,
			r.JobType, r.ExperienceLevel, r.Salary, r.DatePosted,
			r.ApplyURL, r.ScrapedAt.Format(time.RFC3339), active,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
