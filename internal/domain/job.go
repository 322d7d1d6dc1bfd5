package domain

import (
	"strings"
	"time"

	"jobscrape-engine/internal/scrape/util"
)

// Field is a logical job field a selector can target.
type Field string

const (
	FieldTitle           Field = "title"
	FieldCompany         Field = "company"
	FieldLocation        Field = "location"
	FieldDescription     Field = "description"
	FieldApplyURL        Field = "apply_url"
	FieldDatePosted      Field = "date_posted"
	FieldSalary          Field = "salary"
	FieldJobType         Field = "job_type"
	FieldExperienceLevel Field = "experience_level"
)

// KnownFields lists every field the engine understands. Selector configs
// naming anything else are rejected at validation time.
var KnownFields = []Field{
	FieldTitle,
	FieldCompany,
	FieldLocation,
	FieldDescription,
	FieldApplyURL,
	FieldDatePosted,
	FieldSalary,
	FieldJobType,
	FieldExperienceLevel,
}

func IsKnownField(f Field) bool {
	for _, k := range KnownFields {
		if f == k {
			return true
		}
	}
	return false
}

// RawFields holds what the extractor pulled out of one job container.
// A missing key means the selector matched nothing.
type RawFields map[Field]string

// Record is one normalized job posting. Immutable once built.
type Record struct {
	SourceSite      string    `json:"source_site"`
	Title           string    `json:"title"`
	Company         string    `json:"company"`
	Location        string    `json:"location"`
	Description     string    `json:"description"`
	JobType         string    `json:"job_type"`
	ExperienceLevel string    `json:"experience_level"`
	Salary          string    `json:"salary"`
	DatePosted      string    `json:"date_posted"`
	ApplyURL        string    `json:"apply_url"`
	ScrapedAt       time.Time `json:"scraped_at"`
	IsActive        bool      `json:"is_active"`
}

// IdentityKey is what dedup and the sink key on: the apply URL when we have
// one, otherwise a hash over the fields that make a posting distinct.
func (r Record) IdentityKey() string {
	if u := strings.TrimSpace(r.ApplyURL); u != "" {
		return util.CanonicalizeURL(u)
	}
	return util.HashString(strings.Join([]string{
		"job",
		strings.ToLower(strings.TrimSpace(r.Title)),
		strings.ToLower(strings.TrimSpace(r.Company)),
		strings.ToLower(strings.TrimSpace(r.Location)),
		strings.ToLower(strings.TrimSpace(r.SourceSite)),
	}, "|"))
}

// Get returns a record field by logical name. Used when merging detail-page
// values over listing-page values.
func (r *Record) Get(f Field) string {
	switch f {
	case FieldTitle:
		return r.Title
	case FieldCompany:
		return r.Company
	case FieldLocation:
		return r.Location
	case FieldDescription:
		return r.Description
	case FieldApplyURL:
		return r.ApplyURL
	case FieldDatePosted:
		return r.DatePosted
	case FieldSalary:
		return r.Salary
	case FieldJobType:
		return r.JobType
	case FieldExperienceLevel:
		return r.ExperienceLevel
	}
	return ""
}

// Set assigns a record field by logical name.
func (r *Record) Set(f Field, v string) {
	switch f {
	case FieldTitle:
		r.Title = v
	case FieldCompany:
		r.Company = v
	case FieldLocation:
		r.Location = v
	case FieldDescription:
		r.Description = v
	case FieldApplyURL:
		r.ApplyURL = v
	case FieldDatePosted:
		r.DatePosted = v
	case FieldSalary:
		r.Salary = v
	case FieldJobType:
		r.JobType = v
	case FieldExperienceLevel:
		r.ExperienceLevel = v
	}
}
