package scrape

import (
	"fmt"
	"time"

	"jobscrape-engine/internal/config"
	"jobscrape-engine/internal/domain"
	"jobscrape-engine/internal/scrape/util"
)

// ValidationError marks a raw record the normalizer refused. The record is
// dropped and counted; it never aborts the page.
type ValidationError struct {
	Field  domain.Field
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid record: %s %s", e.Field, e.Reason)
}

// Normalize turns one raw field map into a canonical Record: text cleaned,
// relative apply links resolved against the page they came from, provenance
// stamped. Absent optional fields become empty strings so nothing
// missing-value-shaped reaches the sink.
func Normalize(raw domain.RawFields, site config.Site, pageURL string) (domain.Record, error) {
	rec := domain.Record{
		SourceSite: site.SiteName,
		ScrapedAt:  time.Now().UTC(),
		IsActive:   true,
	}

	for _, f := range domain.KnownFields {
		rec.Set(f, util.CleanText(raw[f]))
	}

	if rec.Title == "" {
		return domain.Record{}, &ValidationError{Field: domain.FieldTitle, Reason: "is empty"}
	}

	if rec.ApplyURL != "" && !util.IsAbsoluteURL(rec.ApplyURL) {
		rec.ApplyURL = util.ResolveRef(pageURL, rec.ApplyURL)
	}

	return rec, nil
}

// mergeDetail overlays non-empty detail-page fields on a listing record.
// Listing values win when the detail page had nothing for a field.
func mergeDetail(rec *domain.Record, detail domain.RawFields, pageURL string) {
	for f, v := range detail {
		v = util.CleanText(v)
		if v == "" {
			continue
		}
		if f == domain.FieldApplyURL && !util.IsAbsoluteURL(v) {
			v = util.ResolveRef(pageURL, v)
		}
		rec.Set(f, v)
	}
}
