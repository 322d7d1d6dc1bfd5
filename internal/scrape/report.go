package scrape

import "time"

// SiteReport is the per-site outcome of a batch run. Every configured site
// gets exactly one, error or not.
type SiteReport struct {
	SiteName         string `json:"site_name"`
	PagesVisited     int    `json:"pages_visited"`
	RecordsAdmitted  int    `json:"records_admitted"`
	RecordsDuplicate int    `json:"records_duplicate"`
	RecordsInvalid   int    `json:"records_invalid"`
	Error            string `json:"error,omitempty"`
}

func (r SiteReport) Failed() bool { return r.Error != "" }

type BatchReport struct {
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Sites      []SiteReport `json:"sites"`
}

func (b BatchReport) TotalAdmitted() int {
	n := 0
	for _, s := range b.Sites {
		n += s.RecordsAdmitted
	}
	return n
}

func (b BatchReport) FailedSites() int {
	n := 0
	for _, s := range b.Sites {
		if s.Failed() {
			n++
		}
	}
	return n
}
