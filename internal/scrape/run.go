package scrape

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"jobscrape-engine/internal/config"
	"jobscrape-engine/internal/domain"
	"jobscrape-engine/internal/extract"
	"jobscrape-engine/internal/fetch"
)

// Runner executes site runs against one sink. Safe for concurrent RunSite
// calls; the only shared state is the sink and the host limiter, both built
// for concurrent use.
type Runner struct {
	Sink           Sink
	RenderAPIKey   string
	RenderEndpoint string // overrides the ScraperAPI endpoint, tests only
	Limiter        *fetch.HostLimiter
	HTTPClient     *http.Client // tests inject one
}

// pageCursor is the run-scoped traversal state: where we are and how many
// pages we have fetched. The seen-key set lives in the Admitter; together
// they are created at run start and thrown away at run end.
type pageCursor struct {
	url   string
	pages int
}

// RunSite walks one site's paginated listing to completion or failure and
// reports what happened. Partial results admitted before a failure stay
// admitted.
func (r *Runner) RunSite(ctx context.Context, site config.Site) SiteReport {
	rep := SiteReport{SiteName: site.SiteName}

	// fail fast before any fetch
	if site.Options.UseProxy && strings.TrimSpace(r.RenderAPIKey) == "" {
		rep.Error = "use_proxy is set but no rendering API key is configured"
		return rep
	}

	client := r.clientFor(site)
	admitter := NewAdmitter(r.Sink)
	delay := time.Duration(site.Options.DelayMS) * time.Millisecond

	cur := pageCursor{url: site.StartURL}
	for {
		// courtesy delay between consecutive fetches, charged here rather
		// than inside Fetch so retries within one fetch are not double-delayed
		if cur.pages > 0 && delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				rep.Error = ctx.Err().Error()
				return rep
			}
		}

		page, err := client.Fetch(ctx, cur.url)
		if err != nil {
			log.Error("page fetch failed", "site", site.SiteName, "url", cur.url, "err", err)
			rep.Error = err.Error()
			return rep
		}
		cur.pages++
		rep.PagesVisited = cur.pages

		raws := extract.Jobs(page.Doc, site.Spec)
		if len(raws) == 0 {
			// no listings means end of content, not a failure
			log.Info("no listings on page, run complete",
				"site", site.SiteName, "url", cur.url, "pages", cur.pages)
			return rep
		}

		for _, raw := range raws {
			rec, err := Normalize(raw, site, cur.url)
			if err != nil {
				var verr *ValidationError
				if errors.As(err, &verr) {
					rep.RecordsInvalid++
					log.Warn("record dropped", "site", site.SiteName, "url", cur.url, "reason", verr.Reason, "field", string(verr.Field))
					continue
				}
				rep.RecordsInvalid++
				log.Warn("record dropped", "site", site.SiteName, "url", cur.url, "err", err)
				continue
			}

			if len(site.DetailSpec) > 0 {
				r.enrichFromDetailPage(ctx, client, site, &rec)
			}

			status, err := admitter.Admit(ctx, rec)
			if err != nil {
				if errors.Is(err, ErrSinkUnavailable) {
					log.Error("sink unavailable, aborting site run", "site", site.SiteName, "err", err)
					rep.Error = err.Error()
					return rep
				}
				// single-record persistence failure: log and move on
				log.Error("record not persisted", "site", site.SiteName, "key", rec.IdentityKey(), "err", err)
				continue
			}
			switch status {
			case Duplicate:
				rep.RecordsDuplicate++
			default:
				rep.RecordsAdmitted++
			}
		}

		if cur.pages >= site.Options.MaxPages {
			log.Info("page ceiling reached", "site", site.SiteName, "pages", cur.pages)
			return rep
		}
		next := extract.NextPage(page.Doc, site.Pagination, cur.url)
		if next == "" {
			return rep
		}
		cur.url = next
	}
}

// enrichFromDetailPage fetches a record's own page and overlays the detail
// selectors. Best effort: any failure keeps the listing-page record as is.
func (r *Runner) enrichFromDetailPage(ctx context.Context, client *fetch.Client, site config.Site, rec *domain.Record) {
	if rec.ApplyURL == "" {
		return
	}

	page, err := client.Fetch(ctx, rec.ApplyURL)
	if err != nil {
		log.Warn("detail fetch failed", "site", site.SiteName, "url", rec.ApplyURL, "err", err)
		return
	}

	detail := extract.Detail(page.Doc, site.DetailSpec)
	mergeDetail(rec, detail, rec.ApplyURL)
}

func (r *Runner) clientFor(site config.Site) *fetch.Client {
	var backend fetch.Backend = fetch.Direct{}
	if site.Options.UseProxy {
		backend = fetch.RenderProxy{APIKey: r.RenderAPIKey, Endpoint: r.RenderEndpoint}
	}
	return fetch.New(fetch.Config{
		Backend:    backend,
		Timeout:    time.Duration(site.Options.TimeoutSeconds) * time.Second,
		Retries:    site.Options.Retries,
		Limiter:    r.Limiter,
		HTTPClient: r.HTTPClient,
	})
}
