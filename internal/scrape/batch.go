package scrape

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"jobscrape-engine/internal/config"
)

// RunBatch runs every site concurrently and waits for all of them. Site runs
// are independent: a failed site lands in its own report entry and never
// cancels a sibling, which is why RunSite reports failure through SiteReport
// rather than an error return.
func (r *Runner) RunBatch(ctx context.Context, sites []config.Site) BatchReport {
	rep := BatchReport{
		StartedAt: time.Now().UTC(),
		Sites:     make([]SiteReport, len(sites)),
	}

	var g errgroup.Group
	for i, site := range sites {
		i, site := i, site
		g.Go(func() error {
			log.Info("site run starting", "site", site.SiteName, "url", site.StartURL)
			rep.Sites[i] = r.RunSite(ctx, site)
			s := rep.Sites[i]
			if s.Failed() {
				log.Error("site run failed", "site", s.SiteName, "pages", s.PagesVisited, "err", s.Error)
			} else {
				log.Info("site run done", "site", s.SiteName, "pages", s.PagesVisited,
					"admitted", s.RecordsAdmitted, "duplicate", s.RecordsDuplicate, "invalid", s.RecordsInvalid)
			}
			return nil
		})
	}
	_ = g.Wait()

	rep.FinishedAt = time.Now().UTC()
	return rep
}
