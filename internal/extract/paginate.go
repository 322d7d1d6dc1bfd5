package extract

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobscrape-engine/internal/config"
	"jobscrape-engine/internal/scrape/util"
)

// NextPage derives the URL of the following page, or "" when pagination is
// over. In selector mode the next-page rule resolves against the full
// document (pagination controls live outside job containers); a link that
// is missing, empty, or identical to the current page ends the traversal.
// Cyclic chains longer than that are not detected here; the run controller's
// page ceiling bounds them.
func NextPage(doc *goquery.Document, pg config.Pagination, pageURL string) string {
	if pg.Type == config.PaginationPageParam {
		return bumpPageParam(pageURL, pg.Param)
	}

	sel := strings.TrimSpace(pg.NextPageSelector)
	if sel == "" {
		return ""
	}
	rule, err := config.ParseRule(sel)
	if err != nil {
		return ""
	}

	node := doc.Find(rule.Query).First()
	if node.Length() == 0 {
		return ""
	}

	var href string
	if rule.Mode == config.ModeAttr {
		href, _ = node.Attr(rule.Attr)
	} else {
		// bare selectors on anchors still mean the link target
		href, _ = node.Attr("href")
	}
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	next := util.ResolveRef(pageURL, href)
	if next == "" || util.CanonicalizeURL(next) == util.CanonicalizeURL(pageURL) {
		return ""
	}
	return next
}

// bumpPageParam increments a numeric query parameter, for sites whose next
// link only exists in script. A missing or non-numeric value is treated as
// page 1, so the first bump yields page 2.
func bumpPageParam(pageURL, param string) string {
	param = strings.TrimSpace(param)
	if param == "" {
		return ""
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}

	q := u.Query()
	page := 1
	if v := q.Get(param); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return ""
		}
		page = n
	}
	q.Set(param, strconv.Itoa(page+1))
	u.RawQuery = q.Encode()
	return u.String()
}
