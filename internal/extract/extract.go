// Package extract applies a compiled selector spec to a fetched document.
package extract

import (
	"github.com/PuerkitoBio/goquery"

	"jobscrape-engine/internal/config"
	"jobscrape-engine/internal/domain"
	"jobscrape-engine/internal/scrape/util"
)

// Jobs finds every element matching the container selector and resolves each
// field rule inside that element only. Scoping to the container is what keeps
// fields from bleeding between sibling listings when a selector like ".title"
// would match all of them page-wide. An empty result is not an error; it
// means the page has no listings, which ends pagination upstream.
func Jobs(doc *goquery.Document, spec config.SelectorSpec) []domain.RawFields {
	var out []domain.RawFields

	doc.Find(spec.Container).Each(func(_ int, container *goquery.Selection) {
		raw := domain.RawFields{}
		for field, rule := range spec.Fields {
			if v, ok := applyRule(container, rule); ok {
				raw[field] = v
			}
		}
		out = append(out, raw)
	})

	return out
}

// Detail resolves detail-page rules against the whole document. Detail pages
// describe a single job, so there is no container to scope to.
func Detail(doc *goquery.Document, rules map[domain.Field]Rule) domain.RawFields {
	raw := domain.RawFields{}
	for field, rule := range rules {
		if v, ok := applyRule(doc.Selection, rule); ok {
			raw[field] = v
		}
	}
	return raw
}

// Rule aliases the config type so callers of Detail don't need both imports.
type Rule = config.Rule

// applyRule resolves one rule against scope. The bool is false when the
// query matched nothing, which callers treat as "field absent", never an
// error. Attribute values come back verbatim; resolving relative URLs is the
// normalizer's job.
func applyRule(scope *goquery.Selection, rule config.Rule) (string, bool) {
	sel := scope.Find(rule.Query).First()
	if sel.Length() == 0 {
		return "", false
	}

	switch rule.Mode {
	case config.ModeAttr:
		v, ok := sel.Attr(rule.Attr)
		if !ok {
			return "", false
		}
		return v, true
	default:
		return util.CleanText(sel.Text()), true
	}
}
