package config

import (
	"fmt"
	"net/url"
	"strings"

	"jobscrape-engine/internal/domain"
)

const (
	DefaultMaxPages       = 5
	DefaultRetries        = 2
	DefaultTimeoutSeconds = 30
	DefaultDelayMS        = 2000
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate compiles selectors, fills option defaults, and checks
// the invariants the engine refuses to run without: a start URL, a container
// selector, and a title selector. The input is not mutated.
func NormalizeAndValidate(site Site) (Site, Validation) {
	out := site
	var res Validation

	out.SiteName = strings.TrimSpace(out.SiteName)
	out.StartURL = strings.TrimSpace(out.StartURL)

	if out.SiteName == "" {
		res.addErr("site_name is required")
	}

	if out.StartURL == "" {
		res.addErr("start_url is required")
	} else if u, err := url.Parse(out.StartURL); err != nil || u.Scheme == "" || u.Host == "" {
		res.addErr("start_url must be an absolute URL, got %q", out.StartURL)
	}

	spec, errs := compileSelectors(out.Selectors)
	res.Errors = append(res.Errors, errs...)
	if spec.Container == "" {
		res.addErr("selectors.%s is required", ContainerKey)
	}
	if _, ok := spec.Fields[domain.FieldTitle]; !ok {
		res.addErr("selectors.title is required")
	}
	if _, ok := spec.Fields[domain.FieldApplyURL]; !ok {
		res.addWarn("selectors.apply_url is missing; dedup falls back to hashed title/company/location")
	}
	out.Spec = spec

	detail, derrs := compileDetailSelectors(out.DetailSelectors)
	res.Errors = append(res.Errors, derrs...)
	out.DetailSpec = detail
	if len(detail) > 0 {
		if _, ok := spec.Fields[domain.FieldApplyURL]; !ok {
			res.addWarn("detail_selectors set but selectors.apply_url is missing; detail pages cannot be fetched")
		}
	}

	// Pagination mode
	switch strings.TrimSpace(out.Pagination.Type) {
	case "", PaginationSelector:
		out.Pagination.Type = PaginationSelector
		// no selector just means single-page sites
	case PaginationPageParam:
		if strings.TrimSpace(out.Pagination.Param) == "" {
			res.addErr("pagination.param is required when pagination.type=%s", PaginationPageParam)
		}
	default:
		res.addErr("pagination.type must be %q or %q, got %q",
			PaginationSelector, PaginationPageParam, out.Pagination.Type)
	}

	// Option defaults + sanity
	if out.Options.MaxPages <= 0 {
		out.Options.MaxPages = DefaultMaxPages
	}
	if out.Options.Retries < 0 {
		res.addErr("options.retries must be >= 0")
	} else if out.Options.Retries == 0 {
		out.Options.Retries = DefaultRetries
	}
	if out.Options.TimeoutSeconds <= 0 {
		out.Options.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if out.Options.DelayMS < 0 {
		res.addErr("options.delay_ms must be >= 0")
	} else if out.Options.DelayMS == 0 {
		out.Options.DelayMS = DefaultDelayMS
	}
	if out.Options.DelayMS < 500 {
		res.addWarn("options.delay_ms is very low (%d); target sites may rate-limit you", out.Options.DelayMS)
	}
	if out.Options.MaxPages > 200 {
		res.addWarn("options.max_pages is very high (%d)", out.Options.MaxPages)
	}

	return out, res
}
