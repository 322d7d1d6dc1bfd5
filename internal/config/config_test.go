package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobscrape-engine/internal/domain"
)

func validSite() Site {
	return Site{
		SiteName: "Example",
		StartURL: "https://example.com/jobs",
		Selectors: map[string]string{
			"job_container": ".job",
			"title":         "h2::text",
			"apply_url":     "a::attr(href)",
		},
	}
}

func TestNormalizeAndValidate_OK(t *testing.T) {
	out, res := NormalizeAndValidate(validSite())

	require.True(t, res.OK(), "errors: %v", res.Errors)
	assert.Equal(t, ".job", out.Spec.Container)
	assert.Equal(t, Rule{Query: "h2", Mode: ModeText}, out.Spec.Fields[domain.FieldTitle])
	assert.Equal(t, Rule{Query: "a", Mode: ModeAttr, Attr: "href"}, out.Spec.Fields[domain.FieldApplyURL])

	// defaults filled in
	assert.Equal(t, DefaultMaxPages, out.Options.MaxPages)
	assert.Equal(t, DefaultRetries, out.Options.Retries)
	assert.Equal(t, DefaultTimeoutSeconds, out.Options.TimeoutSeconds)
	assert.Equal(t, DefaultDelayMS, out.Options.DelayMS)
	assert.Equal(t, PaginationSelector, out.Pagination.Type)
}

func TestNormalizeAndValidate_RequiredFields(t *testing.T) {
	site := validSite()
	site.StartURL = ""
	delete(site.Selectors, "job_container")
	delete(site.Selectors, "title")

	_, res := NormalizeAndValidate(site)

	require.False(t, res.OK())
	assert.Contains(t, res.Errors, "start_url is required")
	assert.Contains(t, res.Errors, "selectors.job_container is required")
	assert.Contains(t, res.Errors, "selectors.title is required")
}

func TestNormalizeAndValidate_RelativeStartURL(t *testing.T) {
	site := validSite()
	site.StartURL = "/jobs"

	_, res := NormalizeAndValidate(site)
	require.False(t, res.OK())
}

func TestNormalizeAndValidate_UnknownField(t *testing.T) {
	site := validSite()
	site.Selectors["recruiter_phone"] = ".phone"

	_, res := NormalizeAndValidate(site)

	require.False(t, res.OK())
	assert.Contains(t, res.Errors, "selectors.recruiter_phone: unknown field")
}

func TestNormalizeAndValidate_PageParamNeedsParam(t *testing.T) {
	site := validSite()
	site.Pagination = Pagination{Type: PaginationPageParam}

	_, res := NormalizeAndValidate(site)
	require.False(t, res.OK())

	site.Pagination.Param = "page"
	_, res = NormalizeAndValidate(site)
	assert.True(t, res.OK(), "errors: %v", res.Errors)
}

func TestNormalizeAndValidate_BadPaginationType(t *testing.T) {
	site := validSite()
	site.Pagination.Type = "infinite_scroll"

	_, res := NormalizeAndValidate(site)
	require.False(t, res.OK())
}

func TestNormalizeAndValidate_MissingApplyURLWarns(t *testing.T) {
	site := validSite()
	delete(site.Selectors, "apply_url")

	_, res := NormalizeAndValidate(site)

	assert.True(t, res.OK())
	assert.NotEmpty(t, res.Warnings)
}

func TestNormalizeAndValidate_DetailSelectors(t *testing.T) {
	site := validSite()
	site.DetailSelectors = map[string]string{
		"description": ".full-description::text",
		"job_type":    ".type::text",
	}

	out, res := NormalizeAndValidate(site)

	require.True(t, res.OK(), "errors: %v", res.Errors)
	assert.Len(t, out.DetailSpec, 2)

	site.DetailSelectors["bogus"] = ".x"
	_, res = NormalizeAndValidate(site)
	require.False(t, res.OK())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
site_name: "Example Careers"
start_url: "https://careers.example.com/jobs"
selectors:
  job_container: ".job-listing"
  title: "h2.job-title::text"
  apply_url: "a.apply::attr(href)"
pagination:
  next_page_selector: "a.next::attr(href)"
options:
  max_pages: 3
  delay_ms: 100
`), 0o644))

	site, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Example Careers", site.SiteName)
	assert.Equal(t, 3, site.Options.MaxPages)
	assert.Equal(t, 100, site.Options.DelayMS)
	assert.Equal(t, ".job-listing", site.Spec.Container)
	assert.Equal(t, "a.next::attr(href)", site.Pagination.NextPageSelector)
}

func TestLoad_InvalidFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
site_name: "Broken"
selectors:
  title: "h2"
`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start_url")
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b-site.yml", "a-site.yaml"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(`
site_name: "`+name+`"
start_url: "https://example.com/jobs"
selectors:
  job_container: ".job"
  title: "h2"
`), 0o644))
	}
	// non-config files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	sites, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, sites, 2)
	assert.Equal(t, "a-site.yaml", sites[0].SiteName)
	assert.Equal(t, "b-site.yml", sites[1].SiteName)
}

func TestLoadDir_Empty(t *testing.T) {
	_, err := LoadDir(t.TempDir())
	require.Error(t, err)
}
