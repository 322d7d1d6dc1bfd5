package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"jobscrape-engine/internal/domain"
)

// Pagination says how the engine finds page N+1. The default mode resolves
// next_page_selector against the full document; page_param mode increments
// a query parameter instead, for sites whose next link is script-driven.
type Pagination struct {
	Type             string `yaml:"type"` // "selector" (default) or "page_param"
	NextPageSelector string `yaml:"next_page_selector"`
	Param            string `yaml:"param"`
}

const (
	PaginationSelector  = "selector"
	PaginationPageParam = "page_param"
)

type Options struct {
	UseProxy       bool `yaml:"use_proxy"`
	DelayMS        int  `yaml:"delay_ms"`
	MaxPages       int  `yaml:"max_pages"`
	Retries        int  `yaml:"retries"`
	TimeoutSeconds int  `yaml:"timeout_seconds"`
}

// Site is one site's scraping configuration, loaded once per run and treated
// as immutable by the engine.
type Site struct {
	SiteName        string            `yaml:"site_name"`
	StartURL        string            `yaml:"start_url"`
	Selectors       map[string]string `yaml:"selectors"`
	DetailSelectors map[string]string `yaml:"detail_selectors"`
	Pagination      Pagination        `yaml:"pagination"`
	Options         Options           `yaml:"options"`

	// Compiled by NormalizeAndValidate.
	Spec       SelectorSpec          `yaml:"-"`
	DetailSpec map[domain.Field]Rule `yaml:"-"`
}

// Load reads and validates a single site config file.
func Load(path string) (Site, error) {
	var site Site
	b, err := os.ReadFile(path)
	if err != nil {
		return site, err
	}
	if err := yaml.Unmarshal(b, &site); err != nil {
		return site, fmt.Errorf("parse %s: %w", path, err)
	}

	out, res := NormalizeAndValidate(site)
	if !res.OK() {
		return site, fmt.Errorf("invalid config %s:\n- %s", path, strings.Join(res.Errors, "\n- "))
	}
	return out, nil
}

// LoadDir loads every .yml/.yaml file in dir, sorted by name. A file that
// fails validation fails the whole load; a batch should not silently run
// with half its sites missing.
func LoadDir(dir string) ([]Site, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yml" || ext == ".yaml" {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, fmt.Errorf("no site configs found in %s", dir)
	}

	sites := make([]Site, 0, len(paths))
	for _, p := range paths {
		site, err := Load(p)
		if err != nil {
			return nil, err
		}
		sites = append(sites, site)
	}
	return sites, nil
}
