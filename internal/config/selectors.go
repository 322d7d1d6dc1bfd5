package config

import (
	"fmt"
	"regexp"
	"strings"

	"jobscrape-engine/internal/domain"
)

// Mode picks what a matched element yields.
type Mode int

const (
	ModeText Mode = iota // trimmed visible text
	ModeAttr             // literal attribute value, unresolved
)

// Rule is one compiled field selector: a CSS query plus an extraction mode.
// The YAML form keeps the original suffix syntax: "h2.title::text",
// "a.apply::attr(href)", or a bare query which means text.
type Rule struct {
	Query string
	Mode  Mode
	Attr  string
}

// SelectorSpec scopes every field rule to elements matched by Container.
type SelectorSpec struct {
	Container string
	Fields    map[domain.Field]Rule
}

// ContainerKey is the reserved selector name that scopes all other fields.
const ContainerKey = "job_container"

var attrSuffix = regexp.MustCompile(`::attr\(([^)]+)\)$`)

// ParseRule compiles the selector suffix syntax into a Rule.
func ParseRule(raw string) (Rule, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Rule{}, fmt.Errorf("empty selector")
	}

	if m := attrSuffix.FindStringSubmatch(raw); m != nil {
		query := strings.TrimSpace(strings.TrimSuffix(raw, m[0]))
		attr := strings.TrimSpace(m[1])
		if query == "" {
			return Rule{}, fmt.Errorf("selector %q has no query before ::attr", raw)
		}
		if attr == "" {
			return Rule{}, fmt.Errorf("selector %q names no attribute", raw)
		}
		return Rule{Query: query, Mode: ModeAttr, Attr: attr}, nil
	}

	if strings.HasSuffix(raw, "::text") {
		query := strings.TrimSpace(strings.TrimSuffix(raw, "::text"))
		if query == "" {
			return Rule{}, fmt.Errorf("selector %q has no query before ::text", raw)
		}
		return Rule{Query: query, Mode: ModeText}, nil
	}

	if strings.Contains(raw, "::") {
		return Rule{}, fmt.Errorf("selector %q: unknown ::suffix (want ::text or ::attr(name))", raw)
	}

	return Rule{Query: raw, Mode: ModeText}, nil
}

// compileSelectors turns the raw YAML selector map into a SelectorSpec,
// rejecting field names the engine does not know.
func compileSelectors(raw map[string]string) (SelectorSpec, []string) {
	spec := SelectorSpec{Fields: make(map[domain.Field]Rule)}
	var errs []string

	for name, sel := range raw {
		if name == ContainerKey {
			q := strings.TrimSpace(sel)
			if strings.Contains(q, "::") {
				errs = append(errs, fmt.Sprintf("selectors.%s must be a bare query, got %q", ContainerKey, sel))
				continue
			}
			spec.Container = q
			continue
		}

		field := domain.Field(name)
		if !domain.IsKnownField(field) {
			errs = append(errs, fmt.Sprintf("selectors.%s: unknown field", name))
			continue
		}
		rule, err := ParseRule(sel)
		if err != nil {
			errs = append(errs, fmt.Sprintf("selectors.%s: %v", name, err))
			continue
		}
		spec.Fields[field] = rule
	}

	return spec, errs
}

// compileDetailSelectors compiles the optional detail-page selector map.
// Detail rules resolve against the whole detail document, never a container.
func compileDetailSelectors(raw map[string]string) (map[domain.Field]Rule, []string) {
	if len(raw) == 0 {
		return nil, nil
	}

	out := make(map[domain.Field]Rule, len(raw))
	var errs []string
	for name, sel := range raw {
		field := domain.Field(name)
		if !domain.IsKnownField(field) {
			errs = append(errs, fmt.Sprintf("detail_selectors.%s: unknown field", name))
			continue
		}
		rule, err := ParseRule(sel)
		if err != nil {
			errs = append(errs, fmt.Sprintf("detail_selectors.%s: %v", name, err))
			continue
		}
		out[field] = rule
	}
	return out, errs
}
