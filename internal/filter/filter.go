// Package filter evaluates log lines against compiled allow/deny regex
// lists.
package filter

import (
	"fmt"
	"regexp"
)

// Filter decides whether a line should be shipped. It is compiled once
// from two ordered pattern lists and is safe to share across calls —
// should_ship depends only on the line and the compiled patterns.
type Filter struct {
	allow []*regexp.Regexp
	deny  []*regexp.Regexp
}

// New compiles a filter from match_on (allow) and exclude_on (deny) pattern
// strings. A compile failure anywhere in either list fails construction; the
// caller decides how to react (per-pipeline, never agent-wide).
func New(matchOn, excludeOn []string) (*Filter, error) {
	allow, err := compileAll("match_on", matchOn)
	if err != nil {
		return nil, err
	}
	deny, err := compileAll("exclude_on", excludeOn)
	if err != nil {
		return nil, err
	}
	return &Filter{allow: allow, deny: deny}, nil
}

func compileAll(field string, patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s regex %q: %w", field, p, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// ShouldShip reports whether line survives the filter:
//  1. if the allow list is non-empty, line must match at least one pattern
//  2. if the deny list is non-empty, line must not match any pattern
func (f *Filter) ShouldShip(line string) bool {
	if len(f.allow) > 0 {
		matched := false
		for _, re := range f.allow {
			if re.MatchString(line) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	for _, re := range f.deny {
		if re.MatchString(line) {
			return false
		}
	}

	return true
}

// IsPassthrough reports whether this filter has no patterns at all, i.e. it
// ships every line unconditionally.
func (f *Filter) IsPassthrough() bool {
	return len(f.allow) == 0 && len(f.deny) == 0
}
