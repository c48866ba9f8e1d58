// Package filter narrows discovered process records with an ignore list and a
// user query.
package filter

import (
	"fmt"
	"regexp"
	"strings"

	"go.hackfix.me/lhost/models"
)

// DefaultQuery matches every record.
const DefaultQuery = ".*"

// DefaultIgnore returns patterns of applications that keep ports open for
// their own purposes, e.g. syncing, and aren't relevant to users looking for
// local web servers. "livereloa" matches names as truncated by lsof.
func DefaultIgnore() []string {
	return []string{
		"dropbox",
		"livereloa",
		"adobe",
		"agilebits",
		"creative",
		"boom",
	}
}

// Filter excludes records that match any ignore pattern, and keeps the ones
// that match a query. All patterns are case-insensitive regular expressions
// matched as substrings of any record field.
type Filter struct {
	ignore *regexp.Regexp
}

// New returns a Filter that excludes records matching any of the given
// patterns. No records are excluded if patterns is empty. Empty patterns are
// rejected, since they would exclude every record.
func New(ignorePatterns []string) (*Filter, error) {
	f := &Filter{}
	if len(ignorePatterns) == 0 {
		return f, nil
	}

	alts := make([]string, len(ignorePatterns))
	for i, pat := range ignorePatterns {
		if pat == "" {
			return nil, fmt.Errorf("empty ignore pattern at index %d", i)
		}
		if _, err := regexp.Compile(pat); err != nil {
			return nil, fmt.Errorf("invalid ignore pattern '%s': %w", pat, err)
		}
		alts[i] = "(?:" + pat + ")"
	}

	rx, err := regexp.Compile("(?i)" + strings.Join(alts, "|"))
	if err != nil {
		return nil, fmt.Errorf("failed compiling ignore patterns: %w", err)
	}
	f.ignore = rx

	return f, nil
}

// CompileQuery returns the case-insensitive expression for a user query. An
// empty query is equivalent to DefaultQuery.
func CompileQuery(query string) (*regexp.Regexp, error) {
	if query == "" {
		query = DefaultQuery
	}
	rx, err := regexp.Compile("(?i)" + query)
	if err != nil {
		return nil, fmt.Errorf("invalid query '%s': %w", query, err)
	}
	return rx, nil
}

// LiteralQuery returns a case-insensitive expression that matches query as
// plain text.
func LiteralQuery(query string) *regexp.Regexp {
	return regexp.MustCompile("(?i)" + regexp.QuoteMeta(query))
}

// Apply returns the records that match none of the ignore patterns and match
// the query, in their original order. A nil query matches every record.
func (f *Filter) Apply(records []models.ProcessRecord, query *regexp.Regexp) []models.ProcessRecord {
	matches := make([]models.ProcessRecord, 0, len(records))
	for _, r := range records {
		if f.Ignored(r) {
			continue
		}
		if query != nil && !anyField(query, r) {
			continue
		}
		matches = append(matches, r)
	}

	return matches
}

// Ignored reports whether the record matches any ignore pattern.
func (f *Filter) Ignored(r models.ProcessRecord) bool {
	return f.ignore != nil && anyField(f.ignore, r)
}

func anyField(rx *regexp.Regexp, r models.ProcessRecord) bool {
	for _, v := range r.Fields() {
		if rx.MatchString(v) {
			return true
		}
	}
	return false
}
