// Package query translates the dashboard's free-text search box into
// OpenSearch request bodies.
package query

import (
	"regexp"
	"strings"
)

const (
	// MaxSize caps a single page of results.
	MaxSize = 500

	// DefaultSortField orders results by event time when the caller does
	// not ask for anything else.
	DefaultSortField = "timestamp"
)

// numericToken matches dotted numeric tokens such as "10.0" or "192.168.1".
// It is intentionally not an IP address validator: tokens like "..." or
// "999.999" also match and still produce prefix clauses against the IP
// fields. The dashboard treats this as a best-effort hint, not validation.
var numericToken = regexp.MustCompile(`^[0-9.]+$`)

// Params are the raw, unclamped search parameters from the request.
type Params struct {
	Term      string
	SortField string
	SortOrder string
	From      int
	Size      int
}

// Clamp normalizes the parameters in place: size into [1, MaxSize],
// from to >= 0, sort order case-insensitively to asc/desc (unknown values
// fall back to desc) and an empty sort field to DefaultSortField.
func (p *Params) Clamp() {
	if p.Size < 1 {
		p.Size = 1
	}
	if p.Size > MaxSize {
		p.Size = MaxSize
	}
	if p.From < 0 {
		p.From = 0
	}
	if p.SortField == "" {
		p.SortField = DefaultSortField
	}
	p.SortOrder = strings.ToLower(p.SortOrder)
	if p.SortOrder != "asc" {
		p.SortOrder = "desc"
	}
}

// Build constructs the OpenSearch request body for the given parameters.
// An empty term (after trimming and case folding) matches all documents.
// A non-empty term becomes a disjunctive should-query with
// minimum_should_match=1 over case-insensitive substring matches on the
// alert signature and both protocol fields; numeric-looking terms add
// prefix clauses on the source and destination IP fields.
func Build(p Params) map[string]interface{} {
	p.Clamp()

	term := strings.ToLower(strings.TrimSpace(p.Term))

	var bodyQuery map[string]interface{}
	if term == "" {
		bodyQuery = map[string]interface{}{
			"match_all": map[string]interface{}{},
		}
	} else {
		should := []interface{}{
			wildcardClause("alert.signature", term),
			wildcardClause("proto", term),
			wildcardClause("app_proto", term),
		}
		if numericToken.MatchString(term) {
			should = append(should,
				map[string]interface{}{"prefix": map[string]interface{}{"src_ip": term}},
				map[string]interface{}{"prefix": map[string]interface{}{"dest_ip": term}},
			)
		}
		bodyQuery = map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               should,
				"minimum_should_match": 1,
			},
		}
	}

	return map[string]interface{}{
		"query": bodyQuery,
		"sort": []interface{}{
			map[string]interface{}{
				p.SortField: map[string]interface{}{"order": p.SortOrder},
			},
		},
		"from":             p.From,
		"size":             p.Size,
		"track_total_hits": true,
	}
}

func wildcardClause(field, term string) map[string]interface{} {
	return map[string]interface{}{
		"wildcard": map[string]interface{}{
			field: map[string]interface{}{
				"value":            "*" + term + "*",
				"case_insensitive": true,
			},
		},
	}
}

// ParseSort splits a "field:order" parameter into its parts. Missing
// pieces are left empty for Clamp to default.
func ParseSort(s string) (field, order string) {
	if s == "" {
		return "", ""
	}
	parts := strings.SplitN(s, ":", 2)
	field = parts[0]
	if len(parts) == 2 {
		order = parts[1]
	}
	return field, order
}
