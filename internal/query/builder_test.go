package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name string
		in   Params
		want Params
	}{
		{
			name: "oversized page clamped to max",
			in:   Params{Size: 10000, From: 0},
			want: Params{Size: 500, From: 0, SortField: "timestamp", SortOrder: "desc"},
		},
		{
			name: "zero size clamped to one",
			in:   Params{Size: 0},
			want: Params{Size: 1, SortField: "timestamp", SortOrder: "desc"},
		},
		{
			name: "negative from clamped to zero",
			in:   Params{Size: 50, From: -5},
			want: Params{Size: 50, From: 0, SortField: "timestamp", SortOrder: "desc"},
		},
		{
			name: "sort order normalized case-insensitively",
			in:   Params{Size: 50, SortField: "src_ip", SortOrder: "ASC"},
			want: Params{Size: 50, SortField: "src_ip", SortOrder: "asc"},
		},
		{
			name: "unrecognized sort order defaults to desc",
			in:   Params{Size: 50, SortField: "src_ip", SortOrder: "sideways"},
			want: Params{Size: 50, SortField: "src_ip", SortOrder: "desc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.in
			p.Clamp()
			assert.Equal(t, tt.want, p)
		})
	}
}

func queryOf(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	q, ok := body["query"].(map[string]interface{})
	require.True(t, ok, "body should contain a query object")
	return q
}

func shouldClauses(t *testing.T, body map[string]interface{}) []interface{} {
	t.Helper()
	boolQ, ok := queryOf(t, body)["bool"].(map[string]interface{})
	require.True(t, ok, "query should be a bool query")
	assert.Equal(t, 1, boolQ["minimum_should_match"])
	should, ok := boolQ["should"].([]interface{})
	require.True(t, ok, "bool query should carry should clauses")
	return should
}

func TestBuild_EmptyTermMatchesAll(t *testing.T) {
	for _, term := range []string{"", "   ", "\t"} {
		body := Build(Params{Term: term, Size: 50})
		_, ok := queryOf(t, body)["match_all"]
		assert.True(t, ok, "term %q should produce match_all", term)
	}
}

func TestBuild_TextTermProducesThreeSubstringClauses(t *testing.T) {
	body := Build(Params{Term: "SSH", Size: 50})
	should := shouldClauses(t, body)
	require.Len(t, should, 3)

	fields := make([]string, 0, 3)
	for _, clause := range should {
		wc, ok := clause.(map[string]interface{})["wildcard"].(map[string]interface{})
		require.True(t, ok, "clause should be a wildcard match")
		for field, spec := range wc {
			fields = append(fields, field)
			specMap := spec.(map[string]interface{})
			assert.Equal(t, "*ssh*", specMap["value"], "term should be case folded")
			assert.Equal(t, true, specMap["case_insensitive"])
		}
	}
	assert.ElementsMatch(t, []string{"alert.signature", "proto", "app_proto"}, fields)
}

func TestBuild_NumericTermAddsIPPrefixClauses(t *testing.T) {
	// The numeric-token check is a character-class heuristic, not IP
	// validation: malformed dotted tokens get prefix clauses too.
	for _, term := range []string{"10.0.0", "192.168.1.5", "999.999", "...", "42"} {
		body := Build(Params{Term: term, Size: 50})
		should := shouldClauses(t, body)
		require.Len(t, should, 5, "term %q should add both IP prefix clauses", term)

		var prefixFields []string
		for _, clause := range should {
			if pc, ok := clause.(map[string]interface{})["prefix"].(map[string]interface{}); ok {
				for field, val := range pc {
					prefixFields = append(prefixFields, field)
					assert.Equal(t, term, val)
				}
			}
		}
		assert.ElementsMatch(t, []string{"src_ip", "dest_ip"}, prefixFields)
	}
}

func TestBuild_NonNumericTermHasNoPrefixClauses(t *testing.T) {
	for _, term := range []string{"tcp", "10.0.0.x", "nmap scan", "1.2.3-4"} {
		body := Build(Params{Term: term, Size: 50})
		should := shouldClauses(t, body)
		assert.Len(t, should, 3, "term %q must not produce prefix clauses", term)
	}
}

func TestBuild_PaginationAndSortCarriedIntoBody(t *testing.T) {
	body := Build(Params{Term: "", SortField: "src_ip", SortOrder: "asc", From: 20, Size: 10})

	assert.Equal(t, 20, body["from"])
	assert.Equal(t, 10, body["size"])
	assert.Equal(t, true, body["track_total_hits"])

	sort, ok := body["sort"].([]interface{})
	require.True(t, ok)
	require.Len(t, sort, 1)
	spec := sort[0].(map[string]interface{})["src_ip"].(map[string]interface{})
	assert.Equal(t, "asc", spec["order"])
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		in    string
		field string
		order string
	}{
		{"timestamp:desc", "timestamp", "desc"},
		{"src_ip:asc", "src_ip", "asc"},
		{"timestamp", "timestamp", ""},
		{"", "", ""},
		{"a:b:c", "a", "b:c"},
	}
	for _, tt := range tests {
		field, order := ParseSort(tt.in)
		assert.Equal(t, tt.field, field, "field for %q", tt.in)
		assert.Equal(t, tt.order, order, "order for %q", tt.in)
	}
}
