package ui

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// stringSource adapts a slice for fuzzy.FindFrom.
type stringSource []string

func (s stringSource) String(i int) string { return s[i] }
func (s stringSource) Len() int            { return len(s) }

// filterIndices returns the indices of items matching query, best match
// first. An empty query keeps every item in order.
func filterIndices(query string, items []string) []int {
	query = strings.TrimSpace(query)
	if query == "" {
		out := make([]int, len(items))
		for i := range items {
			out[i] = i
		}
		return out
	}
	matches := fuzzy.FindFrom(query, stringSource(items))
	out := make([]int, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Index)
	}
	return out
}
