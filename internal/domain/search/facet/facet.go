package facet

import (
	"sort"
	"strings"
)

// Field is a facetable (and filterable) paper attribute.
type Field string

// Facetable fields, in the fixed order used for filter compilation and query planning.
const (
	Venue Field = "venue"
	Year  Field = "year"
)

// All returns every facetable field in canonical order.
func All() []Field {
	return []Field{Venue, Year}
}

// IsValid checks if the field is one of the supported values.
func (f Field) IsValid() bool {
	return f == Venue || f == Year
}

// ParseList splits a comma-separated field list, trims each name and keeps only valid fields.
// The result is sorted and free of duplicates; unknown names are dropped.
func ParseList(s string) []Field {
	seen := make(map[Field]bool)
	out := make([]Field, 0, 2)
	for _, part := range strings.Split(s, ",") {
		f := Field(strings.TrimSpace(part))
		if !f.IsValid() || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Distribution maps a field name to value->count tables.
type Distribution map[string]map[string]int64

// Counts returns the table for a field and whether it was present.
func (d Distribution) Counts(f Field) (map[string]int64, bool) {
	if d == nil {
		return nil, false
	}
	m, ok := d[string(f)]
	return m, ok
}
