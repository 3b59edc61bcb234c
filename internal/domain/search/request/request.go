package request

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/kailas-cloud/papersearch/internal/domain/search/facet"
)

// DefaultLimit is the page size used when the client does not send a valid limit.
const DefaultLimit = 20

// Recognized parameter keys.
const (
	KeyQuery  = "q"
	KeyVenue  = "venue"
	KeyYear   = "year"
	KeyLimit  = "limit"
	KeyPage   = "page"
	KeyFacets = "facets"
)

// Param is a single raw (key, value) pair. Keys may repeat.
type Param struct {
	Key   string
	Value string
}

// SearchRequest is the canonical, normalized form of a search.
// Venue and year collections are kept sorted; duplicates are preserved.
type SearchRequest struct {
	query  *string
	venues []string
	years  []int
	limit  *int
	page   *int
	facets []facet.Field
}

// Normalize builds a SearchRequest from raw parameters.
// Parsing is lenient: malformed numeric values are dropped, unknown keys are ignored.
func Normalize(params []Param) SearchRequest {
	req := SearchRequest{
		venues: make([]string, 0),
		years:  make([]int, 0),
		facets: make([]facet.Field, 0),
	}

	for _, p := range params {
		switch p.Key {
		case KeyQuery:
			q := p.Value
			req.query = &q
		case KeyVenue:
			req.venues = append(req.venues, p.Value)
		case KeyYear:
			if y, err := strconv.ParseInt(p.Value, 10, 32); err == nil {
				req.years = append(req.years, int(y))
			}
		case KeyLimit:
			if l, ok := parseUnsigned(p.Value); ok {
				req.limit = &l
			}
		case KeyPage:
			if pg, ok := parseUnsigned(p.Value); ok {
				req.page = &pg
			}
		case KeyFacets:
			req.facets = facet.ParseList(p.Value)
		}
	}

	sort.Strings(req.venues)
	sort.Ints(req.years)
	return req
}

// parseUnsigned accepts decimal digits with at most one leading '+'.
func parseUnsigned(s string) (int, bool) {
	if rest, ok := strings.CutPrefix(s, "+"); ok {
		if strings.HasPrefix(rest, "+") {
			return 0, false
		}
		s = rest
	}
	v, err := strconv.ParseUint(s, 10, strconv.IntSize-1)
	if err != nil {
		return 0, false
	}
	return int(v), true
}

// Query returns the free-text query and whether one was supplied.
func (r *SearchRequest) Query() (string, bool) {
	if r.query == nil {
		return "", false
	}
	return *r.query, true
}

// Text returns the free-text query, or "" when absent.
func (r *SearchRequest) Text() string {
	q, _ := r.Query()
	return q
}

// Venues returns the sorted venue filter values.
func (r *SearchRequest) Venues() []string { return r.venues }

// Years returns the sorted year filter values.
func (r *SearchRequest) Years() []int { return r.years }

// Facets returns the requested facet fields, sorted.
func (r *SearchRequest) Facets() []facet.Field { return r.facets }

// WantsFacet reports whether the client asked for the given facet.
func (r *SearchRequest) WantsFacet(f facet.Field) bool {
	for _, x := range r.facets {
		if x == f {
			return true
		}
	}
	return false
}

// Limit returns the effective page size.
func (r *SearchRequest) Limit() int {
	if r.limit == nil {
		return DefaultLimit
	}
	return *r.limit
}

// Page returns the requested 1-based page and whether one was supplied.
func (r *SearchRequest) Page() (int, bool) {
	if r.page == nil {
		return 0, false
	}
	return *r.page, true
}

// Offset returns (page-1)*limit, 0 when page is absent or <= 1, saturating on overflow.
func (r *SearchRequest) Offset() int {
	page, ok := r.Page()
	if !ok || page <= 1 {
		return 0
	}
	limit := r.Limit()
	if limit == 0 {
		return 0
	}
	n := page - 1
	if n > math.MaxInt/limit {
		return math.MaxInt
	}
	return n * limit
}

// canonicalForm fixes field order and the shape of absent values for key derivation.
type canonicalForm struct {
	Query  *string  `json:"q"`
	Venues []string `json:"venue"`
	Years  []int    `json:"year"`
	Limit  *int     `json:"limit"`
	Page   *int     `json:"page"`
	Facets []string `json:"facets"`
}

// Canonical returns a stable serialization of the request: equal requests yield equal bytes.
func (r *SearchRequest) Canonical() []byte {
	c := canonicalForm{
		Query:  r.query,
		Venues: nonNil(r.venues),
		Years:  r.years,
		Limit:  r.limit,
		Page:   r.page,
		Facets: make([]string, 0, len(r.facets)),
	}
	if c.Years == nil {
		c.Years = []int{}
	}
	for _, f := range r.facets {
		c.Facets = append(c.Facets, string(f))
	}
	// Marshalling strings, ints and pointers to them cannot fail.
	data, _ := json.Marshal(c)
	return data
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
