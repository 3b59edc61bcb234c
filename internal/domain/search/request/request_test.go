package request

import (
	"bytes"
	"math"
	"reflect"
	"strconv"
	"testing"

	"github.com/kailas-cloud/papersearch/internal/domain/search/facet"
)

func params(kv ...string) []Param {
	out := make([]Param, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, Param{Key: kv[i], Value: kv[i+1]})
	}
	return out
}

func TestNormalize_Defaults(t *testing.T) {
	r := Normalize(nil)

	if _, ok := r.Query(); ok {
		t.Error("Query() should be absent")
	}
	if r.Limit() != DefaultLimit {
		t.Errorf("Limit() = %d, want %d", r.Limit(), DefaultLimit)
	}
	if r.Offset() != 0 {
		t.Errorf("Offset() = %d, want 0", r.Offset())
	}
	if len(r.Venues()) != 0 || len(r.Years()) != 0 || len(r.Facets()) != 0 {
		t.Errorf("expected empty collections, got %v %v %v", r.Venues(), r.Years(), r.Facets())
	}
}

func TestNormalize_OrderIndependent(t *testing.T) {
	a := Normalize(params("venue", "SOSP", "venue", "OSDI", "year", "2021", "year", "2019"))
	b := Normalize(params("year", "2019", "venue", "OSDI", "year", "2021", "venue", "SOSP"))

	if !reflect.DeepEqual(a, b) {
		t.Fatalf("requests differ:\n%+v\n%+v", a, b)
	}
	if !bytes.Equal(a.Canonical(), b.Canonical()) {
		t.Errorf("canonical forms differ:\n%s\n%s", a.Canonical(), b.Canonical())
	}
	if want := []string{"OSDI", "SOSP"}; !reflect.DeepEqual(a.Venues(), want) {
		t.Errorf("Venues() = %v, want %v", a.Venues(), want)
	}
	if want := []int{2019, 2021}; !reflect.DeepEqual(a.Years(), want) {
		t.Errorf("Years() = %v, want %v", a.Years(), want)
	}
}

// Duplicates are sorted, not removed, so they change the canonical form.
func TestNormalize_DuplicatesPreserved(t *testing.T) {
	single := Normalize(params("venue", "SOSP"))
	dup := Normalize(params("venue", "SOSP", "venue", "SOSP"))

	if want := []string{"SOSP", "SOSP"}; !reflect.DeepEqual(dup.Venues(), want) {
		t.Errorf("Venues() = %v, want %v", dup.Venues(), want)
	}
	if bytes.Equal(single.Canonical(), dup.Canonical()) {
		t.Error("duplicate venue should produce a distinct canonical form")
	}
}

func TestNormalize_Lenient(t *testing.T) {
	r := Normalize(params(
		"year", "abcd",
		"year", "2020",
		"limit", "-5",
		"page", "x",
		"unknown", "value",
		"q", "raft",
	))

	if want := []int{2020}; !reflect.DeepEqual(r.Years(), want) {
		t.Errorf("Years() = %v, want %v", r.Years(), want)
	}
	if r.Limit() != DefaultLimit {
		t.Errorf("Limit() = %d, want default", r.Limit())
	}
	if _, ok := r.Page(); ok {
		t.Error("Page() should be absent after malformed value")
	}
	if q, ok := r.Query(); !ok || q != "raft" {
		t.Errorf("Query() = %q, %v", q, ok)
	}
}

func TestNormalize_UnsignedLeadingPlus(t *testing.T) {
	tests := []struct {
		value  string
		want   int
		wantOK bool
	}{
		{"+5", 5, true},
		{"5", 5, true},
		{"+0", 0, true},
		{"++5", 0, false},
		{"+", 0, false},
		{"+-5", 0, false},
		{" 5", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			r := Normalize(params("limit", tt.value, "page", tt.value))
			page, ok := r.Page()
			if ok != tt.wantOK {
				t.Fatalf("Page() present = %v, want %v", ok, tt.wantOK)
			}
			if ok && (page != tt.want || r.Limit() != tt.want) {
				t.Errorf("page/limit = %d/%d, want %d", page, r.Limit(), tt.want)
			}
			if !ok && r.Limit() != DefaultLimit {
				t.Errorf("Limit() = %d, want default", r.Limit())
			}
		})
	}

	plus := Normalize(params("limit", "+5"))
	bare := Normalize(params("limit", "5"))
	if !bytes.Equal(plus.Canonical(), bare.Canonical()) {
		t.Errorf("canonical forms differ: %s vs %s", plus.Canonical(), bare.Canonical())
	}
}

func TestNormalize_YearOutOfRangeDropped(t *testing.T) {
	r := Normalize(params("year", strconv.FormatInt(math.MaxInt32+1, 10)))
	if len(r.Years()) != 0 {
		t.Errorf("Years() = %v, want empty", r.Years())
	}
}

func TestNormalize_SingleValuedLastWins(t *testing.T) {
	r := Normalize(params(
		"q", "first", "q", "second",
		"limit", "10", "limit", "5",
		"facets", "venue", "facets", "year",
	))

	if q := r.Text(); q != "second" {
		t.Errorf("Text() = %q, want second", q)
	}
	if r.Limit() != 5 {
		t.Errorf("Limit() = %d, want 5", r.Limit())
	}
	if want := []facet.Field{facet.Year}; !reflect.DeepEqual(r.Facets(), want) {
		t.Errorf("Facets() = %v, want %v", r.Facets(), want)
	}
}

// A malformed later value does not erase an earlier valid one.
func TestNormalize_MalformedScalarKeepsPrevious(t *testing.T) {
	r := Normalize(params("limit", "10", "limit", "ten"))
	if r.Limit() != 10 {
		t.Errorf("Limit() = %d, want 10", r.Limit())
	}
}

func TestNormalize_Facets(t *testing.T) {
	r := Normalize(params("facets", " year , venue,title"))

	if want := []facet.Field{facet.Venue, facet.Year}; !reflect.DeepEqual(r.Facets(), want) {
		t.Errorf("Facets() = %v, want %v", r.Facets(), want)
	}
	if !r.WantsFacet(facet.Venue) || !r.WantsFacet(facet.Year) {
		t.Error("expected both facets to be wanted")
	}
}

func TestOffset(t *testing.T) {
	tests := []struct {
		name string
		in   []Param
		want int
	}{
		{"no page", params("limit", "10"), 0},
		{"page 0", params("page", "0", "limit", "10"), 0},
		{"page 1", params("page", "1", "limit", "10"), 0},
		{"page 3 limit 10", params("page", "3", "limit", "10"), 20},
		{"page 2 default limit", params("page", "2"), DefaultLimit},
		{"limit 0", params("page", "4", "limit", "0"), 0},
		{"overflow saturates", params("page", strconv.Itoa(math.MaxInt/2), "limit", "100"), math.MaxInt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Normalize(tt.in)
			if got := r.Offset(); got != tt.want {
				t.Errorf("Offset() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCanonical_Shape(t *testing.T) {
	r := Normalize(params("venue", "SOSP", "year", "2020", "facets", "venue"))
	want := `{"q":null,"venue":["SOSP"],"year":[2020],"limit":null,"page":null,"facets":["venue"]}`
	if got := string(r.Canonical()); got != want {
		t.Errorf("Canonical() = %s\nwant %s", got, want)
	}

	var zero SearchRequest
	wantZero := `{"q":null,"venue":[],"year":[],"limit":null,"page":null,"facets":[]}`
	if got := string(zero.Canonical()); got != wantZero {
		t.Errorf("zero Canonical() = %s\nwant %s", got, wantZero)
	}
}
