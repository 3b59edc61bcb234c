package filter

import (
	"testing"

	"github.com/kailas-cloud/papersearch/internal/domain/search/facet"
	"github.com/kailas-cloud/papersearch/internal/domain/search/request"
)

func normalize(kv ...string) *request.SearchRequest {
	ps := make([]request.Param, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		ps = append(ps, request.Param{Key: kv[i], Value: kv[i+1]})
	}
	r := request.Normalize(ps)
	return &r
}

func TestClause_String(t *testing.T) {
	c, ok := NewStringClause("venue", []string{"SOSP", "OSDI"})
	if !ok {
		t.Fatal("expected clause")
	}
	if got, want := c.String(), `(venue = "SOSP" OR venue = "OSDI")`; got != want {
		t.Errorf("String() = %s, want %s", got, want)
	}

	n, ok := NewNumericClause("year", []int{2020})
	if !ok {
		t.Fatal("expected clause")
	}
	if got, want := n.String(), `(year = 2020)`; got != want {
		t.Errorf("String() = %s, want %s", got, want)
	}
	if n.Kind() != KindNumeric || n.Field() != "year" {
		t.Errorf("unexpected clause %+v", n)
	}
}

func TestClause_EmptyValues(t *testing.T) {
	if _, ok := NewStringClause("venue", nil); ok {
		t.Error("expected no clause for empty string values")
	}
	if _, ok := NewNumericClause("year", []int{}); ok {
		t.Error("expected no clause for empty numeric values")
	}
}

func TestClause_QuotesEscaped(t *testing.T) {
	c, _ := NewStringClause("venue", []string{`ACM "Queue"`, `a\b`})
	want := `(venue = "ACM \"Queue\"" OR venue = "a\\b")`
	if got := c.String(); got != want {
		t.Errorf("String() = %s, want %s", got, want)
	}
}

func TestCompile_Main(t *testing.T) {
	tests := []struct {
		name string
		req  *request.SearchRequest
		want string
	}{
		{"no filters", normalize("q", "raft"), ""},
		{"venue only", normalize("venue", "SOSP"), `(venue = "SOSP")`},
		{"year only", normalize("year", "2021", "year", "2020"), `(year = 2020 OR year = 2021)`},
		{
			"both",
			normalize("venue", "SOSP", "venue", "OSDI", "year", "2020"),
			`(venue = "OSDI" OR venue = "SOSP") AND (year = 2020)`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compile(tt.req).Main()
			if got.String() != tt.want {
				t.Errorf("Main() = %q, want %q", got.String(), tt.want)
			}
			if got.IsEmpty() != (tt.want == "") {
				t.Errorf("IsEmpty() = %v", got.IsEmpty())
			}
		})
	}
}

func TestCompile_Isolated(t *testing.T) {
	c := Compile(normalize("venue", "SOSP", "year", "2020", "facets", "venue,year"))

	if got, want := c.Isolated(facet.Venue).String(), `(year = 2020)`; got != want {
		t.Errorf("Isolated(venue) = %q, want %q", got, want)
	}
	if got, want := c.Isolated(facet.Year).String(), `(venue = "SOSP")`; got != want {
		t.Errorf("Isolated(year) = %q, want %q", got, want)
	}
	// Isolation must not mutate the main filter.
	if got, want := c.Main().String(), `(venue = "SOSP") AND (year = 2020)`; got != want {
		t.Errorf("Main() = %q, want %q", got, want)
	}
}

func TestCompile_IsolatedWithoutOtherAxes(t *testing.T) {
	c := Compile(normalize("venue", "SOSP", "facets", "venue"))
	if iso := c.Isolated(facet.Venue); !iso.IsEmpty() {
		t.Errorf("Isolated(venue) = %q, want empty", iso.String())
	}
}

func TestNewStringClause_CopiesInput(t *testing.T) {
	values := []string{"SOSP"}
	c, _ := NewStringClause("venue", values)
	values[0] = "OSDI"
	if c.Terms()[0] != "SOSP" {
		t.Error("clause must not alias caller slice")
	}
}
