package facet

import (
	"reflect"
	"testing"
)

func TestField_IsValid(t *testing.T) {
	tests := []struct {
		f    Field
		want bool
	}{
		{Venue, true},
		{Year, true},
		{"title", false},
		{"", false},
		{"Venue", false},
	}
	for _, tt := range tests {
		if got := tt.f.IsValid(); got != tt.want {
			t.Errorf("Field(%q).IsValid() = %v, want %v", tt.f, got, tt.want)
		}
	}
}

func TestParseList(t *testing.T) {
	tests := []struct {
		in   string
		want []Field
	}{
		{"venue,year", []Field{Venue, Year}},
		{"year, venue", []Field{Venue, Year}},
		{" venue ", []Field{Venue}},
		{"venue,venue", []Field{Venue}},
		{"venue,title,,", []Field{Venue}},
		{"", []Field{}},
	}
	for _, tt := range tests {
		got := ParseList(tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseList(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDistribution_Counts(t *testing.T) {
	d := Distribution{"venue": {"SOSP": 3}}

	m, ok := d.Counts(Venue)
	if !ok || m["SOSP"] != 3 {
		t.Errorf("Counts(venue) = %v, %v", m, ok)
	}
	if _, ok := d.Counts(Year); ok {
		t.Error("Counts(year) should be absent")
	}

	var nilDist Distribution
	if _, ok := nilDist.Counts(Venue); ok {
		t.Error("nil distribution should report absent")
	}
}
