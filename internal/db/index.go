package db

import (
	"errors"
	"slices"
	"strconv"

	"github.com/kailas-cloud/papersearch/internal/domain"
)

// StorageType defines the document storage backend for FT indexes (HASH or JSON).
type StorageType string

const (
	// StorageHash stores documents as Redis hashes.
	StorageHash StorageType = "HASH"
	// StorageJSON stores documents as JSON.
	StorageJSON StorageType = "JSON"
)

// TextFieldSuffix names the full-text twin of an attribute that is also indexed as a TAG.
const TextFieldSuffix = "_text"

// DefaultTagSeparator keeps commas inside venue names from splitting tags.
const DefaultTagSeparator = "|"

// IndexFieldType enumerates supported FT index field types.
type IndexFieldType int

const (
	// IndexFieldNumeric is a numeric field.
	IndexFieldNumeric IndexFieldType = iota
	// IndexFieldTag is a tag field.
	IndexFieldTag
	// IndexFieldText is a text field.
	IndexFieldText
)

// IndexField describes a single field in an FT index schema.
type IndexField struct {
	Name  string // attribute name or JSON path
	Alias string // AS alias in FT.CREATE SCHEMA
	Type  IndexFieldType

	// TAG options
	TagSeparator     string
	TagCaseSensitive bool

	Sortable bool
}

// IndexDefinition is a complete FT index definition used by FT.CREATE.
type IndexDefinition struct {
	Name        string
	StorageType StorageType
	Prefixes    []string
	Fields      []IndexField
}

// Validate checks that the index definition is well-formed.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return errors.New("index name is required")
	}
	if !IsValidIdentifier(idx.Name) {
		return errors.New("index name contains invalid characters")
	}
	if len(idx.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	seen := make(map[string]bool)
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if f.Name == "" {
			return errors.New("field name is required at index " + strconv.Itoa(i))
		}
		key := f.Name
		if f.Alias != "" {
			key = f.Alias
		}
		if seen[key] {
			return errors.New("duplicate field name: " + key)
		}
		seen[key] = true
	}

	return nil
}

// DefinitionFromSettings derives a JSON-document FT index from the declarative settings.
// Searchable attributes become TEXT, filterable ones TAG or NUMERIC, and an attribute that is
// both gets a TEXT twin aliased with TextFieldSuffix so filters keep the plain name.
func DefinitionFromSettings(name, prefix string, s domain.IndexSettings) (*IndexDefinition, error) {
	b := NewIndex(name).OnJSON()
	if prefix != "" {
		b.Prefix(prefix)
	}

	for _, attr := range s.Searchable {
		alias := attr
		if slices.Contains(s.Filterable, attr) && !slices.Contains(s.Numeric, attr) {
			alias = attr + TextFieldSuffix
		}
		b.Text(jsonPath(attr, s), alias)
	}

	for _, attr := range s.Filterable {
		if slices.Contains(s.Numeric, attr) {
			b.Numeric(jsonPath(attr, s), attr)
		} else {
			b.TagWithOpts(jsonPath(attr, s), attr, DefaultTagSeparator, true)
		}
		if slices.Contains(s.Sortable, attr) {
			b.Sortable()
		}
	}

	for _, attr := range s.Sortable {
		if !slices.Contains(s.Filterable, attr) && slices.Contains(s.Numeric, attr) {
			b.Numeric(jsonPath(attr, s), attr).Sortable()
		}
	}

	return b.Build()
}

func jsonPath(attr string, s domain.IndexSettings) string {
	if slices.Contains(s.Multivalued, attr) {
		return "$." + attr + "[*]"
	}
	return "$." + attr
}

// IsValidIdentifier returns true if s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '_' || r == ':' || r == '-'
		if !isAlpha && !isDigit && !isSpecial {
			return false
		}
	}
	return true
}
