package domain

// Paper is a bibliographic record as stored in the search index.
// The JSON shape is shared with the ingestion job that populates the index.
type Paper struct {
	ID      int      `json:"id"`
	Title   string   `json:"title"`
	Year    int      `json:"year"`
	Venue   string   `json:"venue"`
	Authors []string `json:"authors"`
	EELink  *string  `json:"ee_link"`
}

// Index attribute names.
const (
	AttrID      = "id"
	AttrTitle   = "title"
	AttrYear    = "year"
	AttrVenue   = "venue"
	AttrAuthors = "authors"
	AttrEELink  = "ee_link"
)

// IndexSettings declares how the paper index must be configured for search to work.
type IndexSettings struct {
	Filterable []string
	Sortable   []string
	Searchable []string
	// Numeric lists attributes holding numbers; Multivalued lists array attributes.
	// Schema-typed backends need both, Meilisearch infers them.
	Numeric     []string
	Multivalued []string
}

// PaperIndexSettings is the settings contract the filter compiler and facet queries rely on.
func PaperIndexSettings() IndexSettings {
	return IndexSettings{
		Filterable:  []string{AttrVenue, AttrYear},
		Sortable:    []string{AttrYear},
		Searchable:  []string{AttrTitle, AttrAuthors, AttrVenue},
		Numeric:     []string{AttrYear},
		Multivalued: []string{AttrAuthors},
	}
}
