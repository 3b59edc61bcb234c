package filter

import (
	"strconv"
	"strings"

	"github.com/kailas-cloud/papersearch/internal/domain/search/facet"
	"github.com/kailas-cloud/papersearch/internal/domain/search/request"
)

// Kind tells drivers how to render a clause's terms.
type Kind int

const (
	// KindString terms are quoted string equality.
	KindString Kind = iota
	// KindNumeric terms are integer literals.
	KindNumeric
)

// Clause is a disjunction of equality terms on a single field.
type Clause struct {
	field string
	kind  Kind
	terms []string
}

// NewStringClause builds an OR clause over string values. ok is false when values is empty.
func NewStringClause(field string, values []string) (Clause, bool) {
	if len(values) == 0 {
		return Clause{}, false
	}
	terms := make([]string, len(values))
	copy(terms, values)
	return Clause{field: field, kind: KindString, terms: terms}, true
}

// NewNumericClause builds an OR clause over integer values. ok is false when values is empty.
func NewNumericClause(field string, values []int) (Clause, bool) {
	if len(values) == 0 {
		return Clause{}, false
	}
	terms := make([]string, len(values))
	for i, v := range values {
		terms[i] = strconv.Itoa(v)
	}
	return Clause{field: field, kind: KindNumeric, terms: terms}, true
}

// Field returns the field name.
func (c Clause) Field() string { return c.field }

// Kind returns the term kind.
func (c Clause) Kind() Kind { return c.kind }

// Terms returns the raw term values in request order.
func (c Clause) Terms() []string { return c.terms }

// String renders the clause as `(field = "a" OR field = "b")`.
func (c Clause) String() string {
	parts := make([]string, len(c.terms))
	for i, t := range c.terms {
		if c.kind == KindString {
			t = quote(t)
		}
		parts[i] = c.field + " = " + t
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func quote(s string) string {
	return `"` + quoteEscaper.Replace(s) + `"`
}

// Expression is a conjunction of clauses. The zero value matches everything.
type Expression struct {
	clauses []Clause
}

// And combines clauses into an expression.
func And(clauses ...Clause) Expression {
	return Expression{clauses: clauses}
}

// Clauses returns the ANDed clauses.
func (e Expression) Clauses() []Clause { return e.clauses }

// IsEmpty reports whether the expression has no clauses.
func (e Expression) IsEmpty() bool { return len(e.clauses) == 0 }

// Without returns a copy of the expression minus the clause on field.
func (e Expression) Without(field string) Expression {
	out := make([]Clause, 0, len(e.clauses))
	for _, c := range e.clauses {
		if c.field != field {
			out = append(out, c)
		}
	}
	return Expression{clauses: out}
}

// String renders the expression in the index filter syntax; "" for an empty expression.
func (e Expression) String() string {
	parts := make([]string, len(e.clauses))
	for i, c := range e.clauses {
		parts[i] = c.String()
	}
	return strings.Join(parts, " AND ")
}

// Compiled holds the filters derived from one request.
type Compiled struct {
	main Expression
}

// Compile builds one clause per filterable field that has values, in facet.All() order.
func Compile(req *request.SearchRequest) Compiled {
	clauses := make([]Clause, 0, 2)
	for _, f := range facet.All() {
		var (
			c  Clause
			ok bool
		)
		switch f {
		case facet.Venue:
			c, ok = NewStringClause(string(f), req.Venues())
		case facet.Year:
			c, ok = NewNumericClause(string(f), req.Years())
		}
		if ok {
			clauses = append(clauses, c)
		}
	}
	return Compiled{main: And(clauses...)}
}

// Main returns the AND of every present clause.
func (c Compiled) Main() Expression { return c.main }

// Isolated returns the filter for a facet sub-query: every clause except the facet's own.
func (c Compiled) Isolated(f facet.Field) Expression {
	return c.main.Without(string(f))
}
