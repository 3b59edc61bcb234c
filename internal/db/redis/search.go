package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/papersearch/internal/db"
	"github.com/kailas-cloud/papersearch/internal/domain/search/filter"
)

// docField is the attribute FT.SEARCH returns for a whole JSON document.
const docField = "$"

// Search runs FT.SEARCH for hits and one FT.AGGREGATE per requested facet, pipelined in one round trip.
func (s *Store) Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Limit < 0 || q.Offset < 0 {
		return nil, fmt.Errorf("limit and offset must be non-negative")
	}

	queryStr := buildQuery(q.Text, q.Filters)

	cmds := make(rueidis.Commands, 0, 1+len(q.Facets))
	cmds = append(cmds, s.b().Arbitrary("FT.SEARCH").Args(
		q.IndexName, queryStr,
		"LIMIT", strconv.Itoa(q.Offset), strconv.Itoa(q.Limit),
		"RETURN", "1", docField,
		"DIALECT", "2",
	).Build())
	for _, f := range q.Facets {
		cmds = append(cmds, s.b().Arbitrary("FT.AGGREGATE").Args(
			q.IndexName, queryStr,
			"GROUPBY", "1", "@"+f,
			"REDUCE", "COUNT", "0", "AS", "count",
			"SORTBY", "2", "@count", "DESC",
			"MAX", strconv.Itoa(s.maxFacetValues),
			"DIALECT", "2",
		).Build())
	}

	start := time.Now()
	results := s.client.DoMulti(ctx, cmds...)

	raw, err := results[0].ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	res, err := parseSearchResult(raw)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	if len(q.Facets) > 0 {
		res.Facets = make(map[string]map[string]int64, len(q.Facets))
		for i, f := range q.Facets {
			rows, err := results[i+1].ToArray()
			if err != nil {
				return nil, &db.Error{Op: db.OpAggregate, Err: err}
			}
			res.Facets[f] = parseAggregateCounts(rows, f)
		}
	}

	res.Query = q.Text
	res.Limit = q.Limit
	res.Offset = q.Offset
	res.ProcessingTimeMs = time.Since(start).Milliseconds()
	return res, nil
}

// --- Result parsing ---

func parseSearchResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	res := &db.SearchResult{Hits: []json.RawMessage{}}
	if len(raw) == 0 {
		return res, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	res.Total = total

	// 2-stride: [total, key1, fields1, key2, fields2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}
		doc, ok := parseFieldPairs(fields)[docField]
		if !ok || !json.Valid([]byte(doc)) {
			continue
		}
		res.Hits = append(res.Hits, json.RawMessage(doc))
	}

	return res, nil
}

// parseAggregateCounts reads GROUPBY rows of the form [n, [field, value, "count", c], ...].
func parseAggregateCounts(raw []rueidis.RedisMessage, field string) map[string]int64 {
	counts := make(map[string]int64)
	for i := 1; i < len(raw); i++ {
		row, err := raw[i].ToArray()
		if err != nil {
			continue
		}
		pairs := parseFieldPairs(row)
		value, ok := pairs[field]
		if !ok || value == "" {
			continue
		}
		n, err := strconv.ParseInt(pairs["count"], 10, 64)
		if err != nil {
			continue
		}
		counts[value] = n
	}
	return counts
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Query building ---

// buildQuery joins the escaped text and the filter clauses; "*" matches everything.
func buildQuery(text string, expr filter.Expression) string {
	var parts []string
	if t := strings.TrimSpace(text); t != "" {
		parts = append(parts, "("+escapeQuery(t)+")")
	}
	if f := buildFilter(expr); f != "" {
		parts = append(parts, f)
	}
	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, " ")
}

// buildFilter translates filter.Expression into FT query syntax. Clauses are ANDed by juxtaposition.
func buildFilter(expr filter.Expression) string {
	if expr.IsEmpty() {
		return ""
	}
	parts := make([]string, 0, len(expr.Clauses()))
	for _, c := range expr.Clauses() {
		parts = append(parts, buildClause(c))
	}
	return strings.Join(parts, " ")
}

func buildClause(c filter.Clause) string {
	if c.Kind() == filter.KindNumeric {
		return buildNumericFilter(c.Field(), c.Terms())
	}
	return buildTagFilter(c.Field(), c.Terms())
}

func buildTagFilter(key string, values []string) string {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = tagEscaper.Replace(v)
	}
	return fmt.Sprintf("@%s:{%s}", key, strings.Join(escaped, " | "))
}

func buildNumericFilter(key string, values []string) string {
	if len(values) == 1 {
		return fmt.Sprintf("@%s:[%s %s]", key, values[0], values[0])
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("@%s:[%s %s]", key, v, v)
	}
	return "(" + strings.Join(parts, " | ") + ")"
}

// --- Query helpers ---

var tagEscaper = strings.NewReplacer(
	`\`, `\\`,
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"|", "\\|",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"/", "\\/",
	" ", "\\ ",
)

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
	`:`, `\:`,
)
