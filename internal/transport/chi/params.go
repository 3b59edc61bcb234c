package chi

import (
	"net/url"
	"strings"

	"github.com/kailas-cloud/papersearch/internal/domain/search/request"
)

// parseRawQuery splits a query string into ordered (key, value) pairs.
// Repeated keys are kept in arrival order; pairs that fail to unescape are skipped.
func parseRawQuery(raw string) []request.Param {
	params := make([]request.Param, 0)
	for raw != "" {
		var pair string
		pair, raw, _ = strings.Cut(raw, "&")
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			continue
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			continue
		}
		params = append(params, request.Param{Key: key, Value: value})
	}
	return params
}
