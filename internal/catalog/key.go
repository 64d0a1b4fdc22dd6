package catalog

import (
	"net/url"
	"sort"
	"strings"
)

// ComputeKey derives the cache key for an endpoint and its normalized
// parameters. Keys are deterministic: parameter order and duplicate
// values are canonicalized, so two logically-equivalent requests always
// map to the same entry.
func ComputeKey(endpoint string, params url.Values) string {
	if len(params) == 0 {
		return endpoint
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(endpoint)
	b.WriteByte(':')

	first := true
	for _, k := range keys {
		vals := append([]string(nil), params[k]...)
		sort.Strings(vals)
		for _, v := range vals {
			if v == "" {
				continue
			}
			if !first {
				b.WriteByte('&')
			}
			first = false
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}
