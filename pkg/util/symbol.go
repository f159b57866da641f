package util

import "strings"

// JoinComposite builds an upper-cased EXCHANGE:SYMBOL key.
func JoinComposite(exchange, symbol string) string {
	return strings.ToUpper(strings.TrimSpace(exchange) + ":" + strings.TrimSpace(symbol))
}

// SplitComposite splits an EXCHANGE:SYMBOL key. It requires exactly one colon
// with non-empty text on both sides.
func SplitComposite(key string) (exchange, symbol string, ok bool) {
	exchange, symbol, found := strings.Cut(key, ":")
	if !found || exchange == "" || symbol == "" || strings.Contains(symbol, ":") {
		return "", "", false
	}
	return exchange, symbol, true
}

// IsComposite reports whether key is a well-formed EXCHANGE:SYMBOL key.
func IsComposite(key string) bool {
	_, _, ok := SplitComposite(key)
	return ok
}

// UniqueUpper upper-cases keys and drops repeats, keeping first-seen order.
func UniqueUpper(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.ToUpper(strings.TrimSpace(k))
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
