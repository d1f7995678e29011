package table

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

const bom = "\ufeff"

// NormalizeHeader trims header names, strips a leading byte-order mark and
// puts every name in NFC.
func NormalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, bom)
		}
		out[i] = NormalizeName(h)
	}
	return out
}

// NormalizeName applies the header normalization to a single column name.
func NormalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
