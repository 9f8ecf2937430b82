// Package grnti normalizes hierarchical GRNTI codes to the three-segment
// "XX.YY.ZZ" form used by the reference table.
package grnti

import (
	"strings"

	"github.com/lehigh-university-libraries/fieldfix/internal/linker"
)

// Normalize pads a code with ".00" segments until it has two dots.
// Codes that already have two or more dots are only trimmed. Segments are
// not validated.
func Normalize(code string) string {
	code = strings.TrimSpace(code)
	switch strings.Count(code, ".") {
	case 0:
		return code + ".00.00"
	case 1:
		return code + ".00"
	default:
		return code
	}
}

// NormalizePairs returns a copy of pairs with every code normalized, ready
// for linking against the GRNTI reference map.
func NormalizePairs(pairs []linker.Pair) []linker.Pair {
	out := make([]linker.Pair, len(pairs))
	for i, p := range pairs {
		out[i] = linker.Pair{RecordID: p.RecordID, Code: Normalize(p.Code)}
	}
	return out
}
