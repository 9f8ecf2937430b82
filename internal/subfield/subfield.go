// Package subfield decodes delimited MARC/IRBIS field text into subfield values.
package subfield

import (
	"strings"
	"unicode/utf8"
)

const (
	// Delimiter is the canonical subfield separator (MARC unit separator).
	Delimiter = "\x1f"

	// AltDelimiter is the caret some IRBIS exports write instead of Delimiter.
	AltDelimiter = "^"
)

// Map holds subfield values keyed by their single-letter code.
type Map map[string]string

// Decode splits a raw field into subfields. Both delimiter encodings are
// accepted. Each fragment's first character is its code and the trimmed
// remainder its value; a repeated code keeps the last value. Codes are
// upper-cased, so "^aИванов" and "^AИванов" decode the same.
func Decode(raw string) Map {
	text := strings.ReplaceAll(raw, AltDelimiter, Delimiter)

	m := make(Map)
	for _, chunk := range strings.Split(text, Delimiter) {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		_, size := utf8.DecodeRuneInString(chunk)
		m[strings.ToUpper(chunk[:size])] = strings.TrimSpace(chunk[size:])
	}
	return m
}

// Get returns the value for code, or "" when the subfield is absent.
func (m Map) Get(code string) string {
	return m[code]
}
