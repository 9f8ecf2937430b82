// Package author normalizes personal author names to the "Surname I.O." form
// used by the catalog.
package author

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/lehigh-university-libraries/fieldfix/internal/subfield"
)

const (
	// SurnameCode is the #700/#701 subfield holding the surname.
	SurnameCode = "A"
	// InitialsCode is the #700/#701 subfield holding the initials.
	InitialsCode = "B"
)

// ParseField extracts "Surname I.O." from a #700/#701 field such as
// "\x1fAИванов\x1fBИ.О." or "^AИванов^BИ.О". Missing subfields give
// whatever part was found.
func ParseField(raw string) string {
	sf := subfield.Decode(raw)
	surname := strings.TrimSpace(sf.Get(SurnameCode))
	initials := strings.TrimSpace(sf.Get(InitialsCode))

	if initials != "" && !strings.HasSuffix(initials, ".") {
		parts := strings.Split(initials, ".")
		for i, p := range parts {
			parts[i] = strings.Trim(p, ".")
		}
		initials = strings.Join(parts, ".") + "."
	}

	return strings.TrimSpace(surname + " " + initials)
}

// Normalize canonicalizes a combined "Surname initials" string:
//
//	"  Евтеев  Ю.И. " -> "Евтеев Ю.И."
//	"Чернышев А .А"   -> "Чернышев А.А."
//	"Пукина А. С."    -> "Пукина А.С."
//
// The surname keeps its case. Initials that contain anything besides
// letters and periods are returned unchanged (minus whitespace).
func Normalize(full string) string {
	full = strings.Join(strings.Fields(norm.NFC.String(full)), " ")
	if full == "" {
		return ""
	}

	surname, rest, found := strings.Cut(full, " ")
	if !found {
		return surname
	}

	rest = strings.ReplaceAll(rest, " ", "")
	initials, ok := FormatInitials(rest)
	if !ok {
		return surname + " " + rest
	}
	if initials == "" {
		return surname
	}
	return surname + " " + initials
}

// Split breaks a ";"-separated author list into normalized names, dropping
// empty entries and exact duplicates while keeping first-seen order.
func Split(raw string) []string {
	if raw == "" {
		return nil
	}

	var out []string
	seen := make(map[string]struct{})
	for _, token := range strings.Split(raw, ";") {
		name := Normalize(token)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
