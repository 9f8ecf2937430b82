package author

import (
	"strings"
	"unicode"
)

type initialsState int

const (
	stateIdle initialsState = iota
	// stateLetter means a letter was emitted and still owes its period.
	stateLetter
)

// FormatInitials rebuilds a whitespace-free initials fragment as dotted
// single letters ("АС", "А.С", "а.с." all become "А.С."). Existing periods
// are dropped and re-emitted. ok is false when the fragment holds anything
// other than letters and periods; the caller then keeps the fragment as is.
func FormatInitials(fragment string) (initials string, ok bool) {
	var b strings.Builder
	state := stateIdle

	for _, r := range fragment {
		switch {
		case r == '.':
			if state == stateLetter {
				b.WriteByte('.')
				state = stateIdle
			}
		case isInitial(r):
			if state == stateLetter {
				b.WriteByte('.')
			}
			b.WriteRune(unicode.ToUpper(r))
			state = stateLetter
		default:
			return "", false
		}
	}

	if state == stateLetter {
		b.WriteByte('.')
	}
	return b.String(), true
}

// isInitial reports whether r can stand alone as a name initial.
func isInitial(r rune) bool {
	return unicode.IsLetter(r) && (unicode.Is(unicode.Cyrillic, r) || unicode.Is(unicode.Latin, r))
}
