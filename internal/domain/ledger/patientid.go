package ledger

import (
	"strings"
	"unicode"
)

// NormalizePatientID derives a patient's identity key from the display name:
// lower-cased, with every run of whitespace replaced by one underscore.
// Surrounding whitespace is not trimmed, so " Ann" and "Ann" differ.
func NormalizePatientID(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	inSpace := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('_')
				inSpace = true
			}
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
