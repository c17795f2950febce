// Package textutils turns transaction text fields into the single normalized
// string consumed by the classifiers.
package textutils

import (
	"strings"
	"unicode"

	"fjacquet/spendcat/internal/models"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ExtractFeatures builds the classification input for a record: merchant
// first, then description, normalized. A record without any usable text
// yields "".
func ExtractFeatures(rec models.TransactionRecord) string {
	return Normalize(rec.Merchant + " " + rec.Description)
}

// Normalize lower-cases text, folds accents, drops currency symbols and
// apostrophes, turns other punctuation into spaces and collapses whitespace.
func Normalize(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		text,
	)
	if err != nil {
		folded = text
	}

	mapped := strings.Map(func(r rune) rune {
		switch {
		case isApostrophe(r), unicode.Is(unicode.Sc, r):
			return -1
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return unicode.ToLower(r)
		default:
			return ' '
		}
	}, folded)

	return strings.Join(strings.Fields(mapped), " ")
}

func isApostrophe(r rune) bool {
	switch r {
	case '\'', '’', 'ʼ', '`':
		return true
	}
	return false
}
