// Package geo provides the embedded location dataset (§4.4): a fixed
// table of major world cities with alias/diacritic-insensitive fuzzy
// lookup, used by the Resolver before it ever reaches the network.
package geo

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ToASCII converts a string to ASCII by:
// 1. Normalizing unicode (NFD) to decompose accented characters
// 2. Removing non-ASCII characters (diacritics, non-Latin scripts)
// 3. Cleaning up whitespace
func ToASCII(s string) string {
	// Normalize to NFD (decomposed form) - separates base chars from diacritics
	t := norm.NFD.String(s)

	// Build ASCII-only result
	var result strings.Builder
	result.Grow(len(t))

	for _, r := range t {
		if r <= 127 {
			// Keep ASCII characters
			result.WriteRune(r)
		}
		// Skip non-ASCII (diacritics, non-Latin scripts, etc.)
	}

	// Clean up multiple spaces and trim
	ascii := result.String()
	ascii = strings.Join(strings.Fields(ascii), " ")

	return ascii
}

// NormalizeLocalityName folds name to a diacritic-insensitive, case-
// insensitive comparison key: lowercase, then ASCII-fold (so "Reykjavík"
// and "reykjavik" match), with whitespace collapsed. Letters with no
// decomposition, such as "ø", are dropped rather than folded, so
// "Tromsø" becomes "troms". The 37-entry embedded
// dataset carries its transliterated forms as explicit Aliases rather
// than as name variants to be derived, so this is deliberately just a
// fold — no suffix rewriting is needed for the names it matches against.
func NormalizeLocalityName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ToLower(ToASCII(s))
	s = strings.Join(strings.Fields(s), " ")
	return s
}
