// Package label turns raw input phrases into candidate domain labels.
package label

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/net/idna"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize converts a raw phrase into a lowercase ASCII label:
// " svatý mikuláš\n" becomes "svatymikulas".
func Normalize(raw string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, raw)
	if err != nil {
		stripped = raw
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		switch {
		case unicode.IsSpace(r), r == '.':
			continue
		case r > unicode.MaxASCII:
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// InBounds reports whether the label length lies within [min, max]
func InBounds(label string, min, max int) bool {
	return len(label) >= min && len(label) <= max
}

// Validate checks that label is usable as a host label under IDNA
// registration rules.
func Validate(label string) error {
	if label == "" {
		return fmt.Errorf("empty label")
	}
	if _, err := idna.Registration.ToASCII(label); err != nil {
		return fmt.Errorf("invalid label %q: %w", label, err)
	}
	return nil
}
