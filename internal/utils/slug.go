package utils

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxSlugLength bounds every generated slug.
const MaxSlugLength = 50

const slugSuffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// GenerateSlug turns a display name into a URL-safe identifier:
// lower-cased, diacritics stripped, runs of anything outside [a-z0-9]
// collapsed to a single dash, outer dashes trimmed, cut to MaxSlugLength.
//
// The result may be empty (e.g. a name made only of symbols); callers
// validate the name before generating.
func GenerateSlug(name string) string {
	lowered := strings.ToLower(name)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	stripped, _, err := transform.String(t, lowered)
	if err != nil {
		stripped = lowered
	}

	slug := nonSlugChars.ReplaceAllString(stripped, "-")
	slug = strings.Trim(slug, "-")

	if len(slug) > MaxSlugLength {
		slug = slug[:MaxSlugLength]
	}
	return slug
}

// RandomSlugSuffix returns n random base-36 characters.
func RandomSlugSuffix(n int) string {
	var b strings.Builder
	b.Grow(n)
	max := big.NewInt(int64(len(slugSuffixAlphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			b.WriteByte(slugSuffixAlphabet[i%len(slugSuffixAlphabet)])
			continue
		}
		b.WriteByte(slugSuffixAlphabet[idx.Int64()])
	}
	return b.String()
}

// WithSlugSuffix appends "-" and a 5 character random suffix to base.
func WithSlugSuffix(base string) string {
	return base + "-" + RandomSlugSuffix(5)
}
