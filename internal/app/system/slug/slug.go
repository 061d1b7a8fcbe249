// Package slug derives and normalizes URL slugs for mini-site pages.
//
// Slugs are compared case-insensitively within an entity, so Normalize is
// applied to manually entered slugs as well as derived ones before any
// uniqueness check.
package slug

import "strings"

// Make derives a slug from a page title: lowercase, runs of
// non-alphanumerics collapsed to a single "-", leading/trailing "-"
// trimmed. "Our Menu & Specials" becomes "our-menu-specials".
func Make(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	lastDash := true // suppress a leading dash
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}

// Normalize canonicalizes a manually entered slug using the same rules as
// Make, so "About-Us" and "about-us" are the same slug.
func Normalize(s string) string {
	return Make(s)
}
