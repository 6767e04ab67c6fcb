// Package slug produces filesystem- and header-safe tokens from free-form
// names, mainly for download filenames.
package slug

import "strings"

const maxLen = 64

// Safe replaces every run of characters outside [A-Za-z0-9_-] with a single
// underscore, trims leading/trailing underscores and caps the result at 64
// characters. Case is preserved so "Swift Dzire" becomes "Swift_Dzire".
func Safe(s string) string {
	out := make([]rune, 0, len(s))
	prevUnderscore := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			out = append(out, r)
			prevUnderscore = false
		default:
			if !prevUnderscore {
				out = append(out, '_')
				prevUnderscore = true
			}
		}
		if len(out) >= maxLen {
			break
		}
	}
	return strings.Trim(string(out), "_")
}
