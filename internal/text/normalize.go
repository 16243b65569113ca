// Package text implements the Hindi corpus normalization rules applied
// before tokenizer training.
package text

import (
	"regexp"
	"strings"
)

// Devanagari danda (U+0964), the Hindi full stop.
const danda = "।"

var (
	// Characters kept: the Devanagari block, whitespace, and the permitted
	// punctuation set (danda, comma, period, exclamation, question, hyphen).
	disallowedPattern = regexp.MustCompile(`[^\x{0900}-\x{097F}\s।,.!?\-]`)

	// Digits in both ASCII and Devanagari (U+0966–U+096F) forms.
	digitPattern = regexp.MustCompile(`[0-9०-९]`)

	whitespaceRunPattern = regexp.MustCompile(`\s+`)
)

// Normalize cleans one line of raw Hindi text:
//  1. Strip every character outside the Devanagari block, whitespace, and
//     the permitted punctuation set.
//  2. Remove ASCII and Devanagari digits.
//  3. Replace the danda with an ASCII period.
//  4. Collapse whitespace runs to a single space and trim the edges.
//
// The result contains only permitted characters, has no doubled interior
// spaces, and no leading or trailing whitespace. Normalize is pure and
// idempotent; a line with nothing to keep normalizes to the empty string.
func Normalize(s string) string {
	s = disallowedPattern.ReplaceAllString(s, "")
	s = digitPattern.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, danda, ".")
	s = whitespaceRunPattern.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}

// NormalizeLines applies Normalize to every line, preserving order and
// count. Lines that normalize to the empty string are kept so the output
// stays aligned with its input.
func NormalizeLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = Normalize(line)
	}

	return out
}
