package candidates

import (
	"regexp"
	"strings"
)

var ocrDigitReplacer = strings.NewReplacer(
	"i", "1",
	"I", "1",
	"l", "1",
	"o", "0",
	"O", "0",
)

// nonWordRE matches anything that is not a letter, digit, underscore or whitespace
var nonWordRE = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

// NormalizeDigits replaces characters OCR commonly confuses with digits.
// i, I and l become 1; o and O become 0. Nothing else is altered.
func NormalizeDigits(text string) string {
	return ocrDigitReplacer.Replace(text)
}

// StripPunctuation removes every rune that is not a word character or whitespace.
func StripPunctuation(text string) string {
	return nonWordRE.ReplaceAllString(text, "")
}

// cleanNumber prepares a neighbour token for digit validation.
func cleanNumber(text string) string {
	return NormalizeDigits(StripPunctuation(text))
}

// isASCIIDigits reports whether s is non-empty and only holds 0-9.
func isASCIIDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
