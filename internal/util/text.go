package util

import (
	"regexp"
	"strings"
)

var whitespace = regexp.MustCompile(`\s+`)

// NormalizeWhitespace trims and collapses whitespace to single spaces.
func NormalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// ContainsAnyFold returns true if text contains any of the needles (case-insensitive).
func ContainsAnyFold(text string, needles []string) bool {
	lt := strings.ToLower(text)
	for _, n := range needles {
		if strings.Contains(lt, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

// CountMatchesFold counts how many needles appear in text (case-insensitive).
func CountMatchesFold(text string, needles []string) int {
	lt := strings.ToLower(text)
	n := 0
	for _, needle := range needles {
		if strings.Contains(lt, strings.ToLower(needle)) {
			n++
		}
	}
	return n
}

// RunePrefix returns the first n runes of s.
func RunePrefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// CleanUsername strips a leading @ and surrounding whitespace.
func CleanUsername(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), "@")
}
