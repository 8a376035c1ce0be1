package textutil

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// CollapseWhitespace trims a string and squashes runs of inner
// whitespace (including NBSP) into a single space.
func CollapseWhitespace(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.TrimSpace(s)
	return whitespaceRegex.ReplaceAllString(s, " ")
}

// Grade extracts the leading grade token from a noisy condition
// string, e.g. "VF-XF" -> "VF", "XF/AU" -> "XF", "UNC-" -> "UNC".
func Grade(s string) string {
	s = strings.TrimSpace(s)
	out := strings.Builder{}
	for _, c := range s {
		if c == '-' || c == '+' || c == '/' {
			break
		}
		out.WriteRune(c)
	}
	return out.String()
}

var moneyRegex = regexp.MustCompile(`[0-9][0-9 \x{00a0}.,]*`)

// Money pulls the first decimal amount out of a price string like
// "1 250,50 руб." or "12,500". Group separators (spaces, NBSP,
// three-digit comma/dot groups) are dropped; a shorter trailing
// comma or dot group is the decimal part. Returns 0 when no number
// is present.
func Money(s string) float64 {
	match := moneyRegex.FindString(s)
	if match == "" {
		return 0
	}

	cleaned := strings.Builder{}
	for _, c := range match {
		if unicode.IsDigit(c) || c == '.' || c == ',' {
			cleaned.WriteRune(c)
		}
	}
	normalized := normalizeSeparators(cleaned.String())

	value, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0
	}
	return value
}

func normalizeSeparators(s string) string {
	lastComma := strings.LastIndexByte(s, ',')
	lastDot := strings.LastIndexByte(s, '.')

	last := lastComma
	if lastDot > last {
		last = lastDot
	}

	decimal := -1
	// a single separator followed by exactly 3 digits is a thousands
	// group, anything shorter marks the decimal part
	if last >= 0 && len(s)-last-1 != 3 {
		decimal = last
	}

	out := strings.Builder{}
	for i, c := range s {
		if c >= '0' && c <= '9' {
			out.WriteRune(c)
			continue
		}
		if i == decimal {
			out.WriteByte('.')
		}
	}
	return out.String()
}
