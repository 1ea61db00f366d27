// Package textproc holds the text utilities shared by extraction, search and
// corpus statistics: normalization, word splitting, Medium number formats
// and keyword extraction.
package textproc

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	readingTimeRe = regexp.MustCompile(`(\d+)\s*min`)

	articleURLPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^https?://medium\.com/`),
		regexp.MustCompile(`^https?://[\w-]+\.medium\.com/`),
		regexp.MustCompile(`^https?://towardsdatascience\.com/`),
		regexp.MustCompile(`^https?://betterprogramming\.pub/`),
	}
)

// MediumDomain is the domain whose links count as internal.
const MediumDomain = "medium.com"

// CleanText collapses whitespace runs into single spaces and drops non-ASCII
// characters.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	ascii := strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, text)
	return strings.Join(strings.Fields(ascii), " ")
}

// ParseClaps converts Medium's clap display format to an integer.
// "1.2K" is 1200, "1M" is 1000000; anything unparsable or negative is 0.
func ParseClaps(s string) int {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0
	}

	multiplier := 1.0
	switch {
	case strings.Contains(s, "K"):
		multiplier = 1_000
		s = strings.ReplaceAll(s, "K", "")
	case strings.Contains(s, "M"):
		multiplier = 1_000_000
		s = strings.ReplaceAll(s, "M", "")
	}
	s = strings.ReplaceAll(s, ",", "")

	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) || n < 0 {
		return 0
	}
	return int(n * multiplier)
}

// ParseReadingTime normalizes "5 min read" to "5 min". Empty input is "N/A";
// text without a minute count is returned trimmed.
func ParseReadingTime(s string) string {
	if s == "" {
		return "N/A"
	}
	if m := readingTimeRe.FindStringSubmatch(strings.ToLower(s)); m != nil {
		return m[1] + " min"
	}
	return strings.TrimSpace(s)
}

// IsExternalLink reports whether url points outside baseDomain.
func IsExternalLink(url, baseDomain string) bool {
	if url == "" {
		return false
	}
	return !strings.Contains(strings.ToLower(url), baseDomain)
}

// ValidateURL reports whether url looks like an article on Medium or one of
// its publication domains.
func ValidateURL(url string) bool {
	if url == "" {
		return false
	}
	for _, re := range articleURLPatterns {
		if re.MatchString(url) {
			return true
		}
	}
	return false
}
