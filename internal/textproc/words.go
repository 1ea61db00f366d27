package textproc

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Words lowercases text and splits it into runs of letters, digits and
// underscores that are at least minRunes long.
func Words(text string, minRunes int) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
	})
	words := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= minRunes {
			words = append(words, f)
		}
	}
	return words
}

// WordCount is a word and the number of times it occurred.
type WordCount struct {
	Word  string `json:"word" yaml:"word"`
	Count int    `json:"count" yaml:"count"`
}

// TopWords returns the n most frequent alphabetic words of three or more
// letters across texts, skipping stop words. Ties are ordered alphabetically.
func TopWords(texts []string, n int) []WordCount {
	stop := StopWords()
	for _, w := range topWordsExtra {
		stop[w] = true
	}

	counts := make(map[string]int)
	for _, text := range texts {
		for _, w := range Words(text, 3) {
			if stop[w] || !isAlpha(w) {
				continue
			}
			counts[w]++
		}
	}

	top := make([]WordCount, 0, len(counts))
	for w, c := range counts {
		top = append(top, WordCount{Word: w, Count: c})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Word < top[j].Word
	})
	if n >= 0 && len(top) > n {
		top = top[:n]
	}
	return top
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
