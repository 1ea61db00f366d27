package textproc

import (
	"regexp"
	"sort"
	"strings"
)

// DefaultKeywordCount is how many phrases Keywords returns by default.
const DefaultKeywordCount = 10

var sentenceSplitRe = regexp.MustCompile(`[.!?,;:\t\n\r"()\[\]\x{2013}\x{2014}]+`)

// Keywords extracts up to n key phrases from text using RAKE: candidate
// phrases are word runs between stop words and punctuation, each word is
// scored by degree/frequency and a phrase scores the sum of its words.
// Phrases are returned comma-separated, highest score first.
func Keywords(text string, n int) string {
	if strings.TrimSpace(text) == "" || n <= 0 {
		return ""
	}
	stop := StopWords()

	var phrases [][]string
	for _, sentence := range sentenceSplitRe.Split(strings.ToLower(text), -1) {
		var current []string
		for _, w := range Words(sentence, 1) {
			if stop[w] {
				if len(current) > 0 {
					phrases = append(phrases, current)
					current = nil
				}
				continue
			}
			current = append(current, w)
		}
		if len(current) > 0 {
			phrases = append(phrases, current)
		}
	}
	if len(phrases) == 0 {
		return ""
	}

	freq := make(map[string]int)
	degree := make(map[string]int)
	for _, p := range phrases {
		for _, w := range p {
			freq[w]++
			degree[w] += len(p)
		}
	}

	type scored struct {
		phrase string
		score  float64
	}
	seen := make(map[string]bool)
	var ranked []scored
	for _, p := range phrases {
		phrase := strings.Join(p, " ")
		if seen[phrase] {
			continue
		}
		seen[phrase] = true
		var score float64
		for _, w := range p {
			score += float64(degree[w]) / float64(freq[w])
		}
		ranked = append(ranked, scored{phrase: phrase, score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].phrase < ranked[j].phrase
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}

	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.phrase
	}
	return strings.Join(out, ", ")
}
