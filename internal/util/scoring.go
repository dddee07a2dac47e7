package util

import "github.com/sahilm/fuzzy"

// ScoreCompletions returns the top n fuzzy matches for input, best first.
// An empty input keeps the candidates' own order. n <= 0 means no limit.
func ScoreCompletions(input string, candidates []string, n int) []string {
	var out []string
	if input == "" {
		out = append(out, candidates...)
	} else {
		for _, m := range fuzzy.Find(input, candidates) {
			out = append(out, m.Str)
		}
	}
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
