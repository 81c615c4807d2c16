package resolve

import "github.com/hbollon/go-edlib"

// JaroWinklerSuggest builds a SuggestFunc backed by go-edlib's Jaro-Winkler
// similarity, matching the threshold the teacher's now-removed fuzzy
// matcher used for "close enough" suggestions.
func JaroWinklerSuggest(threshold float32) SuggestFunc {
	return func(name string, candidates []string) (string, bool) {
		best := ""
		bestScore := threshold
		for _, c := range candidates {
			if c == "" || c == name {
				continue
			}
			score, err := edlib.StringsSimilarity(name, c, edlib.JaroWinkler)
			if err != nil {
				continue
			}
			if score > bestScore {
				bestScore = score
				best = c
			}
		}
		return best, best != ""
	}
}
