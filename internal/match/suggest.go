package match

import (
	"sort"
)

// Candidate is a known name scored against a wanted one.
type Candidate struct {
	Name  string
	Score float64 // NameScore against the wanted name, 0-1

	// Normalized spelling, for explanations.
	Normalized string
}

// CandidateList is a list of candidates, best first once ranked.
type CandidateList []Candidate

// Rank scores every known name against want and sorts them best first.
func Rank(want string, known []string) CandidateList {
	candidates := make(CandidateList, 0, len(known))
	for _, name := range known {
		candidates = append(candidates, Candidate{
			Name:       name,
			Score:      NameScore(want, name),
			Normalized: NormalizeIdent(name),
		})
	}

	sort.Sort(candidates)

	return candidates
}

// DefaultSuggestThreshold is the minimum score for a name to be suggested.
const DefaultSuggestThreshold = 0.6

// Suggest returns up to limit known names that plausibly were meant instead
// of want, best first. Exact matches are never suggested.
func Suggest(want string, known []string, limit int) []string {
	var out []string

	for _, c := range Rank(want, known).AboveThreshold(DefaultSuggestThreshold) {
		if c.Name == want {
			continue
		}

		out = append(out, c.Name)
		if len(out) == limit {
			break
		}
	}

	return out
}

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less implements sort.Interface.
// Sorts by score descending, then by name for determinism.
func (c CandidateList) Less(i, j int) bool {
	if c[i].Score != c[j].Score {
		return c[i].Score > c[j].Score
	}

	return c[i].Name < c[j].Name
}

// AboveThreshold returns candidates scoring at least threshold.
func (c CandidateList) AboveThreshold(threshold float64) CandidateList {
	var result CandidateList
	for _, cand := range c {
		if cand.Score >= threshold {
			result = append(result, cand)
		}
	}

	return result
}
