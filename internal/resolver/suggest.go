package resolver

import (
	"sort"
	"strings"
)

// maxSuggestions caps the names offered with a failed lookup.
const maxSuggestions = 6

// suggestSimilar returns up to maxSuggestions candidates ordered by Levenshtein
// distance to input, closest first.
func suggestSimilar(input string, candidates []string) []string {
	inputLower := strings.ToLower(input)

	type scored struct {
		name string
		dist int
	}
	seen := make(map[string]bool, len(candidates))
	scoredCandidates := make([]scored, 0, len(candidates))
	for _, candidate := range candidates {
		if seen[candidate] {
			continue
		}
		seen[candidate] = true
		scoredCandidates = append(scoredCandidates, scored{
			name: candidate,
			dist: levenshtein(inputLower, strings.ToLower(candidate)),
		})
	}
	sort.SliceStable(scoredCandidates, func(i, j int) bool {
		if scoredCandidates[i].dist != scoredCandidates[j].dist {
			return scoredCandidates[i].dist < scoredCandidates[j].dist
		}
		return scoredCandidates[i].name < scoredCandidates[j].name
	})

	n := min(len(scoredCandidates), maxSuggestions)
	suggestions := make([]string, n)
	for i := range n {
		suggestions[i] = scoredCandidates[i].name
	}
	return suggestions
}

// levenshtein calculates the Levenshtein distance between two strings.
func levenshtein(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	// Two rows of the distance matrix are enough.
	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(s2)]
}
