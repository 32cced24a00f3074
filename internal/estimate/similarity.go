package estimate

import (
	"sort"
	"strings"

	"github.com/teamsizer/sizeup/internal/task"
)

const (
	// Candidates must share more than one word with the query to count.
	minOverlap = 1
	maxSimilar = 3
)

// SimilarTasks ranks candidates by word overlap with the query text and
// returns at most three references. Ties keep candidate order, so results
// are only as deterministic as the incoming slice ordering.
func SimilarTasks(title, description string, candidates []*task.Task) []task.SimilarTask {
	queryWords := wordSet(title + " " + description)

	type scored struct {
		t       *task.Task
		overlap int
	}

	var matches []scored
	for _, c := range candidates {
		candidateWords := wordSet(c.Title + " " + c.Description)
		overlap := 0
		for w := range queryWords {
			if _, ok := candidateWords[w]; ok {
				overlap++
			}
		}
		if overlap > minOverlap {
			matches = append(matches, scored{t: c, overlap: overlap})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].overlap > matches[j].overlap
	})

	if len(matches) > maxSimilar {
		matches = matches[:maxSimilar]
	}

	similar := make([]task.SimilarTask, 0, len(matches))
	for _, m := range matches {
		similar = append(similar, task.SimilarTask{
			ID:     m.t.ID,
			Title:  m.t.Title,
			Size:   m.t.Size,
			Points: m.t.Points,
		})
	}

	return similar
}

func wordSet(text string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
