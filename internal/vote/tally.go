// Package vote implements the tally that keeps a task's vote list and its
// modal "average" size consistent.
package vote

import "github.com/teamsizer/sizeup/internal/task"

// Apply records a vote on t, replacing any earlier vote by the same user,
// and recomputes AverageSize and AveragePoints from the full tally.
//
// The modal size is found by scanning sizes in declaration order and keeping
// the first size to reach a new maximum, so ties resolve to the smaller size.
// Finalized size and points are never touched here.
func Apply(t *task.Task, v task.Vote) *task.Task {
	votes := make([]task.Vote, 0, len(t.Votes)+1)
	for _, existing := range t.Votes {
		if existing.UserID != v.UserID {
			votes = append(votes, existing)
		}
	}
	votes = append(votes, v)

	averageSize := t.Size
	averagePoints := t.Points

	if len(votes) > 0 {
		counts := make(map[task.Size]int, len(task.Sizes))
		for _, s := range task.Sizes {
			counts[s] = 0
		}
		for _, vt := range votes {
			counts[vt.Size]++
		}

		maxCount := 0
		for _, s := range task.Sizes {
			if counts[s] > maxCount {
				maxCount = counts[s]
				averageSize = s
			}
		}
		averagePoints = task.Points(averageSize)
	}

	updated := *t
	updated.Votes = votes
	updated.AverageSize = averageSize
	updated.AveragePoints = averagePoints

	return &updated
}
