package estimate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamsizer/sizeup/internal/task"
)

func candidate(id, title, description string, size task.Size) *task.Task {
	return &task.Task{
		ID:          id,
		Title:       title,
		Description: description,
		Size:        size,
		Points:      task.Points(size),
	}
}

func TestSimilarTasks_RanksByOverlap(t *testing.T) {
	candidates := []*task.Task{
		candidate("1", "update login page", "rework the login page styles", task.SizeS),
		candidate("2", "login page redesign", "redesign the user login page flow and styles", task.SizeM),
		candidate("3", "database migration", "migrate the orders table", task.SizeL),
	}

	similar := SimilarTasks("login page styles", "improve the user login page", candidates)

	require.Len(t, similar, 2)
	assert.Equal(t, "2", similar[0].ID)
	assert.Equal(t, "1", similar[1].ID)
	assert.Equal(t, task.SizeM, similar[0].Size)
	assert.Equal(t, 3, similar[0].Points)
}

func TestSimilarTasks_MinimumOverlap(t *testing.T) {
	candidates := []*task.Task{
		// Shares only "the": overlap 1, below the threshold.
		candidate("1", "the parser", "rewrite everything", task.SizeL),
	}

	similar := SimilarTasks("fix the button", "center the button", candidates)

	assert.Empty(t, similar)
}

func TestSimilarTasks_CapsAtThree(t *testing.T) {
	var candidates []*task.Task
	for i := range 5 {
		candidates = append(candidates, candidate(
			string(rune('a'+i)),
			"update login page",
			"rework login page styles",
			task.SizeS,
		))
	}

	similar := SimilarTasks("login page styles", "update the login page", candidates)

	assert.Len(t, similar, 3)
}

func TestSimilarTasks_SortedNonIncreasing(t *testing.T) {
	candidates := []*task.Task{
		candidate("low", "login page", "unrelated words here entirely", task.SizeS),
		candidate("high", "login page styles", "improve the user login page", task.SizeM),
	}

	similar := SimilarTasks("login page styles", "improve the user login page", candidates)

	require.Len(t, similar, 2)
	assert.Equal(t, "high", similar[0].ID)
	assert.Equal(t, "low", similar[1].ID)
}

func TestSimilarTasks_NoCandidates(t *testing.T) {
	similar := SimilarTasks("anything", "at all", nil)
	assert.Empty(t, similar)
}

func TestSimilarTasks_DoesNotMutateCandidates(t *testing.T) {
	c := candidate("1", "login page styles", "improve the user login page", task.SizeM)
	candidates := []*task.Task{c}

	_ = SimilarTasks("login page styles", "improve the user login page", candidates)

	assert.Equal(t, "login page styles", c.Title)
	assert.Equal(t, task.SizeM, c.Size)
}
