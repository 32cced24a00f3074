package service

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamsizer/sizeup/internal/estimate"
	"github.com/teamsizer/sizeup/internal/importer"
	"github.com/teamsizer/sizeup/internal/repository"
	"github.com/teamsizer/sizeup/internal/task"
)

func newEstimation(t *testing.T) (*EstimationService, repository.Store) {
	t.Helper()

	store := repository.NewMemoryStore()
	estimator := estimate.NewEstimator(rand.New(rand.NewSource(1)))

	return NewEstimationService(store, estimator), store
}

func TestPredict(t *testing.T) {
	s, store := newEstimation(t)

	existing := task.NewTask("Build payment gateway", "Integrate the payment gateway provider", task.SizeL, 5, 80, nil, nil)
	require.NoError(t, store.CreateTask(t.Context(), existing))

	prediction, err := s.Predict(t.Context(), "Extend payment gateway", "Add refunds to the payment gateway provider")
	require.NoError(t, err)

	assert.Equal(t, "Extend payment gateway", prediction.Title)
	assert.True(t, task.ValidSize(prediction.Size))
	assert.Equal(t, task.Points(prediction.Size), prediction.Points)

	require.Len(t, prediction.SimilarTasks, 1)
	assert.Equal(t, existing.ID, prediction.SimilarTasks[0].ID)
}

func TestPredict_DoesNotPersist(t *testing.T) {
	s, store := newEstimation(t)

	_, err := s.Predict(t.Context(), "Fix typo", "Correct the heading")
	require.NoError(t, err)

	all, err := store.GetAllTasks(t.Context())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateTask_NormalizesNilSimilarTasks(t *testing.T) {
	s, _ := newEstimation(t)

	created, err := s.CreateTask(t.Context(), CreateTaskInput{
		Title:       "Build reporting",
		Description: "Create the reporting dashboard",
		Size:        task.SizeM,
		Points:      3,
		Confidence:  82,
	})
	require.NoError(t, err)

	require.NotNil(t, created.SimilarTasks)
	assert.Empty(t, created.SimilarTasks)
	assert.Equal(t, task.SizeM, created.AverageSize)
}

func TestImportTasks(t *testing.T) {
	s, store := newEstimation(t)

	imports := []importer.TaskImport{
		{Title: "Fix login", Description: "Repair the login flow"},
		{Title: "Add search", Description: "Search across tasks"},
		{Title: "Update docs", Description: "Refresh the API docs"},
	}

	tasks, err := s.ImportTasks(t.Context(), "session-1", imports)
	require.NoError(t, err)

	require.Len(t, tasks, 3)
	for i, tsk := range tasks {
		assert.Equal(t, imports[i].Title, tsk.Title)
		require.NotNil(t, tsk.SessionID)
		assert.Equal(t, "session-1", *tsk.SessionID)
		assert.True(t, task.ValidSize(tsk.Size))
		assert.False(t, tsk.IsFinalized)
	}

	stored, err := store.GetSessionTasks(t.Context(), "session-1")
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestImportTasks_Empty(t *testing.T) {
	s, store := newEstimation(t)

	tasks, err := s.ImportTasks(t.Context(), "session-1", nil)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	all, err := store.GetAllTasks(t.Context())
	require.NoError(t, err)
	assert.Empty(t, all)
}
