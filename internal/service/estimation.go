package service

import (
	"context"

	"github.com/teamsizer/sizeup/internal/estimate"
	"github.com/teamsizer/sizeup/internal/importer"
	"github.com/teamsizer/sizeup/internal/metrics"
	"github.com/teamsizer/sizeup/internal/repository"
	"github.com/teamsizer/sizeup/internal/task"
)

// Prediction is the answer to a predict request: the estimate plus similar
// historical tasks, echoing the input text.
type Prediction struct {
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Size         task.Size          `json:"size"`
	Points       int                `json:"points"`
	Confidence   int                `json:"confidence"`
	SimilarTasks []task.SimilarTask `json:"similarTasks"`
}

// CreateTaskInput carries a client-accepted prediction to be persisted.
type CreateTaskInput struct {
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Size         task.Size          `json:"size"`
	Points       int                `json:"points"`
	Confidence   int                `json:"confidence"`
	SimilarTasks []task.SimilarTask `json:"similarTasks"`
}

// EstimationService answers prediction requests and materializes created and
// imported tasks.
type EstimationService struct {
	store     repository.Store
	estimator *estimate.Estimator
}

func NewEstimationService(store repository.Store, estimator *estimate.Estimator) *EstimationService {
	return &EstimationService{
		store:     store,
		estimator: estimator,
	}
}

// Predict runs the size heuristic and ranks similar tasks from the whole
// history, not just the current session.
func (s *EstimationService) Predict(ctx context.Context, title, description string) (*Prediction, error) {
	prediction := s.estimator.Estimate(title, description)

	candidates, err := s.store.GetAllTasks(ctx)
	if err != nil {
		return nil, err
	}
	similar := estimate.SimilarTasks(title, description, candidates)

	metrics.RecordPrediction(string(prediction.Size))

	return &Prediction{
		Title:        title,
		Description:  description,
		Size:         prediction.Size,
		Points:       prediction.Points,
		Confidence:   prediction.Confidence,
		SimilarTasks: similar,
	}, nil
}

// CreateTask persists a standalone task from an accepted prediction.
func (s *EstimationService) CreateTask(ctx context.Context, in CreateTaskInput) (*task.Task, error) {
	similar := in.SimilarTasks
	if similar == nil {
		similar = []task.SimilarTask{}
	}

	t := task.NewTask(in.Title, in.Description, in.Size, in.Points, in.Confidence, similar, nil)
	if err := s.store.CreateTask(ctx, t); err != nil {
		return nil, err
	}

	metrics.RecordTaskCreated()
	return t, nil
}

// ImportTasks predicts each imported row and persists the batch under the
// session. Output order matches input order; the bulk insert is atomic.
func (s *EstimationService) ImportTasks(ctx context.Context, sessionID string, imports []importer.TaskImport) ([]*task.Task, error) {
	candidates, err := s.store.GetAllTasks(ctx)
	if err != nil {
		return nil, err
	}

	tasks := make([]*task.Task, 0, len(imports))
	for _, row := range imports {
		prediction := s.estimator.Estimate(row.Title, row.Description)
		similar := estimate.SimilarTasks(row.Title, row.Description, candidates)
		sid := sessionID
		tasks = append(tasks, task.NewTask(
			row.Title,
			row.Description,
			prediction.Size,
			prediction.Points,
			prediction.Confidence,
			similar,
			&sid,
		))
	}

	if err := s.store.CreateTasks(ctx, tasks); err != nil {
		return nil, err
	}

	metrics.RecordTasksImported(len(tasks))
	return tasks, nil
}
