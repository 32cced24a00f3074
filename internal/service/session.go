package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/teamsizer/sizeup/internal/metrics"
	"github.com/teamsizer/sizeup/internal/repository"
	"github.com/teamsizer/sizeup/internal/task"
	"github.com/teamsizer/sizeup/internal/vote"
)

// ErrEmptySessionName rejects session creation without a name.
var ErrEmptySessionName = errors.New("session name is required")

// SessionCoordinator drives the collaborative workflow: sessions, votes and
// finalization. State changes are published to the event sink and finalized
// tasks are handed to the notifier.
type SessionCoordinator struct {
	store    repository.Store
	events   Events
	notifier Notifier
}

func NewSessionCoordinator(store repository.Store, events Events, notifier Notifier) *SessionCoordinator {
	if events == nil {
		events = noopEvents{}
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &SessionCoordinator{
		store:    store,
		events:   events,
		notifier: notifier,
	}
}

func (c *SessionCoordinator) CreateSession(ctx context.Context, name string) (*task.Session, error) {
	if name == "" {
		return nil, ErrEmptySessionName
	}

	s := task.NewSession(name)
	if err := c.store.CreateSession(ctx, s); err != nil {
		return nil, err
	}

	c.events.Publish("session_created", s)
	return s, nil
}

func (c *SessionCoordinator) ActiveSessions(ctx context.Context) ([]*task.Session, error) {
	return c.store.GetActiveSessions(ctx)
}

// CloseSession marks the session inactive. Its tasks are left untouched.
func (c *SessionCoordinator) CloseSession(ctx context.Context, id string) (*task.Session, error) {
	s, err := c.store.CloseSession(ctx, id)
	if err != nil {
		return nil, err
	}

	c.events.Publish("session_closed", s)
	return s, nil
}

func (c *SessionCoordinator) SessionTasks(ctx context.Context, sessionID string) ([]*task.Task, error) {
	return c.store.GetSessionTasks(ctx, sessionID)
}

// Vote applies a user's vote to a task and persists the recomputed tally.
// Voting on a finalized task is permitted; the frozen size and points are
// unaffected because the tally only rewrites the vote average.
func (c *SessionCoordinator) Vote(ctx context.Context, taskID string, v task.Vote) (*task.Task, error) {
	t, err := c.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	updated := vote.Apply(t, v)
	if err := c.store.UpdateTask(ctx, updated); err != nil {
		return nil, err
	}

	metrics.RecordVote(string(v.Size))
	c.events.Publish("vote", updated)

	return updated, nil
}

// Finalize freezes the task's size and points to the agreed value. Votes are
// kept for display history.
func (c *SessionCoordinator) Finalize(ctx context.Context, taskID string, finalSize task.Size) (*task.Task, error) {
	t, err := c.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	t.Size = finalSize
	t.Points = task.Points(finalSize)
	t.IsFinalized = true
	if err := c.store.UpdateTask(ctx, t); err != nil {
		return nil, err
	}

	metrics.RecordTaskFinalized(string(finalSize))
	c.events.Publish("finalize", t)
	c.notifier.TaskFinalized(t)

	return t, nil
}

// UpdateTaskSize is the administrative override from the recent-tasks view.
// It recomputes points but leaves votes and finalization alone.
func (c *SessionCoordinator) UpdateTaskSize(ctx context.Context, taskID string, size task.Size) (*task.Task, error) {
	t, err := c.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	t.Size = size
	t.Points = task.Points(size)
	if err := c.store.UpdateTask(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

// RecordFeedback stores the predicted-versus-actual note on a task.
func (c *SessionCoordinator) RecordFeedback(ctx context.Context, taskID string, predictedSize, actualSize task.Size) (*task.Task, error) {
	t, err := c.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	feedback := fmt.Sprintf("Predicted: %s, Actual: %s", predictedSize, actualSize)
	t.Feedback = &feedback
	if err := c.store.UpdateTask(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}
