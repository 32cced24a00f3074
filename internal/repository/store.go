// Package repository provides persistence for tasks, sessions and users
// behind a single Store interface, with PostgreSQL and in-memory
// implementations.
package repository

import (
	"context"
	"errors"

	"github.com/teamsizer/sizeup/internal/task"
)

// ErrNotFound is returned when a task, session or user does not exist.
var ErrNotFound = errors.New("not found")

// Stats summarizes finalized tasks for the dashboard.
type Stats struct {
	TotalTasks         int            `json:"totalTasks"`
	AveragePoints      float64        `json:"averagePoints"`
	SizeDistribution   map[string]int `json:"sizeDistribution"`
	PredictionAccuracy int            `json:"predictionAccuracy"`
}

type Store interface {
	GetUserByUsername(ctx context.Context, username string) (*task.User, error)
	GetUsers(ctx context.Context) ([]*task.User, error)
	CreateUser(ctx context.Context, u *task.User) error

	CreateSession(ctx context.Context, s *task.Session) error
	GetActiveSessions(ctx context.Context) ([]*task.Session, error)
	CloseSession(ctx context.Context, id string) (*task.Session, error)

	CreateTask(ctx context.Context, t *task.Task) error
	// CreateTasks persists a batch atomically; either every task is stored
	// or none are.
	CreateTasks(ctx context.Context, tasks []*task.Task) error
	GetTask(ctx context.Context, id string) (*task.Task, error)
	GetAllTasks(ctx context.Context) ([]*task.Task, error)
	GetRecentTasks(ctx context.Context, limit int) ([]*task.Task, error)
	GetSessionTasks(ctx context.Context, sessionID string) ([]*task.Task, error)
	UpdateTask(ctx context.Context, t *task.Task) error
	GetTaskStats(ctx context.Context) (*Stats, error)

	Close() error
}
