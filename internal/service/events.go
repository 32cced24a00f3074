// Package service orchestrates the estimation heuristics and the vote tally
// against the repository, and exposes the operations the HTTP layer calls.
package service

import "github.com/teamsizer/sizeup/internal/task"

// Events receives fire-and-forget change notifications. The WebSocket hub
// implements it; delivery is best-effort with no ordering guarantee.
type Events interface {
	Publish(event string, data any)
}

// Notifier is told about finalized tasks so interested parties can be
// emailed. Failures are logged, never propagated.
type Notifier interface {
	TaskFinalized(t *task.Task)
}

type noopEvents struct{}

func (noopEvents) Publish(string, any) {}

type noopNotifier struct{}

func (noopNotifier) TaskFinalized(*task.Task) {}
