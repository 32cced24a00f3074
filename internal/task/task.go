// Package task defines the estimation domain model shared by the service and
// persistence layers: T-shirt sizes, their point values, tasks, votes,
// estimation sessions and users.
package task

import (
	"time"

	"github.com/google/uuid"
)

type Size string

const (
	SizeXS  Size = "XS"
	SizeS   Size = "S"
	SizeM   Size = "M"
	SizeL   Size = "L"
	SizeXL  Size = "XL"
	SizeXXL Size = "XXL"
)

// Sizes lists every size in ascending order. Tally and stats code iterates
// this slice, so the declaration order is load-bearing: vote ties resolve to
// the earliest size in it.
var Sizes = []Size{SizeXS, SizeS, SizeM, SizeL, SizeXL, SizeXXL}

var points = map[Size]int{
	SizeXS:  1,
	SizeS:   2,
	SizeM:   3,
	SizeL:   5,
	SizeXL:  8,
	SizeXXL: 13,
}

// Points returns the fixed point value for a size, or 0 for an unknown size.
func Points(s Size) int {
	return points[s]
}

// ValidSize reports whether s is one of the six T-shirt sizes.
func ValidSize(s Size) bool {
	_, ok := points[s]
	return ok
}

type Vote struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Size     Size   `json:"size"`
}

// SimilarTask is a lightweight reference to a historical task, attached to a
// prediction and frozen at creation time.
type SimilarTask struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Size   Size   `json:"size"`
	Points int    `json:"points"`
}

type Task struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Size          Size          `json:"size"`
	Points        int           `json:"points"`
	CreatedAt     time.Time     `json:"createdAt"`
	Confidence    int           `json:"confidence"`
	SimilarTasks  []SimilarTask `json:"similarTasks"`
	Feedback      *string       `json:"feedback"`
	SessionID     *string       `json:"sessionId"`
	IsFinalized   bool          `json:"isFinalized"`
	Votes         []Vote        `json:"votes"`
	AverageSize   Size          `json:"averageSize"`
	AveragePoints int           `json:"averagePoints"`
}

type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	IsActive  bool      `json:"isActive"`
}

type User struct {
	ID          string  `json:"id"`
	Username    string  `json:"username"`
	Password    string  `json:"password"`
	DisplayName *string `json:"displayName"`
}

// NewTask builds an unfinalized task from a prediction. The vote average
// starts at the predicted size until votes arrive.
func NewTask(title, description string, size Size, pts, confidence int, similar []SimilarTask, sessionID *string) *Task {
	return &Task{
		ID:            uuid.New().String(),
		Title:         title,
		Description:   description,
		Size:          size,
		Points:        pts,
		CreatedAt:     time.Now(),
		Confidence:    confidence,
		SimilarTasks:  similar,
		SessionID:     sessionID,
		IsFinalized:   false,
		Votes:         []Vote{},
		AverageSize:   size,
		AveragePoints: pts,
	}
}

func NewSession(name string) *Session {
	return &Session{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now(),
		IsActive:  true,
	}
}
