package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/teamsizer/sizeup/internal/task"
)

func strPtr(s string) *string {
	return &s
}

// Seed inserts demo users and a few finalized example tasks so a fresh
// install has data behind the recent-tasks and stats views. It is a no-op
// when users or tasks already exist.
func Seed(ctx context.Context, store Store) error {
	users, err := store.GetUsers(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		// Plaintext passwords, matching the login check. Known weakness kept
		// for compatibility with existing clients.
		demoUsers := []*task.User{
			{ID: uuid.New().String(), Username: "jsmith", Password: "password123", DisplayName: strPtr("John Smith")},
			{ID: uuid.New().String(), Username: "agarcia", Password: "password123", DisplayName: strPtr("Ana Garcia")},
			{ID: uuid.New().String(), Username: "mwilson", Password: "password123", DisplayName: strPtr("Mike Wilson")},
		}
		for _, u := range demoUsers {
			if err := store.CreateUser(ctx, u); err != nil {
				return err
			}
		}
	}

	existing, err := store.GetAllTasks(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	now := time.Now()
	demoTasks := []struct {
		title       string
		description string
		size        task.Size
		confidence  int
		age         time.Duration
		votes       []task.Vote
	}{
		{
			title:       "Implement OAuth integration",
			description: "Add support for Google, GitHub and Microsoft accounts",
			size:        task.SizeL,
			confidence:  85,
			age:         2 * 24 * time.Hour,
			votes: []task.Vote{
				{UserID: "1", UserName: "John Smith", Size: task.SizeL},
				{UserID: "2", UserName: "Ana Garcia", Size: task.SizeL},
				{UserID: "3", UserName: "Mike Wilson", Size: task.SizeXL},
			},
		},
		{
			title:       "Create responsive dashboard",
			description: "Build UI components for the analytics dashboard with responsive design",
			size:        task.SizeL,
			confidence:  80,
			age:         5 * 24 * time.Hour,
			votes: []task.Vote{
				{UserID: "1", UserName: "John Smith", Size: task.SizeL},
				{UserID: "2", UserName: "Ana Garcia", Size: task.SizeXL},
				{UserID: "3", UserName: "Mike Wilson", Size: task.SizeL},
			},
		},
		{
			title:       "Fix pagination bug",
			description: "Resolve issue with pagination in the user list view",
			size:        task.SizeS,
			confidence:  92,
			age:         7 * 24 * time.Hour,
			votes: []task.Vote{
				{UserID: "1", UserName: "John Smith", Size: task.SizeS},
				{UserID: "2", UserName: "Ana Garcia", Size: task.SizeS},
				{UserID: "3", UserName: "Mike Wilson", Size: task.SizeM},
			},
		},
		{
			title:       "Set up CI/CD pipeline",
			description: "Configure GitHub Actions for automated testing and deployment",
			size:        task.SizeM,
			confidence:  75,
			age:         14 * 24 * time.Hour,
			votes: []task.Vote{
				{UserID: "1", UserName: "John Smith", Size: task.SizeM},
				{UserID: "2", UserName: "Ana Garcia", Size: task.SizeS},
				{UserID: "3", UserName: "Mike Wilson", Size: task.SizeM},
			},
		},
	}

	for _, d := range demoTasks {
		t := &task.Task{
			ID:            uuid.New().String(),
			Title:         d.title,
			Description:   d.description,
			Size:          d.size,
			Points:        task.Points(d.size),
			CreatedAt:     now.Add(-d.age),
			Confidence:    d.confidence,
			SimilarTasks:  []task.SimilarTask{},
			IsFinalized:   true,
			Votes:         d.votes,
			AverageSize:   d.size,
			AveragePoints: task.Points(d.size),
		}
		if err := store.CreateTask(ctx, t); err != nil {
			return err
		}
	}

	return nil
}
