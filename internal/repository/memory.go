package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/teamsizer/sizeup/internal/task"
)

// MemoryStore keeps everything in process memory. It backs handler tests and
// the zero-dependency dev mode of the server. The mutex only guards the maps;
// concurrent read-modify-write of a single task still races, matching the
// persistence model of the real store.
type MemoryStore struct {
	mu       sync.Mutex
	users    map[string]*task.User
	tasks    map[string]*task.Task
	sessions map[string]*task.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]*task.User),
		tasks:    make(map[string]*task.Task),
		sessions: make(map[string]*task.Session),
	}
}

func (m *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*task.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}

	return nil, ErrNotFound
}

func (m *MemoryStore) GetUsers(ctx context.Context) ([]*task.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	users := make([]*task.User, 0, len(m.users))
	for _, u := range m.users {
		copied := *u
		users = append(users, &copied)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].Username < users[j].Username
	})

	return users, nil
}

func (m *MemoryStore) CreateUser(ctx context.Context, u *task.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *u
	m.users[u.ID] = &copied
	return nil
}

func (m *MemoryStore) CreateSession(ctx context.Context, s *task.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *s
	m.sessions[s.ID] = &copied
	return nil
}

func (m *MemoryStore) GetActiveSessions(ctx context.Context) ([]*task.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sessions := make([]*task.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		if !s.IsActive {
			continue
		}
		copied := *s
		sessions = append(sessions, &copied)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})

	return sessions, nil
}

func (m *MemoryStore) CloseSession(ctx context.Context, id string) (*task.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	s.IsActive = false

	copied := *s
	return &copied, nil
}

func (m *MemoryStore) CreateTask(ctx context.Context, t *task.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *t
	m.tasks[t.ID] = &copied
	return nil
}

func (m *MemoryStore) CreateTasks(ctx context.Context, tasks []*task.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range tasks {
		copied := *t
		m.tasks[t.ID] = &copied
	}
	return nil
}

func (m *MemoryStore) GetTask(ctx context.Context, id string) (*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}

	copied := *t
	return &copied, nil
}

func (m *MemoryStore) GetAllTasks(ctx context.Context) ([]*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tasks := make([]*task.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		copied := *t
		tasks = append(tasks, &copied)
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})

	return tasks, nil
}

func (m *MemoryStore) GetRecentTasks(ctx context.Context, limit int) ([]*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tasks := make([]*task.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		if !t.IsFinalized {
			continue
		}
		copied := *t
		tasks = append(tasks, &copied)
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	if len(tasks) > limit {
		tasks = tasks[:limit]
	}

	return tasks, nil
}

func (m *MemoryStore) GetSessionTasks(ctx context.Context, sessionID string) ([]*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tasks := make([]*task.Task, 0)
	for _, t := range m.tasks {
		if t.SessionID == nil || *t.SessionID != sessionID {
			continue
		}
		copied := *t
		tasks = append(tasks, &copied)
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].ID < tasks[j].ID
	})

	return tasks, nil
}

func (m *MemoryStore) UpdateTask(ctx context.Context, t *task.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[t.ID]; !ok {
		return ErrNotFound
	}

	copied := *t
	m.tasks[t.ID] = &copied
	return nil
}

func (m *MemoryStore) GetTaskStats(ctx context.Context) (*Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var finalized []*task.Task
	for _, t := range m.tasks {
		if t.IsFinalized {
			finalized = append(finalized, t)
		}
	}

	return ComputeStats(finalized), nil
}

func (m *MemoryStore) Close() error {
	return nil
}
