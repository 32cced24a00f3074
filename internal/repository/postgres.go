package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
	"github.com/teamsizer/sizeup/internal/task"
)

// PostgresStore persists the estimation data in PostgreSQL. Votes and similar
// task references are stored as JSONB columns, mirroring the document shape
// the API serves.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PostgresStore{db: db}, nil
}

const taskColumns = `
	id, title, description, size, points, created_at, confidence,
	similar_tasks, feedback, session_id, is_finalized, votes,
	average_size, average_points
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*task.Task, error) {
	var t task.Task
	var similarTasks, votes []byte
	var feedback, sessionID sql.NullString

	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Size,
		&t.Points,
		&t.CreatedAt,
		&t.Confidence,
		&similarTasks,
		&feedback,
		&sessionID,
		&t.IsFinalized,
		&votes,
		&t.AverageSize,
		&t.AveragePoints,
	)
	if err != nil {
		return nil, err
	}

	if len(similarTasks) > 0 {
		if err := json.Unmarshal(similarTasks, &t.SimilarTasks); err != nil {
			return nil, fmt.Errorf("failed to unmarshal similar tasks: %w", err)
		}
	}
	if len(votes) > 0 {
		if err := json.Unmarshal(votes, &t.Votes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal votes: %w", err)
		}
	}
	if t.Votes == nil {
		t.Votes = []task.Vote{}
	}
	if feedback.Valid {
		t.Feedback = &feedback.String
	}
	if sessionID.Valid {
		t.SessionID = &sessionID.String
	}

	return &t, nil
}

func (r *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*task.User, error) {
	query := `SELECT id, username, password, display_name FROM users WHERE username = $1`

	var u task.User
	var displayName sql.NullString
	err := r.db.QueryRowContext(ctx, query, username).Scan(&u.ID, &u.Username, &u.Password, &displayName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if displayName.Valid {
		u.DisplayName = &displayName.String
	}

	return &u, nil
}

func (r *PostgresStore) GetUsers(ctx context.Context) ([]*task.User, error) {
	query := `SELECT id, username, password, display_name FROM users ORDER BY username`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("failed to close rows: %v", err)
		}
	}()

	var users []*task.User
	for rows.Next() {
		var u task.User
		var displayName sql.NullString
		if err := rows.Scan(&u.ID, &u.Username, &u.Password, &displayName); err != nil {
			return nil, err
		}
		if displayName.Valid {
			u.DisplayName = &displayName.String
		}
		users = append(users, &u)
	}

	return users, rows.Err()
}

func (r *PostgresStore) CreateUser(ctx context.Context, u *task.User) error {
	query := `INSERT INTO users (id, username, password, display_name) VALUES ($1, $2, $3, $4)`

	var displayName any
	if u.DisplayName != nil {
		displayName = *u.DisplayName
	}

	_, err := r.db.ExecContext(ctx, query, u.ID, u.Username, u.Password, displayName)
	return err
}

func (r *PostgresStore) CreateSession(ctx context.Context, s *task.Session) error {
	query := `INSERT INTO sessions (id, name, created_at, is_active) VALUES ($1, $2, $3, $4)`

	_, err := r.db.ExecContext(ctx, query, s.ID, s.Name, s.CreatedAt, s.IsActive)
	return err
}

func (r *PostgresStore) GetActiveSessions(ctx context.Context) ([]*task.Session, error) {
	query := `
		SELECT id, name, created_at, is_active
		FROM sessions
		WHERE is_active = TRUE
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("failed to close rows: %v", err)
		}
	}()

	var sessions []*task.Session
	for rows.Next() {
		var s task.Session
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatedAt, &s.IsActive); err != nil {
			return nil, err
		}
		sessions = append(sessions, &s)
	}

	return sessions, rows.Err()
}

func (r *PostgresStore) CloseSession(ctx context.Context, id string) (*task.Session, error) {
	query := `
		UPDATE sessions
		SET is_active = FALSE
		WHERE id = $1
		RETURNING id, name, created_at, is_active
	`

	var s task.Session
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.Name, &s.CreatedAt, &s.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &s, nil
}

const insertTaskQuery = `
	INSERT INTO tasks (
		id, title, description, size, points, created_at, confidence,
		similar_tasks, feedback, session_id, is_finalized, votes,
		average_size, average_points
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
`

func taskInsertArgs(t *task.Task) ([]any, error) {
	similarTasks, err := json.Marshal(t.SimilarTasks)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal similar tasks: %w", err)
	}
	votes, err := json.Marshal(t.Votes)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal votes: %w", err)
	}

	var feedback, sessionID any
	if t.Feedback != nil {
		feedback = *t.Feedback
	}
	if t.SessionID != nil {
		sessionID = *t.SessionID
	}

	return []any{
		t.ID, t.Title, t.Description, t.Size, t.Points, t.CreatedAt,
		t.Confidence, similarTasks, feedback, sessionID, t.IsFinalized,
		votes, t.AverageSize, t.AveragePoints,
	}, nil
}

func (r *PostgresStore) CreateTask(ctx context.Context, t *task.Task) error {
	args, err := taskInsertArgs(t)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, insertTaskQuery, args...)
	return err
}

func (r *PostgresStore) CreateTasks(ctx context.Context, tasks []*task.Task) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	for _, t := range tasks {
		args, err := taskInsertArgs(t)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := tx.ExecContext(ctx, insertTaskQuery, args...); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

func (r *PostgresStore) GetTask(ctx context.Context, id string) (*task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	t, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	return t, err
}

func (r *PostgresStore) GetAllTasks(ctx context.Context) ([]*task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY created_at`
	return r.queryTasks(ctx, query)
}

func (r *PostgresStore) GetRecentTasks(ctx context.Context, limit int) ([]*task.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE is_finalized = TRUE
		ORDER BY created_at DESC
		LIMIT $1
	`
	return r.queryTasks(ctx, query, limit)
}

func (r *PostgresStore) GetSessionTasks(ctx context.Context, sessionID string) ([]*task.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE session_id = $1
		ORDER BY id
	`
	return r.queryTasks(ctx, query, sessionID)
}

func (r *PostgresStore) queryTasks(ctx context.Context, query string, args ...any) ([]*task.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("failed to close rows: %v", err)
		}
	}()

	var tasks []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

func (r *PostgresStore) UpdateTask(ctx context.Context, t *task.Task) error {
	votes, err := json.Marshal(t.Votes)
	if err != nil {
		return fmt.Errorf("failed to marshal votes: %w", err)
	}

	var feedback any
	if t.Feedback != nil {
		feedback = *t.Feedback
	}

	query := `
		UPDATE tasks
		SET size = $1,
		    points = $2,
		    feedback = $3,
		    is_finalized = $4,
		    votes = $5,
		    average_size = $6,
		    average_points = $7
		WHERE id = $8
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		t.Size,
		t.Points,
		feedback,
		t.IsFinalized,
		votes,
		t.AverageSize,
		t.AveragePoints,
		t.ID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *PostgresStore) GetTaskStats(ctx context.Context) (*Stats, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE is_finalized = TRUE`

	finalized, err := r.queryTasks(ctx, query)
	if err != nil {
		return nil, err
	}

	return ComputeStats(finalized), nil
}

func (r *PostgresStore) Close() error {
	return r.db.Close()
}
