package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is a PostgreSQL implementation of the RemoteStore
// interface. Writes are upserts so a retried mirror operation stays
// idempotent.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// CreateWorkflow inserts a workflow row.
func (s *PostgresStore) CreateWorkflow(ctx context.Context, wf *WorkflowRecord) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO workflows (id, title, description, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET title = $2, description = $3, status = $4, updated_at = $6`,
		wf.ID, wf.Title, wf.Description, wf.Status, wf.CreatedAt, wf.UpdatedAt)
	return err
}

// UpdateWorkflow updates a workflow row.
func (s *PostgresStore) UpdateWorkflow(ctx context.Context, wf *WorkflowRecord) error {
	_, err := s.db.Exec(ctx,
		`UPDATE workflows SET title = $2, description = $3, status = $4, updated_at = $5 WHERE id = $1`,
		wf.ID, wf.Title, wf.Description, wf.Status, wf.UpdatedAt)
	return err
}

// DeleteWorkflow removes a workflow row and its tasks.
func (s *PostgresStore) DeleteWorkflow(ctx context.Context, id string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM tasks WHERE workflow_id = $1`, id); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx, `DELETE FROM workflows WHERE id = $1`, id)
	return err
}

// CreateTask inserts a task row.
func (s *PostgresStore) CreateTask(ctx context.Context, task *TaskRecord) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO tasks (id, workflow_id, title, description, status, priority, due_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET title = $3, description = $4, status = $5, priority = $6, due_date = $7`,
		task.ID, task.WorkflowID, task.Title, task.Description, task.Status, task.Priority, task.DueDate)
	return err
}

// UpdateTask updates a task row.
func (s *PostgresStore) UpdateTask(ctx context.Context, task *TaskRecord) error {
	_, err := s.db.Exec(ctx,
		`UPDATE tasks SET title = $2, description = $3, status = $4, priority = $5, due_date = $6 WHERE id = $1`,
		task.ID, task.Title, task.Description, task.Status, task.Priority, task.DueDate)
	return err
}

// DeleteTask removes a task row.
func (s *PostgresStore) DeleteTask(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	return err
}

// ListWorkflows returns all mirrored workflow rows, newest first.
func (s *PostgresStore) ListWorkflows(ctx context.Context) ([]*WorkflowRecord, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, title, description, status, created_at, updated_at FROM workflows ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workflows []*WorkflowRecord
	for rows.Next() {
		var wf WorkflowRecord
		if err := rows.Scan(&wf.ID, &wf.Title, &wf.Description, &wf.Status, &wf.CreatedAt, &wf.UpdatedAt); err != nil {
			return nil, err
		}
		workflows = append(workflows, &wf)
	}
	return workflows, rows.Err()
}
