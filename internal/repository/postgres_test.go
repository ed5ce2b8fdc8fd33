package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestPostgresStore(t *testing.T) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test-db"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2)),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}()

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatal(err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Close()

	store := NewPostgresStore(pool)

	_, err = pool.Exec(ctx, `CREATE TABLE workflows (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	CREATE TABLE tasks (
		id TEXT PRIMARY KEY,
		workflow_id TEXT NOT NULL REFERENCES workflows(id),
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		priority TEXT NOT NULL,
		due_date TIMESTAMPTZ
	);`)
	if err != nil {
		t.Fatal(err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	wfID := uuid.New().String()
	taskID := uuid.New().String()

	t.Run("CreateWorkflow and ListWorkflows", func(t *testing.T) {
		err := store.CreateWorkflow(ctx, &WorkflowRecord{
			ID:          wfID,
			Title:       "Hiring Pipeline",
			Description: "Screen and interview",
			Status:      "active",
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		assert.NoError(t, err)

		workflows, err := store.ListWorkflows(ctx)
		assert.NoError(t, err)
		assert.Len(t, workflows, 1)
		assert.Equal(t, "Hiring Pipeline", workflows[0].Title)
	})

	t.Run("CreateWorkflow is idempotent", func(t *testing.T) {
		err := store.CreateWorkflow(ctx, &WorkflowRecord{
			ID:        wfID,
			Title:     "Hiring Pipeline v2",
			Status:    "active",
			CreatedAt: now,
			UpdatedAt: now,
		})
		assert.NoError(t, err)

		workflows, err := store.ListWorkflows(ctx)
		assert.NoError(t, err)
		assert.Len(t, workflows, 1)
		assert.Equal(t, "Hiring Pipeline v2", workflows[0].Title)
	})

	t.Run("UpdateWorkflow", func(t *testing.T) {
		err := store.UpdateWorkflow(ctx, &WorkflowRecord{
			ID:        wfID,
			Title:     "Hiring Pipeline v3",
			Status:    "completed",
			UpdatedAt: now.Add(time.Hour),
		})
		assert.NoError(t, err)

		workflows, err := store.ListWorkflows(ctx)
		assert.NoError(t, err)
		assert.Equal(t, "completed", workflows[0].Status)
	})

	t.Run("CreateTask and UpdateTask", func(t *testing.T) {
		due := now.Add(72 * time.Hour)
		err := store.CreateTask(ctx, &TaskRecord{
			ID:         taskID,
			WorkflowID: wfID,
			Title:      "Screen resumes",
			Status:     "not_started",
			Priority:   "high",
			DueDate:    &due,
		})
		assert.NoError(t, err)

		err = store.UpdateTask(ctx, &TaskRecord{
			ID:         taskID,
			WorkflowID: wfID,
			Title:      "Screen resumes",
			Status:     "in_progress",
			Priority:   "high",
		})
		assert.NoError(t, err)

		var status string
		err = pool.QueryRow(ctx, `SELECT status FROM tasks WHERE id = $1`, taskID).Scan(&status)
		assert.NoError(t, err)
		assert.Equal(t, "in_progress", status)
	})

	t.Run("DeleteWorkflow removes tasks", func(t *testing.T) {
		err := store.DeleteWorkflow(ctx, wfID)
		assert.NoError(t, err)

		var count int
		err = pool.QueryRow(ctx, `SELECT count(*) FROM tasks`).Scan(&count)
		assert.NoError(t, err)
		assert.Equal(t, 0, count)

		workflows, err := store.ListWorkflows(ctx)
		assert.NoError(t, err)
		assert.Empty(t, workflows)
	})
}
