// Package sync mirrors local store mutations into the remote
// persistence service. Local state is authoritative: the mirror is
// queued, retried with backoff, and dropped with a logged error when
// the remote stays unreachable. Nothing here blocks a local mutation.
package sync

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"simplify/backend/internal/logging"
	"simplify/backend/internal/repository"
	"simplify/backend/internal/store"
	"simplify/backend/pkg/models"
)

const queueCapacity = 1024

type opKind string

const (
	opCreateWorkflow opKind = "create_workflow"
	opUpdateWorkflow opKind = "update_workflow"
	opDeleteWorkflow opKind = "delete_workflow"
	opCreateTask     opKind = "create_task"
	opUpdateTask     opKind = "update_task"
	opDeleteTask     opKind = "delete_task"
)

type operation struct {
	kind     opKind
	workflow *repository.WorkflowRecord
	task     *repository.TaskRecord
	id       string
}

// Status reports the observable state of the mirror queue.
type Status struct {
	Pending   int    `json:"pending"`
	LastError string `json:"lastError,omitempty"`
}

// Adapter wraps a WorkflowStore. Queries and wizard state pass
// through untouched; workflow and task mutations are applied locally
// first and then queued for the remote mirror. Timer and method-track
// mutations stay local only, matching the remote contract.
type Adapter struct {
	store.WorkflowStore

	remote  repository.RemoteStore
	logger  *logging.Logger
	ops     chan operation
	cancel  context.CancelFunc
	done    chan struct{}
	lastErr atomic.Value // string
}

// NewAdapter creates an Adapter over the local store and starts the
// mirror worker.
func NewAdapter(local store.WorkflowStore, remote repository.RemoteStore, logger *logging.Logger) *Adapter {
	ctx, cancel := context.WithCancel(context.Background())
	a := &Adapter{
		WorkflowStore: local,
		remote:        remote,
		logger:        logger,
		ops:           make(chan operation, queueCapacity),
		cancel:        cancel,
		done:          make(chan struct{}),
	}
	a.lastErr.Store("")
	go a.run(ctx)
	return a
}

// Close stops the mirror worker. Queued operations are abandoned.
func (a *Adapter) Close() {
	a.cancel()
	<-a.done
}

// Status returns the current mirror queue state.
func (a *Adapter) Status() Status {
	return Status{
		Pending:   len(a.ops),
		LastError: a.lastErr.Load().(string),
	}
}

// CreateWorkflow creates locally, then queues the remote insert.
func (a *Adapter) CreateWorkflow(nw store.NewWorkflow) (string, error) {
	id, err := a.WorkflowStore.CreateWorkflow(nw)
	if err != nil {
		return "", err
	}
	if wf, err := a.WorkflowStore.GetWorkflow(id); err == nil {
		a.enqueue(operation{kind: opCreateWorkflow, workflow: workflowRecord(wf)})
	}
	return id, nil
}

// UpdateWorkflow updates locally, then queues the remote update.
func (a *Adapter) UpdateWorkflow(id string, upd models.WorkflowUpdate) error {
	if err := a.WorkflowStore.UpdateWorkflow(id, upd); err != nil {
		return err
	}
	if wf, err := a.WorkflowStore.GetWorkflow(id); err == nil {
		a.enqueue(operation{kind: opUpdateWorkflow, workflow: workflowRecord(wf)})
	}
	return nil
}

// DeleteWorkflow deletes locally, then queues the remote delete.
func (a *Adapter) DeleteWorkflow(id string) error {
	if err := a.WorkflowStore.DeleteWorkflow(id); err != nil {
		return err
	}
	a.enqueue(operation{kind: opDeleteWorkflow, id: id})
	return nil
}

// CreateTask creates locally, then queues the remote insert.
func (a *Adapter) CreateTask(workflowID string, nt store.NewTask) (string, error) {
	id, err := a.WorkflowStore.CreateTask(workflowID, nt)
	if err != nil {
		return "", err
	}
	if task, err := a.WorkflowStore.GetTask(workflowID, id); err == nil {
		a.enqueue(operation{kind: opCreateTask, task: taskRecord(task)})
	}
	return id, nil
}

// UpdateTask updates locally, then queues the remote update.
func (a *Adapter) UpdateTask(workflowID, taskID string, upd models.TaskUpdate, method models.Method) error {
	if err := a.WorkflowStore.UpdateTask(workflowID, taskID, upd, method); err != nil {
		return err
	}
	if task, err := a.WorkflowStore.GetTask(workflowID, taskID); err == nil {
		a.enqueue(operation{kind: opUpdateTask, task: taskRecord(task)})
	}
	return nil
}

// DeleteTask deletes locally, then queues the remote delete.
func (a *Adapter) DeleteTask(workflowID, taskID string) error {
	if err := a.WorkflowStore.DeleteTask(workflowID, taskID); err != nil {
		return err
	}
	a.enqueue(operation{kind: opDeleteTask, id: taskID})
	return nil
}

// SeedRemote pushes the full local state to an empty remote mirror.
// Intended for startup; a populated remote is left alone.
func (a *Adapter) SeedRemote(ctx context.Context) error {
	existing, err := a.remote.ListWorkflows(ctx)
	if err != nil {
		return fmt.Errorf("failed to list remote workflows: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	for _, wf := range a.WorkflowStore.ListWorkflows() {
		a.enqueue(operation{kind: opCreateWorkflow, workflow: workflowRecord(&wf)})
		for i := range wf.Tasks {
			a.enqueue(operation{kind: opCreateTask, task: taskRecord(&wf.Tasks[i])})
		}
	}
	return nil
}

func (a *Adapter) enqueue(op operation) {
	select {
	case a.ops <- op:
	default:
		a.logger.Warn("sync queue full, dropping %s", op.kind)
	}
}

func (a *Adapter) run(ctx context.Context) {
	defer close(a.done)
	for {
		select {
		case <-ctx.Done():
			return
		case op := <-a.ops:
			a.deliver(ctx, op)
		}
	}
}

func (a *Adapter) deliver(ctx context.Context, op operation) {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second

	err := backoff.Retry(func() error {
		return a.apply(ctx, op)
	}, backoff.WithContext(bo, ctx))

	if err != nil {
		a.lastErr.Store(err.Error())
		a.logger.Error("sync: giving up on %s: %v", op.kind, err)
		return
	}
	a.lastErr.Store("")
}

func (a *Adapter) apply(ctx context.Context, op operation) error {
	switch op.kind {
	case opCreateWorkflow:
		return a.remote.CreateWorkflow(ctx, op.workflow)
	case opUpdateWorkflow:
		return a.remote.UpdateWorkflow(ctx, op.workflow)
	case opDeleteWorkflow:
		return a.remote.DeleteWorkflow(ctx, op.id)
	case opCreateTask:
		return a.remote.CreateTask(ctx, op.task)
	case opUpdateTask:
		return a.remote.UpdateTask(ctx, op.task)
	case opDeleteTask:
		return a.remote.DeleteTask(ctx, op.id)
	}
	return fmt.Errorf("unknown sync operation %q", op.kind)
}

func workflowRecord(wf *models.Workflow) *repository.WorkflowRecord {
	return &repository.WorkflowRecord{
		ID:          wf.ID,
		Title:       wf.Title,
		Description: wf.Description,
		Status:      string(wf.Status),
		CreatedAt:   wf.CreatedAt,
		UpdatedAt:   wf.UpdatedAt,
	}
}

func taskRecord(task *models.Task) *repository.TaskRecord {
	return &repository.TaskRecord{
		ID:          task.ID,
		WorkflowID:  task.WorkflowID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		DueDate:     task.DueDate,
	}
}
