package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"simplify/backend/internal/report"
	"simplify/backend/internal/store"
	"simplify/backend/pkg/models"
)

type Server struct {
	mcpServer *server.MCPServer
	store     store.WorkflowStore
}

func NewServer(st store.WorkflowStore) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"Simplify",
			"1.0.0",
			server.WithToolCapabilities(true),
		),
		store: st,
	}

	s.registerTools()
	return s
}

func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_workflows",
			mcp.WithDescription("List all workflows with their tasks"),
		),
		s.handleListWorkflows,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_workflow",
			mcp.WithDescription("Get one workflow by id"),
			mcp.WithString("workflow_id", mcp.Required(), mcp.Description("The ID of the workflow")),
		),
		s.handleGetWorkflow,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"create_workflow",
			mcp.WithDescription("Create a new workflow"),
			mcp.WithString("title", mcp.Required(), mcp.Description("The workflow title")),
			mcp.WithString("description", mcp.Description("What the workflow is for")),
		),
		s.handleCreateWorkflow,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"add_task",
			mcp.WithDescription("Add a task to a workflow"),
			mcp.WithString("workflow_id", mcp.Required(), mcp.Description("The ID of the workflow")),
			mcp.WithString("title", mcp.Required(), mcp.Description("The task title")),
			mcp.WithString("description", mcp.Description("The task description")),
			mcp.WithString("priority", mcp.Description("low, medium, high or urgent")),
		),
		s.handleAddTask,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"update_task_status",
			mcp.WithDescription("Change a task's status"),
			mcp.WithString("workflow_id", mcp.Required(), mcp.Description("The ID of the workflow")),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("The ID of the task")),
			mcp.WithString("status", mcp.Required(), mcp.Description("not_started, in_progress, completed or blocked")),
			mcp.WithString("method", mcp.Description("currentMethod or aiMethod; also updates that method's record")),
		),
		s.handleUpdateTaskStatus,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"start_timer",
			mcp.WithDescription("Start a timer on one method of a task"),
			mcp.WithString("workflow_id", mcp.Required(), mcp.Description("The ID of the workflow")),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("The ID of the task")),
			mcp.WithString("method", mcp.Required(), mcp.Description("currentMethod or aiMethod")),
			mcp.WithString("notes", mcp.Description("Optional notes for the entry")),
		),
		s.handleStartTimer,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"stop_timer",
			mcp.WithDescription("Stop a running timer"),
			mcp.WithString("workflow_id", mcp.Required(), mcp.Description("The ID of the workflow")),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("The ID of the task")),
			mcp.WithString("time_entry_id", mcp.Required(), mcp.Description("The ID of the time entry")),
			mcp.WithString("method", mcp.Required(), mcp.Description("currentMethod or aiMethod")),
		),
		s.handleStopTimer,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"workflow_report",
			mcp.WithDescription("Get the performance report for a workflow"),
			mcp.WithString("workflow_id", mcp.Required(), mcp.Description("The ID of the workflow")),
		),
		s.handleWorkflowReport,
	)
}

func (s *Server) handleListWorkflows(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jsonBytes, _ := json.Marshal(s.store.ListWorkflows())
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleGetWorkflow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	workflowID, ok := args["workflow_id"].(string)
	if !ok || workflowID == "" {
		return mcp.NewToolResultError("Missing required parameter: workflow_id"), nil
	}

	wf, err := s.store.GetWorkflow(workflowID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get workflow: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(wf)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleCreateWorkflow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	title, ok := args["title"].(string)
	if !ok || title == "" {
		return mcp.NewToolResultError("Missing required parameter: title"), nil
	}
	description, _ := args["description"].(string)

	id, err := s.store.CreateWorkflow(store.NewWorkflow{
		Title:       title,
		Description: description,
		CreatedBy:   "mcp",
		Status:      models.WorkflowStatusActive,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create workflow: %v", err)), nil
	}

	wf, err := s.store.GetWorkflow(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get workflow: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(wf)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleAddTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	workflowID, ok := args["workflow_id"].(string)
	if !ok || workflowID == "" {
		return mcp.NewToolResultError("Missing required parameter: workflow_id"), nil
	}
	title, ok := args["title"].(string)
	if !ok || title == "" {
		return mcp.NewToolResultError("Missing required parameter: title"), nil
	}
	description, _ := args["description"].(string)
	priority, _ := args["priority"].(string)

	id, err := s.store.CreateTask(workflowID, store.NewTask{
		Title:       title,
		Description: description,
		Priority:    models.TaskPriority(priority),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to add task: %v", err)), nil
	}

	task, err := s.store.GetTask(workflowID, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get task: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(task)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleUpdateTaskStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	workflowID, ok := args["workflow_id"].(string)
	if !ok || workflowID == "" {
		return mcp.NewToolResultError("Missing required parameter: workflow_id"), nil
	}
	taskID, ok := args["task_id"].(string)
	if !ok || taskID == "" {
		return mcp.NewToolResultError("Missing required parameter: task_id"), nil
	}
	status, ok := args["status"].(string)
	if !ok || status == "" {
		return mcp.NewToolResultError("Missing required parameter: status"), nil
	}
	method, _ := args["method"].(string)

	taskStatus := models.TaskStatus(status)
	err := s.store.UpdateTask(workflowID, taskID, models.TaskUpdate{Status: &taskStatus}, models.Method(method))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update task: %v", err)), nil
	}

	return mcp.NewToolResultText("Task status updated"), nil
}

func (s *Server) handleStartTimer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	workflowID, ok := args["workflow_id"].(string)
	if !ok || workflowID == "" {
		return mcp.NewToolResultError("Missing required parameter: workflow_id"), nil
	}
	taskID, ok := args["task_id"].(string)
	if !ok || taskID == "" {
		return mcp.NewToolResultError("Missing required parameter: task_id"), nil
	}
	method, ok := args["method"].(string)
	if !ok || method == "" {
		return mcp.NewToolResultError("Missing required parameter: method"), nil
	}
	notes, _ := args["notes"].(string)

	entryID, err := s.store.StartTimer(workflowID, taskID, models.Method(method), notes)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to start timer: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Timer started, time entry id: %s", entryID)), nil
}

func (s *Server) handleStopTimer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	workflowID, ok := args["workflow_id"].(string)
	if !ok || workflowID == "" {
		return mcp.NewToolResultError("Missing required parameter: workflow_id"), nil
	}
	taskID, ok := args["task_id"].(string)
	if !ok || taskID == "" {
		return mcp.NewToolResultError("Missing required parameter: task_id"), nil
	}
	entryID, ok := args["time_entry_id"].(string)
	if !ok || entryID == "" {
		return mcp.NewToolResultError("Missing required parameter: time_entry_id"), nil
	}
	method, ok := args["method"].(string)
	if !ok || method == "" {
		return mcp.NewToolResultError("Missing required parameter: method"), nil
	}

	if err := s.store.StopTimer(workflowID, taskID, entryID, models.Method(method)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to stop timer: %v", err)), nil
	}

	return mcp.NewToolResultText("Timer stopped"), nil
}

func (s *Server) handleWorkflowReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	workflowID, ok := args["workflow_id"].(string)
	if !ok || workflowID == "" {
		return mcp.NewToolResultError("Missing required parameter: workflow_id"), nil
	}

	wf, err := s.store.GetWorkflow(workflowID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get workflow: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(report.Summarize(wf, time.Now()))
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func MountHTTPHandlers(mux *http.ServeMux, mcpServer *server.MCPServer) {
	// Use SSE server for /mcp/sse and /mcp/message endpoints
	sseServer := server.NewSSEServer(mcpServer, server.WithStaticBasePath("/mcp"))

	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		// Direct POST for tool calls
		if r.Method == http.MethodPost {
			sseServer.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	// SSE endpoints
	mux.HandleFunc("/mcp/sse", sseServer.ServeHTTP)
	mux.HandleFunc("/mcp/message", sseServer.ServeHTTP)
}
