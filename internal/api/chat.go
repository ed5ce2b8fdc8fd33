package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"simplify/backend/pkg/models"
)

type chatResponse struct {
	ChatHistory []models.ChatMessage `json:"chatHistory"`
	CurrentStep models.CreationStep  `json:"currentStep"`
	WorkflowID  string               `json:"workflowId,omitempty"`
}

type postChatRequest struct {
	Content   string `json:"content"`
	ImageData string `json:"imageData,omitempty"`
}

// GetChat returns the workflow creation conversation so far
// (GET /api/v1/chat)
func (s *Server) GetChat(c echo.Context) error {
	creation := s.Store.Creation()
	return c.JSON(http.StatusOK, chatResponse{
		ChatHistory: creation.ChatHistory,
		CurrentStep: creation.CurrentStep,
	})
}

// PostChat feeds one user message to the creation wizard and returns
// the updated conversation. When the message completes a workflow the
// new workflow id is included in the response.
// (POST /api/v1/chat)
func (s *Server) PostChat(c echo.Context) error {
	var req postChatRequest
	if err := c.Bind(&req); err != nil {
		return problem(c, http.StatusBadRequest, "Bad Request", "Invalid request body: "+err.Error())
	}
	if req.Content == "" {
		return problem(c, http.StatusBadRequest, "Bad Request", "content is required")
	}

	workflowID, err := s.Wizard.HandleMessage(c.Request().Context(), req.Content, req.ImageData)
	if err != nil {
		s.Logger.Error("chat: %v", err)
	}

	creation := s.Store.Creation()
	return c.JSON(http.StatusOK, chatResponse{
		ChatHistory: creation.ChatHistory,
		CurrentStep: creation.CurrentStep,
		WorkflowID:  workflowID,
	})
}

// SyncStatus reports the state of the persistence mirror queue
// (GET /api/v1/sync/status)
func (s *Server) SyncStatus(c echo.Context) error {
	if s.Sync == nil {
		return problem(c, http.StatusNotFound, "Not Found", "persistence mirroring is not enabled")
	}
	return c.JSON(http.StatusOK, s.Sync.Status())
}
