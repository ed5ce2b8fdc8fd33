package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"simplify/backend/internal/services"
	"simplify/backend/pkg/models"
)

const (
	analysisModel     = "claude-3-sonnet-20240229"
	analysisMaxTokens = 2000
)

// Generator produces a narrative analysis of a workflow by sending its
// data and derived metrics to the completion service.
type Generator struct {
	client services.CompletionClient
	model  string
}

// NewGenerator creates a Generator. An empty model selects the default.
func NewGenerator(client services.CompletionClient, model string) *Generator {
	if model == "" {
		model = analysisModel
	}
	return &Generator{client: client, model: model}
}

// Analyze returns a readable report covering efficiency, bottlenecks
// and recommendations for the given workflow.
func (g *Generator) Analyze(ctx context.Context, wf *models.Workflow, now time.Time) (string, error) {
	workflowJSON, err := json.Marshal(wf)
	if err != nil {
		return "", fmt.Errorf("failed to encode workflow: %w", err)
	}
	summaryJSON, err := json.Marshal(Summarize(wf, now))
	if err != nil {
		return "", fmt.Errorf("failed to encode summary: %w", err)
	}

	prompt := fmt.Sprintf(
		"Please analyze the following workflow and its time tracking data to provide insights and recommendations:\n\n"+
			"Workflow: %s\n\n"+
			"Time Tracking Data: %s\n\n"+
			"In your analysis, please include:\n"+
			"1. Overall workflow efficiency\n"+
			"2. Bottlenecks or delays\n"+
			"3. Tasks that took longer than expected\n"+
			"4. Recommendations for improvement\n"+
			"5. Suggestions for future workflows\n\n"+
			"Format your response in a way that's easy to read and could be presented in a report.",
		workflowJSON, summaryJSON,
	)

	resp, err := g.client.Complete(ctx, services.CompletionRequest{
		Model:     g.model,
		MaxTokens: analysisMaxTokens,
		Messages:  []services.Message{services.TextMessage("user", prompt)},
	})
	if err != nil {
		return "", fmt.Errorf("analysis request failed: %w", err)
	}
	return resp.Content, nil
}
