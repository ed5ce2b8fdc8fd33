// Package services holds clients for the external collaborators:
// today that is the LLM completion service used by the creation wizard
// and the report analyzer.
package services

import "context"

// ContentBlock is one piece of a message: text, or a base64 image.
type ContentBlock struct {
	Type   string       `json:"type"` // "text" or "image"
	Text   string       `json:"text,omitempty"`
	Source *ImageSource `json:"source,omitempty"`
}

// ImageSource carries inline image data.
type ImageSource struct {
	Type      string `json:"type"` // always "base64"
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// Message is one turn of the conversation sent to the completion
// service. Only user and assistant roles go over the wire.
type Message struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// TextMessage builds a single-block text message.
func TextMessage(role, text string) Message {
	return Message{Role: role, Content: []ContentBlock{{Type: "text", Text: text}}}
}

// CompletionRequest is a single call to the completion service.
type CompletionRequest struct {
	Model       string
	System      string
	MaxTokens   int
	Temperature float64
	Messages    []Message
}

// CompletionResponse is the flattened text reply. Nothing downstream
// depends on structured or tool-call output.
type CompletionResponse struct {
	Content      string
	Model        string
	StopReason   string
	StopSequence string
}

// CompletionClient is an interface for the LLM completion service.
type CompletionClient interface {
	// Complete sends the ordered message list and returns the text response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
