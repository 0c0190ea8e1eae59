package models

import (
	"fmt"
	"time"
)

// Message represents a single role/content pair in a chat request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest is the request body for a chat completion call.
type ChatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float32  `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// ChatCompletionResponse is the non-streaming response body.
type ChatCompletionResponse struct {
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

type Choice struct {
	Message Message `json:"message"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// AIError represents the error payload returned by the API.
type AIError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// RequestError is a classified provider failure. Transient failures
// (timeouts, 5xx, 429) are worth retrying; the rest are not.
type RequestError struct {
	StatusCode int
	Message    string
	Transient  bool
	Hint       time.Duration // server-suggested retry delay, zero if none
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request failed with status code '%d' - %s", e.StatusCode, e.Message)
	}
	return e.Message
}

func (e *RequestError) Retryable() bool { return e.Transient }

func (e *RequestError) RetryAfter() time.Duration { return e.Hint }
