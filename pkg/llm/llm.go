package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrEmptyResponse is returned when the provider answered successfully but
// carried no critique text.
var ErrEmptyResponse = errors.New("empty response from model")

// VisionRequest is one prompt plus one inlined image.
type VisionRequest struct {
	SystemPrompt string
	UserPrompt   string
	Image        []byte
	MIMEType     string
}

// DataURI encodes the image the way OpenAI-compatible APIs expect it.
func (r VisionRequest) DataURI() string {
	return fmt.Sprintf("data:%s;base64,%s", r.MIMEType, base64.StdEncoding.EncodeToString(r.Image))
}

// LLM is a vision-capable chat model.
type LLM interface {
	Analyze(ctx context.Context, req VisionRequest) (string, error)
	GetModel() string
}

// StatusError is a non-2xx answer from a provider.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

// maxErrorBody bounds how much of an error body ends up in messages.
const maxErrorBody = 512

func truncate(body []byte) string {
	if len(body) > maxErrorBody {
		return string(body[:maxErrorBody]) + "..."
	}
	return string(body)
}
