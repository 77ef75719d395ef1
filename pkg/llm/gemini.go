package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-1.5-flash"

// Gemini talks to Google Gemini through the generative-ai-go SDK.
type Gemini struct {
	apiKey string
	model  string
}

func NewGemini(apiKey string) *Gemini {
	return NewGeminiWithModel(apiKey, defaultGeminiModel)
}

func NewGeminiWithModel(apiKey, model string) *Gemini {
	return &Gemini{apiKey: apiKey, model: model}
}

func (g *Gemini) Analyze(ctx context.Context, vr VisionRequest) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return "", fmt.Errorf("create gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.model)
	model.SetTemperature(0)
	model.SystemInstruction = genai.NewUserContent(genai.Text(vr.SystemPrompt))

	format := strings.TrimPrefix(vr.MIMEType, "image/")
	resp, err := model.GenerateContent(ctx, genai.ImageData(format, vr.Image), genai.Text(vr.UserPrompt))
	if err != nil {
		return "", fromGeminiError(err)
	}

	return geminiText(resp)
}

func (g *Gemini) GetModel() string {
	return g.model
}

// fromGeminiError lifts HTTP failures reported by the SDK into StatusError
// so they classify like the raw HTTP providers.
func fromGeminiError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &StatusError{Provider: "Gemini", StatusCode: gerr.Code, Body: gerr.Message}
	}
	return err
}

func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("Gemini: %w", ErrEmptyResponse)
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return "", fmt.Errorf("Gemini: %w", ErrEmptyResponse)
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", fmt.Errorf("Gemini: %w", ErrEmptyResponse)
	}
	return text.String(), nil
}
