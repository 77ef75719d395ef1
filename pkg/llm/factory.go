package llm

import (
	"fmt"
	"strings"
)

// Provider represents the LLM provider type
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderClaude Provider = "claude"
	ProviderGemini Provider = "gemini"
)

// Options configures a provider client. An empty Model or BaseURL keeps the
// provider default.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
}

// ParseProvider normalizes a provider name; empty means OpenAI.
func ParseProvider(name string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(name))); p {
	case "":
		return ProviderOpenAI, nil
	case ProviderOpenAI, ProviderClaude, ProviderGemini:
		return p, nil
	default:
		return "", fmt.Errorf("unsupported provider: %s (supported: openai, claude, gemini)", name)
	}
}

// APIKeyEnv names the environment variable holding the provider's key.
func (p Provider) APIKeyEnv() string {
	switch p {
	case ProviderClaude:
		return "ANTHROPIC_API_KEY"
	case ProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}

// New creates an LLM instance for provider.
func New(provider Provider, opts Options) (LLM, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required (set %s)", provider, provider.APIKeyEnv())
	}

	switch provider {
	case ProviderOpenAI:
		model := opts.Model
		if model == "" {
			model = defaultOpenAIModel
		}
		return NewOpenAIWithModel(opts.APIKey, model).WithBaseURL(opts.BaseURL), nil

	case ProviderClaude:
		model := opts.Model
		if model == "" {
			model = defaultClaudeModel
		}
		return NewClaudeWithModel(opts.APIKey, model).WithBaseURL(opts.BaseURL), nil

	case ProviderGemini:
		model := opts.Model
		if model == "" {
			model = defaultGeminiModel
		}
		return NewGeminiWithModel(opts.APIKey, model), nil

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

// GetAvailableProviders returns a list of available LLM providers
func GetAvailableProviders() []Provider {
	return []Provider{ProviderOpenAI, ProviderClaude, ProviderGemini}
}
