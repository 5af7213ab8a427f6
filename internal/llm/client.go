// Package llm sends rendered deal narratives to a language-model completion
// API and returns the drafted proposal text.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bizmatch/dealmaker/internal/common"
)

// Client defines the interface for LLM providers.
type Client interface {
	Draft(ctx context.Context, prompt string) (DraftResponse, error)
}

// DraftResponse contains the model's drafted proposal.
type DraftResponse struct {
	Content string
	Model   string
}

// Config holds configuration for the drafting layer.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	MaxRetries  int
	RetryDelay  time.Duration
	CacheTTL    time.Duration
	RateLimit   int
	Temperature float64
	MaxTokens   int
}

// NewClient creates a raw LLM client based on the provided configuration.
func NewClient(cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return newOpenAIClient(cfg)
	case "anthropic":
		return newAnthropicClient(cfg)
	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider %q", common.ErrInvalidConfig, cfg.Provider)
	}
}
