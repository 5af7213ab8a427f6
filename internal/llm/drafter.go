package llm

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bizmatch/dealmaker/internal/common"
	"github.com/bizmatch/dealmaker/internal/service"
)

// Drafter implements service.Drafter on top of a raw LLM client, adding
// rate limiting, retries, and prompt-keyed memoization.
type Drafter struct {
	client      Client
	cache       *draftCache
	logger      *slog.Logger
	rateLimiter *rateLimiter
	retryOpts   service.RetryOptions
}

// NewDrafter creates a new LLM-backed drafter.
func NewDrafter(cfg Config, logger *slog.Logger) (*Drafter, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	return &Drafter{
		client:      client,
		cache:       newDraftCache(cfg.CacheTTL),
		logger:      logger,
		retryOpts:   retryOpts,
		rateLimiter: newRateLimiter(cfg.RateLimit),
	}, nil
}

// Draft expands a rendered narrative into a proposal draft.
func (d *Drafter) Draft(ctx context.Context, prompt string) (string, error) {
	key := promptKey(prompt)

	if draft, found := d.cache.get(key); found {
		d.logger.Debug("cache hit for prompt", "key", key)
		return draft.Content, nil
	}

	if err := d.rateLimiter.wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit error: %w", err)
	}

	var response DraftResponse
	err := common.WithRetry(ctx, func() error {
		d.logger.Debug("attempting LLM draft", "key", key)

		resp, err := d.client.Draft(ctx, prompt)
		if err != nil {
			d.logger.Warn("LLM draft attempt failed", "error", err, "key", key)

			// Providers classify their own failures; anything else (network,
			// timeouts) is assumed transient.
			var retryErr *common.RetryableError
			if errors.As(err, &retryErr) {
				return err
			}
			return &common.RetryableError{Err: err, Retryable: true}
		}
		response = resp
		return nil
	}, d.retryOpts)

	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrDraftFailed, err)
	}

	d.cache.set(key, response)

	d.logger.Info("draft generated",
		"key", key,
		"model", response.Model,
		"length", len(response.Content))

	return response.Content, nil
}

// Close releases the cache and rate limiter goroutines.
func (d *Drafter) Close() {
	d.cache.Close()
	d.rateLimiter.Close()
}

// promptKey hashes a prompt into a stable cache key.
func promptKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return fmt.Sprintf("%x", sum[:8])
}
