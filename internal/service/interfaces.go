// Package service defines the interfaces between the application's layers.
package service

import (
	"context"
	"time"

	"github.com/bizmatch/dealmaker/internal/model"
)

// RawRecord is a stored seller or buyer record exactly as it was imported.
// Records are kept raw and re-normalized on read, so normalization fixes
// apply to previously imported data.
type RawRecord struct {
	CreatedAt time.Time
	ID        string
	Fields    map[string]any
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Listing operations
	SaveListing(ctx context.Context, id string, fields map[string]any) error
	GetListing(ctx context.Context, id string) (*RawRecord, error)
	ListListings(ctx context.Context) ([]RawRecord, error)

	// Buyer operations
	SaveBuyer(ctx context.Context, id string, fields map[string]any) error
	GetBuyer(ctx context.Context, id string) (*RawRecord, error)
	ListBuyers(ctx context.Context) ([]RawRecord, error)

	// Strategy operations
	SaveStrategy(ctx context.Context, record *model.StrategyRecord) error
	GetLatestStrategy(ctx context.Context, listingID, buyerID string) (*model.StrategyRecord, error)
	ListStrategies(ctx context.Context, listingID string) ([]model.StrategyRecord, error)

	// Draft operations
	SaveDraft(ctx context.Context, draft *model.Draft) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// Drafter turns a rendered narrative into a finished proposal draft.
type Drafter interface {
	Draft(ctx context.Context, prompt string) (string, error)
}

// RetryOptions configures retry behavior for transient failures.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
