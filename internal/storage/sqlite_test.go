package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizmatch/dealmaker/internal/common"
	"github.com/bizmatch/dealmaker/internal/model"
)

func setupTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func TestMigrateIsIdempotent(t *testing.T) {
	store := setupTestStorage(t)
	require.NoError(t, store.Migrate(context.Background()))

	var version int
	err := store.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_versions`).Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("")
	require.Error(t, err)
}

func TestListingRoundTrip(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	fields := map[string]any{
		"asking_price":                "$400,000",
		"industry":                    "plumbing",
		"seller_financing_considered": "yes",
	}
	require.NoError(t, store.SaveListing(ctx, "listing-1", fields))

	got, err := store.GetListing(ctx, "listing-1")
	require.NoError(t, err)
	assert.Equal(t, "listing-1", got.ID)
	assert.Equal(t, "$400,000", got.Fields["asking_price"])
	assert.Equal(t, "yes", got.Fields["seller_financing_considered"])
	assert.False(t, got.CreatedAt.IsZero())
}

func TestSaveListing_UpsertReplacesFields(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveListing(ctx, "listing-1", map[string]any{"industry": "plumbing"}))
	require.NoError(t, store.SaveListing(ctx, "listing-1", map[string]any{"industry": "landscaping"}))

	got, err := store.GetListing(ctx, "listing-1")
	require.NoError(t, err)
	assert.Equal(t, "landscaping", got.Fields["industry"])

	all, err := store.ListListings(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGetListing_NotFound(t *testing.T) {
	store := setupTestStorage(t)

	_, err := store.GetListing(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestBuyerRoundTrip(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveBuyer(ctx, "buyer-1", map[string]any{"available_capital": 50000.0}))
	require.NoError(t, store.SaveBuyer(ctx, "buyer-2", map[string]any{"available_capital": 90000.0}))

	got, err := store.GetBuyer(ctx, "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, 50000.0, got.Fields["available_capital"])

	all, err := store.ListBuyers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "buyer-1", all[0].ID)
	assert.Equal(t, "buyer-2", all[1].ID)
}

func TestSaveRecord_EmptyID(t *testing.T) {
	store := setupTestStorage(t)

	err := store.SaveListing(context.Background(), "", map[string]any{"industry": "plumbing"})
	require.Error(t, err)
}

func testStrategy() model.DealStrategy {
	return model.DealStrategy{
		Structure:    model.StructureBridgeBalloon,
		GapPct:       model.Known(-12.5),
		GapBucket:    model.GapModerate,
		RequiredDown: model.Known(80000.0),
		BuyerCapital: model.Known(20000.0),
		DownOk:       model.Known(false),
		DownShort:    model.Known(60000.0),
		Suggestions:  []string{"consider an earnout"},
	}
}

func TestStrategyRoundTrip(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	record := &model.StrategyRecord{
		ListingID: "listing-1",
		BuyerID:   "buyer-1",
		Strategy:  testStrategy(),
		Narrative: "Listing summary:\n- Asking price: $400,000",
	}
	require.NoError(t, store.SaveStrategy(ctx, record))
	assert.NotEmpty(t, record.ID)
	assert.False(t, record.CreatedAt.IsZero())

	got, err := store.GetLatestStrategy(ctx, "listing-1", "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, record.ID, got.ID)
	assert.Equal(t, record.Narrative, got.Narrative)
	assert.Equal(t, model.StructureBridgeBalloon, got.Strategy.Structure)
	assert.Equal(t, -12.5, got.Strategy.GapPct.Or(0))
	assert.False(t, got.Strategy.Recommended.InterestPct.IsKnown())
}

func TestGetLatestStrategy_PicksNewest(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	older := &model.StrategyRecord{
		ListingID: "listing-1",
		BuyerID:   "buyer-1",
		Strategy:  testStrategy(),
		Narrative: "older",
		CreatedAt: base,
	}
	newer := &model.StrategyRecord{
		ListingID: "listing-1",
		BuyerID:   "buyer-1",
		Strategy:  testStrategy(),
		Narrative: "newer",
		CreatedAt: base.Add(time.Hour),
	}
	require.NoError(t, store.SaveStrategy(ctx, older))
	require.NoError(t, store.SaveStrategy(ctx, newer))

	got, err := store.GetLatestStrategy(ctx, "listing-1", "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, "newer", got.Narrative)
}

func TestGetLatestStrategy_NotFound(t *testing.T) {
	store := setupTestStorage(t)

	_, err := store.GetLatestStrategy(context.Background(), "listing-1", "buyer-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListStrategies(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, buyer := range []string{"buyer-1", "buyer-2"} {
		require.NoError(t, store.SaveStrategy(ctx, &model.StrategyRecord{
			ListingID: "listing-1",
			BuyerID:   buyer,
			Strategy:  testStrategy(),
			Narrative: buyer,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, store.SaveStrategy(ctx, &model.StrategyRecord{
		ListingID: "listing-2",
		BuyerID:   "buyer-1",
		Strategy:  testStrategy(),
		Narrative: "other listing",
		CreatedAt: base,
	}))

	records, err := store.ListStrategies(ctx, "listing-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "buyer-2", records[0].BuyerID)
	assert.Equal(t, "buyer-1", records[1].BuyerID)
}

func TestSaveStrategy_DuplicateID(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	record := &model.StrategyRecord{
		ListingID: "listing-1",
		BuyerID:   "buyer-1",
		Strategy:  testStrategy(),
		Narrative: "narrative",
	}
	require.NoError(t, store.SaveStrategy(ctx, record))

	// The first save filled in the ID; inserting it again collides.
	err := store.SaveStrategy(ctx, record)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)
}

func TestSaveStrategy_Validation(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	require.Error(t, store.SaveStrategy(ctx, nil))
	require.Error(t, store.SaveStrategy(ctx, &model.StrategyRecord{BuyerID: "buyer-1"}))
	require.Error(t, store.SaveStrategy(ctx, &model.StrategyRecord{ListingID: "listing-1"}))
}

func TestSaveDraft(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	record := &model.StrategyRecord{
		ListingID: "listing-1",
		BuyerID:   "buyer-1",
		Strategy:  testStrategy(),
		Narrative: "narrative",
	}
	require.NoError(t, store.SaveStrategy(ctx, record))

	draft := &model.Draft{
		StrategyID: record.ID,
		Provider:   "anthropic",
		Model:      "claude-sonnet-4-0",
		Content:    "Dear seller, here is our proposal.",
	}
	require.NoError(t, store.SaveDraft(ctx, draft))
	assert.NotEmpty(t, draft.ID)
	assert.False(t, draft.CreatedAt.IsZero())

	var content string
	err := store.db.QueryRow(`SELECT content FROM drafts WHERE id = ?`, draft.ID).Scan(&content)
	require.NoError(t, err)
	assert.Equal(t, draft.Content, content)
}

func TestSaveDraft_DuplicateID(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	record := &model.StrategyRecord{
		ListingID: "listing-1",
		BuyerID:   "buyer-1",
		Strategy:  testStrategy(),
		Narrative: "narrative",
	}
	require.NoError(t, store.SaveStrategy(ctx, record))

	draft := &model.Draft{StrategyID: record.ID, Provider: "anthropic", Content: "draft"}
	require.NoError(t, store.SaveDraft(ctx, draft))

	err := store.SaveDraft(ctx, draft)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)
}

func TestSaveDraft_RequiresStrategyID(t *testing.T) {
	store := setupTestStorage(t)

	err := store.SaveDraft(context.Background(), &model.Draft{Content: "orphan"})
	require.Error(t, err)
}
