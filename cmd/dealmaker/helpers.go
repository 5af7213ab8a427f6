package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/bizmatch/dealmaker/internal/common"
	"github.com/bizmatch/dealmaker/internal/config"
	"github.com/bizmatch/dealmaker/internal/deal"
	"github.com/bizmatch/dealmaker/internal/llm"
	"github.com/bizmatch/dealmaker/internal/service"
	"github.com/bizmatch/dealmaker/internal/storage"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, common.NewUserError("failed to open database at "+dbPath, err)
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, common.NewUserError("failed to run database migrations", err)
	}

	return store, nil
}

// policyFromConfig overlays configured structuring constants on the
// documented defaults.
func policyFromConfig() deal.Policy {
	p := deal.DefaultPolicy()

	keys := map[string]*float64{
		"policy.gap_tight_pct":         &p.GapTightPct,
		"policy.gap_moderate_pct":      &p.GapModeratePct,
		"policy.bridge_shortfall_pct":  &p.BridgeShortfallPct,
		"policy.equity_credit_share":   &p.EquityCreditShare,
		"policy.equity_credit_cap_pct": &p.EquityCreditCapPct,
	}
	for key, target := range keys {
		if viper.IsSet(key) {
			*target = viper.GetFloat64(key)
		}
	}

	intKeys := map[string]*int{
		"policy.bridge_months":         &p.BridgeMonths,
		"policy.balloon_at_month":      &p.BalloonAtMonth,
		"policy.extension_months":      &p.ExtensionMonths,
		"policy.min_conversion_months": &p.MinConversionMonths,
	}
	for key, target := range intKeys {
		if viper.IsSet(key) {
			*target = viper.GetInt(key)
		}
	}

	return p
}

// llmConfig assembles the drafting configuration from viper.
func llmConfig() llm.Config {
	return llm.Config{
		Provider:    viper.GetString("llm.provider"),
		APIKey:      viper.GetString("llm.api_key"),
		Model:       viper.GetString("llm.model"),
		MaxRetries:  viper.GetInt("llm.max_retries"),
		RetryDelay:  viper.GetDuration("llm.retry_delay"),
		RateLimit:   viper.GetInt("llm.rate_limit"),
		Temperature: viper.GetFloat64("llm.temperature"),
		MaxTokens:   viper.GetInt("llm.max_tokens"),
		CacheTTL:    viper.GetDuration("llm.cache_ttl"),
	}
}

// loadRawRecords reads a JSON file holding either one raw record or an
// array of them.
func loadRawRecords(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-supplied import path
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var records []map[string]any
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}

	var single map[string]any
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("failed to parse %s as a record or record array: %w", path, err)
	}
	return []map[string]any{single}, nil
}

// recordID extracts an identifier from a raw record, or synthesizes a
// positional one for files that carry none.
func recordID(raw map[string]any, index int) string {
	for _, key := range []string{"id", "listing_id", "buyer_id"} {
		if v, ok := raw[key]; ok {
			switch id := v.(type) {
			case string:
				if id != "" {
					return id
				}
			case float64:
				return fmt.Sprintf("%.0f", id)
			}
		}
	}
	return fmt.Sprintf("record-%d", index+1)
}
