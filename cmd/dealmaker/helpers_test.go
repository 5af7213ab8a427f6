package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizmatch/dealmaker/internal/common"
)

func writeTempJSON(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadRawRecords(t *testing.T) {
	t.Run("array of records", func(t *testing.T) {
		path := writeTempJSON(t, `[{"id": "l-1", "asking_price": "$400,000"}, {"id": "l-2"}]`)

		records, err := loadRawRecords(path)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "l-1", records[0]["id"])
		assert.Equal(t, "$400,000", records[0]["asking_price"])
	})

	t.Run("single record", func(t *testing.T) {
		path := writeTempJSON(t, `{"id": "l-1", "industry": "plumbing"}`)

		records, err := loadRawRecords(path)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "plumbing", records[0]["industry"])
	})

	t.Run("invalid JSON", func(t *testing.T) {
		path := writeTempJSON(t, `not json`)

		_, err := loadRawRecords(path)
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadRawRecords(filepath.Join(t.TempDir(), "absent.json"))
		require.Error(t, err)
	})
}

func TestRecordID(t *testing.T) {
	tests := []struct {
		raw   map[string]any
		name  string
		want  string
		index int
	}{
		{name: "id field", raw: map[string]any{"id": "l-1"}, want: "l-1"},
		{name: "listing id field", raw: map[string]any{"listing_id": "l-2"}, want: "l-2"},
		{name: "buyer id field", raw: map[string]any{"buyer_id": "b-1"}, want: "b-1"},
		{name: "numeric id", raw: map[string]any{"id": 42.0}, want: "42"},
		{name: "id wins over listing id", raw: map[string]any{"id": "l-1", "listing_id": "l-2"}, want: "l-1"},
		{name: "empty id falls through", raw: map[string]any{"id": "", "listing_id": "l-3"}, want: "l-3"},
		{name: "no id synthesizes positional", raw: map[string]any{}, index: 4, want: "record-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, recordID(tt.raw, tt.index))
		})
	}
}

func TestSetupLogging(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("logging.level", "info")
	viper.Set("logging.format", "console")
	require.NoError(t, setupLogging())

	viper.Set("logging.level", "verbose")
	err := setupLogging()
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)

	viper.Set("logging.level", "info")
	viper.Set("logging.format", "xml")
	err = setupLogging()
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestPolicyFromConfig(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	defaults := policyFromConfig()
	assert.InDelta(t, 5, defaults.GapTightPct, 0.001)
	assert.Equal(t, 24, defaults.BridgeMonths)

	viper.Set("policy.gap_tight_pct", 3.0)
	viper.Set("policy.bridge_months", 18)

	overridden := policyFromConfig()
	assert.InDelta(t, 3, overridden.GapTightPct, 0.001)
	assert.Equal(t, 18, overridden.BridgeMonths)
	// Untouched constants keep their defaults.
	assert.InDelta(t, 15, overridden.GapModeratePct, 0.001)
	assert.Equal(t, 36, overridden.MinConversionMonths)
}
