package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptional_KnownAndUnknown(t *testing.T) {
	known := Known(42.5)
	assert.True(t, known.IsKnown())

	v, ok := known.Value()
	assert.True(t, ok)
	assert.InDelta(t, 42.5, v, 0.0001)
	assert.InDelta(t, 42.5, known.Or(0), 0.0001)

	unknown := Unknown[float64]()
	assert.False(t, unknown.IsKnown())

	_, ok = unknown.Value()
	assert.False(t, ok)
	assert.InDelta(t, 7, unknown.Or(7), 0.0001)
}

func TestOptional_ZeroValueIsUnknown(t *testing.T) {
	var o Optional[float64]
	assert.False(t, o.IsKnown())
}

func TestOptional_JSONRoundTrip(t *testing.T) {
	type payload struct {
		Price Optional[float64] `json:"price"`
		Down  Optional[bool]    `json:"down"`
	}

	tests := []struct {
		name string
		in   payload
		want string
	}{
		{
			name: "known values",
			in:   payload{Price: Known(400000.0), Down: Known(true)},
			want: `{"price":400000,"down":true}`,
		},
		{
			name: "unknown values encode as null",
			in:   payload{},
			want: `{"price":null,"down":null}`,
		},
		{
			name: "known zero is not null",
			in:   payload{Price: Known(0.0)},
			want: `{"price":0,"down":null}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.in)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))

			var back payload
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, tt.in, back)
		})
	}
}

func TestOptional_String(t *testing.T) {
	assert.Equal(t, "unknown", Unknown[float64]().String())
	assert.Equal(t, "12.5", Known(12.5).String())
}
