package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testSchema() Schema {
	return Schema{
		"fast_period": {Type: TypeInt, Default: 12, Min: Bound(1), Max: Bound(100), Description: "Fast EMA period"},
		"slow_period": {Type: TypeInt, Default: 26, Min: Bound(2), Max: Bound(200), Description: "Slow EMA period"},
		"threshold":   {Type: TypeFloat, Min: Bound(0), Max: Bound(1)},
		"mode":        {Type: TypeString, Default: "standard", Options: []string{"standard", "optimized"}},
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name      string
		values    map[string]any
		wantParam string // empty means valid
	}{
		{
			name:   "all defaults satisfied",
			values: map[string]any{"threshold": 0.5},
		},
		{
			name:      "missing value without default",
			values:    map[string]any{},
			wantParam: "threshold",
		},
		{
			name:      "int rejects fractional float",
			values:    map[string]any{"fast_period": 12.5, "threshold": 0.5},
			wantParam: "fast_period",
		},
		{
			name:   "int accepts integral float",
			values: map[string]any{"fast_period": 12.0, "threshold": 0.5},
		},
		{
			name:   "float accepts integer value",
			values: map[string]any{"threshold": 1},
		},
		{
			name:      "below min",
			values:    map[string]any{"fast_period": 0, "threshold": 0.5},
			wantParam: "fast_period",
		},
		{
			name:      "above max",
			values:    map[string]any{"slow_period": 500, "threshold": 0.5},
			wantParam: "slow_period",
		},
		{
			name:      "string outside options",
			values:    map[string]any{"mode": "turbo", "threshold": 0.5},
			wantParam: "mode",
		},
		{
			name:      "wrong type for string",
			values:    map[string]any{"mode": 3, "threshold": 0.5},
			wantParam: "mode",
		},
		{
			name:   "unknown keys are ignored",
			values: map[string]any{"threshold": 0.5, "mystery": "ignored", "extra": 42},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(testSchema(), tc.values)
			if tc.wantParam == "" {
				assert.NoError(t, err)
				return
			}
			var vErr *ValidationError
			assert.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.wantParam, vErr.Param)
		})
	}
}

func TestValidateIsPure(t *testing.T) {
	s := testSchema()
	values := map[string]any{"fast_period": 9, "threshold": 0.25}

	first := Validate(s, values)
	second := Validate(s, values)

	assert.Equal(t, first, second)
	assert.Len(t, values, 2, "values must not be mutated")
	assert.Equal(t, 9, values["fast_period"])
}

func TestDefaults(t *testing.T) {
	defaults := Defaults(testSchema())

	assert.Equal(t, map[string]any{
		"fast_period": 12,
		"slow_period": 26,
		"mode":        "standard",
	}, defaults)
	assert.NotContains(t, defaults, "threshold", "entries without a default are omitted")
}

func TestValueExtraction(t *testing.T) {
	values := map[string]any{"fast_period": 12.0, "cash": 1000.5, "mode": "standard"}

	n, err := IntValue(values, "fast_period")
	assert.NoError(t, err)
	assert.Equal(t, 12, n)

	f, err := FloatValue(values, "cash")
	assert.NoError(t, err)
	assert.InDelta(t, 1000.5, f, 1e-12)

	s, err := StringValue(values, "mode")
	assert.NoError(t, err)
	assert.Equal(t, "standard", s)

	_, err = IntValue(values, "missing")
	assert.Error(t, err)
}
