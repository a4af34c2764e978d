package utils

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberUnmarshal(t *testing.T) {
	tests := []struct {
		in    string
		set   bool
		value float64
	}{
		{`10.5`, true, 10.5},
		{`"10.5"`, true, 10.5},
		{`" 7 "`, true, 7},
		{`0`, true, 0},
		{`""`, false, 0},
		{`null`, false, 0},
		{`-3`, true, -3},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var body struct {
				N Number `json:"n"`
			}
			require.NoError(t, json.Unmarshal([]byte(`{"n":`+tt.in+`}`), &body))
			assert.Equal(t, tt.set, body.N.Set)
			assert.Equal(t, tt.value, body.N.Float())
		})
	}
}

func TestNumberRejectsGarbage(t *testing.T) {
	var n Number
	assert.Error(t, json.Unmarshal([]byte(`"ten"`), &n))
	assert.Error(t, json.Unmarshal([]byte(`true`), &n))
}

func TestNumberMissingFieldStaysUnset(t *testing.T) {
	var body struct {
		N Number `json:"n"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{}`), &body))
	assert.False(t, body.N.Set)
	assert.Equal(t, 10.0, body.N.FloatOr(10))
}

func TestNumberUint(t *testing.T) {
	id, ok := NewNumber(3).Uint()
	assert.True(t, ok)
	assert.Equal(t, uint(3), id)

	_, ok = NewNumber(2.5).Uint()
	assert.False(t, ok)
	_, ok = NewNumber(0).Uint()
	assert.False(t, ok)
	_, ok = Number{}.Uint()
	assert.False(t, ok)

	big, err := ParseNumber("4294967296")
	require.NoError(t, err)
	_, ok = big.Uint()
	assert.False(t, ok)

	wraps := Number{Value: decimal.RequireFromString("18446744073709551617"), Set: true}
	_, ok = wraps.Uint()
	assert.False(t, ok)

	id, ok = NewNumber(math.MaxUint32).Uint()
	assert.True(t, ok)
	assert.Equal(t, uint(math.MaxUint32), id)
}

func TestNumberOutOfRange(t *testing.T) {
	for _, in := range []string{"1e400", "-1e400", "1000000000000000", `"1e16"`} {
		t.Run(in, func(t *testing.T) {
			var n Number
			assert.Error(t, json.Unmarshal([]byte(in), &n))
		})
	}

	n, err := ParseNumber("999999999999999")
	require.NoError(t, err)
	assert.False(t, math.IsInf(n.Float(), 0))
}

func TestNumberRound(t *testing.T) {
	n, err := ParseNumber("0.004")
	require.NoError(t, err)
	assert.True(t, n.Round(2).Value.IsZero())
	assert.Equal(t, 1.235, NewNumber(1.2345).Round(3).Float())
	assert.False(t, Number{}.Round(2).Set)
}

func TestParseNumber(t *testing.T) {
	n, err := ParseNumber(" 12.50 ")
	require.NoError(t, err)
	assert.Equal(t, 12.5, n.Float())

	n, err = ParseNumber("")
	require.NoError(t, err)
	assert.False(t, n.Set)

	_, err = ParseNumber("12,5")
	assert.Error(t, err)
}
