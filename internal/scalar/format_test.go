package scalar

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

	tests := []struct {
		name string
		typ  Type
		v    any
		want string
	}{
		{"null", BigInt, nil, "null"},
		{"string", String, "John Doe", "John Doe"},
		{"bool", Bool, true, "true"},
		{"tinyint", TinyInt, int8(-3), "-3"},
		{"bigint", BigInt, int64(42), "42"},
		{"float", Float, float32(1.5), "1.5"},
		{"double", Double, 2.25, "2.25"},
		{"decimal", Decimal, decimal.RequireFromString("1.850"), "1.85"},
		{"date", Date, ts, "2024-03-09"},
		{"time", Time, ts, "14:05:07"},
		{"timestamp", Timestamp, ts, "2024-03-09T14:05:07"},
		{"timestamp tz", TimestampTZ, ts, "2024-03-09T14:05:07Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.typ, tt.v))
		})
	}
}
