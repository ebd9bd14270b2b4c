package repository

import (
	"testing"
	"time"

	recdomain "github.com/cenergia/mercado/internal/records/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeStored_Dates(t *testing.T) {
	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	for _, stored := range []any{
		want,
		"2024-03-01",
		"2024-03-01 00:00:00",
		"2024-03-01T00:00:00Z",
		"2024-03-01T00:00:00.000000000Z",
		[]byte("2024-03-01"),
	} {
		got, err := NormalizeStored(recdomain.KindDate, stored)
		require.NoError(t, err, "%v", stored)
		assert.True(t, recdomain.SameDay(want, got.(time.Time)), "%v", stored)
	}

	_, err := NormalizeStored(recdomain.KindDate, "not a date")
	require.Error(t, err)
}

func TestNormalizeStored_Numbers(t *testing.T) {
	for _, stored := range []any{int64(42), 42, int32(42), float64(42), "42", []byte("42")} {
		got, err := NormalizeStored(recdomain.KindInt, stored)
		require.NoError(t, err, "%T", stored)
		assert.Equal(t, int64(42), got, "%T", stored)
	}

	want := decimal.RequireFromString("12.5")
	for _, stored := range []any{float64(12.5), "12.5", []byte("12.5")} {
		got, err := NormalizeStored(recdomain.KindDecimal, stored)
		require.NoError(t, err, "%T", stored)
		assert.True(t, want.Equal(got.(decimal.Decimal)), "%T", stored)
	}
}

func TestNormalizeStored_Nil(t *testing.T) {
	got, err := NormalizeStored(recdomain.KindDecimal, nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}
