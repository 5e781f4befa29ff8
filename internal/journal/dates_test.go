package journal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCompareDates(t *testing.T) {
	assert.Negative(t, CompareDates("2024-01-05", "2024-02-01"))
	assert.Positive(t, CompareDates("2025-01-01", "2024-12-31"))
	assert.Zero(t, CompareDates("2024-06-15", "2024-06-15"))
	// Surrounding whitespace is tolerated.
	assert.Zero(t, CompareDates(" 2024-06-15", "2024-06-15 "))
	// Malformed values fall back to string order.
	assert.Negative(t, CompareDates("", "2024-01-01"))
	assert.Positive(t, CompareDates("n/a", "2024-01-01"))
}

func TestDaysToExpiration(t *testing.T) {
	now := time.Date(2024, 5, 10, 15, 30, 0, 0, time.UTC)

	days, ok := DaysToExpiration("2024-05-17", now)
	assert.True(t, ok)
	assert.Equal(t, 7, days)

	days, ok = DaysToExpiration("2024-05-10", now)
	assert.True(t, ok)
	assert.Zero(t, days)

	days, ok = DaysToExpiration("2024-05-01", now)
	assert.True(t, ok)
	assert.Equal(t, -9, days)

	_, ok = DaysToExpiration("not-a-date", now)
	assert.False(t, ok)
}

func TestExpiringSoon(t *testing.T) {
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	assert.True(t, ExpiringSoon("2024-05-10", now, 7))
	assert.True(t, ExpiringSoon("2024-05-17", now, 7))
	assert.False(t, ExpiringSoon("2024-05-18", now, 7))
	// Already expired never warns.
	assert.False(t, ExpiringSoon("2024-05-09", now, 7))
	assert.False(t, ExpiringSoon("garbage", now, 7))
}
