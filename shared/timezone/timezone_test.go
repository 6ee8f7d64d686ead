package timezone_test

import (
	"testing"
	"time"

	"lodge/shared/timezone"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNowAndLocation(t *testing.T) {
	assert.False(t, timezone.Now().IsZero())
	assert.NotNil(t, timezone.GetLocation())
}

func TestParseDate(t *testing.T) {
	day, err := timezone.ParseDate("2024-01-10")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), day)
	assert.Equal(t, "2024-01-10", timezone.FormatDate(day))

	_, err = timezone.ParseDate("10/01/2024")
	assert.Error(t, err)
}

func TestDayDropsClock(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)
	lateEvening := time.Date(2024, 1, 10, 23, 30, 0, 0, jakarta)

	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), timezone.Day(lateEvening))
}
