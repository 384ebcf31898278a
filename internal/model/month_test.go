package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2024-05")
	require.NoError(t, err)
	assert.Equal(t, Month{Year: 2024, Month: time.May}, m)
	assert.Equal(t, "2024-05", m.String())

	_, err = ParseMonth("05-2024")
	assert.Error(t, err)
	_, err = ParseMonth("2024-13")
	assert.Error(t, err)
}

func TestMonthPrevNext(t *testing.T) {
	jan := Month{Year: 2024, Month: time.January}
	assert.Equal(t, Month{Year: 2023, Month: time.December}, jan.Prev())

	dec := Month{Year: 2024, Month: time.December}
	assert.Equal(t, Month{Year: 2025, Month: time.January}, dec.Next())

	may := Month{Year: 2024, Month: time.May}
	assert.Equal(t, may, may.Prev().Next())
}

func TestMonthDays(t *testing.T) {
	assert.Equal(t, 29, Month{Year: 2024, Month: time.February}.Days())
	assert.Equal(t, 28, Month{Year: 2023, Month: time.February}.Days())
	assert.Equal(t, 31, Month{Year: 2024, Month: time.May}.Days())
	assert.Equal(t, 30, Month{Year: 2024, Month: time.June}.Days())
}

func TestMonthContains(t *testing.T) {
	may := Month{Year: 2024, Month: time.May}

	assert.True(t, may.Contains(time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, may.Contains(time.Date(2024, time.May, 31, 23, 59, 59, 0, time.UTC)))
	assert.False(t, may.Contains(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, may.Contains(time.Date(2024, time.April, 30, 23, 59, 59, 0, time.UTC)))
}
