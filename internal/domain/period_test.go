package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPeriod(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		p, err := NewPeriod(2024, "Q3")
		require.NoError(t, err)
		assert.Equal(t, Period{Year: 2024, Quarter: 3}, p)
	})

	t.Run("lowercase quarter label", func(t *testing.T) {
		p, err := NewPeriod(2023, "q1")
		require.NoError(t, err)
		assert.Equal(t, 1, p.Quarter)
	})

	t.Run("year below coverage", func(t *testing.T) {
		_, err := NewPeriod(2022, "Q1")
		assert.Error(t, err)
	})

	t.Run("year above coverage", func(t *testing.T) {
		_, err := NewPeriod(2026, "Q1")
		assert.Error(t, err)
	})

	t.Run("bad quarter label", func(t *testing.T) {
		_, err := NewPeriod(2024, "Q5")
		assert.Error(t, err)
	})
}

func TestPeriodString(t *testing.T) {
	p := Period{Year: 2024, Quarter: 3}
	assert.Equal(t, "2024 Q3", p.String())
	assert.Equal(t, "Q3", p.QuarterLabel())
}

func TestPeriodPrevious(t *testing.T) {
	assert.Equal(t, Period{Year: 2024, Quarter: 2}, Period{Year: 2024, Quarter: 3}.Previous())
	assert.Equal(t, Period{Year: 2023, Quarter: 4}, Period{Year: 2024, Quarter: 1}.Previous())
}

func TestPeriodDateRange(t *testing.T) {
	start, end := Period{Year: 2024, Quarter: 2}.DateRange()
	assert.Equal(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC), end)
}

func TestPeriodReportMonth(t *testing.T) {
	assert.Equal(t, "03", Period{Year: 2024, Quarter: 1}.ReportMonth())
	assert.Equal(t, "12", Period{Year: 2024, Quarter: 4}.ReportMonth())
}

func TestCurrentPeriod(t *testing.T) {
	assert.Equal(t, Period{Year: 2024, Quarter: 1}, CurrentPeriod(time.Date(2024, time.February, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, Period{Year: 2024, Quarter: 4}, CurrentPeriod(time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)))
}

func TestParsePeriod(t *testing.T) {
	cases := map[string]Period{
		"Q1 2024":                        {Year: 2024, Quarter: 1},
		"2024 Q1":                        {Year: 2024, Quarter: 1},
		"Q3-2023":                        {Year: 2023, Quarter: 3},
		"2023-Q3":                        {Year: 2023, Quarter: 3},
		"what happened in q2 2025 then?": {Year: 2025, Quarter: 2},
	}
	for input, want := range cases {
		p, err := ParsePeriod(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, p, input)
	}

	_, err := ParsePeriod("last quarter")
	assert.Error(t, err)
}

func TestYears(t *testing.T) {
	assert.Equal(t, []int{2023, 2024, 2025}, Years())
}
