package format

import (
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrencyDutchLocale(t *testing.T) {
	assert.Equal(t, "€ 0,00", Currency(0))
	assert.Equal(t, "€ 12,50", Currency(12.5))
	assert.Equal(t, "€ 1.250,50", Currency(1250.5))
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC) // a Friday
	assert.Equal(t, "02-01-2026", FormatDate(d, false))
	assert.Equal(t, "vr 2 jan 2026", FormatDate(d, true))
}

func TestQuoteNumberShape(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	n := QuoteNumber(now)
	require.Len(t, n, 12)
	assert.True(t, strings.HasPrefix(n, "Q202608-"), n)
}

func TestDaysBetween(t *testing.T) {
	start, err := ParseDate("2025-06-01")
	require.NoError(t, err)
	end, err := ParseDate("2025-06-03")
	require.NoError(t, err)

	assert.Equal(t, 3, DaysBetween(start, end))
	assert.Equal(t, 1, DaysBetween(start, start))
	assert.Equal(t, 0, DaysBetween(end, start))
}

func TestAddDays(t *testing.T) {
	start, _ := ParseDate("2025-06-01")
	assert.Equal(t, "2025-06-01", AddDays(start, 0))
	assert.Equal(t, "2025-06-03", AddDays(start, 2))
}

func TestLineTotalRounds(t *testing.T) {
	assert.Equal(t, 0.3, LineTotal(0.1, 3))
	assert.Equal(t, 241.5, LineTotal(80.5, 3))
	assert.Equal(t, 0.0, LineTotal(19.99, 0))
}

func TestDebounceCollapsesBursts(t *testing.T) {
	var calls int32
	trigger := Debounce(20*time.Millisecond, func() { atomic.AddInt32(&calls, 1) })

	for i := 0; i < 5; i++ {
		trigger()
	}
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	trigger()
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
