// Package format holds the display and formatting helpers shared across the
// quote builder: euro amounts in the Dutch locale, itinerary dates, quote
// number generation and the search-input debouncer.
package format

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DateLayout is the ISO date form used for all itinerary dates.
const DateLayout = "2006-01-02"

var printer = message.NewPrinter(language.Dutch)

// Currency formats an amount as euros in the Dutch locale, e.g. "€ 1.250,50".
func Currency(amount float64) string {
	return printer.Sprintf("€ %v", number.Decimal(amount, number.Scale(2)))
}

var (
	weekdaysNL = [...]string{"zo", "ma", "di", "wo", "do", "vr", "za"}
	monthsNL   = [...]string{"jan", "feb", "mrt", "apr", "mei", "jun", "jul", "aug", "sep", "okt", "nov", "dec"}
)

// FormatDate renders t in the Dutch display form: "02-01-2006" for short,
// "vr 2 jan 2026" for long.
func FormatDate(t time.Time, long bool) string {
	if !long {
		return t.Format("02-01-2006")
	}
	return fmt.Sprintf("%s %d %s %d", weekdaysNL[t.Weekday()], t.Day(), monthsNL[t.Month()-1], t.Year())
}

// ParseDate parses an ISO date string.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// AddDays returns the ISO date n days after start.
func AddDays(start time.Time, n int) string {
	return start.AddDate(0, 0, n).Format(DateLayout)
}

// QuoteNumber generates a quote reference of the form QYYYYMM-NNNN.
func QuoteNumber(now time.Time) string {
	return fmt.Sprintf("Q%d%02d-%04d", now.Year(), int(now.Month()), rand.Intn(10000))
}

// DaysBetween returns the inclusive day count of [start, end]. It returns 0
// when end precedes start.
func DaysBetween(start, end time.Time) int {
	d := int(end.Sub(start).Hours()/24) + 1
	if d < 1 {
		return 0
	}
	return d
}

// Round2 rounds a money amount to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// LineTotal computes an item total from unit price and quantity.
func LineTotal(unitPrice float64, quantity int) float64 {
	return Round2(unitPrice * float64(quantity))
}

// Debounce returns a trigger that runs fn once wait has elapsed since the
// last call, collapsing bursts of calls into a single trailing invocation.
func Debounce(wait time.Duration, fn func()) func() {
	var mu sync.Mutex
	var timer *time.Timer
	return func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(wait, fn)
	}
}
