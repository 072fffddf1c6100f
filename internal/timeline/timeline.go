// Package timeline orchestrates the day/item model of one quote: day
// creation and deletion, item insertion from drag-drop or catalog clicks,
// and the running totals ledger.
//
// Totals are maintained incrementally: every item mutation adjusts the owning
// day's running sum and the quote total arithmetically and persists both, so
// no mutation triggers a full refetch. Reconcile restores the ledger from the
// record store when drift is suspected.
package timeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmcsuite/quotebuilder/internal/format"
	"github.com/dmcsuite/quotebuilder/internal/models"
	"github.com/dmcsuite/quotebuilder/internal/notify"
	"github.com/dmcsuite/quotebuilder/internal/records"
)

var (
	ErrQuoteNotFound  = errors.New("quote not found")
	ErrDayNotFound    = errors.New("day not found")
	ErrItemNotFound   = errors.New("item not found")
	ErrNoDays         = errors.New("quote has no days")
	ErrInvalidPayload = errors.New("invalid item payload")
)

// ItemPayload is the normalized insertion payload. Its field names mirror the
// serialized catalog record carried by a drag event, so a drop body decodes
// straight into it.
type ItemPayload struct {
	ID           uint    // catalog entry ID, used for usage tracking
	ItemType     string  `json:"itemType"`
	ItemSource   string  `json:"itemSource"`
	Name         string
	Title        string
	Description  string
	StartTime    string
	EndTime      string
	StandardRate float64
	Price        float64
	Quantity     int
}

// DayPatch carries a partial day update; nil fields are left untouched.
type DayPatch struct {
	DayTitle *string `json:"day_title"`
	DayDate  *string `json:"day_date"`
	DayNotes *string `json:"day_notes"`
}

// ItemUpdate carries the full edit-modal field set. TotalPrice is always
// recomputed server-side from UnitPrice and Quantity; a submitted total is
// ignored.
type ItemUpdate struct {
	ItemName    string  `json:"item_name"`
	Description string  `json:"description"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
}

// Timeline is the per-quote session. All methods serialize on the session
// mutex, so concurrent edits against the same quote cannot interleave.
type Timeline struct {
	mu       sync.Mutex
	store    *records.Store
	notifier *notify.Queue

	quote      models.Quote
	days       []models.QuoteDay // ascending by DayNumber
	dayTotals  map[uint]float64  // ledger, keyed by day ID
	quoteTotal float64
}

func newTimeline(store *records.Store, notifier *notify.Queue) *Timeline {
	return &Timeline{store: store, notifier: notifier, dayTotals: make(map[uint]float64)}
}

// load fetches the quote, its days sorted ascending by day number, and seeds
// the ledger from the items actually on record.
func (t *Timeline) load(ctx context.Context, quoteID uint) error {
	var quotes []models.Quote
	t.store.Fetch(ctx, records.CollectionQuote, fmt.Sprintf("ID == %d", quoteID), &quotes)
	if len(quotes) == 0 {
		return fmt.Errorf("load quote %d: %w", quoteID, ErrQuoteNotFound)
	}
	t.quote = quotes[0]

	var days []models.QuoteDay
	t.store.Fetch(ctx, records.CollectionQuoteDays, fmt.Sprintf("QuoteID == %d", quoteID), &days)
	sort.Slice(days, func(i, j int) bool { return days[i].DayNumber < days[j].DayNumber })
	t.days = days

	t.dayTotals = make(map[uint]float64, len(days))
	t.quoteTotal = 0
	for i := range t.days {
		sum := t.sumItems(ctx, t.days[i].ID)
		t.dayTotals[t.days[i].ID] = sum
		t.days[i].DayTotal = sum
		t.quoteTotal = format.Round2(t.quoteTotal + sum)
	}
	return nil
}

func (t *Timeline) sumItems(ctx context.Context, dayID uint) float64 {
	var items []models.QuoteItem
	t.store.Fetch(ctx, records.CollectionQuoteItems, fmt.Sprintf("DayID == %d", dayID), &items)
	var sum float64
	for _, it := range items {
		sum += it.TotalPrice
	}
	return format.Round2(sum)
}

// Quote returns the cached quote projection with the ledger total applied.
func (t *Timeline) Quote() models.Quote {
	t.mu.Lock()
	defer t.mu.Unlock()
	q := t.quote
	q.TotalAmount = t.quoteTotal
	return q
}

// Days returns the ordered day list with ledger totals applied.
func (t *Timeline) Days() []models.QuoteDay {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.QuoteDay, len(t.days))
	copy(out, t.days)
	return out
}

// LastDay returns the chronologically last day, the insertion target for
// catalog click-to-add.
func (t *Timeline) LastDay() (models.QuoteDay, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.days) == 0 {
		return models.QuoteDay{}, false
	}
	return t.days[len(t.days)-1], true
}

// DaySeed overrides AddDay defaults; zero fields fall back.
type DaySeed struct {
	DayNumber int    `json:"day_number"`
	DayDate   string `json:"day_date"`
	DayTitle  string `json:"day_title"`
	DayNotes  string `json:"day_notes"`
}

// AddDay appends a new day. The default day number is max(existing)+1, never
// a backfilled gap, so numbers stay stable across deletions.
func (t *Timeline) AddDay(ctx context.Context, seed *DaySeed) (models.QuoteDay, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.addDayLocked(ctx, seed)
}

func (t *Timeline) addDayLocked(ctx context.Context, seed *DaySeed) (models.QuoteDay, error) {
	number := t.nextDayNumber()
	day := models.QuoteDay{
		QuoteID:   t.quote.ID,
		DayNumber: number,
		DayTitle:  fmt.Sprintf("Day %d", number),
		DayDate:   t.defaultDayDate(number),
	}
	if seed != nil {
		if seed.DayNumber > 0 {
			day.DayNumber = seed.DayNumber
		}
		if seed.DayDate != "" {
			day.DayDate = seed.DayDate
		}
		if seed.DayTitle != "" {
			day.DayTitle = seed.DayTitle
		}
		day.DayNotes = seed.DayNotes
	}
	if err := t.store.Create(ctx, records.CollectionQuoteDays, &day); err != nil {
		t.notifier.Push(notify.LevelError, "Failed to add day")
		return models.QuoteDay{}, err
	}
	t.days = append(t.days, day)
	sort.Slice(t.days, func(i, j int) bool { return t.days[i].DayNumber < t.days[j].DayNumber })
	t.dayTotals[day.ID] = 0
	return day, nil
}

func (t *Timeline) nextDayNumber() int {
	maxNum := 0
	for _, d := range t.days {
		if d.DayNumber > maxNum {
			maxNum = d.DayNumber
		}
	}
	return maxNum + 1
}

func (t *Timeline) defaultDayDate(number int) string {
	if start, err := format.ParseDate(t.quote.StartDate); err == nil {
		return format.AddDays(start, number-1)
	}
	return format.AddDays(time.Now(), number-1)
}

// GenerateDays replaces the quote's entire day set with one day per date in
// the inclusive [startDate, endDate] range, numbered 1..N. The previous days
// and their items are removed in a single transaction before the new set is
// created sequentially.
func (t *Timeline) GenerateDays(ctx context.Context, startDate, endDate string) ([]models.QuoteDay, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	start, err := format.ParseDate(startDate)
	if err != nil {
		return nil, fmt.Errorf("%w: start date %q", ErrInvalidPayload, startDate)
	}
	end, err := format.ParseDate(endDate)
	if err != nil {
		return nil, fmt.Errorf("%w: end date %q", ErrInvalidPayload, endDate)
	}
	count := format.DaysBetween(start, end)
	if count == 0 {
		return nil, fmt.Errorf("%w: end date before start date", ErrInvalidPayload)
	}

	if err := t.clearDaysLocked(ctx); err != nil {
		t.notifier.Push(notify.LevelError, "Failed to generate days")
		return nil, err
	}

	for i := 0; i < count; i++ {
		seed := &DaySeed{
			DayNumber: i + 1,
			DayDate:   format.AddDays(start, i),
			DayTitle:  fmt.Sprintf("Day %d", i+1),
		}
		if _, err := t.addDayLocked(ctx, seed); err != nil {
			return nil, fmt.Errorf("generate day %d: %w", i+1, err)
		}
	}

	t.quote.StartDate = startDate
	t.quote.EndDate = endDate
	t.quote.TotalDays = count
	if err := t.store.Update(ctx, records.CollectionQuote, t.quote.ID, map[string]any{
		"StartDate": startDate, "EndDate": endDate, "TotalDays": count, "TotalAmount": 0.0,
	}); err != nil {
		return nil, err
	}
	out := make([]models.QuoteDay, len(t.days))
	copy(out, t.days)
	return out, nil
}

// clearDaysLocked removes every day and item of the quote in one transaction
// and zeroes the ledger.
func (t *Timeline) clearDaysLocked(ctx context.Context) error {
	err := t.store.Transaction(func(tx *records.Store) error {
		for _, d := range t.days {
			if _, err := tx.DeleteWhere(ctx, records.CollectionQuoteItems, fmt.Sprintf("DayID == %d", d.ID)); err != nil {
				return err
			}
		}
		if _, err := tx.DeleteWhere(ctx, records.CollectionQuoteDays, fmt.Sprintf("QuoteID == %d", t.quote.ID)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("clear days for quote %d: %w", t.quote.ID, err)
	}
	t.days = nil
	t.dayTotals = make(map[uint]float64)
	t.quoteTotal = 0
	return nil
}

// RemoveDay deletes a day and every item it owns in a single transaction.
// Confirmation is the handler's concern; by the time this runs the operation
// is approved.
func (t *Timeline) RemoveDay(ctx context.Context, dayID uint) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx := t.dayIndex(dayID)
	if idx < 0 {
		return fmt.Errorf("remove day %d: %w", dayID, ErrDayNotFound)
	}
	err := t.store.Transaction(func(tx *records.Store) error {
		if _, err := tx.DeleteWhere(ctx, records.CollectionQuoteItems, fmt.Sprintf("DayID == %d", dayID)); err != nil {
			return err
		}
		return tx.Delete(ctx, records.CollectionQuoteDays, dayID)
	})
	if err != nil {
		t.notifier.Push(notify.LevelError, "Failed to remove day")
		return err
	}

	t.quoteTotal = format.Round2(t.quoteTotal - t.dayTotals[dayID])
	delete(t.dayTotals, dayID)
	t.days = append(t.days[:idx], t.days[idx+1:]...)
	if err := t.persistQuoteTotalLocked(ctx); err != nil {
		return err
	}
	t.notifier.Push(notify.LevelSuccess, fmt.Sprintf("Day removed, %d days left", len(t.days)))
	return nil
}

// UpdateDay applies a partial update and mutates the cached copy in place.
func (t *Timeline) UpdateDay(ctx context.Context, dayID uint, patch DayPatch) (models.QuoteDay, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx := t.dayIndex(dayID)
	if idx < 0 {
		return models.QuoteDay{}, fmt.Errorf("update day %d: %w", dayID, ErrDayNotFound)
	}
	fields := map[string]any{}
	if patch.DayTitle != nil {
		fields["DayTitle"] = *patch.DayTitle
	}
	if patch.DayDate != nil {
		fields["DayDate"] = *patch.DayDate
	}
	if patch.DayNotes != nil {
		fields["DayNotes"] = *patch.DayNotes
	}
	if len(fields) == 0 {
		return t.days[idx], nil
	}
	if err := t.store.Update(ctx, records.CollectionQuoteDays, dayID, fields); err != nil {
		t.notifier.Push(notify.LevelError, "Failed to update day")
		return models.QuoteDay{}, err
	}
	if patch.DayTitle != nil {
		t.days[idx].DayTitle = *patch.DayTitle
	}
	if patch.DayDate != nil {
		t.days[idx].DayDate = *patch.DayDate
	}
	if patch.DayNotes != nil {
		t.days[idx].DayNotes = *patch.DayNotes
	}
	return t.days[idx], nil
}

// AddItemToDay normalizes an insertion payload into an item record, persists
// it, and applies the ledger delta. The total price is computed exactly once
// here, from unit price and quantity.
func (t *Timeline) AddItemToDay(ctx context.Context, dayID uint, payload ItemPayload) (models.QuoteItem, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.dayIndex(dayID) < 0 {
		return models.QuoteItem{}, fmt.Errorf("add item to day %d: %w", dayID, ErrDayNotFound)
	}
	item, err := normalizeItem(dayID, payload)
	if err != nil {
		return models.QuoteItem{}, err
	}
	if err := t.store.Create(ctx, records.CollectionQuoteItems, &item); err != nil {
		t.notifier.Push(notify.LevelError, "Failed to add item to day")
		return models.QuoteItem{}, err
	}
	if err := t.applyDayDeltaLocked(ctx, dayID, item.TotalPrice); err != nil {
		return models.QuoteItem{}, err
	}
	return item, nil
}

func normalizeItem(dayID uint, p ItemPayload) (models.QuoteItem, error) {
	name := p.Name
	if name == "" {
		name = p.Title
	}
	if strings.TrimSpace(name) == "" {
		return models.QuoteItem{}, fmt.Errorf("%w: missing name", ErrInvalidPayload)
	}
	if !models.ValidItemType(p.ItemType) {
		return models.QuoteItem{}, fmt.Errorf("%w: item type %q", ErrInvalidPayload, p.ItemType)
	}
	source := p.ItemSource
	if source == "" {
		source = models.SourceCatalog
	}
	if source != models.SourceCatalog && source != models.SourceAPI {
		return models.QuoteItem{}, fmt.Errorf("%w: item source %q", ErrInvalidPayload, p.ItemSource)
	}
	price := p.StandardRate
	if price == 0 {
		price = p.Price
	}
	if price < 0 {
		return models.QuoteItem{}, fmt.Errorf("%w: negative unit price", ErrInvalidPayload)
	}
	qty := p.Quantity
	if qty < 1 {
		qty = 1
	}
	return models.QuoteItem{
		DayID:       dayID,
		ItemType:    p.ItemType,
		ItemSource:  source,
		ItemName:    name,
		Description: p.Description,
		StartTime:   p.StartTime,
		EndTime:     p.EndTime,
		UnitPrice:   price,
		Quantity:    qty,
		TotalPrice:  format.LineTotal(price, qty),
	}, nil
}

// UpdateItem persists the full edit field set with a recomputed total and
// applies the ledger delta against the previous total.
func (t *Timeline) UpdateItem(ctx context.Context, itemID uint, upd ItemUpdate) (models.QuoteItem, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	old, err := t.fetchItemLocked(ctx, itemID)
	if err != nil {
		return models.QuoteItem{}, err
	}
	if upd.Quantity < 1 {
		return models.QuoteItem{}, fmt.Errorf("%w: quantity below 1", ErrInvalidPayload)
	}
	if upd.UnitPrice < 0 {
		return models.QuoteItem{}, fmt.Errorf("%w: negative unit price", ErrInvalidPayload)
	}
	if strings.TrimSpace(upd.ItemName) == "" {
		return models.QuoteItem{}, fmt.Errorf("%w: missing name", ErrInvalidPayload)
	}
	total := format.LineTotal(upd.UnitPrice, upd.Quantity)
	fields := map[string]any{
		"ItemName":    upd.ItemName,
		"Description": upd.Description,
		"StartTime":   upd.StartTime,
		"EndTime":     upd.EndTime,
		"UnitPrice":   upd.UnitPrice,
		"Quantity":    upd.Quantity,
		"TotalPrice":  total,
	}
	if err := t.store.Update(ctx, records.CollectionQuoteItems, itemID, fields); err != nil {
		t.notifier.Push(notify.LevelError, "Failed to update item")
		return models.QuoteItem{}, err
	}
	if err := t.applyDayDeltaLocked(ctx, old.DayID, format.Round2(total-old.TotalPrice)); err != nil {
		return models.QuoteItem{}, err
	}
	old.ItemName = upd.ItemName
	old.Description = upd.Description
	old.StartTime = upd.StartTime
	old.EndTime = upd.EndTime
	old.UnitPrice = upd.UnitPrice
	old.Quantity = upd.Quantity
	old.TotalPrice = total
	return old, nil
}

// RemoveItem deletes one item and applies the ledger delta.
func (t *Timeline) RemoveItem(ctx context.Context, itemID uint) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	item, err := t.fetchItemLocked(ctx, itemID)
	if err != nil {
		return err
	}
	if err := t.store.Delete(ctx, records.CollectionQuoteItems, itemID); err != nil {
		t.notifier.Push(notify.LevelError, "Failed to delete item")
		return err
	}
	return t.applyDayDeltaLocked(ctx, item.DayID, -item.TotalPrice)
}

// MoveItem reassigns an item to another day (drag between day containers)
// and shifts its total from the source ledger to the target ledger.
func (t *Timeline) MoveItem(ctx context.Context, itemID, toDayID uint) (models.QuoteItem, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.dayIndex(toDayID) < 0 {
		return models.QuoteItem{}, fmt.Errorf("move item to day %d: %w", toDayID, ErrDayNotFound)
	}
	item, err := t.fetchItemLocked(ctx, itemID)
	if err != nil {
		return models.QuoteItem{}, err
	}
	if item.DayID == toDayID {
		return item, nil
	}
	if err := t.store.Update(ctx, records.CollectionQuoteItems, itemID, map[string]any{"DayID": toDayID}); err != nil {
		t.notifier.Push(notify.LevelError, "Failed to move item")
		return models.QuoteItem{}, err
	}
	fromDayID := item.DayID
	if err := t.applyDayDeltaLocked(ctx, fromDayID, -item.TotalPrice); err != nil {
		return models.QuoteItem{}, err
	}
	if err := t.applyDayDeltaLocked(ctx, toDayID, item.TotalPrice); err != nil {
		return models.QuoteItem{}, err
	}
	item.DayID = toDayID
	return item, nil
}

func (t *Timeline) fetchItemLocked(ctx context.Context, itemID uint) (models.QuoteItem, error) {
	var items []models.QuoteItem
	t.store.Fetch(ctx, records.CollectionQuoteItems, fmt.Sprintf("ID == %d", itemID), &items)
	if len(items) == 0 {
		return models.QuoteItem{}, fmt.Errorf("item %d: %w", itemID, ErrItemNotFound)
	}
	return items[0], nil
}

// applyDayDeltaLocked adjusts the day and quote running sums by delta and
// persists both derived totals. Day not present in the ledger is a staleness
// bug, surfaced instead of silently ignored.
func (t *Timeline) applyDayDeltaLocked(ctx context.Context, dayID uint, delta float64) error {
	idx := t.dayIndex(dayID)
	if idx < 0 {
		return fmt.Errorf("ledger day %d: %w", dayID, ErrDayNotFound)
	}
	t.dayTotals[dayID] = format.Round2(t.dayTotals[dayID] + delta)
	t.days[idx].DayTotal = t.dayTotals[dayID]
	t.quoteTotal = format.Round2(t.quoteTotal + delta)

	if err := t.store.Update(ctx, records.CollectionQuoteDays, dayID, map[string]any{"DayTotal": t.dayTotals[dayID]}); err != nil {
		return err
	}
	return t.persistQuoteTotalLocked(ctx)
}

func (t *Timeline) persistQuoteTotalLocked(ctx context.Context) error {
	t.quote.TotalAmount = t.quoteTotal
	return t.store.Update(ctx, records.CollectionQuote, t.quote.ID, map[string]any{"TotalAmount": t.quoteTotal})
}

// Reconcile rebuilds the ledger from the record store and persists any total
// that drifted. It is the periodic/explicit counterpart to the arithmetic
// updates.
func (t *Timeline) Reconcile(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var days []models.QuoteDay
	t.store.Fetch(ctx, records.CollectionQuoteDays, fmt.Sprintf("QuoteID == %d", t.quote.ID), &days)
	sort.Slice(days, func(i, j int) bool { return days[i].DayNumber < days[j].DayNumber })

	totals := make(map[uint]float64, len(days))
	var quoteTotal float64
	for i := range days {
		sum := t.sumItems(ctx, days[i].ID)
		totals[days[i].ID] = sum
		quoteTotal = format.Round2(quoteTotal + sum)
		if sum != days[i].DayTotal {
			if err := t.store.Update(ctx, records.CollectionQuoteDays, days[i].ID, map[string]any{"DayTotal": sum}); err != nil {
				return err
			}
		}
		days[i].DayTotal = sum
	}
	t.days = days
	t.dayTotals = totals
	if quoteTotal != t.quoteTotal || quoteTotal != t.quote.TotalAmount {
		t.quoteTotal = quoteTotal
		if err := t.persistQuoteTotalLocked(ctx); err != nil {
			return err
		}
	}
	t.quoteTotal = quoteTotal
	return nil
}

// SaveQuote finalizes the quote as draft or sent, persisting the ledger
// total and the day count derived from the date range.
func (t *Timeline) SaveQuote(ctx context.Context, draft bool) (models.Quote, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	status := models.StatusSent
	if draft {
		status = models.StatusDraft
	}
	totalDays := len(t.days)
	if start, err := format.ParseDate(t.quote.StartDate); err == nil {
		if end, err := format.ParseDate(t.quote.EndDate); err == nil {
			if d := format.DaysBetween(start, end); d > 0 {
				totalDays = d
			}
		}
	}
	fields := map[string]any{
		"Status":      status,
		"TotalDays":   totalDays,
		"TotalAmount": t.quoteTotal,
	}
	if err := t.store.Update(ctx, records.CollectionQuote, t.quote.ID, fields); err != nil {
		t.notifier.Push(notify.LevelError, "Failed to save quote")
		return models.Quote{}, err
	}
	t.quote.Status = status
	t.quote.TotalDays = totalDays
	t.quote.TotalAmount = t.quoteTotal
	t.notifier.Push(notify.LevelSuccess, fmt.Sprintf("Quote %s saved as %s", t.quote.QuoteNumber, status))
	return t.quote, nil
}

func (t *Timeline) dayIndex(dayID uint) int {
	for i, d := range t.days {
		if d.ID == dayID {
			return i
		}
	}
	return -1
}
