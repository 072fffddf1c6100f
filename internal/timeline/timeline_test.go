package timeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dmcsuite/quotebuilder/internal/models"
	"github.com/dmcsuite/quotebuilder/internal/notify"
	"github.com/dmcsuite/quotebuilder/internal/records"
)

func setupTimeline(t *testing.T) (*records.Store, *Timeline) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Quote{}, &models.QuoteDay{}, &models.QuoteItem{}, &models.CatalogEntry{}))

	store := records.New(db)
	q := models.Quote{QuoteNumber: "Q202506-0001", StartDate: "2025-06-01", EndDate: "2025-06-03", Status: models.StatusDraft}
	require.NoError(t, store.Create(context.Background(), records.CollectionQuote, &q))

	mgr := NewManager(store, notify.NewQueue(100))
	tl, err := mgr.Get(context.Background(), q.ID)
	require.NoError(t, err)
	return store, tl
}

func excursionPayload(name string, rate float64) ItemPayload {
	return ItemPayload{ItemType: models.TypeExcursion, Name: name, StandardRate: rate}
}

func TestManagerGetUnknownQuote(t *testing.T) {
	_, tl := setupTimeline(t)
	mgr := NewManager(tl.store, notify.NewQueue(10))
	_, err := mgr.Get(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrQuoteNotFound)
}

func TestAddDayDefaultsFollowQuoteStartDate(t *testing.T) {
	_, tl := setupTimeline(t)
	ctx := context.Background()

	d1, err := tl.AddDay(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, d1.DayNumber)
	assert.Equal(t, "Day 1", d1.DayTitle)
	assert.Equal(t, "2025-06-01", d1.DayDate)

	d2, err := tl.AddDay(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, d2.DayNumber)
	assert.Equal(t, "2025-06-02", d2.DayDate)
}

func TestDayNumbersKeepGapsAfterDeletion(t *testing.T) {
	_, tl := setupTimeline(t)
	ctx := context.Background()

	d1, _ := tl.AddDay(ctx, nil)
	d2, _ := tl.AddDay(ctx, nil)
	d3, _ := tl.AddDay(ctx, nil)
	_ = d1
	_ = d3

	require.NoError(t, tl.RemoveDay(ctx, d2.ID))

	d4, err := tl.AddDay(ctx, nil)
	require.NoError(t, err)
	// numbers are stable identifiers: next is max+1, the gap stays
	assert.Equal(t, 4, d4.DayNumber)
	nums := []int{}
	for _, d := range tl.Days() {
		nums = append(nums, d.DayNumber)
	}
	assert.Equal(t, []int{1, 3, 4}, nums)
}

func TestLedgerDayTotalEqualsItemSum(t *testing.T) {
	_, tl := setupTimeline(t)
	ctx := context.Background()
	day, _ := tl.AddDay(ctx, nil)

	a, err := tl.AddItemToDay(ctx, day.ID, excursionPayload("boat trip", 80.5))
	require.NoError(t, err)
	assert.Equal(t, 80.5, a.TotalPrice)

	b, err := tl.AddItemToDay(ctx, day.ID, ItemPayload{ItemType: models.TypeTransfer, Name: "pickup", Price: 19.99, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 39.98, b.TotalPrice)

	require.NoError(t, tl.RemoveItem(ctx, a.ID))

	days := tl.Days()
	require.Len(t, days, 1)
	assert.Equal(t, 39.98, days[0].DayTotal)
	assert.Equal(t, 39.98, tl.Quote().TotalAmount)
}

func TestLedgerQuoteTotalEqualsDaySum(t *testing.T) {
	store, tl := setupTimeline(t)
	ctx := context.Background()
	d1, _ := tl.AddDay(ctx, nil)
	d2, _ := tl.AddDay(ctx, nil)

	_, err := tl.AddItemToDay(ctx, d1.ID, excursionPayload("museum", 25))
	require.NoError(t, err)
	_, err = tl.AddItemToDay(ctx, d2.ID, excursionPayload("winery", 60))
	require.NoError(t, err)

	var sum float64
	for _, d := range tl.Days() {
		sum += d.DayTotal
	}
	assert.Equal(t, sum, tl.Quote().TotalAmount)

	// persisted projection agrees with the ledger
	var quotes []models.Quote
	store.Fetch(ctx, records.CollectionQuote, fmt.Sprintf("ID == %d", tl.Quote().ID), &quotes)
	require.Len(t, quotes, 1)
	assert.Equal(t, 85.0, quotes[0].TotalAmount)
}

func TestAddItemNormalization(t *testing.T) {
	_, tl := setupTimeline(t)
	ctx := context.Background()
	day, _ := tl.AddDay(ctx, nil)

	// catalog drop payload: Title instead of Name, no source, no quantity
	it, err := tl.AddItemToDay(ctx, day.ID, ItemPayload{ItemType: models.TypeExcursion, Title: "snorkeling", StandardRate: 45})
	require.NoError(t, err)
	assert.Equal(t, "snorkeling", it.ItemName)
	assert.Equal(t, models.SourceCatalog, it.ItemSource)
	assert.Equal(t, 1, it.Quantity)
	assert.Equal(t, 45.0, it.TotalPrice)

	_, err = tl.AddItemToDay(ctx, day.ID, ItemPayload{ItemType: "cruise", Name: "x"})
	assert.ErrorIs(t, err, ErrInvalidPayload)
	_, err = tl.AddItemToDay(ctx, day.ID, ItemPayload{ItemType: models.TypeFlight})
	assert.ErrorIs(t, err, ErrInvalidPayload)
	_, err = tl.AddItemToDay(ctx, 999, excursionPayload("ghost", 1))
	assert.ErrorIs(t, err, ErrDayNotFound)
}

func TestUpdateItemRecomputesTotal(t *testing.T) {
	_, tl := setupTimeline(t)
	ctx := context.Background()
	day, _ := tl.AddDay(ctx, nil)
	it, _ := tl.AddItemToDay(ctx, day.ID, excursionPayload("kayak", 30))

	upd, err := tl.UpdateItem(ctx, it.ID, ItemUpdate{ItemName: "kayak tour", UnitPrice: 33.33, Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, 99.99, upd.TotalPrice)
	assert.Equal(t, 99.99, tl.Days()[0].DayTotal)
	assert.Equal(t, 99.99, tl.Quote().TotalAmount)

	_, err = tl.UpdateItem(ctx, it.ID, ItemUpdate{ItemName: "kayak", UnitPrice: 10, Quantity: 0})
	assert.ErrorIs(t, err, ErrInvalidPayload)
	_, err = tl.UpdateItem(ctx, 4242, ItemUpdate{ItemName: "x", UnitPrice: 1, Quantity: 1})
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestMoveItemShiftsLedger(t *testing.T) {
	_, tl := setupTimeline(t)
	ctx := context.Background()
	d1, _ := tl.AddDay(ctx, nil)
	d2, _ := tl.AddDay(ctx, nil)
	it, _ := tl.AddItemToDay(ctx, d1.ID, excursionPayload("dive", 120))

	moved, err := tl.MoveItem(ctx, it.ID, d2.ID)
	require.NoError(t, err)
	assert.Equal(t, d2.ID, moved.DayID)

	days := tl.Days()
	assert.Equal(t, 0.0, days[0].DayTotal)
	assert.Equal(t, 120.0, days[1].DayTotal)
	assert.Equal(t, 120.0, tl.Quote().TotalAmount)
}

func TestRemoveDayCascadesItems(t *testing.T) {
	store, tl := setupTimeline(t)
	ctx := context.Background()
	d1, _ := tl.AddDay(ctx, nil)
	d2, _ := tl.AddDay(ctx, nil)
	_, err := tl.AddItemToDay(ctx, d1.ID, excursionPayload("a", 10))
	require.NoError(t, err)
	_, err = tl.AddItemToDay(ctx, d1.ID, excursionPayload("b", 20))
	require.NoError(t, err)
	keep, err := tl.AddItemToDay(ctx, d2.ID, excursionPayload("c", 5))
	require.NoError(t, err)

	require.NoError(t, tl.RemoveDay(ctx, d1.ID))

	var orphans []models.QuoteItem
	store.Fetch(ctx, records.CollectionQuoteItems, fmt.Sprintf("DayID == %d", d1.ID), &orphans)
	assert.Empty(t, orphans, "no item referencing a deleted day may remain fetchable")

	var kept []models.QuoteItem
	store.Fetch(ctx, records.CollectionQuoteItems, fmt.Sprintf("DayID == %d", d2.ID), &kept)
	require.Len(t, kept, 1)
	assert.Equal(t, keep.ID, kept[0].ID)
	assert.Equal(t, 5.0, tl.Quote().TotalAmount)

	assert.ErrorIs(t, tl.RemoveDay(ctx, d1.ID), ErrDayNotFound)
}

func TestGenerateDaysReplacesPriorSet(t *testing.T) {
	store, tl := setupTimeline(t)
	ctx := context.Background()

	// a pre-existing day set with an item that must disappear
	old, _ := tl.AddDay(ctx, &DaySeed{DayNumber: 9, DayTitle: "Old day"})
	_, err := tl.AddItemToDay(ctx, old.ID, excursionPayload("stale", 99))
	require.NoError(t, err)

	days, err := tl.GenerateDays(ctx, "2025-06-01", "2025-06-03")
	require.NoError(t, err)
	require.Len(t, days, 3)
	for i, d := range days {
		assert.Equal(t, i+1, d.DayNumber)
		assert.Equal(t, fmt.Sprintf("2025-06-0%d", i+1), d.DayDate)
		assert.Equal(t, fmt.Sprintf("Day %d", i+1), d.DayTitle)
	}

	var allDays []models.QuoteDay
	store.Fetch(ctx, records.CollectionQuoteDays, fmt.Sprintf("QuoteID == %d", tl.Quote().ID), &allDays)
	assert.Len(t, allDays, 3)
	var stale []models.QuoteItem
	store.Fetch(ctx, records.CollectionQuoteItems, fmt.Sprintf("DayID == %d", old.ID), &stale)
	assert.Empty(t, stale)

	assert.Equal(t, 0.0, tl.Quote().TotalAmount)
	assert.Equal(t, 3, tl.Quote().TotalDays)

	_, err = tl.GenerateDays(ctx, "2025-06-05", "2025-06-01")
	assert.ErrorIs(t, err, ErrInvalidPayload)
	_, err = tl.GenerateDays(ctx, "june first", "2025-06-03")
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestUpdateDayPartialFields(t *testing.T) {
	store, tl := setupTimeline(t)
	ctx := context.Background()
	day, _ := tl.AddDay(ctx, nil)

	title := "Arrival"
	got, err := tl.UpdateDay(ctx, day.ID, DayPatch{DayTitle: &title})
	require.NoError(t, err)
	assert.Equal(t, "Arrival", got.DayTitle)
	assert.Equal(t, day.DayDate, got.DayDate)

	var persisted []models.QuoteDay
	store.Fetch(ctx, records.CollectionQuoteDays, fmt.Sprintf("ID == %d", day.ID), &persisted)
	require.Len(t, persisted, 1)
	assert.Equal(t, "Arrival", persisted[0].DayTitle)

	_, err = tl.UpdateDay(ctx, 777, DayPatch{DayTitle: &title})
	assert.ErrorIs(t, err, ErrDayNotFound)
}

func TestReconcileRepairsDrift(t *testing.T) {
	store, tl := setupTimeline(t)
	ctx := context.Background()
	day, _ := tl.AddDay(ctx, nil)
	_, err := tl.AddItemToDay(ctx, day.ID, excursionPayload("a", 40))
	require.NoError(t, err)

	// another writer slips an item in behind the session's back
	sneaky := models.QuoteItem{DayID: day.ID, ItemType: models.TypeTransfer, ItemName: "sneaky", UnitPrice: 10, Quantity: 1, TotalPrice: 10}
	require.NoError(t, store.Create(ctx, records.CollectionQuoteItems, &sneaky))
	assert.Equal(t, 40.0, tl.Quote().TotalAmount)

	require.NoError(t, tl.Reconcile(ctx))
	assert.Equal(t, 50.0, tl.Days()[0].DayTotal)
	assert.Equal(t, 50.0, tl.Quote().TotalAmount)

	var persisted []models.QuoteDay
	store.Fetch(ctx, records.CollectionQuoteDays, fmt.Sprintf("ID == %d", day.ID), &persisted)
	require.Len(t, persisted, 1)
	assert.Equal(t, 50.0, persisted[0].DayTotal)
}

func TestSaveQuote(t *testing.T) {
	store, tl := setupTimeline(t)
	ctx := context.Background()
	day, _ := tl.AddDay(ctx, nil)
	_, err := tl.AddItemToDay(ctx, day.ID, excursionPayload("gala", 200))
	require.NoError(t, err)

	q, err := tl.SaveQuote(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSent, q.Status)
	assert.Equal(t, 3, q.TotalDays) // from the 2025-06-01..03 range
	assert.Equal(t, 200.0, q.TotalAmount)

	q, err = tl.SaveQuote(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, q.Status)

	var persisted []models.Quote
	store.Fetch(ctx, records.CollectionQuote, fmt.Sprintf("ID == %d", q.ID), &persisted)
	require.Len(t, persisted, 1)
	assert.Equal(t, models.StatusDraft, persisted[0].Status)
	assert.Equal(t, 200.0, persisted[0].TotalAmount)
}
