package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dmcsuite/quotebuilder/internal/config"
	"github.com/dmcsuite/quotebuilder/internal/db"
	"github.com/dmcsuite/quotebuilder/internal/models"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewApp(conn, config.Config{})
}

func do(t *testing.T, app *App, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	r := httptest.NewRequest(method, path, rd)
	w := httptest.NewRecorder()
	app.Handler.ServeHTTP(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

// TestQuoteLifecycle drives the whole flow through the wired handler: create
// a quote, generate its days, place items, edit one, and save.
func TestQuoteLifecycle(t *testing.T) {
	app := newTestApp(t)

	w := do(t, app, http.MethodPost, "/api/quotes", map[string]any{
		"client_ref": "fam. De Vries",
		"start_date": "2026-04-10",
		"end_date":   "2026-04-12",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create quote: %d %s", w.Code, w.Body.String())
	}
	quoteID := uint(decode(t, w)["ID"].(float64))

	w = do(t, app, http.MethodPost, fmt.Sprintf("/api/quotes/%d/days/generate", quoteID), map[string]any{
		"start_date": "2026-04-10", "end_date": "2026-04-12",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("generate: %d %s", w.Code, w.Body.String())
	}
	days := decode(t, w)["items"].([]any)
	if len(days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(days))
	}
	day1 := uint(days[0].(map[string]any)["ID"].(float64))

	w = do(t, app, http.MethodPost, fmt.Sprintf("/api/days/%d/drop", day1), map[string]any{
		"itemData": `{"Name":"Strandhotel Zeezicht","StandardRate":120,"Quantity":2}`,
		"itemType": models.TypeAccommodation,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("drop: %d %s", w.Code, w.Body.String())
	}
	itemID := uint(decode(t, w)["ID"].(float64))

	w = do(t, app, http.MethodPost, fmt.Sprintf("/api/quotes/%d/items", quoteID), map[string]any{
		"itemData": `{"Name":"Airport transfer","StandardRate":55}`,
		"itemType": models.TypeTransfer,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("click add: %d %s", w.Code, w.Body.String())
	}

	w = do(t, app, http.MethodPatch, fmt.Sprintf("/api/items/%d", itemID), map[string]any{
		"item_name": "Strandhotel Zeezicht", "unit_price": 120, "quantity": 3,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("item update: %d %s", w.Code, w.Body.String())
	}

	w = do(t, app, http.MethodGet, fmt.Sprintf("/api/quotes/%d", quoteID), nil)
	quote := decode(t, w)["quote"].(map[string]any)
	if got := quote["TotalAmount"].(float64); got != 415 {
		t.Fatalf("expected quote total 415, got %v", got)
	}

	w = do(t, app, http.MethodPost, fmt.Sprintf("/api/quotes/%d/save", quoteID), map[string]any{"draft": false})
	if w.Code != http.StatusOK {
		t.Fatalf("save: %d %s", w.Code, w.Body.String())
	}
	saved := decode(t, w)
	if saved["Status"] != models.StatusSent || saved["TotalDays"].(float64) != 3 {
		t.Fatalf("unexpected saved quote %v", saved)
	}

	w = do(t, app, http.MethodPost, fmt.Sprintf("/api/quotes/%d/reconcile", quoteID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("reconcile: %d %s", w.Code, w.Body.String())
	}
	quote = decode(t, w)["quote"].(map[string]any)
	if got := quote["TotalAmount"].(float64); got != 415 {
		t.Fatalf("reconcile changed a consistent total to %v", got)
	}
}
