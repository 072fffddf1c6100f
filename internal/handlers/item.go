package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/dmcsuite/quotebuilder/internal/catalog"
	"github.com/dmcsuite/quotebuilder/internal/format"
	"github.com/dmcsuite/quotebuilder/internal/httpx"
	"github.com/dmcsuite/quotebuilder/internal/models"
	"github.com/dmcsuite/quotebuilder/internal/notify"
	"github.com/dmcsuite/quotebuilder/internal/records"
	"github.com/dmcsuite/quotebuilder/internal/timeline"
)

type ItemHandler struct {
	Store     *records.Store
	Timelines *timeline.Manager
	Confirmer *notify.Confirmer
	Catalog   *catalog.Service
}

func NewItemHandler(store *records.Store, timelines *timeline.Manager, confirmer *notify.Confirmer, cat *catalog.Service) *ItemHandler {
	return &ItemHandler{Store: store, Timelines: timelines, Confirmer: confirmer, Catalog: cat}
}

func (h *ItemHandler) resolver() resolver {
	return resolver{store: h.Store, timelines: h.Timelines}
}

// AddToLastDay: POST /api/quotes/{id}/items – the click-to-add path. The
// entry always lands on the last day; a quote without days rejects the add.
func (h *ItemHandler) AddToLastDay(w http.ResponseWriter, r *http.Request) {
	quoteID, ok := pathID(w, r)
	if !ok {
		return
	}
	type addReq struct {
		ItemData string `json:"itemData" validate:"required"`
		ItemType string `json:"itemType" validate:"required"`
	}
	var req addReq
	if !decodeValid(w, r, &req) {
		return
	}
	if !models.ValidItemType(req.ItemType) {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"itemType": "unknown_type"})
		return
	}
	var payload timeline.ItemPayload
	if err := json.Unmarshal([]byte(req.ItemData), &payload); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"itemData": "not_json"})
		return
	}
	payload.ItemType = req.ItemType
	tl, err := h.Timelines.Get(r.Context(), quoteID)
	if err != nil {
		writeTimelineError(w, err)
		return
	}
	last, ok := tl.LastDay()
	if !ok {
		writeTimelineError(w, timeline.ErrNoDays)
		return
	}
	item, err := tl.AddItemToDay(r.Context(), last.ID, payload)
	if err != nil {
		writeTimelineError(w, err)
		return
	}
	recordCatalogUse(r.Context(), h.Catalog, payload, item)
	httpx.JSON(w, http.StatusCreated, item)
}

// AddToDay: POST /api/days/{id}/items – direct JSON insertion, the
// programmatic counterpart of the drag drop endpoint.
func (h *ItemHandler) AddToDay(w http.ResponseWriter, r *http.Request) {
	dayID, ok := pathID(w, r)
	if !ok {
		return
	}
	var payload timeline.ItemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	tl, err := h.resolver().forDay(r, dayID)
	if err != nil {
		writeTimelineError(w, err)
		return
	}
	item, err := tl.AddItemToDay(r.Context(), dayID, payload)
	if err != nil {
		writeTimelineError(w, err)
		return
	}
	recordCatalogUse(r.Context(), h.Catalog, payload, item)
	httpx.JSON(w, http.StatusCreated, item)
}

// Update: PATCH /api/items/{id} – the edit-modal save. The stored total is
// always recomputed from unit price and quantity.
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(w, r)
	if !ok {
		return
	}
	type updateReq struct {
		ItemName    string  `json:"item_name" validate:"required"`
		Description string  `json:"description"`
		StartTime   string  `json:"start_time" validate:"omitempty,datetime=15:04"`
		EndTime     string  `json:"end_time" validate:"omitempty,datetime=15:04"`
		UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
		Quantity    int     `json:"quantity" validate:"gte=1"`
	}
	var req updateReq
	if !decodeValid(w, r, &req) {
		return
	}
	tl, err := h.resolver().forItem(r, itemID)
	if err != nil {
		writeTimelineError(w, err)
		return
	}
	item, err := tl.UpdateItem(r.Context(), itemID, timeline.ItemUpdate{
		ItemName:    req.ItemName,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		UnitPrice:   req.UnitPrice,
		Quantity:    req.Quantity,
	})
	if err != nil {
		writeTimelineError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

// Delete: DELETE /api/items/{id} – two-phase, same shape as day deletion.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(w, r)
	if !ok {
		return
	}
	tl, err := h.resolver().forItem(r, itemID)
	if err != nil {
		writeTimelineError(w, err)
		return
	}
	token := r.URL.Query().Get("confirm")
	if token == "" {
		conf := h.Confirmer.Request("delete_item", itemID)
		httpx.JSON(w, http.StatusAccepted, conf)
		return
	}
	if !h.Confirmer.Confirm(token, "delete_item", itemID) {
		httpx.JSONError(w, http.StatusConflict, "confirmation_invalid", nil)
		return
	}
	if err := tl.RemoveItem(r.Context(), itemID); err != nil {
		writeTimelineError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": itemID, "quote": tl.Quote()})
}

// Move: POST /api/items/{id}/move – reassigns an item to another day of the
// same quote and shifts both day totals.
func (h *ItemHandler) Move(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(w, r)
	if !ok {
		return
	}
	type moveReq struct {
		DayID uint `json:"day_id" validate:"required"`
	}
	var req moveReq
	if !decodeValid(w, r, &req) {
		return
	}
	tl, err := h.resolver().forItem(r, itemID)
	if err != nil {
		writeTimelineError(w, err)
		return
	}
	item, err := tl.MoveItem(r.Context(), itemID, req.DayID)
	if err != nil {
		writeTimelineError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

// Preview: GET /api/items/preview?price=&quantity= – the live line total
// shown while the edit modal is open. Nothing is persisted.
func (h *ItemHandler) Preview(w http.ResponseWriter, r *http.Request) {
	price, err := strconv.ParseFloat(r.URL.Query().Get("price"), 64)
	if err != nil || price < 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"price": "non_negative_number_required"})
		return
	}
	quantity, err := strconv.Atoi(r.URL.Query().Get("quantity"))
	if err != nil || quantity < 1 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"quantity": "positive_integer_required"})
		return
	}
	total := format.LineTotal(price, quantity)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"total_price": total,
		"formatted":   format.Currency(total),
	})
}

// recordCatalogUse bumps the source entry's usage count after a successful
// insertion. Failures only get logged; the item is already placed.
func recordCatalogUse(ctx context.Context, cat *catalog.Service, payload timeline.ItemPayload, item models.QuoteItem) {
	if payload.ID == 0 || item.ItemSource != models.SourceCatalog {
		return
	}
	category := models.CategoryForItemType(item.ItemType)
	if category == "" {
		return
	}
	if err := cat.BumpUsage(ctx, category, payload.ID); err != nil {
		log.Printf("catalog usage bump failed for entry %d: %v", payload.ID, err)
	}
}
