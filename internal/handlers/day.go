package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/dmcsuite/quotebuilder/internal/catalog"
	"github.com/dmcsuite/quotebuilder/internal/httpx"
	"github.com/dmcsuite/quotebuilder/internal/models"
	"github.com/dmcsuite/quotebuilder/internal/notify"
	"github.com/dmcsuite/quotebuilder/internal/records"
	"github.com/dmcsuite/quotebuilder/internal/timeline"
	"github.com/dmcsuite/quotebuilder/internal/validation"
)

type DayHandler struct {
	Store     *records.Store
	Timelines *timeline.Manager
	Confirmer *notify.Confirmer
	Catalog   *catalog.Service
}

func NewDayHandler(store *records.Store, timelines *timeline.Manager, confirmer *notify.Confirmer, cat *catalog.Service) *DayHandler {
	return &DayHandler{Store: store, Timelines: timelines, Confirmer: confirmer, Catalog: cat}
}

func (h *DayHandler) resolver() resolver {
	return resolver{store: h.Store, timelines: h.Timelines}
}

// List: GET /api/quotes/{id}/days
func (h *DayHandler) List(w http.ResponseWriter, r *http.Request) {
	quoteID, ok := pathID(w, r)
	if !ok {
		return
	}
	tl, err := h.Timelines.Get(r.Context(), quoteID)
	if err != nil {
		writeTimelineError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": tl.Days()})
}

// Create: POST /api/quotes/{id}/days – appends one day. An empty body takes
// all defaults; a seed body overrides them.
func (h *DayHandler) Create(w http.ResponseWriter, r *http.Request) {
	quoteID, ok := pathID(w, r)
	if !ok {
		return
	}
	var seed *timeline.DaySeed
	if r.Body != nil && r.ContentLength != 0 {
		var s timeline.DaySeed
		if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
		if s.DayDate != "" {
			v := validation.Violations{}
			validation.ISODate("day_date", s.DayDate, v)
			if !v.Empty() {
				httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
				return
			}
		}
		seed = &s
	}
	tl, err := h.Timelines.Get(r.Context(), quoteID)
	if err != nil {
		writeTimelineError(w, err)
		return
	}
	day, err := tl.AddDay(r.Context(), seed)
	if err != nil {
		writeTimelineError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, day)
}

// Generate: POST /api/quotes/{id}/days/generate – replaces the day set with
// one day per date in the range.
func (h *DayHandler) Generate(w http.ResponseWriter, r *http.Request) {
	quoteID, ok := pathID(w, r)
	if !ok {
		return
	}
	type generateReq struct {
		StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
		EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	}
	var req generateReq
	if !decodeValid(w, r, &req) {
		return
	}
	tl, err := h.Timelines.Get(r.Context(), quoteID)
	if err != nil {
		writeTimelineError(w, err)
		return
	}
	days, err := tl.GenerateDays(r.Context(), req.StartDate, req.EndDate)
	if err != nil {
		writeTimelineError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": days, "quote": tl.Quote()})
}

// Update: PATCH /api/days/{id} – partial update, absent fields untouched.
func (h *DayHandler) Update(w http.ResponseWriter, r *http.Request) {
	dayID, ok := pathID(w, r)
	if !ok {
		return
	}
	var patch timeline.DayPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if patch.DayDate != nil {
		v := validation.Violations{}
		validation.ISODate("day_date", *patch.DayDate, v)
		if !v.Empty() {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
			return
		}
	}
	tl, err := h.resolver().forDay(r, dayID)
	if err != nil {
		writeTimelineError(w, err)
		return
	}
	day, err := tl.UpdateDay(r.Context(), dayID, patch)
	if err != nil {
		writeTimelineError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, day)
}

// Delete: DELETE /api/days/{id} – two-phase. The first call hands back a
// confirmation token; the second call carries it in ?confirm= and commits
// the day plus its items in one transaction.
func (h *DayHandler) Delete(w http.ResponseWriter, r *http.Request) {
	dayID, ok := pathID(w, r)
	if !ok {
		return
	}
	tl, err := h.resolver().forDay(r, dayID)
	if err != nil {
		writeTimelineError(w, err)
		return
	}
	token := r.URL.Query().Get("confirm")
	if token == "" {
		conf := h.Confirmer.Request("delete_day", dayID)
		httpx.JSON(w, http.StatusAccepted, conf)
		return
	}
	if !h.Confirmer.Confirm(token, "delete_day", dayID) {
		httpx.JSONError(w, http.StatusConflict, "confirmation_invalid", nil)
		return
	}
	if err := tl.RemoveDay(r.Context(), dayID); err != nil {
		writeTimelineError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": dayID, "quote": tl.Quote()})
}

// Drop: POST /api/days/{id}/drop – a drag payload landing on a day. The body
// carries the serialized record as a string next to the item type, the same
// two fields a drag event carries, and both are mandatory.
func (h *DayHandler) Drop(w http.ResponseWriter, r *http.Request) {
	dayID, ok := pathID(w, r)
	if !ok {
		return
	}
	type dropReq struct {
		ItemData string `json:"itemData" validate:"required"`
		ItemType string `json:"itemType" validate:"required"`
	}
	var req dropReq
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
