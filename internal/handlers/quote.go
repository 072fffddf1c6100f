package handlers

import (
	"net/http"
	"time"

	"github.com/dmcsuite/quotebuilder/internal/format"
	"github.com/dmcsuite/quotebuilder/internal/httpx"
	"github.com/dmcsuite/quotebuilder/internal/models"
	"github.com/dmcsuite/quotebuilder/internal/records"
	"github.com/dmcsuite/quotebuilder/internal/timeline"
)

type QuoteHandler struct {
	Store     *records.Store
	Timelines *timeline.Manager
}

func NewQuoteHandler(store *records.Store, timelines *timeline.Manager) *QuoteHandler {
	return &QuoteHandler{Store: store, Timelines: timelines}
}

// Create: POST /api/quotes
func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	type createReq struct {
		ClientRef string `json:"client_ref" validate:"required"`
		StartDate string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
		EndDate   string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	}
	var req createReq
	if !decodeValid(w, r, &req) {
		return
	}
	quote := models.Quote{
		QuoteNumber: format.QuoteNumber(time.Now()),
		ClientRef:   req.ClientRef,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Status:      models.StatusDraft,
	}
	if req.StartDate != "" && req.EndDate != "" {
		start, _ := format.ParseDate(req.StartDate)
		end, _ := format.ParseDate(req.EndDate)
		if end.Before(start) {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"end_date": "before_start_date"})
			return
		}
		quote.TotalDays = format.DaysBetween(start, end)
	}
	if err := h.Store.Create(r.Context(), records.CollectionQuote, &quote); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_quote", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, quote)
}

// Get: GET /api/quotes/{id} – quote header plus its day list.
func (h *QuoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	tl, err := h.Timelines.Get(r.Context(), id)
	if err != nil {
		writeTimelineError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"quote": tl.Quote(),
		"days":  tl.Days(),
	})
}

// Save: POST /api/quotes/{id}/save
func (h *QuoteHandler) Save(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	type saveReq struct {
		Draft bool `json:"draft"`
	}
	req := saveReq{Draft: true}
	if r.Body != nil && r.ContentLength != 0 {
		if !decodeValid(w, r, &req) {
			return
		}
	}
	tl, err := h.Timelines.Get(r.Context(), id)
	if err != nil {
		writeTimelineError(w, err)
		return
	}
	quote, err := tl.SaveQuote(r.Context(), req.Draft)
	if err != nil {
		writeTimelineError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, quote)
}

// Reconcile: POST /api/quotes/{id}/reconcile – rebuild the totals ledger
// from stored items and persist any drift.
func (h *QuoteHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	tl, err := h.Timelines.Get(r.Context(), id)
	if err != nil {
		writeTimelineError(w, err)
		return
	}
	if err := tl.Reconcile(r.Context()); err != nil {
		writeTimelineError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"quote": tl.Quote(),
		"days":  tl.Days(),
	})
}
