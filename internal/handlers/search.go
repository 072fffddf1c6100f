package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/dmcsuite/quotebuilder/internal/httpx"
	"github.com/dmcsuite/quotebuilder/internal/models"
	"github.com/dmcsuite/quotebuilder/internal/notify"
	"github.com/dmcsuite/quotebuilder/internal/provider"
)

// ProviderHandler fronts the external inventory search. Only the three
// bookable categories have a provider path; packages and flights are
// catalog-only.
type ProviderHandler struct {
	Searcher provider.Searcher
	Notifier *notify.Queue
}

func NewProviderHandler(searcher provider.Searcher, notifier *notify.Queue) *ProviderHandler {
	return &ProviderHandler{Searcher: searcher, Notifier: notifier}
}

// Search: POST /api/provider/search – body {category, query} where the query
// shape depends on the category.
func (h *ProviderHandler) Search(w http.ResponseWriter, r *http.Request) {
	type searchReq struct {
		Category string          `json:"category" validate:"required"`
		Query    json.RawMessage `json:"query" validate:"required"`
	}
	var req searchReq
	if !decodeValid(w, r, &req) {
		return
	}

	var (
		results []provider.Result
		err     error
	)
	switch req.Category {
	case models.CategoryAccommodations:
		var q provider.HotelQuery
		if jerr := json.Unmarshal(req.Query, &q); jerr != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
		if v := q.Validate(); !v.Empty() {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
			return
		}
		results, err = h.Searcher.SearchHotels(r.Context(), q)
	case models.CategoryExcursions:
		var q provider.ActivityQuery
		if jerr := json.Unmarshal(req.Query, &q); jerr != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
		if v := q.Validate(); !v.Empty() {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
			return
		}
		results, err = h.Searcher.SearchActivities(r.Context(), q)
	case models.CategoryTransfers:
		var q provider.TransferQuery
		if jerr := json.Unmarshal(req.Query, &q); jerr != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
		if v := q.Validate(); !v.Empty() {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
			return
		}
		results, err = h.Searcher.SearchTransfers(r.Context(), q)
	default:
		httpx.JSONError(w, http.StatusBadRequest, "unsupported_category", nil)
		return
	}
	if err != nil {
		h.Notifier.Push(notify.LevelError, "provider search failed")
		httpx.JSONError(w, http.StatusBadGateway, "provider_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"results": results, "count": len(results)})
}
