package handlers

import (
	"errors"
	"net/http"

	"github.com/dmcsuite/quotebuilder/internal/catalog"
	"github.com/dmcsuite/quotebuilder/internal/httpx"
	"github.com/dmcsuite/quotebuilder/internal/models"
	"github.com/dmcsuite/quotebuilder/internal/notify"
	"github.com/dmcsuite/quotebuilder/internal/provider"
)

type CatalogHandler struct {
	Svc      *catalog.Service
	Notifier *notify.Queue
}

func NewCatalogHandler(svc *catalog.Service, notifier *notify.Queue) *CatalogHandler {
	return &CatalogHandler{Svc: svc, Notifier: notifier}
}

func writeCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrUnknownCategory):
		httpx.JSONError(w, http.StatusNotFound, "unknown_category", nil)
	case errors.Is(err, catalog.ErrUnknownFilter):
		httpx.JSONError(w, http.StatusBadRequest, "unknown_filter", nil)
	case errors.Is(err, catalog.ErrEntryNotFound):
		httpx.JSONError(w, http.StatusNotFound, "entry_not_found", nil)
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

// List: GET /api/catalog/{category}?q=&filter=
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")
	entries, err := h.Svc.List(r.Context(), category, catalog.Filters{
		Query: r.URL.Query().Get("q"),
		Chip:  r.URL.Query().Get("filter"),
	})
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": entries, "count": len(entries)})
}

// Search: GET /api/catalog/{category}/search?q=&source=
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")
	source := r.URL.Query().Get("source")
	if source == "" {
		source = "all"
	}
	entries, err := h.Svc.Search(r.Context(), category, r.URL.Query().Get("q"), source)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": entries, "count": len(entries)})
}

// Create: POST /api/catalog/{category} – a hand-entered catalog entry.
func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")
	type createReq struct {
		Name         string  `json:"name" validate:"required"`
		Location     string  `json:"location"`
		Description  string  `json:"description"`
		StandardRate float64 `json:"standard_rate" validate:"gte=0"`
		Starred      bool    `json:"starred"`
	}
	var req createReq
	if !decodeValid(w, r, &req) {
		return
	}
	entry := models.CatalogEntry{
		Name:         req.Name,
		Location:     req.Location,
		Description:  req.Description,
		StandardRate: req.StandardRate,
		Source:       models.SourceCatalog,
		Starred:      req.Starred,
	}
	if err := h.Svc.Create(r.Context(), category, &entry); err != nil {
		writeCatalogError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

// Import: POST /api/catalog/{category}/import – saves a provider search hit
// as a reusable catalog entry.
func (h *CatalogHandler) Import(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")
	var result provider.Result
	if !decodeValid(w, r, &result) {
		return
	}
	if result.Name == "" {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"name": "required"})
		return
	}
	entry := provider.CatalogEntryFromResult(result)
	if err := h.Svc.Create(r.Context(), category, &entry); err != nil {
		writeCatalogError(w, err)
		return
	}
	h.Notifier.Push(notify.LevelSuccess, entry.Name+" added to catalog")
	httpx.JSON(w, http.StatusCreated, entry)
}
