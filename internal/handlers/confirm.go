package handlers

import (
	"net/http"

	"github.com/dmcsuite/quotebuilder/internal/httpx"
	"github.com/dmcsuite/quotebuilder/internal/notify"
)

type ConfirmHandler struct {
	Confirmer *notify.Confirmer
}

func NewConfirmHandler(confirmer *notify.Confirmer) *ConfirmHandler {
	return &ConfirmHandler{Confirmer: confirmer}
}

// Cancel: POST /api/confirmations/{token}/cancel – resolves a pending
// confirmation to cancelled so its token can never commit.
func (h *ConfirmHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if !h.Confirmer.Cancel(token) {
		httpx.JSONError(w, http.StatusNotFound, "confirmation_not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"token": token, "state": notify.StateCancelled})
}
