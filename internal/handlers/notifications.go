package handlers

import (
	"net/http"

	"github.com/dmcsuite/quotebuilder/internal/httpx"
	"github.com/dmcsuite/quotebuilder/internal/notify"
)

type NotificationHandler struct {
	Queue *notify.Queue
}

func NewNotificationHandler(queue *notify.Queue) *NotificationHandler {
	return &NotificationHandler{Queue: queue}
}

// List: GET /api/notifications – drains the pending queue. Each notification
// is delivered exactly once.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	items := h.Queue.Drain()
	if items == nil {
		items = []notify.Notification{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}
