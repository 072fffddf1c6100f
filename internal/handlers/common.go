package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dmcsuite/quotebuilder/internal/httpx"
	"github.com/dmcsuite/quotebuilder/internal/models"
	"github.com/dmcsuite/quotebuilder/internal/records"
	"github.com/dmcsuite/quotebuilder/internal/timeline"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// decodeValid decodes a JSON body into dst and runs struct validation.
// It writes the error response itself; callers bail out on false.
func decodeValid(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", fieldErrors(err))
		return false
	}
	return true
}

func fieldErrors(err error) map[string]string {
	out := map[string]string{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			out[fe.Field()] = fe.Tag()
		}
	}
	return out
}

func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil || id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return 0, false
	}
	return uint(id), true
}

// writeTimelineError maps session errors onto the JSON error vocabulary.
func writeTimelineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, timeline.ErrQuoteNotFound):
		httpx.JSONError(w, http.StatusNotFound, "quote_not_found", nil)
	case errors.Is(err, timeline.ErrDayNotFound):
		httpx.JSONError(w, http.StatusNotFound, "day_not_found", nil)
	case errors.Is(err, timeline.ErrItemNotFound):
		httpx.JSONError(w, http.StatusNotFound, "item_not_found", nil)
	case errors.Is(err, timeline.ErrNoDays):
		httpx.JSONError(w, http.StatusBadRequest, "no_days", nil)
	case errors.Is(err, timeline.ErrInvalidPayload):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"payload": err.Error()})
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

// resolver finds the session that owns a day or item record. Day and item
// routes are addressed by their own IDs, so the owning quote has to be
// looked up before the manager can hand out the session.
type resolver struct {
	store     *records.Store
	timelines *timeline.Manager
}

func (rs resolver) forDay(r *http.Request, dayID uint) (*timeline.Timeline, error) {
	var days []models.QuoteDay
	rs.store.Fetch(r.Context(), records.CollectionQuoteDays, fmt.Sprintf("ID == %d", dayID), &days)
	if len(days) == 0 {
		return nil, timeline.ErrDayNotFound
	}
	return rs.timelines.Get(r.Context(), days[0].QuoteID)
}

func (rs resolver) forItem(r *http.Request, itemID uint) (*timeline.Timeline, error) {
	var items []models.QuoteItem
	rs.store.Fetch(r.Context(), records.CollectionQuoteItems, fmt.Sprintf("ID == %d", itemID), &items)
	if len(items) == 0 {
		return nil, timeline.ErrItemNotFound
	}
	var days []models.QuoteDay
	rs.store.Fetch(r.Context(), records.CollectionQuoteDays, fmt.Sprintf("ID == %d", items[0].DayID), &days)
	if len(days) == 0 {
		return nil, timeline.ErrDayNotFound
	}
	return rs.timelines.Get(r.Context(), days[0].QuoteID)
}
