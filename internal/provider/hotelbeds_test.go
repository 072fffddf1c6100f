package provider

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmcsuite/quotebuilder/internal/models"
)

func TestSearchHotelsRequestShape(t *testing.T) {
	fixed := time.Unix(1750000000, 0)
	var gotPath, gotKey, gotSig string
	var gotBody HotelQuery

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("Api-key")
		gotSig = r.Header.Get("X-Signature")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(searchResponse{Results: []Result{
			{Code: "HB-1", Name: "Sunset Palace", Location: "Palma", Price: 120},
		}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", "secret")
	c.now = func() time.Time { return fixed }

	results, err := c.SearchHotels(context.Background(), HotelQuery{
		Destination: "PMI", CheckIn: "2025-07-01", CheckOut: "2025-07-05", Rooms: 2,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Sunset Palace", results[0].Name)

	assert.Equal(t, "/hotels/search", gotPath)
	assert.Equal(t, "key", gotKey)
	sum := sha256.Sum256([]byte("keysecret1750000000"))
	assert.Equal(t, hex.EncodeToString(sum[:]), gotSig)
	assert.Equal(t, "PMI", gotBody.Destination)
	assert.Equal(t, 2, gotBody.Rooms)
}

func TestSearchValidatesRequiredFields(t *testing.T) {
	c := NewClient("http://unused", "k", "s")
	ctx := context.Background()

	_, err := c.SearchHotels(ctx, HotelQuery{Destination: "PMI"})
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = c.SearchActivities(ctx, ActivityQuery{DateFrom: "2025-07-01"})
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = c.SearchTransfers(ctx, TransferQuery{From: "PMI airport", To: "hotel", Date: "2025-07-01", Time: "25:99"})
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestQueryValidationDetail(t *testing.T) {
	v := HotelQuery{CheckIn: "not-a-date", Rooms: 0}.Validate()
	assert.Equal(t, "required", v["destination"])
	assert.Equal(t, "invalid_date", v["check_in"])
	assert.Equal(t, "required", v["check_out"])
	assert.Equal(t, "below_minimum", v["rooms"])

	assert.True(t, TransferQuery{From: "a", To: "b", Date: "2025-07-01", Time: "14:30"}.Validate().Empty())
}

func TestSearchSurfacesProviderErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", "s")
	_, err := c.SearchActivities(context.Background(), ActivityQuery{Destination: "PMI", DateFrom: "2025-07-01", DateTo: "2025-07-02"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestCatalogEntryFromResult(t *testing.T) {
	e := CatalogEntryFromResult(Result{Code: "ACT-9", Name: "Volcano Hike", Location: "Tenerife", Description: "guided", Price: 55.5})
	assert.Equal(t, "Volcano Hike", e.Name)
	assert.Equal(t, models.SourceAPI, e.Source)
	assert.Equal(t, "ACT-9", e.ExternalRef)
	assert.Equal(t, 55.5, e.StandardRate)
	assert.Zero(t, e.ID)
}
