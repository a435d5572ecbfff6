package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swifteats/internal/config"
	"swifteats/internal/correlation"
	"swifteats/internal/domain"
)

func newTestClient(url string) Client {
	return NewClient(config.CollaboratorConfig{BaseURL: url, Timeout: 0})
}

func TestRestaurantHappyPath(t *testing.T) {
	var gotCorrelation string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCorrelation = r.Header.Get(correlation.Header)
		require.Equal(t, "/v1/restaurants/3", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"restaurant_id":3,"name":"Spice Villa","cuisine":"Indian","city":"Pune","rating":4.2,"is_open":true}`))
	}))
	defer srv.Close()

	ctx := correlation.NewContext(context.Background(), "corr-1")
	r, err := newTestClient(srv.URL).Restaurant(ctx, 3)
	require.NoError(t, err)

	assert.Equal(t, "Spice Villa", r.Name)
	assert.Equal(t, "Pune", r.City)
	assert.True(t, r.IsOpen)
	assert.Equal(t, "corr-1", gotCorrelation, "correlation id propagated")
}

func TestRestaurantNotFoundIsValidationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Restaurant not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Restaurant(context.Background(), 99)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Restaurant not found", verr.Detail)
}

func TestRestaurantUnreachableIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	_, err := newTestClient(srv.URL).Restaurant(context.Background(), 1)
	var upstream *domain.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "restaurant", upstream.Service)
}

func TestMenuParsesItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/restaurants/3/menu", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[
			{"item_id":1,"name":"Margherita","category":"Pizza","price":100,"is_available":true},
			{"item_id":2,"name":"Tiramisu","category":"Dessert","price":80.5,"is_available":false}
		]}`))
	}))
	defer srv.Close()

	items, err := newTestClient(srv.URL).Menu(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.True(t, items[0].Price.Equal(decimal.NewFromInt(100)))
	assert.False(t, items[1].IsAvailable)
	assert.True(t, items[1].Price.Equal(decimal.RequireFromString("80.5")))
}
