package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bazaarhq/bazaar-server/models"
	"github.com/stretchr/testify/require"
)

func listing(id int, item string) models.Listing {
	return models.Listing{ID: id, Item: item, Price: 100, Quantity: 1, Type: models.SellListing, Seller: "alice", SellerID: "1", PriceMode: models.PriceEach, Timestamp: int64(id)}
}

func frame(t *testing.T, event models.EventType, payload interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(models.Event{Event: event, Payload: payload})
	require.NoError(t, err)
	return raw
}

func TestSeed(t *testing.T) {
	board := []models.Listing{listing(2, "Oak Log"), listing(1, "Sword")}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/listings", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(board))
	}))
	defer srv.Close()

	cache := NewCache(srv.URL)
	require.NoError(t, cache.Seed(context.Background()))
	require.Equal(t, board, cache.Listings())
}

func TestSeedErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cache := NewCache(srv.URL)
	require.Error(t, cache.Seed(context.Background()))
}

func TestApplyCreatedPrepends(t *testing.T) {
	cache := NewCache("http://unused")
	cache.listings = []models.Listing{listing(1, "Sword")}

	require.NoError(t, cache.apply(frame(t, models.EventListingCreated, listing(2, "Oak Log"))))

	got := cache.Listings()
	require.Len(t, got, 2)
	require.Equal(t, 2, got[0].ID)
	require.Equal(t, 1, got[1].ID)
}

func TestApplyCreatedDeduplicates(t *testing.T) {
	cache := NewCache("http://unused")
	cache.listings = []models.Listing{listing(1, "Sword")}

	// the seed fetch and the broadcast raced; same row arrives twice
	updated := listing(1, "Sword")
	updated.Price = 999
	require.NoError(t, cache.apply(frame(t, models.EventListingCreated, updated)))

	got := cache.Listings()
	require.Len(t, got, 1)
	require.Equal(t, 999, got[0].Price)
}

func TestApplyUpdatedReplaces(t *testing.T) {
	cache := NewCache("http://unused")
	cache.listings = []models.Listing{listing(1, "Sword"), listing(2, "Oak Log")}

	changed := listing(2, "Willow Log")
	require.NoError(t, cache.apply(frame(t, models.EventListingUpdated, changed)))

	got := cache.Listings()
	require.Len(t, got, 2)
	require.Equal(t, "Willow Log", got[1].Item)

	// update for an id the cache never saw is ignored
	require.NoError(t, cache.apply(frame(t, models.EventListingUpdated, listing(7, "Ghost"))))
	require.Len(t, cache.Listings(), 2)
}

func TestApplyDeletedFilters(t *testing.T) {
	cache := NewCache("http://unused")
	cache.listings = []models.Listing{listing(1, "Sword"), listing(2, "Oak Log")}

	require.NoError(t, cache.apply(frame(t, models.EventListingDeleted, 1)))

	got := cache.Listings()
	require.Len(t, got, 1)
	require.Equal(t, 2, got[0].ID)
}

func TestApplyUnknownEvent(t *testing.T) {
	cache := NewCache("http://unused")
	require.Error(t, cache.apply([]byte(`{"event":"somethingElse","payload":null}`)))
}

func TestWSURL(t *testing.T) {
	require.Equal(t, "ws://host:1/ws", NewCache("http://host:1").wsURL())
	require.Equal(t, "wss://host/ws", NewCache("https://host/").wsURL())
}

func TestListingsReturnsSnapshot(t *testing.T) {
	cache := NewCache("http://unused")
	cache.listings = []models.Listing{listing(1, "Sword")}

	snapshot := cache.Listings()
	snapshot[0].Item = "mutated"
	require.Equal(t, "Sword", cache.Listings()[0].Item)
}

func TestRunStopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	cache := NewCache(srv.URL)
	cache.retryDelay = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cache.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
