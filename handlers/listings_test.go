package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bazaarhq/bazaar-server/database"
	"github.com/bazaarhq/bazaar-server/middlewares"
	"github.com/bazaarhq/bazaar-server/models"
	"github.com/bazaarhq/bazaar-server/store"
	"github.com/bazaarhq/bazaar-server/utils"
	"github.com/go-chi/chi"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// eventRecorder stands in for the websocket hub.
type eventRecorder struct {
	mu     sync.Mutex
	events []models.Event
}

func (r *eventRecorder) Broadcast(event models.EventType, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, models.Event{Event: event, Payload: payload})
}

func (r *eventRecorder) all() []models.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Event(nil), r.events...)
}

type testEnv struct {
	router   chi.Router
	recorder *eventRecorder
	listings *store.ListingRepository
	admins   *store.AdminRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	listings := store.NewListingRepository(db)
	admins := store.NewAdminRepository(db)
	recorder := &eventRecorder{}
	h := NewListingHandler(listings, recorder)
	ah := NewAdminHandler(admins)

	router := chi.NewRouter()
	router.Get("/listings", h.List)
	router.Group(func(r chi.Router) {
		r.Use(middlewares.Auth(testSecret))
		r.Post("/listings", h.Create)
		r.Put("/listings/{id}", h.Update)
		r.Delete("/listings/{id}", h.Delete)
		r.Get("/is-admin", ah.IsAdmin)
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(middlewares.AdminOnly(admins))
			admin.Delete("/listings/{id}", h.AdminDelete)
			admin.Post("/users/add", ah.AddAdmin)
		})
	})

	return &testEnv{router: router, recorder: recorder, listings: listings, admins: admins}
}

func token(t *testing.T, id, username string) string {
	t.Helper()
	tok, err := utils.GenerateJWT(models.AuthUser{ID: id, Username: username}, testSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(t *testing.T, method, path, bearer, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestCreateIgnoresClientSellerFields(t *testing.T) {
	env := newTestEnv(t)

	body := `{"item":"Sword","price":500,"quantity":1,"type":"sell",
		"seller":"Mallory","sellerId":"666","sellerAvatar":"fake"}`
	rec := env.do(t, http.MethodPost, "/listings", token(t, "1", "alice"), body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ListingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, "1", resp.Listing.SellerID)
	require.Equal(t, "alice", resp.Listing.Seller)
	require.False(t, resp.Listing.SellerAvatar.Valid)
	require.NotZero(t, resp.Listing.ID)
	require.NotZero(t, resp.Listing.Timestamp)

	events := env.recorder.all()
	require.Len(t, events, 1)
	require.Equal(t, models.EventListingCreated, events[0].Event)
}

func TestCreateRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/listings", "", `{"item":"Sword"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Empty(t, env.recorder.all())
}

func TestUpdateByNonOwnerForbidden(t *testing.T) {
	env := newTestEnv(t)

	listing, err := env.listings.Create(models.ListingInput{Item: "Sword", Price: 500}, models.AuthUser{ID: "1", Username: "alice"})
	require.NoError(t, err)

	rec := env.do(t, http.MethodPut, "/listings/"+strconv.Itoa(listing.ID), token(t, "2", "bob"), `{"item":"Sword","price":1}`)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Empty(t, env.recorder.all())

	// row unchanged
	got, err := env.listings.GetByID(listing.ID)
	require.NoError(t, err)
	require.Equal(t, 500, got.Price)
}

func TestUpdateByOwnerBroadcasts(t *testing.T) {
	env := newTestEnv(t)

	listing, err := env.listings.Create(models.ListingInput{Item: "Sword", Price: 500}, models.AuthUser{ID: "1", Username: "alice"})
	require.NoError(t, err)

	rec := env.do(t, http.MethodPut, "/listings/"+strconv.Itoa(listing.ID), token(t, "1", "alice"), `{"item":"Sword","price":600,"quantity":1,"type":"sell"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ListingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 600, resp.Listing.Price)

	events := env.recorder.all()
	require.Len(t, events, 1)
	require.Equal(t, models.EventListingUpdated, events[0].Event)
	require.Equal(t, 600, events[0].Payload.(*models.Listing).Price)
}

func TestUpdateMissingListing(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/listings/42", token(t, "1", "alice"), `{"item":"Sword"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteMissingListing(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodDelete, "/listings/42", token(t, "1", "alice"), "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Empty(t, env.recorder.all())
}

func TestDeleteByOwnerBroadcastsID(t *testing.T) {
	env := newTestEnv(t)

	listing, err := env.listings.Create(models.ListingInput{Item: "Sword", Price: 500}, models.AuthUser{ID: "1", Username: "alice"})
	require.NoError(t, err)

	rec := env.do(t, http.MethodDelete, "/listings/"+strconv.Itoa(listing.ID), token(t, "1", "alice"), "")
	require.Equal(t, http.StatusOK, rec.Code)

	events := env.recorder.all()
	require.Len(t, events, 1)
	require.Equal(t, models.EventListingDeleted, events[0].Event)
	require.Equal(t, listing.ID, events[0].Payload.(int))
}

func TestAdminDeleteBypassesOwnership(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.admins.Add("9"))

	listing, err := env.listings.Create(models.ListingInput{Item: "Sword", Price: 500}, models.AuthUser{ID: "1", Username: "alice"})
	require.NoError(t, err)

	// non-admin bounced by the admin gate
	rec := env.do(t, http.MethodDelete, "/admin/listings/"+strconv.Itoa(listing.ID), token(t, "2", "bob"), "")
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodDelete, "/admin/listings/"+strconv.Itoa(listing.ID), token(t, "9", "root"), "")
	require.Equal(t, http.StatusOK, rec.Code)

	listings, err := env.listings.List()
	require.NoError(t, err)
	require.Empty(t, listings)
}

func TestAddAdminDeniedForNonAdmin(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.admins.Add("9"))

	rec := env.do(t, http.MethodPost, "/admin/users/add", token(t, "1", "alice"), `{"id":"1"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)

	admins, err := env.admins.List()
	require.NoError(t, err)
	require.Equal(t, []string{"9"}, admins)
}

func TestIsAdmin(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.admins.Add("9"))

	rec := env.do(t, http.MethodGet, "/is-admin", token(t, "9", "root"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"isAdmin":true}`, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/is-admin", token(t, "1", "alice"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"isAdmin":false}`, rec.Body.String())
}

func TestListOrderedNewestFirst(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.listings.Create(models.ListingInput{Item: "Old", Price: 1}, models.AuthUser{ID: "1", Username: "alice"})
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	_, err = env.listings.Create(models.ListingInput{Item: "New", Price: 2}, models.AuthUser{ID: "1", Username: "alice"})
	require.NoError(t, err)

	rec := env.do(t, http.MethodGet, "/listings", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var listings []models.Listing
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listings))
	require.Len(t, listings, 2)
	require.Equal(t, "New", listings[0].Item)
	require.Equal(t, "Old", listings[1].Item)
}
