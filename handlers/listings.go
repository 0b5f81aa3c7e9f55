package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/bazaarhq/bazaar-server/middlewares"
	"github.com/bazaarhq/bazaar-server/models"
	"github.com/bazaarhq/bazaar-server/realtime"
	"github.com/bazaarhq/bazaar-server/store"
	"github.com/bazaarhq/bazaar-server/utils"
	"github.com/go-chi/chi"
)

// ListingHandler serves the listing CRUD surface. Every successful
// mutation emits exactly one broadcast event before the HTTP response is
// written.
type ListingHandler struct {
	listings *store.ListingRepository
	hub      realtime.Broadcaster
}

func NewListingHandler(listings *store.ListingRepository, hub realtime.Broadcaster) *ListingHandler {
	return &ListingHandler{listings: listings, hub: hub}
}

// List returns every listing, newest first. Public; the client does all
// filtering and re-sorting locally.
func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	listings, err := h.listings.List()
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to get listings")
		return
	}
	utils.RespondJSON(w, http.StatusOK, listings)
}

// Create stores a new listing for the authenticated user.
func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middlewares.UserContext(r)

	var reqBody models.ListingInput
	if err := utils.ParseBody(r.Body, &reqBody); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "Failed to decode request body")
		return
	}

	listing, err := h.listings.Create(reqBody, *user)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to store listing")
		return
	}

	h.hub.Broadcast(models.EventListingCreated, listing)
	utils.RespondJSON(w, http.StatusOK, models.ListingResponse{Success: true, Listing: listing})
}

// Update overwrites an owned listing and refreshes its timestamp.
func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middlewares.UserContext(r)

	listingID, err := utils.StringToInt(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "Failed to convert given listing id to int")
		return
	}

	var reqBody models.ListingInput
	if err := utils.ParseBody(r.Body, &reqBody); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "Failed to decode request body")
		return
	}

	listing, err := h.listings.Update(listingID, reqBody, *user)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			utils.RespondError(w, http.StatusNotFound, err, "Listing not found")
		case errors.Is(err, store.ErrNotOwner):
			utils.RespondError(w, http.StatusForbidden, err, "You can only edit your own listings")
		default:
			utils.RespondError(w, http.StatusInternalServerError, err, "Failed to update listing")
		}
		return
	}

	h.hub.Broadcast(models.EventListingUpdated, listing)
	utils.RespondJSON(w, http.StatusOK, models.ListingResponse{Success: true, Listing: listing})
}

// Delete removes an owned listing.
func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middlewares.UserContext(r)

	listingID, err := utils.StringToInt(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "Failed to convert given listing id to int")
		return
	}

	if err := h.listings.DeleteOwned(listingID, user.ID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			utils.RespondError(w, http.StatusNotFound, err, "Listing not found")
		case errors.Is(err, store.ErrNotOwner):
			utils.RespondError(w, http.StatusForbidden, err, "You can only delete your own listings")
		default:
			utils.RespondError(w, http.StatusInternalServerError, err, "Failed to delete listing")
		}
		return
	}

	h.hub.Broadcast(models.EventListingDeleted, listingID)
	utils.RespondJSON(w, http.StatusOK, models.Response{Success: true})
}

// AdminDelete removes any listing regardless of owner. Reached only
// through the admin gate.
func (h *ListingHandler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	listingID, err := utils.StringToInt(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "Failed to convert given listing id to int")
		return
	}

	if err := h.listings.Delete(listingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.RespondError(w, http.StatusNotFound, err, "Listing not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to delete listing")
		return
	}

	h.hub.Broadcast(models.EventListingDeleted, listingID)
	utils.RespondJSON(w, http.StatusOK, models.Response{Success: true})
}
