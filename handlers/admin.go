package handlers

import (
	"errors"
	"net/http"

	"github.com/bazaarhq/bazaar-server/middlewares"
	"github.com/bazaarhq/bazaar-server/models"
	"github.com/bazaarhq/bazaar-server/store"
	"github.com/bazaarhq/bazaar-server/utils"
)

// AdminHandler manages the admin allow-list.
type AdminHandler struct {
	admins *store.AdminRepository
}

func NewAdminHandler(admins *store.AdminRepository) *AdminHandler {
	return &AdminHandler{admins: admins}
}

// IsAdmin tells the caller whether their own id is on the allow-list.
// Needs only the auth gate, not the admin gate, so the frontend can
// decide whether to render admin controls.
func (h *AdminHandler) IsAdmin(w http.ResponseWriter, r *http.Request) {
	user := middlewares.UserContext(r)

	isAdmin, err := h.admins.IsAdmin(user.ID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to check admin status")
		return
	}
	utils.RespondJSON(w, http.StatusOK, models.IsAdminResponse{IsAdmin: isAdmin})
}

// ListAdmins returns every admin id.
func (h *AdminHandler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.admins.List()
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to get admins")
		return
	}
	utils.RespondJSON(w, http.StatusOK, models.AdminsResponse{Admins: admins})
}

// AddAdmin puts a Discord user id on the allow-list.
func (h *AdminHandler) AddAdmin(w http.ResponseWriter, r *http.Request) {
	reqBody := struct {
		ID string `json:"id"`
	}{}

	if err := utils.ParseBody(r.Body, &reqBody); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "Failed to decode request body")
		return
	}
	if reqBody.ID == "" {
		utils.RespondError(w, http.StatusBadRequest, errors.New("empty admin id"), "Admin id is required")
		return
	}

	if err := h.admins.Add(reqBody.ID); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to add admin")
		return
	}
	utils.RespondJSON(w, http.StatusOK, models.Response{Success: true})
}

// RemoveAdmin takes a Discord user id off the allow-list.
func (h *AdminHandler) RemoveAdmin(w http.ResponseWriter, r *http.Request) {
	reqBody := struct {
		ID string `json:"id"`
	}{}

	if err := utils.ParseBody(r.Body, &reqBody); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "Failed to decode request body")
		return
	}
	if reqBody.ID == "" {
		utils.RespondError(w, http.StatusBadRequest, errors.New("empty admin id"), "Admin id is required")
		return
	}

	if err := h.admins.Remove(reqBody.ID); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to remove admin")
		return
	}
	utils.RespondJSON(w, http.StatusOK, models.Response{Success: true})
}
