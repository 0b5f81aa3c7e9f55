package handlers

import (
	"net/http"

	"github.com/bazaarhq/bazaar-server/models"
	"github.com/bazaarhq/bazaar-server/utils"
)

// CatalogHandler serves the embedded item catalog.
type CatalogHandler struct {
	items []models.CatalogItem
}

func NewCatalogHandler(items []models.CatalogItem) *CatalogHandler {
	return &CatalogHandler{items: items}
}

// Items returns the full catalog. Public and immutable.
func (h *CatalogHandler) Items(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.items)
}
