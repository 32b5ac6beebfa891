package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/laurenmk/stockdock/internal/model"
	"github.com/laurenmk/stockdock/internal/store"
)

// CatalogHandler handles the item code whitelist.
type CatalogHandler struct {
	DB *sql.DB
}

type addCatalogRequest struct {
	ItemName string `json:"item_name"`
}

type deleteCatalogRequest struct {
	ItemNames []string `json:"item_names"`
}

// List handles GET /api/catalog.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListCatalog(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list catalog", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list catalog")
		return
	}
	if items == nil {
		items = []model.CatalogItem{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Add handles POST /api/catalog.
func (h *CatalogHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addCatalogRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := store.AddCatalogItem(r.Context(), h.DB, req.ItemName)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("catalog item added", "user", claims.Username, "item", item.ItemName)
	jsonResponse(w, http.StatusCreated, item)
}

// Delete handles DELETE /api/catalog.
func (h *CatalogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req deleteCatalogRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.ItemNames) == 0 {
		jsonError(w, http.StatusBadRequest, "item_names required")
		return
	}

	if err := store.DeleteCatalogItems(r.Context(), h.DB, req.ItemNames); err != nil {
		slog.Error("failed to delete catalog items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete catalog items")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("catalog items deleted", "user", claims.Username, "count", len(req.ItemNames))
	jsonResponse(w, http.StatusOK, map[string]string{"message": "catalog items deleted"})
}
