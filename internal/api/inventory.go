package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/laurenmk/stockdock/internal/model"
	"github.com/laurenmk/stockdock/internal/store"
)

// InventoryHandler handles inventory listing and direct stock changes.
type InventoryHandler struct {
	DB *sql.DB
}

type emergencyAddRequest struct {
	ItemCode string `json:"item_code"`
}

// List handles GET /api/inventory.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	units, err := store.ListUnits(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list inventory", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list inventory")
		return
	}
	if units == nil {
		units = []model.UnitOverview{}
	}
	jsonResponse(w, http.StatusOK, units)
}

// InStock handles GET /api/inventory/instock. It lists the units whose
// labels can still be reprinted.
func (h *InventoryHandler) InStock(w http.ResponseWriter, r *http.Request) {
	units, err := store.ListInStock(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list in-stock units", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list in-stock units")
		return
	}
	if units == nil {
		units = []model.Unit{}
	}
	jsonResponse(w, http.StatusOK, units)
}

// Summary handles GET /api/inventory/summary.
func (h *InventoryHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := store.ProductSummary(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to build product summary", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to build product summary")
		return
	}
	if summary == nil {
		summary = []model.ProductSummaryRow{}
	}
	jsonResponse(w, http.StatusOK, summary)
}

// EmergencyAdd handles POST /api/inventory/emergency. It creates a unit
// for deliveries that never had an anticipated-truck entry, so the item
// code must already be on the catalog whitelist.
func (h *InventoryHandler) EmergencyAdd(w http.ResponseWriter, r *http.Request) {
	var req emergencyAddRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ItemCode == "" {
		jsonError(w, http.StatusBadRequest, "item_code required")
		return
	}

	claims := GetClaims(r.Context())
	unit, err := store.EmergencyAdd(r.Context(), h.DB, req.ItemCode, claims.Username)
	if errors.Is(err, store.ErrNotInCatalog) {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if errors.Is(err, store.ErrSlotConflict) {
		jsonError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		slog.Error("failed to add emergency stock", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to add stock")
		return
	}

	slog.Info("emergency stock added", "user", claims.Username,
		"item", unit.ItemCode, "slot", unit.Slot)
	jsonResponse(w, http.StatusCreated, unit)
}

// Clear handles DELETE /api/inventory.
func (h *InventoryHandler) Clear(w http.ResponseWriter, r *http.Request) {
	n, err := store.ClearInventory(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to clear inventory", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to clear inventory")
		return
	}

	claims := GetClaims(r.Context())
	slog.Warn("inventory cleared", "user", claims.Username, "units", n)
	jsonResponse(w, http.StatusOK, map[string]int64{"cleared": n})
}
