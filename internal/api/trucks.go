package api

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/laurenmk/stockdock/internal/barcode"
	"github.com/laurenmk/stockdock/internal/model"
	"github.com/laurenmk/stockdock/internal/store"
)

// TrucksHandler handles anticipated truck manifests: creation, label
// printing, receiving scans, and closure.
type TrucksHandler struct {
	DB *sql.DB
}

type createTruckRequest struct {
	TruckName  string         `json:"truck_name"`
	DayOfWeek  string         `json:"day_of_week"`
	Quantities map[string]int `json:"quantities"`
}

type truckResponse struct {
	Truck   *model.Truck            `json:"truck"`
	Entries []model.AnticipatedItem `json:"entries"`
}

type truckScanRequest struct {
	Label string `json:"label"`
}

// List handles GET /api/trucks.
func (h *TrucksHandler) List(w http.ResponseWriter, r *http.Request) {
	trucks, err := store.ListTrucks(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list trucks", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list trucks")
		return
	}
	if trucks == nil {
		trucks = []model.Truck{}
	}
	jsonResponse(w, http.StatusOK, trucks)
}

// Create handles POST /api/trucks.
func (h *TrucksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTruckRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	truck, entries, err := store.CreateTruck(r.Context(), h.DB,
		req.TruckName, claims.Username, req.DayOfWeek, req.Quantities)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	slog.Info("truck created", "user", claims.Username,
		"truck", truck.TruckName, "entries", len(entries))
	jsonResponse(w, http.StatusCreated, truckResponse{Truck: truck, Entries: entries})
}

// Get handles GET /api/trucks/{id}.
func (h *TrucksHandler) Get(w http.ResponseWriter, r *http.Request) {
	truck, ok := h.loadTruck(w, r)
	if !ok {
		return
	}

	entries, err := store.ListTruckEntries(r.Context(), h.DB, truck.ID)
	if err != nil {
		slog.Error("failed to list truck entries", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list truck entries")
		return
	}
	if entries == nil {
		entries = []model.AnticipatedItem{}
	}
	jsonResponse(w, http.StatusOK, truckResponse{Truck: truck, Entries: entries})
}

// Summary handles GET /api/trucks/{id}/summary.
func (h *TrucksHandler) Summary(w http.ResponseWriter, r *http.Request) {
	truck, ok := h.loadTruck(w, r)
	if !ok {
		return
	}

	summary, err := store.TruckSummary(r.Context(), h.DB, truck.ID)
	if err != nil {
		slog.Error("failed to build truck summary", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to build truck summary")
		return
	}
	jsonResponse(w, http.StatusOK, summary)
}

// Labels handles GET /api/trucks/{id}/labels. It renders the truck's
// barcode labels as a printable PDF sticker sheet; ?skip=N leaves the
// first N sticker positions empty.
func (h *TrucksHandler) Labels(w http.ResponseWriter, r *http.Request) {
	truck, ok := h.loadTruck(w, r)
	if !ok {
		return
	}

	skip := 0
	if v := r.URL.Query().Get("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > barcode.MaxSkipSlots {
			jsonError(w, http.StatusBadRequest,
				fmt.Sprintf("skip must be between 0 and %d", barcode.MaxSkipSlots))
			return
		}
		skip = n
	}

	entries, err := store.ListTruckEntries(r.Context(), h.DB, truck.ID)
	if err != nil {
		slog.Error("failed to list truck entries", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list truck entries")
		return
	}
	if len(entries) == 0 {
		jsonError(w, http.StatusNotFound, "truck has no anticipated entries")
		return
	}

	stickers := make([]barcode.Sticker, 0, len(entries))
	for _, e := range entries {
		img, err := barcode.RenderBars(e.BarcodeLabel)
		if err != nil {
			slog.Error("failed to render barcode", "label", e.BarcodeLabel, "error", err)
			jsonError(w, http.StatusInternalServerError, "failed to render barcodes")
			return
		}
		stickers = append(stickers, barcode.Sticker{Label: e.BarcodeLabel, Image: img})
	}

	sheet, err := barcode.RenderSheet(stickers, skip)
	if err != nil {
		slog.Error("failed to render sticker sheet", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to render sticker sheet")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("truck-%d-labels.pdf", truck.ID)))
	w.Write(sheet)
}

// Scan handles POST /api/trucks/{id}/scan.
func (h *TrucksHandler) Scan(w http.ResponseWriter, r *http.Request) {
	truck, ok := h.loadTruck(w, r)
	if !ok {
		return
	}

	var req truckScanRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if _, _, err := model.ParseLabel(req.Label); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	claims := GetClaims(r.Context())
	unit, err := store.ScanLabel(r.Context(), h.DB, truck.ID, req.Label, claims.Username)
	switch {
	case errors.Is(err, store.ErrTruckClosed):
		jsonError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, store.ErrScanNotFound):
		jsonError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, store.ErrSlotConflict):
		jsonError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		slog.Error("failed to process truck scan", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to process scan")
		return
	}

	slog.Info("truck entry scanned", "user", claims.Username,
		"truck", truck.ID, "label", req.Label)
	jsonResponse(w, http.StatusCreated, unit)
}

// Close handles POST /api/trucks/{id}/close.
func (h *TrucksHandler) Close(w http.ResponseWriter, r *http.Request) {
	truck, ok := h.loadTruck(w, r)
	if !ok {
		return
	}

	claims := GetClaims(r.Context())
	record, err := store.CloseTruck(r.Context(), h.DB, truck.ID, claims.Username)
	if errors.Is(err, store.ErrTruckClosed) {
		jsonError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		slog.Error("failed to close truck", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to close truck")
		return
	}

	slog.Info("truck closed", "user", claims.Username, "truck", truck.ID,
		"processed", record.ItemsProcessed, "missing", record.ItemsMissing)
	jsonResponse(w, http.StatusOK, record)
}

// Delete handles DELETE /api/trucks/{id}.
func (h *TrucksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	truck, ok := h.loadTruck(w, r)
	if !ok {
		return
	}

	if err := store.DeleteTruck(r.Context(), h.DB, truck.ID); err != nil {
		slog.Error("failed to delete truck", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete truck")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("truck deleted", "user", claims.Username, "truck", truck.ID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "truck deleted"})
}

// loadTruck resolves the {id} path value to a truck, writing the error
// response itself when the id is bad or the truck does not exist.
func (h *TrucksHandler) loadTruck(w http.ResponseWriter, r *http.Request) (*model.Truck, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid truck id")
		return nil, false
	}

	truck, err := store.GetTruck(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get truck", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get truck")
		return nil, false
	}
	if truck == nil {
		jsonError(w, http.StatusNotFound, "truck not found")
		return nil, false
	}
	return truck, true
}
