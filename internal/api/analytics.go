package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/laurenmk/stockdock/internal/model"
	"github.com/laurenmk/stockdock/internal/store"
)

// AnalyticsHandler handles historical reporting endpoints (admin only).
type AnalyticsHandler struct {
	DB *sql.DB
}

// TruckHistory handles GET /api/analytics/trucks/{id}.
func (h *AnalyticsHandler) TruckHistory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid truck id")
		return
	}

	history, err := store.GetTruckHistory(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get truck history", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get truck history")
		return
	}
	if history == nil {
		jsonError(w, http.StatusNotFound, "truck not found")
		return
	}
	jsonResponse(w, http.StatusOK, history)
}

// Lifespans handles GET /api/analytics/lifespan.
func (h *AnalyticsHandler) Lifespans(w http.ResponseWriter, r *http.Request) {
	rows, err := store.AvgLifespans(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to compute lifespans", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to compute lifespans")
		return
	}
	if rows == nil {
		rows = []model.LifespanRow{}
	}
	jsonResponse(w, http.StatusOK, rows)
}

// Depletion handles GET /api/analytics/depletion?from={id}&to={id}.
func (h *AnalyticsHandler) Depletion(w http.ResponseWriter, r *http.Request) {
	from, err := strconv.ParseInt(r.URL.Query().Get("from"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid 'from' truck id")
		return
	}
	to, err := strconv.ParseInt(r.URL.Query().Get("to"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid 'to' truck id")
		return
	}

	report, err := store.DepletionBetween(r.Context(), h.DB, from, to)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, report)
}
