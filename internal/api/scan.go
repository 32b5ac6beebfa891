package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/laurenmk/stockdock/internal/model"
	"github.com/laurenmk/stockdock/internal/store"
	"github.com/laurenmk/stockdock/internal/workflow"
)

// ScanHandler handles user-mode scanning: reading a shelf barcode and
// walking its unit through the status cycle via a short-lived session.
type ScanHandler struct {
	DB       *sql.DB
	Sessions *workflow.Registry
}

type scanRequest struct {
	Label string `json:"label"`
}

type scanResponse struct {
	Session   *workflow.Session `json:"session"`
	Suggested string            `json:"suggested"`
	FIFOHint  *model.FIFOHint   `json:"fifo_hint,omitempty"`
}

type scanStatusRequest struct {
	Status   string `json:"status"`
	Override bool   `json:"override"`
}

// Scan handles POST /api/scan. The label must reference a live inventory
// unit; the response carries a session the client uses to confirm,
// override, or cancel the transition.
func (h *ScanHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	itemCode, slot, err := model.ParseLabel(req.Label)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	ok, err := store.InCatalog(r.Context(), h.DB, itemCode)
	if err != nil {
		slog.Error("failed to check catalog", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		jsonError(w, http.StatusBadRequest, "unknown product code: "+itemCode)
		return
	}

	unit, err := store.GetUnit(r.Context(), h.DB, itemCode, slot)
	if err != nil {
		slog.Error("failed to look up unit", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if unit == nil {
		jsonError(w, http.StatusNotFound, "no inventory unit for label "+req.Label)
		return
	}

	session := h.Sessions.Begin(*unit)

	hint, err := store.FIFOHint(r.Context(), h.DB, unit)
	if err != nil {
		slog.Error("failed to compute FIFO hint", "error", err)
	}

	claims := GetClaims(r.Context())
	slog.Info("unit scanned", "user", claims.Username, "label", req.Label, "status", unit.Status)
	jsonResponse(w, http.StatusOK, scanResponse{
		Session:   session,
		Suggested: session.Suggested(),
		FIFOHint:  hint,
	})
}

// SetStatus handles POST /api/scan/{session}/status. With override set,
// the session switches to the manual picker and no transition happens
// yet. Otherwise the requested status (default: the suggested one) is
// applied and the session ends.
func (h *ScanHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	session := h.Sessions.Get(r.PathValue("session"))
	if session == nil {
		jsonError(w, http.StatusNotFound, "scan session not found or expired")
		return
	}

	var req scanStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Override {
		if err := session.RequestOverride(); err != nil {
			jsonError(w, http.StatusConflict, err.Error())
			return
		}
		jsonResponse(w, http.StatusOK, session)
		return
	}

	target, err := session.TargetFor(req.Status)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	unit, err := store.SetUnitStatus(r.Context(), h.DB, session.ItemCode, session.Slot, target)
	if errors.Is(err, store.ErrStaleUnit) {
		h.Sessions.End(session.ID)
		jsonError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		slog.Error("failed to update unit status", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update status")
		return
	}

	h.Sessions.End(session.ID)

	claims := GetClaims(r.Context())
	slog.Info("unit status updated", "user", claims.Username,
		"item", unit.ItemCode, "slot", unit.Slot, "status", unit.Status)
	jsonResponse(w, http.StatusOK, unit)
}

// Cancel handles POST /api/scan/{session}/cancel. Cancelling never
// touches the unit.
func (h *ScanHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("session")
	if h.Sessions.Get(id) == nil {
		jsonError(w, http.StatusNotFound, "scan session not found or expired")
		return
	}
	h.Sessions.End(id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "scan cancelled"})
}
