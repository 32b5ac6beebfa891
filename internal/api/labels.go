package api

import (
	"log/slog"
	"net/http"

	"github.com/laurenmk/stockdock/internal/barcode"
	"github.com/laurenmk/stockdock/internal/model"
)

// LabelsHandler renders individual barcode labels for reprints.
type LabelsHandler struct{}

// Get handles GET /api/labels/{label}. The label text is validated
// against the wire format before rendering so arbitrary text cannot be
// minted into labels.
func (h *LabelsHandler) Get(w http.ResponseWriter, r *http.Request) {
	label := r.PathValue("label")
	if _, _, err := model.ParseLabel(label); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	png, err := barcode.RenderLabel(label)
	if err != nil {
		slog.Error("failed to render label", "label", label, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to render label")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}
