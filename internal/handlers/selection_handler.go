// internal/handlers/selection_handler.go
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"flashdeck/internal/model"
	"flashdeck/internal/selection"
	"flashdeck/internal/service"
	"flashdeck/internal/webutil"

	"github.com/go-chi/chi/v5"
)

type SelectionHandler struct {
	tracker  *selection.Tracker
	datasets service.DatasetService
	logger   *slog.Logger
}

func NewSelectionHandler(t *selection.Tracker, datasets service.DatasetService, logger *slog.Logger) *SelectionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SelectionHandler{
		tracker:  t,
		datasets: datasets,
		logger:   logger,
	}
}

// GetSelection は学習対象に選択中のデータセット一覧を取得するためのハンドラ
func (h *SelectionHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	selected := h.tracker.Selected()
	if selected == nil {
		selected = []*model.Dataset{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, selected)
}

// ToggleSelection はデータセットの選択状態を反転するためのハンドラ。
// 反転後の選択一覧を返す
func (h *SelectionHandler) ToggleSelection(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "ToggleSelection"))

	datasetID := chi.URLParam(r, "dataset_id")
	logger = logger.With(slog.String("dataset_id", datasetID))

	dataset, err := h.datasets.GetDataset(r.Context(), datasetID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Info("Dataset not found")
		} else {
			logger.Error("Error getting dataset from service", slog.Any("error", err))
		}
		webutil.HandleError(w, err)
		return
	}

	h.tracker.Toggle(r.Context(), dataset)

	selected := h.tracker.Selected()
	if selected == nil {
		selected = []*model.Dataset{}
	}
	logger.Info("Selection toggled", slog.Bool("selected", h.tracker.IsSelected(datasetID)), slog.Int("count", len(selected)))
	webutil.RespondWithJSON(w, http.StatusOK, selected)
}

// ClearSelection は選択を空にするためのハンドラ
func (h *SelectionHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "ClearSelection"))

	h.tracker.Clear(r.Context())

	logger.Info("Selection cleared")
	w.WriteHeader(http.StatusNoContent)
}
