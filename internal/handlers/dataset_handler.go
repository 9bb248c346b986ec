// internal/handlers/dataset_handler.go
package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"flashdeck/internal/model"
	"flashdeck/internal/service"
	"flashdeck/internal/webutil"

	"github.com/go-chi/chi/v5"
)

type DatasetHandler struct {
	service  service.DatasetService
	exchange service.ExchangeService
	logger   *slog.Logger
}

func NewDatasetHandler(s service.DatasetService, ex service.ExchangeService, logger *slog.Logger) *DatasetHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetHandler{
		service:  s,
		exchange: ex,
		logger:   logger,
	}
}

// PostDataset は新しいデータセットを作成するためのハンドラ
func (h *DatasetHandler) PostDataset(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostDataset"))

	var req model.PostDatasetRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, appErr)
		return
	}

	if err := webutil.Validator.Struct(req); err != nil {
		logger.Warn("Validation failed", slog.Any("error", err.Error()))
		webutil.HandleError(w, webutil.TranslateValidationError(err))
		return
	}

	dataset, err := h.service.CreateDataset(r.Context(), req.Name, req.Pairs)
	if err != nil {
		logger.Error("Error creating dataset in service", slog.Any("error", err), slog.String("name", req.Name))
		webutil.HandleError(w, err)
		return
	}

	logger.Info("Dataset created successfully", slog.String("dataset_id", dataset.ID))
	webutil.RespondWithJSON(w, http.StatusCreated, dataset)
}

// GetDatasets はデータセットの一覧を取得するためのハンドラ
func (h *DatasetHandler) GetDatasets(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetDatasets"))

	datasets, err := h.service.ListDatasets(r.Context())
	if err != nil {
		logger.Error("Error listing datasets in service", slog.Any("error", err))
		webutil.HandleError(w, err)
		return
	}

	if datasets == nil {
		datasets = []*model.Dataset{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, datasets)
}

// GetDataset は特定のデータセットを取得するためのハンドラ
func (h *DatasetHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetDataset"))

	datasetID := chi.URLParam(r, "dataset_id")
	logger = logger.With(slog.String("dataset_id", datasetID))

	dataset, err := h.service.GetDataset(r.Context(), datasetID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Info("Dataset not found")
		} else {
			logger.Error("Error getting dataset from service", slog.Any("error", err))
		}
		webutil.HandleError(w, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, dataset)
}

// PatchDataset はデータセットの名前・ペアを部分更新するためのハンドラ
func (h *DatasetHandler) PatchDataset(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PatchDataset"))

	datasetID := chi.URLParam(r, "dataset_id")
	logger = logger.With(slog.String("dataset_id", datasetID))

	var req model.PatchDatasetRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, appErr)
		return
	}

	dataset, err := h.service.PatchDataset(r.Context(), datasetID, &req)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Info("Dataset not found")
		} else {
			logger.Error("Error patching dataset in service", slog.Any("error", err))
		}
		webutil.HandleError(w, err)
		return
	}

	logger.Info("Dataset patched successfully")
	webutil.RespondWithJSON(w, http.StatusOK, dataset)
}

// DeleteDataset はデータセットを削除するためのハンドラ。
// 存在しないIDでも成功として扱う（削除は冪等）
func (h *DatasetHandler) DeleteDataset(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteDataset"))

	datasetID := chi.URLParam(r, "dataset_id")
	logger = logger.With(slog.String("dataset_id", datasetID))

	if err := h.service.DeleteDataset(r.Context(), datasetID); err != nil {
		logger.Error("Error deleting dataset in service", slog.Any("error", err))
		webutil.HandleError(w, err)
		return
	}

	logger.Info("Dataset deleted successfully")
	w.WriteHeader(http.StatusNoContent)
}

// ExportDataset はデータセットをJSONファイルとしてダウンロードさせるためのハンドラ
func (h *DatasetHandler) ExportDataset(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "ExportDataset"))

	datasetID := chi.URLParam(r, "dataset_id")
	logger = logger.With(slog.String("dataset_id", datasetID))

	filename, data, err := h.exchange.ExportDataset(r.Context(), datasetID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Info("Dataset not found")
		} else {
			logger.Error("Error exporting dataset in service", slog.Any("error", err))
		}
		webutil.HandleError(w, err)
		return
	}

	logger.Info("Dataset exported successfully", slog.String("filename", filename))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// ImportJSON はエクスポート形式のJSONから新しいデータセットを作成するためのハンドラ
func (h *DatasetHandler) ImportJSON(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "ImportJSON"))

	if r.Body == nil {
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディがありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, appErr)
		return
	}
	defer r.Body.Close()

	dataset, err := h.exchange.ImportJSON(r.Context(), r.Body)
	if err != nil {
		logger.Warn("Error importing dataset from JSON", slog.Any("error", err))
		webutil.HandleError(w, err)
		return
	}

	logger.Info("Dataset imported successfully", slog.String("dataset_id", dataset.ID))
	webutil.RespondWithJSON(w, http.StatusCreated, dataset)
}

// ImportExcel はExcelファイル（multipart/form-data）から新しいデータセットを作成するためのハンドラ。
// フォームのフィールド名は "file"。"name" フィールドを省略した場合はファイル名を使う
func (h *DatasetHandler) ImportExcel(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "ImportExcel"))

	// 10MBまで許容する
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		logger.Warn("Failed to parse multipart form", slog.String("error", err.Error()))
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "multipart/form-data の形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, appErr)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		logger.Warn("Missing file field in form", slog.String("error", err.Error()))
		appErr := model.NewAppError("VALIDATION_ERROR", "file フィールドにExcelファイルを指定してください。", "file", model.ErrInvalidInput)
		webutil.HandleError(w, appErr)
		return
	}
	defer file.Close()

	name := r.FormValue("name")
	if strings.TrimSpace(name) == "" {
		name = strings.TrimSuffix(header.Filename, ".xlsx")
	}

	dataset, err := h.exchange.ImportExcel(r.Context(), file, name)
	if err != nil {
		logger.Warn("Error importing dataset from Excel", slog.Any("error", err), slog.String("filename", header.Filename))
		webutil.HandleError(w, err)
		return
	}

	logger.Info("Dataset imported successfully", slog.String("dataset_id", dataset.ID))
	webutil.RespondWithJSON(w, http.StatusCreated, dataset)
}
