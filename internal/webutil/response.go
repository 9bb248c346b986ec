// internal/webutil/response.go
package webutil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"flashdeck/internal/model"
)

// HandleError はエラーを解釈し、適切なJSONエラーレスポンスを返します。
// アプリケーションのエラーハンドリングの中心となる
func HandleError(w http.ResponseWriter, err error) {
	statusCode := MapErrorToStatusCode(err)

	var errResp model.APIErrorResponse
	var appErr *model.AppError

	if errors.As(err, &appErr) {
		// AppError の場合、その詳細情報をそのままレスポンスに使う
		errResp = model.APIErrorResponse{Error: appErr.Detail}
	} else {
		switch {
		case errors.Is(err, model.ErrNotFound):
			errResp = model.APIErrorResponse{
				Error: model.ErrorDetail{Code: "NOT_FOUND", Message: "指定されたリソースが見つかりません。"},
			}
		case errors.Is(err, model.ErrInvalidInput):
			errResp = model.APIErrorResponse{
				Error: model.ErrorDetail{Code: "INVALID_INPUT", Message: "リクエストの内容が正しくありません。"},
			}
		case errors.Is(err, model.ErrConflict):
			errResp = model.APIErrorResponse{
				Error: model.ErrorDetail{Code: "CONFLICT", Message: "リソースが競合しています。"},
			}
		case errors.Is(err, model.ErrNotInitialized):
			errResp = model.APIErrorResponse{
				Error: model.ErrorDetail{Code: "STORE_NOT_INITIALIZED", Message: "データストアが初期化されていません。"},
			}
		default:
			// 予期せぬエラー。ログには詳細を、クライアントには汎用メッセージを返す
			slog.Error("Unhandled error", "error", err)
			errResp = model.APIErrorResponse{
				Error: model.ErrorDetail{Code: "INTERNAL_SERVER_ERROR", Message: "サーバー内部でエラーが発生しました。"},
			}
		}
	}

	RespondWithJSON(w, statusCode, errResp)
}

// MapErrorToStatusCode はアプリケーションエラーをHTTPステータスコードにマッピングします
func MapErrorToStatusCode(err error) int {
	var appErr *model.AppError
	// AppErrorの場合は、ラップされたエラーで判定する
	if errors.As(err, &appErr) {
		err = appErr.Unwrap()
	}

	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithJSON はJSONレスポンスを返します
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Error marshaling JSON response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"code":"INTERNAL_SERVER_ERROR", "message":"レスポンス生成中にエラーが発生しました。"}}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
