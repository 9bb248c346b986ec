// internal/webutil/response_test.go
package webutil_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flashdeck/internal/model"
	"flashdeck/internal/webutil"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "NotFound", err: model.ErrNotFound, expected: http.StatusNotFound},
		{name: "InvalidInput", err: model.ErrInvalidInput, expected: http.StatusBadRequest},
		{name: "Conflict", err: model.ErrConflict, expected: http.StatusConflict},
		{name: "NotInitialized", err: model.ErrNotInitialized, expected: http.StatusInternalServerError},
		{name: "Unknown error", err: assert.AnError, expected: http.StatusInternalServerError},
		{
			name:     "Wrapped sentinel",
			err:      fmt.Errorf("store: %w", model.ErrNotFound),
			expected: http.StatusNotFound,
		},
		{
			name:     "AppError maps by wrapped cause",
			err:      model.NewAppError("VALIDATION_ERROR", "msg", "name", model.ErrInvalidInput),
			expected: http.StatusBadRequest,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, webutil.MapErrorToStatusCode(tc.err))
		})
	}
}

func TestHandleError_AppErrorDetailIsReturned(t *testing.T) {
	rr := httptest.NewRecorder()
	webutil.HandleError(rr, model.NewAppError("VALIDATION_ERROR", "データセット名を入力してください。", "name", model.ErrInvalidInput))

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var resp model.APIErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Equal(t, "name", resp.Error.Field)
	assert.Equal(t, "データセット名を入力してください。", resp.Error.Message)
}

func TestHandleError_UnknownErrorIsNotLeaked(t *testing.T) {
	rr := httptest.NewRecorder()
	webutil.HandleError(rr, fmt.Errorf("secret db credentials leaked in error"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	var resp model.APIErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "INTERNAL_SERVER_ERROR", resp.Error.Code)
	// 内部エラーの文言はクライアントへ出さない
	assert.NotContains(t, resp.Error.Message, "secret")
}
