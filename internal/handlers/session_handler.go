// internal/handlers/session_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"flashdeck/internal/model"
	"flashdeck/internal/selection"
	"flashdeck/internal/session"
	"flashdeck/internal/webutil"
)

// SessionHandler は学習セッションの操作をHTTPに公開します。
// セッションはプロセス内にひとつ（シングルトンのEngine）で、各操作は
// 変更後のセッション状態を返す
type SessionHandler struct {
	engine  *session.Engine
	tracker *selection.Tracker
	logger  *slog.Logger
}

func NewSessionHandler(e *session.Engine, t *selection.Tracker, logger *slog.Logger) *SessionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionHandler{
		engine:  e,
		tracker: t,
		logger:  logger,
	}
}

type startSessionRequest struct {
	Settings *model.FlashcardSettings `json:"settings"`
}

type keyPressResponse struct {
	Handled bool          `json:"handled"`
	State   session.State `json:"state"`
}

// StartSession は選択中のデータセットから新しいセッションを開始するためのハンドラ。
// ボディで設定を渡せる（省略時はデフォルト設定）。選択が空でもセッションは開始できる
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "StartSession"))

	settings := model.DefaultSettings()
	if r.Body != nil && r.ContentLength != 0 {
		var req startSessionRequest
		if err := webutil.DecodeJSONBody(r, &req); err != nil {
			logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
			appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
			webutil.HandleError(w, appErr)
			return
		}
		if req.Settings != nil {
			if err := webutil.Validator.Struct(req.Settings); err != nil {
				logger.Warn("Validation failed", slog.Any("error", err.Error()))
				webutil.HandleError(w, webutil.TranslateValidationError(err))
				return
			}
			settings = *req.Settings
		}
	}

	datasets := h.tracker.Selected()
	h.engine.Start(r.Context(), datasets, settings)

	state := h.engine.State()
	logger.Info("Session started", slog.String("session_id", state.SessionID), slog.Int("total_cards", state.TotalCards))
	webutil.RespondWithJSON(w, http.StatusCreated, state)
}

// GetSession は現在のセッション状態を取得するためのハンドラ
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	webutil.RespondWithJSON(w, http.StatusOK, h.engine.State())
}

// GetStats は現在のセッションの統計を取得するためのハンドラ
func (h *SessionHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	webutil.RespondWithJSON(w, http.StatusOK, h.engine.Stats())
}

// NextCard は次のカードへ進むためのハンドラ
func (h *SessionHandler) NextCard(w http.ResponseWriter, r *http.Request) {
	h.engine.NextCard()
	webutil.RespondWithJSON(w, http.StatusOK, h.engine.State())
}

// PreviousCard は前のカードへ戻るためのハンドラ
func (h *SessionHandler) PreviousCard(w http.ResponseWriter, r *http.Request) {
	h.engine.PreviousCard()
	webutil.RespondWithJSON(w, http.StatusOK, h.engine.State())
}

// FlipCard はカードの表裏を反転するためのハンドラ
func (h *SessionHandler) FlipCard(w http.ResponseWriter, r *http.Request) {
	h.engine.FlipCard()
	webutil.RespondWithJSON(w, http.StatusOK, h.engine.State())
}

// ShuffleCards はカードを並べ替えるためのハンドラ
func (h *SessionHandler) ShuffleCards(w http.ResponseWriter, r *http.Request) {
	h.engine.ShuffleCards()
	webutil.RespondWithJSON(w, http.StatusOK, h.engine.State())
}

// ResetSession はカード・進捗を保ったまま新しいセッションとしてやり直すためのハンドラ
func (h *SessionHandler) ResetSession(w http.ResponseWriter, r *http.Request) {
	h.engine.ResetSession()

	state := h.engine.State()
	h.logger.Info("Session reset", slog.String("handler", "ResetSession"), slog.String("session_id", state.SessionID))
	webutil.RespondWithJSON(w, http.StatusOK, state)
}

// ToggleAutoPlay は自動再生のオン・オフを切り替えるためのハンドラ
func (h *SessionHandler) ToggleAutoPlay(w http.ResponseWriter, r *http.Request) {
	h.engine.ToggleAutoPlay()
	webutil.RespondWithJSON(w, http.StatusOK, h.engine.State())
}

// GoToCard は指定位置のカードへ移動するためのハンドラ
func (h *SessionHandler) GoToCard(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GoToCard"))

	var req model.GoToRequest
	if err := webutil.DecodeAndValidate(r, &req); err != nil {
		logger.Warn("Invalid goto request", slog.Any("error", err))
		webutil.HandleError(w, err)
		return
	}

	h.engine.GoToCard(*req.Index)
	webutil.RespondWithJSON(w, http.StatusOK, h.engine.State())
}

// MarkCard は現在のカードの正誤を記録するためのハンドラ
func (h *SessionHandler) MarkCard(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "MarkCard"))

	var req model.MarkRequest
	if err := webutil.DecodeAndValidate(r, &req); err != nil {
		logger.Warn("Invalid mark request", slog.Any("error", err))
		webutil.HandleError(w, err)
		return
	}

	if *req.Correct {
		h.engine.MarkCorrect(r.Context())
	} else {
		h.engine.MarkIncorrect(r.Context())
	}
	webutil.RespondWithJSON(w, http.StatusOK, h.engine.State())
}

// KeyPress はキーボード入力をセッション操作に中継するためのハンドラ
func (h *SessionHandler) KeyPress(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "KeyPress"))

	var req model.KeyPressRequest
	if err := webutil.DecodeAndValidate(r, &req); err != nil {
		logger.Warn("Invalid keypress request", slog.Any("error", err))
		webutil.HandleError(w, err)
		return
	}

	handled := h.engine.HandleKey(req.Key)
	webutil.RespondWithJSON(w, http.StatusOK, keyPressResponse{
		Handled: handled,
		State:   h.engine.State(),
	})
}

// Speak は指定テキストの読み上げを要求するためのハンドラ。
// TTSが無効・未接続でも成功として扱う（読み上げは副作用にすぎない）
func (h *SessionHandler) Speak(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "Speak"))

	var req model.SpeakRequest
	if err := webutil.DecodeAndValidate(r, &req); err != nil {
		logger.Warn("Invalid speak request", slog.Any("error", err))
		webutil.HandleError(w, err)
		return
	}

	h.engine.Speak(req.Text)
	w.WriteHeader(http.StatusAccepted)
}

// PutSettings はセッション設定を更新するためのハンドラ
func (h *SessionHandler) PutSettings(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PutSettings"))

	var settings model.FlashcardSettings
	if err := webutil.DecodeAndValidate(r, &settings); err != nil {
		logger.Warn("Invalid settings", slog.Any("error", err))
		webutil.HandleError(w, err)
		return
	}

	h.engine.UpdateSettings(r.Context(), settings)

	logger.Info("Session settings updated", slog.Bool("shuffle", settings.Shuffle), slog.Bool("auto_play", settings.AutoPlay))
	webutil.RespondWithJSON(w, http.StatusOK, h.engine.Settings())
}
