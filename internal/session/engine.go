// internal/session/engine.go
package session

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"

	"flashdeck/internal/model"
	"flashdeck/internal/store"

	"gorm.io/datatypes"
)

// 1回のレビューで積算する固定時間（実測ではなく「1レビュー単位」）
const reviewUnitMS = 1000

// State はエンジンの現在状態のスナップショットです（プレゼンテーション層向け）
type State struct {
	CurrentCardIndex int                                `json:"currentCardIndex"`
	IsFlipped        bool                               `json:"isFlipped"`
	IsAutoPlaying    bool                               `json:"isAutoPlaying"`
	Cards            []model.GamePair                   `json:"cards"`
	Progress         map[string]model.FlashcardProgress `json:"progress"`
	SessionID        string                             `json:"sessionId"`
	TotalCards       int                                `json:"totalCards"`
	CurrentCard      *model.GamePair                    `json:"currentCard,omitempty"`
}

// Stats は進捗マップから読み出しのたびに再計算される統計です（保存されない）
type Stats struct {
	Total    int `json:"total"`
	Mastered int `json:"mastered"`
	Learning int `json:"learning"`
	Accuracy int `json:"accuracy"`
}

// Engine は選択されたデータセット群と設定から、ナビゲーション可能で
// 進捗が追跡されるカード列を組み立てる学習セッションのステートマシンです。
// ロックは持つが、ストア書き込みの直列化はストア側に任せる。
type Engine struct {
	mu       sync.Mutex
	store    store.Store
	logger   *slog.Logger
	synth    Synthesizer
	debounce time.Duration

	settings model.FlashcardSettings
	datasets []*model.Dataset

	cards            []model.GamePair
	currentCardIndex int
	isFlipped        bool
	isAutoPlaying    bool
	progress         map[string]model.FlashcardProgress
	sessionID        string
	datasetIDs       []string
	startTime        time.Time

	// デバウンス/オートプレイのタイマーは常に高々1つずつ。新しい予約が古い予約を破棄する
	autoPlayTimer *time.Timer
	snapshotTimer *time.Timer
}

func NewEngine(s store.Store, synth Synthesizer, logger *slog.Logger, snapshotDebounce time.Duration) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if snapshotDebounce <= 0 {
		snapshotDebounce = time.Second
	}
	return &Engine{
		store:    s,
		logger:   logger,
		synth:    synth,
		debounce: snapshotDebounce,
		settings: model.DefaultSettings(),
		progress: make(map[string]model.FlashcardProgress),
		sessionID: model.NewSessionID(),
		startTime: time.Now(),
	}
}

// Start はデータセット群と設定からセッションを（再）構築します。
// データセット一覧やシャッフル設定が変わるたびに呼び直されることを想定している。
func (e *Engine) Start(ctx context.Context, datasets []*model.Dataset, settings model.FlashcardSettings) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.settings = settings
	e.datasets = datasets
	e.deriveLocked(ctx)
}

// deriveLocked はカード列の平坦化・シャッフル・進捗ハイドレーションを行います。
// 呼び出し側が e.mu を保持していること。
func (e *Engine) deriveLocked(ctx context.Context) {
	// データセット順→ペア順で平坦化
	var cards []model.GamePair
	ids := make([]string, 0, len(e.datasets))
	for _, d := range e.datasets {
		ids = append(ids, d.ID)
		cards = append(cards, d.Pairs...)
	}

	// 空は有効な定常状態であってエラーではない
	if len(cards) == 0 {
		e.cards = nil
		e.currentCardIndex = 0
		e.isFlipped = false
		e.progress = make(map[string]model.FlashcardProgress)
		e.datasetIDs = ids
		e.startTime = time.Now()
		e.rescheduleAutoPlayLocked()
		return
	}

	if e.settings.Shuffle {
		shuffleInPlace(cards)
	}

	e.cards = cards
	e.currentCardIndex = 0
	e.isFlipped = false
	e.datasetIDs = ids
	e.startTime = time.Now()
	e.isAutoPlaying = e.settings.AutoPlay

	e.hydrateProgressLocked(ctx)
	e.rescheduleAutoPlayLocked()
	e.scheduleSnapshotLocked()
}

// hydrateProgressLocked は全カードの既存進捗をストアから読み込みます。
// 見つからない・読めないカードには初期進捗を合成する。
// 部分的なマップを公開しないよう、全件解決してから差し替える。
func (e *Engine) hydrateProgressLocked(ctx context.Context) {
	progressMap := make(map[string]model.FlashcardProgress, len(e.cards))
	for _, card := range e.cards {
		p, err := e.store.GetFlashcardProgress(ctx, card.ID)
		if err != nil {
			e.logger.Warn("Failed to load progress for card, initializing fresh", "card_id", card.ID, "error", err)
			progressMap[card.ID] = *model.NewFlashcardProgress(card.ID)
			continue
		}
		if p == nil {
			progressMap[card.ID] = *model.NewFlashcardProgress(card.ID)
			continue
		}
		progressMap[card.ID] = *p
	}
	e.progress = progressMap
}

// --- ナビゲーション ---

// NextCard は次のカードへ進みます（末尾からは先頭へ循環）。フリップ状態は解除される
func (e *Engine) NextCard() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextCardLocked()
}

func (e *Engine) nextCardLocked() {
	if len(e.cards) == 0 {
		return
	}
	e.currentCardIndex = (e.currentCardIndex + 1) % len(e.cards)
	e.isFlipped = false
	e.rescheduleAutoPlayLocked()
	e.scheduleSnapshotLocked()
}

// PreviousCard は前のカードへ戻ります（先頭からは末尾へ循環）。フリップ状態は解除される
func (e *Engine) PreviousCard() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.cards) == 0 {
		return
	}
	if e.currentCardIndex == 0 {
		e.currentCardIndex = len(e.cards) - 1
	} else {
		e.currentCardIndex--
	}
	e.isFlipped = false
	e.rescheduleAutoPlayLocked()
	e.scheduleSnapshotLocked()
}

// GoToCard は指定位置へ移動します。範囲外は [0, len-1] にクランプする
func (e *Engine) GoToCard(index int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.cards) == 0 {
		return
	}
	if index < 0 {
		index = 0
	}
	if index > len(e.cards)-1 {
		index = len(e.cards) - 1
	}
	e.currentCardIndex = index
	e.isFlipped = false
	e.rescheduleAutoPlayLocked()
	e.scheduleSnapshotLocked()
}

// FlipCard はカードを裏返します。カーソルは動かさない
func (e *Engine) FlipCard() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.flipCardLocked()
}

func (e *Engine) flipCardLocked() {
	e.isFlipped = !e.isFlipped
	e.rescheduleAutoPlayLocked()
	e.scheduleSnapshotLocked()
}

// ShuffleCards は現在ロード中のカード列をその場で並べ替えます。
// 初期化時のシャッフルとは別物（平坦化し直さない）。カーソルは先頭へ、フリップは解除
func (e *Engine) ShuffleCards() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.cards) == 0 {
		return
	}
	shuffleInPlace(e.cards)
	e.currentCardIndex = 0
	e.isFlipped = false
	e.rescheduleAutoPlayLocked()
	e.scheduleSnapshotLocked()
}

// ToggleAutoPlay はオートプレイの稼働状態を反転します
func (e *Engine) ToggleAutoPlay() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.isAutoPlaying = !e.isAutoPlaying
	e.rescheduleAutoPlayLocked()
	e.scheduleSnapshotLocked()
}

// ResetSession は新しい学習回を開始します。
// カーソル先頭・フリップ解除・オートプレイ停止・セッションID再生成。カードと進捗は消さない
func (e *Engine) ResetSession() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.currentCardIndex = 0
	e.isFlipped = false
	e.isAutoPlaying = false
	e.sessionID = model.NewSessionID()
	e.startTime = time.Now()
	e.rescheduleAutoPlayLocked()
	e.scheduleSnapshotLocked()
}

// --- 習熟度更新 ---

// MarkCorrect は現在のカードを「知ってる」として記録します
func (e *Engine) MarkCorrect(ctx context.Context) {
	e.mark(ctx, true)
}

// MarkIncorrect は現在のカードを「まだ学習中」として記録します
func (e *Engine) MarkIncorrect(ctx context.Context) {
	e.mark(ctx, false)
}

// mark は現在カードの進捗を上書き更新します。
// カウントは累積せず、直近の判定だけが数値として残る。
// 永続化が成功してからメモリ上の状態を更新する。失敗はログのみで、状態は据え置き。
func (e *Engine) mark(ctx context.Context, isCorrect bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.cards) == 0 {
		return
	}
	card := e.cards[e.currentCardIndex]
	current, ok := e.progress[card.ID]
	if !ok {
		// ハイドレーション済みのはず。通常フローでは起きない
		e.logger.Warn("Mark requested for card without hydrated progress, ignoring", "card_id", card.ID)
		return
	}

	updated := current
	if isCorrect {
		updated.CorrectCount = 1
		updated.IncorrectCount = 0
	} else {
		updated.CorrectCount = 0
		updated.IncorrectCount = 1
	}
	updated.MasteryLevel = model.CalculateMasteryLevel(updated.CorrectCount, updated.IncorrectCount)
	updated.LastReviewed = time.Now()
	updated.TimeSpent = current.TimeSpent + reviewUnitMS

	if err := e.store.PutFlashcardProgress(ctx, &updated); err != nil {
		e.logger.Error("Failed to save progress, keeping in-memory state unchanged", "card_id", card.ID, "error", err)
		return
	}

	e.progress[card.ID] = updated
	e.scheduleSnapshotLocked()
}

// --- 設定 ---

// UpdateSettings は設定を差し替えます。
// シャッフル設定が変わった場合はカード列を組み立て直す。
// オートプレイの有効/無効・ディレイ変更はタイマーを予約し直す
func (e *Engine) UpdateSettings(ctx context.Context, settings model.FlashcardSettings) {
	e.mu.Lock()
	defer e.mu.Unlock()

	shuffleChanged := settings.Shuffle != e.settings.Shuffle
	autoPlayChanged := settings.AutoPlay != e.settings.AutoPlay
	e.settings = settings

	if shuffleChanged {
		e.deriveLocked(ctx)
		return
	}
	if autoPlayChanged {
		e.isAutoPlaying = settings.AutoPlay
	}
	e.rescheduleAutoPlayLocked()
	e.scheduleSnapshotLocked()
}

// Settings は現在の設定を返します
func (e *Engine) Settings() model.FlashcardSettings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// --- 読み出し ---

// State は現在状態のコピーを返します
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	cards := make([]model.GamePair, len(e.cards))
	copy(cards, e.cards)
	progress := make(map[string]model.FlashcardProgress, len(e.progress))
	for k, v := range e.progress {
		progress[k] = v
	}

	st := State{
		CurrentCardIndex: e.currentCardIndex,
		IsFlipped:        e.isFlipped,
		IsAutoPlaying:    e.isAutoPlaying,
		Cards:            cards,
		Progress:         progress,
		SessionID:        e.sessionID,
		TotalCards:       len(cards),
	}
	if len(e.cards) > 0 {
		card := e.cards[e.currentCardIndex]
		st.CurrentCard = &card
	}
	return st
}

// Stats は進捗マップから統計を再計算して返します
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	stats := Stats{Total: len(e.progress)}
	if stats.Total == 0 {
		return stats
	}

	var correctSum, attemptSum int
	for _, p := range e.progress {
		switch p.MasteryLevel {
		case model.MasteryMastered:
			stats.Mastered++
		case model.MasteryLearning:
			stats.Learning++
		}
		correctSum += p.CorrectCount
		attemptSum += p.CorrectCount + p.IncorrectCount
	}
	if attemptSum > 0 {
		stats.Accuracy = int(math.Round(float64(correctSum) / float64(attemptSum) * 100))
	}
	return stats
}

// --- オートプレイ ---

// rescheduleAutoPlayLocked はオートプレイのタイマーを予約し直します。
// 表なら指定ディレイ後にフリップ、裏なら次のカードへ進む。保留中のタイマーは常に高々1つ
func (e *Engine) rescheduleAutoPlayLocked() {
	if e.autoPlayTimer != nil {
		e.autoPlayTimer.Stop()
		e.autoPlayTimer = nil
	}
	if !e.isAutoPlaying || len(e.cards) == 0 || e.settings.AutoPlayDelay <= 0 {
		return
	}

	delay := time.Duration(e.settings.AutoPlayDelay) * time.Millisecond
	e.autoPlayTimer = time.AfterFunc(delay, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if !e.isAutoPlaying || len(e.cards) == 0 {
			return
		}
		if !e.isFlipped {
			e.flipCardLocked()
		} else {
			e.nextCardLocked()
		}
	})
}

// --- セッションスナップショット ---

// scheduleSnapshotLocked は現在状態の保存を debounce 後に予約します。
// 連続する変更は1回の書き込みにまとめられ、新しい予約が古い予約を置き換える
func (e *Engine) scheduleSnapshotLocked() {
	if e.snapshotTimer != nil {
		e.snapshotTimer.Stop()
		e.snapshotTimer = nil
	}
	if len(e.cards) == 0 {
		return
	}

	e.snapshotTimer = time.AfterFunc(e.debounce, func() {
		e.persistSnapshot(nil)
	})
}

// persistSnapshot は現在状態からセッションスナップショットを組み立てて保存します。
// ベストエフォート: 失敗はログのみ
func (e *Engine) persistSnapshot(endTime *time.Time) {
	e.mu.Lock()
	if len(e.cards) == 0 {
		e.mu.Unlock()
		return
	}
	snapshot := e.buildSnapshotLocked(endTime)
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.store.PutFlashcardSession(ctx, snapshot); err != nil {
		e.logger.Error("Failed to save session snapshot", "session_id", snapshot.ID, "error", err)
	}
}

func (e *Engine) buildSnapshotLocked(endTime *time.Time) *model.FlashcardSession {
	cards := make([]model.GamePair, len(e.cards))
	copy(cards, e.cards)
	progress := make(map[string]model.FlashcardProgress, len(e.progress))
	for k, v := range e.progress {
		progress[k] = v
	}
	return &model.FlashcardSession{
		ID:         e.sessionID,
		DatasetIDs: datatypes.NewJSONSlice(e.datasetIDs),
		Cards:      datatypes.NewJSONSlice(cards),
		Progress:   progress,
		StartTime:  e.startTime,
		EndTime:    endTime,
		Settings:   e.settings,
	}
}

// Close はタイマーを止め、終了時刻付きの最終スナップショットを同期的に書き出します
func (e *Engine) Close() {
	e.mu.Lock()
	if e.autoPlayTimer != nil {
		e.autoPlayTimer.Stop()
		e.autoPlayTimer = nil
	}
	if e.snapshotTimer != nil {
		e.snapshotTimer.Stop()
		e.snapshotTimer = nil
	}
	e.mu.Unlock()

	now := time.Now()
	e.persistSnapshot(&now)
}

// shuffleInPlace は Fisher–Yates で一様ランダムに並べ替えます
func shuffleInPlace(cards []model.GamePair) {
	for i := len(cards) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}
