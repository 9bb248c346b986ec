// internal/model/progress.go
package model

import "time"

// MasteryLevel はカードの直近のレビュー結果の分類です
type MasteryLevel string

const (
	MasteryNew       MasteryLevel = "new"
	MasteryLearning  MasteryLevel = "learning"
	MasteryReviewing MasteryLevel = "reviewing" // 将来の間隔反復拡張用。現在のロジックでは生成されない
	MasteryMastered  MasteryLevel = "mastered"
)

// FlashcardProgress はカード1枚の学習進捗を表します。
// cardId でグローバルにキーされる点に注意（セッションやデータセット単位ではない）。
// 同じカードIDが複数データセットに現れた場合、進捗は合流する。
type FlashcardProgress struct {
	CardID         string       `gorm:"primaryKey" json:"cardId"`
	CorrectCount   int          `gorm:"not null" json:"correctCount"`
	IncorrectCount int          `gorm:"not null" json:"incorrectCount"`
	LastReviewed   time.Time    `gorm:"index" json:"lastReviewed"`
	MasteryLevel   MasteryLevel `gorm:"index" json:"masteryLevel"`
	TimeSpent      int64        `json:"timeSpent"` // ミリ秒。実測ではなく固定の「1レビュー単位」を積算する
}

func (FlashcardProgress) TableName() string {
	return "flashcard_progress"
}

// CalculateMasteryLevel はカウントから習熟レベルを導出します。
// 「知ってる」= mastered、「まだ学習中」= learning という単純なロジック。
func CalculateMasteryLevel(correctCount, incorrectCount int) MasteryLevel {
	if correctCount > 0 {
		return MasteryMastered
	}
	if incorrectCount > 0 {
		return MasteryLearning
	}
	return MasteryNew
}

// NewFlashcardProgress は未レビューカード用の初期進捗を生成します
func NewFlashcardProgress(cardID string) *FlashcardProgress {
	return &FlashcardProgress{
		CardID:         cardID,
		CorrectCount:   0,
		IncorrectCount: 0,
		LastReviewed:   time.Now(),
		MasteryLevel:   MasteryNew,
		TimeSpent:      0,
	}
}
