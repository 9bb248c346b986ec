// internal/model/session.go
package model

import (
	"time"

	"gorm.io/datatypes"
)

// FlashcardSession は1回の学習セッションのスナップショットを表します。
// 状態変化のたびにデバウンス付きで丸ごと保存される（差分ではない）。
type FlashcardSession struct {
	ID         string                        `gorm:"primaryKey" json:"id"`
	DatasetIDs datatypes.JSONSlice[string]   `json:"datasetIds"`
	Cards      datatypes.JSONSlice[GamePair] `json:"cards"`
	Progress   map[string]FlashcardProgress  `gorm:"serializer:json" json:"progress"`
	StartTime  time.Time                     `gorm:"index" json:"startTime"`
	EndTime    *time.Time                    `json:"endTime,omitempty"`
	Settings   FlashcardSettings             `gorm:"serializer:json" json:"settings"`
}

func (FlashcardSession) TableName() string {
	return "flashcard_sessions"
}

// セッション操作リクエストDTO
type MarkRequest struct {
	Correct *bool `json:"correct" validate:"required"`
}

type GoToRequest struct {
	Index *int `json:"index" validate:"required"`
}

type KeyPressRequest struct {
	Key string `json:"key" validate:"required"`
}

type SpeakRequest struct {
	Text string `json:"text" validate:"required"`
}
