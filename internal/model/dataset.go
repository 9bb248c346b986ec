// internal/model/dataset.go
package model

import (
	"time"

	"gorm.io/datatypes"
)

// GamePair は1枚のカード（用語とその定義）を表します
type GamePair struct {
	ID         string `json:"id"`
	Term       string `json:"term"`       // 用語（カードの表面）
	Definition string `json:"definition"` // 定義（カードの裏面）
}

// Dataset はユーザーが作成したカードの集合を表します
type Dataset struct {
	ID        string                        `gorm:"primaryKey" json:"id"`
	Name      string                        `gorm:"not null;index" json:"name"`
	Pairs     datatypes.JSONSlice[GamePair] `json:"pairs"`
	CreatedAt time.Time                     `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time                     `json:"updatedAt"`
}

func (Dataset) TableName() string {
	return "datasets"
}

// データセット作成リクエストDTO
// ペアの中身（term/definition）はサービス層で正規化するため、ここでは形だけ検証する
type PostDatasetRequest struct {
	Name  string        `json:"name" validate:"required"`
	Pairs []PairRequest `json:"pairs" validate:"required,min=1"`
}

// データセット更新（部分）リクエストDTO
type PatchDatasetRequest struct {
	Name  *string       `json:"name,omitempty" validate:"omitempty,min=1"`
	Pairs []PairRequest `json:"pairs,omitempty"`
}

// PairRequest はリクエスト内の1ペアを表します。
// IDは省略可能（省略時はサーバー側で採番）
type PairRequest struct {
	ID         string `json:"id,omitempty"`
	Term       string `json:"term"`
	Definition string `json:"definition"`
}
