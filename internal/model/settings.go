// internal/model/settings.go
package model

// CardColors はカードの表裏の表示色です（プレゼンテーション層がそのまま使う）
type CardColors struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// FlashcardSettings はセッションの設定です。
// 独立しては永続化されず、セッションスナップショットに埋め込まれる。
type FlashcardSettings struct {
	AutoPlay      bool       `json:"autoPlay"`
	AutoPlayDelay int        `json:"autoPlayDelay" validate:"omitempty,min=100"` // ミリ秒
	Shuffle       bool       `json:"shuffle"`
	ShowProgress  bool       `json:"showProgress"`
	ShowHints     bool       `json:"showHints"`
	TTSEnabled    bool       `json:"ttsEnabled"`
	TTSVoice      string     `json:"ttsVoice,omitempty"`
	TTSRate       float64    `json:"ttsRate" validate:"omitempty,gt=0"`
	TTSVolume     float64    `json:"ttsVolume" validate:"gte=0,lte=1"`
	CardColors    CardColors `json:"cardColors"`
}

// DefaultSettings は設定のデフォルト値を返します
func DefaultSettings() FlashcardSettings {
	return FlashcardSettings{
		AutoPlay:      false,
		AutoPlayDelay: 3000,
		Shuffle:       false,
		ShowProgress:  true,
		ShowHints:     true,
		TTSEnabled:    false,
		TTSVoice:      "",
		TTSRate:       1,
		TTSVolume:     1,
		CardColors: CardColors{
			Front: "#3b82f6",
			Back:  "#10b981",
		},
	}
}
