// internal/session/speech.go
package session

// Utterance は読み上げ1回分のパラメータです
type Utterance struct {
	Text   string
	Voice  string // 空なら環境のデフォルト音声
	Rate   float64
	Volume float64 // 0〜1
}

// Synthesizer は読み上げエンジンへのポートです。
// プロセス内に音声合成は持たないため、実装はプレゼンテーション側（または外部プロセス）が差し込む
type Synthesizer interface {
	Voices() []string
	Speak(u Utterance) error
	Cancel()
}

// NopSynthesizer は何もしない実装です。TTS未対応環境のデフォルト
type NopSynthesizer struct{}

func (NopSynthesizer) Voices() []string        { return nil }
func (NopSynthesizer) Speak(u Utterance) error { return nil }
func (NopSynthesizer) Cancel()                 {}

// Speak はテキストを読み上げます。
// TTSが無効、または合成エンジンが未接続なら何もしない。
// 実行中の読み上げはキャンセルしてから新しい発話を開始する。
// 設定された音声名が見つからない場合はデフォルト音声にフォールバックする
func (e *Engine) Speak(text string) {
	e.mu.Lock()
	settings := e.settings
	synth := e.synth
	e.mu.Unlock()

	if !settings.TTSEnabled {
		return
	}
	if synth == nil {
		e.logger.Debug("Speech synthesis not available, skipping utterance")
		return
	}

	voice := ""
	if settings.TTSVoice != "" {
		for _, v := range synth.Voices() {
			if v == settings.TTSVoice {
				voice = settings.TTSVoice
				break
			}
		}
	}

	synth.Cancel()
	err := synth.Speak(Utterance{
		Text:   text,
		Voice:  voice,
		Rate:   settings.TTSRate,
		Volume: settings.TTSVolume,
	})
	if err != nil {
		// 読み上げ失敗でUIを止めない（ログのみ）
		e.logger.Warn("Speech synthesis failed", "error", err)
	}
}
