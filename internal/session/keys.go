// internal/session/keys.go
package session

// HandleKey はプレゼンテーション層から中継されたキー入力をセッション操作に振り分けます。
// 対応キーを処理したら true を返す。設定パネル表示中の抑制は呼び出し側の責務。
//
//	Space / Enter : フリップ
//	ArrowLeft     : 前のカード
//	ArrowRight    : 次のカード
//	s             : シャッフル
//	r             : セッションリセット
func (e *Engine) HandleKey(key string) bool {
	switch key {
	case " ", "Space", "Enter":
		e.FlipCard()
	case "ArrowLeft":
		e.PreviousCard()
	case "ArrowRight":
		e.NextCard()
	case "s", "S":
		e.ShuffleCards()
	case "r", "R":
		e.ResetSession()
	default:
		return false
	}
	return true
}
