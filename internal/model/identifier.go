// internal/model/identifier.go
package model

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ペアID採番用のアルファベット（元データとの互換のため小文字英数字）
const pairIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// 同一ミリ秒内の連続採番でも衝突しないよう、単調増加カウンタを併用する
var pairCounter atomic.Int64

// NewDatasetID はデータセットIDを生成します（タイムスタンプ + ランダム接尾辞）
func NewDatasetID() string {
	return fmt.Sprintf("dataset-%d-%s", time.Now().UnixMilli(), randomSuffix())
}

// NewSessionID はセッションIDを生成します。リセット時に再生成され、新しい学習回を区別する
func NewSessionID() string {
	return fmt.Sprintf("session-%d-%s", time.Now().UnixMilli(), randomSuffix())
}

// NewPairID はペアIDを生成します（タイムスタンプ + カウンタ + ランダム接尾辞）
func NewPairID() string {
	random, err := gonanoid.Generate(pairIDAlphabet, 9)
	if err != nil {
		// 乱数源の枯渇はまず起きない。起きた場合もカウンタとタイムスタンプで一意性は保たれる
		random = "fallback0"
	}
	return fmt.Sprintf("pair-%d-%d-%s", time.Now().UnixMilli(), pairCounter.Add(1), random)
}

// randomSuffix はUUIDの先頭セグメント（8桁hex）を接尾辞として返します
func randomSuffix() string {
	return strings.SplitN(uuid.NewString(), "-", 2)[0]
}
