// internal/session/engine_test.go
package session_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"flashdeck/internal/model"
	"flashdeck/internal/session"
	"flashdeck/internal/store/mocks"
)

// newTestEngine はスナップショットのデバウンスを長く取り、
// テスト中に勝手な保存が走らないエンジンを作ります
func newTestEngine(t *testing.T, s *mocks.Store) *session.Engine {
	t.Helper()
	return session.NewEngine(s, session.NopSynthesizer{}, nil, time.Hour)
}

func testDataset(id, name string, pairCount int) *model.Dataset {
	pairs := make([]model.GamePair, 0, pairCount)
	for i := 0; i < pairCount; i++ {
		pairs = append(pairs, model.GamePair{
			ID:         fmt.Sprintf("%s-pair-%d", id, i),
			Term:       fmt.Sprintf("%s term %d", name, i),
			Definition: fmt.Sprintf("%s definition %d", name, i),
		})
	}
	return &model.Dataset{
		ID:    id,
		Name:  name,
		Pairs: datatypes.NewJSONSlice(pairs),
	}
}

func noShuffleSettings() model.FlashcardSettings {
	s := model.DefaultSettings()
	s.Shuffle = false
	s.AutoPlay = false
	return s
}

func TestEngine_StartFlattensCardsInOrder(t *testing.T) {
	mockStore := mocks.NewStore(t)
	mockStore.On("GetFlashcardProgress", mock.Anything, mock.Anything).Return(nil, nil)

	e := newTestEngine(t, mockStore)
	e.Start(context.Background(), []*model.Dataset{
		testDataset("dataset-1", "A", 2),
		testDataset("dataset-2", "B", 2),
	}, noShuffleSettings())

	state := e.State()
	assert.Equal(t, 4, state.TotalCards)
	assert.Equal(t, 0, state.CurrentCardIndex)
	assert.False(t, state.IsFlipped)
	assert.False(t, state.IsAutoPlaying)

	// データセット順→ペア順で平坦化される
	gotIDs := make([]string, 0, len(state.Cards))
	for _, c := range state.Cards {
		gotIDs = append(gotIDs, c.ID)
	}
	assert.Equal(t, []string{"dataset-1-pair-0", "dataset-1-pair-1", "dataset-2-pair-0", "dataset-2-pair-1"}, gotIDs)

	require.NotNil(t, state.CurrentCard)
	assert.Equal(t, "dataset-1-pair-0", state.CurrentCard.ID)

	// 進捗のないカードには初期進捗が合成される
	require.Len(t, state.Progress, 4)
	for _, p := range state.Progress {
		assert.Equal(t, model.MasteryNew, p.MasteryLevel)
		assert.Equal(t, 0, p.CorrectCount)
	}
}

func TestEngine_EmptySelectionIsValidSteadyState(t *testing.T) {
	mockStore := mocks.NewStore(t)

	e := newTestEngine(t, mockStore)
	e.Start(context.Background(), nil, noShuffleSettings())

	state := e.State()
	assert.Equal(t, 0, state.TotalCards)
	assert.Nil(t, state.CurrentCard)

	// カードがなければナビゲーション・マークはすべて無害な無視
	e.NextCard()
	e.PreviousCard()
	e.FlipCard()
	e.GoToCard(5)
	e.MarkCorrect(context.Background())

	state = e.State()
	assert.Equal(t, 0, state.CurrentCardIndex)

	stats := e.Stats()
	assert.Equal(t, session.Stats{}, stats)
}

func TestEngine_Navigation(t *testing.T) {
	mockStore := mocks.NewStore(t)
	mockStore.On("GetFlashcardProgress", mock.Anything, mock.Anything).Return(nil, nil)

	e := newTestEngine(t, mockStore)
	e.Start(context.Background(), []*model.Dataset{testDataset("dataset-1", "A", 3)}, noShuffleSettings())

	// フリップしてから進むとフリップは解除される
	e.FlipCard()
	assert.True(t, e.State().IsFlipped)
	e.NextCard()
	state := e.State()
	assert.Equal(t, 1, state.CurrentCardIndex)
	assert.False(t, state.IsFlipped)

	// 末尾から次へ進むと先頭へ循環
	e.NextCard()
	e.NextCard()
	assert.Equal(t, 0, e.State().CurrentCardIndex)

	// 先頭から前へ戻ると末尾へ循環
	e.PreviousCard()
	assert.Equal(t, 2, e.State().CurrentCardIndex)

	// 範囲外の指定はクランプされる
	e.GoToCard(100)
	assert.Equal(t, 2, e.State().CurrentCardIndex)
	e.GoToCard(-10)
	assert.Equal(t, 0, e.State().CurrentCardIndex)
	e.GoToCard(1)
	assert.Equal(t, 1, e.State().CurrentCardIndex)
}

func TestEngine_ShufflePreservesCardSet(t *testing.T) {
	mockStore := mocks.NewStore(t)
	mockStore.On("GetFlashcardProgress", mock.Anything, mock.Anything).Return(nil, nil)

	e := newTestEngine(t, mockStore)
	e.Start(context.Background(), []*model.Dataset{testDataset("dataset-1", "A", 10)}, noShuffleSettings())

	before := e.State().Cards
	e.GoToCard(5)
	e.FlipCard()

	e.ShuffleCards()

	state := e.State()
	// 並べ替えはカードの集合を変えない。カーソルは先頭へ、フリップは解除
	assert.ElementsMatch(t, before, state.Cards)
	assert.Equal(t, 0, state.CurrentCardIndex)
	assert.False(t, state.IsFlipped)
}

func TestEngine_MarkOverwritesCounts(t *testing.T) {
	mockStore := mocks.NewStore(t)
	mockStore.On("GetFlashcardProgress", mock.Anything, mock.Anything).Return(nil, nil)

	var saved []*model.FlashcardProgress
	mockStore.On("PutFlashcardProgress", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			p := args.Get(1).(*model.FlashcardProgress)
			cp := *p
			saved = append(saved, &cp)
		}).
		Return(nil)

	e := newTestEngine(t, mockStore)
	e.Start(context.Background(), []*model.Dataset{testDataset("dataset-1", "A", 1)}, noShuffleSettings())

	// 正解マーク: カウントは 1/0 で上書き
	e.MarkCorrect(context.Background())
	state := e.State()
	p := state.Progress["dataset-1-pair-0"]
	assert.Equal(t, 1, p.CorrectCount)
	assert.Equal(t, 0, p.IncorrectCount)
	assert.Equal(t, model.MasteryMastered, p.MasteryLevel)
	assert.EqualValues(t, 1000, p.TimeSpent)

	// 直後の不正解マーク: 累積せず 0/1 へ置き換わる（correctCount は 0 に戻る）
	e.MarkIncorrect(context.Background())
	state = e.State()
	p = state.Progress["dataset-1-pair-0"]
	assert.Equal(t, 0, p.CorrectCount)
	assert.Equal(t, 1, p.IncorrectCount)
	assert.Equal(t, model.MasteryLearning, p.MasteryLevel)
	assert.EqualValues(t, 2000, p.TimeSpent)

	// ストアへはメモリ更新と同じ内容が渡っている
	require.Len(t, saved, 2)
	assert.Equal(t, 1, saved[0].CorrectCount)
	assert.Equal(t, 1, saved[1].IncorrectCount)
}

func TestEngine_MarkPersistFailureLeavesStateUnchanged(t *testing.T) {
	mockStore := mocks.NewStore(t)
	mockStore.On("GetFlashcardProgress", mock.Anything, mock.Anything).Return(nil, nil)
	mockStore.On("PutFlashcardProgress", mock.Anything, mock.Anything).Return(assert.AnError)

	e := newTestEngine(t, mockStore)
	e.Start(context.Background(), []*model.Dataset{testDataset("dataset-1", "A", 1)}, noShuffleSettings())

	e.MarkCorrect(context.Background())

	// 永続化が失敗したらメモリ上の進捗は据え置き
	p := e.State().Progress["dataset-1-pair-0"]
	assert.Equal(t, 0, p.CorrectCount)
	assert.Equal(t, 0, p.IncorrectCount)
	assert.Equal(t, model.MasteryNew, p.MasteryLevel)
}

func TestEngine_HydratesExistingProgress(t *testing.T) {
	mockStore := mocks.NewStore(t)
	mockStore.On("GetFlashcardProgress", mock.Anything, "dataset-1-pair-0").Return(&model.FlashcardProgress{
		CardID:       "dataset-1-pair-0",
		CorrectCount: 1,
		MasteryLevel: model.MasteryMastered,
		TimeSpent:    5000,
	}, nil)
	mockStore.On("GetFlashcardProgress", mock.Anything, "dataset-1-pair-1").Return(nil, nil)

	e := newTestEngine(t, mockStore)
	e.Start(context.Background(), []*model.Dataset{testDataset("dataset-1", "A", 2)}, noShuffleSettings())

	state := e.State()
	assert.Equal(t, model.MasteryMastered, state.Progress["dataset-1-pair-0"].MasteryLevel)
	assert.EqualValues(t, 5000, state.Progress["dataset-1-pair-0"].TimeSpent)
	assert.Equal(t, model.MasteryNew, state.Progress["dataset-1-pair-1"].MasteryLevel)
}

func TestEngine_Stats(t *testing.T) {
	mockStore := mocks.NewStore(t)
	// 4枚中: 3枚 mastered (correct=1)、1枚 learning (incorrect=1) → 正答率 75%
	for i := 0; i < 3; i++ {
		cardID := fmt.Sprintf("dataset-1-pair-%d", i)
		mockStore.On("GetFlashcardProgress", mock.Anything, cardID).Return(&model.FlashcardProgress{
			CardID:       cardID,
			CorrectCount: 1,
			MasteryLevel: model.MasteryMastered,
		}, nil)
	}
	mockStore.On("GetFlashcardProgress", mock.Anything, "dataset-1-pair-3").Return(&model.FlashcardProgress{
		CardID:         "dataset-1-pair-3",
		IncorrectCount: 1,
		MasteryLevel:   model.MasteryLearning,
	}, nil)

	e := newTestEngine(t, mockStore)
	e.Start(context.Background(), []*model.Dataset{testDataset("dataset-1", "A", 4)}, noShuffleSettings())

	stats := e.Stats()
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 3, stats.Mastered)
	assert.Equal(t, 1, stats.Learning)
	assert.Equal(t, 75, stats.Accuracy)
}

func TestEngine_StatsWithoutAttempts(t *testing.T) {
	mockStore := mocks.NewStore(t)
	mockStore.On("GetFlashcardProgress", mock.Anything, mock.Anything).Return(nil, nil)

	e := newTestEngine(t, mockStore)
	e.Start(context.Background(), []*model.Dataset{testDataset("dataset-1", "A", 3)}, noShuffleSettings())

	// 試行ゼロなら正答率は0（ゼロ除算しない）
	stats := e.Stats()
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 0, stats.Accuracy)
}

func TestEngine_ResetSession(t *testing.T) {
	mockStore := mocks.NewStore(t)
	mockStore.On("GetFlashcardProgress", mock.Anything, mock.Anything).Return(nil, nil)
	mockStore.On("PutFlashcardProgress", mock.Anything, mock.Anything).Return(nil)

	e := newTestEngine(t, mockStore)
	e.Start(context.Background(), []*model.Dataset{testDataset("dataset-1", "A", 3)}, noShuffleSettings())

	e.MarkCorrect(context.Background())
	e.NextCard()
	e.FlipCard()
	e.ToggleAutoPlay()
	before := e.State()
	require.True(t, before.IsAutoPlaying)

	e.ResetSession()

	state := e.State()
	// セッションIDは新しくなるが、カードと進捗は引き継がれる
	assert.NotEqual(t, before.SessionID, state.SessionID)
	assert.Equal(t, before.Cards, state.Cards)
	assert.Equal(t, before.Progress, state.Progress)
	assert.Equal(t, 0, state.CurrentCardIndex)
	assert.False(t, state.IsFlipped)
	assert.False(t, state.IsAutoPlaying)
}

func TestEngine_UpdateSettingsAutoPlay(t *testing.T) {
	mockStore := mocks.NewStore(t)
	mockStore.On("GetFlashcardProgress", mock.Anything, mock.Anything).Return(nil, nil)

	e := newTestEngine(t, mockStore)
	e.Start(context.Background(), []*model.Dataset{testDataset("dataset-1", "A", 2)}, noShuffleSettings())
	require.False(t, e.State().IsAutoPlaying)

	// AutoPlay設定の変更は稼働状態へ反映される
	settings := e.Settings()
	settings.AutoPlay = true
	settings.AutoPlayDelay = 60_000 // テスト中に発火しないよう長めに
	e.UpdateSettings(context.Background(), settings)
	assert.True(t, e.State().IsAutoPlaying)

	settings.AutoPlay = false
	e.UpdateSettings(context.Background(), settings)
	assert.False(t, e.State().IsAutoPlaying)
}

func TestEngine_UpdateSettingsShuffleRebuildsDeck(t *testing.T) {
	mockStore := mocks.NewStore(t)
	mockStore.On("GetFlashcardProgress", mock.Anything, mock.Anything).Return(nil, nil)

	e := newTestEngine(t, mockStore)
	e.Start(context.Background(), []*model.Dataset{testDataset("dataset-1", "A", 5)}, noShuffleSettings())
	e.GoToCard(3)

	settings := e.Settings()
	settings.Shuffle = true
	e.UpdateSettings(context.Background(), settings)

	// シャッフル設定の変更はカード列を組み立て直し、カーソルを先頭へ戻す
	state := e.State()
	assert.Equal(t, 0, state.CurrentCardIndex)
	assert.Equal(t, 5, state.TotalCards)
}

func TestEngine_AutoPlayAdvances(t *testing.T) {
	mockStore := mocks.NewStore(t)
	mockStore.On("GetFlashcardProgress", mock.Anything, mock.Anything).Return(nil, nil)

	settings := noShuffleSettings()
	settings.AutoPlay = true
	settings.AutoPlayDelay = 100

	e := newTestEngine(t, mockStore)
	e.Start(context.Background(), []*model.Dataset{testDataset("dataset-1", "A", 2)}, settings)
	require.True(t, e.State().IsAutoPlaying)

	// 表向き → まずフリップされる
	require.Eventually(t, func() bool {
		return e.State().IsFlipped
	}, 3*time.Second, 10*time.Millisecond)

	// 裏向き → 次のカードへ進み、フリップは解除される
	require.Eventually(t, func() bool {
		s := e.State()
		return s.CurrentCardIndex == 1 && !s.IsFlipped
	}, 3*time.Second, 10*time.Millisecond)
}

func TestEngine_SnapshotDebounce(t *testing.T) {
	mockStore := mocks.NewStore(t)
	mockStore.On("GetFlashcardProgress", mock.Anything, mock.Anything).Return(nil, nil)

	putCh := make(chan *model.FlashcardSession, 10)
	mockStore.On("PutFlashcardSession", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			putCh <- args.Get(1).(*model.FlashcardSession)
		}).
		Return(nil)

	e := session.NewEngine(mockStore, session.NopSynthesizer{}, nil, 100*time.Millisecond)
	e.Start(context.Background(), []*model.Dataset{testDataset("dataset-1", "A", 3)}, noShuffleSettings())

	// デバウンス窓内の連続操作は1回の保存にまとめられる
	e.NextCard()
	e.FlipCard()
	e.NextCard()

	var snapshot *model.FlashcardSession
	select {
	case snapshot = <-putCh:
	case <-time.After(3 * time.Second):
		t.Fatal("snapshot was not persisted")
	}

	assert.Equal(t, []string{"dataset-1"}, []string(snapshot.DatasetIDs))
	assert.Len(t, snapshot.Cards, 3)
	assert.Nil(t, snapshot.EndTime)

	// 静止後の追加保存はない
	select {
	case <-putCh:
		t.Fatal("unexpected extra snapshot")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestEngine_CloseWritesFinalSnapshot(t *testing.T) {
	mockStore := mocks.NewStore(t)
	mockStore.On("GetFlashcardProgress", mock.Anything, mock.Anything).Return(nil, nil)

	var final *model.FlashcardSession
	mockStore.On("PutFlashcardSession", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			final = args.Get(1).(*model.FlashcardSession)
		}).
		Return(nil)

	e := newTestEngine(t, mockStore)
	e.Start(context.Background(), []*model.Dataset{testDataset("dataset-1", "A", 1)}, noShuffleSettings())

	e.Close()

	// Closeは終了時刻付きの最終スナップショットを同期的に書く
	require.NotNil(t, final)
	assert.NotNil(t, final.EndTime)
}

func TestEngine_HandleKey(t *testing.T) {
	mockStore := mocks.NewStore(t)
	mockStore.On("GetFlashcardProgress", mock.Anything, mock.Anything).Return(nil, nil)

	e := newTestEngine(t, mockStore)
	e.Start(context.Background(), []*model.Dataset{testDataset("dataset-1", "A", 3)}, noShuffleSettings())

	tests := []struct {
		name    string
		key     string
		handled bool
		check   func(t *testing.T)
	}{
		{
			name: "Space flips the card", key: " ", handled: true,
			check: func(t *testing.T) { assert.True(t, e.State().IsFlipped) },
		},
		{
			name: "ArrowRight advances", key: "ArrowRight", handled: true,
			check: func(t *testing.T) { assert.Equal(t, 1, e.State().CurrentCardIndex) },
		},
		{
			name: "ArrowLeft goes back", key: "ArrowLeft", handled: true,
			check: func(t *testing.T) { assert.Equal(t, 0, e.State().CurrentCardIndex) },
		},
		{
			name: "Unknown key is ignored", key: "x", handled: false,
			check: func(t *testing.T) {},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.handled, e.HandleKey(tc.key))
			tc.check(t)
		})
	}
}
