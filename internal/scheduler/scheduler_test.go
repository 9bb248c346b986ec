// internal/scheduler/scheduler_test.go
package scheduler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"flashdeck/internal/scheduler"
	"flashdeck/internal/store/mocks"
)

func TestScheduler_PruneUsesRetentionCutoff(t *testing.T) {
	mockStore := mocks.NewStore(t)
	mockStore.On("DeleteSessionsBefore", mock.Anything, mock.MatchedBy(func(cutoff time.Time) bool {
		// 30日前後のカットオフ（実行タイミングの揺れを許容）
		expected := time.Now().AddDate(0, 0, -30)
		return cutoff.Sub(expected).Abs() < time.Minute
	})).Return(int64(2), nil).Once()

	s := scheduler.New(mockStore, nil, 30)
	s.Prune()
}

func TestScheduler_PruneSurvivesStoreError(t *testing.T) {
	mockStore := mocks.NewStore(t)
	mockStore.On("DeleteSessionsBefore", mock.Anything, mock.Anything).
		Return(int64(0), assert.AnError).Once()

	s := scheduler.New(mockStore, nil, 30)
	// 失敗してもpanicせずログだけで終わる
	s.Prune()
}

func TestScheduler_StartStop(t *testing.T) {
	mockStore := mocks.NewStore(t)

	s := scheduler.New(mockStore, nil, 30)
	assert.NoError(t, s.Start(24))
	s.Stop()
}
