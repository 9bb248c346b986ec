// internal/service/dataset_service_test.go
package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"flashdeck/internal/model"
	"flashdeck/internal/service"
	"flashdeck/internal/store/mocks"
)

func TestDatasetService_CreateDataset(t *testing.T) {
	tests := []struct {
		name        string
		dsName      string
		pairs       []model.PairRequest
		setupMock   func(m *mocks.Store)
		expectError error
		checkPairs  func(t *testing.T, pairs []model.GamePair)
	}{
		{
			name:   "Success - Valid pairs are normalized",
			dsName: "  Capitals  ",
			pairs: []model.PairRequest{
				{Term: " Japan ", Definition: " Tokyo "},
				{ID: "pair-existing", Term: "France", Definition: "Paris"},
				{Term: "incomplete", Definition: "   "}, // 定義が空白のみ → 落とされる
			},
			setupMock: func(m *mocks.Store) {
				m.On("AddDataset", mock.Anything, "Capitals", mock.Anything).
					Return(&model.Dataset{ID: "dataset-1", Name: "Capitals"}, nil).Once()
			},
			checkPairs: func(t *testing.T, pairs []model.GamePair) {
				require.Len(t, pairs, 2)
				// 前後の空白は除去される
				assert.Equal(t, "Japan", pairs[0].Term)
				assert.Equal(t, "Tokyo", pairs[0].Definition)
				// IDのないペアには採番され、既存IDは保持される
				assert.NotEmpty(t, pairs[0].ID)
				assert.Equal(t, "pair-existing", pairs[1].ID)
			},
		},
		{
			name:        "Fail - Empty name",
			dsName:      "   ",
			pairs:       []model.PairRequest{{Term: "a", Definition: "b"}},
			setupMock:   func(m *mocks.Store) { /* ストアは呼ばれない */ },
			expectError: model.ErrInvalidInput,
		},
		{
			name:        "Fail - No complete pairs",
			dsName:      "Capitals",
			pairs:       []model.PairRequest{{Term: "only term"}, {Definition: "only def"}},
			setupMock:   func(m *mocks.Store) { /* ストアは呼ばれない */ },
			expectError: model.ErrInvalidInput,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mockStore := mocks.NewStore(t)
			tc.setupMock(mockStore)
			svc := service.NewDatasetService(mockStore)

			ds, err := svc.CreateDataset(context.Background(), tc.dsName, tc.pairs)

			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, ds)
			if tc.checkPairs != nil {
				args := mockStore.Calls[0].Arguments
				tc.checkPairs(t, args.Get(2).([]model.GamePair))
			}
		})
	}
}

func TestDatasetService_GetDataset(t *testing.T) {
	mockStore := mocks.NewStore(t)
	mockStore.On("GetDataset", mock.Anything, "dataset-1").
		Return(&model.Dataset{ID: "dataset-1", Name: "A"}, nil).Once()
	mockStore.On("GetDataset", mock.Anything, "dataset-missing").Return(nil, nil).Once()

	svc := service.NewDatasetService(mockStore)

	ds, err := svc.GetDataset(context.Background(), "dataset-1")
	require.NoError(t, err)
	assert.Equal(t, "A", ds.Name)

	// ストアのnilはサービス層で ErrNotFound になる
	_, err = svc.GetDataset(context.Background(), "dataset-missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestDatasetService_ListDatasetsSortedByCreatedAt(t *testing.T) {
	now := time.Now()
	mockStore := mocks.NewStore(t)
	mockStore.On("GetAllDatasets", mock.Anything).Return([]*model.Dataset{
		{ID: "dataset-old", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "dataset-new", CreatedAt: now},
		{ID: "dataset-mid", CreatedAt: now.Add(-1 * time.Hour)},
	}, nil).Once()

	svc := service.NewDatasetService(mockStore)

	datasets, err := svc.ListDatasets(context.Background())
	require.NoError(t, err)
	require.Len(t, datasets, 3)
	// 新しい順
	assert.Equal(t, "dataset-new", datasets[0].ID)
	assert.Equal(t, "dataset-mid", datasets[1].ID)
	assert.Equal(t, "dataset-old", datasets[2].ID)
}

func TestDatasetService_PatchDataset(t *testing.T) {
	t.Run("Success - Name and pairs", func(t *testing.T) {
		mockStore := mocks.NewStore(t)
		mockStore.On("UpdateDataset", mock.Anything, "dataset-1", mock.MatchedBy(func(updates map[string]interface{}) bool {
			_, hasName := updates["Name"]
			_, hasPairs := updates["Pairs"]
			return hasName && hasPairs
		})).Return(&model.Dataset{ID: "dataset-1", Name: "New"}, nil).Once()

		svc := service.NewDatasetService(mockStore)

		newName := "New"
		ds, err := svc.PatchDataset(context.Background(), "dataset-1", &model.PatchDatasetRequest{
			Name:  &newName,
			Pairs: []model.PairRequest{{Term: "a", Definition: "b"}},
		})
		require.NoError(t, err)
		assert.Equal(t, "New", ds.Name)
	})

	t.Run("Fail - No fields to update", func(t *testing.T) {
		mockStore := mocks.NewStore(t)
		svc := service.NewDatasetService(mockStore)

		_, err := svc.PatchDataset(context.Background(), "dataset-1", &model.PatchDatasetRequest{})
		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})

	t.Run("Fail - Unknown dataset", func(t *testing.T) {
		mockStore := mocks.NewStore(t)
		mockStore.On("UpdateDataset", mock.Anything, "dataset-missing", mock.Anything).
			Return(nil, model.ErrNotFound).Once()
		svc := service.NewDatasetService(mockStore)

		newName := "New"
		_, err := svc.PatchDataset(context.Background(), "dataset-missing", &model.PatchDatasetRequest{Name: &newName})
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

func TestDatasetService_DeleteDataset(t *testing.T) {
	mockStore := mocks.NewStore(t)
	mockStore.On("DeleteDataset", mock.Anything, "dataset-1").Return(nil).Once()

	svc := service.NewDatasetService(mockStore)
	assert.NoError(t, svc.DeleteDataset(context.Background(), "dataset-1"))

	mockStore2 := mocks.NewStore(t)
	mockStore2.On("DeleteDataset", mock.Anything, "dataset-1").Return(errors.New("db down")).Once()

	svc2 := service.NewDatasetService(mockStore2)
	assert.ErrorIs(t, svc2.DeleteDataset(context.Background(), "dataset-1"), model.ErrInternalServer)
}

func TestDatasetService_CreateDatasetStoreConflict(t *testing.T) {
	mockStore := mocks.NewStore(t)
	mockStore.On("AddDataset", mock.Anything, "Capitals", mock.Anything).
		Return(nil, model.ErrConflict).Once()

	svc := service.NewDatasetService(mockStore)

	_, err := svc.CreateDataset(context.Background(), "Capitals", []model.PairRequest{{Term: "a", Definition: "b"}})
	assert.ErrorIs(t, err, model.ErrConflict)
}
