// internal/service/dataset_service.go
//go:generate mockery --name DatasetService --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"flashdeck/internal/middleware"
	"flashdeck/internal/model"
	"flashdeck/internal/store"

	"gorm.io/datatypes"
)

type DatasetService interface {
	CreateDataset(ctx context.Context, name string, pairs []model.PairRequest) (*model.Dataset, error)
	GetDataset(ctx context.Context, id string) (*model.Dataset, error)
	ListDatasets(ctx context.Context) ([]*model.Dataset, error)
	PatchDataset(ctx context.Context, id string, req *model.PatchDatasetRequest) (*model.Dataset, error)
	DeleteDataset(ctx context.Context, id string) error
}

type datasetService struct {
	store store.Store
}

func NewDatasetService(s store.Store) DatasetService {
	return &datasetService{store: s}
}

// CreateDataset は名前とペアを検証・正規化してデータセットを作成します。
// ストア自体はどんな配列でも受けるため、「ペアが空でない」ことはここ（作成側）で強制する
func (s *datasetService) CreateDataset(ctx context.Context, name string, pairs []model.PairRequest) (*model.Dataset, error) {
	logger := middleware.GetLogger(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.NewAppError("VALIDATION_ERROR", "データセット名を入力してください。", "name", model.ErrInvalidInput)
	}

	normalized := normalizePairs(pairs)
	if len(normalized) == 0 {
		return nil, model.NewAppError("VALIDATION_ERROR", "用語と定義が両方入力されたペアが1つ以上必要です。", "pairs", model.ErrInvalidInput)
	}

	dataset, err := s.store.AddDataset(ctx, name, normalized)
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			return nil, err
		}
		logger.Error("Error adding dataset in store", "error", err, "name", name)
		return nil, model.ErrInternalServer
	}
	return dataset, nil
}

func (s *datasetService) GetDataset(ctx context.Context, id string) (*model.Dataset, error) {
	dataset, err := s.store.GetDataset(ctx, id)
	if err != nil {
		return nil, model.ErrInternalServer
	}
	if dataset == nil {
		return nil, model.ErrNotFound
	}
	return dataset, nil
}

// ListDatasets は全データセットを返します。
// ストアの順序は未規定なので、表示用に作成日時の降順へ並べ替える
func (s *datasetService) ListDatasets(ctx context.Context) ([]*model.Dataset, error) {
	logger := middleware.GetLogger(ctx)

	datasets, err := s.store.GetAllDatasets(ctx)
	if err != nil {
		logger.Error("Error listing datasets", "error", err)
		return nil, model.ErrInternalServer
	}
	sort.Slice(datasets, func(i, j int) bool {
		return datasets[i].CreatedAt.After(datasets[j].CreatedAt)
	})
	return datasets, nil
}

func (s *datasetService) PatchDataset(ctx context.Context, id string, req *model.PatchDatasetRequest) (*model.Dataset, error) {
	logger := middleware.GetLogger(ctx)

	updates := make(map[string]interface{})
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, model.NewAppError("VALIDATION_ERROR", "データセット名を入力してください。", "name", model.ErrInvalidInput)
		}
		updates["Name"] = name
	}
	if req.Pairs != nil {
		normalized := normalizePairs(req.Pairs)
		if len(normalized) == 0 {
			return nil, model.NewAppError("VALIDATION_ERROR", "用語と定義が両方入力されたペアが1つ以上必要です。", "pairs", model.ErrInvalidInput)
		}
		updates["Pairs"] = datatypes.NewJSONSlice(normalized)
	}
	if len(updates) == 0 {
		return nil, model.NewAppError("VALIDATION_ERROR", "更新するフィールドが指定されていません。", "", model.ErrInvalidInput)
	}

	dataset, err := s.store.UpdateDataset(ctx, id, updates)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error updating dataset in store", "error", err, "dataset_id", id)
		return nil, model.ErrInternalServer
	}
	return dataset, nil
}

func (s *datasetService) DeleteDataset(ctx context.Context, id string) error {
	logger := middleware.GetLogger(ctx)

	if err := s.store.DeleteDataset(ctx, id); err != nil {
		logger.Error("Error deleting dataset in store", "error", err, "dataset_id", id)
		return model.ErrInternalServer
	}
	return nil
}

// normalizePairs は不完全なペア（用語か定義が空白のみ）を落とし、
// IDのないペアに新しいIDを採番します
func normalizePairs(pairs []model.PairRequest) []model.GamePair {
	out := make([]model.GamePair, 0, len(pairs))
	for _, p := range pairs {
		term := strings.TrimSpace(p.Term)
		definition := strings.TrimSpace(p.Definition)
		if term == "" || definition == "" {
			continue
		}
		id := p.ID
		if id == "" {
			id = model.NewPairID()
		}
		out = append(out, model.GamePair{
			ID:         id,
			Term:       term,
			Definition: definition,
		})
	}
	return out
}
