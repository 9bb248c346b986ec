//go:generate mockery --name Store --output ./mocks --outpkg mocks --case=underscore
package store

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"flashdeck/internal/middleware"
	"flashdeck/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store は4つの独立したコレクション（datasets / flashcard_progress /
// flashcard_sessions / selected_datasets）を持つ、バージョン管理付きのローカルストアです。
// Initialize 以外のすべての操作は Initialize 完了前に呼ばれると model.ErrNotInitialized を返す。
type Store interface {
	Initialize(ctx context.Context) error

	AddDataset(ctx context.Context, name string, pairs []model.GamePair) (*model.Dataset, error)
	GetAllDatasets(ctx context.Context) ([]*model.Dataset, error)
	GetDataset(ctx context.Context, id string) (*model.Dataset, error)
	UpdateDataset(ctx context.Context, id string, updates map[string]interface{}) (*model.Dataset, error)
	DeleteDataset(ctx context.Context, id string) error

	PutFlashcardProgress(ctx context.Context, progress *model.FlashcardProgress) error
	GetFlashcardProgress(ctx context.Context, cardID string) (*model.FlashcardProgress, error)
	GetAllFlashcardProgress(ctx context.Context) ([]*model.FlashcardProgress, error)

	PutFlashcardSession(ctx context.Context, session *model.FlashcardSession) error
	GetFlashcardSession(ctx context.Context, id string) (*model.FlashcardSession, error)
	DeleteSessionsBefore(ctx context.Context, cutoff time.Time) (int64, error)

	PutSelectedDatasets(ctx context.Context, selection *model.SelectedDatasets) error
	GetSelectedDatasets(ctx context.Context) (*model.SelectedDatasets, error)
}

type gormStore struct {
	db          *gorm.DB
	initialized atomic.Bool
}

func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// Initialize は現在のスキーマバージョンでストアを開きます。冪等。
func (s *gormStore) Initialize(ctx context.Context) error {
	if s.initialized.Load() {
		return nil
	}
	if err := migrate(ctx, s.db, SchemaVersion); err != nil {
		return fmt.Errorf("gormStore.Initialize: %w", err)
	}
	s.initialized.Store(true)
	return nil
}

func (s *gormStore) ready() error {
	if !s.initialized.Load() {
		return model.ErrNotInitialized
	}
	return nil
}

// --- Datasets ---

func (s *gormStore) AddDataset(ctx context.Context, name string, pairs []model.GamePair) (*model.Dataset, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	logger := middleware.GetLogger(ctx)

	now := time.Now()
	dataset := &model.Dataset{
		ID:        model.NewDatasetID(),
		Name:      name,
		Pairs:     datatypes.NewJSONSlice(pairs),
		CreatedAt: now,
		UpdatedAt: now,
	}

	result := s.db.WithContext(ctx).Create(dataset)
	if result.Error != nil {
		// ID生成方式上まず起きないが、重複キーは上書きせず拒否する契約
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, model.ErrConflict
		}
		logger.Error("Error creating dataset in DB",
			"error", result.Error,
			"name", name,
		)
		return nil, fmt.Errorf("gormStore.AddDataset: %w", result.Error)
	}
	return dataset, nil
}

func (s *gormStore) GetAllDatasets(ctx context.Context) ([]*model.Dataset, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	logger := middleware.GetLogger(ctx)

	var datasets []*model.Dataset
	result := s.db.WithContext(ctx).Find(&datasets)
	if result.Error != nil {
		logger.Error("Error finding datasets in DB", "error", result.Error)
		return nil, fmt.Errorf("gormStore.GetAllDatasets: %w", result.Error)
	}
	return datasets, nil
}

func (s *gormStore) GetDataset(ctx context.Context, id string) (*model.Dataset, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	logger := middleware.GetLogger(ctx)

	var dataset model.Dataset
	result := s.db.WithContext(ctx).Where("id = ?", id).First(&dataset)
	if result.Error != nil {
		// 不在はエラーではなく nil を返す
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error("Error finding dataset by ID in DB", "error", result.Error, "dataset_id", id)
		return nil, fmt.Errorf("gormStore.GetDataset: %w", result.Error)
	}
	return &dataset, nil
}

func (s *gormStore) UpdateDataset(ctx context.Context, id string, updates map[string]interface{}) (*model.Dataset, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	logger := middleware.GetLogger(ctx)

	var updated *model.Dataset
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dataset model.Dataset
		if err := tx.Where("id = ?", id).First(&dataset).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// updateDataset だけは不在をハードエラーとして扱う契約
				return model.ErrNotFound
			}
			return err
		}

		if len(updates) > 0 {
			updates["UpdatedAt"] = time.Now()
			if err := tx.Model(&dataset).Updates(updates).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("id = ?", id).First(&dataset).Error; err != nil {
			return err
		}
		updated = &dataset
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error updating dataset in DB", "error", err, "dataset_id", id)
		return nil, fmt.Errorf("gormStore.UpdateDataset: %w", err)
	}
	return updated, nil
}

func (s *gormStore) DeleteDataset(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	logger := middleware.GetLogger(ctx)

	// 不在でもエラーにしない（ストアレベルの削除は事前の存在を要求しない）
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Dataset{})
	if result.Error != nil {
		logger.Error("Error deleting dataset in DB", "error", result.Error, "dataset_id", id)
		return fmt.Errorf("gormStore.DeleteDataset: %w", result.Error)
	}
	return nil
}

// --- Flashcard progress ---

func (s *gormStore) PutFlashcardProgress(ctx context.Context, progress *model.FlashcardProgress) error {
	if err := s.ready(); err != nil {
		return err
	}
	logger := middleware.GetLogger(ctx)

	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "card_id"}},
		UpdateAll: true,
	}).Create(progress)
	if result.Error != nil {
		logger.Error("Error upserting flashcard progress in DB", "error", result.Error, "card_id", progress.CardID)
		return fmt.Errorf("gormStore.PutFlashcardProgress: %w", result.Error)
	}
	return nil
}

func (s *gormStore) GetFlashcardProgress(ctx context.Context, cardID string) (*model.FlashcardProgress, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	logger := middleware.GetLogger(ctx)

	var progress model.FlashcardProgress
	result := s.db.WithContext(ctx).Where("card_id = ?", cardID).First(&progress)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error("Error finding flashcard progress in DB", "error", result.Error, "card_id", cardID)
		return nil, fmt.Errorf("gormStore.GetFlashcardProgress: %w", result.Error)
	}
	return &progress, nil
}

func (s *gormStore) GetAllFlashcardProgress(ctx context.Context) ([]*model.FlashcardProgress, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	logger := middleware.GetLogger(ctx)

	var progresses []*model.FlashcardProgress
	result := s.db.WithContext(ctx).Find(&progresses)
	if result.Error != nil {
		logger.Error("Error finding all flashcard progress in DB", "error", result.Error)
		return nil, fmt.Errorf("gormStore.GetAllFlashcardProgress: %w", result.Error)
	}
	return progresses, nil
}

// --- Flashcard sessions ---

func (s *gormStore) PutFlashcardSession(ctx context.Context, session *model.FlashcardSession) error {
	if err := s.ready(); err != nil {
		return err
	}
	logger := middleware.GetLogger(ctx)

	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(session)
	if result.Error != nil {
		logger.Error("Error upserting flashcard session in DB", "error", result.Error, "session_id", session.ID)
		return fmt.Errorf("gormStore.PutFlashcardSession: %w", result.Error)
	}
	return nil
}

func (s *gormStore) GetFlashcardSession(ctx context.Context, id string) (*model.FlashcardSession, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	logger := middleware.GetLogger(ctx)

	var session model.FlashcardSession
	result := s.db.WithContext(ctx).Where("id = ?", id).First(&session)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error("Error finding flashcard session in DB", "error", result.Error, "session_id", id)
		return nil, fmt.Errorf("gormStore.GetFlashcardSession: %w", result.Error)
	}
	return &session, nil
}

// DeleteSessionsBefore は開始時刻が cutoff より古いセッションを削除し、件数を返します。
// 保持期間プルーニングのスケジューラから呼ばれる。
func (s *gormStore) DeleteSessionsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	logger := middleware.GetLogger(ctx)

	result := s.db.WithContext(ctx).Where("start_time < ?", cutoff).Delete(&model.FlashcardSession{})
	if result.Error != nil {
		logger.Error("Error pruning flashcard sessions in DB", "error", result.Error)
		return 0, fmt.Errorf("gormStore.DeleteSessionsBefore: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// --- Selected datasets (singleton) ---

func (s *gormStore) PutSelectedDatasets(ctx context.Context, selection *model.SelectedDatasets) error {
	if err := s.ready(); err != nil {
		return err
	}
	logger := middleware.GetLogger(ctx)

	// 常に固定キーで上書き（レコードは1件だけ）
	selection.ID = model.SelectedDatasetsKey
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(selection)
	if result.Error != nil {
		logger.Error("Error upserting selected datasets in DB", "error", result.Error)
		return fmt.Errorf("gormStore.PutSelectedDatasets: %w", result.Error)
	}
	return nil
}

func (s *gormStore) GetSelectedDatasets(ctx context.Context) (*model.SelectedDatasets, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	logger := middleware.GetLogger(ctx)

	var selection model.SelectedDatasets
	result := s.db.WithContext(ctx).Where("id = ?", model.SelectedDatasetsKey).First(&selection)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error("Error finding selected datasets in DB", "error", result.Error)
		return nil, fmt.Errorf("gormStore.GetSelectedDatasets: %w", result.Error)
	}
	return &selection, nil
}
