// internal/store/migrate.go
package store

import (
	"context"
	"errors"
	"fmt"

	"flashdeck/internal/model"

	"gorm.io/gorm"
)

// SchemaVersion は現在のスキーマバージョンです。
// バージョンアップは「新しいコレクションの追加」のみ（既存データには触らない）。
const SchemaVersion = 2

// schemaInfo はストアが最後に適用したスキーマバージョンを記録するシングルトンです
type schemaInfo struct {
	ID      int `gorm:"primaryKey"`
	Version int `gorm:"not null"`
}

func (schemaInfo) TableName() string {
	return "schema_info"
}

// migrationStep は1バージョン分の追加マイグレーションです
type migrationStep struct {
	version int
	apply   func(tx *gorm.DB) error
}

// マイグレーションはバージョン順の加算のみ。
// 既存バージョンのステップを書き換えてはならない（新しいバージョンを足すこと）。
var migrations = []migrationStep{
	{
		version: 1,
		apply: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&model.Dataset{})
		},
	},
	{
		version: 2,
		apply: func(tx *gorm.DB) error {
			return tx.AutoMigrate(
				&model.FlashcardProgress{},
				&model.FlashcardSession{},
				&model.SelectedDatasets{},
			)
		},
	},
}

// migrate は記録済みバージョンから SchemaVersion までの未適用ステップを順に適用します
func migrate(ctx context.Context, db *gorm.DB, targetVersion int) error {
	if err := db.WithContext(ctx).AutoMigrate(&schemaInfo{}); err != nil {
		return fmt.Errorf("store.migrate: migrating schema_info: %w", err)
	}

	var info schemaInfo
	result := db.WithContext(ctx).First(&info)
	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return fmt.Errorf("store.migrate: reading schema version: %w", result.Error)
		}
		info = schemaInfo{ID: 1, Version: 0}
	}

	for _, step := range migrations {
		if step.version <= info.Version || step.version > targetVersion {
			continue
		}
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := step.apply(tx); err != nil {
				return err
			}
			info.Version = step.version
			return tx.Save(&info).Error
		})
		if err != nil {
			return fmt.Errorf("store.migrate: applying version %d: %w", step.version, err)
		}
	}

	return nil
}
