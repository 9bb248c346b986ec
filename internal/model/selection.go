// internal/model/selection.go
package model

import (
	"time"

	"gorm.io/datatypes"
)

// SelectedDatasetsKey は選択レコードの固定キーです。レコードは常に1件だけ存在する。
const SelectedDatasetsKey = "selected_datasets"

// SelectedDatasets は「いま学習対象に選ばれているデータセット」の永続レコードです。
// シングルトンとして固定キーで上書き保存される。
type SelectedDatasets struct {
	ID          string                      `gorm:"primaryKey" json:"-"`
	DatasetIDs  datatypes.JSONSlice[string] `json:"datasetIds"`
	LastUpdated time.Time                   `json:"lastUpdated"`
}

func (SelectedDatasets) TableName() string {
	return "selected_datasets"
}
