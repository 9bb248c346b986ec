// internal/selection/tracker.go
package selection

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"flashdeck/internal/model"
	"flashdeck/internal/store"

	"gorm.io/datatypes"
)

// Tracker はプロセス全体で共有される「学習対象に選択中のデータセット」の集合です。
// 選択はストアのシングルトンレコードにミラーされ、リロード後も生き残る。
// 意味的には順序なし集合だが、表示安定のため挿入順を保持する。
type Tracker struct {
	mu       sync.RWMutex
	store    store.Store
	logger   *slog.Logger
	selected []*model.Dataset
	hydrated bool
}

func NewTracker(s store.Store, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		store:  s,
		logger: logger,
	}
}

// Hydrate はストアのシングルトンレコードから選択を復元します。
// 解決できなくなったID（削除済みデータセット）は黙って落とす。エラーでも失敗にはしない。
func (t *Tracker) Hydrate(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	defer func() { t.hydrated = true }()

	saved, err := t.store.GetSelectedDatasets(ctx)
	if err != nil {
		t.logger.Warn("Failed to load selected datasets, starting with empty selection", "error", err)
		return
	}
	if saved == nil || len(saved.DatasetIDs) == 0 {
		return
	}

	resolved := make([]*model.Dataset, 0, len(saved.DatasetIDs))
	for _, id := range saved.DatasetIDs {
		dataset, err := t.store.GetDataset(ctx, id)
		if err != nil {
			t.logger.Warn("Failed to resolve selected dataset, dropping from selection", "dataset_id", id, "error", err)
			continue
		}
		if dataset == nil {
			// もう存在しないIDは選択から外す
			continue
		}
		resolved = append(resolved, dataset)
	}
	t.selected = resolved
	t.logger.Info("Selection hydrated", "count", len(resolved))
}

// Toggle はデータセットの選択状態を反転します。
// 選択済みなら外し、未選択なら末尾に加える。変更後の選択をストアへミラーする。
func (t *Tracker) Toggle(ctx context.Context, dataset *model.Dataset) {
	t.mu.Lock()
	found := -1
	for i, d := range t.selected {
		if d.ID == dataset.ID {
			found = i
			break
		}
	}
	if found >= 0 {
		t.selected = append(t.selected[:found], t.selected[found+1:]...)
	} else {
		t.selected = append(t.selected, dataset)
	}
	ids := t.idsLocked()
	t.mu.Unlock()

	t.persist(ctx, ids)
}

// Clear は選択を空にします
func (t *Tracker) Clear(ctx context.Context) {
	t.mu.Lock()
	t.selected = nil
	t.mu.Unlock()

	t.persist(ctx, []string{})
}

// IsSelected は指定IDが選択中かを返します
func (t *Tracker) IsSelected(id string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, d := range t.selected {
		if d.ID == id {
			return true
		}
	}
	return false
}

// Selected は現在の選択のコピーを返します
func (t *Tracker) Selected() []*model.Dataset {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*model.Dataset, len(t.selected))
	copy(out, t.selected)
	return out
}

func (t *Tracker) idsLocked() []string {
	ids := make([]string, len(t.selected))
	for i, d := range t.selected {
		ids[i] = d.ID
	}
	return ids
}

// persist は選択のID一覧をストアへ保存します。
// fire-and-forget: 永続化の失敗で選択操作をブロックしない（ログのみ）。
func (t *Tracker) persist(ctx context.Context, ids []string) {
	// リクエストのキャンセルに巻き込まれないよう切り離す
	bgCtx := context.WithoutCancel(ctx)
	go func() {
		saveCtx, cancel := context.WithTimeout(bgCtx, 5*time.Second)
		defer cancel()

		err := t.store.PutSelectedDatasets(saveCtx, &model.SelectedDatasets{
			DatasetIDs:  datatypes.NewJSONSlice(ids),
			LastUpdated: time.Now(),
		})
		if err != nil {
			t.logger.Error("Failed to save selected datasets", "error", err)
		}
	}()
}
