// internal/scheduler/scheduler.go
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"flashdeck/internal/store"

	"github.com/go-co-op/gocron"
)

// Scheduler は古いセッションスナップショットの定期削除を担います。
// 保持期間を過ぎたセッションは学習履歴として参照されないため、ストアから間引く
type Scheduler struct {
	cron          *gocron.Scheduler
	store         store.Store
	logger        *slog.Logger
	retentionDays int
}

func New(s store.Store, logger *slog.Logger, retentionDays int) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:          gocron.NewScheduler(time.UTC),
		store:         s,
		logger:        logger,
		retentionDays: retentionDays,
	}
}

// Start はprune処理を指定間隔で起動します。非同期で走るため呼び出しはブロックしない
func (s *Scheduler) Start(intervalHours int) error {
	_, err := s.cron.Every(intervalHours).Hours().Do(func() {
		s.Prune()
	})
	if err != nil {
		return err
	}
	s.cron.StartAsync()
	s.logger.Info("Session pruning scheduled", "interval_hours", intervalHours, "retention_days", s.retentionDays)
	return nil
}

// Stop は実行中のジョブの完了を待ってスケジューラを止めます
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// Prune は保持期間を過ぎたセッションを1回分削除します
func (s *Scheduler) Prune() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	deleted, err := s.store.DeleteSessionsBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("Failed to prune old sessions", "error", err, "cutoff", cutoff)
		return
	}
	if deleted > 0 {
		s.logger.Info("Pruned old sessions", "deleted", deleted, "cutoff", cutoff)
	}
}
