// Package cleanup は期限切れの閲覧者Identityを削除するジョブを提供する。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ExpiredDeleter は期限切れIdentityの削除を抽象化するインターフェース。
// repository.PostgresViewerIdentityRepo が満たす。
type ExpiredDeleter interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// CleanupJob は期限切れIdentityの定期削除ジョブ。
// 冪等で、削除対象がなくてもエラーにならない。
type CleanupJob struct {
	repo   ExpiredDeleter
	logger *slog.Logger
}

// NewCleanupJob は新しいCleanupJobを生成する。
func NewCleanupJob(repo ExpiredDeleter, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		repo:   repo,
		logger: logger,
	}
}

// Run は期限切れIdentityを1回削除する。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	deletedCount, err := j.repo.DeleteExpired(ctx)
	if err != nil {
		j.logger.Error("Identityクリーンアップジョブの実行に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("Identityクリーンアップの実行に失敗: %w", err)
	}

	duration := time.Since(start)
	j.logger.Info("Identityクリーンアップジョブが完了しました",
		slog.Int64("deleted_count", deletedCount),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// Start は起動直後に1回、以降intervalごとにRunを実行する。
// ctxがキャンセルされるまでブロックする。
func (j *CleanupJob) Start(ctx context.Context, interval time.Duration) {
	// 失敗はRun内でログ済みのため、ここでは次の周期まで待つ
	_ = j.Run(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = j.Run(ctx)
		}
	}
}
