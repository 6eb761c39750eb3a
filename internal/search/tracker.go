// Package search は検索履歴の記録を提供する。
// 記録された履歴は推薦エンジンの関心シグナルとして利用される。
package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/campushub/internal/metrics"
	"github.com/hitoshi/campushub/internal/model"
	"github.com/hitoshi/campushub/internal/repository"
	"github.com/hitoshi/campushub/internal/security"
)

// Tracker は検索クエリを検索履歴として追記する。
type Tracker struct {
	historyRepo repository.SearchHistoryRepository
	sanitizer   security.QuerySanitizerService
	collector   metrics.MetricsCollector
	logger      *slog.Logger
}

// NewTracker はTrackerの新しいインスタンスを生成する。
// collectorはnilを許容し、その場合メトリクスは記録されない。
func NewTracker(historyRepo repository.SearchHistoryRepository, sanitizer security.QuerySanitizerService, collector metrics.MetricsCollector, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		historyRepo: historyRepo,
		sanitizer:   sanitizer,
		collector:   collector,
		logger:      logger,
	}
}

// Track は検索クエリをサニタイズして検索履歴に追記する。
// 空白のみのクエリは記録しない。タイムスタンプはサーバー側で付与する。
func (t *Tracker) Track(ctx context.Context, userID, query string, searchType model.SearchType) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	query = t.sanitizer.Sanitize(query)
	if query == "" {
		return nil
	}

	entry := &model.SearchHistory{
		ID:         uuid.NewString(),
		UserID:     userID,
		Query:      query,
		SearchType: searchType,
		SearchedAt: time.Now(),
	}
	if err := t.historyRepo.Create(ctx, entry); err != nil {
		return fmt.Errorf("検索履歴の記録に失敗しました: %w", err)
	}

	if t.collector != nil {
		t.collector.RecordSearchTracked(string(searchType))
	}
	t.logger.Info("search tracked",
		slog.String("user_id", userID),
		slog.String("search_type", string(searchType)))

	return nil
}
