// Package group はグループの閲覧・検索のドメインロジックを提供する。
package group

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/campushub/internal/model"
	"github.com/hitoshi/campushub/internal/repository"
	"github.com/hitoshi/campushub/internal/security"
)

// Service はグループ閲覧・検索のサービス層。
type Service struct {
	groupRepo repository.GroupRepository
	sanitizer security.QuerySanitizerService
	logger    *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(groupRepo repository.GroupRepository, sanitizer security.QuerySanitizerService, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		groupRepo: groupRepo,
		sanitizer: sanitizer,
		logger:    logger,
	}
}

// ListGroups は公開グループ一覧を作成日時の新しい順に返す。
func (s *Service) ListGroups(ctx context.Context) ([]*model.Group, error) {
	groups, err := s.groupRepo.ListPublic(ctx)
	if err != nil {
		return nil, fmt.Errorf("グループ一覧の取得に失敗しました: %w", err)
	}
	return groups, nil
}

// SearchGroups は公開・アクティブなグループをクエリで検索する。
// クエリはサニタイズされ、空になった場合は一覧取得と同じ結果を返す。
func (s *Service) SearchGroups(ctx context.Context, query string) ([]*model.Group, error) {
	query = s.sanitizer.Sanitize(query)
	if query == "" {
		return s.ListGroups(ctx)
	}

	groups, err := s.groupRepo.SearchPublic(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("グループ検索に失敗しました: %w", err)
	}
	return groups, nil
}

// GetGroup は指定IDのグループを返す。見つからない場合はGROUP_NOT_FOUNDエラーを返す。
func (s *Service) GetGroup(ctx context.Context, groupID string) (*model.Group, error) {
	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("グループの取得に失敗しました: %w", err)
	}
	if group == nil {
		return nil, model.NewGroupNotFoundError(groupID)
	}
	return group, nil
}
