package recommend

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/hitoshi/campushub/internal/model"
)

// --- モック ---

type mockUserRepo struct {
	findByIDFn func(ctx context.Context, id string) (*model.User, error)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return m.findByIDFn(ctx, id)
}

type mockGroupRepo struct {
	findByIDFn                 func(ctx context.Context, id string) (*model.Group, error)
	findByMemberIDFn           func(ctx context.Context, userID string) ([]*model.Group, error)
	findByCreatorIDFn          func(ctx context.Context, userID string) ([]*model.Group, error)
	findByGroupNameFn          func(ctx context.Context, userID, keyword string) ([]*model.Group, error)
	findByCourseNameFn         func(ctx context.Context, userID, keyword string) ([]*model.Group, error)
	findByCourseCodeFn         func(ctx context.Context, userID, keyword string) ([]*model.Group, error)
	findByTopicFn              func(ctx context.Context, userID, keyword string) ([]*model.Group, error)
	findByCollaborativeFn      func(ctx context.Context, userID string, groupIDs []string) ([]*model.Group, error)
	findGeneralRecommendedFn   func(ctx context.Context, userID string) ([]*model.Group, error)
	findAllFn                  func(ctx context.Context) ([]*model.Group, error)
	listPublicFn               func(ctx context.Context) ([]*model.Group, error)
	searchPublicFn             func(ctx context.Context, query string) ([]*model.Group, error)
}

func (m *mockGroupRepo) FindByID(ctx context.Context, id string) (*model.Group, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockGroupRepo) FindByMemberID(ctx context.Context, userID string) ([]*model.Group, error) {
	if m.findByMemberIDFn != nil {
		return m.findByMemberIDFn(ctx, userID)
	}
	return nil, nil
}
func (m *mockGroupRepo) FindByCreatorID(ctx context.Context, userID string) ([]*model.Group, error) {
	if m.findByCreatorIDFn != nil {
		return m.findByCreatorIDFn(ctx, userID)
	}
	return nil, nil
}
func (m *mockGroupRepo) FindRecommendedByGroupName(ctx context.Context, userID, keyword string) ([]*model.Group, error) {
	if m.findByGroupNameFn != nil {
		return m.findByGroupNameFn(ctx, userID, keyword)
	}
	return nil, nil
}
func (m *mockGroupRepo) FindRecommendedByCourseName(ctx context.Context, userID, keyword string) ([]*model.Group, error) {
	if m.findByCourseNameFn != nil {
		return m.findByCourseNameFn(ctx, userID, keyword)
	}
	return nil, nil
}
func (m *mockGroupRepo) FindRecommendedByCourseCode(ctx context.Context, userID, keyword string) ([]*model.Group, error) {
	if m.findByCourseCodeFn != nil {
		return m.findByCourseCodeFn(ctx, userID, keyword)
	}
	return nil, nil
}
func (m *mockGroupRepo) FindRecommendedByTopic(ctx context.Context, userID, keyword string) ([]*model.Group, error) {
	if m.findByTopicFn != nil {
		return m.findByTopicFn(ctx, userID, keyword)
	}
	return nil, nil
}
func (m *mockGroupRepo) FindRecommendedByCollaborativeFiltering(ctx context.Context, userID string, groupIDs []string) ([]*model.Group, error) {
	if m.findByCollaborativeFn != nil {
		return m.findByCollaborativeFn(ctx, userID, groupIDs)
	}
	return nil, nil
}
func (m *mockGroupRepo) FindGeneralRecommendations(ctx context.Context, userID string) ([]*model.Group, error) {
	if m.findGeneralRecommendedFn != nil {
		return m.findGeneralRecommendedFn(ctx, userID)
	}
	return nil, nil
}
func (m *mockGroupRepo) FindAll(ctx context.Context) ([]*model.Group, error) {
	if m.findAllFn != nil {
		return m.findAllFn(ctx)
	}
	return nil, nil
}
func (m *mockGroupRepo) ListPublic(ctx context.Context) ([]*model.Group, error) {
	if m.listPublicFn != nil {
		return m.listPublicFn(ctx)
	}
	return nil, nil
}
func (m *mockGroupRepo) SearchPublic(ctx context.Context, query string) ([]*model.Group, error) {
	if m.searchPublicFn != nil {
		return m.searchPublicFn(ctx, query)
	}
	return nil, nil
}

type mockHistoryRepo struct {
	createFn      func(ctx context.Context, entry *model.SearchHistory) error
	findQueriesFn func(ctx context.Context, userID string, searchType model.SearchType, since time.Time) ([]string, error)
}

func (m *mockHistoryRepo) Create(ctx context.Context, entry *model.SearchHistory) error {
	if m.createFn != nil {
		return m.createFn(ctx, entry)
	}
	return nil
}
func (m *mockHistoryRepo) FindRecentDistinctQueriesByType(ctx context.Context, userID string, searchType model.SearchType, since time.Time) ([]string, error) {
	if m.findQueriesFn != nil {
		return m.findQueriesFn(ctx, userID, searchType, since)
	}
	return nil, nil
}

// testLogger はテスト出力を汚さないロガーを返す。
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// activeGroup はテスト用の公開・アクティブなグループを生成する。
func activeGroup(id, name, courseName, courseCode, topic string) *model.Group {
	return &model.Group{
		ID:         id,
		Name:       name,
		CourseName: courseName,
		CourseCode: courseCode,
		Topic:      topic,
		MaxSize:    8,
		CreatorID:  "creator-" + id,
		Status:     model.GroupStatusActive,
		Visibility: model.GroupVisibilityPublic,
	}
}
