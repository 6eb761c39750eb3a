package recommend

import (
	"context"
	"log/slog"
	"sync"

	"github.com/hitoshi/campushub/internal/model"
	"github.com/hitoshi/campushub/internal/repository"
)

// Candidate はスコアリング対象の候補グループ。
// Collaborativeは協調フィルタリング経由で収集されたことを示す。
type Candidate struct {
	Group         *model.Group
	Collaborative bool
}

// Generator はキーワード検索と協調フィルタリングで候補グループを収集する。
// クエリはセマフォで同時実行数を制限しつつ並行に発行し、
// 個々のクエリ失敗は候補の欠落として扱い全体は止めない。
type Generator struct {
	groupRepo     repository.GroupRepository
	maxConcurrent int
	logger        *slog.Logger
}

// NewGenerator はGeneratorの新しいインスタンスを生成する。
func NewGenerator(groupRepo repository.GroupRepository, maxConcurrent int, logger *slog.Logger) *Generator {
	if maxConcurrent <= 0 {
		maxConcurrent = 8
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		groupRepo:     groupRepo,
		maxConcurrent: maxConcurrent,
		logger:        logger,
	}
}

// Generate はシグナルに基づいて候補グループを収集し、グループID単位で統合して返す。
// 同じグループが複数のクエリで見つかった場合は1件に統合し、
// 協調フィルタリングで見つかったフラグはORで合成する。
func (g *Generator) Generate(ctx context.Context, userID string, sig *Signals) map[string]*Candidate {
	type queryResult struct {
		groups        []*model.Group
		collaborative bool
	}

	var tasks []func(context.Context) ([]*model.Group, error)
	var collaborativeIndex = -1

	for keyword := range sig.GroupNames {
		kw := keyword
		tasks = append(tasks, func(ctx context.Context) ([]*model.Group, error) {
			return g.groupRepo.FindRecommendedByGroupName(ctx, userID, kw)
		})
	}
	for keyword := range sig.CourseNames {
		kw := keyword
		tasks = append(tasks, func(ctx context.Context) ([]*model.Group, error) {
			return g.groupRepo.FindRecommendedByCourseName(ctx, userID, kw)
		})
	}
	for keyword := range sig.CourseCodes {
		kw := keyword
		tasks = append(tasks, func(ctx context.Context) ([]*model.Group, error) {
			return g.groupRepo.FindRecommendedByCourseCode(ctx, userID, kw)
		})
	}
	for keyword := range sig.Topics {
		kw := keyword
		tasks = append(tasks, func(ctx context.Context) ([]*model.Group, error) {
			return g.groupRepo.FindRecommendedByTopic(ctx, userID, kw)
		})
	}
	if len(sig.UserGroupIDs) > 0 {
		groupIDs := sig.UserGroupIDs
		collaborativeIndex = len(tasks)
		tasks = append(tasks, func(ctx context.Context) ([]*model.Group, error) {
			return g.groupRepo.FindRecommendedByCollaborativeFiltering(ctx, userID, groupIDs)
		})
	}

	candidates := make(map[string]*Candidate)
	if len(tasks) == 0 {
		return candidates
	}

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		sem = make(chan struct{}, g.maxConcurrent)
	)

	for i, task := range tasks {
		wg.Add(1)
		sem <- struct{}{}

		go func(index int, run func(context.Context) ([]*model.Group, error)) {
			defer wg.Done()
			defer func() { <-sem }()

			groups, err := run(ctx)
			if err != nil {
				g.logger.Warn("candidate query failed",
					slog.String("user_id", userID),
					slog.String("error", err.Error()))
				return
			}

			result := queryResult{groups: groups, collaborative: index == collaborativeIndex}

			mu.Lock()
			defer mu.Unlock()
			for _, group := range result.groups {
				if group == nil {
					continue
				}
				if existing, ok := candidates[group.ID]; ok {
					existing.Collaborative = existing.Collaborative || result.collaborative
					continue
				}
				candidates[group.ID] = &Candidate{
					Group:         group,
					Collaborative: result.collaborative,
				}
			}
		}(i, task)
	}

	wg.Wait()
	return candidates
}
