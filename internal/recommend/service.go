package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/hitoshi/campushub/internal/metrics"
	"github.com/hitoshi/campushub/internal/model"
	"github.com/hitoshi/campushub/internal/repository"
)

// Service はグループ推薦のサービス層。
// シグナル抽出、候補収集、スコアリング、フォールバックのパイプラインを統括する。
type Service struct {
	userRepo  repository.UserRepository
	groupRepo repository.GroupRepository
	extractor *Extractor
	generator *Generator
	collector metrics.MetricsCollector
	timeout   time.Duration
	logger    *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
// collectorはnilを許容し、その場合メトリクスは記録されない。
func NewService(
	userRepo repository.UserRepository,
	groupRepo repository.GroupRepository,
	historyRepo repository.SearchHistoryRepository,
	collector metrics.MetricsCollector,
	timeout time.Duration,
	maxConcurrent int,
	historyWindowDays int,
	logger *slog.Logger,
) *Service {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		userRepo:  userRepo,
		groupRepo: groupRepo,
		extractor: NewExtractor(groupRepo, historyRepo, historyWindowDays, logger),
		generator: NewGenerator(groupRepo, maxConcurrent, logger),
		collector: collector,
		timeout:   timeout,
		logger:    logger,
	}
}

// scoredGroup はスコアリング済みの候補グループ。
type scoredGroup struct {
	group *model.Group
	score int
}

// pipelineResult は推薦パイプライン1回分の実行結果。
type pipelineResult struct {
	groups         []*model.Group
	stage          string
	signals        *Signals
	candidateCount int
	scoredCount    int
}

// Recommend はユーザーへのおすすめグループを最大10件返す。
// ユーザーが存在しない場合のみエラーを返し、
// それ以外の内部的な失敗はフォールバックでの縮退応答として扱う。
// 結果が空であることは正常な応答であり、エラーではない。
func (s *Service) Recommend(ctx context.Context, userID string) ([]*model.Group, error) {
	start := time.Now()
	if s.collector != nil {
		s.collector.RecordRecommendRequest()
		defer func() {
			s.collector.RecordRecommendLatency(time.Since(start))
		}()
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("推薦対象ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(userID)
	}

	result := s.run(ctx, user)

	if s.collector != nil {
		s.collector.RecordRecommendCandidates(result.candidateCount)
		s.collector.RecordRecommendFallback(result.stage)
	}
	s.logger.Info("recommendations generated",
		slog.String("user_id", userID),
		slog.Int("candidates", result.candidateCount),
		slog.Int("results", len(result.groups)),
		slog.String("fallback_stage", result.stage),
		slog.Duration("elapsed", time.Since(start)))

	return result.groups, nil
}

// run は推薦パイプラインを実行する。失敗はフォールバック段階への移行として扱う。
func (s *Service) run(ctx context.Context, user *model.User) *pipelineResult {
	result := &pipelineResult{}

	// 1. シグナル抽出と候補収集
	result.signals = s.extractor.Extract(ctx, user)
	candidates := s.generator.Generate(ctx, user.ID, result.signals)
	result.candidateCount = len(candidates)

	// 2. スコアリング: スコア0以下の候補は除外する
	scored := make([]scoredGroup, 0, len(candidates))
	for _, candidate := range candidates {
		score := scoreGroup(candidate.Group, result.signals, candidate.Collaborative)
		if score > 0 {
			scored = append(scored, scoredGroup{group: candidate.Group, score: score})
		}
	}
	result.scoredCount = len(scored)

	if len(scored) == 0 {
		result.groups, result.stage = s.fallback(ctx, user.ID)
		return result
	}

	// 3. スコア降順、同点はグループID昇順で決定的に並べて上位を返す
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].group.ID < scored[j].group.ID
	})

	groups := make([]*model.Group, 0, maxRecommendations)
	for _, sg := range scored {
		groups = append(groups, sg.group)
		if len(groups) == maxRecommendations {
			break
		}
	}

	result.groups = groups
	result.stage = StageNone
	return result
}

// Debug は推薦パイプラインの診断情報。
// 推薦結果が期待と異なる場合の調査用エンドポイントで返される。
type Debug struct {
	TotalGroups      int            `json:"totalGroups"`
	JoinedGroups     int            `json:"joinedGroups"`
	CreatedGroups    int            `json:"createdGroups"`
	KeywordCounts    map[string]int `json:"keywordCounts"`
	GeneralSearches  int            `json:"generalSearches"`
	CandidateCount   int            `json:"candidateCount"`
	ScoredCount      int            `json:"scoredCount"`
	FallbackStage    string         `json:"fallbackStage"`
	ResultCount      int            `json:"resultCount"`
	ResultGroupIDs   []string       `json:"resultGroupIds"`
	GeneralQueryOK   bool           `json:"generalQueryOk"`
	GeneralQuerySize int            `json:"generalQuerySize"`
}

// RecommendDebug は推薦パイプラインを実行しつつ各段階の診断情報を返す。
// ユーザーが存在しない場合のみエラーを返す。
func (s *Service) RecommendDebug(ctx context.Context, userID string) (*Debug, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("推薦対象ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(userID)
	}

	debug := &Debug{KeywordCounts: make(map[string]int)}

	if all, err := s.groupRepo.FindAll(ctx); err == nil {
		debug.TotalGroups = len(all)
	}
	if joined, err := s.groupRepo.FindByMemberID(ctx, userID); err == nil {
		debug.JoinedGroups = len(joined)
	}
	if created, err := s.groupRepo.FindByCreatorID(ctx, userID); err == nil {
		debug.CreatedGroups = len(created)
	}
	if general, err := s.groupRepo.FindGeneralRecommendations(ctx, userID); err == nil {
		debug.GeneralQueryOK = true
		debug.GeneralQuerySize = len(general)
	}

	result := s.run(ctx, user)

	debug.KeywordCounts["groupNames"] = len(result.signals.GroupNames)
	debug.KeywordCounts["courseNames"] = len(result.signals.CourseNames)
	debug.KeywordCounts["courseCodes"] = len(result.signals.CourseCodes)
	debug.KeywordCounts["topics"] = len(result.signals.Topics)
	debug.KeywordCounts["codePrefixes"] = len(result.signals.CodePrefixes)
	debug.KeywordCounts["deptChars"] = len(result.signals.DeptChars)
	debug.GeneralSearches = len(result.signals.GeneralSearches)
	debug.CandidateCount = result.candidateCount
	debug.ScoredCount = result.scoredCount
	debug.FallbackStage = result.stage
	debug.ResultCount = len(result.groups)
	for _, group := range result.groups {
		debug.ResultGroupIDs = append(debug.ResultGroupIDs, group.ID)
	}

	return debug, nil
}
