package recommend

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/campushub/internal/model"
	"github.com/hitoshi/campushub/internal/repository"
)

// Signals は推薦に使用するユーザーの関心シグナルをまとめたもの。
// キーワード集合はすべて小文字化済み。検索履歴由来の語は
// スライス（新しい順）と集合の両方に保持される。
type Signals struct {
	// 所属・作成グループと検索履歴から集めたキーワード集合
	GroupNames  map[string]struct{}
	CourseNames map[string]struct{}
	CourseCodes map[string]struct{}
	Topics      map[string]struct{}

	// 検索履歴由来の語（新しい順、小文字化前の原文）
	SearchedGroupNames  []string
	SearchedCourseNames []string
	SearchedCourseCodes []string
	SearchedTopics      []string
	GeneralSearches     []string

	// 所属・作成グループの講義コードから導出した学部・分野シグナル
	DeptChars    map[rune]struct{}
	CodePrefixes map[string]struct{}

	// 協調フィルタリング用の所属・作成グループID
	UserGroupIDs []string
}

// newSignals は空のSignalsを生成する。
func newSignals() *Signals {
	return &Signals{
		GroupNames:   make(map[string]struct{}),
		CourseNames:  make(map[string]struct{}),
		CourseCodes:  make(map[string]struct{}),
		Topics:       make(map[string]struct{}),
		DeptChars:    make(map[rune]struct{}),
		CodePrefixes: make(map[string]struct{}),
	}
}

// KeywordCount は全キーワード集合の合計サイズを返す。
func (s *Signals) KeywordCount() int {
	return len(s.GroupNames) + len(s.CourseNames) + len(s.CourseCodes) + len(s.Topics)
}

// Extractor はユーザーの関心シグナルを収集する。
// 検索履歴やグループの取得に失敗しても推薦全体を止めず、
// 取得できたシグナルのみで処理を続行する。
type Extractor struct {
	groupRepo   repository.GroupRepository
	historyRepo repository.SearchHistoryRepository
	windowDays  int
	logger      *slog.Logger
}

// NewExtractor はExtractorの新しいインスタンスを生成する。
// windowDaysは検索履歴を参照する期間（日数）を指定する。
func NewExtractor(groupRepo repository.GroupRepository, historyRepo repository.SearchHistoryRepository, windowDays int, logger *slog.Logger) *Extractor {
	if windowDays <= 0 {
		windowDays = 30
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		groupRepo:   groupRepo,
		historyRepo: historyRepo,
		windowDays:  windowDays,
		logger:      logger,
	}
}

// Extract はユーザーの関心シグナルを収集して返す。
// シグナル源の一部が利用できない場合もエラーにはせず、
// 残りのシグナルだけを含むSignalsを返す。
func (e *Extractor) Extract(ctx context.Context, user *model.User) *Signals {
	sig := newSignals()

	// 1. 検索履歴からキーワードを集める
	since := time.Now().AddDate(0, 0, -e.windowDays)
	sig.SearchedGroupNames = e.recentQueries(ctx, user.ID, model.SearchTypeGroupName, since)
	sig.SearchedCourseNames = e.recentQueries(ctx, user.ID, model.SearchTypeCourseName, since)
	sig.SearchedCourseCodes = e.recentQueries(ctx, user.ID, model.SearchTypeCourseCode, since)
	sig.SearchedTopics = e.recentQueries(ctx, user.ID, model.SearchTypeTopic, since)
	sig.GeneralSearches = e.recentQueries(ctx, user.ID, model.SearchTypeGeneral, since)

	for _, name := range sig.SearchedGroupNames {
		sig.GroupNames[strings.ToLower(name)] = struct{}{}
	}
	for _, name := range sig.SearchedCourseNames {
		sig.CourseNames[strings.ToLower(name)] = struct{}{}
	}
	for _, code := range sig.SearchedCourseCodes {
		sig.CourseCodes[strings.ToLower(code)] = struct{}{}
	}
	for _, topic := range sig.SearchedTopics {
		sig.Topics[strings.ToLower(topic)] = struct{}{}
	}
	// 汎用検索はグループ名・講義名・トピックのいずれの可能性もあるため全集合へ追加する
	for _, query := range sig.GeneralSearches {
		lower := strings.ToLower(query)
		sig.GroupNames[lower] = struct{}{}
		sig.CourseNames[lower] = struct{}{}
		sig.Topics[lower] = struct{}{}
	}

	// 2. 所属・作成グループからキーワードを集める
	joined, err := e.groupRepo.FindByMemberID(ctx, user.ID)
	if err != nil {
		e.logger.Warn("failed to load joined groups for signals",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()))
	}
	created, err := e.groupRepo.FindByCreatorID(ctx, user.ID)
	if err != nil {
		e.logger.Warn("failed to load created groups for signals",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()))
	}

	seen := make(map[string]struct{})
	for _, group := range joined {
		e.addGroupKeywords(sig, group, seen)
	}
	for _, group := range created {
		e.addGroupKeywords(sig, group, seen)
	}

	// 3. ユーザーの履修講義を講義名キーワードへ追加する
	for _, course := range user.Courses {
		sig.CourseNames[strings.ToLower(course)] = struct{}{}
	}

	return sig
}

// addGroupKeywords は1つのグループからキーワードと学部・分野シグナルを抽出する。
func (e *Extractor) addGroupKeywords(sig *Signals, group *model.Group, seen map[string]struct{}) {
	if group == nil {
		return
	}
	if _, ok := seen[group.ID]; !ok {
		seen[group.ID] = struct{}{}
		sig.UserGroupIDs = append(sig.UserGroupIDs, group.ID)
	}

	if group.Name != "" {
		sig.GroupNames[strings.ToLower(group.Name)] = struct{}{}
	}
	if group.CourseName != "" {
		sig.CourseNames[strings.ToLower(group.CourseName)] = struct{}{}
	}
	if group.CourseCode != "" {
		code := strings.TrimSpace(strings.ToLower(group.CourseCode))
		if code != "" {
			sig.CourseCodes[code] = struct{}{}
			if ch, ok := deptChar(code); ok {
				sig.DeptChars[ch] = struct{}{}
			}
			if prefix, ok := codePrefix(code); ok {
				sig.CodePrefixes[prefix] = struct{}{}
			}
		}
	}
	if group.Topic != "" {
		sig.Topics[strings.ToLower(group.Topic)] = struct{}{}
	}
}

// recentQueries は検索履歴を取得する。失敗した場合はログに残して空を返す。
func (e *Extractor) recentQueries(ctx context.Context, userID string, searchType model.SearchType, since time.Time) []string {
	queries, err := e.historyRepo.FindRecentDistinctQueriesByType(ctx, userID, searchType, since)
	if err != nil {
		e.logger.Warn("failed to load search history for signals",
			slog.String("user_id", userID),
			slog.String("search_type", string(searchType)),
			slog.String("error", err.Error()))
		return nil
	}
	return queries
}
