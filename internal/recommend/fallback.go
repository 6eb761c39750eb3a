package recommend

import (
	"context"
	"log/slog"
	"sort"

	"github.com/hitoshi/campushub/internal/model"
)

// フォールバック段階。どの段階で応答したかをログとメトリクスに記録する。
const (
	// StageNone はキーワード・協調シグナルによる通常の推薦で応答したことを示す。
	StageNone = "none"
	// StageGeneral は汎用推薦クエリ（新着の公開グループ）で応答したことを示す。
	StageGeneral = "general"
	// StageScan は全グループ走査＋クライアント側フィルタで応答したことを示す。
	StageScan = "scan"
	// StageUnfiltered は状態・公開設定を無視した最終走査で応答したことを示す。
	StageUnfiltered = "unfiltered"
	// StageEmpty は全段階が空で、空の結果で応答したことを示す。
	StageEmpty = "empty"
)

// maxRecommendations は推薦・フォールバックが返す件数の上限。
const maxRecommendations = 10

// fallback はシグナルに基づく推薦が空だった場合の段階的な代替応答を返す。
// 各段階の失敗は次の段階への移行として扱い、エラーは返さない。
// 戻り値の第2要素は応答した段階を示す。
func (s *Service) fallback(ctx context.Context, userID string) ([]*model.Group, string) {
	// 1. 汎用推薦クエリ: 新着の公開グループ
	general, err := s.groupRepo.FindGeneralRecommendations(ctx, userID)
	if err != nil {
		s.logger.Warn("general recommendations query failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
	} else if len(general) > 0 {
		return limitGroups(general), StageGeneral
	}

	// 2. 全グループ走査: クエリが機能しない環境向けの保険
	all, err := s.groupRepo.FindAll(ctx)
	if err != nil {
		s.logger.Warn("full group scan failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		return nil, StageEmpty
	}

	var filtered []*model.Group
	for _, group := range all {
		if group == nil {
			continue
		}
		if group.Status != model.GroupStatusActive || group.Visibility != model.GroupVisibilityPublic {
			continue
		}
		if group.CreatorID == userID || group.HasMember(userID) {
			continue
		}
		filtered = append(filtered, group)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})
	if len(filtered) > 0 {
		return limitGroups(filtered), StageScan
	}

	// 3. 状態・公開設定の絞り込みなし: データ不整合時の最後の手段
	var unfiltered []*model.Group
	for _, group := range all {
		if group == nil {
			continue
		}
		if group.CreatorID == userID || group.HasMember(userID) {
			continue
		}
		unfiltered = append(unfiltered, group)
		if len(unfiltered) == maxRecommendations {
			break
		}
	}
	if len(unfiltered) > 0 {
		return unfiltered, StageUnfiltered
	}

	return nil, StageEmpty
}

// limitGroups は先頭からmaxRecommendations件までを返す。
func limitGroups(groups []*model.Group) []*model.Group {
	if len(groups) > maxRecommendations {
		return groups[:maxRecommendations]
	}
	return groups
}
