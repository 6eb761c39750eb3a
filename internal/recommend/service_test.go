package recommend

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hitoshi/campushub/internal/model"
)

// 存在しないユーザーへの推薦はUSER_NOT_FOUNDエラーになることを検証
func TestRecommend_UserNotFound(t *testing.T) {
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return nil, nil
		},
	}
	svc := NewService(userRepo, &mockGroupRepo{}, &mockHistoryRepo{}, nil, time.Second, 4, 30, testLogger())

	_, err := svc.Recommend(context.Background(), "u-missing")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeUserNotFound)
	}
}

// ユーザー取得自体の失敗はエラーとして返ることを検証
func TestRecommend_UserLookupFailure(t *testing.T) {
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := NewService(userRepo, &mockGroupRepo{}, &mockHistoryRepo{}, nil, time.Second, 4, 30, testLogger())

	if _, err := svc.Recommend(context.Background(), "u-1"); err == nil {
		t.Fatal("expected error, got nil")
	}
}

// シグナルのない新規ユーザーには汎用推薦が返ることを検証
func TestRecommend_ColdStartFallsBackToGeneral(t *testing.T) {
	general := []*model.Group{
		activeGroup("g-1", "Newest Group", "", "", ""),
		activeGroup("g-2", "Another Group", "", "", ""),
	}
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Username: "newbie", Email: "n@example.edu"}, nil
		},
	}
	groupRepo := &mockGroupRepo{
		findGeneralRecommendedFn: func(ctx context.Context, userID string) ([]*model.Group, error) {
			return general, nil
		},
	}
	svc := NewService(userRepo, groupRepo, &mockHistoryRepo{}, nil, time.Second, 4, 30, testLogger())

	got, err := svc.Recommend(context.Background(), "u-new")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("results = %d, want 2", len(got))
	}
	if got[0].ID != "g-1" || got[1].ID != "g-2" {
		t.Errorf("results order = [%s, %s], want [g-1, g-2]", got[0].ID, got[1].ID)
	}
}

// シグナルに基づく推薦がスコア順に返ることを検証
func TestRecommend_RanksByScore(t *testing.T) {
	// ユーザーはCSCI 4463の講義グループに所属している
	ownGroup := activeGroup("g-own", "Systems Study", "Operating Systems", "CSCI 4463", "")

	// 同学部・同番号帯（30+22）> 同学部のみ（22）> 無関係（協調フラグなしでは0）
	sameBand := activeGroup("g-band", "", "", "CSCI 4264", "")
	sameBand.MaxSize = 0
	sameDept := activeGroup("g-dept", "", "", "CSCI 1301", "")
	sameDept.MaxSize = 0

	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return testUser(), nil
		},
	}
	groupRepo := &mockGroupRepo{
		findByMemberIDFn: func(ctx context.Context, userID string) ([]*model.Group, error) {
			return []*model.Group{ownGroup}, nil
		},
		findByCourseCodeFn: func(ctx context.Context, userID, keyword string) ([]*model.Group, error) {
			return []*model.Group{sameBand, sameDept}, nil
		},
	}
	svc := NewService(userRepo, groupRepo, &mockHistoryRepo{}, nil, time.Second, 4, 30, testLogger())

	got, err := svc.Recommend(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("results = %d, want 2", len(got))
	}
	if got[0].ID != "g-band" {
		t.Errorf("results[0].ID = %q, want g-band (prefix+dept should outrank dept-only)", got[0].ID)
	}
	if got[1].ID != "g-dept" {
		t.Errorf("results[1].ID = %q, want g-dept", got[1].ID)
	}
}

// 同点の候補がグループID昇順で決定的に並ぶことを検証
func TestRecommend_DeterministicTieBreak(t *testing.T) {
	ownGroup := activeGroup("g-own", "Algo Study", "", "", "")

	tied := make([]*model.Group, 0, 5)
	for _, id := range []string{"g-e", "g-b", "g-d", "g-a", "g-c"} {
		g := activeGroup(id, "Algo Study Offshoot", "", "", "")
		g.MaxSize = 0
		tied = append(tied, g)
	}

	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return testUser(), nil
		},
	}
	groupRepo := &mockGroupRepo{
		findByMemberIDFn: func(ctx context.Context, userID string) ([]*model.Group, error) {
			return []*model.Group{ownGroup}, nil
		},
		findByGroupNameFn: func(ctx context.Context, userID, keyword string) ([]*model.Group, error) {
			return tied, nil
		},
	}
	svc := NewService(userRepo, groupRepo, &mockHistoryRepo{}, nil, time.Second, 4, 30, testLogger())

	for run := 0; run < 3; run++ {
		got, err := svc.Recommend(context.Background(), "u-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"g-a", "g-b", "g-c", "g-d", "g-e"}
		if len(got) != len(want) {
			t.Fatalf("results = %d, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i].ID != want[i] {
				t.Errorf("run %d: results[%d].ID = %q, want %q", run, i, got[i].ID, want[i])
			}
		}
	}
}

// 推薦結果が最大10件に制限されることを検証
func TestRecommend_LimitsToTen(t *testing.T) {
	ownGroup := activeGroup("g-own", "Algo Study", "", "", "")

	var matches []*model.Group
	for i := 0; i < 15; i++ {
		g := activeGroup(fmt.Sprintf("g-%02d", i), "Algo Study Offshoot", "", "", "")
		matches = append(matches, g)
	}

	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return testUser(), nil
		},
	}
	groupRepo := &mockGroupRepo{
		findByMemberIDFn: func(ctx context.Context, userID string) ([]*model.Group, error) {
			return []*model.Group{ownGroup}, nil
		},
		findByGroupNameFn: func(ctx context.Context, userID, keyword string) ([]*model.Group, error) {
			return matches, nil
		},
	}
	svc := NewService(userRepo, groupRepo, &mockHistoryRepo{}, nil, time.Second, 4, 30, testLogger())

	got, err := svc.Recommend(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 10 {
		t.Errorf("results = %d, want 10", len(got))
	}
}

// 候補収集のクエリが全滅してもフォールバックで応答することを検証
func TestRecommend_QueryFailuresDegrade(t *testing.T) {
	ownGroup := activeGroup("g-own", "Algo Study", "", "", "")
	general := []*model.Group{activeGroup("g-gen", "General Pick", "", "", "")}

	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return testUser(), nil
		},
	}
	groupRepo := &mockGroupRepo{
		findByMemberIDFn: func(ctx context.Context, userID string) ([]*model.Group, error) {
			return []*model.Group{ownGroup}, nil
		},
		findByGroupNameFn: func(ctx context.Context, userID, keyword string) ([]*model.Group, error) {
			return nil, errors.New("query timeout")
		},
		findByCollaborativeFn: func(ctx context.Context, userID string, groupIDs []string) ([]*model.Group, error) {
			return nil, errors.New("query timeout")
		},
		findGeneralRecommendedFn: func(ctx context.Context, userID string) ([]*model.Group, error) {
			return general, nil
		},
	}
	svc := NewService(userRepo, groupRepo, &mockHistoryRepo{}, nil, time.Second, 4, 30, testLogger())

	got, err := svc.Recommend(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "g-gen" {
		t.Errorf("results = %v, want [g-gen]", got)
	}
}

// 協調フィルタリング経由の候補が推薦に含まれることを検証
func TestRecommend_CollaborativeCandidates(t *testing.T) {
	ownGroup := activeGroup("g-own", "Algo Study", "", "", "")
	peerGroup := activeGroup("g-peer", "Unrelated Name", "Unrelated Course", "", "")

	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return testUser(), nil
		},
	}
	var gotGroupIDs []string
	groupRepo := &mockGroupRepo{
		findByMemberIDFn: func(ctx context.Context, userID string) ([]*model.Group, error) {
			return []*model.Group{ownGroup}, nil
		},
		findByCollaborativeFn: func(ctx context.Context, userID string, groupIDs []string) ([]*model.Group, error) {
			gotGroupIDs = groupIDs
			return []*model.Group{peerGroup}, nil
		},
	}
	svc := NewService(userRepo, groupRepo, &mockHistoryRepo{}, nil, time.Second, 4, 30, testLogger())

	got, err := svc.Recommend(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "g-peer" {
		t.Fatalf("results = %v, want [g-peer]", got)
	}
	if len(gotGroupIDs) != 1 || gotGroupIDs[0] != "g-own" {
		t.Errorf("collaborative query groupIDs = %v, want [g-own]", gotGroupIDs)
	}
}

// RecommendDebugが診断情報を返すことを検証
func TestRecommendDebug_ReportsPipeline(t *testing.T) {
	ownGroup := activeGroup("g-own", "Algo Study", "Data Structures", "CSCI 2720", "")
	match := activeGroup("g-match", "Algo Study Offshoot", "", "", "")

	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return testUser(), nil
		},
	}
	groupRepo := &mockGroupRepo{
		findAllFn: func(ctx context.Context) ([]*model.Group, error) {
			return []*model.Group{ownGroup, match}, nil
		},
		findByMemberIDFn: func(ctx context.Context, userID string) ([]*model.Group, error) {
			return []*model.Group{ownGroup}, nil
		},
		findByGroupNameFn: func(ctx context.Context, userID, keyword string) ([]*model.Group, error) {
			return []*model.Group{match}, nil
		},
	}
	svc := NewService(userRepo, groupRepo, &mockHistoryRepo{}, nil, time.Second, 4, 30, testLogger())

	debug, err := svc.RecommendDebug(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if debug.TotalGroups != 2 {
		t.Errorf("TotalGroups = %d, want 2", debug.TotalGroups)
	}
	if debug.JoinedGroups != 1 {
		t.Errorf("JoinedGroups = %d, want 1", debug.JoinedGroups)
	}
	if debug.CandidateCount != 1 {
		t.Errorf("CandidateCount = %d, want 1", debug.CandidateCount)
	}
	if debug.FallbackStage != StageNone {
		t.Errorf("FallbackStage = %q, want %q", debug.FallbackStage, StageNone)
	}
	if debug.ResultCount != 1 || len(debug.ResultGroupIDs) != 1 {
		t.Errorf("ResultCount = %d, ResultGroupIDs = %v, want 1 result", debug.ResultCount, debug.ResultGroupIDs)
	}
	if debug.KeywordCounts["groupNames"] != 1 {
		t.Errorf("KeywordCounts[groupNames] = %d, want 1", debug.KeywordCounts["groupNames"])
	}
}

// RecommendDebugも存在しないユーザーにはエラーを返すことを検証
func TestRecommendDebug_UserNotFound(t *testing.T) {
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return nil, nil
		},
	}
	svc := NewService(userRepo, &mockGroupRepo{}, &mockHistoryRepo{}, nil, time.Second, 4, 30, testLogger())

	_, err := svc.RecommendDebug(context.Background(), "u-missing")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeUserNotFound)
	}
}
