package repository

import (
	"testing"
	"time"

	"github.com/hitoshi/campushub/internal/model"
)

// PostgresGroupRepoはGroupRepositoryインターフェースを満たすことを検証
func TestPostgresGroupRepo_ImplementsInterface(t *testing.T) {
	var _ GroupRepository = (*PostgresGroupRepo)(nil)
}

// NewPostgresGroupRepoが正しく初期化されることを検証
func TestNewPostgresGroupRepo_Initializes(t *testing.T) {
	repo := NewPostgresGroupRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// Groupモデルのフィールドが正しく構築されることを検証
func TestPostgresGroupRepo_GroupModel_Fields(t *testing.T) {
	now := time.Now()
	group := &model.Group{
		ID:         "group-id-1",
		Name:       "アルゴリズム勉強会",
		CourseName: "Data Structures",
		CourseCode: "CSCI 2720",
		Topic:      "algorithms",
		MaxSize:    8,
		CreatorID:  "user-id-1",
		MemberIDs:  []string{"user-id-1", "user-id-2"},
		Status:     model.GroupStatusActive,
		Visibility: model.GroupVisibilityPublic,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if group.ID != "group-id-1" {
		t.Errorf("group.ID = %q, want %q", group.ID, "group-id-1")
	}
	if group.CurrentSize() != 2 {
		t.Errorf("group.CurrentSize() = %d, want 2", group.CurrentSize())
	}
	if !group.HasMember("user-id-2") {
		t.Error("expected user-id-2 to be a member")
	}
	if group.HasMember("user-id-3") {
		t.Error("did not expect user-id-3 to be a member")
	}
	if !group.HasOpenSpots() {
		t.Error("expected open spots with 2 of 8 members")
	}
}

// 定員に達したグループは空きなしと判定されることを検証
func TestPostgresGroupRepo_GroupModel_FullGroup(t *testing.T) {
	group := &model.Group{
		ID:        "group-id-2",
		Name:      "満員グループ",
		MaxSize:   2,
		MemberIDs: []string{"user-id-1", "user-id-2"},
	}

	if group.HasOpenSpots() {
		t.Error("expected no open spots when at max size")
	}
}
