package model

import "time"

// Group はスタディグループを表す。
// MemberIDsにはcreatorも必ず含まれる（作成時にメンバーとして登録される）。
type Group struct {
	ID             string
	Name           string
	Description    string
	CourseName     string
	CourseCode     string
	Topic          string
	MaxSize        int
	CreatorID      string
	MemberIDs      []string
	Status         GroupStatus
	Visibility     GroupVisibility
	RequiresInvite bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// GroupStatus はグループのライフサイクル状態を表す。
type GroupStatus string

const (
	// GroupStatusActive は活動中の状態。
	GroupStatusActive GroupStatus = "ACTIVE"
	// GroupStatusInactive は休止中の状態。
	GroupStatusInactive GroupStatus = "INACTIVE"
	// GroupStatusArchived はアーカイブ済みの状態。
	GroupStatusArchived GroupStatus = "ARCHIVED"
)

// GroupVisibility はグループの公開範囲を表す。
type GroupVisibility string

const (
	// GroupVisibilityPublic は検索・一覧に表示される公開状態。
	GroupVisibilityPublic GroupVisibility = "PUBLIC"
	// GroupVisibilityPrivate はメンバーと直接リンク保持者のみに見える非公開状態。
	GroupVisibilityPrivate GroupVisibility = "PRIVATE"
)

// CurrentSize は現在のメンバー数を返す。
func (g *Group) CurrentSize() int {
	return len(g.MemberIDs)
}

// HasMember は指定ユーザーがメンバーに含まれるかを返す。
func (g *Group) HasMember(userID string) bool {
	for _, id := range g.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// HasOpenSpots は定員に空きがあるかを返す。
// MaxSizeが0以下の場合は定員不明として空きなしとみなす。
func (g *Group) HasOpenSpots() bool {
	return g.MaxSize > 0 && len(g.MemberIDs) < g.MaxSize
}
