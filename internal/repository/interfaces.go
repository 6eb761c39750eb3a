// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/campushub/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを履修講義付きで取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// GroupRepository はグループデータの永続化インターフェース。
// 推薦クエリ（FindRecommendedBy*, FindRecommendedByCollaborativeFiltering,
// FindGeneralRecommendations）はすべてサーバー側で
// status = ACTIVE / visibility = PUBLIC / 依頼ユーザーが作成者でもメンバーでもない
// という制約を適用した結果を返す。
type GroupRepository interface {
	// FindByID は指定IDのグループを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Group, error)

	// FindByMemberID は指定ユーザーがメンバーであるグループ一覧を返す。
	FindByMemberID(ctx context.Context, userID string) ([]*model.Group, error)

	// FindByCreatorID は指定ユーザーが作成したグループ一覧を返す。
	FindByCreatorID(ctx context.Context, userID string) ([]*model.Group, error)

	// FindRecommendedByGroupName はグループ名の部分一致（大文字小文字無視）で推薦候補を検索する。
	FindRecommendedByGroupName(ctx context.Context, userID, keyword string) ([]*model.Group, error)

	// FindRecommendedByCourseName は講義名の部分一致で推薦候補を検索する。
	FindRecommendedByCourseName(ctx context.Context, userID, keyword string) ([]*model.Group, error)

	// FindRecommendedByCourseCode は講義コードの部分一致で推薦候補を検索する。
	FindRecommendedByCourseCode(ctx context.Context, userID, keyword string) ([]*model.Group, error)

	// FindRecommendedByTopic はトピックの部分一致で推薦候補を検索する。
	FindRecommendedByTopic(ctx context.Context, userID, keyword string) ([]*model.Group, error)

	// FindRecommendedByCollaborativeFiltering は、依頼ユーザーの所属グループ
	// （groupIDs）のメンバーが参加している他のグループを検索する。
	// 依頼ユーザー自身のメンバーシップは重なりの判定から除外する。
	FindRecommendedByCollaborativeFiltering(ctx context.Context, userID string, groupIDs []string) ([]*model.Group, error)

	// FindGeneralRecommendations は作成日時の新しい順に一般推薦候補を最大10件返す。
	FindGeneralRecommendations(ctx context.Context, userID string) ([]*model.Group, error)

	// FindAll は全グループを返す。フォールバックの最終手段専用。
	FindAll(ctx context.Context) ([]*model.Group, error)

	// ListPublic は公開グループ一覧を作成日時の新しい順に返す。
	ListPublic(ctx context.Context) ([]*model.Group, error)

	// SearchPublic は公開・アクティブなグループを名前/講義名/講義コード/トピックの
	// 部分一致で検索する。
	SearchPublic(ctx context.Context, query string) ([]*model.Group, error)
}

// SearchHistoryRepository は検索履歴の永続化インターフェース。
type SearchHistoryRepository interface {
	// Create は検索履歴エントリを追記する。
	Create(ctx context.Context, entry *model.SearchHistory) error

	// FindRecentDistinctQueriesByType は指定種別・指定日時以降の重複排除済み
	// クエリ一覧を、最終検索日時の新しい順に返す。
	FindRecentDistinctQueriesByType(ctx context.Context, userID string, searchType model.SearchType, since time.Time) ([]string, error)
}

// SessionRepository はセッションデータの読み取りインターフェース。
// セッションの発行・削除は外部の認証サブシステムが担う。
type SessionRepository interface {
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
}
