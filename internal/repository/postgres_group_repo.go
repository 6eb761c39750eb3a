package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/campushub/internal/model"
)

// groupSelect はグループ1行分の共通SELECT句。
// メンバーIDはgroup_membersをLEFT JOINしてarray_aggで集約する。
const groupSelect = `SELECT g.id, g.name, g.description, g.course_name, g.course_code, g.topic,
        g.max_size, g.creator_id, g.status, g.visibility, g.requires_invite,
        g.created_at, g.updated_at,
        COALESCE(array_agg(gm.user_id) FILTER (WHERE gm.user_id IS NOT NULL), '{}') AS member_ids
 FROM groups g
 LEFT JOIN group_members gm ON gm.group_id = g.id`

// recommendWhere は推薦クエリの共通制約。
// ACTIVEかつPUBLIC、依頼ユーザー（$1）が作成者でもメンバーでもないグループに限定する。
const recommendWhere = ` g.status = 'ACTIVE'
   AND g.visibility = 'PUBLIC'
   AND g.creator_id <> $1
   AND NOT EXISTS (
       SELECT 1 FROM group_members m WHERE m.group_id = g.id AND m.user_id = $1
   )`

// PostgresGroupRepo はPostgreSQLを使用したグループリポジトリ。
type PostgresGroupRepo struct {
	db *sql.DB
}

// NewPostgresGroupRepo はPostgresGroupRepoを生成する。
func NewPostgresGroupRepo(db *sql.DB) *PostgresGroupRepo {
	return &PostgresGroupRepo{db: db}
}

// scanGroup は1行分のグループを読み取る。
func scanGroup(rows *sql.Rows) (*model.Group, error) {
	group := &model.Group{}
	var description, courseCode, topic sql.NullString
	var memberIDs pq.StringArray

	if err := rows.Scan(
		&group.ID, &group.Name, &description, &group.CourseName, &courseCode, &topic,
		&group.MaxSize, &group.CreatorID, &group.Status, &group.Visibility, &group.RequiresInvite,
		&group.CreatedAt, &group.UpdatedAt, &memberIDs,
	); err != nil {
		return nil, err
	}

	group.Description = nullStringValue(description)
	group.CourseCode = nullStringValue(courseCode)
	group.Topic = nullStringValue(topic)
	group.MemberIDs = []string(memberIDs)

	return group, nil
}

// queryGroups は共通SELECT句で複数行を取得する。
func (r *PostgresGroupRepo) queryGroups(ctx context.Context, query string, args ...any) ([]*model.Group, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []*model.Group
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return groups, nil
}

// FindByID は指定IDのグループを取得する。見つからない場合はnilを返す。
func (r *PostgresGroupRepo) FindByID(ctx context.Context, id string) (*model.Group, error) {
	groups, err := r.queryGroups(ctx,
		groupSelect+` WHERE g.id = $1 GROUP BY g.id`, id)
	if err != nil {
		return nil, fmt.Errorf("グループの取得に失敗しました: %w", err)
	}
	if len(groups) == 0 {
		return nil, nil
	}
	return groups[0], nil
}

// FindByMemberID は指定ユーザーがメンバーであるグループ一覧を返す。
func (r *PostgresGroupRepo) FindByMemberID(ctx context.Context, userID string) ([]*model.Group, error) {
	groups, err := r.queryGroups(ctx,
		groupSelect+`
 WHERE EXISTS (SELECT 1 FROM group_members m WHERE m.group_id = g.id AND m.user_id = $1)
 GROUP BY g.id
 ORDER BY g.created_at ASC, g.id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("所属グループの取得に失敗しました: %w", err)
	}
	return groups, nil
}

// FindByCreatorID は指定ユーザーが作成したグループ一覧を返す。
func (r *PostgresGroupRepo) FindByCreatorID(ctx context.Context, userID string) ([]*model.Group, error) {
	groups, err := r.queryGroups(ctx,
		groupSelect+`
 WHERE g.creator_id = $1
 GROUP BY g.id
 ORDER BY g.created_at ASC, g.id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("作成グループの取得に失敗しました: %w", err)
	}
	return groups, nil
}

// FindRecommendedByGroupName はグループ名の部分一致で推薦候補を検索する。
func (r *PostgresGroupRepo) FindRecommendedByGroupName(ctx context.Context, userID, keyword string) ([]*model.Group, error) {
	groups, err := r.queryGroups(ctx,
		groupSelect+`
 WHERE`+recommendWhere+`
   AND LOWER(g.name) LIKE '%' || LOWER($2) || '%'
 GROUP BY g.id`, userID, keyword)
	if err != nil {
		return nil, fmt.Errorf("グループ名による推薦候補の検索に失敗しました: %w", err)
	}
	return groups, nil
}

// FindRecommendedByCourseName は講義名の部分一致で推薦候補を検索する。
func (r *PostgresGroupRepo) FindRecommendedByCourseName(ctx context.Context, userID, keyword string) ([]*model.Group, error) {
	groups, err := r.queryGroups(ctx,
		groupSelect+`
 WHERE`+recommendWhere+`
   AND LOWER(g.course_name) LIKE '%' || LOWER($2) || '%'
 GROUP BY g.id`, userID, keyword)
	if err != nil {
		return nil, fmt.Errorf("講義名による推薦候補の検索に失敗しました: %w", err)
	}
	return groups, nil
}

// FindRecommendedByCourseCode は講義コードの部分一致で推薦候補を検索する。
func (r *PostgresGroupRepo) FindRecommendedByCourseCode(ctx context.Context, userID, keyword string) ([]*model.Group, error) {
	groups, err := r.queryGroups(ctx,
		groupSelect+`
 WHERE`+recommendWhere+`
   AND g.course_code IS NOT NULL
   AND LOWER(g.course_code) LIKE '%' || LOWER($2) || '%'
 GROUP BY g.id`, userID, keyword)
	if err != nil {
		return nil, fmt.Errorf("講義コードによる推薦候補の検索に失敗しました: %w", err)
	}
	return groups, nil
}

// FindRecommendedByTopic はトピックの部分一致で推薦候補を検索する。
func (r *PostgresGroupRepo) FindRecommendedByTopic(ctx context.Context, userID, keyword string) ([]*model.Group, error) {
	groups, err := r.queryGroups(ctx,
		groupSelect+`
 WHERE`+recommendWhere+`
   AND g.topic IS NOT NULL
   AND LOWER(g.topic) LIKE '%' || LOWER($2) || '%'
 GROUP BY g.id`, userID, keyword)
	if err != nil {
		return nil, fmt.Errorf("トピックによる推薦候補の検索に失敗しました: %w", err)
	}
	return groups, nil
}

// FindRecommendedByCollaborativeFiltering は、依頼ユーザーの所属グループの
// メンバーが参加している他のグループを検索する。
func (r *PostgresGroupRepo) FindRecommendedByCollaborativeFiltering(ctx context.Context, userID string, groupIDs []string) ([]*model.Group, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}

	groups, err := r.queryGroups(ctx,
		groupSelect+`
 WHERE`+recommendWhere+`
   AND EXISTS (
       SELECT 1 FROM group_members peer
       WHERE peer.group_id = g.id
         AND peer.user_id <> $1
         AND peer.user_id IN (
             SELECT user_id FROM group_members
             WHERE group_id = ANY($2) AND user_id <> $1
         )
   )
 GROUP BY g.id`, userID, pq.Array(groupIDs))
	if err != nil {
		return nil, fmt.Errorf("協調フィルタリングによる推薦候補の検索に失敗しました: %w", err)
	}
	return groups, nil
}

// FindGeneralRecommendations は作成日時の新しい順に一般推薦候補を最大10件返す。
func (r *PostgresGroupRepo) FindGeneralRecommendations(ctx context.Context, userID string) ([]*model.Group, error) {
	groups, err := r.queryGroups(ctx,
		groupSelect+`
 WHERE`+recommendWhere+`
 GROUP BY g.id
 ORDER BY g.created_at DESC, g.id ASC
 LIMIT 10`, userID)
	if err != nil {
		return nil, fmt.Errorf("一般推薦候補の取得に失敗しました: %w", err)
	}
	return groups, nil
}

// FindAll は全グループを返す。フォールバックの最終手段専用。
func (r *PostgresGroupRepo) FindAll(ctx context.Context) ([]*model.Group, error) {
	groups, err := r.queryGroups(ctx,
		groupSelect+`
 GROUP BY g.id
 ORDER BY g.created_at ASC, g.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("全グループの取得に失敗しました: %w", err)
	}
	return groups, nil
}

// ListPublic は公開グループ一覧を作成日時の新しい順に返す。
func (r *PostgresGroupRepo) ListPublic(ctx context.Context) ([]*model.Group, error) {
	groups, err := r.queryGroups(ctx,
		groupSelect+`
 WHERE g.visibility = 'PUBLIC'
 GROUP BY g.id
 ORDER BY g.created_at DESC, g.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("公開グループ一覧の取得に失敗しました: %w", err)
	}
	return groups, nil
}

// SearchPublic は公開・アクティブなグループをキーワードの部分一致で検索する。
func (r *PostgresGroupRepo) SearchPublic(ctx context.Context, query string) ([]*model.Group, error) {
	groups, err := r.queryGroups(ctx,
		groupSelect+`
 WHERE g.status = 'ACTIVE'
   AND g.visibility = 'PUBLIC'
   AND (LOWER(g.name) LIKE '%' || LOWER($1) || '%'
        OR LOWER(g.course_name) LIKE '%' || LOWER($1) || '%'
        OR (g.course_code IS NOT NULL AND LOWER(g.course_code) LIKE '%' || LOWER($1) || '%')
        OR (g.topic IS NOT NULL AND LOWER(g.topic) LIKE '%' || LOWER($1) || '%'))
 GROUP BY g.id
 ORDER BY g.created_at DESC, g.id ASC`, query)
	if err != nil {
		return nil, fmt.Errorf("グループの検索に失敗しました: %w", err)
	}
	return groups, nil
}

// nullStringValue はsql.NullStringから文字列を取得する。
func nullStringValue(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// compile-time interface check
var _ GroupRepository = (*PostgresGroupRepo)(nil)
