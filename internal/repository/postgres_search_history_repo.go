package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/campushub/internal/model"
)

// PostgresSearchHistoryRepo はPostgreSQLを使用した検索履歴リポジトリ。
type PostgresSearchHistoryRepo struct {
	db *sql.DB
}

// NewPostgresSearchHistoryRepo はPostgresSearchHistoryRepoを生成する。
func NewPostgresSearchHistoryRepo(db *sql.DB) *PostgresSearchHistoryRepo {
	return &PostgresSearchHistoryRepo{db: db}
}

// Create は検索履歴を1件保存する。
func (r *PostgresSearchHistoryRepo) Create(ctx context.Context, history *model.SearchHistory) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO search_history (id, user_id, query, search_type, searched_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		history.ID, history.UserID, history.Query, string(history.SearchType), history.SearchedAt,
	)
	if err != nil {
		return fmt.Errorf("検索履歴の保存に失敗しました: %w", err)
	}
	return nil
}

// FindRecentDistinctQueriesByType は指定期間以降の検索クエリを重複なしで新しい順に返す。
// 同一クエリが複数回検索された場合は最新の検索時刻で順序付けする。
func (r *PostgresSearchHistoryRepo) FindRecentDistinctQueriesByType(ctx context.Context, userID string, searchType model.SearchType, since time.Time) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT sh.query
		 FROM search_history sh
		 WHERE sh.user_id = $1 AND sh.search_type = $2 AND sh.searched_at >= $3
		 GROUP BY sh.query
		 ORDER BY MAX(sh.searched_at) DESC`,
		userID, string(searchType), since,
	)
	if err != nil {
		return nil, fmt.Errorf("検索履歴の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var queries []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, fmt.Errorf("検索履歴の読み取りに失敗しました: %w", err)
		}
		queries = append(queries, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("検索履歴の走査に失敗しました: %w", err)
	}

	return queries, nil
}

// compile-time interface check
var _ SearchHistoryRepository = (*PostgresSearchHistoryRepo)(nil)
