package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/campushub/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindByID は指定IDのユーザーを履修講義付きで取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	user := &model.User{}
	var major, schoolYear sql.NullString
	var courses pq.StringArray

	err := r.db.QueryRowContext(ctx,
		`SELECT u.id, u.username, u.email, u.major, u.school_year,
		        u.created_at, u.updated_at,
		        COALESCE(array_agg(uc.course) FILTER (WHERE uc.course IS NOT NULL), '{}') AS courses
		 FROM users u
		 LEFT JOIN user_courses uc ON uc.user_id = u.id
		 WHERE u.id = $1
		 GROUP BY u.id`,
		id,
	).Scan(
		&user.ID, &user.Username, &user.Email, &major, &schoolYear,
		&user.CreatedAt, &user.UpdatedAt, &courses,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}

	user.Major = nullStringValue(major)
	user.SchoolYear = nullStringValue(schoolYear)
	user.Courses = []string(courses)

	return user, nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
