package model

import "time"

// SearchHistory はユーザーの検索履歴エントリを表す。
// 追記専用で、書き込み後に更新されることはない。
type SearchHistory struct {
	ID         string
	UserID     string
	Query      string
	SearchType SearchType
	SearchedAt time.Time
}

// SearchType は検索クエリの種別タグを表す。
type SearchType string

const (
	// SearchTypeGroupName はグループ名による検索。
	SearchTypeGroupName SearchType = "GROUP_NAME"
	// SearchTypeCourseName は講義名による検索。
	SearchTypeCourseName SearchType = "COURSE_NAME"
	// SearchTypeCourseCode は講義コードによる検索。
	SearchTypeCourseCode SearchType = "COURSE_CODE"
	// SearchTypeTopic はトピックによる検索。
	SearchTypeTopic SearchType = "TOPIC"
	// SearchTypeGeneral は種別不明の一般検索。どのフィールドにもマッチしうる。
	SearchTypeGeneral SearchType = "GENERAL"
)

// ParseSearchType は文字列をSearchTypeに変換する。
// 空文字列や未知の値はGENERALとして扱う（検索エンドポイントの既定動作）。
func ParseSearchType(s string) SearchType {
	switch SearchType(s) {
	case SearchTypeGroupName, SearchTypeCourseName, SearchTypeCourseCode, SearchTypeTopic, SearchTypeGeneral:
		return SearchType(s)
	default:
		return SearchTypeGeneral
	}
}
