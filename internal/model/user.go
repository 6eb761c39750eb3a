// Package model はドメインモデルを定義する。
package model

import "time"

// User は学生ユーザーを表す。
// 推薦計算からは読み取り専用のスナップショットとして扱う。
type User struct {
	ID         string
	Username   string
	Email      string
	Major      string
	SchoolYear string
	Courses    []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
