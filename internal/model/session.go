package model

import "time"

// Session は認証済みユーザーのセッションを表す。
// セッションの発行・失効は外部の認証サブシステムが担い、
// 本システムは検証のための読み取りのみを行う。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
