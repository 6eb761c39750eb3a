// Package security はアプリケーションのセキュリティ機能を提供する。
//
// QuerySanitizerService はユーザーが入力した検索クエリをサニタイズし、
// 検索履歴への保存やAPI応答への反映時にXSS攻撃などの
// セキュリティリスクからユーザーを保護する。
// bluemondayライブラリのStrictPolicyを使用し、全てのHTMLタグを除去する。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// QuerySanitizerService は検索クエリのサニタイズ機能のインターフェースを定義する。
// 検索履歴の保存前およびグループ検索の実行前に使用される。
type QuerySanitizerService interface {
	// Sanitize は検索クエリをサニタイズしてプレーンテキストを返す。
	// 全てのHTMLタグとイベント属性を除去し、前後の空白をトリムする。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(rawQuery string) string
}

// querySanitizer はQuerySanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type querySanitizer struct {
	policy *bluemonday.Policy
}

// NewQuerySanitizer はQuerySanitizerServiceの新しいインスタンスを生成する。
// 検索クエリはプレーンテキストのみ意味を持つため、
// タグを一切許可しないStrictPolicyを使用する。
func NewQuerySanitizer() *querySanitizer {
	return &querySanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は検索クエリをサニタイズしてプレーンテキストを返す。
func (s *querySanitizer) Sanitize(rawQuery string) string {
	return strings.TrimSpace(s.policy.Sanitize(rawQuery))
}
