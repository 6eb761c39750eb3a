// Package recommend はグループ推薦のドメインロジックを提供する。
//
// 推薦は4段階のパイプラインで行う。
//  1. シグナル抽出: ユーザーの所属・作成グループ、履修講義、検索履歴からキーワードを集める
//  2. 候補収集: キーワードごとの検索クエリと協調フィルタリングで候補グループを集める
//  3. スコアリング: 候補グループをシグナルとの一致度で加点し、上位10件を返す
//  4. フォールバック: 候補やスコア付き結果が空の場合は汎用推薦に段階的に切り替える
package recommend

import (
	"strings"
	"unicode"
)

// deptChar は講義コードの先頭の非空白文字を大文字で返す。
// 学部・分野の判定に使用する（例: "csci 4463" → 'C'）。
// 非空白文字が存在しない場合はfalseを返す。
func deptChar(code string) (rune, bool) {
	for _, ch := range code {
		if !unicode.IsSpace(ch) {
			return unicode.ToUpper(ch), true
		}
	}
	return 0, false
}

// codePrefix は講義コードからコース番号帯のプレフィックスを抽出する。
// 最初の空白の直後に現れる最初の数字までを切り出す（例: "math 4110" → "math 4"）。
// 空白がない、空白の後に数字より先に英字が現れる等、
// パターンに合致しない場合はfalseを返す。
func codePrefix(code string) (string, bool) {
	spaceIndex := strings.IndexByte(code, ' ')
	if spaceIndex <= 0 || spaceIndex >= len(code)-1 {
		return "", false
	}

	prefix := code[:spaceIndex+1]
	for _, ch := range code[spaceIndex+1:] {
		if unicode.IsDigit(ch) {
			return prefix + string(ch), true
		}
		if !unicode.IsSpace(ch) {
			break
		}
	}
	return "", false
}
