package recommend

import (
	"strings"

	"github.com/hitoshi/campushub/internal/model"
)

// スコアの重み。検索履歴と協調フィルタリングを強いシグナル、
// 所属グループ由来のキーワード一致を中程度のシグナルとして扱う。
const (
	weightCollaborative = 25

	weightSearchedGroupName    = 18
	weightSearchedCourseName   = 18
	weightSearchedCodeExact    = 20
	weightSearchedCodePartial  = 15
	weightSearchedTopic        = 12
	weightGeneralSearchField   = 15
	weightGeneralSearchTopic   = 12

	weightGroupNameExact    = 12
	weightGroupNamePartial  = 8
	weightCourseNameExact   = 15
	weightCourseNamePartial = 10
	weightCodePrefix        = 30
	weightDeptChar          = 22
	weightCodeExact         = 20
	weightCodePartial       = 8
	weightTopicExact        = 8
	weightTopicPartial      = 5

	weightOpenSpots = 2
)

// mutualContains はどちらか一方が他方を部分文字列として含むかを返す。
func mutualContains(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// scoreGroup は候補グループをシグナルとの一致度で採点する。
// 各加点規則は独立しており、合計がグループのスコアになる。
// 検索履歴由来の規則は語ごとではなく最初の一致で1回だけ加点し、
// キーワード集合由来の規則は一致した語の数だけ加点が累積する。
func scoreGroup(group *model.Group, sig *Signals, collaborative bool) int {
	score := 0

	// 協調フィルタリング: 所属グループのメンバーが参加しているグループ
	if collaborative {
		score += weightCollaborative
	}

	name := strings.ToLower(group.Name)
	courseName := strings.ToLower(group.CourseName)
	courseCode := strings.ToLower(group.CourseCode)
	topic := strings.ToLower(group.Topic)

	// 検索履歴との一致（最初の一致で打ち切り）
	if group.Name != "" {
		for _, searched := range sig.SearchedGroupNames {
			if mutualContains(name, strings.ToLower(searched)) {
				score += weightSearchedGroupName
				break
			}
		}
	}
	if group.CourseName != "" {
		for _, searched := range sig.SearchedCourseNames {
			if mutualContains(courseName, strings.ToLower(searched)) {
				score += weightSearchedCourseName
				break
			}
		}
	}
	if group.CourseCode != "" {
		for _, searched := range sig.SearchedCourseCodes {
			lowered := strings.ToLower(searched)
			if courseCode == lowered {
				score += weightSearchedCodeExact
				break
			}
			if mutualContains(courseCode, lowered) {
				score += weightSearchedCodePartial
				break
			}
		}
	}
	if group.Topic != "" {
		for _, searched := range sig.SearchedTopics {
			if mutualContains(topic, strings.ToLower(searched)) {
				score += weightSearchedTopic
				break
			}
		}
	}

	// 汎用検索（最新の1件のみ、いずれか1フィールドにのみ加点）
	if len(sig.GeneralSearches) > 0 {
		query := strings.ToLower(sig.GeneralSearches[0])
		switch {
		case group.Name != "" && strings.Contains(name, query):
			score += weightGeneralSearchField
		case group.CourseName != "" && strings.Contains(courseName, query):
			score += weightGeneralSearchField
		case group.CourseCode != "" && strings.Contains(courseCode, query):
			score += weightGeneralSearchField
		case group.Topic != "" && strings.Contains(topic, query):
			score += weightGeneralSearchTopic
		}
	}

	// キーワード集合との一致（一致した語の数だけ累積）
	if group.Name != "" {
		for keyword := range sig.GroupNames {
			if name == keyword {
				score += weightGroupNameExact
			} else if mutualContains(name, keyword) {
				score += weightGroupNamePartial
			}
		}
	}
	if group.CourseName != "" {
		for keyword := range sig.CourseNames {
			if courseName == keyword {
				score += weightCourseNameExact
			} else if mutualContains(courseName, keyword) {
				score += weightCourseNamePartial
			}
		}
	}

	// 講義コード: コース番号帯 > 学部・分野 > コード一致の順に重み付け
	if group.CourseCode != "" {
		trimmedCode := strings.TrimSpace(courseCode)

		if trimmedCode != "" {
			for prefix := range sig.CodePrefixes {
				if strings.HasPrefix(trimmedCode, prefix) {
					score += weightCodePrefix
					break
				}
			}

			if ch, ok := deptChar(trimmedCode); ok {
				if _, match := sig.DeptChars[ch]; match {
					score += weightDeptChar
				}
			}
		}

		for keyword := range sig.CourseCodes {
			if trimmedCode == keyword {
				score += weightCodeExact
			} else if mutualContains(trimmedCode, keyword) {
				score += weightCodePartial
			}
		}
	}

	if group.Topic != "" {
		for keyword := range sig.Topics {
			if topic == keyword {
				score += weightTopicExact
			} else if mutualContains(topic, keyword) {
				score += weightTopicPartial
			}
		}
	}

	// 空きがあるグループへの小さな加点。満員グループも候補からは除外しない。
	if group.HasOpenSpots() {
		score += weightOpenSpots
	}

	return score
}
