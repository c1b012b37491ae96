package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizerService はユーザー入力テキストのサニタイズ機能のインターフェースを定義する。
// ToDoのタイトル、タスクのラベル、クイックリンクのタイトルは
// ダッシュボード上でそのまま表示されるため、保存前にHTMLを全て除去する。
type TextSanitizerService interface {
	// SanitizeText は入力からHTMLタグを全て除去したプレーンテキストを返す。
	// 前後の空白もトリムする。同一入力に対して常に同一出力を返す（冪等）。
	SanitizeText(raw string) string
}

// textSanitizer はTextSanitizerServiceの実装。
// bluemondayのStrictPolicy（全タグ除去）を保持し、スレッドセーフに動作する。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerServiceの新しいインスタンスを生成する。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// SanitizeText は入力からHTMLタグを全て除去したプレーンテキストを返す。
// bluemondayはエンティティをエスケープするため、表示用にアンエスケープして戻す。
func (s *textSanitizer) SanitizeText(raw string) string {
	if raw == "" {
		return ""
	}
	cleaned := s.policy.Sanitize(raw)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

// compile-time interface check
var _ TextSanitizerService = (*textSanitizer)(nil)
