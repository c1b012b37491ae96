package view

import (
	"net/url"
	"strings"
)

const searchBaseURL = "https://www.google.com/search?q="

// BuildSearchURL は検索クエリから新しいブラウジングコンテキストで開く
// Google検索URLを生成する。トリム後に空になるクエリは破棄して空文字を返す。
// 現在のビューをナビゲートすることはない。
func BuildSearchURL(query string) string {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return ""
	}
	return searchBaseURL + url.QueryEscape(trimmed)
}
