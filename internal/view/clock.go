package view

import "time"

// FormatClock はデジタル時計表示用にHH:MM形式の文字列を返す。
func FormatClock(t time.Time) string {
	return t.Format("15:04")
}
