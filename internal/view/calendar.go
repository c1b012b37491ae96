// Package view はダッシュボードの表示状態コントローラーを提供する。
package view

import "time"

// Calendar はカレンダー表示の月カーソルを管理する。
// 月は0始まり（0=1月、11=12月）で保持する。
type Calendar struct {
	month int
	year  int
}

// NewCalendar は指定時刻の月を指すカレンダーを生成する。
func NewCalendar(now time.Time) *Calendar {
	return &Calendar{
		month: int(now.Month()) - 1,
		year:  now.Year(),
	}
}

// Month は現在のカーソル位置の月（0-11）を返す。
func (c *Calendar) Month() int {
	return c.month
}

// Year は現在のカーソル位置の年を返す。
func (c *Calendar) Year() int {
	return c.year
}

// Next はカーソルを翌月に進める。12月からは翌年1月に繰り上がる。
func (c *Calendar) Next() {
	c.month++
	if c.month > 11 {
		c.month = 0
		c.year++
	}
}

// Prev はカーソルを前月に戻す。1月からは前年12月に繰り下がる。
func (c *Calendar) Prev() {
	c.month--
	if c.month < 0 {
		c.month = 11
		c.year--
	}
}

// DaysInMonth はカーソル位置の月の日数を返す。
// 先発グレゴリオ暦に従い、閏年の2月は29日になる。
func (c *Calendar) DaysInMonth() int {
	// 翌月の0日目 = 当月の末日
	return time.Date(c.year, time.Month(c.month+2), 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstWeekday はカーソル位置の月の1日の曜日を返す（0=日曜）。
// カレンダー格子の先頭オフセットに使う。
func (c *Calendar) FirstWeekday() int {
	return int(time.Date(c.year, time.Month(c.month+1), 1, 0, 0, 0, 0, time.UTC).Weekday())
}
