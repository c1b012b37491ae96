package model

import "time"

// TaskType はタスクの種別（月次・日次）を表す。
type TaskType string

const (
	// TaskTypeMonthly は月次タスク。
	TaskTypeMonthly TaskType = "monthly"
	// TaskTypeDaily は日次タスク。
	TaskTypeDaily TaskType = "daily"
)

// Valid は種別が定義済みの値かを判定する。
func (t TaskType) Valid() bool {
	return t == TaskTypeMonthly || t == TaskTypeDaily
}

// Todo はToDoリストの項目を表す。
type Todo struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

// Task は月次・日次のタスクを表す。
type Task struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Label     string    `json:"label"`
	Completed bool      `json:"completed"`
	TaskType  TaskType  `json:"task_type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// QuickLink はダッシュボードに表示するブックマークを表す。
// Faviconは保存時に導出されるアイコンURL。
type QuickLink struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Favicon   string    `json:"favicon"`
	CreatedAt time.Time `json:"created_at"`
}

// TodoPatch はToDoの部分更新を表す。nilのフィールドは変更しない。
type TodoPatch struct {
	Title     *string
	Completed *bool
}

// TaskPatch はタスクの部分更新を表す。nilのフィールドは変更しない。
type TaskPatch struct {
	Label     *string
	Completed *bool
}
