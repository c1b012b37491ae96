package view

import (
	"sync"
	"time"
)

// DefaultToastDuration はトーストの自動消滅までの時間。
const DefaultToastDuration = 3000 * time.Millisecond

// ToastLevel はトーストの表示種別。
type ToastLevel string

const (
	ToastInfo  ToastLevel = "info"
	ToastError ToastLevel = "error"
)

// Toast は画面に表示する通知。
type Toast struct {
	ID      int
	Message string
	Level   ToastLevel
}

// ToastQueue は通知キューを管理する。
// 各トーストは明示的な消去か自動消滅のどちらか早い方で消える。
// 所有するタイマーはCloseで必ず破棄される。
type ToastQueue struct {
	mu       sync.Mutex
	toasts   []Toast
	timers   map[int]*time.Timer
	nextID   int
	duration time.Duration
	closed   bool
}

// NewToastQueue はToastQueueを生成する。durationが0以下の場合は既定値を使う。
func NewToastQueue(duration time.Duration) *ToastQueue {
	if duration <= 0 {
		duration = DefaultToastDuration
	}
	return &ToastQueue{
		timers:   make(map[int]*time.Timer),
		duration: duration,
	}
}

// Show はトーストをキューに追加し、自動消滅タイマーを開始する。
func (q *ToastQueue) Show(message string, level ToastLevel) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return 0
	}

	q.nextID++
	id := q.nextID
	q.toasts = append(q.toasts, Toast{ID: id, Message: message, Level: level})
	q.timers[id] = time.AfterFunc(q.duration, func() {
		q.Dismiss(id)
	})
	return id
}

// Dismiss は指定IDのトーストを消去する。既に消えている場合は何もしない。
func (q *ToastQueue) Dismiss(id int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.dismissLocked(id)
}

func (q *ToastQueue) dismissLocked(id int) {
	if timer, ok := q.timers[id]; ok {
		timer.Stop()
		delete(q.timers, id)
	}
	for i, toast := range q.toasts {
		if toast.ID == id {
			q.toasts = append(q.toasts[:i], q.toasts[i+1:]...)
			return
		}
	}
}

// Active は表示中のトーストのコピーを返す。
func (q *ToastQueue) Active() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Toast(nil), q.toasts...)
}

// Close は全タイマーを停止してキューを閉じる。何度呼んでも安全。
func (q *ToastQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	for id, timer := range q.timers {
		timer.Stop()
		delete(q.timers, id)
	}
	q.toasts = nil
}
