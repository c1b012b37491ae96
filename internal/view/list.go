package view

import "sync"

// ListController はバックエンドのリストを映す表示状態を管理する。
// ローカル状態はサーバーが成功を返した後にのみ変更する（確定後反映）。
// 世代カウンタにより、Refresh/Closeをまたいで届いた古い応答は黙って捨てる。
type ListController[T any] struct {
	mu         sync.Mutex
	items      []T
	idOf       func(T) string
	generation uint64
	editingID  string
	closed     bool
}

// NewListController はListControllerを生成する。
// idOfは要素から識別子を取り出す関数。
func NewListController[T any](idOf func(T) string) *ListController[T] {
	return &ListController[T]{idOf: idOf}
}

// Items は現在のリストのコピーを返す。
func (c *ListController[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T(nil), c.items...)
}

// Generation は現在の世代トークンを返す。
// サーバー要求の開始時に取得し、応答の反映時に提示する。
func (c *ListController[T]) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Invalidate は世代を進め、進行中の要求の応答をすべて無効化する。
// 再読み込みの開始時に呼ぶ。
func (c *ListController[T]) Invalidate() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	return c.generation
}

// ApplyList はサーバーから取得したリストを反映する。
// 世代が合わない、またはClose済みの場合は捨ててfalseを返す。
func (c *ListController[T]) ApplyList(generation uint64, items []T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || generation != c.generation {
		return false
	}
	c.items = append([]T(nil), items...)
	return true
}

// ApplyUpsert はサーバーが確定した要素の追加・更新を反映する。
func (c *ListController[T]) ApplyUpsert(generation uint64, item T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || generation != c.generation {
		return false
	}

	id := c.idOf(item)
	for i, existing := range c.items {
		if c.idOf(existing) == id {
			c.items[i] = item
			return true
		}
	}
	c.items = append(c.items, item)
	return true
}

// ApplyDelete はサーバーが確定した削除を反映する。
// 対象が既にローカルに無い場合も成功として扱う。
func (c *ListController[T]) ApplyDelete(generation uint64, id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || generation != c.generation {
		return false
	}

	for i, existing := range c.items {
		if c.idOf(existing) == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			break
		}
	}
	if c.editingID == id {
		c.editingID = ""
	}
	return true
}

// BeginEdit は指定要素のインライン編集を開始する。
// 同時に編集できるのは1件のみで、別の要素が編集中の場合はfalseを返す。
func (c *ListController[T]) BeginEdit(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || (c.editingID != "" && c.editingID != id) {
		return false
	}
	for _, existing := range c.items {
		if c.idOf(existing) == id {
			c.editingID = id
			return true
		}
	}
	return false
}

// EditingID は編集中の要素の識別子を返す。編集中でなければ空文字。
func (c *ListController[T]) EditingID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editingID
}

// CommitEdit はサーバーが確定した編集結果を反映して編集モードを終了する。
func (c *ListController[T]) CommitEdit(generation uint64, item T) bool {
	c.mu.Lock()
	editing := c.editingID
	c.mu.Unlock()

	if editing == "" || c.idOf(item) != editing {
		return false
	}
	if !c.ApplyUpsert(generation, item) {
		return false
	}

	c.mu.Lock()
	c.editingID = ""
	c.mu.Unlock()
	return true
}

// CancelEdit は編集モードを終了する。ローカル状態は変更しない。
func (c *ListController[T]) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editingID = ""
}

// Close はコントローラーを閉じる。以降に届いた応答はすべて捨てられる。
func (c *ListController[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.generation++
}
