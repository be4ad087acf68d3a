package registry

// table 按 id 索引的实体表，记录事务内首次修改前的副本以便回滚
type table[T any] struct {
	rows  map[string]*T
	clone func(*T) *T
	undo  map[string]*T // nil 表示修改前不存在
}

func newTable[T any](clone func(*T) *T) *table[T] {
	return &table[T]{
		rows:  make(map[string]*T),
		clone: clone,
		undo:  make(map[string]*T),
	}
}

// get 只读访问，调用方不得修改返回值
func (t *table[T]) get(id string) (*T, bool) {
	v, ok := t.rows[id]
	return v, ok
}

func (t *table[T]) has(id string) bool {
	_, ok := t.rows[id]
	return ok
}

func (t *table[T]) touch(id string) {
	if _, ok := t.undo[id]; ok {
		return
	}
	if cur, ok := t.rows[id]; ok {
		t.undo[id] = t.clone(cur)
	} else {
		t.undo[id] = nil
	}
}

// mut 返回可修改的行，不存在时返回 nil
func (t *table[T]) mut(id string) *T {
	v, ok := t.rows[id]
	if !ok {
		return nil
	}
	t.touch(id)
	return v
}

func (t *table[T]) put(id string, v *T) {
	t.touch(id)
	t.rows[id] = v
}

func (t *table[T]) del(id string) {
	if _, ok := t.rows[id]; !ok {
		return
	}
	t.touch(id)
	delete(t.rows, id)
}

func (t *table[T]) load(id string, v *T) {
	t.rows[id] = v
}

func (t *table[T]) changes() map[string]*T {
	if len(t.undo) == 0 {
		return nil
	}
	out := make(map[string]*T, len(t.undo))
	for id := range t.undo {
		if cur, ok := t.rows[id]; ok {
			out[id] = t.clone(cur)
		} else {
			out[id] = nil
		}
	}
	return out
}

func (t *table[T]) rollback() {
	for id, prev := range t.undo {
		if prev == nil {
			delete(t.rows, id)
		} else {
			t.rows[id] = prev
		}
	}
	t.undo = make(map[string]*T)
}

func (t *table[T]) commit() {
	if len(t.undo) > 0 {
		t.undo = make(map[string]*T)
	}
}

func (t *table[T]) len() int {
	return len(t.rows)
}
