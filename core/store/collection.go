package store

// collection is one keyed entity map plus an insertion-order index so list
// snapshots come back in a stable order.
type collection[T any] struct {
	items map[string]T
	order []string
}

func newCollection[T any]() *collection[T] {
	return &collection[T]{items: map[string]T{}}
}

func (c *collection[T]) get(id string) (T, bool) {
	v, ok := c.items[id]
	return v, ok
}

// set upserts the whole object under id, preserving the original insertion
// position for existing ids.
func (c *collection[T]) set(id string, v T) {
	if _, exists := c.items[id]; !exists {
		c.order = append(c.order, id)
	}
	c.items[id] = v
}

func (c *collection[T]) delete(id string) {
	if _, exists := c.items[id]; !exists {
		return
	}
	delete(c.items, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *collection[T]) list() []T {
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out
}

func (c *collection[T]) len() int {
	return len(c.items)
}

func (c *collection[T]) clear() {
	c.items = map[string]T{}
	c.order = nil
}
