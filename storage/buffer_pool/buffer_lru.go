package buffer_pool

import (
	"container/list"
)

// EvictedFunc is called with every page that leaves the cache through evict.
type EvictedFunc func(page *BufferPage)

// lruCache keeps resident pages in recency order. The front of order is the
// most recently used page, the back is the next eviction victim. items gives
// O(1) lookup by block number.
type lruCache struct {
	capacity    int
	items       map[uint64]*list.Element
	order       *list.List
	evictedFunc EvictedFunc
}

func newLRUCache(capacity int, evictedFunc EvictedFunc) *lruCache {
	return &lruCache{
		capacity:    capacity,
		items:       make(map[uint64]*list.Element, capacity),
		order:       list.New(),
		evictedFunc: evictedFunc,
	}
}

// get returns the resident page for blockNo and moves it to the front.
func (c *lruCache) get(blockNo uint64) (*BufferPage, bool) {
	elem, ok := c.items[blockNo]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*BufferPage), true
}

// peek returns the resident page without touching recency.
func (c *lruCache) peek(blockNo uint64) (*BufferPage, bool) {
	elem, ok := c.items[blockNo]
	if !ok {
		return nil, false
	}
	return elem.Value.(*BufferPage), true
}

// add inserts page at the front. The caller evicts first when the cache is full.
func (c *lruCache) add(page *BufferPage) {
	if elem, ok := c.items[page.blockNo]; ok {
		elem.Value = page
		c.order.MoveToFront(elem)
		return
	}
	c.items[page.blockNo] = c.order.PushFront(page)
}

// victim returns the least recently used page, or nil when empty.
func (c *lruCache) victim() *BufferPage {
	back := c.order.Back()
	if back == nil {
		return nil
	}
	return back.Value.(*BufferPage)
}

// evict removes the least recently used page and returns it.
func (c *lruCache) evict() *BufferPage {
	back := c.order.Back()
	if back == nil {
		return nil
	}
	page := c.removeElement(back)
	if c.evictedFunc != nil {
		c.evictedFunc(page)
	}
	return page
}

func (c *lruCache) removeElement(e *list.Element) *BufferPage {
	c.order.Remove(e)
	page := e.Value.(*BufferPage)
	delete(c.items, page.blockNo)
	return page
}

func (c *lruCache) isFull() bool {
	return c.order.Len() >= c.capacity
}

func (c *lruCache) len() int {
	return c.order.Len()
}

// blocks lists resident block numbers from most to least recently used.
func (c *lruCache) blocks() []uint64 {
	result := make([]uint64, 0, c.order.Len())
	for e := c.order.Front(); e != nil; e = e.Next() {
		result = append(result, e.Value.(*BufferPage).blockNo)
	}
	return result
}

// each visits pages from least to most recently used and stops at the first error.
func (c *lruCache) each(fn func(page *BufferPage) error) error {
	for e := c.order.Back(); e != nil; e = e.Prev() {
		if err := fn(e.Value.(*BufferPage)); err != nil {
			return err
		}
	}
	return nil
}

// purge drops every page, handing each to fn first.
func (c *lruCache) purge(fn func(page *BufferPage)) {
	for e := c.order.Back(); e != nil; e = e.Prev() {
		if fn != nil {
			fn(e.Value.(*BufferPage))
		}
	}
	c.order.Init()
	c.items = make(map[uint64]*list.Element, c.capacity)
}
