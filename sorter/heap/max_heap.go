package heap

import (
	"github.com/juju/errors"
)

// Comparable is implemented by heap elements. CompareTo follows the usual
// negative/zero/positive convention.
type Comparable[E any] interface {
	CompareTo(other E) int
}

// Collection is the indexed storage a heap runs on. The heap never keeps
// elements of its own; every read and write goes through Get, Set and Swap.
type Collection[E any] interface {
	Get(index int) (E, error)
	Set(index int, e E) error
	Swap(i, j int) error
	Length() int
}

/*
MaxHeap 是建立在 Collection 之上的数组堆。

	位置 p 的左孩子为 2p+1，右孩子为 2p+2，父节点为 (p-1)/2。
	p >= length/2 时为叶子。

length 是当前元素个数，capacity 是上限，二者都不超过集合长度。
*/
type MaxHeap[E Comparable[E]] struct {
	c        Collection[E]
	length   int
	capacity int
}

// NewMaxHeap views the first length elements of c as a heap that may grow to
// capacity, and builds it.
func NewMaxHeap[E Comparable[E]](c Collection[E], length, capacity int) (*MaxHeap[E], error) {
	if c == nil {
		return nil, errors.Annotate(ErrInvalidHeap, "nil collection")
	}
	if length < 0 || length > capacity || capacity > c.Length() {
		return nil, errors.Annotatef(ErrInvalidHeap, "length %d, capacity %d, collection %d", length, capacity, c.Length())
	}
	h := &MaxHeap[E]{c: c, length: length, capacity: capacity}
	if err := h.BuildHeap(); err != nil {
		return nil, errors.Trace(err)
	}
	return h, nil
}

func (h *MaxHeap[E]) Length() int {
	return h.length
}

func (h *MaxHeap[E]) Capacity() int {
	return h.capacity
}

// IsLeaf reports whether pos has no children in the current heap.
func (h *MaxHeap[E]) IsLeaf(pos int) bool {
	return pos >= h.length/2 && pos < h.length
}

func (h *MaxHeap[E]) leftChild(pos int) (int, error) {
	if pos < 0 || pos >= h.length/2 {
		return -1, errors.Annotatef(ErrIllegalPosition, "position %d has no left child", pos)
	}
	return 2*pos + 1, nil
}

func (h *MaxHeap[E]) rightChild(pos int) (int, error) {
	if pos < 0 || pos >= (h.length-1)/2 {
		return -1, errors.Annotatef(ErrIllegalPosition, "position %d has no right child", pos)
	}
	return 2*pos + 2, nil
}

func (h *MaxHeap[E]) parent(pos int) (int, error) {
	if pos <= 0 || pos >= h.length {
		return -1, errors.Annotatef(ErrIllegalPosition, "position %d has no parent", pos)
	}
	return (pos - 1) / 2, nil
}

// BuildHeap establishes heap order over the first Length elements.
func (h *MaxHeap[E]) BuildHeap() error {
	for i := h.length/2 - 1; i >= 0; i-- {
		if err := h.SiftDown(i); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

// SiftDown moves the element at pos down until it is not smaller than its
// children. On equal children the left one is taken.
func (h *MaxHeap[E]) SiftDown(pos int) error {
	if pos < 0 || pos > h.length {
		return errors.Annotatef(ErrIllegalPosition, "sift down from %d, length %d", pos, h.length)
	}

	for pos < h.length/2 {
		j, err := h.leftChild(pos)
		if err != nil {
			return err
		}
		larger, err := h.c.Get(j)
		if err != nil {
			return errors.Trace(err)
		}

		if j+1 < h.length {
			r, err := h.rightChild(pos)
			if err != nil {
				return err
			}
			right, err := h.c.Get(r)
			if err != nil {
				return errors.Trace(err)
			}
			if right.CompareTo(larger) > 0 {
				j, larger = r, right
			}
		}

		current, err := h.c.Get(pos)
		if err != nil {
			return errors.Trace(err)
		}
		if current.CompareTo(larger) >= 0 {
			return nil
		}
		if err := h.c.Swap(pos, j); err != nil {
			return errors.Trace(err)
		}
		pos = j
	}
	return nil
}

// RemoveMax moves the maximum to the end of the heap, shrinks the heap by one
// and returns that element. Repeating it until empty leaves the collection
// sorted ascending.
func (h *MaxHeap[E]) RemoveMax() (E, error) {
	var zero E
	if h.length <= 0 {
		return zero, errors.Trace(ErrHeapEmpty)
	}

	h.length--
	if err := h.c.Swap(0, h.length); err != nil {
		return zero, errors.Trace(err)
	}
	if h.length > 0 {
		if err := h.SiftDown(0); err != nil {
			return zero, errors.Trace(err)
		}
	}

	max, err := h.c.Get(h.length)
	if err != nil {
		return zero, errors.Trace(err)
	}
	return max, nil
}

// Insert appends e and sifts it up while it is strictly greater than its parent.
func (h *MaxHeap[E]) Insert(e E) error {
	if h.length >= h.capacity {
		return errors.Annotatef(ErrHeapFull, "capacity %d", h.capacity)
	}

	pos := h.length
	if err := h.c.Set(pos, e); err != nil {
		return errors.Trace(err)
	}
	h.length++

	for pos > 0 {
		p, err := h.parent(pos)
		if err != nil {
			return err
		}
		current, err := h.c.Get(pos)
		if err != nil {
			return errors.Trace(err)
		}
		up, err := h.c.Get(p)
		if err != nil {
			return errors.Trace(err)
		}
		if current.CompareTo(up) <= 0 {
			return nil
		}
		if err := h.c.Swap(pos, p); err != nil {
			return errors.Trace(err)
		}
		pos = p
	}
	return nil
}
