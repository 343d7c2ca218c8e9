package heap

import (
	"time"

	"github.com/juju/errors"

	"github.com/zhukovaskychina/xheapsort/logger"
)

// Sorter sorts a whole collection in place, ascending, with a max-heap.
type Sorter[E Comparable[E]] struct {
	elapsed time.Duration
	sorted  bool
}

func NewSorter[E Comparable[E]]() *Sorter[E] {
	return &Sorter[E]{}
}

// Sort heapifies all of c and removes the maximum c.Length() times.
func (s *Sorter[E]) Sort(c Collection[E]) error {
	s.sorted = false
	s.elapsed = 0
	start := time.Now()

	n := c.Length()
	h, err := NewMaxHeap[E](c, n, n)
	if err != nil {
		return errors.Annotate(err, "build heap")
	}
	logger.Debugf("heap built over %d elements in %v", n, time.Since(start))

	for i := 0; i < n; i++ {
		if _, err := h.RemoveMax(); err != nil {
			return errors.Annotatef(err, "remove max %d of %d", i+1, n)
		}
	}

	s.elapsed = time.Since(start)
	s.sorted = true
	logger.Debugf("sorted %d elements in %v", n, s.elapsed)
	return nil
}

// Elapsed is the duration of the last completed sort, zero before one finishes.
func (s *Sorter[E]) Elapsed() time.Duration {
	return s.elapsed
}

func (s *Sorter[E]) Sorted() bool {
	return s.sorted
}
