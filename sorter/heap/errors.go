package heap

import "github.com/juju/errors"

var (
	ErrHeapEmpty       = errors.New("heap is empty")
	ErrHeapFull        = errors.New("heap is full")
	ErrIllegalPosition = errors.New("illegal heap position")
	ErrInvalidHeap     = errors.New("invalid heap bounds")
)
