package record

import (
	"github.com/juju/errors"
)

var ErrIndexOutOfRange = errors.New("record index out of range")

// Collection gives indexed access to records. Implementations own where the
// records live; callers see only positions.
type Collection interface {
	Get(index int) (Record, error)
	Set(index int, rec Record) error
	Swap(i, j int) error
	Length() int
}

func checkIndex(index, length int) error {
	if index < 0 || index >= length {
		return errors.Annotatef(ErrIndexOutOfRange, "index %d, length %d", index, length)
	}
	return nil
}
