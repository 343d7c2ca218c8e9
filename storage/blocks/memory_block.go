package blocks

import (
	"io"
	"sync"

	"github.com/pkg/errors"
)

// MemoryBlock is an in-memory BlockStore of fixed length. Tests use it to
// observe exactly which bytes reach the store and how often.
type MemoryBlock struct {
	mu     sync.RWMutex
	data   []byte
	closed bool

	readCalls  int
	writeCalls int
	syncCalls  int

	// FailReads makes every ReadAt fail with this error when set.
	FailReads error
	// FailWrites makes every WriteAt fail with this error when set.
	FailWrites error
}

var _ BlockStore = (*MemoryBlock)(nil)

// NewMemoryBlock wraps a copy of data.
func NewMemoryBlock(data []byte) *MemoryBlock {
	buf := make([]byte, len(data))
	copy(buf, data)
	return &MemoryBlock{data: buf}
}

func (mb *MemoryBlock) Size() int64 {
	mb.mu.RLock()
	defer mb.mu.RUnlock()
	return int64(len(mb.data))
}

func (mb *MemoryBlock) ReadAt(p []byte, off int64) (int, error) {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	if mb.closed {
		return 0, ErrClosed
	}
	mb.readCalls++
	if mb.FailReads != nil {
		return 0, mb.FailReads
	}
	if off < 0 {
		return 0, errors.Errorf("negative offset %d", off)
	}
	if off >= int64(len(mb.data)) {
		return 0, io.EOF
	}
	n := copy(p, mb.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// WriteAt never grows the store; bytes past the end are rejected.
func (mb *MemoryBlock) WriteAt(p []byte, off int64) (int, error) {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	if mb.closed {
		return 0, ErrClosed
	}
	mb.writeCalls++
	if mb.FailWrites != nil {
		return 0, mb.FailWrites
	}
	if off < 0 || off+int64(len(p)) > int64(len(mb.data)) {
		return 0, errors.Errorf("write [%d, %d) outside store of %d bytes", off, off+int64(len(p)), len(mb.data))
	}
	return copy(mb.data[off:], p), nil
}

func (mb *MemoryBlock) Sync() error {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.syncCalls++
	return nil
}

func (mb *MemoryBlock) Close() error {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.closed = true
	return nil
}

// Bytes returns a copy of the current contents.
func (mb *MemoryBlock) Bytes() []byte {
	mb.mu.RLock()
	defer mb.mu.RUnlock()
	buf := make([]byte, len(mb.data))
	copy(buf, mb.data)
	return buf
}

// ReadCalls returns how many ReadAt calls reached the store.
func (mb *MemoryBlock) ReadCalls() int {
	mb.mu.RLock()
	defer mb.mu.RUnlock()
	return mb.readCalls
}

// WriteCalls returns how many WriteAt calls reached the store.
func (mb *MemoryBlock) WriteCalls() int {
	mb.mu.RLock()
	defer mb.mu.RUnlock()
	return mb.writeCalls
}

// SyncCalls returns how many times Sync was called.
func (mb *MemoryBlock) SyncCalls() int {
	mb.mu.RLock()
	defer mb.mu.RUnlock()
	return mb.syncCalls
}

// IsClosed reports whether Close was called.
func (mb *MemoryBlock) IsClosed() bool {
	mb.mu.RLock()
	defer mb.mu.RUnlock()
	return mb.closed
}
