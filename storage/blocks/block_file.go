package blocks

import (
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
)

// BlockStore is a random-access byte device of known length. The buffer
// pool is its only user while a sort runs.
type BlockStore interface {
	io.ReaderAt
	io.WriterAt
	Size() int64
	Sync() error
	Close() error
}

// ErrClosed is returned by a store used after Close.
var ErrClosed = errors.New("block store is closed")

// BlockFile represents a file that is read and written in arbitrary byte ranges.
type BlockFile struct {
	mu       sync.RWMutex
	file     *os.File
	filePath string
	size     int64
}

var _ BlockStore = (*BlockFile)(nil)

// OpenBlockFile opens an existing file for reading and writing. The file
// length is captured once; the store never truncates or extends it.
func OpenBlockFile(filePath string) (*BlockFile, error) {
	file, err := os.OpenFile(filePath, os.O_RDWR, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "open block file %s", filePath)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, errors.Wrapf(err, "stat block file %s", filePath)
	}
	if stat.IsDir() {
		file.Close()
		return nil, errors.Errorf("block file %s is a directory", filePath)
	}

	return &BlockFile{
		file:     file,
		filePath: filePath,
		size:     stat.Size(),
	}, nil
}

// Path returns the file path.
func (bf *BlockFile) Path() string {
	return bf.filePath
}

// Size returns the file length captured at open.
func (bf *BlockFile) Size() int64 {
	return bf.size
}

// ReadAt reads len(p) bytes at off.
func (bf *BlockFile) ReadAt(p []byte, off int64) (int, error) {
	bf.mu.RLock()
	defer bf.mu.RUnlock()

	if bf.file == nil {
		return 0, ErrClosed
	}
	n, err := bf.file.ReadAt(p, off)
	if err == io.EOF && n == len(p) {
		err = nil
	}
	return n, err
}

// WriteAt writes p at off.
func (bf *BlockFile) WriteAt(p []byte, off int64) (int, error) {
	bf.mu.Lock()
	defer bf.mu.Unlock()

	if bf.file == nil {
		return 0, ErrClosed
	}
	return bf.file.WriteAt(p, off)
}

// Sync syncs the file to disk
func (bf *BlockFile) Sync() error {
	bf.mu.Lock()
	defer bf.mu.Unlock()

	if bf.file != nil {
		return bf.file.Sync()
	}
	return nil
}

// Close closes the block file
func (bf *BlockFile) Close() error {
	bf.mu.Lock()
	defer bf.mu.Unlock()

	if bf.file != nil {
		err := bf.file.Close()
		bf.file = nil
		return err
	}
	return nil
}
