package buffer_pool

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/zhukovaskychina/xheapsort/logger"
	"github.com/zhukovaskychina/xheapsort/storage/blocks"
)

// BufferPoolConfig contains configuration for buffer pool
type BufferPoolConfig struct {
	// BlockSize is the number of bytes per page.
	BlockSize int
	// PoolCount is the maximum number of resident pages.
	PoolCount int
}

// Validate rejects non-positive sizes.
func (c *BufferPoolConfig) Validate() error {
	if c == nil {
		return NewError("validate", errors.Wrap(ErrInvalidConfig, "nil config"))
	}
	if c.BlockSize <= 0 {
		return NewError("validate", errors.Wrapf(ErrInvalidConfig, "block size %d must be positive", c.BlockSize))
	}
	if c.PoolCount <= 0 {
		return NewError("validate", errors.Wrapf(ErrInvalidConfig, "pool count %d must be positive", c.PoolCount))
	}
	return nil
}

// BufferPool is a bounded LRU page cache over a BlockStore. Every byte read
// or written by the sort goes through it. Writes stay in memory until the
// page is evicted or Flush is called.
type BufferPool struct {
	mu sync.Mutex

	// Configuration
	blockSize int
	poolCount int

	// Storage
	store blocks.BlockStore
	size  int64

	// Cache management
	lruCache *lruCache

	// Statistics
	stats *BufferPoolStats

	closed bool
}

// NewBufferPool creates a new buffer pool. No I/O happens until the first access.
func NewBufferPool(store blocks.BlockStore, config *BufferPoolConfig) (*BufferPool, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, NewError("create", errors.Wrap(ErrInvalidConfig, "nil block store"))
	}

	bp := &BufferPool{
		blockSize: config.BlockSize,
		poolCount: config.PoolCount,
		store:     store,
		size:      store.Size(),
		stats:     NewBufferPoolStats(),
	}
	bp.lruCache = newLRUCache(config.PoolCount, func(page *BufferPage) {
		bp.stats.RecordEviction()
	})
	return bp, nil
}

// Statistics methods

// CacheHits returns the number of block lookups served from memory.
func (bp *BufferPool) CacheHits() int64 {
	return bp.stats.Snapshot().CacheHits
}

// CacheMisses returns the number of block lookups that had to load the block.
func (bp *BufferPool) CacheMisses() int64 {
	return bp.stats.Snapshot().CacheMisses
}

// DiskReads returns the number of whole-block reads from the store.
func (bp *BufferPool) DiskReads() int64 {
	return bp.stats.Snapshot().DiskReads
}

// DiskWrites returns the number of dirty pages written back to the store.
func (bp *BufferPool) DiskWrites() int64 {
	return bp.stats.Snapshot().DiskWrites
}

// Evictions returns the number of pages dropped to make room.
func (bp *BufferPool) Evictions() int64 {
	return bp.stats.Snapshot().Evictions
}

// GetHitRatio returns the cache hit ratio
func (bp *BufferPool) GetHitRatio() float64 {
	return bp.stats.GetHitRatio()
}

// Stats returns a snapshot of all counters.
func (bp *BufferPool) Stats() BufferPoolStats {
	return bp.stats.Snapshot()
}

// Size returns the length of the backing store in bytes.
func (bp *BufferPool) Size() int64 {
	return bp.size
}

func (bp *BufferPool) BlockSize() int {
	return bp.blockSize
}

func (bp *BufferPool) PoolCount() int {
	return bp.poolCount
}

// NumBlocks returns how many blocks, the last possibly short, cover the store.
func (bp *BufferPool) NumBlocks() int64 {
	return (bp.size + int64(bp.blockSize) - 1) / int64(bp.blockSize)
}

// Resident returns the number of pages currently in memory.
func (bp *BufferPool) Resident() int {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	return bp.lruCache.len()
}

// ResidentBlocks lists resident block numbers, most recently used first.
func (bp *BufferPool) ResidentBlocks() []uint64 {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	return bp.lruCache.blocks()
}

// IsDirty reports whether blockNo is resident and modified. Recency is not touched.
func (bp *BufferPool) IsDirty(blockNo uint64) bool {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	page, ok := bp.lruCache.peek(blockNo)
	return ok && page.IsDirty()
}

// Read returns exactly length bytes starting at offset.
func (bp *BufferPool) Read(offset int64, length int) ([]byte, error) {
	if length < 0 {
		return nil, NewError("read", errors.Wrapf(ErrOutOfRange, "negative length %d", length))
	}
	buf := make([]byte, length)
	if err := bp.ReadInto(buf, offset); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadInto fills dst with the bytes starting at offset.
func (bp *BufferPool) ReadInto(dst []byte, offset int64) error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if err := bp.checkAccess("read", offset, len(dst)); err != nil {
		return err
	}

	for done := 0; done < len(dst); {
		pos := offset + int64(done)
		page, err := bp.getPage(uint64(pos / int64(bp.blockSize)))
		if err != nil {
			return err
		}
		done += page.readInto(dst[done:], int(pos%int64(bp.blockSize)))
	}
	return nil
}

// Write copies data into the pages covering [offset, offset+len(data)) and
// marks them dirty.
func (bp *BufferPool) Write(data []byte, offset int64) error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if err := bp.checkAccess("write", offset, len(data)); err != nil {
		return err
	}

	for done := 0; done < len(data); {
		pos := offset + int64(done)
		page, err := bp.getPage(uint64(pos / int64(bp.blockSize)))
		if err != nil {
			return err
		}
		done += page.writeFrom(data[done:], int(pos%int64(bp.blockSize)))
	}
	return nil
}

// Flush writes every dirty page back and keeps all pages resident.
func (bp *BufferPool) Flush() error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if bp.closed {
		return NewError("flush", ErrPoolClosed)
	}
	return bp.flushDirtyPages()
}

// Close flushes, releases every page and closes the store. The store is
// closed even when the flush fails; the flush error is returned.
func (bp *BufferPool) Close() error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if bp.closed {
		return nil
	}
	flushErr := bp.flushDirtyPages()

	bp.lruCache.purge(func(page *BufferPage) {
		page.release()
	})
	bp.closed = true

	if err := bp.store.Close(); err != nil && flushErr == nil {
		return NewError("close", errors.Wrap(err, "close block store"))
	}
	return flushErr
}

func (bp *BufferPool) checkAccess(op string, offset int64, length int) error {
	if bp.closed {
		return NewError(op, ErrPoolClosed)
	}
	if offset < 0 || length < 0 || offset > bp.size || int64(length) > bp.size-offset {
		return NewError(op, errors.Wrapf(ErrOutOfRange, "[%d, %d) of %d bytes", offset, offset+int64(length), bp.size))
	}
	return nil
}

// getPage resolves blockNo to a resident page, loading it on a miss.
func (bp *BufferPool) getPage(blockNo uint64) (*BufferPage, error) {
	if page, ok := bp.lruCache.get(blockNo); ok {
		bp.stats.RecordPageRequest(true)
		return page, nil
	}
	bp.stats.RecordPageRequest(false)

	if bp.lruCache.isFull() {
		if err := bp.evictPage(); err != nil {
			return nil, err
		}
	}

	page, err := bp.readFromDisk(blockNo)
	if err != nil {
		return nil, err
	}
	bp.lruCache.add(page)
	return page, nil
}

// evictPage drops the least recently used page, writing it back first when
// dirty. A failed write-back leaves the page resident and dirty.
func (bp *BufferPool) evictPage() error {
	victim := bp.lruCache.victim()
	if victim == nil {
		return nil
	}

	if victim.IsDirty() {
		if err := bp.writeToDisk(victim); err != nil {
			return NewError("evict", err)
		}
	}

	bp.lruCache.evict()
	logger.Debugf("buffer pool evicted block %d", victim.GetBlockNo())
	victim.release()
	return nil
}

// readFromDisk loads one whole block. Nothing is cached when the read fails.
func (bp *BufferPool) readFromDisk(blockNo uint64) (*BufferPage, error) {
	start := int64(blockNo) * int64(bp.blockSize)
	length := bp.blockSize
	if remain := bp.size - start; remain < int64(length) {
		length = int(remain)
	}

	page := newBufferPage(blockNo, bp.blockSize)
	page.length = length

	begin := time.Now()
	n, err := bp.store.ReadAt(page.content(), start)
	if err == io.EOF && n == length {
		err = nil
	}
	if err == nil && n < length {
		err = io.ErrUnexpectedEOF
	}
	if err != nil {
		page.release()
		return nil, NewError("load", errors.Wrapf(err, "read block %d at offset %d", blockNo, start))
	}
	bp.stats.RecordPageIO(true, time.Since(begin))
	return page, nil
}

// writeToDisk writes a page back to the store and clears its dirty flag.
func (bp *BufferPool) writeToDisk(page *BufferPage) error {
	start := int64(page.GetBlockNo()) * int64(bp.blockSize)

	begin := time.Now()
	if _, err := bp.store.WriteAt(page.content(), start); err != nil {
		return errors.Wrapf(ErrFlushFailed, "write block %d at offset %d: %v", page.GetBlockNo(), start, err)
	}
	bp.stats.RecordPageIO(false, time.Since(begin))
	page.ClearDirty()

	logger.Debugf("buffer pool wrote back %v", page)
	return nil
}

func (bp *BufferPool) flushDirtyPages() error {
	bp.stats.RecordFlush()

	err := bp.lruCache.each(func(page *BufferPage) error {
		if !page.IsDirty() {
			return nil
		}
		return bp.writeToDisk(page)
	})
	if err != nil {
		return NewError("flush", err)
	}

	if err := bp.store.Sync(); err != nil {
		return NewError("flush", errors.Wrap(err, "sync block store"))
	}
	return nil
}

func (bp *BufferPool) String() string {
	s := bp.stats.Snapshot()
	return fmt.Sprintf("BufferPool{blockSize=%d, poolCount=%d, hits=%d, misses=%d, reads=%d, writes=%d}",
		bp.blockSize, bp.poolCount, s.CacheHits, s.CacheMisses, s.DiskReads, s.DiskWrites)
}
