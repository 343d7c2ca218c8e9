package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhukovaskychina/xheapsort/sorter/record"
	"github.com/zhukovaskychina/xheapsort/storage/blocks"
	"github.com/zhukovaskychina/xheapsort/storage/buffer_pool"
)

func TestHitRatio(t *testing.T) {
	assert.Equal(t, "0.00", (&Report{}).HitRatio())
	assert.Equal(t, "0.67", (&Report{CacheHits: 2, CacheMisses: 1}).HitRatio())
	assert.Equal(t, "1.00", (&Report{CacheHits: 5}).HitRatio())
	assert.Equal(t, "0.25", (&Report{CacheHits: 1, CacheMisses: 3}).HitRatio())
}

func TestReportFormat(t *testing.T) {
	leaders := make([]record.Record, 10)
	for i := range leaders {
		leaders[i] = record.NewRecord(int64(i), int64(-i))
	}
	r := &Report{
		DataFile:    "data.bin",
		Blocks:      10,
		Buffers:     3,
		CacheHits:   90,
		CacheMisses: 10,
		DiskReads:   10,
		DiskWrites:  7,
		Elapsed:     1500 * time.Millisecond,
		Leaders:     leaders,
	}

	var buf bytes.Buffer
	n, err := r.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "data.bin, with 10 blocks and 3 buffers", lines[0])
	assert.Equal(t, "0 0\t1 -1\t2 -2\t3 -3\t4 -4\t5 -5\t6 -6\t7 -7", lines[1])
	assert.Equal(t, "8 -8\t9 -9", lines[2])
	assert.Equal(t, "Cache hits: 90  Cache misses: 10  Hit ratio: 0.90", lines[3])
	assert.Equal(t, "Disk reads: 10  Disk writes: 7", lines[4])
	assert.Equal(t, "Time to sort: 1500 ms", lines[5])
}

func TestNewReportFromPool(t *testing.T) {
	bp, err := buffer_pool.NewBufferPool(blocks.NewMemoryBlock(make([]byte, 40)),
		&buffer_pool.BufferPoolConfig{BlockSize: 16, PoolCount: 2})
	require.NoError(t, err)
	_, err = bp.Read(0, 20)
	require.NoError(t, err)
	_, err = bp.Read(0, 1)
	require.NoError(t, err)

	r := NewReport("x", bp, time.Second, nil)
	assert.Equal(t, int64(2), r.Blocks)
	assert.Equal(t, 2, r.Buffers)
	assert.Equal(t, int64(1), r.CacheHits)
	assert.Equal(t, int64(2), r.CacheMisses)
	assert.Equal(t, int64(2), r.DiskReads)
	assert.NotContains(t, r.String(), "\t")

	base := bp.Stats()
	_, err = bp.Read(16, 1)
	require.NoError(t, err)
	delta := NewReport("x", bp, time.Second, nil).Since(base)
	assert.Equal(t, int64(1), delta.CacheHits)
	assert.Equal(t, int64(0), delta.CacheMisses)
	assert.Equal(t, int64(0), delta.DiskReads)
}
