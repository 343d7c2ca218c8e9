package heap

import (
	stderrors "errors"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhukovaskychina/xheapsort/sorter/record"
	"github.com/zhukovaskychina/xheapsort/storage/blocks"
	"github.com/zhukovaskychina/xheapsort/storage/buffer_pool"
	"github.com/zhukovaskychina/xheapsort/util"
)

func keys(records ...int64) []record.Record {
	result := make([]record.Record, len(records))
	for i, k := range records {
		result[i] = record.NewRecord(k, k)
	}
	return result
}

func randomRecords(seed int64, n int, maxKey int64) []record.Record {
	rnd := util.NewRandom(seed)
	result := make([]record.Record, n)
	for i := range result {
		result[i] = record.NewRecord(rnd.NextInt(maxKey), int64(i))
	}
	return result
}

func requireHeapOrder(t *testing.T, c Collection[record.Record], length int) {
	t.Helper()
	for p := 0; p < length/2; p++ {
		parent, err := c.Get(p)
		require.NoError(t, err)
		for _, child := range []int{2*p + 1, 2*p + 2} {
			if child >= length {
				continue
			}
			r, err := c.Get(child)
			require.NoError(t, err)
			require.GreaterOrEqual(t, parent.CompareTo(r), 0, "position %d < child %d", p, child)
		}
	}
}

func requireSorted(t *testing.T, c record.Collection) {
	t.Helper()
	ok, at, err := record.IsSorted(c)
	require.NoError(t, err)
	require.True(t, ok, "out of order at %d", at)
}

func TestBuildHeapOrder(t *testing.T) {
	for n := 1; n <= 40; n++ {
		c := record.NewArrayCollection(randomRecords(int64(n), n, 10))
		h, err := NewMaxHeap[record.Record](c, n, n)
		require.NoError(t, err)
		assert.Equal(t, n, h.Length())
		assert.Equal(t, n, h.Capacity())
		requireHeapOrder(t, c, n)
	}
}

func TestSiftDownTieTakesLeftChild(t *testing.T) {
	c := record.NewArrayCollection([]record.Record{{Key: 1}, {Key: 5, Value: 1}, {Key: 5, Value: 2}})
	_, err := NewMaxHeap[record.Record](c, 3, 3)
	require.NoError(t, err)

	assert.Equal(t, []record.Record{{Key: 5, Value: 1}, {Key: 1}, {Key: 5, Value: 2}}, c.Records())
}

func TestRemoveMaxYieldsDescending(t *testing.T) {
	c := record.NewArrayCollection(keys(5, 3, 8, 1, 9, 2, 7, 4))
	h, err := NewMaxHeap[record.Record](c, 8, 8)
	require.NoError(t, err)

	var got []int64
	for h.Length() > 0 {
		r, err := h.RemoveMax()
		require.NoError(t, err)
		got = append(got, r.Key)
		requireHeapOrder(t, c, h.Length())
	}
	assert.Equal(t, []int64{9, 8, 7, 5, 4, 3, 2, 1}, got)
	assert.Equal(t, keys(1, 2, 3, 4, 5, 7, 8, 9), c.Records())

	_, err = h.RemoveMax()
	assert.Equal(t, ErrHeapEmpty, errors.Cause(err))
}

func TestInsert(t *testing.T) {
	c := record.NewArrayCollection(make([]record.Record, 6))
	h, err := NewMaxHeap[record.Record](c, 0, 5)
	require.NoError(t, err)

	for _, k := range []int64{4, 9, 1, 9, 6} {
		require.NoError(t, h.Insert(record.NewRecord(k, 0)))
		requireHeapOrder(t, c, h.Length())
	}
	top, err := c.Get(0)
	require.NoError(t, err)
	assert.Equal(t, int64(9), top.Key)

	err = h.Insert(record.NewRecord(100, 0))
	assert.Equal(t, ErrHeapFull, errors.Cause(err))
	assert.Equal(t, 5, h.Length())

	var got []int64
	for h.Length() > 0 {
		r, err := h.RemoveMax()
		require.NoError(t, err)
		got = append(got, r.Key)
	}
	assert.Equal(t, []int64{9, 9, 6, 4, 1}, got)
}

func TestHeapPositionErrors(t *testing.T) {
	c := record.NewArrayCollection(keys(3, 2, 1, 0))

	_, err := NewMaxHeap[record.Record](c, 3, 2)
	assert.Equal(t, ErrInvalidHeap, errors.Cause(err))
	_, err = NewMaxHeap[record.Record](c, 2, 5)
	assert.Equal(t, ErrInvalidHeap, errors.Cause(err))
	_, err = NewMaxHeap[record.Record](c, -1, 2)
	assert.Equal(t, ErrInvalidHeap, errors.Cause(err))
	_, err = NewMaxHeap[record.Record](nil, 0, 0)
	assert.Equal(t, ErrInvalidHeap, errors.Cause(err))

	h, err := NewMaxHeap[record.Record](c, 4, 4)
	require.NoError(t, err)
	assert.Equal(t, ErrIllegalPosition, errors.Cause(h.SiftDown(-1)))
	assert.Equal(t, ErrIllegalPosition, errors.Cause(h.SiftDown(5)))
	assert.NoError(t, h.SiftDown(4))

	_, err = h.leftChild(2)
	assert.Equal(t, ErrIllegalPosition, errors.Cause(err))
	_, err = h.rightChild(1)
	assert.Equal(t, ErrIllegalPosition, errors.Cause(err))
	_, err = h.parent(0)
	assert.Equal(t, ErrIllegalPosition, errors.Cause(err))
	p, err := h.parent(3)
	require.NoError(t, err)
	assert.Equal(t, 1, p)

	assert.False(t, h.IsLeaf(1))
	assert.True(t, h.IsLeaf(2))
	assert.True(t, h.IsLeaf(3))
	assert.False(t, h.IsLeaf(4))
}

func TestSortArrayCollection(t *testing.T) {
	for n := 0; n <= 64; n++ {
		records := randomRecords(int64(1000+n), n, 16)
		c := record.NewArrayCollection(records)
		before, err := record.Checksum(c)
		require.NoError(t, err)

		s := NewSorter[record.Record]()
		require.NoError(t, s.Sort(c))
		assert.True(t, s.Sorted())
		requireSorted(t, c)

		after, err := record.Checksum(c)
		require.NoError(t, err)
		assert.True(t, before.Equal(after), "sort must only permute, n=%d", n)
	}
}

func TestSortIsIdempotent(t *testing.T) {
	sorted := keys(-4, -1, 0, 2, 3, 10, 11, 50)
	c := record.NewArrayCollection(append([]record.Record(nil), sorted...))
	require.NoError(t, NewSorter[record.Record]().Sort(c))
	assert.Equal(t, sorted, c.Records())
	require.NoError(t, NewSorter[record.Record]().Sort(c))
	assert.Equal(t, sorted, c.Records())
}

func newPagedRecords(t *testing.T, records []record.Record, blockSize, poolCount int) (*record.PagedCollection, *buffer_pool.BufferPool, *blocks.MemoryBlock) {
	t.Helper()
	codec, err := record.NewCodec(record.DefaultRecordSize)
	require.NoError(t, err)

	var data []byte
	for _, r := range records {
		b, err := codec.Encode(r)
		require.NoError(t, err)
		data = append(data, b...)
	}
	store := blocks.NewMemoryBlock(data)
	bp, err := buffer_pool.NewBufferPool(store, &buffer_pool.BufferPoolConfig{BlockSize: blockSize, PoolCount: poolCount})
	require.NoError(t, err)
	pc, err := record.NewPagedCollection(bp, codec)
	require.NoError(t, err)
	return pc, bp, store
}

func TestSortPagedScenario(t *testing.T) {
	pc, bp, store := newPagedRecords(t, keys(5, 3, 8, 1, 9, 2, 7, 4), 32, 2)

	s := NewSorter[record.Record]()
	require.NoError(t, s.Sort(pc))
	require.NoError(t, bp.Flush())

	var got []int64
	for i := 0; i < pc.Length(); i++ {
		r, err := pc.Get(i)
		require.NoError(t, err)
		got = append(got, r.Key)
	}
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 7, 8, 9}, got)

	// one block: a single load, everything else hits
	assert.Equal(t, int64(1), bp.CacheMisses())
	assert.Equal(t, int64(1), bp.DiskReads())
	assert.Equal(t, int64(1), bp.DiskWrites())

	want := make([]byte, 0, 32)
	for _, r := range keys(1, 2, 3, 4, 5, 7, 8, 9) {
		b, err := pc.Codec().Encode(r)
		require.NoError(t, err)
		want = append(want, b...)
	}
	assert.Equal(t, want, store.Bytes())
}

func TestSortPagedUnderPressure(t *testing.T) {
	records := randomRecords(42, 300, 1000)
	// 6-byte blocks make records straddle block boundaries; one resident page
	pc, bp, _ := newPagedRecords(t, records, 6, 1)
	before, err := record.Checksum(pc)
	require.NoError(t, err)

	require.NoError(t, NewSorter[record.Record]().Sort(pc))
	requireSorted(t, pc)
	after, err := record.Checksum(pc)
	require.NoError(t, err)
	assert.True(t, before.Equal(after))

	assert.LessOrEqual(t, bp.Resident(), 1)
	assert.Greater(t, bp.DiskWrites(), int64(0))
}

func TestSortPropagatesDecodeFailure(t *testing.T) {
	pc, _, store := newPagedRecords(t, keys(5, 3, 8, 1), 4, 1)
	store.FailReads = stderrors.New("unreadable")

	s := NewSorter[record.Record]()
	err := s.Sort(pc)
	require.Error(t, err)
	assert.True(t, errors.IsNotValid(err))
	assert.False(t, s.Sorted())
	assert.Equal(t, int64(0), int64(s.Elapsed()))
}
