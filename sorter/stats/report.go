package stats

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zhukovaskychina/xheapsort/sorter/record"
	"github.com/zhukovaskychina/xheapsort/storage/buffer_pool"
)

// LeadersPerLine 每行输出的块首记录个数
const LeadersPerLine = 8

// Report is what a sort run leaves behind for the stat file.
type Report struct {
	DataFile    string
	Blocks      int64
	Buffers     int
	CacheHits   int64
	CacheMisses int64
	DiskReads   int64
	DiskWrites  int64
	Elapsed     time.Duration
	Leaders     []record.Record
}

// NewReport copies the counters of pool. Blocks counts whole blocks only.
func NewReport(dataFile string, pool *buffer_pool.BufferPool, elapsed time.Duration, leaders []record.Record) *Report {
	s := pool.Stats()
	return &Report{
		DataFile:    dataFile,
		Blocks:      pool.Size() / int64(pool.BlockSize()),
		Buffers:     pool.PoolCount(),
		CacheHits:   s.CacheHits,
		CacheMisses: s.CacheMisses,
		DiskReads:   s.DiskReads,
		DiskWrites:  s.DiskWrites,
		Elapsed:     elapsed,
		Leaders:     leaders,
	}
}

// Since removes the counts already present in base, so that accesses made
// before the sort (a verification pass for instance) do not show up.
func (r *Report) Since(base buffer_pool.BufferPoolStats) *Report {
	r.CacheHits -= base.CacheHits
	r.CacheMisses -= base.CacheMisses
	r.DiskReads -= base.DiskReads
	r.DiskWrites -= base.DiskWrites
	return r
}

// HitRatio is hits/(hits+misses) rounded to two places, "0.00" with no requests.
func (r *Report) HitRatio() string {
	requests := r.CacheHits + r.CacheMisses
	if requests == 0 {
		return decimal.Zero.StringFixed(2)
	}
	return decimal.New(r.CacheHits, 0).Div(decimal.New(requests, 0)).StringFixed(2)
}

func (r *Report) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s, with %d blocks and %d buffers\n", r.DataFile, r.Blocks, r.Buffers)
	for i, leader := range r.Leaders {
		b.WriteString(leader.String())
		if (i+1)%LeadersPerLine == 0 || i == len(r.Leaders)-1 {
			b.WriteByte('\n')
		} else {
			b.WriteByte('\t')
		}
	}
	fmt.Fprintf(&b, "Cache hits: %d  Cache misses: %d  Hit ratio: %s\n", r.CacheHits, r.CacheMisses, r.HitRatio())
	fmt.Fprintf(&b, "Disk reads: %d  Disk writes: %d\n", r.DiskReads, r.DiskWrites)
	fmt.Fprintf(&b, "Time to sort: %d ms\n", r.Elapsed.Milliseconds())
	return b.String()
}

// WriteTo renders the report onto w.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, r.String())
	return int64(n), err
}
