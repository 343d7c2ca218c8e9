package buffer_pool

import (
	"sync/atomic"
	"time"
)

// BufferPoolStats 缓冲池统计信息
type BufferPoolStats struct {
	// 命中率统计
	CacheHits   int64
	CacheMisses int64

	// IO统计
	DiskReads  int64
	DiskWrites int64
	Evictions  int64

	// 刷新统计
	FlushRequests int64

	// 性能统计
	ReadLatencyTotal  int64 // 纳秒
	WriteLatencyTotal int64 // 纳秒
	StartTime         time.Time
}

// NewBufferPoolStats 创建新的统计对象
func NewBufferPoolStats() *BufferPoolStats {
	return &BufferPoolStats{
		StartTime: time.Now(),
	}
}

// RecordPageRequest 记录页面请求
func (s *BufferPoolStats) RecordPageRequest(hit bool) {
	if hit {
		atomic.AddInt64(&s.CacheHits, 1)
	} else {
		atomic.AddInt64(&s.CacheMisses, 1)
	}
}

// RecordPageIO 记录页面IO
func (s *BufferPoolStats) RecordPageIO(isRead bool, latency time.Duration) {
	if isRead {
		atomic.AddInt64(&s.DiskReads, 1)
		atomic.AddInt64(&s.ReadLatencyTotal, int64(latency))
	} else {
		atomic.AddInt64(&s.DiskWrites, 1)
		atomic.AddInt64(&s.WriteLatencyTotal, int64(latency))
	}
}

// RecordEviction 记录页面淘汰
func (s *BufferPoolStats) RecordEviction() {
	atomic.AddInt64(&s.Evictions, 1)
}

// RecordFlush 记录刷新请求
func (s *BufferPoolStats) RecordFlush() {
	atomic.AddInt64(&s.FlushRequests, 1)
}

// GetHitRatio 获取命中率
func (s *BufferPoolStats) GetHitRatio() float64 {
	hits := atomic.LoadInt64(&s.CacheHits)
	requests := hits + atomic.LoadInt64(&s.CacheMisses)
	if requests == 0 {
		return 0
	}
	return float64(hits) / float64(requests)
}

// GetAvgReadLatency 获取平均读取延迟
func (s *BufferPoolStats) GetAvgReadLatency() time.Duration {
	reads := atomic.LoadInt64(&s.DiskReads)
	if reads == 0 {
		return 0
	}
	return time.Duration(atomic.LoadInt64(&s.ReadLatencyTotal) / reads)
}

// GetAvgWriteLatency 获取平均写入延迟
func (s *BufferPoolStats) GetAvgWriteLatency() time.Duration {
	writes := atomic.LoadInt64(&s.DiskWrites)
	if writes == 0 {
		return 0
	}
	return time.Duration(atomic.LoadInt64(&s.WriteLatencyTotal) / writes)
}

// Snapshot returns a consistent copy for reporting.
func (s *BufferPoolStats) Snapshot() BufferPoolStats {
	return BufferPoolStats{
		CacheHits:         atomic.LoadInt64(&s.CacheHits),
		CacheMisses:       atomic.LoadInt64(&s.CacheMisses),
		DiskReads:         atomic.LoadInt64(&s.DiskReads),
		DiskWrites:        atomic.LoadInt64(&s.DiskWrites),
		Evictions:         atomic.LoadInt64(&s.Evictions),
		FlushRequests:     atomic.LoadInt64(&s.FlushRequests),
		ReadLatencyTotal:  atomic.LoadInt64(&s.ReadLatencyTotal),
		WriteLatencyTotal: atomic.LoadInt64(&s.WriteLatencyTotal),
		StartTime:         s.StartTime,
	}
}
