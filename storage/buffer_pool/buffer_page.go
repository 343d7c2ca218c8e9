package buffer_pool

import (
	"fmt"

	gxbytes "github.com/dubbogo/gost/bytes"
)

/*
BufferPage 是数据块在内存中的副本。frame 来自字节池，页面被淘汰或缓冲池关闭时归还。
length 是有效字节数：当存储长度不是块大小的整数倍时，最后一个块比块大小短。
*/
type BufferPage struct {
	blockNo uint64
	frame   *[]byte
	length  int
	dirty   bool
}

// newBufferPage takes a frame of blockSize bytes from the byte pool.
func newBufferPage(blockNo uint64, blockSize int) *BufferPage {
	frame := gxbytes.GetBytes(blockSize)
	*frame = (*frame)[:blockSize]
	return &BufferPage{
		blockNo: blockNo,
		frame:   frame,
	}
}

// GetBlockNo 获取块号
func (bp *BufferPage) GetBlockNo() uint64 {
	return bp.blockNo
}

// Length 有效字节数
func (bp *BufferPage) Length() int {
	return bp.length
}

// IsDirty 检查是否为脏页
func (bp *BufferPage) IsDirty() bool {
	return bp.dirty
}

// MarkDirty 标记为脏页
func (bp *BufferPage) MarkDirty() {
	bp.dirty = true
}

// ClearDirty 清除脏页标记
func (bp *BufferPage) ClearDirty() {
	bp.dirty = false
}

// content returns the valid bytes of the frame.
func (bp *BufferPage) content() []byte {
	return (*bp.frame)[:bp.length]
}

// readInto copies bytes starting at in-block offset off into dst and returns
// how many were copied.
func (bp *BufferPage) readInto(dst []byte, off int) int {
	return copy(dst, (*bp.frame)[off:bp.length])
}

// writeFrom copies src into the page at in-block offset off, marks the page
// dirty and returns how many bytes were taken.
func (bp *BufferPage) writeFrom(src []byte, off int) int {
	n := copy((*bp.frame)[off:bp.length], src)
	if n > 0 {
		bp.dirty = true
	}
	return n
}

// release hands the frame back to the byte pool. The page must not be used afterwards.
func (bp *BufferPage) release() {
	if bp.frame != nil {
		gxbytes.PutBytes(bp.frame)
		bp.frame = nil
	}
}

func (bp *BufferPage) String() string {
	return fmt.Sprintf("BufferPage{block=%d, length=%d, dirty=%v}", bp.blockNo, bp.length, bp.dirty)
}
