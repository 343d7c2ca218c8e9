package buffer_pool

import "errors"

var (
	// 配置错误
	ErrInvalidConfig = errors.New("invalid buffer pool configuration")

	// 访问错误
	ErrOutOfRange = errors.New("byte range outside backing store")
	ErrPoolClosed = errors.New("buffer pool is closed")

	// 刷新错误
	ErrFlushFailed = errors.New("failed to flush dirty page")
)

// BufferPoolError 缓冲池错误结构
type BufferPoolError struct {
	Op  string // 操作名称
	Err error  // 原始错误
}

func (e *BufferPoolError) Error() string {
	if e.Err == nil {
		return "<nil>"
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *BufferPoolError) Unwrap() error {
	return e.Err
}

// NewError 创建新的缓冲池错误
func NewError(op string, err error) error {
	return &BufferPoolError{
		Op:  op,
		Err: err,
	}
}

// IsOutOfRange 检查是否为越界访问错误
func IsOutOfRange(err error) bool {
	return errors.Is(err, ErrOutOfRange)
}

// IsClosed 检查缓冲池是否已关闭
func IsClosed(err error) bool {
	return errors.Is(err, ErrPoolClosed)
}

// IsInvalidConfig 检查是否为配置错误
func IsInvalidConfig(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

// IsFlushFailed 检查是否为脏页刷新失败
func IsFlushFailed(err error) bool {
	return errors.Is(err, ErrFlushFailed)
}
