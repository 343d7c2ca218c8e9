package record

import (
	"encoding/binary"

	"github.com/juju/errors"
)

const (
	// DefaultRecordSize gives 16-bit keys and values.
	DefaultRecordSize = 4
)

var (
	ErrInvalidRecordSize = errors.New("record size must be 2, 4, 8 or 16 bytes")
	ErrFieldOverflow     = errors.New("field value does not fit the record width")
)

/*
Codec 负责 Record 与定长字节之间的转换。

	+-----------------+-----------------+
	| key (size/2)    | value (size/2)  |
	+-----------------+-----------------+

每个字段都是大端序的补码，解码时做符号扩展。
*/
type Codec struct {
	recordSize int
	fieldSize  int
	min        int64
	max        int64
}

func NewCodec(recordSize int) (*Codec, error) {
	if recordSize <= 0 || recordSize%2 != 0 {
		return nil, errors.Annotatef(ErrInvalidRecordSize, "got %d", recordSize)
	}
	fieldSize := recordSize / 2
	switch fieldSize {
	case 1, 2, 4, 8:
	default:
		return nil, errors.Annotatef(ErrInvalidRecordSize, "got %d", recordSize)
	}

	min := int64(-1) << uint(fieldSize*8-1)
	return &Codec{
		recordSize: recordSize,
		fieldSize:  fieldSize,
		min:        min,
		max:        ^min,
	}, nil
}

func (c *Codec) RecordSize() int {
	return c.recordSize
}

// MinValue is the smallest key or value the codec can store.
func (c *Codec) MinValue() int64 {
	return c.min
}

// MaxValue is the largest key or value the codec can store.
func (c *Codec) MaxValue() int64 {
	return c.max
}

// Encode returns the RecordSize bytes of r.
func (c *Codec) Encode(r Record) ([]byte, error) {
	buf := make([]byte, c.recordSize)
	if err := c.EncodeTo(buf, r); err != nil {
		return nil, err
	}
	return buf, nil
}

// EncodeTo writes r into the first RecordSize bytes of dst.
func (c *Codec) EncodeTo(dst []byte, r Record) error {
	if len(dst) < c.recordSize {
		return errors.Errorf("encode buffer of %d bytes, need %d", len(dst), c.recordSize)
	}
	if r.Key < c.min || r.Key > c.max {
		return errors.Annotatef(ErrFieldOverflow, "key %d outside [%d, %d]", r.Key, c.min, c.max)
	}
	if r.Value < c.min || r.Value > c.max {
		return errors.Annotatef(ErrFieldOverflow, "value %d outside [%d, %d]", r.Value, c.min, c.max)
	}
	c.putField(dst[:c.fieldSize], r.Key)
	c.putField(dst[c.fieldSize:c.recordSize], r.Value)
	return nil
}

// Decode parses exactly RecordSize bytes. Any other length is a not valid error.
func (c *Codec) Decode(b []byte) (Record, error) {
	if len(b) != c.recordSize {
		return Record{}, errors.NotValidf("record of %d bytes (want %d)", len(b), c.recordSize)
	}
	return Record{
		Key:   c.field(b[:c.fieldSize]),
		Value: c.field(b[c.fieldSize:]),
	}, nil
}

func (c *Codec) putField(dst []byte, v int64) {
	switch c.fieldSize {
	case 1:
		dst[0] = byte(v)
	case 2:
		binary.BigEndian.PutUint16(dst, uint16(v))
	case 4:
		binary.BigEndian.PutUint32(dst, uint32(v))
	case 8:
		binary.BigEndian.PutUint64(dst, uint64(v))
	}
}

func (c *Codec) field(b []byte) int64 {
	switch c.fieldSize {
	case 1:
		return int64(int8(b[0]))
	case 2:
		return int64(int16(binary.BigEndian.Uint16(b)))
	case 4:
		return int64(int32(binary.BigEndian.Uint32(b)))
	default:
		return int64(binary.BigEndian.Uint64(b))
	}
}
