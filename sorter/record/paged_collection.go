package record

import (
	"sync"

	"github.com/juju/errors"
)

// Pager is the byte-range view of a page cache. *buffer_pool.BufferPool
// implements it.
type Pager interface {
	ReadInto(dst []byte, offset int64) error
	Write(data []byte, offset int64) error
	Size() int64
}

// PagedCollection 把记录下标翻译成页缓存上的字节区间。它不持有任何记录，
// 所有数据都在页缓存里。记录可以跨越块边界。
type PagedCollection struct {
	mu      sync.Mutex
	pager   Pager
	codec   *Codec
	length  int
	scratch []byte
}

var _ Collection = (*PagedCollection)(nil)

// NewPagedCollection addresses Size()/RecordSize records; trailing bytes that
// do not make up a whole record are ignored.
func NewPagedCollection(pager Pager, codec *Codec) (*PagedCollection, error) {
	if pager == nil {
		return nil, errors.New("paged collection needs a pager")
	}
	if codec == nil {
		return nil, errors.New("paged collection needs a codec")
	}
	return &PagedCollection{
		pager:   pager,
		codec:   codec,
		length:  int(pager.Size() / int64(codec.RecordSize())),
		scratch: make([]byte, codec.RecordSize()),
	}, nil
}

func (p *PagedCollection) Codec() *Codec {
	return p.codec
}

func (p *PagedCollection) Length() int {
	return p.length
}

// Get reads and decodes the record at index. A failure of the page cache is
// reported as a not valid error; no placeholder record is ever returned.
func (p *PagedCollection) Get(index int) (Record, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.get(index)
}

func (p *PagedCollection) Set(index int, rec Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.set(index, rec)
}

// Swap exchanges two records inside one critical section.
func (p *PagedCollection) Swap(i, j int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	a, err := p.get(i)
	if err != nil {
		return err
	}
	if i == j {
		return nil
	}
	b, err := p.get(j)
	if err != nil {
		return err
	}
	if err := p.set(i, b); err != nil {
		return err
	}
	return p.set(j, a)
}

func (p *PagedCollection) offset(index int) int64 {
	return int64(index) * int64(p.codec.RecordSize())
}

func (p *PagedCollection) get(index int) (Record, error) {
	if err := checkIndex(index, p.length); err != nil {
		return Record{}, err
	}
	if err := p.pager.ReadInto(p.scratch, p.offset(index)); err != nil {
		return Record{}, errors.NewNotValid(err, "decode record")
	}
	rec, err := p.codec.Decode(p.scratch)
	if err != nil {
		return Record{}, errors.Trace(err)
	}
	return rec, nil
}

func (p *PagedCollection) set(index int, rec Record) error {
	if err := checkIndex(index, p.length); err != nil {
		return err
	}
	if err := p.codec.EncodeTo(p.scratch, rec); err != nil {
		return errors.Trace(err)
	}
	if err := p.pager.Write(p.scratch, p.offset(index)); err != nil {
		return errors.Annotatef(err, "write record %d", index)
	}
	return nil
}
