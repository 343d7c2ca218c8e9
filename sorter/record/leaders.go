package record

import (
	"github.com/juju/errors"

	"github.com/zhukovaskychina/xheapsort/util"
)

// Leaders returns the record at the start of every block, i.e. at each index
// that is a multiple of recordsPerBlock.
func Leaders(c Collection, recordsPerBlock int) ([]Record, error) {
	if recordsPerBlock <= 0 {
		return nil, errors.NotValidf("records per block %d", recordsPerBlock)
	}
	n := c.Length()
	leaders := make([]Record, 0, (n+recordsPerBlock-1)/recordsPerBlock)
	for i := 0; i < n; i += recordsPerBlock {
		rec, err := c.Get(i)
		if err != nil {
			return nil, errors.Annotatef(err, "leader of block %d", i/recordsPerBlock)
		}
		leaders = append(leaders, rec)
	}
	return leaders, nil
}

// Checksum digests every record of c regardless of order. Comparing the
// digest before and after a sort shows the sort only permuted records.
func Checksum(c Collection) (*util.MultisetHash, error) {
	digest := &util.MultisetHash{}
	for i := 0; i < c.Length(); i++ {
		rec, err := c.Get(i)
		if err != nil {
			return nil, errors.Trace(err)
		}
		digest.Add(append(util.ConvertULong8Bytes(uint64(rec.Key)), util.ConvertULong8Bytes(uint64(rec.Value))...))
	}
	return digest, nil
}

// IsSorted reports whether keys are non-decreasing. On failure it also
// returns the first index whose key is smaller than its predecessor's.
func IsSorted(c Collection) (bool, int, error) {
	if c.Length() < 2 {
		return true, -1, nil
	}
	prev, err := c.Get(0)
	if err != nil {
		return false, -1, errors.Trace(err)
	}
	for i := 1; i < c.Length(); i++ {
		cur, err := c.Get(i)
		if err != nil {
			return false, -1, errors.Trace(err)
		}
		if cur.CompareTo(prev) < 0 {
			return false, i, nil
		}
		prev = cur
	}
	return true, -1, nil
}
