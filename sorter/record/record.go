package record

import "fmt"

// Record 是排序的基本单位：定长的 key/value 对，只按 key 比较。
type Record struct {
	Key   int64
	Value int64
}

func NewRecord(key, value int64) Record {
	return Record{Key: key, Value: value}
}

// CompareTo returns -1, 0 or 1 as r's key is less than, equal to or greater
// than other's. Values never take part in ordering.
func (r Record) CompareTo(other Record) int {
	switch {
	case r.Key < other.Key:
		return -1
	case r.Key > other.Key:
		return 1
	default:
		return 0
	}
}

func (r Record) String() string {
	return fmt.Sprintf("%d %d", r.Key, r.Value)
}
