package record

// ArrayCollection keeps every record in memory. The slice handed to
// NewArrayCollection is used directly, so a sort is visible to the caller.
type ArrayCollection struct {
	records []Record
}

var _ Collection = (*ArrayCollection)(nil)

func NewArrayCollection(records []Record) *ArrayCollection {
	return &ArrayCollection{records: records}
}

func (a *ArrayCollection) Get(index int) (Record, error) {
	if err := checkIndex(index, len(a.records)); err != nil {
		return Record{}, err
	}
	return a.records[index], nil
}

func (a *ArrayCollection) Set(index int, rec Record) error {
	if err := checkIndex(index, len(a.records)); err != nil {
		return err
	}
	a.records[index] = rec
	return nil
}

func (a *ArrayCollection) Swap(i, j int) error {
	if err := checkIndex(i, len(a.records)); err != nil {
		return err
	}
	if err := checkIndex(j, len(a.records)); err != nil {
		return err
	}
	a.records[i], a.records[j] = a.records[j], a.records[i]
	return nil
}

func (a *ArrayCollection) Length() int {
	return len(a.records)
}

// Records returns the backing slice.
func (a *ArrayCollection) Records() []Record {
	return a.records
}
