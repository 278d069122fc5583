package party

import (
	"encoding/binary"
	"io"
	"sort"
)

// IDSlice is a sorted slice of IDs.
type IDSlice []ID

// NewIDSlice returns a sorted copy of ids.
func NewIDSlice(ids []ID) IDSlice {
	res := make(IDSlice, len(ids))
	copy(res, ids)
	sort.Sort(res)
	return res
}

func (partyIDs IDSlice) Len() int           { return len(partyIDs) }
func (partyIDs IDSlice) Less(i, j int) bool { return partyIDs[i] < partyIDs[j] }
func (partyIDs IDSlice) Swap(i, j int)      { partyIDs[i], partyIDs[j] = partyIDs[j], partyIDs[i] }

// Valid returns true if the slice is sorted, contains no duplicates,
// and contains no zero ID.
func (partyIDs IDSlice) Valid() bool {
	for i := range partyIDs {
		if !partyIDs[i].Valid() {
			return false
		}
		if i > 0 && partyIDs[i-1] >= partyIDs[i] {
			return false
		}
	}
	return true
}

// Contains returns true if partyIDs contains all the given ids.
func (partyIDs IDSlice) Contains(ids ...ID) bool {
	for _, id := range ids {
		if _, ok := partyIDs.Search(id); !ok {
			return false
		}
	}
	return true
}

// GetIndex returns the index of id in partyIDs, or -1 if it is absent.
func (partyIDs IDSlice) GetIndex(id ID) int {
	if idx, ok := partyIDs.Search(id); ok {
		return idx
	}
	return -1
}

// Search looks for id, returning its index and whether it was present.
func (partyIDs IDSlice) Search(id ID) (int, bool) {
	index := sort.Search(len(partyIDs), func(i int) bool { return partyIDs[i] >= id })
	if index < len(partyIDs) && partyIDs[index] == id {
		return index, true
	}
	return 0, false
}

// Copy returns a deep copy of the slice.
func (partyIDs IDSlice) Copy() IDSlice {
	out := make(IDSlice, len(partyIDs))
	copy(out, partyIDs)
	return out
}

// Remove finds id in the slice and returns a copy without that ID.
func (partyIDs IDSlice) Remove(id ID) IDSlice {
	out := make(IDSlice, 0, len(partyIDs))
	for _, other := range partyIDs {
		if other != id {
			out = append(out, other)
		}
	}
	return out
}

// WriteTo implements io.WriterTo interface.
func (partyIDs IDSlice) WriteTo(w io.Writer) (int64, error) {
	if partyIDs == nil {
		return 0, io.ErrUnexpectedEOF
	}
	var sizeBuf [8]byte
	binary.BigEndian.PutUint64(sizeBuf[:], uint64(len(partyIDs)))
	n, err := w.Write(sizeBuf[:])
	nAll := int64(n)
	if err != nil {
		return nAll, err
	}
	for _, id := range partyIDs {
		n, err = w.Write(id.Bytes())
		nAll += int64(n)
		if err != nil {
			return nAll, err
		}
	}
	return nAll, nil
}

// Domain implements hash.WriterToWithDomain.
func (IDSlice) Domain() string { return "IDSlice" }
