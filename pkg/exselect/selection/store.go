// Package selection tracks which Original Indices a user has checked.
package selection

import (
	"math"

	"github.com/RoaringBitmap/roaring"
)

// Store is a set of Original Indices. The zero value is not usable; use New.
// Store is not safe for concurrent use.
type Store struct {
	bits *roaring.Bitmap
}

// New returns an empty store.
func New() *Store {
	return &Store{bits: roaring.New()}
}

// Add marks index as selected. Adding a member again is a no-op.
func (s *Store) Add(index int) {
	if !inRange(index) {
		return
	}
	s.bits.Add(uint32(index))
}

// Remove unmarks index. Removing a non-member is a no-op.
func (s *Store) Remove(index int) {
	if !inRange(index) {
		return
	}
	s.bits.Remove(uint32(index))
}

// Has reports whether index is selected.
func (s *Store) Has(index int) bool {
	return inRange(index) && s.bits.Contains(uint32(index))
}

// Clear removes every member.
func (s *Store) Clear() {
	s.bits.Clear()
}

// Len returns the number of selected indices.
func (s *Store) Len() int {
	return int(s.bits.GetCardinality())
}

// AscendingMembers returns the selected indices in strictly increasing order.
func (s *Store) AscendingMembers() []int {
	members := make([]int, 0, s.Len())
	it := s.bits.Iterator()
	for it.HasNext() {
		members = append(members, int(it.Next()))
	}
	return members
}

func inRange(index int) bool {
	return index >= 0 && uint64(index) <= math.MaxUint32
}
