package elev

import (
	"slices"

	"elevsim/src/types"
)

// stopList is an ascending set of floors an elevator still has to visit in
// one direction.
type stopList []int

// add inserts floor keeping the list sorted. Returns false if already present.
func (s *stopList) add(floor int) bool {
	i, found := slices.BinarySearch(*s, floor)
	if found {
		return false
	}
	*s = slices.Insert(*s, i, floor)
	return true
}

// remove deletes floor. Returns false if it was not present.
func (s *stopList) remove(floor int) bool {
	i, found := slices.BinarySearch(*s, floor)
	if !found {
		return false
	}
	*s = slices.Delete(*s, i, i+1)
	return true
}

// next is the first stop reached travelling in dir: the lowest entry going
// up, the highest going down.
func (s stopList) next(dir types.Direction) (int, bool) {
	if len(s) == 0 {
		return 0, false
	}
	if dir == types.Down {
		return s[len(s)-1], true
	}
	return s[0], true
}
