package dispatcher

import (
	"elevsim/src/types"
)

// nearestElevator picks the elevator that should serve a hall call at floor
// going dir:
//   - first choice is an elevator already moving in dir that has not yet
//     reached floor; the one closest to floor wins
//   - otherwise the idle elevator closest to floor
//   - nil if every elevator is busy elsewhere
//
// Ties go to the first elevator found.
func nearestElevator(elevators []Elevator, floor int, dir types.Direction) Elevator {
	var enRoute, idle Elevator
	enRouteDist, idleDist := 0, 0

	for _, el := range elevators {
		s := el.Snapshot()
		dist := abs(floor - s.Floor)

		switch s.Status {
		case types.Moving:
			if s.Dir != dir || !behind(s.Floor, floor, dir) {
				continue
			}
			if enRoute == nil || dist < enRouteDist {
				enRoute, enRouteDist = el, dist
			}
		case types.Idle:
			if idle == nil || dist < idleDist {
				idle, idleDist = el, dist
			}
		}
	}

	if enRoute != nil {
		return enRoute
	}
	return idle
}

// behind reports whether an elevator at current, travelling in dir, has yet
// to reach floor.
func behind(current, floor int, dir types.Direction) bool {
	if dir == types.Up {
		return current < floor
	}
	return current > floor
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
