package types

type Direction int

const (
	Up Direction = iota
	Down
)

// Opposite returns the other direction of travel.
func (d Direction) Opposite() Direction {
	if d == Up {
		return Down
	}
	return Up
}

// Step is the floor delta of one move in d.
func (d Direction) Step() int {
	if d == Down {
		return -1
	}
	return 1
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	}
	return "unknown"
}

type ElevStatus int

const (
	Idle ElevStatus = iota
	Moving
)

func (s ElevStatus) String() string {
	switch s {
	case Idle:
		return "idle"
	case Moving:
		return "moving"
	}
	return "unknown"
}

// StopOrigin tells where a stop request came from.
type StopOrigin int

const (
	Panel StopOrigin = iota
	Pickup
)

func (o StopOrigin) String() string {
	if o == Panel {
		return "panel"
	}
	return "pickup"
}

// ElevState is a read-only snapshot of one elevator controller.
type ElevState struct {
	ID        int
	Floor     int
	Dir       Direction
	Status    ElevStatus
	UpStops   []int
	DownStops []int
}
