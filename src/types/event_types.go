package types

type EventKind int

const (
	DepartedFloor EventKind = iota
	FloorServiced
	BecameIdle
)

func (k EventKind) String() string {
	switch k {
	case DepartedFloor:
		return "departed"
	case FloorServiced:
		return "serviced"
	case BecameIdle:
		return "idle"
	}
	return "unknown"
}

// Event is a notification emitted by an elevator's movement loop.
// Dir is the direction of travel at the moment the event was emitted.
type Event struct {
	ElevatorID int
	Kind       EventKind
	Floor      int
	Dir        Direction
}

type RequestStatus int

const (
	Open RequestStatus = iota
	Allotted
	Serviced
)

func (s RequestStatus) String() string {
	switch s {
	case Open:
		return "open"
	case Allotted:
		return "allotted"
	case Serviced:
		return "serviced"
	}
	return "unknown"
}

// NoElevator marks a request that has not been bound to any elevator.
const NoElevator = -1

// ServiceRequest is a hall call tracked by the dispatcher.
type ServiceRequest struct {
	Seq        uint64
	Floor      int
	Dir        Direction
	Status     RequestStatus
	ElevatorID int
}

// HallCall is an external pickup request at a floor.
type HallCall struct {
	Floor int
	Dir   Direction
}
