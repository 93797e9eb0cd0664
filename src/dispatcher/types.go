package dispatcher

import (
	"context"

	"elevsim/src/types"
)

// Elevator is what the dispatcher needs from a movement controller.
type Elevator interface {
	ID() int
	CurrentFloor() int
	Direction() types.Direction
	Status() types.ElevStatus
	Snapshot() types.ElevState
	RequestStop(floor int, origin types.StopOrigin) bool
	ReopenAt(floor int) bool
	CancelStop(floor int, dir types.Direction)
	Subscribe(ch chan<- types.Event)
}

// runner is implemented by elevators that own a movement loop.
type runner interface {
	Run(ctx context.Context) error
}

// query is executed inside the dispatcher loop.
type query func()
