package elev

import (
	"context"
	"sync"
	"time"

	"github.com/tiendc/go-deepcopy"

	"elevsim/src/config"
	"elevsim/src/logger"
	"elevsim/src/timer"
	"elevsim/src/types"
)

var log = logger.Get()

// Elevator is the movement controller of one cabin. It owns the stop lists
// and current floor; the movement loop in Run is the only writer of the
// floor and the only sender of events.
type Elevator struct {
	id     int
	bottom int
	top    int
	travel time.Duration
	dwell  time.Duration
	clock  timer.Clock
	cabin  *Cabin
	wakeCh chan struct{}

	mu     sync.Mutex
	floor  int
	status types.ElevStatus
	reopen bool
	up     stopList
	down   stopList
	subs   []chan<- types.Event
}

// New creates an idle elevator parked at the bottom floor of cfg.
func New(id int, cfg config.Config, clk timer.Clock) *Elevator {
	e := &Elevator{
		id:     id,
		bottom: cfg.BottomFloor,
		top:    cfg.TopFloor(),
		travel: cfg.TravelDuration,
		dwell:  cfg.DwellDuration,
		clock:  clk,
		wakeCh: make(chan struct{}, 1),
		floor:  cfg.BottomFloor,
		status: types.Idle,
	}
	e.cabin = NewCabin(e)
	log.Debug().Int("elevator", id).Int("bottom", e.bottom).Int("top", e.top).Msg("Elevator initialized")
	return e
}

func (e *Elevator) ID() int {
	return e.id
}

func (e *Elevator) Cabin() *Cabin {
	return e.cabin
}

func (e *Elevator) CurrentFloor() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.floor
}

func (e *Elevator) Direction() types.Direction {
	return e.cabin.Direction()
}

func (e *Elevator) Status() types.ElevStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Snapshot returns a deep copy of the elevator state.
func (e *Elevator) Snapshot() types.ElevState {
	e.mu.Lock()
	defer e.mu.Unlock()

	state := types.ElevState{
		ID:        e.id,
		Floor:     e.floor,
		Dir:       e.cabin.Direction(),
		Status:    e.status,
		UpStops:   e.up,
		DownStops: e.down,
	}
	snapshot := new(types.ElevState)
	if err := deepcopy.Copy(snapshot, &state); err != nil {
		panic(err)
	}
	return *snapshot
}

// Subscribe registers ch to receive every event emitted by this elevator.
// Subscribers must keep draining their channel.
func (e *Elevator) Subscribe(ch chan<- types.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subs = append(e.subs, ch)
}

func (e *Elevator) AddPanelStop(floor int) {
	e.RequestStop(floor, types.Panel)
}

func (e *Elevator) PickupAt(floor int) bool {
	return e.RequestStop(floor, types.Pickup)
}

// RequestStop files floor into the up or down stop list and reports whether
// the elevator now holds a stop for it. Floors outside the serviceable range
// and the current floor are ignored.
func (e *Elevator) RequestStop(floor int, origin types.StopOrigin) bool {
	e.mu.Lock()
	if floor < e.bottom || floor > e.top || floor == e.floor {
		e.mu.Unlock()
		log.Debug().Int("elevator", e.id).Int("floor", floor).Stringer("origin", origin).Msg("Ignoring stop request")
		return false
	}

	if e.status == types.Idle {
		if floor < e.floor {
			e.cabin.SetDirection(types.Down)
		} else {
			e.cabin.SetDirection(types.Up)
		}
	}

	list := &e.up
	if floor < e.floor {
		list = &e.down
	}
	added := list.add(floor)
	wake := added && e.status == types.Idle
	if wake {
		e.status = types.Moving
	}
	e.mu.Unlock()

	if added {
		log.Debug().Int("elevator", e.id).Int("floor", floor).Stringer("origin", origin).Msg("Stop added")
	}
	if wake {
		e.wake()
	}
	return true
}

// ReopenAt cycles the doors of an idle elevator standing at floor, as if it
// had just stopped there. It reports false if the elevator is elsewhere or
// moving.
func (e *Elevator) ReopenAt(floor int) bool {
	e.mu.Lock()
	ok := e.status == types.Idle && e.floor == floor
	if ok {
		e.reopen = true
	}
	e.mu.Unlock()

	if ok {
		log.Debug().Int("elevator", e.id).Int("floor", floor).Msg("Reopening doors")
		e.wake()
	}
	return ok
}

func (e *Elevator) wake() {
	select {
	case e.wakeCh <- struct{}{}:
	default:
	}
}

// CancelStop removes floor from the stop list of dir. Floors already
// passed or serviced are not in the list, so the call has no effect.
func (e *Elevator) CancelStop(floor int, dir types.Direction) {
	e.mu.Lock()
	removed := e.stops(dir).remove(floor)
	e.mu.Unlock()

	if removed {
		log.Debug().Int("elevator", e.id).Int("floor", floor).Stringer("dir", dir).Msg("Stop cancelled")
	}
}

// Run drives the movement loop until ctx is cancelled. Each wake-up starts
// one sweep that lasts until both stop lists are empty.
func (e *Elevator) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.wakeCh:
		}

		e.mu.Lock()
		reopen, floor, dir := e.reopen, e.floor, e.cabin.Direction()
		e.reopen = false
		e.mu.Unlock()
		if reopen {
			if err := e.stopAt(ctx, floor, dir); err != nil {
				return err
			}
		}

		if err := e.sweep(ctx); err != nil {
			return err
		}
	}
}

func (e *Elevator) sweep(ctx context.Context) error {
	for {
		e.mu.Lock()
		dir := e.cabin.Direction()
		if len(*e.stops(dir)) == 0 {
			if len(*e.stops(dir.Opposite())) == 0 {
				e.status = types.Idle
				floor := e.floor
				e.mu.Unlock()
				log.Debug().Int("elevator", e.id).Int("floor", floor).Msg("Elevator idle")
				return e.emit(ctx, types.Event{ElevatorID: e.id, Kind: types.BecameIdle, Floor: floor, Dir: dir})
			}
			e.cabin.SetDirection(dir.Opposite())
			e.mu.Unlock()
			continue
		}
		e.mu.Unlock()

		if err := timer.Wait(ctx, e.clock, e.travel); err != nil {
			return err
		}

		e.mu.Lock()
		e.floor += dir.Step()
		floor := e.floor
		next, ok := e.stops(dir).next(dir)
		e.mu.Unlock()

		if ok && next == floor {
			if err := e.stopAt(ctx, floor, dir); err != nil {
				return err
			}
		}

		if err := e.emit(ctx, types.Event{ElevatorID: e.id, Kind: types.DepartedFloor, Floor: floor, Dir: dir}); err != nil {
			return err
		}

		e.mu.Lock()
		e.stops(dir).remove(floor)
		e.mu.Unlock()
	}
}

// stopAt holds the cabin at floor with its doors open for the dwell time.
func (e *Elevator) stopAt(ctx context.Context, floor int, dir types.Direction) error {
	log.Info().Int("elevator", e.id).Int("floor", floor).Stringer("dir", dir).Msg("Stopping at floor")
	e.cabin.StopDoors()
	if err := timer.Wait(ctx, e.clock, e.dwell); err != nil {
		return err
	}
	e.cabin.ResumeDoors()
	return e.emit(ctx, types.Event{ElevatorID: e.id, Kind: types.FloorServiced, Floor: floor, Dir: dir})
}

func (e *Elevator) emit(ctx context.Context, ev types.Event) error {
	e.mu.Lock()
	subs := e.subs
	e.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (e *Elevator) stops(dir types.Direction) *stopList {
	if dir == types.Down {
		return &e.down
	}
	return &e.up
}
