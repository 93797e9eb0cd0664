package dispatcher

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"elevsim/src/config"
	"elevsim/src/elev"
	"elevsim/src/logger"
	"elevsim/src/timer"
	"elevsim/src/types"
)

var log = logger.Get()

// ErrStopped is returned by queries made after Run has returned.
var ErrStopped = errors.New("dispatcher stopped")

// Dispatcher assigns hall calls to elevators. All request bookkeeping happens
// in the goroutine running Run; other goroutines talk to it over channels.
type Dispatcher struct {
	bottom    int
	top       int
	elevators []Elevator
	byID      map[int]Elevator
	requests  requests

	events  chan types.Event
	calls   chan types.HallCall
	queries chan query
	done    chan struct{}
}

// New builds cfg.NumElevators elevators serving the floors of cfg and a
// dispatcher subscribed to all of them.
func New(cfg config.Config, clk timer.Clock) *Dispatcher {
	elevators := make([]Elevator, cfg.NumElevators)
	for i := range elevators {
		elevators[i] = elev.New(i, cfg, clk)
	}
	return newDispatcher(cfg, elevators)
}

func newDispatcher(cfg config.Config, elevators []Elevator) *Dispatcher {
	d := &Dispatcher{
		bottom:    cfg.BottomFloor,
		top:       cfg.TopFloor(),
		elevators: elevators,
		byID:      make(map[int]Elevator, len(elevators)),
		events:    make(chan types.Event, cfg.EventQueueSize),
		calls:     make(chan types.HallCall, cfg.CallQueueSize),
		queries:   make(chan query),
		done:      make(chan struct{}),
	}
	for _, el := range elevators {
		d.byID[el.ID()] = el
		el.Subscribe(d.events)
	}
	return d
}

// Run starts the movement loop of every elevator and processes calls and
// elevator events until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, el := range d.elevators {
		if r, ok := el.(runner); ok {
			g.Go(func() error { return r.Run(ctx) })
		}
	}
	g.Go(func() error { return d.loop(ctx) })
	return g.Wait()
}

func (d *Dispatcher) loop(ctx context.Context) error {
	defer close(d.done)
	log.Info().Int("elevators", len(d.elevators)).Int("bottom", d.bottom).Int("top", d.top).Msg("Dispatcher started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-d.events:
			d.handleEvent(ev)
		case call := <-d.calls:
			d.drainEvents()
			d.handleCall(call)
		case q := <-d.queries:
			d.drainEvents()
			d.drainCalls()
			q()
		}
	}
}

// drainEvents handles every event already queued so that calls and queries
// observe the latest elevator progress.
func (d *Dispatcher) drainEvents() {
	for {
		select {
		case ev := <-d.events:
			d.handleEvent(ev)
		default:
			return
		}
	}
}

// drainCalls handles every call queued before a query arrived.
func (d *Dispatcher) drainCalls() {
	for {
		select {
		case call := <-d.calls:
			d.handleCall(call)
		default:
			return
		}
	}
}

// RequestElevator queues a hall call. It does not wait for the call to be
// assigned or serviced. Calls made after Run has returned are dropped.
func (d *Dispatcher) RequestElevator(floor int, dir types.Direction) {
	select {
	case d.calls <- types.HallCall{Floor: floor, Dir: dir}:
	case <-d.done:
		log.Warn().Int("floor", floor).Stringer("dir", dir).Msg("Dispatcher stopped, dropping call")
	}
}

// Requests returns a copy of every open or allotted request.
func (d *Dispatcher) Requests(ctx context.Context) ([]types.ServiceRequest, error) {
	reply := make(chan []types.ServiceRequest, 1)
	q := func() { reply <- d.requests.snapshot() }

	select {
	case d.queries <- q:
	case <-d.done:
		return nil, ErrStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case reqs := <-reply:
		return reqs, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Elevators returns a snapshot of every elevator.
func (d *Dispatcher) Elevators() []types.ElevState {
	states := make([]types.ElevState, 0, len(d.elevators))
	for _, el := range d.elevators {
		states = append(states, el.Snapshot())
	}
	return states
}

// Cabin returns the cabin of elevator id, for panel button presses.
// ok is false if id is unknown or the elevator has no cabin.
func (d *Dispatcher) Cabin(id int) (cabin *elev.Cabin, ok bool) {
	el, ok := d.byID[id].(interface{ Cabin() *elev.Cabin })
	if !ok {
		return nil, false
	}
	return el.Cabin(), true
}

func (d *Dispatcher) handleCall(call types.HallCall) {
	if call.Floor < d.bottom || call.Floor > d.top {
		log.Warn().Int("floor", call.Floor).Stringer("dir", call.Dir).Msg("Ignoring call outside serviceable floors")
		return
	}
	if req := d.requests.pending(call.Floor, call.Dir); req != nil {
		log.Debug().Int("floor", call.Floor).Stringer("dir", call.Dir).Uint64("seq", req.Seq).Msg("Call coalesced")
		return
	}

	req := d.requests.add(call.Floor, call.Dir)
	log.Info().Int("floor", call.Floor).Stringer("dir", call.Dir).Uint64("seq", req.Seq).Msg("New request")
	d.assign(req.Seq)
}

// assign binds an open request to the nearest elevator. With no elevator
// available the request stays open until the next elevator event.
func (d *Dispatcher) assign(seq uint64) {
	req := d.requests.bySeq(seq)
	el := nearestElevator(d.elevators, req.Floor, req.Dir)
	if el == nil {
		log.Info().Int("floor", req.Floor).Stringer("dir", req.Dir).Msg("No elevator available, request left open")
		return
	}

	// An idle elevator at the floor cannot file a stop there; it reopens its
	// doors instead and the FloorServiced event completes the request.
	if !el.ReopenAt(req.Floor) && !el.RequestStop(req.Floor, types.Pickup) {
		log.Info().Int("elevator", el.ID()).Int("floor", req.Floor).Stringer("dir", req.Dir).Msg("Elevator refused stop, request left open")
		return
	}

	req.Status = types.Allotted
	req.ElevatorID = el.ID()
	log.Info().Int("elevator", el.ID()).Int("floor", req.Floor).Stringer("dir", req.Dir).Msg("Request allotted")
}

func (d *Dispatcher) retryOpen() {
	for _, seq := range d.requests.open() {
		d.assign(seq)
	}
}

func (d *Dispatcher) handleEvent(ev types.Event) {
	log.Debug().Int("elevator", ev.ElevatorID).Stringer("kind", ev.Kind).Int("floor", ev.Floor).Stringer("dir", ev.Dir).Msg("Elevator event")
	switch ev.Kind {
	case types.DepartedFloor:
		d.onDepartedFloor(ev)
	case types.FloorServiced:
		d.onFloorServiced(ev)
	}
	d.retryOpen()
}

// onDepartedFloor hands the request waiting one floor ahead of a departing
// elevator to that elevator when its current assignee is elsewhere.
// Two elevators passing the same floor in turn can trade a request back and
// forth before either reaches it.
func (d *Dispatcher) onDepartedFloor(ev types.Event) {
	target := ev.Floor + ev.Dir.Step()
	req := d.requests.pending(target, ev.Dir)
	if req == nil {
		return
	}

	var prev Elevator
	if req.Status == types.Allotted {
		if req.ElevatorID == ev.ElevatorID {
			return
		}
		prev = d.byID[req.ElevatorID]
		if prev.CurrentFloor() == target {
			return
		}
	}

	// The event may be stale: the elevator has to still be short of target.
	departing := d.byID[ev.ElevatorID]
	s := departing.Snapshot()
	if s.Status != types.Moving || s.Dir != ev.Dir || !behind(s.Floor, target, ev.Dir) {
		return
	}
	if !departing.RequestStop(target, types.Pickup) {
		return
	}

	if prev != nil {
		prev.CancelStop(target, prev.Direction())
	}
	log.Info().Int("from", req.ElevatorID).Int("to", ev.ElevatorID).Int("floor", target).Stringer("dir", req.Dir).Msg("Request reassigned")
	req.Status = types.Allotted
	req.ElevatorID = ev.ElevatorID
}

// onFloorServiced completes the request matching the floor and direction of
// the stop, plus any request at that floor allotted to the stopping elevator.
func (d *Dispatcher) onFloorServiced(ev types.Event) {
	for _, seq := range d.requests.atFloor(ev.Floor) {
		req := d.requests.bySeq(seq)
		ownedHere := req.Status == types.Allotted && req.ElevatorID == ev.ElevatorID
		if req.Dir != ev.Dir && !ownedHere {
			continue
		}

		if req.Status == types.Allotted && !ownedHere {
			other := d.byID[req.ElevatorID]
			other.CancelStop(req.Floor, other.Direction())
		}
		log.Info().Int("elevator", ev.ElevatorID).Int("floor", req.Floor).Stringer("dir", req.Dir).Uint64("seq", seq).Msg("Request serviced")
		d.complete(seq)
	}
}

func (d *Dispatcher) complete(seq uint64) {
	d.requests.bySeq(seq).Status = types.Serviced
	d.requests.remove(seq)
}
