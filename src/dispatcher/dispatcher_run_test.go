package dispatcher

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"elevsim/src/config"
	"elevsim/src/elev"
	"elevsim/src/types"
)

const step = time.Second

// startDispatcher runs a dispatcher over real elevators driven by a fake
// clock. The returned channel sees every event of elevator 0.
func startDispatcher(t *testing.T, floors, elevators int) (*Dispatcher, *clockwork.FakeClock, chan types.Event) {
	t.Helper()
	cfg := config.Default()
	cfg.NumFloors = floors
	cfg.NumElevators = elevators
	cfg.TravelDuration = step
	cfg.DwellDuration = step
	cfg.EventQueueSize = 512

	clk := clockwork.NewFakeClock()
	d := New(cfg, clk)
	events := make(chan types.Event, 512)
	d.elevators[0].(*elev.Elevator).Subscribe(events)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v", err)
		}
	})
	return d, clk, events
}

// driveUntilIdle advances the clock whenever an elevator waits on it, until
// elevator 0 has gone idle n times.
func driveUntilIdle(t *testing.T, clk *clockwork.FakeClock, events <-chan types.Event, n int) []types.Event {
	t.Helper()
	var got []types.Event
	deadline := time.After(10 * time.Second)
	for n > 0 {
		select {
		case ev := <-events:
			got = append(got, ev)
			if ev.Kind == types.BecameIdle {
				n--
			}
			continue
		case <-deadline:
			t.Fatalf("elevator never became idle; events so far: %+v", got)
		default:
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
		err := clk.BlockUntilContext(ctx, 1)
		cancel()
		if err == nil {
			clk.Advance(step)
		}
	}
	return got
}

func floorsOf(events []types.Event, kind types.EventKind) []int {
	var floors []int
	for _, ev := range events {
		if ev.Kind == kind {
			floors = append(floors, ev.Floor)
		}
	}
	return floors
}

func pendingRequests(t *testing.T, d *Dispatcher) []types.ServiceRequest {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	reqs, err := d.Requests(ctx)
	if err != nil {
		t.Fatalf("Requests: %v", err)
	}
	return reqs
}

func TestRun_SingleElevatorPickup(t *testing.T) {
	d, clk, events := startDispatcher(t, 10, 1)

	d.RequestElevator(5, types.Up)
	got := driveUntilIdle(t, clk, events, 1)

	if departed := floorsOf(got, types.DepartedFloor); !slices.Equal(departed, []int{1, 2, 3, 4, 5}) {
		t.Errorf("unexpected departures: %v", departed)
	}
	if serviced := floorsOf(got, types.FloorServiced); !slices.Equal(serviced, []int{5}) {
		t.Errorf("unexpected serviced floors: %v", serviced)
	}
	if reqs := pendingRequests(t, d); len(reqs) != 0 {
		t.Errorf("request should be serviced and removed, got %+v", reqs)
	}

	state := d.Elevators()[0]
	if state.Floor != 5 || state.Status != types.Idle || state.Dir != types.Up {
		t.Errorf("expected idle at 5 facing up, got %+v", state)
	}
}

func TestRun_CoalescedCallServicedOnce(t *testing.T) {
	d, clk, events := startDispatcher(t, 10, 1)

	d.RequestElevator(3, types.Up)
	d.RequestElevator(3, types.Up)
	if reqs := pendingRequests(t, d); len(reqs) != 1 {
		t.Fatalf("expected a single request, got %+v", reqs)
	}

	got := driveUntilIdle(t, clk, events, 1)
	if serviced := floorsOf(got, types.FloorServiced); !slices.Equal(serviced, []int{3}) {
		t.Errorf("expected one stop at 3, got %v", serviced)
	}
}

func TestRun_OpenRequestServedAfterSweep(t *testing.T) {
	d, clk, events := startDispatcher(t, 10, 1)

	d.RequestElevator(8, types.Up)
	d.RequestElevator(2, types.Down)

	reqs := pendingRequests(t, d)
	if len(reqs) != 2 || reqs[1].Status != types.Open {
		t.Fatalf("second call should wait open, got %+v", reqs)
	}

	got := driveUntilIdle(t, clk, events, 2)

	if serviced := floorsOf(got, types.FloorServiced); !slices.Equal(serviced, []int{8, 2}) {
		t.Errorf("unexpected serviced floors: %v", serviced)
	}
	want := []int{1, 2, 3, 4, 5, 6, 7, 8, 7, 6, 5, 4, 3, 2}
	if departed := floorsOf(got, types.DepartedFloor); !slices.Equal(departed, want) {
		t.Errorf("unexpected departures: %v", departed)
	}
	if reqs := pendingRequests(t, d); len(reqs) != 0 {
		t.Errorf("all requests should be serviced, got %+v", reqs)
	}
}

func TestRun_PanelStopThroughCabin(t *testing.T) {
	d, clk, events := startDispatcher(t, 10, 1)

	cabin, ok := d.Cabin(0)
	if !ok {
		t.Fatal("elevator 0 should expose its cabin")
	}
	cabin.PanelRequest(4)

	got := driveUntilIdle(t, clk, events, 1)
	if serviced := floorsOf(got, types.FloorServiced); !slices.Equal(serviced, []int{4}) {
		t.Errorf("unexpected serviced floors: %v", serviced)
	}
	if _, ok := d.Cabin(7); ok {
		t.Errorf("unknown elevator should have no cabin")
	}
}

func TestDeparted_LateEventWithRealElevators(t *testing.T) {
	cfg := config.Default()
	cfg.NumFloors = 10
	cfg.TravelDuration = step
	cfg.DwellDuration = step
	cfg.EventQueueSize = 512

	clk := clockwork.NewFakeClock()
	e0 := elev.New(0, cfg, clk)
	e1 := elev.New(1, cfg, clk)
	d := newDispatcher(cfg, []Elevator{e0, e1})

	// Only e1 moves; e0 keeps its stop but never leaves floor 0.
	call(d, 5, types.Up)
	expectRequest(t, d, 5, types.Up, types.Allotted, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e1.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	e1.PickupAt(7)
	for i := 0; i < 5; i++ {
		waitForTimer(t, clk)
		clk.Advance(step)
	}
	waitForTimer(t, clk)
	if e1.CurrentFloor() != 5 {
		t.Fatalf("expected e1 at 5, was %d", e1.CurrentFloor())
	}

	// The departure from 4 is handled only now, with e1 already at 5.
	d.handleEvent(types.Event{ElevatorID: 1, Kind: types.DepartedFloor, Floor: 4, Dir: types.Up})

	expectRequest(t, d, 5, types.Up, types.Allotted, 0)
	if s := e0.Snapshot(); !slices.Contains(s.UpStops, 5) {
		t.Errorf("assigned elevator lost its stop at 5: %+v", s)
	}
}

func waitForTimer(t *testing.T, clk *clockwork.FakeClock) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := clk.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("elevator never waited on the clock: %v", err)
	}
}

func TestRun_IdleAtCallFloorCyclesDoors(t *testing.T) {
	d, clk, events := startDispatcher(t, 10, 1)

	d.RequestElevator(0, types.Down)
	waitForTimer(t, clk)

	cabin, _ := d.Cabin(0)
	if !cabin.DoorsOpen() {
		t.Fatalf("doors should open for a call at the elevator's floor")
	}

	got := driveUntilIdle(t, clk, events, 1)
	if serviced := floorsOf(got, types.FloorServiced); !slices.Equal(serviced, []int{0}) {
		t.Errorf("expected a stop at 0, got %v", serviced)
	}
	if departed := floorsOf(got, types.DepartedFloor); len(departed) != 0 {
		t.Errorf("elevator should not move, departed %v", departed)
	}
	if cabin.DoorsOpen() {
		t.Errorf("doors should close after the dwell")
	}
	if reqs := pendingRequests(t, d); len(reqs) != 0 {
		t.Errorf("request should be serviced, got %+v", reqs)
	}
}
