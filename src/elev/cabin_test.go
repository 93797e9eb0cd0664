package elev

import (
	"testing"

	"elevsim/src/types"
)

type panelRecorder struct {
	floors []int
}

func (p *panelRecorder) AddPanelStop(floor int) {
	p.floors = append(p.floors, floor)
}

func TestCabin_DoorsAndDirection(t *testing.T) {
	c := NewCabin(&panelRecorder{})
	if c.Direction() != types.Up || c.DoorsOpen() {
		t.Fatalf("new cabin should face up with doors closed")
	}

	c.SetDirection(types.Down)
	if c.Direction() != types.Down {
		t.Errorf("expected direction down, was %v", c.Direction())
	}

	c.StopDoors()
	if !c.DoorsOpen() {
		t.Errorf("doors should be open after StopDoors")
	}
	c.ResumeDoors()
	if c.DoorsOpen() {
		t.Errorf("doors should be closed after ResumeDoors")
	}
}

func TestCabin_PanelRequestForwarded(t *testing.T) {
	p := &panelRecorder{}
	c := NewCabin(p)
	c.PanelRequest(3)
	c.PanelRequest(-40)

	if len(p.floors) != 2 || p.floors[0] != 3 || p.floors[1] != -40 {
		t.Errorf("panel requests should be forwarded verbatim, got %v", p.floors)
	}
}
