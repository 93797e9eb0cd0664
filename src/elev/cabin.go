package elev

import (
	"sync"

	"elevsim/src/types"
)

// PanelHandler receives floor buttons pressed inside a cabin.
type PanelHandler interface {
	AddPanelStop(floor int)
}

// Cabin is the car itself: it carries a direction and a pair of doors.
// Door actuation is instantaneous.
type Cabin struct {
	mu        sync.Mutex
	dir       types.Direction
	doorsOpen bool
	panel     PanelHandler
}

func NewCabin(panel PanelHandler) *Cabin {
	return &Cabin{dir: types.Up, panel: panel}
}

func (c *Cabin) SetDirection(dir types.Direction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dir = dir
}

func (c *Cabin) Direction() types.Direction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dir
}

// StopDoors opens the doors; the cabin does not advance until ResumeDoors.
func (c *Cabin) StopDoors() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.doorsOpen = true
}

func (c *Cabin) ResumeDoors() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.doorsOpen = false
}

func (c *Cabin) DoorsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doorsOpen
}

// PanelRequest models a passenger pressing a floor button inside the cabin.
func (c *Cabin) PanelRequest(floor int) {
	c.panel.AddPanelStop(floor)
}
