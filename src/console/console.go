package console

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/eiannone/keyboard"

	"elevsim/src/elev"
	"elevsim/src/logger"
	"elevsim/src/types"
)

var log = logger.Get()

const usage = `keys: 0-9 floor, u/d hall call, p panel stop, e next elevator, s status, c clear, q quit`

// Dispatcher is the part of the dispatcher the console drives.
type Dispatcher interface {
	RequestElevator(floor int, dir types.Direction)
	Elevators() []types.ElevState
	Cabin(id int) (*elev.Cabin, bool)
}

// Console turns key presses into hall calls and panel stops.
// Digits are collected into a floor number which the next command consumes.
type Console struct {
	d         Dispatcher
	out       io.Writer
	elevators int
	elevator  int
	floor     string
}

func New(d Dispatcher, out io.Writer, elevators int) *Console {
	return &Console{d: d, out: out, elevators: elevators}
}

// Run reads keys from the terminal until q, Esc or Ctrl-C is pressed or ctx
// is cancelled.
func (c *Console) Run(ctx context.Context) error {
	keys, err := keyboard.GetKeys(10)
	if err != nil {
		return fmt.Errorf("open keyboard: %w", err)
	}
	defer keyboard.Close()

	fmt.Fprintln(c.out, usage)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-keys:
			if ev.Err != nil {
				return fmt.Errorf("read key: %w", ev.Err)
			}
			if c.handleKey(ev.Rune, ev.Key) {
				return nil
			}
		}
	}
}

// handleKey applies one key press and reports whether the console should
// quit.
func (c *Console) handleKey(r rune, key keyboard.Key) bool {
	switch key {
	case keyboard.KeyCtrlC, keyboard.KeyEsc:
		return true
	case keyboard.KeyBackspace, keyboard.KeyBackspace2:
		if len(c.floor) > 0 {
			c.floor = c.floor[:len(c.floor)-1]
		}
		return false
	}

	switch {
	case r >= '0' && r <= '9':
		c.floor += string(r)
	case r == 'u' || r == 'U':
		c.hallCall(types.Up)
	case r == 'd' || r == 'D':
		c.hallCall(types.Down)
	case r == 'p' || r == 'P':
		c.panelStop()
	case r == 'e' || r == 'E':
		c.elevator = (c.elevator + 1) % c.elevators
		fmt.Fprintf(c.out, "elevator %d selected\n", c.elevator)
	case r == 's' || r == 'S':
		c.printStatus()
	case r == 'c' || r == 'C':
		c.floor = ""
	case r == 'q' || r == 'Q':
		return true
	}
	return false
}

// takeFloor consumes the collected floor number.
func (c *Console) takeFloor() (int, bool) {
	s := c.floor
	c.floor = ""
	if s == "" {
		fmt.Fprintln(c.out, "type a floor first")
		return 0, false
	}
	floor, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return floor, true
}

func (c *Console) hallCall(dir types.Direction) {
	floor, ok := c.takeFloor()
	if !ok {
		return
	}
	log.Info().Int("floor", floor).Stringer("dir", dir).Msg("Hall call from console")
	c.d.RequestElevator(floor, dir)
}

func (c *Console) panelStop() {
	floor, ok := c.takeFloor()
	if !ok {
		return
	}
	cabin, ok := c.d.Cabin(c.elevator)
	if !ok {
		fmt.Fprintf(c.out, "elevator %d has no cabin\n", c.elevator)
		return
	}
	log.Info().Int("elevator", c.elevator).Int("floor", floor).Msg("Panel stop from console")
	cabin.PanelRequest(floor)
}

func (c *Console) printStatus() {
	for _, s := range c.d.Elevators() {
		marker := " "
		if s.ID == c.elevator {
			marker = "*"
		}
		fmt.Fprintf(c.out, "%s elevator %d: floor %d %v %v up=%v down=%v\n",
			marker, s.ID, s.Floor, s.Status, s.Dir, s.UpStops, s.DownStops)
	}
}
