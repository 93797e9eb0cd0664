package console

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"elevsim/src/types"
)

var ErrBadCall = errors.New("bad hall call")

// ParseCalls reads a comma separated list of hall calls such as
// "5:up,3:down". An empty string yields no calls.
func ParseCalls(s string) ([]types.HallCall, error) {
	var calls []types.HallCall
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		floorStr, dirStr, found := strings.Cut(field, ":")
		if !found {
			return nil, fmt.Errorf("%w: %q is not floor:direction", ErrBadCall, field)
		}
		floor, err := strconv.Atoi(strings.TrimSpace(floorStr))
		if err != nil {
			return nil, fmt.Errorf("%w: floor in %q: %v", ErrBadCall, field, err)
		}
		dir, err := parseDirection(strings.TrimSpace(dirStr))
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrBadCall, field, err)
		}
		calls = append(calls, types.HallCall{Floor: floor, Dir: dir})
	}
	return calls, nil
}

func parseDirection(s string) (types.Direction, error) {
	switch strings.ToLower(s) {
	case "up", "u":
		return types.Up, nil
	case "down", "d":
		return types.Down, nil
	}
	return types.Up, fmt.Errorf("unknown direction %q", s)
}
