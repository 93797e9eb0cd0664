package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	NumFloors      = 10
	NumElevators   = 3
	BottomFloor    = 0
	TravelDuration = 1 * time.Second
	DwellDuration  = 1 * time.Second
	CallQueueSize  = 32
	EventQueueSize = 64
	LogLevel       = "info"
)

// Environment variables read on top of the config file.
const (
	EnvFloors      = "ELEVSIM_FLOORS"
	EnvElevators   = "ELEVSIM_ELEVATORS"
	EnvBottomFloor = "ELEVSIM_BOTTOM_FLOOR"
	EnvTravel      = "ELEVSIM_TRAVEL"
	EnvDwell       = "ELEVSIM_DWELL"
	EnvLogLevel    = "ELEVSIM_LOG_LEVEL"
	EnvLogFile     = "ELEVSIM_LOG_FILE"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	NumFloors      int           `yaml:"floors"`
	NumElevators   int           `yaml:"elevators"`
	BottomFloor    int           `yaml:"bottomFloor"`
	TravelDuration time.Duration `yaml:"travel"`
	DwellDuration  time.Duration `yaml:"dwell"`
	CallQueueSize  int           `yaml:"callQueue"`
	EventQueueSize int           `yaml:"eventQueue"`
	LogLevel       string        `yaml:"logLevel"`
	LogFile        string        `yaml:"logFile"`
}

func Default() Config {
	return Config{
		NumFloors:      NumFloors,
		NumElevators:   NumElevators,
		BottomFloor:    BottomFloor,
		TravelDuration: TravelDuration,
		DwellDuration:  DwellDuration,
		CallQueueSize:  CallQueueSize,
		EventQueueSize: EventQueueSize,
		LogLevel:       LogLevel,
	}
}

// TopFloor is the highest serviceable floor.
func (c Config) TopFloor() int {
	return c.BottomFloor + c.NumFloors - 1
}

func (c Config) Validate() error {
	switch {
	case c.NumFloors < 2:
		return fmt.Errorf("%w: need at least 2 floors, got %d", ErrInvalid, c.NumFloors)
	case c.NumElevators < 1:
		return fmt.Errorf("%w: need at least 1 elevator, got %d", ErrInvalid, c.NumElevators)
	case c.TravelDuration <= 0:
		return fmt.Errorf("%w: travel duration must be positive", ErrInvalid)
	case c.DwellDuration <= 0:
		return fmt.Errorf("%w: dwell duration must be positive", ErrInvalid)
	case c.CallQueueSize < 1 || c.EventQueueSize < 1:
		return fmt.Errorf("%w: queue sizes must be positive", ErrInvalid)
	}
	return nil
}

// Load builds a Config from the defaults, the YAML file at path (skipped
// when path is empty), the .env file at envPath (skipped when missing) and
// finally the process environment.
func Load(path, envPath string) (Config, error) {
	c := Default()
	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return c, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(&c); err != nil {
			return c, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return c, fmt.Errorf("load env file %s: %w", envPath, err)
		}
	}
	if err := applyEnv(&c); err != nil {
		return c, err
	}
	return c, c.Validate()
}

func applyEnv(c *Config) error {
	ints := map[string]*int{
		EnvFloors:      &c.NumFloors,
		EnvElevators:   &c.NumElevators,
		EnvBottomFloor: &c.BottomFloor,
	}
	for key, dst := range ints {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, key, v, err)
		}
		*dst = n
	}

	durations := map[string]*time.Duration{
		EnvTravel: &c.TravelDuration,
		EnvDwell:  &c.DwellDuration,
	}
	for key, dst := range durations {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, key, v, err)
		}
		*dst = d
	}

	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		c.LogLevel = v
	}
	if v, ok := os.LookupEnv(EnvLogFile); ok {
		c.LogFile = v
	}
	return nil
}
