package main

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/cwbudde/algo-binaural/dsp/effects/spatial"
)

type commandKind int

const (
	cmdAzimuth commandKind = iota
	cmdElevation
	cmdVolume
	cmdStatus
	cmdHelp
	cmdQuit
)

// command is one parsed line of interactive input.
type command struct {
	kind  commandKind
	value float64
}

var errEmptyCommand = errors.New("empty command")

const commandHelp = `commands:
  az <deg>   glide the azimuth to deg
  el <deg>   glide the elevation to deg
  vol <dB>   set the output level
  status     print the current position
  help       print this text
  q          stop playback`

// parseCommand parses "az 30", "el -10", "vol -6", "status", "help" or "q".
func parseCommand(line string) (command, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return command{}, errEmptyCommand
	}

	var kind commandKind
	switch fields[0] {
	case "az", "azimuth":
		kind = cmdAzimuth
	case "el", "elevation":
		kind = cmdElevation
	case "vol", "volume":
		kind = cmdVolume
	case "s", "status":
		return command{kind: cmdStatus}, nil
	case "h", "help", "?":
		return command{kind: cmdHelp}, nil
	case "q", "quit", "exit":
		return command{kind: cmdQuit}, nil
	default:
		return command{}, fmt.Errorf("unknown command %q", fields[0])
	}

	if len(fields) != 2 {
		return command{}, fmt.Errorf("%s needs exactly one value", fields[0])
	}
	v, err := strconv.ParseFloat(fields[1], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return command{}, fmt.Errorf("%s: invalid value %q", fields[0], fields[1])
	}
	return command{kind: kind, value: v}, nil
}

// controller glides the processor position towards targets set from the
// input loop. Every step feeds the targets through the processor's smoother
// once.
type controller struct {
	proc      *spatial.Binaural
	tolerance float64

	mu        sync.Mutex
	azimuth   float64
	elevation float64
}

func newController(proc *spatial.Binaural) *controller {
	return &controller{
		proc:      proc,
		tolerance: 0.01,
		azimuth:   proc.Azimuth(),
		elevation: proc.Elevation(),
	}
}

// apply validates cmd and records it. Volume changes are passed straight
// through.
func (c *controller) apply(cmd command) error {
	switch cmd.kind {
	case cmdAzimuth:
		if cmd.value < spatial.MinAzimuth || cmd.value > spatial.MaxAzimuth {
			return fmt.Errorf("azimuth must be in [%g, %g]: %g", spatial.MinAzimuth, spatial.MaxAzimuth, cmd.value)
		}
		c.mu.Lock()
		c.azimuth = cmd.value
		c.mu.Unlock()
	case cmdElevation:
		if cmd.value < spatial.MinElevation || cmd.value > spatial.MaxElevation {
			return fmt.Errorf("elevation must be in [%g, %g]: %g", spatial.MinElevation, spatial.MaxElevation, cmd.value)
		}
		c.mu.Lock()
		c.elevation = cmd.value
		c.mu.Unlock()
	case cmdVolume:
		return c.proc.SetVolume(cmd.value)
	default:
		return fmt.Errorf("command %d does not change the position", cmd.kind)
	}
	return nil
}

// targets returns the current azimuth and elevation targets.
func (c *controller) targets() (azimuth, elevation float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.azimuth, c.elevation
}

// step moves the processor one smoother step towards the targets and reports
// whether it is still gliding.
func (c *controller) step() (bool, error) {
	az, el := c.targets()
	gliding := false

	if math.Abs(c.proc.Azimuth()-az) > c.tolerance {
		if err := c.proc.SetAzimuth(az); err != nil {
			return false, err
		}
		gliding = true
	}
	if math.Abs(c.proc.Elevation()-el) > c.tolerance {
		if err := c.proc.SetElevation(el); err != nil {
			return false, err
		}
		gliding = true
	}
	return gliding, nil
}

// status formats the current and target position.
func (c *controller) status() string {
	az, el := c.targets()
	return fmt.Sprintf("azimuth %.1f (target %.1f), elevation %.1f (target %.1f), volume %.1f dB",
		c.proc.Azimuth(), az, c.proc.Elevation(), el, c.proc.Volume())
}
