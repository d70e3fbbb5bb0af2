// Package multiranger streams the multiranger deck and the state estimate
// from a Crazyflie's log subsystem into latest-value slots.
package multiranger

import (
	"log"
	"time"

	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/avoidance"
	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/crazyflie"
	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/latest"
)

const (
	Front = "range.front"
	Back  = "range.back"
	Left  = "range.left"
	Right = "range.right"
	Up    = "range.up"

	PositionX = "stateEstimate.x"
	PositionY = "stateEstimate.y"
)

// Readings at or beyond this many millimeters mean nothing was in range.
const maxRangeMillimeters = 8000

const DefaultPeriod = 100 * time.Millisecond

// A position sample older than this, relative to the range sample, is
// not merged into the snapshot.
const positionMaxAge = 500 * time.Millisecond

// LogBlocker is the part of a Crazyflie the sensor needs.
type LogBlocker interface {
	LogBlockAdd(variables []string, handler crazyflie.LogHandler) (uint8, error)
	LogBlockStart(blockid uint8, period time.Duration) error
	LogBlockStop(blockid uint8) error
	LogBlockDelete(blockid uint8) error
}

type Sensor struct {
	device   LogBlocker
	blocks   []uint8
	ranges   latest.Value[avoidance.Reading]
	position latest.Value[avoidance.Vec]
}

// Start creates and starts the range block, plus the position block when
// withPosition is set.
func Start(device LogBlocker, period time.Duration, withPosition bool) (*Sensor, error) {
	s := &Sensor{device: device}

	if err := s.startBlock([]string{Front, Back, Left, Right, Up}, period, s.handleRanges); err != nil {
		return nil, err
	}
	if withPosition {
		if err := s.startBlock([]string{PositionX, PositionY}, period, s.handlePosition); err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *Sensor) startBlock(variables []string, period time.Duration, handler crazyflie.LogHandler) error {
	id, err := s.device.LogBlockAdd(variables, handler)
	if err != nil {
		return err
	}
	s.blocks = append(s.blocks, id)
	return s.device.LogBlockStart(id, period)
}

// Close stops and deletes the log blocks.
func (s *Sensor) Close() error {
	var first error
	for _, id := range s.blocks {
		if err := s.device.LogBlockStop(id); err != nil && first == nil {
			first = err
		}
		if err := s.device.LogBlockDelete(id); err != nil {
			log.Printf("multiranger: delete block %d: %s", id, err)
		}
	}
	s.blocks = nil
	return first
}

// RangeFromMillimeters converts a raw ranger value.
func RangeFromMillimeters(mm float64) avoidance.Range {
	if mm >= maxRangeMillimeters {
		return avoidance.NoEcho
	}
	return avoidance.Echo(mm / 1000)
}

func (s *Sensor) handleRanges(_ uint32, values map[string]float64) {
	s.ranges.Store(avoidance.Reading{
		Front: rangeOf(values, Front),
		Back:  rangeOf(values, Back),
		Left:  rangeOf(values, Left),
		Right: rangeOf(values, Right),
		Up:    rangeOf(values, Up),
	})
}

func rangeOf(values map[string]float64, name string) avoidance.Range {
	mm, ok := values[name]
	if !ok {
		return avoidance.NoEcho
	}
	return RangeFromMillimeters(mm)
}

func (s *Sensor) handlePosition(_ uint32, values map[string]float64) {
	s.position.Store(avoidance.Vec{X: values[PositionX], Y: values[PositionY]})
}

// Latest merges the newest range and position samples. The snapshot is
// stamped with the time the ranges arrived.
func (s *Sensor) Latest() (avoidance.Snapshot, time.Time, bool) {
	reading, stamp, ok := s.ranges.Load()
	if !ok {
		return avoidance.Snapshot{}, time.Time{}, false
	}

	snapshot := avoidance.Snapshot{Reading: reading}
	if position, ok := s.position.Fresh(stamp, positionMaxAge); ok {
		snapshot.Position = position
		snapshot.HasPosition = true
	}
	return snapshot, stamp, true
}
