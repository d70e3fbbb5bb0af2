package avoidance

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Range is one ranger distance in meters. The zero Range is "no echo",
// which is not the same as an obstacle at distance 0.
type Range struct {
	meters float64
	valid  bool
}

// NoEcho is a ranger that saw no reflection.
var NoEcho = Range{}

// Echo returns a present reading. Negative, NaN and infinite distances are
// treated as no echo.
func Echo(meters float64) Range {
	if meters < 0 || math.IsNaN(meters) || math.IsInf(meters, 0) {
		return NoEcho
	}
	return Range{meters: meters, valid: true}
}

// Meters returns the distance and whether one was measured.
func (r Range) Meters() (float64, bool) {
	return r.meters, r.valid
}

// Present reports whether the ranger saw a reflection.
func (r Range) Present() bool {
	return r.valid
}

// Within reports whether an obstacle was seen closer than threshold.
func (r Range) Within(threshold float64) bool {
	return r.valid && r.meters < threshold
}

func (r Range) String() string {
	if !r.valid {
		return "none"
	}
	return fmt.Sprintf("%.3f", r.meters)
}

// MarshalJSON writes the distance, or null for no echo.
func (r Range) MarshalJSON() ([]byte, error) {
	if !r.valid {
		return []byte("null"), nil
	}
	return json.Marshal(r.meters)
}

// Reading is one capture of the five rangers.
type Reading struct {
	Front Range `json:"front"`
	Back  Range `json:"back"`
	Left  Range `json:"left"`
	Right Range `json:"right"`
	Up    Range `json:"up"`
}

// Vec is a horizontal position or velocity. X is forward, Y is left.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Snapshot is what the sensor source hands the controller each tick.
type Snapshot struct {
	Reading Reading `json:"reading"`

	// Position is an external position estimate, used instead of dead
	// reckoning when HasPosition is set.
	Position    Vec  `json:"position"`
	HasPosition bool `json:"has_position"`
}

// VelocityCommand is the output of one tick, in m/s. Lateral is positive to the left.
type VelocityCommand struct {
	Forward float64 `json:"forward"`
	Lateral float64 `json:"lateral"`
}

// TaskState is the lifecycle of one flight task.
type TaskState uint8

const (
	Running TaskState = iota
	GoalReached
	ObstacleAbove
	TimeExceeded
	UserCancelled
)

var taskStateString = map[TaskState]string{
	Running:       "running",
	GoalReached:   "goal-reached",
	ObstacleAbove: "obstacle-above",
	TimeExceeded:  "time-exceeded",
	UserCancelled: "user-cancelled",
}

func (s TaskState) String() string {
	if str, ok := taskStateString[s]; ok {
		return str
	}
	return fmt.Sprintf("TaskState(%d)", uint8(s))
}

// Terminal reports whether no more movement may be commanded.
func (s TaskState) Terminal() bool {
	return s != Running
}

// Mode selects the baseline intent of a task.
type Mode uint8

const (
	ModeHover Mode = iota
	ModeAdvance
	ModePatrol
)

var modeString = map[Mode]string{
	ModeHover:   "hover",
	ModeAdvance: "advance",
	ModePatrol:  "patrol",
}

func (m Mode) String() string {
	if str, ok := modeString[m]; ok {
		return str
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// ParseMode converts a mode name into a Mode.
func ParseMode(name string) (Mode, error) {
	for m, str := range modeString {
		if str == name {
			return m, nil
		}
	}
	return ModeHover, ErrorInvalidMode
}

// BoundaryBox bounds excursion around Center by XLimit and YLimit on each side.
type BoundaryBox struct {
	Center Vec     `json:"center"`
	XLimit float64 `json:"x_limit"`
	YLimit float64 `json:"y_limit"`
}

// NewBoundaryBox derives a box centred on start whose half-extents reach
// dest, each clipped to globalMax. An axis on which dest does not move gets
// the full globalMax.
func NewBoundaryBox(start, dest Vec, globalMax float64) (BoundaryBox, error) {
	if !(globalMax > 0) || math.IsInf(globalMax, 0) {
		return BoundaryBox{}, ErrorInvalidBoundary
	}
	extent := func(d float64) float64 {
		d = math.Abs(d)
		if d == 0 || !(d <= globalMax) {
			return globalMax
		}
		return d
	}
	return BoundaryBox{
		Center: start,
		XLimit: extent(dest.X - start.X),
		YLimit: extent(dest.Y - start.Y),
	}, nil
}

func (b BoundaryBox) validate() error {
	for _, limit := range []float64{b.XLimit, b.YLimit} {
		if !(limit > 0) || math.IsInf(limit, 0) {
			return ErrorInvalidBoundary
		}
	}
	return nil
}

// Contains reports whether p is within the box, edges included.
func (b BoundaryBox) Contains(p Vec) bool {
	return math.Abs(p.X-b.Center.X) <= b.XLimit && math.Abs(p.Y-b.Center.Y) <= b.YLimit
}

// Task is the state record of one flight task. It is passed into and
// returned from every Step; nothing else holds task state.
type Task struct {
	State    TaskState       `json:"state"`
	Tick     uint64          `json:"tick"`
	Elapsed  time.Duration   `json:"elapsed"`
	Position Vec             `json:"position"`
	Last     VelocityCommand `json:"last"`

	// remaining boundary correction per axis, with its direction
	correction [2]correction
}

type correction struct {
	remaining time.Duration
	sign      float64
}

// Correcting reports whether a boundary correction is active on the forward
// (axis 0) or lateral (axis 1) axis.
func (t Task) Correcting(axis int) bool {
	return t.correction[axis].remaining > 0
}

// Input is everything a tick consumes besides the task record.
type Input struct {
	Snapshot  Snapshot
	Dt        time.Duration
	Cancelled bool
}

// Output is what a tick produces. Stop is set only on the tick that leaves
// Running; Emit is set on every tick that stays Running.
type Output struct {
	Command VelocityCommand
	Emit    bool
	Stop    bool
}
