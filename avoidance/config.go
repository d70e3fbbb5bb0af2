package avoidance

import (
	"math"
	"time"
)

// Config is fixed for the duration of a task.
type Config struct {
	Mode Mode `json:"mode"`

	Threshold    float64 `json:"threshold"`     // m, readings below this are too close
	AvoidSpeed   float64 `json:"avoid_speed"`   // m/s, per repelling direction
	ForwardSpeed float64 `json:"forward_speed"` // m/s, baseline in advance and patrol
	MaxSpeed     float64 `json:"max_speed"`     // m/s, per axis

	Period    time.Duration `json:"period"`
	TimeLimit time.Duration `json:"time_limit"` // zero disables

	// Goal is the forward position at which an advance task is done.
	Goal float64 `json:"goal"`

	// Box is required in patrol mode and optional in advance mode, where
	// it limits lateral excursion only so the goal stays reachable.
	Box                *BoundaryBox  `json:"box,omitempty"`
	CorrectionSpeed    float64       `json:"correction_speed"`
	CorrectionDuration time.Duration `json:"correction_duration"`

	// SidestepSpeed, when set, steers around a front obstacle toward the
	// clearer side in advance and patrol modes. Equal sides go left.
	SidestepSpeed float64 `json:"sidestep_speed"`

	// StaleAfter is how old a snapshot may be before it is ignored.
	StaleAfter time.Duration `json:"stale_after"`
}

// DefaultConfig returns the parameters the demo flights use for mode.
func DefaultConfig(mode Mode) Config {
	cfg := Config{
		Mode:               mode,
		Threshold:          0.2,
		AvoidSpeed:         0.5,
		ForwardSpeed:       0.1,
		MaxSpeed:           0.5,
		Period:             100 * time.Millisecond,
		CorrectionSpeed:    0.2,
		CorrectionDuration: 100 * time.Millisecond,
		StaleAfter:         500 * time.Millisecond,
	}

	switch mode {
	case ModeAdvance:
		cfg.Threshold = 0.3
		cfg.AvoidSpeed = 0.1
		cfg.Goal = 1.0
		cfg.TimeLimit = 60 * time.Second
	case ModePatrol:
		cfg.TimeLimit = 190 * time.Second
		cfg.Box = &BoundaryBox{XLimit: 0.5, YLimit: 0.5}
	}
	return cfg
}

// Validate checks the invariants a controller relies on.
func (c Config) Validate() error {
	if _, ok := modeString[c.Mode]; !ok {
		return ErrorInvalidMode
	}
	if !(c.Threshold > 0) || math.IsInf(c.Threshold, 0) {
		return ErrorInvalidThreshold
	}
	if !(c.MaxSpeed > 0) || math.IsInf(c.MaxSpeed, 0) {
		return ErrorInvalidSpeed
	}
	for _, speed := range []float64{c.AvoidSpeed, c.ForwardSpeed, c.CorrectionSpeed, c.SidestepSpeed} {
		if !(speed >= 0) || math.IsInf(speed, 0) {
			return ErrorInvalidSpeed
		}
	}
	if c.Period <= 0 {
		return ErrorInvalidPeriod
	}
	if c.Mode == ModeAdvance && (!(c.Goal > 0) || math.IsInf(c.Goal, 0)) {
		return ErrorInvalidGoal
	}
	if c.Mode == ModePatrol && c.Box == nil {
		return ErrorMissingBoundary
	}
	if c.Box != nil {
		return c.Box.validate()
	}
	return nil
}
