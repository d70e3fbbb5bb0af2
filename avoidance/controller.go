// Package avoidance turns multiranger readings into velocity commands.
//
// A Controller is immutable; all task state lives in the Task record that
// Step takes and returns, so one Step is a pure function of its inputs.
package avoidance

import (
	"math"
	"time"
)

const (
	axisForward = 0
	axisLateral = 1
)

// goalEpsilon absorbs the float error of dead reckoning many small steps.
const goalEpsilon = 1e-9

type Controller struct {
	cfg Config
}

// NewController validates cfg and returns a controller bound to it.
func NewController(cfg Config) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Box != nil {
		box := *cfg.Box
		cfg.Box = &box
	}
	return &Controller{cfg: cfg}, nil
}

// Config returns a copy of the controller's configuration.
func (c *Controller) Config() Config {
	return c.cfg
}

// Start returns the record of a task that has not ticked yet.
func (c *Controller) Start() Task {
	t := Task{State: Running}
	if c.cfg.Box != nil {
		t.Position = c.cfg.Box.Center
	}
	return t
}

// Step advances task by one tick.
func (c *Controller) Step(task Task, in Input) (Task, Output) {
	if task.State.Terminal() {
		return task, Output{}
	}

	task.Tick++
	task.Elapsed += in.Dt
	if in.Snapshot.HasPosition {
		task.Position = in.Snapshot.Position
	} else {
		dt := in.Dt.Seconds()
		task.Position.X += task.Last.Forward * dt
		task.Position.Y += task.Last.Lateral * dt
	}

	if state := c.terminalCondition(task, in); state.Terminal() {
		task.State = state
		task.Last = VelocityCommand{}
		task.correction = [2]correction{}
		return task, Output{Stop: true}
	}

	cmd := c.baseline()
	c.repel(&cmd, in.Snapshot.Reading)
	c.sidestep(&cmd, in.Snapshot.Reading)
	task = c.bound(task, &cmd, in.Dt)

	cmd.Forward = clamp(cmd.Forward, -c.cfg.MaxSpeed, c.cfg.MaxSpeed)
	cmd.Lateral = clamp(cmd.Lateral, -c.cfg.MaxSpeed, c.cfg.MaxSpeed)

	task.Last = cmd
	return task, Output{Command: cmd, Emit: true}
}

// terminalCondition evaluates ceiling, time, goal and cancel in that order.
func (c *Controller) terminalCondition(task Task, in Input) TaskState {
	if in.Snapshot.Reading.Up.Within(c.cfg.Threshold) {
		return ObstacleAbove
	}
	if c.cfg.TimeLimit > 0 && task.Elapsed >= c.cfg.TimeLimit {
		return TimeExceeded
	}
	if c.cfg.Mode == ModeAdvance && task.Position.X >= c.cfg.Goal-goalEpsilon {
		return GoalReached
	}
	if in.Cancelled {
		return UserCancelled
	}
	return Running
}

func (c *Controller) baseline() VelocityCommand {
	if c.cfg.Mode == ModeHover {
		return VelocityCommand{}
	}
	return VelocityCommand{Forward: c.cfg.ForwardSpeed}
}

// repel pushes away from every close obstacle. Opposite sides cancel.
func (c *Controller) repel(cmd *VelocityCommand, r Reading) {
	th, v := c.cfg.Threshold, c.cfg.AvoidSpeed
	if r.Front.Within(th) {
		cmd.Forward -= v
	}
	if r.Back.Within(th) {
		cmd.Forward += v
	}
	if r.Left.Within(th) {
		cmd.Lateral -= v
	}
	if r.Right.Within(th) {
		cmd.Lateral += v
	}
}

func (c *Controller) sidestep(cmd *VelocityCommand, r Reading) {
	if c.cfg.SidestepSpeed <= 0 || c.cfg.Mode == ModeHover || !r.Front.Within(c.cfg.Threshold) {
		return
	}
	if clearance(r.Left) >= clearance(r.Right) {
		cmd.Lateral += c.cfg.SidestepSpeed
	} else {
		cmd.Lateral -= c.cfg.SidestepSpeed
	}
}

func clearance(r Range) float64 {
	if m, ok := r.Meters(); ok {
		return m
	}
	return math.Inf(1)
}

// bound starts, continues or ends boundary corrections and overrides the
// corrected axes of cmd. In advance mode only the lateral axis is bounded.
func (c *Controller) bound(task Task, cmd *VelocityCommand, dt time.Duration) Task {
	box := c.cfg.Box
	if box == nil || c.cfg.Mode == ModeHover {
		return task
	}

	offsets := [2]float64{task.Position.X - box.Center.X, task.Position.Y - box.Center.Y}
	limits := [2]float64{box.XLimit, box.YLimit}
	components := [2]*float64{&cmd.Forward, &cmd.Lateral}

	for axis := range offsets {
		if c.cfg.Mode == ModeAdvance && axis == axisForward {
			continue
		}
		corr := &task.correction[axis]
		if corr.remaining <= 0 && math.Abs(offsets[axis]) > limits[axis] {
			corr.remaining = c.cfg.CorrectionDuration
			if corr.remaining <= 0 {
				corr.remaining = c.cfg.Period
			}
			corr.sign = -math.Copysign(1, offsets[axis])
		}
		if corr.remaining > 0 {
			*components[axis] = corr.sign * c.cfg.CorrectionSpeed
			corr.remaining -= dt
		}
	}
	return task
}

func clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
