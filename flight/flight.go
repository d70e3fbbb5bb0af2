// Package flight runs an avoidance controller against a live sensor
// source and motion sink until the task ends.
package flight

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/avoidance"
	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/latest"
	"github.com/google/uuid"
)

// Source supplies the newest sensor snapshot and when it was captured.
type Source interface {
	Latest() (avoidance.Snapshot, time.Time, bool)
}

// Sink moves the vehicle. Stop must bring it down and stay down.
type Sink interface {
	Emit(forward, lateral float64) error
	Stop() error
}

// Tick is the telemetry record of one controller step.
type Tick struct {
	TaskID   string                    `json:"task_id"`
	Mode     string                    `json:"mode"`
	Time     time.Time                 `json:"time"`
	Task     avoidance.Task            `json:"task"`
	State    string                    `json:"state"`
	Snapshot avoidance.Snapshot        `json:"snapshot"`
	Stale    bool                      `json:"stale"`
	Command  avoidance.VelocityCommand `json:"command"`
	Stopped  bool                      `json:"stopped"`
}

type Runner struct {
	ID         string
	controller *avoidance.Controller
	source     Source
	sink       Sink

	// OnTick, when set, is called after every step on the loop goroutine.
	OnTick func(Tick)

	status   latest.Value[Tick]
	stopOnce sync.Once
	stopErr  error
}

func NewRunner(cfg avoidance.Config, source Source, sink Sink) (*Runner, error) {
	controller, err := avoidance.NewController(cfg)
	if err != nil {
		return nil, err
	}
	return &Runner{
		ID:         uuid.NewString(),
		controller: controller,
		source:     source,
		sink:       sink,
	}, nil
}

func (r *Runner) Config() avoidance.Config {
	return r.controller.Config()
}

// Status returns the record of the most recent tick.
func (r *Runner) Status() (Tick, bool) {
	tick, _, ok := r.status.Load()
	return tick, ok
}

func (r *Runner) stop() error {
	r.stopOnce.Do(func() {
		r.stopErr = r.sink.Stop()
	})
	return r.stopErr
}

// Run steps the controller once per period until a terminal state, then
// stops the sink exactly once and returns the final task record.
// Cancelling ctx ends the task as UserCancelled on the next tick, with no
// further movement commands.
func (r *Runner) Run(ctx context.Context) (avoidance.Task, error) {
	cfg := r.controller.Config()
	task := r.controller.Start()
	defer r.stop()

	log.Printf("task %s: %s started", r.ID, cfg.Mode)

	ticker := time.NewTicker(cfg.Period)
	defer ticker.Stop()

	last := time.Now()
	wasStale := false
	for {
		cancelled := false
		select {
		case <-ctx.Done():
			cancelled = true
		case <-ticker.C:
			cancelled = ctx.Err() != nil
		}

		now := time.Now()
		dt := now.Sub(last)
		last = now

		snapshot, stale := r.snapshot(now, cfg.StaleAfter)
		if stale != wasStale {
			if stale {
				log.Printf("task %s: sensor data stale, treating as no obstacles", r.ID)
			} else {
				log.Printf("task %s: sensor data recovered", r.ID)
			}
			wasStale = stale
		}

		var out avoidance.Output
		task, out = r.controller.Step(task, avoidance.Input{Snapshot: snapshot, Dt: dt, Cancelled: cancelled})

		if out.Emit {
			if err := r.sink.Emit(out.Command.Forward, out.Command.Lateral); err != nil {
				log.Printf("task %s: emit: %s", r.ID, err)
			}
		}

		tick := Tick{
			TaskID:   r.ID,
			Mode:     cfg.Mode.String(),
			Time:     now,
			Task:     task,
			State:    task.State.String(),
			Snapshot: snapshot,
			Stale:    stale,
			Command:  out.Command,
			Stopped:  out.Stop,
		}
		r.status.Store(tick)
		if r.OnTick != nil {
			r.OnTick(tick)
		}

		if out.Stop || task.State.Terminal() {
			log.Printf("task %s: %s after %d ticks (%s) at x=%.2f y=%.2f",
				r.ID, task.State, task.Tick, task.Elapsed.Round(time.Millisecond), task.Position.X, task.Position.Y)
			return task, r.stop()
		}
	}
}

// snapshot reads the source, replacing missing or stale data with an
// all-absent reading.
func (r *Runner) snapshot(now time.Time, staleAfter time.Duration) (avoidance.Snapshot, bool) {
	snapshot, stamp, ok := r.source.Latest()
	if !ok || (staleAfter > 0 && now.Sub(stamp) > staleAfter) {
		return avoidance.Snapshot{}, true
	}
	return snapshot, false
}
