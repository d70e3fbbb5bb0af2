package main

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/avoidance"
	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/flight"
	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/station"

	"github.com/urfave/cli"
)

const stepPause = 200 * time.Millisecond

// fly opens the vehicle, takes off and calls f. The vehicle lands however
// f returns. An interrupted flight is not an error.
func fly(c *cli.Context, f func(ctx context.Context, v *vehicle) error) error {
	ctx, cancel := signalContext()
	defer cancel()

	v, err := openVehicle(ctx, c)
	if err != nil {
		return err
	}
	defer v.Close()

	if err := v.commander.TakeOff(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	err = f(ctx, v)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func takeoffCommand(c *cli.Context) error {
	return fly(c, func(ctx context.Context, v *vehicle) error {
		return v.commander.Hover(ctx, c.Duration("time"))
	})
}

func squareCommand(c *cli.Context) error {
	side := c.Float64("distance")
	step := c.Float64("step")
	speed := c.Float64("velocity")
	if !(side > 0) || !(step > 0) {
		return fmt.Errorf("distance and step must be greater than zero")
	}

	legs := []struct {
		name             string
		forward, lateral float64
	}{
		{"forward", 1, 0},
		{"left", 0, 1},
		{"back", -1, 0},
		{"right", 0, -1},
	}

	return fly(c, func(ctx context.Context, v *vehicle) error {
		for _, leg := range legs {
			log.Printf("Moving %s %.2f m", leg.name, side)
			for done := 0.0; done < side-1e-9; done += step {
				d := math.Min(step, side-done)
				if err := v.commander.Move(ctx, leg.forward, leg.lateral, d, speed); err != nil {
					return err
				}
				if err := v.commander.Hover(ctx, stepPause); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func taskConfig(c *cli.Context, mode avoidance.Mode) (avoidance.Config, error) {
	tc := avoidance.DefaultConfig(mode)
	tc.Threshold = c.Float64("threshold")
	tc.AvoidSpeed = c.Float64("avoid-speed")
	tc.MaxSpeed = c.Float64("max-speed")
	tc.Period = c.Duration("period")
	tc.TimeLimit = c.Duration("time-limit")
	tc.StaleAfter = c.Duration("stale-after")

	if mode != avoidance.ModeHover {
		tc.ForwardSpeed = c.Float64("forward-speed")
		tc.SidestepSpeed = c.Float64("sidestep")
		tc.CorrectionSpeed = c.Float64("correction-speed")
		tc.CorrectionDuration = c.Duration("correction-time")
	}

	switch mode {
	case avoidance.ModeAdvance:
		tc.Goal = c.Float64("goal")
		if boxMax := c.Float64("box-max"); boxMax > 0 {
			box, err := avoidance.NewBoundaryBox(avoidance.Vec{}, avoidance.Vec{X: tc.Goal}, boxMax)
			if err != nil {
				return tc, err
			}
			tc.Box = &box
		}
	case avoidance.ModePatrol:
		reach := avoidance.Vec{X: c.Float64("box-x"), Y: c.Float64("box-y")}
		if !(reach.X > 0) || !(reach.Y > 0) {
			return tc, avoidance.ErrorInvalidBoundary
		}
		box, err := avoidance.NewBoundaryBox(avoidance.Vec{}, reach, c.Float64("box-max"))
		if err != nil {
			return tc, err
		}
		tc.Box = &box
	}

	return tc, tc.Validate()
}

func runTask(mode avoidance.Mode) cli.ActionFunc {
	return func(c *cli.Context) error {
		_, _, err := flyTask(c, mode)
		return err
	}
}

// flyTask flies one avoidance task and returns its final record along with
// the vehicle, which has landed by then. Any terminal state is a success.
func flyTask(c *cli.Context, mode avoidance.Mode) (avoidance.Task, *vehicle, error) {
	tc, err := taskConfig(c, mode)
	if err != nil {
		return avoidance.Task{}, nil, err
	}

	var task avoidance.Task
	var flown *vehicle
	err = fly(c, func(ctx context.Context, v *vehicle) error {
		flown = v
		taskCtx, abort := context.WithCancel(ctx)
		defer abort()

		runner, err := flight.NewRunner(tc, v.source, v.commander)
		if err != nil {
			return err
		}

		if listen := c.String("listen"); listen != "" {
			srv := station.New(v.params)
			srv.SetTask(runner, abort)
			runner.OnTick = srv.Publish
			go func() {
				if err := srv.ListenAndServe(ctx, listen); err != nil {
					log.Printf("ground station: %s", err)
				}
			}()
		}

		task, err = runner.Run(taskCtx)
		if status, ok := runner.Status(); ok {
			log.Printf("task %s: last reading %s", runner.ID, readingString(status.Snapshot.Reading))
		}
		if err != nil {
			return err
		}
		log.Printf("task %s: %s after %d ticks", runner.ID, task.State, task.Tick)
		if task.State == avoidance.ObstacleAbove {
			log.Printf("task %s: landed for an obstacle above", runner.ID)
		}
		return nil
	})
	return task, flown, err
}

func readingString(r avoidance.Reading) string {
	return fmt.Sprintf("front=%s back=%s left=%s right=%s up=%s", r.Front, r.Back, r.Left, r.Right, r.Up)
}
