package main

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/avoidance"
	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/mission"

	"github.com/urfave/cli"
)

func missionConfig(c *cli.Context, chain bool) mission.Config {
	mc := mission.DefaultConfig()
	mc.BoxLimit = c.Float64("box-limit")
	mc.GlobalMax = c.Float64("box-max")
	mc.Velocity = c.Float64("speed")
	mc.Dwell = c.Duration("dwell")
	if chain {
		mc.Boxes = c.Int("boxes")
		mc.Waypoints = c.Int("waypoints")
	} else {
		mc.RunTime = c.Duration("run-time")
	}
	return mc
}

func randomSource(c *cli.Context) *rand.Rand {
	seed := c.Int64("seed")
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log.Printf("Random seed %d", seed)
	return rand.New(rand.NewSource(seed))
}

func missionCommand(c *cli.Context) error {
	mc := missionConfig(c, true)
	boxes, err := mission.Plan(mc, avoidance.Vec{}, randomSource(c))
	if err != nil {
		return err
	}
	return fly(c, func(ctx context.Context, v *vehicle) error {
		end, err := mission.Fly(ctx, v.commander, boxes, avoidance.Vec{}, mc.Velocity, mc.Dwell)
		log.Printf("Mission ended at (%.2f, %.2f)", end.X, end.Y)
		return err
	})
}

func wanderCommand(c *cli.Context) error {
	mc := missionConfig(c, false)
	if err := mc.Validate(); err != nil {
		return err
	}
	if mc.RunTime <= 0 {
		return mission.ErrorInvalidRunTime
	}
	rng := randomSource(c)
	return fly(c, func(ctx context.Context, v *vehicle) error {
		_, err := mission.Wander(ctx, v.commander, mc, avoidance.Vec{}, rng)
		return err
	})
}

func tourCommand(c *cli.Context) error {
	steps := mission.TourSteps(c.Float64("speed"), c.Duration("pause"))
	return fly(c, func(ctx context.Context, v *vehicle) error {
		return mission.Tour(ctx, v.commander, steps)
	})
}
