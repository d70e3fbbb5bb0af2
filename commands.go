package main

import (
	"time"

	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/avoidance"
	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/deck"
	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/mission"
	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/motion"

	"github.com/urfave/cli"
)

// Largest patrol box half-extent accepted without --box-max.
const patrolBoxMax = 1.0

func commands() []cli.Command {
	return []cli.Command{
		{
			Name:  "takeoff",
			Usage: "Take off, hover and land",
			Flags: append(vehicleFlags(),
				cli.DurationFlag{
					Name:  "time, t",
					Value: 3 * time.Second,
					Usage: "Time to hover before landing",
				},
			),
			Action: takeoffCommand,
		},
		{
			Name:  "square",
			Usage: "Fly a square: forward, left, back and right, then land",
			Flags: append(vehicleFlags(),
				cli.Float64Flag{
					Name:  "distance, d",
					Value: 0.5,
					Usage: "Side of the square in meters",
				},
				cli.Float64Flag{
					Name:  "step",
					Value: 0.1,
					Usage: "Length of each move in meters, with a pause between moves",
				},
			),
			Action: squareCommand,
		},
		taskCommand(avoidance.ModeHover, "hover-avoid", "Hover in place and back away from anything that comes close"),
		taskCommand(avoidance.ModeAdvance, "advance", "Fly forward to a goal, pushed away from obstacles"),
		taskCommand(avoidance.ModePatrol, "patrol", "Fly inside a boundary box, pushed away from obstacles"),
		{
			Name:   "mission",
			Usage:  "Visit random waypoints in a chain of boxes, then land",
			Flags:  missionFlags(true),
			Action: missionCommand,
		},
		{
			Name:   "wander",
			Usage:  "Fly to random points inside one box until the run time is up, then land",
			Flags:  missionFlags(false),
			Action: wanderCommand,
		},
		{
			Name:  "tour",
			Usage: "Fly forward, up, around, down, left and forward again, then land",
			Flags: append(vehicleFlags(),
				cli.Float64Flag{
					Name:  "speed",
					Value: mission.DefaultConfig().Velocity,
					Usage: "Speed of the forward legs in m/s",
				},
				cli.DurationFlag{
					Name:  "pause",
					Value: time.Second,
					Usage: "Hover between manoeuvres",
				},
			),
			Action: tourCommand,
		},
	}
}

// missionFlags are shared by mission and wander; chain adds the box chain.
func missionFlags(chain bool) []cli.Flag {
	defaults := mission.DefaultConfig()

	flags := append(vehicleFlags(),
		cli.Int64Flag{
			Name:  "seed",
			Usage: "Random seed, 0 for a different route every flight",
		},
		cli.Float64Flag{
			Name:  "box-limit",
			Value: defaults.BoxLimit,
			Usage: "Half-extent of a box in meters",
		},
		cli.Float64Flag{
			Name:  "box-max",
			Value: defaults.GlobalMax,
			Usage: "Cap on any box half-extent in meters",
		},
		cli.Float64Flag{
			Name:  "speed",
			Value: defaults.Velocity,
			Usage: "Speed between points in m/s",
		},
		cli.DurationFlag{
			Name:  "dwell",
			Value: defaults.Dwell,
			Usage: "Hover at every point",
		},
	)
	if chain {
		return append(flags,
			cli.IntFlag{
				Name:  "boxes",
				Value: defaults.Boxes,
				Usage: "Number of boxes",
			},
			cli.IntFlag{
				Name:  "waypoints",
				Value: defaults.Waypoints,
				Usage: "Random waypoints per box",
			},
		)
	}
	return append(flags,
		cli.DurationFlag{
			Name:  "run-time",
			Value: defaults.RunTime,
			Usage: "Keep wandering this long",
		},
	)
}

func vehicleFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "uri, u",
			Value: cfg.URI,
			Usage: "Crazyflie link, radio://<dongle>/<channel>/<250K|1M|2M>/<address> or usb://<index>",
		},
		cli.StringFlag{
			Name:  "cache",
			Value: cfg.Cache,
			Usage: "TOC cache folder (default ~/.crazyflie-cache)",
		},
		cli.StringFlag{
			Name:  "deck",
			Value: deck.Flow2 + "," + deck.Multiranger,
			Usage: "Decks to wait for, comma separated; any one attached is enough. Empty to skip",
		},
		cli.BoolTFlag{
			Name:  "arm",
			Usage: "Arm the Crazyflie before take-off",
		},
		cli.Float64Flag{
			Name:  "height",
			Value: motion.DefaultHeight,
			Usage: "Flight height in meters",
		},
		cli.Float64Flag{
			Name:  "velocity",
			Value: motion.DefaultVelocity,
			Usage: "Take-off, landing and move velocity in m/s",
		},
		cli.BoolFlag{
			Name:  "sim",
			Usage: "Fly a simulated Crazyflie instead of a real one",
		},
		cli.StringSliceFlag{
			Name:  "obstacle",
			Usage: "Simulated obstacle as minX,minY,maxX,maxY in meters. May be repeated",
		},
		cli.StringSliceFlag{
			Name:  "ceiling",
			Usage: "Simulated overhead obstacle as minX,minY,maxX,maxY,clearance in meters. May be repeated",
		},
	}
}

func taskCommand(mode avoidance.Mode, name, usage string) cli.Command {
	defaults := avoidance.DefaultConfig(mode)

	flags := append(vehicleFlags(),
		cli.StringFlag{
			Name:  "listen, l",
			Value: cfg.Listen,
			Usage: "Serve the ground station on this address, e.g. 127.0.0.1:8000",
		},
		cli.Float64Flag{
			Name:  "threshold",
			Value: defaults.Threshold,
			Usage: "Obstacles closer than this many meters repel the Crazyflie",
		},
		cli.Float64Flag{
			Name:  "avoid-speed",
			Value: defaults.AvoidSpeed,
			Usage: "Speed away from each close obstacle in m/s",
		},
		cli.Float64Flag{
			Name:  "max-speed",
			Value: defaults.MaxSpeed,
			Usage: "Speed limit per axis in m/s",
		},
		cli.DurationFlag{
			Name:  "period",
			Value: defaults.Period,
			Usage: "Controller tick period",
		},
		cli.DurationFlag{
			Name:  "time-limit",
			Value: defaults.TimeLimit,
			Usage: "Land after this long, 0 for no limit",
		},
		cli.DurationFlag{
			Name:  "stale-after",
			Value: defaults.StaleAfter,
			Usage: "Ignore sensor data older than this",
		},
	)

	if mode != avoidance.ModeHover {
		flags = append(flags,
			cli.Float64Flag{
				Name:  "forward-speed",
				Value: defaults.ForwardSpeed,
				Usage: "Forward speed when nothing is in the way, in m/s",
			},
			cli.Float64Flag{
				Name:  "sidestep",
				Value: defaults.SidestepSpeed,
				Usage: "Lateral speed toward the clearer side when blocked in front, 0 to disable",
			},
			cli.Float64Flag{
				Name:  "correction-speed",
				Value: defaults.CorrectionSpeed,
				Usage: "Speed back toward the box center after crossing its boundary",
			},
			cli.DurationFlag{
				Name:  "correction-time",
				Value: defaults.CorrectionDuration,
				Usage: "How long a boundary correction lasts",
			},
		)
	}

	switch mode {
	case avoidance.ModeAdvance:
		flags = append(flags,
			cli.Float64Flag{
				Name:  "goal",
				Value: defaults.Goal,
				Usage: "Distance to fly forward in meters",
			},
			cli.Float64Flag{
				Name:  "box-max",
				Usage: "Keep within this many meters of the path on each axis, 0 for no box",
			},
		)
	case avoidance.ModePatrol:
		flags = append(flags,
			cli.Float64Flag{
				Name:  "box-x",
				Value: defaults.Box.XLimit,
				Usage: "Forward half-extent of the box in meters",
			},
			cli.Float64Flag{
				Name:  "box-y",
				Value: defaults.Box.YLimit,
				Usage: "Lateral half-extent of the box in meters",
			},
			cli.Float64Flag{
				Name:  "box-max",
				Value: patrolBoxMax,
				Usage: "Cap on either half-extent of the box in meters",
			},
		)
	}

	return cli.Command{
		Name:   name,
		Usage:  usage,
		Flags:  flags,
		Action: runTask(mode),
	}
}
