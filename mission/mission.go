// Package mission flies scripted routes without obstacle avoidance: a chain
// of boxes visited through random waypoints, a random wander inside one
// box, and a fixed tour of every direction.
package mission

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/avoidance"
)

type missionError uint8

func (e missionError) Error() string {
	return fmt.Sprintf("mission: %s", missionErrorString[e])
}

const (
	ErrorInvalidCount missionError = iota
	ErrorInvalidLimit
	ErrorInvalidVelocity
	ErrorInvalidRunTime
)

var missionErrorString = map[missionError]string{
	ErrorInvalidCount:    "need at least one box and no negative waypoint count",
	ErrorInvalidLimit:    "box limits must be positive",
	ErrorInvalidVelocity: "velocity must be positive",
	ErrorInvalidRunTime:  "run time must be positive",
}

type Config struct {
	Boxes     int           // boxes chained by Plan
	Waypoints int           // random waypoints per box
	BoxLimit  float64       // m, half-extent of a box and corner offset of its destination
	GlobalMax float64       // m, cap on any box half-extent
	Velocity  float64       // m/s
	Dwell     time.Duration // hover at every point
	RunTime   time.Duration // Wander only
}

func DefaultConfig() Config {
	return Config{
		Boxes:     2,
		Waypoints: 2,
		BoxLimit:  0.2,
		GlobalMax: 0.5,
		Velocity:  0.5,
		Dwell:     4 * time.Second,
		RunTime:   30 * time.Second,
	}
}

func (c Config) Validate() error {
	if c.Boxes < 1 || c.Waypoints < 0 {
		return ErrorInvalidCount
	}
	if !(c.BoxLimit > 0) || math.IsInf(c.BoxLimit, 0) || !(c.GlobalMax > 0) || math.IsInf(c.GlobalMax, 0) {
		return ErrorInvalidLimit
	}
	if !(c.Velocity > 0) || math.IsInf(c.Velocity, 0) {
		return ErrorInvalidVelocity
	}
	return nil
}

// Box is one stage of a mission.
type Box struct {
	Bounds      avoidance.BoundaryBox
	Waypoints   []avoidance.Vec
	Destination avoidance.Vec
}

// Plan chains cfg.Boxes boxes from start. Each box is centred where the
// previous one ended; its destination is a random corner BoxLimit away and
// its waypoints are uniform inside the box derived from the two.
func Plan(cfg Config, start avoidance.Vec, rng *rand.Rand) ([]Box, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	boxes := make([]Box, 0, cfg.Boxes)
	center := start
	for i := 0; i < cfg.Boxes; i++ {
		dest := avoidance.Vec{
			X: center.X + corner(rng, cfg.BoxLimit),
			Y: center.Y + corner(rng, cfg.BoxLimit),
		}
		bounds, err := avoidance.NewBoundaryBox(center, dest, cfg.GlobalMax)
		if err != nil {
			return nil, err
		}

		b := Box{Bounds: bounds, Destination: dest}
		for j := 0; j < cfg.Waypoints; j++ {
			b.Waypoints = append(b.Waypoints, uniform(rng, bounds))
		}
		boxes = append(boxes, b)
		center = dest
	}
	return boxes, nil
}

func corner(rng *rand.Rand, limit float64) float64 {
	if rng.Intn(2) == 0 {
		return -limit
	}
	return limit
}

func uniform(rng *rand.Rand, b avoidance.BoundaryBox) avoidance.Vec {
	return avoidance.Vec{
		X: b.Center.X + (2*rng.Float64()-1)*b.XLimit,
		Y: b.Center.Y + (2*rng.Float64()-1)*b.YLimit,
	}
}

// Mover is the part of motion.Commander a mission needs.
type Mover interface {
	Move(ctx context.Context, forward, lateral, distance, speed float64) error
	Hover(ctx context.Context, d time.Duration) error
}

// Fly visits every waypoint and then the destination of each box in turn,
// dwelling at each. It returns where the vehicle should be.
func Fly(ctx context.Context, m Mover, boxes []Box, from avoidance.Vec, velocity float64, dwell time.Duration) (avoidance.Vec, error) {
	if !(velocity > 0) {
		return from, ErrorInvalidVelocity
	}
	at := from
	for i, b := range boxes {
		log.Printf("mission: box %d of %d, %d waypoints", i+1, len(boxes), len(b.Waypoints))
		points := append(append([]avoidance.Vec(nil), b.Waypoints...), b.Destination)
		for _, p := range points {
			if err := visit(ctx, m, at, p, velocity, dwell); err != nil {
				return at, err
			}
			at = p
		}
	}
	return at, nil
}

// Wander flies to uniform random points inside a box of half-extent
// BoxLimit (capped at GlobalMax) around from until RunTime has passed. The
// run time expiring is not an error.
func Wander(ctx context.Context, m Mover, cfg Config, from avoidance.Vec, rng *rand.Rand) (avoidance.Vec, error) {
	if err := cfg.Validate(); err != nil {
		return from, err
	}
	if cfg.RunTime <= 0 {
		return from, ErrorInvalidRunTime
	}
	limit := math.Min(cfg.BoxLimit, cfg.GlobalMax)
	box := avoidance.BoundaryBox{Center: from, XLimit: limit, YLimit: limit}

	runCtx, cancel := context.WithTimeout(ctx, cfg.RunTime)
	defer cancel()

	at := from
	for runCtx.Err() == nil {
		p := uniform(rng, box)
		if err := visit(runCtx, m, at, p, cfg.Velocity, cfg.Dwell); err != nil {
			if ctx.Err() == nil && runCtx.Err() != nil {
				return at, nil
			}
			return at, err
		}
		at = p
	}
	return at, nil
}

func visit(ctx context.Context, m Mover, from, to avoidance.Vec, velocity float64, dwell time.Duration) error {
	dx, dy := to.X-from.X, to.Y-from.Y
	log.Printf("mission: to (%.2f, %.2f)", to.X, to.Y)
	if d := math.Hypot(dx, dy); d > 0 {
		if err := m.Move(ctx, dx, dy, d, velocity); err != nil {
			return err
		}
	}
	return m.Hover(ctx, dwell)
}
