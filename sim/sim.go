// Package sim is a point-mass stand-in for a Crazyflie with a multiranger
// deck, flying among axis-aligned box obstacles. It is both a motion sink
// and a sensor source.
package sim

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/avoidance"
)

type simError uint8

func (e simError) Error() string {
	return fmt.Sprintf("sim: %s", simErrorString[e])
}

const (
	ErrorStopped simError = iota
)

var simErrorString = map[simError]string{
	ErrorStopped: "vehicle stopped",
}

// Rangers see no further than this.
const DefaultMaxRange = 4.0

// Box is a wall or pillar occupying [Min, Max] on the horizontal plane.
type Box struct {
	Min avoidance.Vec `json:"min"`
	Max avoidance.Vec `json:"max"`
}

func (b Box) contains(p avoidance.Vec) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// Ceiling is something Clearance meters above the vehicle whenever it is
// within the footprint, such as a hand held over it.
type Ceiling struct {
	Footprint Box     `json:"footprint"`
	Clearance float64 `json:"clearance"`
}

type Options struct {
	Start     avoidance.Vec
	Obstacles []Box
	Ceilings  []Ceiling
	MaxRange  float64
	// HidePosition withholds the position estimate from snapshots so the
	// controller must dead-reckon.
	HidePosition bool
	// Clock replaces time.Now.
	Clock func() time.Time
}

type Vehicle struct {
	opts Options

	lock     sync.Mutex
	position avoidance.Vec
	velocity avoidance.VelocityCommand
	updated  time.Time
	stopped  bool
	emits    int
	stops    int
}

func New(opts Options) *Vehicle {
	if opts.MaxRange <= 0 {
		opts.MaxRange = DefaultMaxRange
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Vehicle{opts: opts, position: opts.Start, updated: opts.Clock()}
}

// integrate moves the vehicle along its velocity up to now. Callers hold
// v.lock.
func (v *Vehicle) integrate() time.Time {
	now := v.opts.Clock()
	dt := now.Sub(v.updated).Seconds()
	if dt > 0 {
		v.position.X += v.velocity.Forward * dt
		v.position.Y += v.velocity.Lateral * dt
	}
	v.updated = now
	return now
}

func (v *Vehicle) Emit(forward, lateral float64) error {
	v.lock.Lock()
	defer v.lock.Unlock()
	if v.stopped {
		return ErrorStopped
	}
	v.integrate()
	v.velocity = avoidance.VelocityCommand{Forward: forward, Lateral: lateral}
	v.emits++
	return nil
}

// Stop lands the vehicle where it is. Every call is counted.
func (v *Vehicle) Stop() error {
	v.lock.Lock()
	defer v.lock.Unlock()
	v.integrate()
	v.velocity = avoidance.VelocityCommand{}
	v.stopped = true
	v.stops++
	return nil
}

func (v *Vehicle) Latest() (avoidance.Snapshot, time.Time, bool) {
	v.lock.Lock()
	defer v.lock.Unlock()
	now := v.integrate()

	p := v.position
	snapshot := avoidance.Snapshot{
		Reading: avoidance.Reading{
			Front: v.cast(p, avoidance.Vec{X: 1}),
			Back:  v.cast(p, avoidance.Vec{X: -1}),
			Left:  v.cast(p, avoidance.Vec{Y: 1}),
			Right: v.cast(p, avoidance.Vec{Y: -1}),
			Up:    v.above(p),
		},
	}
	if !v.opts.HidePosition {
		snapshot.Position = p
		snapshot.HasPosition = true
	}
	return snapshot, now, true
}

// Position is the true position, whatever the snapshots say.
func (v *Vehicle) Position() avoidance.Vec {
	v.lock.Lock()
	defer v.lock.Unlock()
	v.integrate()
	return v.position
}

func (v *Vehicle) Emits() int {
	v.lock.Lock()
	defer v.lock.Unlock()
	return v.emits
}

func (v *Vehicle) Stops() int {
	v.lock.Lock()
	defer v.lock.Unlock()
	return v.stops
}

// cast returns the distance along the axis-aligned direction d to the
// nearest obstacle.
func (v *Vehicle) cast(p, d avoidance.Vec) avoidance.Range {
	nearest := math.Inf(1)
	for _, b := range v.opts.Obstacles {
		if t, ok := hit(p, d, b); ok && t < nearest {
			nearest = t
		}
	}
	if nearest > v.opts.MaxRange {
		return avoidance.NoEcho
	}
	return avoidance.Echo(nearest)
}

// hit intersects the ray p + t*d, t >= 0, with b (slab method).
func hit(p, d avoidance.Vec, b Box) (float64, bool) {
	if b.contains(p) {
		return 0, true
	}
	tmin, tmax := 0.0, math.Inf(1)
	for _, axis := range [2]struct{ p, d, lo, hi float64 }{
		{p.X, d.X, b.Min.X, b.Max.X},
		{p.Y, d.Y, b.Min.Y, b.Max.Y},
	} {
		if axis.d == 0 {
			if axis.p < axis.lo || axis.p > axis.hi {
				return 0, false
			}
			continue
		}
		t1, t2 := (axis.lo-axis.p)/axis.d, (axis.hi-axis.p)/axis.d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin, tmax = math.Max(tmin, t1), math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}

func (v *Vehicle) above(p avoidance.Vec) avoidance.Range {
	nearest := math.Inf(1)
	for _, c := range v.opts.Ceilings {
		if c.Footprint.contains(p) && c.Clearance < nearest {
			nearest = c.Clearance
		}
	}
	if nearest > v.opts.MaxRange {
		return avoidance.NoEcho
	}
	return avoidance.Echo(nearest)
}
