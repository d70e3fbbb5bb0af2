// Package motion flies a Crazyflie by streaming hover setpoints: a
// background thread re-sends the current velocity and height at a fixed
// rate while callers change the velocity.
package motion

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/latest"
)

type motionError uint8

func (e motionError) Error() string {
	return fmt.Sprintf("motion: %s", motionErrorString[e])
}

const (
	ErrorNotFlying motionError = iota
	ErrorAlreadyFlying
	ErrorInvalidVelocity
	ErrorInvalidHeight
	ErrorInvalidRadius
)

var motionErrorString = map[motionError]string{
	ErrorNotFlying:       "not flying",
	ErrorAlreadyFlying:   "already flying",
	ErrorInvalidVelocity: "velocity must be positive",
	ErrorInvalidHeight:   "height must be positive",
	ErrorInvalidRadius:   "radius must be positive",
}

const (
	DefaultHeight   = 0.3
	DefaultVelocity = 0.2
	DefaultRate     = 100 * time.Millisecond
)

// Setpointer is the part of a Crazyflie the commander drives.
type Setpointer interface {
	HoverSetpointSend(vx, vy, yawrate, zDistance float32) error
	StopSetpointSend() error
	NotifySetpointStop(remainValidMillis uint32) error
}

type Config struct {
	Height   float64       // m, reached by TakeOff
	Velocity float64       // m/s, for take-off, landing and Move
	Rate     time.Duration // setpoint period
}

func DefaultConfig() Config {
	return Config{Height: DefaultHeight, Velocity: DefaultVelocity, Rate: DefaultRate}
}

type velocity struct {
	vx, vy, vz float64
}

// Commander is safe for concurrent use. Stop and Land may be called any
// number of times; only the first lands.
type Commander struct {
	cf  Setpointer
	cfg Config

	current latest.Value[velocity]

	lock   sync.Mutex
	height float64
	flying bool
	landed bool

	stopThread chan struct{}
	waitGroup  sync.WaitGroup

	landOnce sync.Once
	landErr  error
}

func New(cf Setpointer, cfg Config) (*Commander, error) {
	if !(cfg.Height > 0) {
		return nil, ErrorInvalidHeight
	}
	if !(cfg.Velocity > 0) {
		return nil, ErrorInvalidVelocity
	}
	if cfg.Rate <= 0 {
		cfg.Rate = DefaultRate
	}
	return &Commander{cf: cf, cfg: cfg, stopThread: make(chan struct{})}, nil
}

// Height is the current commanded height.
func (c *Commander) Height() float64 {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.height
}

// TakeOff starts the setpoint thread and climbs to the configured height.
// If ctx ends during the climb the vehicle is left hovering at its
// current height; call Stop to bring it down.
func (c *Commander) TakeOff(ctx context.Context) error {
	c.lock.Lock()
	if c.flying || c.landed {
		c.lock.Unlock()
		return ErrorAlreadyFlying
	}
	c.flying = true
	c.lock.Unlock()

	c.current.Store(velocity{})
	c.waitGroup.Add(1)
	go c.setpointThread()

	log.Printf("motion: take off to %.2f m", c.cfg.Height)
	return c.climb(ctx, c.cfg.Height, c.cfg.Velocity)
}

func (c *Commander) climb(ctx context.Context, distance, speed float64) error {
	c.current.Store(velocity{vz: math.Copysign(speed, distance)})
	err := sleep(ctx, seconds(math.Abs(distance)/speed))
	c.current.Store(velocity{})
	return err
}

func (c *Commander) setpointThread() {
	defer c.waitGroup.Done()

	ticker := time.NewTicker(c.cfg.Rate)
	defer ticker.Stop()
	dt := c.cfg.Rate.Seconds()

	for {
		select {
		case <-c.stopThread:
			return
		case <-ticker.C:
		}

		v, _, _ := c.current.Load()

		c.lock.Lock()
		c.height = math.Max(0, c.height+v.vz*dt)
		z := c.height
		c.lock.Unlock()

		if err := c.cf.HoverSetpointSend(float32(v.vx), float32(v.vy), 0, float32(z)); err != nil {
			log.Printf("motion: setpoint: %s", err)
		}
	}
}

// Emit sets the horizontal body velocity held until the next call.
func (c *Commander) Emit(forward, lateral float64) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if !c.flying || c.landed {
		return ErrorNotFlying
	}
	c.current.Store(velocity{vx: forward, vy: lateral})
	return nil
}

// Hover holds position for d.
func (c *Commander) Hover(ctx context.Context, d time.Duration) error {
	if err := c.Emit(0, 0); err != nil {
		return err
	}
	return sleep(ctx, d)
}

// Move travels distance meters in the (forward, lateral) direction at
// speed, then hovers.
func (c *Commander) Move(ctx context.Context, forward, lateral, distance, speed float64) error {
	if !(speed > 0) {
		return ErrorInvalidVelocity
	}
	norm := math.Hypot(forward, lateral)
	if norm == 0 || distance == 0 {
		return c.Emit(0, 0)
	}

	if err := c.Emit(speed*forward/norm, speed*lateral/norm); err != nil {
		return err
	}
	return c.halt(sleep(ctx, seconds(math.Abs(distance)/speed)))
}

// halt zeroes the velocity after a timed manoeuvre. err, the manoeuvre's
// own result, takes precedence over a failure to halt.
func (c *Commander) halt(err error) error {
	if stopErr := c.Emit(0, 0); stopErr != nil {
		log.Printf("motion: halt: %s", stopErr)
		if err == nil {
			err = stopErr
		}
	}
	return err
}

// Up climbs distance meters at the configured velocity.
func (c *Commander) Up(ctx context.Context, distance float64) error {
	return c.vertical(ctx, distance)
}

// Down descends distance meters at the configured velocity. It refuses to
// go below the ground.
func (c *Commander) Down(ctx context.Context, distance float64) error {
	if distance > c.Height() {
		return ErrorInvalidHeight
	}
	return c.vertical(ctx, -distance)
}

func (c *Commander) vertical(ctx context.Context, distance float64) error {
	c.lock.Lock()
	flying := c.flying && !c.landed
	c.lock.Unlock()
	if !flying {
		return ErrorNotFlying
	}
	if distance == 0 {
		return nil
	}
	return c.halt(c.climb(ctx, distance, c.cfg.Velocity))
}

// Circle flies degrees of arc on a circle of radius at speed without
// turning the nose: the horizontal velocity rotates every setpoint period.
// The circle starts heading forward and curves right or left.
func (c *Commander) Circle(ctx context.Context, radius, speed, degrees float64, right bool) error {
	if !(speed > 0) {
		return ErrorInvalidVelocity
	}
	if !(radius > 0) {
		return ErrorInvalidRadius
	}
	omega := speed / radius
	if right {
		omega = -omega
	}
	total := seconds(2 * math.Pi * radius * math.Abs(degrees) / 360 / speed)

	if err := c.Emit(speed, 0); err != nil {
		return err
	}
	ticker := time.NewTicker(c.cfg.Rate)
	defer ticker.Stop()
	deadline := time.NewTimer(total)
	defer deadline.Stop()
	start := time.Now()

	for {
		select {
		case <-ctx.Done():
			return c.halt(ctx.Err())
		case <-deadline.C:
			return c.halt(nil)
		case now := <-ticker.C:
			theta := omega * now.Sub(start).Seconds()
			if err := c.Emit(speed*math.Cos(theta), speed*math.Sin(theta)); err != nil {
				return err
			}
		}
	}
}

// Land descends at the configured velocity, stops the setpoint thread and
// cuts the motors. It does not honour cancellation.
func (c *Commander) Land() error {
	c.landOnce.Do(func() {
		c.landErr = c.land()
	})
	return c.landErr
}

// Stop is Land.
func (c *Commander) Stop() error {
	return c.Land()
}

func (c *Commander) land() error {
	c.lock.Lock()
	flying := c.flying
	c.landed = true
	c.lock.Unlock()

	if flying {
		log.Printf("motion: landing from %.2f m", c.Height())
		c.climb(context.Background(), -c.Height(), c.cfg.Velocity)

		c.lock.Lock()
		c.flying = false
		c.lock.Unlock()

		close(c.stopThread)
		c.waitGroup.Wait()
	}

	if err := c.cf.StopSetpointSend(); err != nil {
		return err
	}
	return c.cf.NotifySetpointStop(0)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
