package mission

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/avoidance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePilot integrates every move into a position and records the calls.
type fakePilot struct {
	lock   sync.Mutex
	at     avoidance.Vec
	height float64
	calls  []string
	points []avoidance.Vec
	hovers int
	fail   string
}

func (f *fakePilot) record(name string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.calls = append(f.calls, name)
	if name == f.fail {
		return assert.AnError
	}
	return nil
}

func (f *fakePilot) Move(ctx context.Context, forward, lateral, distance, speed float64) error {
	if err := f.record("move"); err != nil {
		return err
	}
	norm := math.Hypot(forward, lateral)
	f.lock.Lock()
	f.at.X += forward / norm * distance
	f.at.Y += lateral / norm * distance
	f.points = append(f.points, f.at)
	f.lock.Unlock()
	return ctx.Err()
}

func (f *fakePilot) Hover(ctx context.Context, d time.Duration) error {
	if err := f.record("hover"); err != nil {
		return err
	}
	f.lock.Lock()
	f.hovers++
	f.lock.Unlock()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func (f *fakePilot) Up(ctx context.Context, distance float64) error {
	f.height += distance
	return f.record("up")
}

func (f *fakePilot) Down(ctx context.Context, distance float64) error {
	f.height -= distance
	return f.record("down")
}

func (f *fakePilot) Circle(ctx context.Context, radius, speed, degrees float64, right bool) error {
	return f.record("circle")
}

func fast() Config {
	cfg := DefaultConfig()
	cfg.Dwell = 0
	return cfg
}

func TestPlan(t *testing.T) {
	cfg := fast()
	cfg.Boxes = 3
	cfg.Waypoints = 4
	start := avoidance.Vec{X: 1, Y: -1}

	boxes, err := Plan(cfg, start, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Len(t, boxes, 3)

	center := start
	for i, b := range boxes {
		assert.Equal(t, center, b.Bounds.Center, "box %d starts where the last ended", i)
		assert.InDelta(t, cfg.BoxLimit, math.Abs(b.Destination.X-center.X), 1e-9)
		assert.InDelta(t, cfg.BoxLimit, math.Abs(b.Destination.Y-center.Y), 1e-9)
		assert.InDelta(t, cfg.BoxLimit, b.Bounds.XLimit, 1e-9)
		assert.True(t, b.Bounds.Contains(b.Destination))
		require.Len(t, b.Waypoints, 4)
		for _, p := range b.Waypoints {
			assert.True(t, b.Bounds.Contains(p), "waypoint %v in box %d", p, i)
		}
		center = b.Destination
	}
}

func TestPlanClipsToGlobalMax(t *testing.T) {
	cfg := fast()
	cfg.BoxLimit = 2
	cfg.GlobalMax = 0.5
	boxes, err := Plan(cfg, avoidance.Vec{}, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	for _, b := range boxes {
		assert.Equal(t, 0.5, b.Bounds.XLimit)
		assert.Equal(t, 0.5, b.Bounds.YLimit)
	}
}

func TestPlanIsSeeded(t *testing.T) {
	a, err := Plan(fast(), avoidance.Vec{}, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	b, err := Plan(fast(), avoidance.Vec{}, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"no boxes", func(c *Config) { c.Boxes = 0 }, ErrorInvalidCount},
		{"negative waypoints", func(c *Config) { c.Waypoints = -1 }, ErrorInvalidCount},
		{"zero box limit", func(c *Config) { c.BoxLimit = 0 }, ErrorInvalidLimit},
		{"NaN global max", func(c *Config) { c.GlobalMax = math.NaN() }, ErrorInvalidLimit},
		{"zero velocity", func(c *Config) { c.Velocity = 0 }, ErrorInvalidVelocity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			assert.Equal(t, tt.want, cfg.Validate())
			_, err := Plan(cfg, avoidance.Vec{}, rand.New(rand.NewSource(1)))
			assert.Equal(t, tt.want, err)
		})
	}
	assert.NoError(t, DefaultConfig().Validate())
}

func TestFlyVisitsEveryPoint(t *testing.T) {
	cfg := fast()
	boxes, err := Plan(cfg, avoidance.Vec{}, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	f := &fakePilot{}
	end, err := Fly(context.Background(), f, boxes, avoidance.Vec{}, cfg.Velocity, cfg.Dwell)
	require.NoError(t, err)

	var want []avoidance.Vec
	for _, b := range boxes {
		want = append(want, b.Waypoints...)
		want = append(want, b.Destination)
	}
	require.Len(t, f.points, len(want))
	for i := range want {
		assert.InDelta(t, want[i].X, f.points[i].X, 1e-9)
		assert.InDelta(t, want[i].Y, f.points[i].Y, 1e-9)
	}
	assert.Equal(t, boxes[len(boxes)-1].Destination, end)
	assert.Equal(t, len(want), f.hovers, "dwells at every point")
}

func TestFlyStopsOnError(t *testing.T) {
	boxes, err := Plan(fast(), avoidance.Vec{}, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	f := &fakePilot{fail: "move"}
	_, err = Fly(context.Background(), f, boxes, avoidance.Vec{}, 0.5, 0)
	assert.Equal(t, assert.AnError, err)
	assert.Equal(t, []string{"move"}, f.calls)
}

func TestWander(t *testing.T) {
	cfg := fast()
	cfg.Dwell = 5 * time.Millisecond
	cfg.RunTime = 50 * time.Millisecond
	from := avoidance.Vec{X: 0.3}
	f := &fakePilot{at: from}

	start := time.Now()
	_, err := Wander(context.Background(), f, cfg, from, rand.New(rand.NewSource(5)))
	require.NoError(t, err, "running out of time is not an error")
	assert.GreaterOrEqual(t, time.Since(start), cfg.RunTime)

	box := avoidance.BoundaryBox{Center: from, XLimit: cfg.BoxLimit, YLimit: cfg.BoxLimit}
	require.NotEmpty(t, f.points)
	for _, p := range f.points {
		assert.True(t, box.Contains(p), "%v", p)
	}
}

func TestWanderCancelled(t *testing.T) {
	cfg := fast()
	cfg.Dwell = time.Second
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := Wander(ctx, &fakePilot{}, cfg, avoidance.Vec{}, rand.New(rand.NewSource(5)))
	assert.ErrorIs(t, err, context.Canceled)

	cfg.RunTime = 0
	_, err = Wander(context.Background(), &fakePilot{}, cfg, avoidance.Vec{}, rand.New(rand.NewSource(5)))
	assert.Equal(t, ErrorInvalidRunTime, err)
}

func TestTour(t *testing.T) {
	f := &fakePilot{height: 0.3}
	require.NoError(t, Tour(context.Background(), f, TourSteps(0.5, time.Millisecond)))

	assert.Equal(t, []string{
		"hover", "move", "hover", "up", "hover", "circle", "down", "hover", "move", "hover", "move",
	}, f.calls)
	assert.InDelta(t, 0.1, f.height, 1e-9)
	assert.InDelta(t, 0.6, f.at.X, 1e-9)
	assert.InDelta(t, 0.3, f.at.Y, 1e-9)
}

func TestTourStopsOnError(t *testing.T) {
	f := &fakePilot{fail: "up"}
	assert.Equal(t, assert.AnError, Tour(context.Background(), f, TourSteps(0.5, 0)))
	assert.Equal(t, []string{"hover", "move", "hover", "up"}, f.calls)
}
