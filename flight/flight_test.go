package flight

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/avoidance"
	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const period = 10 * time.Millisecond

func config(mode avoidance.Mode) avoidance.Config {
	cfg := avoidance.DefaultConfig(mode)
	cfg.Period = period
	cfg.TimeLimit = 5 * time.Second
	return cfg
}

func run(t *testing.T, ctx context.Context, cfg avoidance.Config, v *sim.Vehicle) (avoidance.Task, *Runner) {
	t.Helper()
	r, err := NewRunner(cfg, v, v)
	require.NoError(t, err)
	task, err := r.Run(ctx)
	require.NoError(t, err)
	return task, r
}

func TestGoalStopsOnce(t *testing.T) {
	cfg := config(avoidance.ModeAdvance)
	cfg.ForwardSpeed = 1
	cfg.MaxSpeed = 1
	cfg.Goal = 0.1
	v := sim.New(sim.Options{})

	task, _ := run(t, context.Background(), cfg, v)

	assert.Equal(t, avoidance.GoalReached, task.State)
	assert.Equal(t, 1, v.Stops())
	assert.GreaterOrEqual(t, v.Position().X, 0.1)
}

func TestGoalByDeadReckoning(t *testing.T) {
	cfg := config(avoidance.ModeAdvance)
	cfg.ForwardSpeed = 1
	cfg.MaxSpeed = 1
	cfg.Goal = 0.1
	v := sim.New(sim.Options{HidePosition: true})

	task, _ := run(t, context.Background(), cfg, v)

	assert.Equal(t, avoidance.GoalReached, task.State)
	assert.InDelta(t, 0.1, v.Position().X, 0.05)
}

func TestGoalInsideDerivedBox(t *testing.T) {
	cfg := config(avoidance.ModeAdvance)
	cfg.ForwardSpeed = 1
	cfg.MaxSpeed = 1
	cfg.Goal = 0.3
	box, err := avoidance.NewBoundaryBox(avoidance.Vec{}, avoidance.Vec{X: cfg.Goal}, 0.1)
	require.NoError(t, err)
	cfg.Box = &box
	v := sim.New(sim.Options{})

	task, _ := run(t, context.Background(), cfg, v)

	assert.Equal(t, avoidance.GoalReached, task.State)
	assert.Equal(t, 1, v.Stops())
	assert.GreaterOrEqual(t, v.Position().X, cfg.Goal)
}

func TestCancelStopsWithoutFurtherEmits(t *testing.T) {
	v := sim.New(sim.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	task, _ := run(t, ctx, config(avoidance.ModeHover), v)
	emits := v.Emits()
	time.Sleep(3 * period)

	assert.Equal(t, avoidance.UserCancelled, task.State)
	assert.Equal(t, 1, v.Stops())
	assert.Equal(t, emits, v.Emits())
	assert.Equal(t, uint64(emits+1), task.Tick, "one command per running tick, none on the last")
}

func TestCeilingEndsTask(t *testing.T) {
	v := sim.New(sim.Options{Ceilings: []sim.Ceiling{{
		Footprint: sim.Box{Min: avoidance.Vec{X: -1, Y: -1}, Max: avoidance.Vec{X: 1, Y: 1}},
		Clearance: 0.1,
	}}})

	task, _ := run(t, context.Background(), config(avoidance.ModePatrol), v)

	assert.Equal(t, avoidance.ObstacleAbove, task.State)
	assert.Equal(t, uint64(1), task.Tick)
	assert.Zero(t, v.Emits())
	assert.Equal(t, 1, v.Stops())
}

func TestTimeLimit(t *testing.T) {
	cfg := config(avoidance.ModeHover)
	cfg.TimeLimit = 50 * time.Millisecond
	v := sim.New(sim.Options{})

	task, _ := run(t, context.Background(), cfg, v)

	assert.Equal(t, avoidance.TimeExceeded, task.State)
	assert.GreaterOrEqual(t, task.Elapsed, cfg.TimeLimit)
	assert.Equal(t, 1, v.Stops())
}

// A hand in front of a hovering vehicle pushes it back until it is clear.
func TestHoverAvoidBacksAway(t *testing.T) {
	cfg := config(avoidance.ModeHover)
	cfg.TimeLimit = 500 * time.Millisecond
	v := sim.New(sim.Options{Obstacles: []sim.Box{{
		Min: avoidance.Vec{X: 0.15, Y: -0.5},
		Max: avoidance.Vec{X: 0.3, Y: 0.5},
	}}})

	task, _ := run(t, context.Background(), cfg, v)
	require.Equal(t, avoidance.TimeExceeded, task.State)

	snapshot, _, _ := v.Latest()
	front, ok := snapshot.Reading.Front.Meters()
	require.True(t, ok)
	assert.GreaterOrEqual(t, front, cfg.Threshold)
	assert.Less(t, front, cfg.Threshold+0.15)
	assert.Less(t, v.Position().X, 0.0)
}

func TestPatrolStaysInBox(t *testing.T) {
	cfg := config(avoidance.ModePatrol)
	cfg.ForwardSpeed = 0.5
	cfg.CorrectionSpeed = 0.5
	cfg.Box = &avoidance.BoundaryBox{XLimit: 0.2, YLimit: 0.2}
	cfg.TimeLimit = time.Second
	v := sim.New(sim.Options{})

	r, err := NewRunner(cfg, v, v)
	require.NoError(t, err)
	maxX := 0.0
	r.OnTick = func(tick Tick) {
		if tick.Task.Position.X > maxX {
			maxX = tick.Task.Position.X
		}
	}
	task, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, avoidance.TimeExceeded, task.State)
	assert.Less(t, maxX, 0.2+0.1, "pulled back after crossing the boundary")
}

type fakeSource struct {
	snapshot avoidance.Snapshot
	age      time.Duration
}

func (f fakeSource) Latest() (avoidance.Snapshot, time.Time, bool) {
	return f.snapshot, time.Now().Add(-f.age), true
}

type fakeSink struct {
	lock     sync.Mutex
	commands []avoidance.VelocityCommand
	stops    int
}

func (f *fakeSink) Emit(forward, lateral float64) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.commands = append(f.commands, avoidance.VelocityCommand{Forward: forward, Lateral: lateral})
	return nil
}

func (f *fakeSink) Stop() error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.stops++
	return nil
}

func TestStaleReadingsAreIgnored(t *testing.T) {
	cfg := config(avoidance.ModeAdvance)
	cfg.TimeLimit = 50 * time.Millisecond
	near := avoidance.Snapshot{Reading: avoidance.Reading{Front: avoidance.Echo(0.05)}}

	tests := []struct {
		name    string
		age     time.Duration
		forward float64
	}{
		{"fresh", 0, cfg.ForwardSpeed - cfg.AvoidSpeed},
		{"stale", time.Second, cfg.ForwardSpeed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &fakeSink{}
			r, err := NewRunner(cfg, fakeSource{near, tt.age}, sink)
			require.NoError(t, err)

			var ticks []Tick
			r.OnTick = func(tick Tick) { ticks = append(ticks, tick) }
			_, err = r.Run(context.Background())
			require.NoError(t, err)

			require.NotEmpty(t, sink.commands)
			assert.InDelta(t, tt.forward, sink.commands[0].Forward, 1e-9)
			assert.Equal(t, tt.age > 0, ticks[0].Stale)
			assert.Equal(t, 1, sink.stops)
			assert.Len(t, sink.commands, len(ticks)-1)

			status, ok := r.Status()
			require.True(t, ok)
			assert.Equal(t, ticks[len(ticks)-1], status)
		})
	}
}

func TestInvalidConfig(t *testing.T) {
	cfg := config(avoidance.ModeHover)
	cfg.Threshold = 0
	_, err := NewRunner(cfg, fakeSource{}, &fakeSink{})
	assert.Equal(t, avoidance.ErrorInvalidThreshold, err)
}
