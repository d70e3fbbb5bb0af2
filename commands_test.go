package main

import (
	"flag"
	"strings"
	"testing"
	"time"

	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/avoidance"
	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/mission"
	"github.com/InfiniteWes/HelloDrone-Project-0-CS4331/motion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

func command(t *testing.T, name string) cli.Command {
	t.Helper()
	for _, cmd := range commands() {
		if cmd.Name == name {
			return cmd
		}
	}
	t.Fatalf("no command %s", name)
	return cli.Command{}
}

func contextFor(t *testing.T, name string, args ...string) *cli.Context {
	t.Helper()
	cmd := command(t, name)
	set := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
	for _, f := range cmd.Flags {
		f.Apply(set)
	}
	require.NoError(t, set.Parse(args))
	return cli.NewContext(nil, set, nil)
}

func TestTaskConfig(t *testing.T) {
	tests := []struct {
		name    string
		command string
		mode    avoidance.Mode
		args    []string
		check   func(t *testing.T, tc avoidance.Config)
		err     error
	}{
		{
			name:    "hover defaults",
			command: "hover-avoid",
			mode:    avoidance.ModeHover,
			check: func(t *testing.T, tc avoidance.Config) {
				assert.Equal(t, 0.2, tc.Threshold)
				assert.Equal(t, 0.5, tc.AvoidSpeed)
				assert.Zero(t, tc.TimeLimit)
				assert.Nil(t, tc.Box)
			},
		},
		{
			name:    "advance with a box",
			command: "advance",
			mode:    avoidance.ModeAdvance,
			args:    []string{"--goal", "2", "--box-max", "0.4", "--sidestep", "0.1"},
			check: func(t *testing.T, tc avoidance.Config) {
				assert.Equal(t, 0.3, tc.Threshold)
				assert.Equal(t, 2.0, tc.Goal)
				assert.Equal(t, 0.1, tc.SidestepSpeed)
				require.NotNil(t, tc.Box)
				assert.Equal(t, 0.4, tc.Box.XLimit)
				assert.Equal(t, 0.4, tc.Box.YLimit)
			},
		},
		{
			name:    "patrol box",
			command: "patrol",
			mode:    avoidance.ModePatrol,
			args:    []string{"--box-y", "0.3", "--time-limit", "10s"},
			check: func(t *testing.T, tc avoidance.Config) {
				require.NotNil(t, tc.Box)
				assert.Equal(t, 0.5, tc.Box.XLimit)
				assert.Equal(t, 0.3, tc.Box.YLimit)
				assert.Equal(t, 10*time.Second, tc.TimeLimit)
			},
		},
		{
			name:    "patrol box capped",
			command: "patrol",
			mode:    avoidance.ModePatrol,
			args:    []string{"--box-x", "3", "--box-max", "1"},
			check: func(t *testing.T, tc avoidance.Config) {
				require.NotNil(t, tc.Box)
				assert.Equal(t, 1.0, tc.Box.XLimit)
				assert.Equal(t, 0.5, tc.Box.YLimit)
				assert.Equal(t, avoidance.Vec{}, tc.Box.Center)
			},
		},
		{
			name:    "bad threshold",
			command: "hover-avoid",
			mode:    avoidance.ModeHover,
			args:    []string{"--threshold", "0"},
			err:     avoidance.ErrorInvalidThreshold,
		},
		{
			name:    "bad patrol box",
			command: "patrol",
			mode:    avoidance.ModePatrol,
			args:    []string{"--box-x", "-1"},
			err:     avoidance.ErrorInvalidBoundary,
		},
		{
			name:    "zero patrol box",
			command: "patrol",
			mode:    avoidance.ModePatrol,
			args:    []string{"--box-y", "0"},
			err:     avoidance.ErrorInvalidBoundary,
		},
		{
			name:    "bad patrol cap",
			command: "patrol",
			mode:    avoidance.ModePatrol,
			args:    []string{"--box-max", "0"},
			err:     avoidance.ErrorInvalidBoundary,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc, err := taskConfig(contextFor(t, tt.command, tt.args...), tt.mode)
			assert.Equal(t, tt.err, err)
			assert.Equal(t, tt.mode, tc.Mode)
			if tt.check != nil {
				tt.check(t, tc)
			}
		})
	}
}

func TestOpenSim(t *testing.T) {
	c := contextFor(t, "hover-avoid", "--sim", "--obstacle", "0.1,-1,0.5,1", "--ceiling", "-1,-1,1,1,0.5")
	v, err := openSim(c)
	require.NoError(t, err)
	defer v.Close()

	snapshot, _, ok := v.source.Latest()
	require.True(t, ok)
	front, ok := snapshot.Reading.Front.Meters()
	require.True(t, ok)
	assert.InDelta(t, 0.1, front, 1e-9)
	up, ok := snapshot.Reading.Up.Meters()
	require.True(t, ok)
	assert.InDelta(t, 0.5, up, 1e-9)
	assert.Nil(t, v.params)

	_, err = openSim(contextFor(t, "hover-avoid", "--obstacle", "1,2"))
	assert.Error(t, err)
}

func TestSimAdvance(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no box", nil},
		{"box narrower than the goal", []string{"--box-max", "0.02"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--sim",
				"--height", "0.02", "--velocity", "1",
				"--goal", "0.05", "--forward-speed", "0.5", "--period", "10ms", "--time-limit", "5s"}, tt.args...)
			task, v, err := flyTask(contextFor(t, "advance", args...), avoidance.ModeAdvance)
			require.NoError(t, err)
			assert.Equal(t, avoidance.GoalReached, task.State)
			require.NotNil(t, v.sim)
			assert.Equal(t, 1, v.sim.Stops())
			assert.GreaterOrEqual(t, v.sim.Position().X, 0.05-1e-6)
		})
	}
}

func TestSimAdvanceRejectsConfig(t *testing.T) {
	_, v, err := flyTask(contextFor(t, "advance", "--sim", "--goal", "0"), avoidance.ModeAdvance)
	assert.Equal(t, avoidance.ErrorInvalidGoal, err)
	assert.Nil(t, v, "nothing flew")
}

func TestMissionConfig(t *testing.T) {
	mc := missionConfig(contextFor(t, "mission", "--boxes", "3", "--waypoints", "1", "--box-limit", "0.1", "--dwell", "1s"), true)
	assert.Equal(t, 3, mc.Boxes)
	assert.Equal(t, 1, mc.Waypoints)
	assert.Equal(t, 0.1, mc.BoxLimit)
	assert.Equal(t, 0.5, mc.GlobalMax)
	assert.Equal(t, time.Second, mc.Dwell)

	mc = missionConfig(contextFor(t, "wander", "--run-time", "5s"), false)
	assert.Equal(t, 5*time.Second, mc.RunTime)
	assert.Equal(t, 2, mc.Boxes, "default chain left alone")
}

func TestSimMissions(t *testing.T) {
	simArgs := []string{"--sim", "--height", "0.02", "--velocity", "1", "--speed", "1", "--box-limit", "0.02", "--seed", "1"}
	tests := []struct {
		name   string
		action cli.ActionFunc
		args   []string
		err    error
	}{
		{"mission", missionCommand, []string{"--dwell", "0"}, nil},
		{"mission without boxes", missionCommand, []string{"--boxes", "0"}, mission.ErrorInvalidCount},
		{"wander", wanderCommand, []string{"--dwell", "10ms", "--run-time", "100ms"}, nil},
		{"wander without run time", wanderCommand, []string{"--run-time", "0"}, mission.ErrorInvalidRunTime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name := "mission"
			if strings.HasPrefix(tt.name, "wander") {
				name = "wander"
			}
			c := contextFor(t, name, append(simArgs, tt.args...)...)
			assert.Equal(t, tt.err, tt.action(c))
		})
	}
}

func TestSimTour(t *testing.T) {
	c := contextFor(t, "tour", "--sim", "--height", "0.4", "--velocity", "0.5", "--speed", "2", "--pause", "1ms")
	assert.NoError(t, tourCommand(c))

	c = contextFor(t, "tour", "--sim", "--height", "0.1", "--velocity", "1", "--speed", "2", "--pause", "1ms")
	assert.Equal(t, motion.ErrorInvalidHeight, tourCommand(c), "refuses to descend below the ground")
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"bcFlow2", "bcMultiranger"}, splitList("bcFlow2, bcMultiranger"))
	assert.Empty(t, splitList(""))
	assert.Empty(t, splitList(" , "))
}
