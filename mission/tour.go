package mission

import (
	"context"
	"log"
	"time"
)

// Pilot adds vertical and circular manoeuvres to Mover.
type Pilot interface {
	Mover
	Up(ctx context.Context, distance float64) error
	Down(ctx context.Context, distance float64) error
	Circle(ctx context.Context, radius, speed, degrees float64, right bool) error
}

// Step is one manoeuvre of a tour.
type Step struct {
	Name string
	Fly  func(ctx context.Context, p Pilot) error
}

// TourSteps exercises every direction once: forward, up, three quarters of
// a circle to the right, down, left and forward again, pausing between
// manoeuvres.
func TourSteps(velocity float64, pause time.Duration) []Step {
	hold := func(d time.Duration) func(context.Context, Pilot) error {
		return func(ctx context.Context, p Pilot) error { return p.Hover(ctx, d) }
	}
	return []Step{
		{"hover", hold(3 * pause)},
		{"forward", func(ctx context.Context, p Pilot) error { return p.Move(ctx, 1, 0, 0.3, velocity) }},
		{"pause", hold(pause)},
		{"up", func(ctx context.Context, p Pilot) error { return p.Up(ctx, 0.1) }},
		{"pause", hold(pause)},
		{"circle right", func(ctx context.Context, p Pilot) error { return p.Circle(ctx, 0.1, 0.5, 270, true) }},
		{"down", func(ctx context.Context, p Pilot) error { return p.Down(ctx, 0.3) }},
		{"pause", hold(pause)},
		{"left", func(ctx context.Context, p Pilot) error { return p.Move(ctx, 0, 1, 0.3, 0.4) }},
		{"pause", hold(pause)},
		{"forward", func(ctx context.Context, p Pilot) error { return p.Move(ctx, 1, 0, 0.3, velocity) }},
	}
}

// Tour flies steps in order and stops at the first failure.
func Tour(ctx context.Context, p Pilot, steps []Step) error {
	for i, s := range steps {
		log.Printf("mission: tour step %d/%d %s", i+1, len(steps), s.Name)
		if err := s.Fly(ctx, p); err != nil {
			return err
		}
	}
	return nil
}
