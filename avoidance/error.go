package avoidance

import "fmt"

type avoidanceError uint8

func (e avoidanceError) Error() string {
	return fmt.Sprintf("avoidance: %s", avoidanceErrorString[e])
}

const (
	ErrorInvalidThreshold avoidanceError = iota
	ErrorInvalidSpeed
	ErrorInvalidPeriod
	ErrorInvalidMode
	ErrorInvalidGoal
	ErrorMissingBoundary
	ErrorInvalidBoundary
)

var avoidanceErrorString = map[avoidanceError]string{
	ErrorInvalidThreshold: "threshold must be greater than zero",
	ErrorInvalidSpeed:     "speeds must be non-negative and the max speed greater than zero",
	ErrorInvalidPeriod:    "tick period must be greater than zero",
	ErrorInvalidMode:      "unknown task mode",
	ErrorInvalidGoal:      "advance mode needs a goal ahead of the start",
	ErrorMissingBoundary:  "patrol mode needs a boundary box",
	ErrorInvalidBoundary:  "boundary limits must be greater than zero",
}
