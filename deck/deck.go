// Package deck checks for expansion decks before a flight.
package deck

import (
	"context"
	"fmt"
	"log"
	"time"
)

type deckError uint8

func (e deckError) Error() string {
	return fmt.Sprintf("deck: %s", deckErrorString[e])
}

const (
	ErrorDeckNotAttached deckError = iota
)

var deckErrorString = map[deckError]string{
	ErrorDeckNotAttached: "no deck detected",
}

// Flow and multiranger decks, as named by the deck.* parameters.
const (
	Flow2       = "bcFlow2"
	Multiranger = "bcMultiranger"
)

const (
	DefaultTimeout = 5 * time.Second
	pollInterval   = 100 * time.Millisecond
)

// ParamReader reads a numeric parameter such as "deck.bcFlow2".
type ParamReader interface {
	ParamReadFloat64(name string) (float64, error)
}

// Wait polls the deck.<name> parameters until one of them reports an
// attached deck and returns that name. It gives up with
// ErrorDeckNotAttached after timeout, or with ctx's error.
func Wait(ctx context.Context, params ParamReader, names []string, timeout time.Duration) (string, error) {
	if len(names) == 0 {
		return "", nil
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		for _, name := range names {
			v, err := params.ParamReadFloat64("deck." + name)
			if err != nil {
				log.Printf("deck %s: %s", name, err)
				continue
			}
			if v != 0 {
				log.Printf("deck %s attached", name)
				return name, nil
			}
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-deadline.C:
			return "", ErrorDeckNotAttached
		case <-ticker.C:
		}
	}
}
