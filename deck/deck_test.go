package deck

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeParams struct {
	lock   sync.Mutex
	values map[string]float64
	reads  int
}

func (f *fakeParams) ParamReadFloat64(name string) (float64, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.reads++
	v, ok := f.values[name]
	if !ok {
		return 0, errors.New("parameter not found")
	}
	return v, nil
}

func (f *fakeParams) set(name string, v float64) {
	f.lock.Lock()
	f.values[name] = v
	f.lock.Unlock()
}

func TestWaitFindsAnyDeck(t *testing.T) {
	params := &fakeParams{values: map[string]float64{"deck.bcFlow2": 0, "deck.bcMultiranger": 1}}
	name, err := Wait(context.Background(), params, []string{Flow2, Multiranger}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, Multiranger, name)
}

func TestWaitForLateDeck(t *testing.T) {
	params := &fakeParams{values: map[string]float64{"deck.bcFlow2": 0}}
	go func() {
		time.Sleep(150 * time.Millisecond)
		params.set("deck.bcFlow2", 1)
	}()
	name, err := Wait(context.Background(), params, []string{Flow2}, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, Flow2, name)
}

func TestWaitTimesOut(t *testing.T) {
	params := &fakeParams{values: map[string]float64{"deck.bcFlow2": 0}}
	_, err := Wait(context.Background(), params, []string{Flow2, Multiranger}, 250*time.Millisecond)
	assert.Equal(t, ErrorDeckNotAttached, err)
	assert.Greater(t, params.reads, 2)
}

func TestWaitCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Wait(ctx, &fakeParams{values: map[string]float64{}}, []string{Flow2}, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWaitNothing(t *testing.T) {
	name, err := Wait(context.Background(), &fakeParams{}, nil, time.Second)
	assert.NoError(t, err)
	assert.Empty(t, name)
}
