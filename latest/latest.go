// Package latest holds single-slot buffers for values produced by one
// goroutine and consumed by another. A Store overwrites whatever was there;
// nothing is queued.
package latest

import (
	"sync/atomic"
	"time"
)

type entry[T any] struct {
	value  T
	stored time.Time
	seq    uint64
}

// Value is a latest-value-wins slot. The zero Value is empty and ready to use.
type Value[T any] struct {
	slot atomic.Pointer[entry[T]]
	seq  atomic.Uint64
}

// Store replaces the held value, stamping it with the current time.
func (v *Value[T]) Store(value T) {
	v.StoreAt(value, time.Now())
}

// StoreAt replaces the held value with an explicit timestamp.
func (v *Value[T]) StoreAt(value T, stored time.Time) {
	v.slot.Store(&entry[T]{value: value, stored: stored, seq: v.seq.Add(1)})
}

// Load returns the held value and when it was stored. ok is false until the
// first Store.
func (v *Value[T]) Load() (value T, stored time.Time, ok bool) {
	e := v.slot.Load()
	if e == nil {
		return value, stored, false
	}
	return e.value, e.stored, true
}

// Seq returns how many values have been stored so far.
func (v *Value[T]) Seq() uint64 {
	e := v.slot.Load()
	if e == nil {
		return 0
	}
	return e.seq
}

// Fresh returns the held value only if it is younger than maxAge at now.
// A non-positive maxAge disables the age check.
func (v *Value[T]) Fresh(now time.Time, maxAge time.Duration) (value T, ok bool) {
	value, stored, ok := v.Load()
	if !ok {
		return value, false
	}
	if maxAge > 0 && now.Sub(stored) > maxAge {
		var zero T
		return zero, false
	}
	return value, true
}
