// Package fibonacci provides implementations for calculating Fibonacci numbers.
// This file contains the Observer pattern implementation for progress reporting.
package fibonacci

import (
	"math"
	"sync"
	"sync/atomic"
)

// ─────────────────────────────────────────────────────────────────────────────
// Observer Pattern Interfaces
// ─────────────────────────────────────────────────────────────────────────────

// ProgressObserver defines the interface for observing progress events.
// Implementations receive notifications when calculation progress changes,
// enabling decoupled handling of progress updates for UI, logging, metrics, etc.
type ProgressObserver interface {
	// Update is called when progress changes.
	//
	// Parameters:
	//   - calcIndex: The calculator instance identifier (for concurrent calculations)
	//   - progress: The normalized progress value (0.0 to 1.0)
	Update(calcIndex int, progress float64)
}

// ─────────────────────────────────────────────────────────────────────────────
// Progress Subject (Observable)
// ─────────────────────────────────────────────────────────────────────────────

// ProgressSubject manages observer registration and notification for progress events.
// It implements the Subject part of the Observer pattern, allowing multiple observers
// to be notified of progress updates without tight coupling between the calculator
// and its consumers.
//
// ProgressSubject is safe for concurrent use.
type ProgressSubject struct {
	observers []ProgressObserver
	mu        sync.RWMutex
}

// NewProgressSubject creates a new subject for managing progress observers.
//
// Returns:
//   - *ProgressSubject: A new, empty subject ready to accept observers.
func NewProgressSubject() *ProgressSubject {
	return &ProgressSubject{
		observers: make([]ProgressObserver, 0),
	}
}

// Register adds an observer to receive progress updates.
// Observers are notified in the order they are registered.
//
// Parameters:
//   - observer: The observer to add. If nil, this call is a no-op.
func (s *ProgressSubject) Register(observer ProgressObserver) {
	if observer == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, observer)
}

// Unregister removes an observer from receiving updates.
// If the observer is not found, this call is a no-op.
//
// Parameters:
//   - observer: The observer to remove.
func (s *ProgressSubject) Unregister(observer ProgressObserver) {
	if observer == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, o := range s.observers {
		if o == observer {
			// Remove observer while preserving order
			s.observers = append(s.observers[:i], s.observers[i+1:]...)
			return
		}
	}
}

// Notify sends a progress update to all registered observers.
// Observers are notified synchronously in registration order.
//
// Parameters:
//   - calcIndex: The calculator instance identifier.
//   - progress: The normalized progress value (0.0 to 1.0).
func (s *ProgressSubject) Notify(calcIndex int, progress float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, observer := range s.observers {
		observer.Update(calcIndex, progress)
	}
}

// ObserverCount returns the number of registered observers.
// This is primarily useful for testing and diagnostics.
//
// Returns:
//   - int: The number of registered observers.
func (s *ProgressSubject) ObserverCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.observers)
}

// FrozenObserver holds a lock-free snapshot of the last reported progress
// fraction for one calculator index. Hot loops call ShouldReport/Update
// instead of going through the mutex-guarded ProgressSubject on every
// iteration, publishing a real update only once the fraction has moved by
// a meaningful delta.
type FrozenObserver struct {
	bits atomic.Uint64
}

// frozenReportDelta is the minimum fractional progress change (1%) required
// before a frozen observer reports a new value.
const frozenReportDelta = 0.01

// Freeze returns a FrozenObserver initialized to 0 progress.
func Freeze() *FrozenObserver {
	return &FrozenObserver{}
}

// Load returns the last value stored by Update.
func (f *FrozenObserver) Load() float64 {
	return math.Float64frombits(f.bits.Load())
}

// ShouldReport reports whether p has advanced far enough past the last
// stored value to be worth publishing.
func (f *FrozenObserver) ShouldReport(p float64) bool {
	last := f.Load()
	delta := p - last
	if delta < 0 {
		delta = -delta
	}
	return delta >= frozenReportDelta || p >= 1.0
}

// Update stores p as the last reported value. Safe for concurrent use; does
// not itself notify any observer.
func (f *FrozenObserver) Update(p float64) {
	f.bits.Store(math.Float64bits(p))
}

// AsProgressReporter returns a ProgressReporter function that notifies all observers.
// This provides backward compatibility with existing calculator implementations that
// use the functional ProgressReporter type.
//
// Parameters:
//   - calcIndex: The calculator instance identifier to include in notifications.
//
// Returns:
//   - ProgressReporter: A function that can be passed to core calculators.
func (s *ProgressSubject) AsProgressReporter(calcIndex int) ProgressReporter {
	return func(progress float64) {
		s.Notify(calcIndex, progress)
	}
}
