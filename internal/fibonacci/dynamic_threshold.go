// Package fibonacci provides implementations for calculating Fibonacci numbers.
// This file implements dynamic threshold adjustment during calculation:
// a ring buffer of recent iteration timings feeds a hysteresis-filtered
// adjustment rule that nudges the parallel, FFT and Strassen crossover
// points toward whatever is currently paying off.
package fibonacci

import (
	"sync"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Dynamic Threshold Configuration
// ─────────────────────────────────────────────────────────────────────────────

const (
	// DynamicAdjustmentInterval is the number of iterations between threshold checks.
	DynamicAdjustmentInterval = 5

	// MinMetricsForAdjustment is the minimum number of metrics needed before adjusting.
	MinMetricsForAdjustment = 3

	// MetricsHistorySize is the size of the ring buffer of iteration metrics
	// that benefit is computed over (R in the design notes).
	MetricsHistorySize = 32

	// AdjustmentHistorySize bounds the log of applied adjustments kept for
	// diagnostics and snapshotting.
	AdjustmentHistorySize = 64

	// deadZone is the minimum |benefit| below which no adjustment is made,
	// even if it clears the hysteresis margin. Prevents chasing noise around
	// the no-benefit point.
	deadZone = 0.02

	// hysteresisFactor is the minimum |benefit| an adjustment must clear,
	// separately from the dead zone, before it is allowed to move a threshold.
	hysteresisFactor = 0.05

	// maxAdjustmentStep is delta, the fraction by which a threshold may move
	// in a single adjustment. Clamped to [0, 0.5].
	maxAdjustmentStep = 0.1

	// floorParallelThreshold is the hard floor for the parallel threshold.
	floorParallelThreshold = 512
	// floorFFTThreshold is the hard floor for the FFT threshold.
	floorFFTThreshold = 1024
	// floorStrassenThreshold is the hard floor for the Strassen threshold.
	floorStrassenThreshold = 512
)

func clampStep(delta float64) float64 {
	if delta < 0 {
		return 0
	}
	if delta > 0.5 {
		return 0.5
	}
	return delta
}

// DynamicThresholdManager adjusts the FFT, parallel and Strassen thresholds
// during calculation based on observed performance metrics. State consists of
// a ring buffer of the last MetricsHistorySize iteration metrics plus the
// three current thresholds.
type DynamicThresholdManager struct {
	mu sync.RWMutex

	currentFFTThreshold      int
	currentParallelThreshold int
	currentStrassenThreshold int

	originalFFTThreshold      int
	originalParallelThreshold int
	originalStrassenThreshold int

	metrics      [MetricsHistorySize]IterationMetric
	metricsCount int
	metricsHead  int

	iterationCount     int
	adjustmentInterval int
	adjustmentCount    int
	history            []ThresholdAdjustment
}

// ─────────────────────────────────────────────────────────────────────────────
// Constructor and Configuration
// ─────────────────────────────────────────────────────────────────────────────

// NewDynamicThresholdManager creates a new manager with the given initial thresholds.
func NewDynamicThresholdManager(fftThreshold, parallelThreshold, strassenThreshold int) *DynamicThresholdManager {
	return &DynamicThresholdManager{
		currentFFTThreshold:       fftThreshold,
		currentParallelThreshold:  parallelThreshold,
		currentStrassenThreshold:  strassenThreshold,
		originalFFTThreshold:      fftThreshold,
		originalParallelThreshold: parallelThreshold,
		originalStrassenThreshold: strassenThreshold,
		adjustmentInterval:        DynamicAdjustmentInterval,
	}
}

// NewDynamicThresholdManagerFromConfig creates a manager from configuration,
// or returns nil if dynamic adjustment is disabled.
func NewDynamicThresholdManagerFromConfig(cfg DynamicThresholdConfig) *DynamicThresholdManager {
	if !cfg.Enabled {
		return nil
	}

	interval := cfg.AdjustmentInterval
	if interval <= 0 {
		interval = DynamicAdjustmentInterval
	}

	strassen := cfg.InitialStrassenThreshold
	if strassen <= 0 {
		strassen = DefaultStrassenThreshold
	}

	return &DynamicThresholdManager{
		currentFFTThreshold:       cfg.InitialFFTThreshold,
		currentParallelThreshold:  cfg.InitialParallelThreshold,
		currentStrassenThreshold:  strassen,
		originalFFTThreshold:      cfg.InitialFFTThreshold,
		originalParallelThreshold: cfg.InitialParallelThreshold,
		originalStrassenThreshold: strassen,
		adjustmentInterval:        interval,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Metric Recording
// ─────────────────────────────────────────────────────────────────────────────

// RecordIteration records timing data for a completed iteration. Should be
// called after each doubling step in the algorithm.
func (m *DynamicThresholdManager) RecordIteration(bitLen int, duration time.Duration, usedFFT, usedParallel bool) {
	method := methodKaratsuba
	if usedFFT {
		method = methodFFT
	}
	m.recordIterationMethod(bitLen, duration, method, usedFFT, usedParallel, false)
}

// RecordMatrixIteration records timing data for a matrix-exponentiation
// iteration, distinguishing whether the symmetric Strassen path was used.
func (m *DynamicThresholdManager) RecordMatrixIteration(bitLen int, duration time.Duration, usedStrassen bool) {
	method := methodKaratsuba
	if usedStrassen {
		method = methodStrassen
	}
	m.recordIterationMethod(bitLen, duration, method, false, false, false)
}

func (m *DynamicThresholdManager) recordIterationMethod(bitLen int, duration time.Duration, method multiplicationMethod, usedFFT, usedParallel, cacheHit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics[m.metricsHead] = IterationMetric{
		BitLen:       bitLen,
		Duration:     duration,
		Method:       method,
		UsedFFT:      usedFFT,
		UsedParallel: usedParallel,
		CacheHit:     cacheHit,
	}
	m.metricsHead = (m.metricsHead + 1) % MetricsHistorySize
	m.metricsCount++
	m.iterationCount++
}

// ─────────────────────────────────────────────────────────────────────────────
// Threshold Access
// ─────────────────────────────────────────────────────────────────────────────

// GetThresholds returns the current FFT and parallel thresholds.
func (m *DynamicThresholdManager) GetThresholds() (fft, parallel int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentFFTThreshold, m.currentParallelThreshold
}

// GetFFTThreshold returns the current FFT threshold.
func (m *DynamicThresholdManager) GetFFTThreshold() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentFFTThreshold
}

// GetParallelThreshold returns the current parallel threshold.
func (m *DynamicThresholdManager) GetParallelThreshold() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentParallelThreshold
}

// GetStrassenThreshold returns the current Strassen threshold.
func (m *DynamicThresholdManager) GetStrassenThreshold() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentStrassenThreshold
}

// ─────────────────────────────────────────────────────────────────────────────
// Adjustment Logic
// ─────────────────────────────────────────────────────────────────────────────

// ShouldAdjust checks if thresholds should be adjusted based on collected
// metrics, applying the dead-zone/hysteresis/capped-step rule to
// each of the FFT and parallel thresholds independently, then re-establishes
// the fft >= strassen invariant.
func (m *DynamicThresholdManager) ShouldAdjust() (newFFT, newParallel int, adjusted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.iterationCount%m.adjustmentInterval != 0 {
		return m.currentFFTThreshold, m.currentParallelThreshold, false
	}
	if m.metricsCount < MinMetricsForAdjustment {
		return m.currentFFTThreshold, m.currentParallelThreshold, false
	}

	metrics := m.activeMetrics()

	fftBenefit := benefitFor(metrics, func(im IterationMetric) bool { return im.UsedFFT }, func(im IterationMetric) bool { return !im.UsedFFT })
	parallelBenefit := benefitFor(metrics, func(im IterationMetric) bool { return im.UsedParallel }, func(im IterationMetric) bool { return !im.UsedParallel })
	strassenBenefit := benefitForStrassen(metrics, m.currentFFTThreshold)

	changed := false
	if newVal, ok := m.applyAdjustment("fft", m.currentFFTThreshold, fftBenefit, floorFFTThreshold); ok {
		m.currentFFTThreshold = newVal
		changed = true
	}
	if newVal, ok := m.applyAdjustment("parallel", m.currentParallelThreshold, parallelBenefit, floorParallelThreshold); ok {
		m.currentParallelThreshold = newVal
		changed = true
	}
	if newVal, ok := m.applyAdjustment("strassen", m.currentStrassenThreshold, strassenBenefit, floorStrassenThreshold); ok {
		m.currentStrassenThreshold = newVal
		changed = true
	}

	// fft >= strassen must hold after every batch of adjustments.
	if m.currentFFTThreshold < m.currentStrassenThreshold {
		m.currentStrassenThreshold = m.currentFFTThreshold
		if m.currentStrassenThreshold < floorStrassenThreshold {
			m.currentStrassenThreshold = floorStrassenThreshold
		}
	}

	if changed {
		return m.currentFFTThreshold, m.currentParallelThreshold, true
	}
	return m.currentFFTThreshold, m.currentParallelThreshold, false
}

// applyAdjustment implements the per-threshold rule: dead zone,
// then hysteresis, then a capped step toward (benefit > 0) or away from
// (benefit < 0) more aggressive use of the faster method, clamped at floor.
// It appends to the bounded adjustment history when it actually moves T.
func (m *DynamicThresholdManager) applyAdjustment(name string, current int, benefit float64, floor int) (int, bool) {
	abs := benefit
	if abs < 0 {
		abs = -abs
	}
	if abs <= deadZone {
		return current, false
	}
	if abs <= hysteresisFactor {
		return current, false
	}

	delta := clampStep(maxAdjustmentStep)
	var next int
	if benefit > 0 {
		next = int(float64(current) * (1 - delta))
		if next < floor {
			next = floor
		}
	} else {
		next = int(float64(current) * (1 + delta))
		ceiling := int(float64(current) * 2.0)
		if next > ceiling {
			next = ceiling
		}
	}

	if next == current {
		return current, false
	}

	m.adjustmentCount++
	m.history = append(m.history, ThresholdAdjustment{Name: name, Old: current, New: next, Benefit: benefit, Occurred: time.Now()})
	if len(m.history) > AdjustmentHistorySize {
		m.history = m.history[len(m.history)-AdjustmentHistorySize:]
	}
	return next, true
}

// activeMetrics returns the valid metrics currently held in the ring buffer.
func (m *DynamicThresholdManager) activeMetrics() []IterationMetric {
	count := m.metricsCount
	if count > MetricsHistorySize {
		count = MetricsHistorySize
	}
	result := make([]IterationMetric, count)
	copy(result, m.metrics[:count])
	return result
}

// benefitFor computes a signed benefit: the fractional difference in average
// time-per-bit between the "fast" subset (selected by faster) and the "slow"
// subset (selected by slower). Positive means the fast subset is cheaper per
// bit, i.e. there is benefit in lowering the threshold toward it.
func benefitFor(metrics []IterationMetric, faster, slower func(IterationMetric) bool) float64 {
	var fastSet, slowSet []IterationMetric
	for _, im := range metrics {
		if faster(im) {
			fastSet = append(fastSet, im)
		} else if slower(im) {
			slowSet = append(slowSet, im)
		}
	}
	if len(fastSet) == 0 || len(slowSet) == 0 {
		return 0
	}
	fastAvg := avgTimePerBit(fastSet)
	slowAvg := avgTimePerBit(slowSet)
	if fastAvg <= 0 || slowAvg <= 0 {
		return 0
	}
	return (slowAvg - fastAvg) / slowAvg
}

// benefitForStrassen averages the benefit over the subset of metrics whose
// bit length falls in [1024, currentFFTThreshold)
// that Strassen benefit is only evaluated below the FFT crossover.
func benefitForStrassen(metrics []IterationMetric, fftThreshold int) float64 {
	windowed := make([]IterationMetric, 0, len(metrics))
	for _, im := range metrics {
		if im.BitLen >= 1024 && im.BitLen < fftThreshold {
			windowed = append(windowed, im)
		}
	}
	return benefitFor(windowed,
		func(im IterationMetric) bool { return im.Method == methodStrassen },
		func(im IterationMetric) bool { return im.Method == methodKaratsuba })
}

func avgTimePerBit(metrics []IterationMetric) float64 {
	if len(metrics) == 0 {
		return 0
	}
	var totalTime time.Duration
	var totalBits int64
	for _, metric := range metrics {
		totalTime += metric.Duration
		totalBits += int64(metric.BitLen)
	}
	if totalBits == 0 {
		return 0
	}
	return float64(totalTime.Nanoseconds()) / float64(totalBits)
}

// ─────────────────────────────────────────────────────────────────────────────
// Statistics and Reporting
// ─────────────────────────────────────────────────────────────────────────────

// GetStats returns a snapshot of current statistics and adjustment history.
func (m *DynamicThresholdManager) GetStats() ThresholdStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := m.metricsCount
	if count > MetricsHistorySize {
		count = MetricsHistorySize
	}

	history := make([]ThresholdAdjustment, len(m.history))
	copy(history, m.history)

	return ThresholdStats{
		CurrentFFT:           m.currentFFTThreshold,
		CurrentParallel:      m.currentParallelThreshold,
		CurrentStrassen:      m.currentStrassenThreshold,
		OriginalFFT:          m.originalFFTThreshold,
		OriginalParallel:     m.originalParallelThreshold,
		OriginalStrassen:     m.originalStrassenThreshold,
		MetricsCollected:     count,
		IterationsProcessed:  m.iterationCount,
		AdjustmentCount:      m.adjustmentCount,
		History:              history,
	}
}

// Reset clears all collected metrics and restores original thresholds.
func (m *DynamicThresholdManager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.currentFFTThreshold = m.originalFFTThreshold
	m.currentParallelThreshold = m.originalParallelThreshold
	m.currentStrassenThreshold = m.originalStrassenThreshold
	m.metricsCount = 0
	m.metricsHead = 0
	m.iterationCount = 0
	m.adjustmentCount = 0
	m.history = nil
}
