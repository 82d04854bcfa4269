// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tau

import (
	"io"
	"math"
	"sync"
)

// Estimator holds the currently loaded correction table behind a
// read-write lock so readers can take a read borrow for the duration of
// one bilinear evaluation while a gain change swaps the whole table
// (spec 9's design note).
type Estimator struct {
	loader Loader

	mu    sync.RWMutex
	table *Table
	gain  Gain
}

// Gain selects which correction table asset to load.
type Gain int

const (
	// GainLow selects the "tau_L" asset.
	GainLow Gain = iota
	// GainHigh selects the "tau_H" asset.
	GainHigh
)

func (g Gain) assetName() string {
	if g == GainHigh {
		return "tau_H"
	}
	return "tau_L"
}

// Loader abstracts the read-only asset area the correction tables live
// in (spec 1 excludes the filesystem itself from the core).
type Loader interface {
	OpenTable(name string) (io.ReadCloser, error)
}

// NewEstimator returns an Estimator that loads tables through loader.
func NewEstimator(loader Loader) *Estimator {
	return &Estimator{loader: loader}
}

// ReadTable loads the gain-specific correction table into RAM, replacing
// whatever was loaded before. Safe to call concurrently with Estimate.
func (e *Estimator) ReadTable(gain Gain) error {
	f, err := e.loader.OpenTable(gain.assetName())
	if err != nil {
		return err
	}
	defer f.Close()
	t, err := Load(f)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.table = t
	e.gain = gain
	e.mu.Unlock()
	return nil
}

// Gain returns the gain of the currently loaded table.
func (e *Estimator) Gain() Gain {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.gain
}

// Estimate returns an 8-bit τ value in [1, 128] for the given ambient
// temperature (°C), distance (meters) and humidity (reserved: the lookup
// always uses humidity index 0).
//
// Algorithm (spec 4.3): two 1-D searches over the sorted temperature and
// distance axes produce bracketing indices with linear weights; the four
// corner lookups are blended first along temperature, then along
// distance; the result is scaled to an integer by round(tau*127)+1.
func (e *Estimator) Estimate(taC, distM, humidity float64) uint8 {
	e.mu.RLock()
	t := e.table
	e.mu.RUnlock()
	if t == nil {
		return 1
	}
	_ = humidity // reserved axis; always index 0 (spec 9 Open Question).
	const humIdx = 0

	ti0, ti1, tw0, tw1 := bracket(tempAxisC[:], taC)
	di0, di1, dw0, dw1 := bracket(distAxisM[:], distM)

	atD0 := float64(t.Data[humIdx][ti0][di0])*tw0 + float64(t.Data[humIdx][ti1][di0])*tw1
	atD1 := float64(t.Data[humIdx][ti0][di1])*tw0 + float64(t.Data[humIdx][ti1][di1])*tw1
	raw := atD0*dw0 + atD1*dw1

	tauFrac := raw / 65535.0
	v := int(math.Round(tauFrac*127)) + 1
	if v < 1 {
		v = 1
	}
	if v > 128 {
		v = 128
	}
	return uint8(v)
}

// bracket finds the two indices in axis (sorted ascending) that bracket
// v, with linear weights summing to 1. Outside [axis[0], axis[last]] both
// indices collapse to the nearest edge with equal weight, per spec 4.3's
// boundary policy.
func bracket(axis []float64, v float64) (i0, i1 int, w0, w1 float64) {
	n := len(axis)
	if v <= axis[0] {
		return 0, 0, 0.5, 0.5
	}
	if v >= axis[n-1] {
		return n - 1, n - 1, 0.5, 0.5
	}
	for i := 0; i < n-1; i++ {
		if v >= axis[i] && v <= axis[i+1] {
			span := axis[i+1] - axis[i]
			if span == 0 {
				return i, i + 1, 0.5, 0.5
			}
			frac := (v - axis[i]) / span
			return i, i + 1, 1 - frac, frac
		}
	}
	return n - 1, n - 1, 0.5, 0.5
}
