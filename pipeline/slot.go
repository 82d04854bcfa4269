// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pipeline

import (
	"sync"

	"github.com/tclim/go-t1c/t1c"
)

// EnvSnapshot is the environmental reading attached to a committed
// frame (spec 3's EnvSample, copied at commit time).
type EnvSnapshot struct {
	AmbientTempC  float64
	AmbientValid  bool
	HumidityPct   float64
	HumidityValid bool
	DistanceCM    float64
	DistanceValid bool
}

// SpotSnapshot is the cached outcome of the spot-temperature feature
// query, valid only once a query round-trip has completed.
type SpotSnapshot struct {
	X, Y    int
	TempC10 int16
	Valid   bool
}

// MinMaxSnapshot is the cached outcome of the scene min/max feature
// query. This is distinct from the per-frame raw-pixel Y16Min/Y16Max
// tracked on every frame (spec 4.6.7).
type MinMaxSnapshot struct {
	MinX, MinY int
	MaxX, MaxY int
	MinTempC10 int16
	MaxTempC10 int16
	Valid      bool
}

// RegionSnapshot is the cached outcome of the region-statistics feature
// query.
type RegionSnapshot struct {
	Rect                   t1c.RegionArgs
	MinC10, MaxC10, AvgC10 int16
	Valid                  bool
}

// FrameSlot is a mutex-guarded record the pipeline (sole writer) commits
// into once per frame; consumers acquire the mutex only long enough to
// copy the contents out (spec 3's FrameSlot).
type FrameSlot struct {
	mu sync.Mutex

	Pix      [t1c.Width * t1c.Height]uint16
	Y16Min   uint16
	Y16Max   uint16
	HighGain bool
	Frozen   bool

	Env    EnvSnapshot
	Spot   SpotSnapshot
	MinMax MinMaxSnapshot
	Region RegionSnapshot

	// Meta is populated only for the file-save slot, by the pipeline's
	// MetadataFn, once per committed file frame (spec 4.10).
	Meta interface{}
}

// Commit swaps in new contents under the slot's mutex. fn receives the
// slot directly and must not retain the pointer past its call.
func (s *FrameSlot) Commit(fn func(*FrameSlot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

// Snapshot is a consumer-side copy of a FrameSlot, safe to read without
// holding any lock.
type Snapshot struct {
	Pix      [t1c.Width * t1c.Height]uint16
	Y16Min   uint16
	Y16Max   uint16
	HighGain bool
	Frozen   bool
	Env      EnvSnapshot
	Spot     SpotSnapshot
	MinMax   MinMaxSnapshot
	Region   RegionSnapshot
	Meta     interface{}
}

// Copy returns a full value copy of the slot, holding the mutex only for
// the duration of the copy (spec 5's ordering guarantee: consumers never
// observe a split state).
func (s *FrameSlot) Copy() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Pix:      s.Pix,
		Y16Min:   s.Y16Min,
		Y16Max:   s.Y16Max,
		HighGain: s.HighGain,
		Frozen:   s.Frozen,
		Env:      s.Env,
		Spot:     s.Spot,
		MinMax:   s.MinMax,
		Region:   s.Region,
		Meta:     s.Meta,
	}
}
