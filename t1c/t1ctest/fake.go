// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package t1ctest implements a fake t1c.Port for testing and for running
// the pipeline without a physical module.
package t1ctest

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/tclim/go-t1c/t1c"
)

type vector struct {
	intensity float64
	x         float64
	y         float64
}

// noise is cheezy but gets the pipeline going without a device.
type noise struct {
	rand    *rand.Rand
	vectors []vector
}

func makeNoise() *noise {
	n := &noise{rand: rand.New(rand.NewSource(1))}
	n.vectors = make([]vector, 10)
	for i := range n.vectors {
		n.vectors[i].intensity = n.rand.NormFloat64() * 400
		n.vectors[i].x = n.rand.NormFloat64()*56 + 128
		n.vectors[i].y = n.rand.NormFloat64()*40 + 96
	}
	return n
}

func (n *noise) update() {
	for i := range n.vectors {
		n.vectors[i].intensity += n.rand.NormFloat64() * 2
		n.vectors[i].x += n.rand.NormFloat64() * 0.2
		n.vectors[i].y += n.rand.NormFloat64() * 0.2
	}
}

func (n *noise) render(f *t1c.Frame) {
	const base, dynamicRange = 8192, 2000
	for y := 0; y < t1c.Height; y++ {
		fy := float64(y)
		for x := 0; x < t1c.Width; x++ {
			fx := float64(x)
			value := float64(base)
			for _, v := range n.vectors {
				d := (v.x-fx)*(v.x-fx) + (v.y-fy)*(v.y-fy)
				if d < 1 {
					d = 1
				}
				value += v.intensity / d
			}
			if value >= base+dynamicRange {
				value = base + dynamicRange
			}
			if value < base-dynamicRange {
				value = base - dynamicRange
			}
			f.Pix[y*t1c.Width+x] = uint16(value)
		}
	}
}

// Fake implements t1c.Port without any hardware, rendering a drifting
// synthetic heat-blob scene so the frame pipeline and its tests have
// something to cycle through (grounded on the Lepton teacher's own
// fake-device convention).
type Fake struct {
	mu       sync.Mutex
	noise    *noise
	params   map[t1c.Group]map[t1c.ParamID]uint16
	gain     bool
	frozen   bool
	booted   bool
	ffcCount int
	preview  t1c.PreviewMode

	pendingFeature t1c.Feature
	pendingArgs    interface{}
	ready          bool

	// FrameInterval overrides t1c.FrameInterval when non-zero, letting
	// tests run faster than real-time.
	FrameInterval time.Duration
}

// New returns a ready-to-boot Fake.
func New() *Fake {
	return &Fake{
		noise: makeNoise(),
		params: map[t1c.Group]map[t1c.ParamID]uint16{
			t1c.GroupShutter: {},
			t1c.GroupImage:   {},
			t1c.GroupTPD:     {},
		},
		ready: true, // idle until a query is issued
	}
}

// Boot implements t1c.Port.
func (f *Fake) Boot() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.booted = true
	return nil
}

// ReadFrame implements t1c.Port.
func (f *Fake) ReadFrame(fr *t1c.Frame) error {
	interval := f.FrameInterval
	if interval == 0 {
		interval = t1c.FrameInterval
	}
	time.Sleep(interval)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.noise.update()
	f.noise.render(fr)
	if f.preview.Invert() {
		for i, v := range fr.Pix {
			fr.Pix[i] = ^v
		}
	}
	fr.HighGain = f.gain
	fr.Frozen = f.frozen
	return nil
}

// SetPreviewMode implements t1c.Port. It records mode so ReadFrame can
// apply the same bit-inversion a real module would toggle on the wire
// (spec 4.4), keeping Fake's behavior observable from PreviewMode.
func (f *Fake) SetPreviewMode(mode t1c.PreviewMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.preview = mode
	return nil
}

// PreviewMode returns the mode last set via SetPreviewMode, for tests.
func (f *Fake) PreviewMode() t1c.PreviewMode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.preview
}

// GetParam implements t1c.Port.
func (f *Fake) GetParam(group t1c.Group, id t1c.ParamID) (uint16, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.params[group][id], nil
}

// SetParam implements t1c.Port.
func (f *Fake) SetParam(group t1c.Group, id t1c.ParamID, val uint16) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.params[group][id] = val
	if group == t1c.GroupImage && id == 0 {
		f.gain = val != 0
	}
	return nil
}

// IssueQuery implements t1c.Port.
func (f *Fake) IssueQuery(feature t1c.Feature, args interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pendingFeature = feature
	f.pendingArgs = args
	f.ready = false
	go func() {
		time.Sleep(time.Millisecond)
		f.mu.Lock()
		f.ready = true
		f.mu.Unlock()
	}()
	return nil
}

// PollReady implements t1c.Port.
func (f *Fake) PollReady() (t1c.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return t1c.Status{Busy: !f.ready}, nil
}

// Fetch implements t1c.Port.
func (f *Fake) Fetch(feature t1c.Feature) (interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if feature != f.pendingFeature {
		return nil, fmt.Errorf("t1ctest: fetch(%v): no pending query for that feature", feature)
	}
	switch feature {
	case t1c.FeatureSpot:
		a, _ := f.pendingArgs.(t1c.SpotArgs)
		return &t1c.SpotResult{X: a.X, Y: a.Y, TempC10: 300}, nil
	case t1c.FeatureMinMax:
		return &t1c.MinMaxResult{MinX: 0, MinY: 0, MaxX: t1c.Width - 1, MaxY: t1c.Height - 1, MinTempC10: 180, MaxTempC10: 420}, nil
	case t1c.FeatureRegion:
		a, _ := f.pendingArgs.(t1c.RegionArgs)
		return &t1c.RegionResult{Rect: a, MinC10: 180, MaxC10: 420, AvgC10: 280}, nil
	default:
		return nil, fmt.Errorf("t1ctest: fetch: unknown feature %v", feature)
	}
}

// ForceFFC implements t1c.Port.
func (f *Fake) ForceFFC() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ffcCount++
	return nil
}

// FFCCount returns the number of times ForceFFC was called, for tests.
func (f *Fake) FFCCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ffcCount
}

// Calibrate implements t1c.Port.
func (f *Fake) Calibrate(kind t1c.CalKind, blackBodyTempK uint16) error {
	return nil
}

// RestoreDefaults implements t1c.Port.
func (f *Fake) RestoreDefaults() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for g := range f.params {
		f.params[g] = map[t1c.ParamID]uint16{}
	}
	return nil
}

// Version implements t1c.Port.
func (f *Fake) Version() (string, error) {
	return "t1ctest-fake-1.0", nil
}

// Serial implements t1c.Port.
func (f *Fake) Serial() (string, error) {
	return "FAKE0000", nil
}

// Close implements t1c.Port.
func (f *Fake) Close() error {
	return nil
}

var _ t1c.Port = (*Fake)(nil)
