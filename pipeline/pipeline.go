// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pipeline implements the Frame Pipeline (C6), the system's hard
// subsystem: a single cooperatively-scheduled worker that owns the T1C
// transport and CCI, fans committed frames out through ping-pong
// FrameSlots, advances the CCI sub-state machine one step per frame, and
// keeps the atmospheric-transmission correction current.
package pipeline

import (
	"context"
	"math"
	"sync"
	"time"

	logger "github.com/d2r2/go-logger"

	"github.com/tclim/go-t1c/envsense"
	"github.com/tclim/go-t1c/notify"
	"github.com/tclim/go-t1c/output"
	"github.com/tclim/go-t1c/t1c"
	"github.com/tclim/go-t1c/tau"
)

var lg = logger.NewPackageLogger("pipeline", logger.InfoLevel)

// MetadataFn builds the immutable snapshot attached to a committed
// file-save frame (spec 4.10). cmd/camera's main wires this to the
// metadata Builder's Build function; pipeline stays unaware of its
// concrete shape.
type MetadataFn func(Snapshot, output.Snapshot) interface{}

// Config wires a Pipeline to its collaborators.
type Config struct {
	Port      t1c.Port
	Output    *output.State
	Estimator *tau.Estimator
	Mailbox   *notify.Mailbox // the pipeline's own inbox
	FileSaveMailbox *notify.Mailbox // notified when a file-save frame is committed

	DisplaySlots [2]*FrameSlot
	FileSlot     *FrameSlot

	BuildMetadata MetadataFn

	// EnvSampler, if non-nil, is polled once per frame for the latest
	// ambient/distance reading (C5's output).
	EnvSampler interface{ Latest() envsense.Sample }
}

// Pipeline is the C6 worker.
type Pipeline struct {
	port      t1c.Port
	output    *output.State
	estimator *tau.Estimator
	mailbox   *notify.Mailbox
	fileSaveMailbox *notify.Mailbox
	env       interface{ Latest() envsense.Sample }

	displaySlots [2]*FrameSlot
	fileSlot     *FrameSlot
	buildMeta    MetadataFn
	nextDisplay  int

	params *paramQueue

	cciState         cciState
	pendingWrite     ParamWrite
	havePendingWrite bool
	paramCache       map[t1c.Group]map[t1c.ParamID]uint16

	// paramPending tracks the value of every write that has been pushed
	// to params but not yet confirmed by recordWritten (still queued or
	// in flight in the CCI state machine). EnqueueParam consults this in
	// addition to paramCache so a second call with the same value before
	// the first round-trips the CCI doesn't produce a second bus
	// transaction (spec 8's "parameter write idempotence").
	paramPending map[t1c.Group]map[t1c.ParamID]uint16

	locMu        sync.Mutex
	spotX, spotY int
	regionRect   t1c.RegionArgs

	cachedSpot   SpotSnapshot
	cachedMinMax MinMaxSnapshot
	cachedRegion RegionSnapshot

	lastTaC, lastDistM float64
	tauReady           bool

	cal2PtLatch     bool
	pendingCalTempK uint16

	fileWantsImage bool

	frameCount uint32
}

// New builds a Pipeline from cfg. Call Run to start the worker.
func New(cfg Config) *Pipeline {
	p := &Pipeline{
		port:         cfg.Port,
		output:       cfg.Output,
		estimator:    cfg.Estimator,
		mailbox:      cfg.Mailbox,
		fileSaveMailbox: cfg.FileSaveMailbox,
		env:          cfg.EnvSampler,
		displaySlots: cfg.DisplaySlots,
		fileSlot:     cfg.FileSlot,
		buildMeta:    cfg.BuildMetadata,
		params:       newParamQueue(),
		paramCache:   map[t1c.Group]map[t1c.ParamID]uint16{t1c.GroupShutter: {}, t1c.GroupImage: {}, t1c.GroupTPD: {}},
		paramPending: map[t1c.Group]map[t1c.ParamID]uint16{t1c.GroupShutter: {}, t1c.GroupImage: {}, t1c.GroupTPD: {}},
	}
	return p
}

// EnqueueParam pushes a ParamWrite if val differs from the group's
// cached last-written value (spec 4.6.4's bus-churn avoidance). Exposed
// so command handlers (C7) can request writes directly.
func (p *Pipeline) EnqueueParam(group t1c.Group, id t1c.ParamID, val uint16) {
	if cached, ok := p.paramCache[group][id]; ok && cached == val {
		return
	}
	if pending, ok := p.paramPending[group][id]; ok && pending == val {
		// Already queued or in flight with this exact value; recordWritten
		// will land it in paramCache once the CCI confirms it.
		return
	}
	if !p.params.push(ParamWrite{Group: group, ID: id, Value: val}) {
		lg.Warnf("pipeline: param queue full, dropped %v/%v=%v", group, id, val)
		return
	}
	p.paramPending[group][id] = val
}

// SetSpotLocation updates where the next spot query targets. Safe to
// call from the command-handling worker concurrently with the pipeline
// worker's Run loop.
func (p *Pipeline) SetSpotLocation(x, y int) {
	p.locMu.Lock()
	p.spotX, p.spotY = x, y
	p.locMu.Unlock()
}

// SetRegionLocation updates where the next region query targets.
func (p *Pipeline) SetRegionLocation(r t1c.RegionArgs) {
	p.locMu.Lock()
	p.regionRect = r
	p.locMu.Unlock()
}

func (p *Pipeline) spotLocation() (int, int) {
	p.locMu.Lock()
	defer p.locMu.Unlock()
	return p.spotX, p.spotY
}

func (p *Pipeline) regionLocation() t1c.RegionArgs {
	p.locMu.Lock()
	defer p.locMu.Unlock()
	return p.regionRect
}

// RequestFileFrame latches a request to also commit the next frame into
// the file-save slot (spec 4.6.6: "latched for the next frame cycle").
func (p *Pipeline) RequestFileFrame() {
	p.fileWantsImage = true
}

func (p *Pipeline) popParam() (ParamWrite, bool) {
	return p.params.pop(p.cal2PtLatch)
}

func (p *Pipeline) recordWritten(pw ParamWrite) {
	p.paramCache[pw.Group][pw.ID] = pw.Value
	if pending, ok := p.paramPending[pw.Group][pw.ID]; ok && pending == pw.Value {
		delete(p.paramPending[pw.Group], pw.ID)
	}
}

func (p *Pipeline) invalidateFeature(feature t1c.Feature) {
	switch feature {
	case t1c.FeatureSpot:
		p.cachedSpot.Valid = false
	case t1c.FeatureMinMax:
		p.cachedMinMax.Valid = false
	case t1c.FeatureRegion:
		p.cachedRegion.Valid = false
	}
}

func (p *Pipeline) cacheFeature(feature t1c.Feature, res interface{}) {
	switch feature {
	case t1c.FeatureSpot:
		r, ok := res.(*t1c.SpotResult)
		if !ok {
			return
		}
		p.cachedSpot = SpotSnapshot{X: r.X, Y: r.Y, TempC10: r.TempC10, Valid: true}
	case t1c.FeatureMinMax:
		r, ok := res.(*t1c.MinMaxResult)
		if !ok {
			return
		}
		p.cachedMinMax = MinMaxSnapshot{
			MinX: r.MinX, MinY: r.MinY, MaxX: r.MaxX, MaxY: r.MaxY,
			MinTempC10: r.MinTempC10, MaxTempC10: r.MaxTempC10, Valid: true,
		}
	case t1c.FeatureRegion:
		r, ok := res.(*t1c.RegionResult)
		if !ok {
			return
		}
		p.cachedRegion = RegionSnapshot{Rect: r.Rect, MinC10: r.MinC10, MaxC10: r.MaxC10, AvgC10: r.AvgC10, Valid: true}
	}
}

func (p *Pipeline) onGainChanged() {
	gain := tau.GainLow
	if p.output.Snapshot().HighGain {
		gain = tau.GainHigh
	}
	if err := p.estimator.ReadTable(gain); err != nil {
		lg.Errorf("pipeline: reloading tau table for gain change: %v", err)
		return
	}
	p.tauReady = false // force a recompute next cycle regardless of ta/distance delta
}

// Run drives the frame cycle (spec 4.6.2) at the T1C's native cadence
// until ctx is canceled or a shutdown notification is observed.
func (p *Pipeline) Run(ctx context.Context) error {
	ticker := time.NewTicker(t1c.FrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if p.drainNotifications() {
			return nil
		}

		var f t1c.Frame
		if err := p.port.ReadFrame(&f); err != nil {
			lg.Warnf("pipeline: ReadFrame: %v", err)
			continue
		}
		p.frameCount++

		y16Min, y16Max := f.Pix[0], f.Pix[0]
		for _, v := range f.Pix {
			if v < y16Min {
				y16Min = v
			}
			if v > y16Max {
				y16Max = v
			}
		}

		envSample := envsense.Sample{}
		if p.env != nil {
			envSample = p.env.Latest()
		}
		envSnap := EnvSnapshot{
			AmbientTempC: envSample.AmbientTempC, AmbientValid: envSample.AmbientValid,
			HumidityPct: envSample.HumidityPct, HumidityValid: envSample.HumidityValid,
			DistanceCM: envSample.DistanceCM, DistanceValid: envSample.DistanceValid,
		}

		out := p.output.Snapshot()
		p.recomputeTau(envSnap, out)

		slot := p.displaySlots[p.nextDisplay]
		p.nextDisplay = (p.nextDisplay + 1) % len(p.displaySlots)
		slot.Commit(func(s *FrameSlot) {
			s.Pix = f.Pix
			s.Y16Min, s.Y16Max = y16Min, y16Max
			s.HighGain, s.Frozen = f.HighGain, f.Frozen
			s.Env = envSnap
			s.Spot = p.cachedSpot
			s.MinMax = p.cachedMinMax
			s.Region = p.cachedRegion
		})

		if p.fileWantsImage {
			p.fileWantsImage = false
			if p.fileSlot != nil {
				var snap Snapshot
				p.fileSlot.Commit(func(s *FrameSlot) {
					s.Pix = f.Pix
					s.Y16Min, s.Y16Max = y16Min, y16Max
					s.HighGain, s.Frozen = f.HighGain, f.Frozen
					s.Env = envSnap
					s.Spot = p.cachedSpot
					s.MinMax = p.cachedMinMax
					s.Region = p.cachedRegion
					if p.buildMeta != nil {
						snap = Snapshot{Pix: s.Pix, Y16Min: s.Y16Min, Y16Max: s.Y16Max, HighGain: s.HighGain, Frozen: s.Frozen, Env: s.Env, Spot: s.Spot, MinMax: s.MinMax, Region: s.Region}
					}
				})
				if p.buildMeta != nil {
					p.fileSlot.Commit(func(s *FrameSlot) { s.Meta = p.buildMeta(snap, out) })
				}
				if p.fileSaveMailbox != nil {
					p.fileSaveMailbox.Post(notify.FileWantsImage)
				}
			}
		}

		p.stepCCI()
	}
}

// drainNotifications consumes the pipeline's mailbox once per frame
// cycle per the ordering guarantees of spec 4.6.6: shutdown is checked
// first, then config-updated (any recomputation below reads the
// config-derived output mirror), then env and location updates, then
// restore-defaults and calibration requests, then manual FFC, and
// file-wants-image is latched last. It reports whether a shutdown
// notification was observed.
func (p *Pipeline) drainNotifications() bool {
	if p.mailbox == nil {
		return false
	}
	bits := p.mailbox.Drain()
	if bits == 0 {
		return false
	}
	if notify.Has(bits, notify.Shutdown) {
		return true
	}
	if notify.Has(bits, notify.ConfigUpdated) {
		// Nothing to do beyond letting recomputeTau observe the refreshed
		// output mirror this cycle; the mirror itself is owned by output.State.
	}
	if notify.Has(bits, notify.EnvUpdated) || notify.Has(bits, notify.NewAmbient) || notify.Has(bits, notify.NewDistance) ||
		notify.Has(bits, notify.SetSpotLocation) || notify.Has(bits, notify.SetRegionLocation) {
		// Location/env-affecting settings changed out from under us; force
		// recomputeTau to re-evaluate next cycle instead of relying on the
		// ta/distance delta check, and make sure the next feature query
		// picks up the freshly set location (spec 4.6.6's ordering note).
		// NewAmbient/NewDistance are envsense's per-sensor "a fresh reading
		// landed" bits (spec 4.6.6 lists both alongside env-updated); acting
		// on them here, not just EnvUpdated, stops them being dead bits that
		// the pipeline only happened to track correctly by polling Latest()
		// unconditionally every frame.
		p.tauReady = false
	}
	if notify.Has(bits, notify.RestoreDefaults) {
		p.restoreDefaults()
	}
	if notify.Has(bits, notify.Cal1Pt) {
		p.calibrate1Point(p.pendingCalTempK)
	}
	if notify.Has(bits, notify.Cal2PtLow) {
		p.calibrate2PointLow(p.pendingCalTempK)
	}
	if notify.Has(bits, notify.Cal2PtHigh) {
		p.calibrate2PointHigh(p.pendingCalTempK)
	}
	if notify.Has(bits, notify.ManualFFC) {
		if err := p.port.ForceFFC(); err != nil {
			lg.Warnf("pipeline: ForceFFC: %v", err)
		}
	}
	if notify.Has(bits, notify.FileWantsImage) {
		p.fileWantsImage = true
	}
	return false
}

// SetPendingCalTemp records the operator-supplied black-body temperature
// (K) a command handler stashes here ahead of posting a calibration
// notification bit; the pipeline only ever has one calibration in
// flight, so a single slot is enough.
func (p *Pipeline) SetPendingCalTemp(tempK uint16) {
	p.pendingCalTempK = tempK
}

// encodeTempParam encodes a signed whole-degree Celsius value as the
// CCI's TPD temperature parameter wire format (int16 bit pattern carried
// in a uint16 register).
func encodeTempParam(c float64) uint16 {
	v := int(math.Round(c))
	if v > math.MaxInt16 {
		v = math.MaxInt16
	}
	if v < math.MinInt16 {
		v = math.MinInt16
	}
	return uint16(int16(v))
}
