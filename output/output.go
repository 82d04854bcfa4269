// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package output implements the Output State (C2): the single
// process-wide mirror of user-visible settings that the pipeline
// consumes, and its diff-save into the Persistent Config Store.
package output

import (
	"sync"

	logger "github.com/d2r2/go-logger"

	"github.com/tclim/go-t1c/config"
	"github.com/tclim/go-t1c/notify"
)

var lg = logger.NewPackageLogger("output", logger.InfoLevel)

// State is the process-wide mirror of user-visible settings (spec 3,
// OutputState). Every field is read/written under mu; callers batch a
// burst of changes into one lock acquisition with Mutate, and read a
// consistent copy of the fields with Snapshot (the frame pipeline reads
// them that way every cycle).
type State struct {
	mu sync.Mutex

	// Booleans.
	AutoFFC           bool
	HighGain          bool
	Portrait          bool // run-time only; never persisted.
	MinMaxMarkersOn   bool
	MinMaxTempsShown  bool
	PALNotNTSC        bool
	ReflEqualsAmbient bool
	RegionOn          bool
	SaveOverlayOn     bool
	SpotOn            bool
	UnitsMetric       bool
	UseAutoAmbient    bool

	// Small integers.
	PaletteGUI         uint8
	PaletteSave        uint8
	PaletteVideo       uint8
	AtmosphericTempC   int16
	Brightness         uint8
	DistanceCM         uint16
	Emissivity         uint8
	FFCDeltaTx10       int16
	HumidityPct        uint8
	Backlight          uint8
	MinMaxFFCIntervalS uint16
	ReflectedTempC     int16

	store   *config.Store
	lastT1C config.T1CRecord
	lastOut config.OutputRecord
}

// New returns a State bound to store. Call Init before use.
func New(store *config.Store) *State {
	return &State{store: store}
}

// Init hydrates the mirror from the config store.
func (s *State) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var t1c config.T1CRecord
	if err := s.store.Get(config.T1C, &t1c); err != nil {
		return err
	}
	var out config.OutputRecord
	if err := s.store.Get(config.Output, &out); err != nil {
		return err
	}
	s.applyT1CLocked(&t1c)
	s.applyOutLocked(&out)
	s.lastT1C = t1c
	s.lastOut = out
	return nil
}

func (s *State) applyT1CLocked(r *config.T1CRecord) {
	s.AutoFFC = r.AutoFFC
	s.HighGain = r.HighGain
	s.ReflEqualsAmbient = r.ReflEqualsAmbient
	s.UseAutoAmbient = r.UseAutoAmbient
	s.AtmosphericTempC = r.AtmosphericTempC
	s.ReflectedTempC = r.ReflectedTempC
	s.DistanceCM = r.DistanceCM
	s.Emissivity = r.Emissivity
	s.HumidityPct = r.HumidityPct
	s.FFCDeltaTx10 = r.FFCDeltaTx10
	s.MinMaxFFCIntervalS = r.MinMaxFFCIntervalS
}

func (s *State) applyOutLocked(r *config.OutputRecord) {
	s.PaletteGUI = r.PaletteGUI
	s.PaletteSave = r.PaletteSave
	s.PaletteVideo = r.PaletteVideo
	s.Brightness = r.Brightness
	s.Backlight = r.Backlight
	s.PALNotNTSC = r.PALNotNTSC
	s.MinMaxMarkersOn = r.MinMaxMarkersOn
	s.MinMaxTempsShown = r.MinMaxTempsShown
	s.RegionOn = r.RegionOn
	s.SaveOverlayOn = r.SaveOverlayOn
	s.SpotOn = r.SpotOn
	s.UnitsMetric = r.UnitsMetric
}

func (s *State) toT1CLocked() config.T1CRecord {
	return config.T1CRecord{
		Version:            1,
		AutoFFC:            s.AutoFFC,
		HighGain:           s.HighGain,
		ReflEqualsAmbient:  s.ReflEqualsAmbient,
		UseAutoAmbient:     s.UseAutoAmbient,
		AtmosphericTempC:   s.AtmosphericTempC,
		ReflectedTempC:     s.ReflectedTempC,
		DistanceCM:         s.DistanceCM,
		Emissivity:         s.Emissivity,
		HumidityPct:        s.HumidityPct,
		FFCDeltaTx10:       s.FFCDeltaTx10,
		MinMaxFFCIntervalS: s.MinMaxFFCIntervalS,
	}
}

func (s *State) toOutLocked() config.OutputRecord {
	return config.OutputRecord{
		Version:          1,
		PaletteGUI:       s.PaletteGUI,
		PaletteSave:      s.PaletteSave,
		PaletteVideo:     s.PaletteVideo,
		Brightness:       s.Brightness,
		Backlight:        s.Backlight,
		PALNotNTSC:       s.PALNotNTSC,
		MinMaxMarkersOn:  s.MinMaxMarkersOn,
		MinMaxTempsShown: s.MinMaxTempsShown,
		RegionOn:         s.RegionOn,
		SaveOverlayOn:    s.SaveOverlayOn,
		SpotOn:           s.SpotOn,
		UnitsMetric:      s.UnitsMetric,
	}
}

// Dirty reports which of the two backing records changed since the last
// load/save.
type Dirty struct {
	T1C    bool
	Output bool
}

// Any reports whether either record is dirty.
func (d Dirty) Any() bool { return d.T1C || d.Output }

// Save compares the mirror against the last-loaded/saved T1C and Output
// records, writes only the records that changed, and — if the T1C record
// changed — posts notify.ConfigUpdated to pipelineMailbox (may be nil in
// tests that don't care about notifications).
func (s *State) Save(pipelineMailbox *notify.Mailbox) (Dirty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	newT1C := s.toT1CLocked()
	newOut := s.toOutLocked()
	var d Dirty
	d.T1C = newT1C != s.lastT1C
	d.Output = newOut != s.lastOut
	if d.T1C {
		if err := s.store.Set(config.T1C, &newT1C); err != nil {
			return d, err
		}
		s.lastT1C = newT1C
		if pipelineMailbox != nil {
			pipelineMailbox.Post(notify.ConfigUpdated)
		}
	}
	if d.Output {
		if err := s.store.Set(config.Output, &newOut); err != nil {
			return d, err
		}
		s.lastOut = newOut
	}
	if d.Any() {
		lg.Debugf("output: saved dirty=%+v", d)
	}
	return d, nil
}

// Snapshot is a copy of the fields relevant to a single frame/consumer; it
// exists so callers never hold State's mutex longer than a copy.
type Snapshot struct {
	AutoFFC            bool
	HighGain           bool
	Portrait           bool
	MinMaxMarkersOn    bool
	MinMaxTempsShown   bool
	PALNotNTSC         bool
	ReflEqualsAmbient  bool
	RegionOn           bool
	SaveOverlayOn      bool
	SpotOn             bool
	UnitsMetric        bool
	UseAutoAmbient     bool
	PaletteGUI         uint8
	PaletteSave        uint8
	PaletteVideo       uint8
	AtmosphericTempC   int16
	Brightness         uint8
	DistanceCM         uint16
	Emissivity         uint8
	FFCDeltaTx10       int16
	HumidityPct        uint8
	Backlight          uint8
	MinMaxFFCIntervalS uint16
	ReflectedTempC     int16
}

// Snapshot copies out the full current mirror.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		AutoFFC:            s.AutoFFC,
		HighGain:           s.HighGain,
		Portrait:           s.Portrait,
		MinMaxMarkersOn:    s.MinMaxMarkersOn,
		MinMaxTempsShown:   s.MinMaxTempsShown,
		PALNotNTSC:         s.PALNotNTSC,
		ReflEqualsAmbient:  s.ReflEqualsAmbient,
		RegionOn:           s.RegionOn,
		SaveOverlayOn:      s.SaveOverlayOn,
		SpotOn:             s.SpotOn,
		UnitsMetric:        s.UnitsMetric,
		UseAutoAmbient:     s.UseAutoAmbient,
		PaletteGUI:         s.PaletteGUI,
		PaletteSave:        s.PaletteSave,
		PaletteVideo:       s.PaletteVideo,
		AtmosphericTempC:   s.AtmosphericTempC,
		Brightness:         s.Brightness,
		DistanceCM:         s.DistanceCM,
		Emissivity:         s.Emissivity,
		FFCDeltaTx10:       s.FFCDeltaTx10,
		HumidityPct:        s.HumidityPct,
		Backlight:          s.Backlight,
		MinMaxFFCIntervalS: s.MinMaxFFCIntervalS,
		ReflectedTempC:     s.ReflectedTempC,
	}
}

// Mutate runs fn with the mutex held, for command handlers that need to
// read-modify-write multiple fields atomically.
func (s *State) Mutate(fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}
