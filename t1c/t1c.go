// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package t1c is a thin adapter over the T1C thermal sensor module's
// vendor SDK (the T1C Port, C4): frame streaming, parameter get/set,
// out-of-band feature queries and calibration.
//
// It assumes a dedicated serial link for the Y16 frame stream plus a
// shared I²C Command and Control Interface (CCI), mirroring how the FLIR
// Lepton splits VoSPI video from an I²C control channel.
package t1c

import (
	"fmt"
	"time"
)

// Width and Height are the T1C's fixed sensor resolution.
const (
	Width  = 256
	Height = 192
)

// Group identifies a parameter group on the T1C's CCI.
type Group uint8

// The three parameter groups spec 3 names.
const (
	GroupShutter Group = iota
	GroupImage
	GroupTPD
)

func (g Group) String() string {
	switch g {
	case GroupShutter:
		return "shutter"
	case GroupImage:
		return "image"
	case GroupTPD:
		return "tpd"
	default:
		return fmt.Sprintf("group(%d)", uint8(g))
	}
}

// ParamID identifies a parameter within a Group. The tpd group's
// parameter IDs of interest to the pipeline are named here; others are
// opaque small integers.
type ParamID uint16

// TPD group parameter IDs relevant to tau management (spec 4.6.4) and
// calibration (spec 4.6.5).
const (
	ParamTPDGain ParamID = iota
	ParamTPDAtmosphericTemp
	ParamTPDReflectedTemp
	ParamTPDDistance
	ParamTPDHumidity
	ParamTPDEmissivity
	ParamTPDTau
)

// Feature identifies a query-able out-of-band measurement (spec 4.6.3).
type Feature int

const (
	FeatureSpot Feature = iota
	FeatureMinMax
	FeatureRegion
)

func (f Feature) String() string {
	switch f {
	case FeatureSpot:
		return "spot"
	case FeatureMinMax:
		return "minmax"
	case FeatureRegion:
		return "region"
	default:
		return fmt.Sprintf("feature(%d)", int(f))
	}
}

// SpotArgs locates the spot-temperature query.
type SpotArgs struct {
	X, Y int
}

// RegionArgs locates the region-statistics query.
type RegionArgs struct {
	X0, Y0, X1, Y1 int
}

// SpotResult is the outcome of a spot query.
type SpotResult struct {
	X, Y    int
	TempC10 int16 // °C x10
}

// MinMaxResult is the outcome of a scene min/max query. These are
// radiometric scene temperatures, independent from the raw-pixel
// y16_min/y16_max the frame pipeline tracks every frame (spec 4.6.7).
type MinMaxResult struct {
	MinX, MinY   int
	MaxX, MaxY   int
	MinTempC10   int16
	MaxTempC10   int16
}

// RegionResult is the outcome of a region-statistics query.
type RegionResult struct {
	Rect                   RegionArgs
	MinC10, MaxC10, AvgC10 int16
}

// CalKind identifies a calibration procedure (spec 4.6.5, spec 6 control
// activities).
type CalKind int

const (
	Cal1Point CalKind = iota
	Cal2PointLow
	Cal2PointHigh
)

// PreviewMode selects what the Y16 stream carries and how C6 should
// interpret it (spec 4.4). Temperature and gamma modes deliver pixel
// values straight off the sensor; every other preview mode bit-inverts
// its pixel values on the wire, and the port transparently un-inverts
// them before delivering a Frame.
type PreviewMode int

const (
	PreviewTemperature PreviewMode = iota
	PreviewGamma
	PreviewWhiteHot
	PreviewBlackHot
	PreviewIronbow
	PreviewRainbow
)

// Invert reports whether mode's wire pixels are bit-inverted (spec
// 4.4): true for every preview mode except temperature and gamma.
func (m PreviewMode) Invert() bool {
	return m != PreviewTemperature && m != PreviewGamma
}

func (m PreviewMode) String() string {
	switch m {
	case PreviewTemperature:
		return "temperature"
	case PreviewGamma:
		return "gamma"
	case PreviewWhiteHot:
		return "white-hot"
	case PreviewBlackHot:
		return "black-hot"
	case PreviewIronbow:
		return "ironbow"
	case PreviewRainbow:
		return "rainbow"
	default:
		return fmt.Sprintf("preview(%d)", int(m))
	}
}

// Status is the module's busy/error register (spec 4.6.3's Wait states).
type Status struct {
	Busy  bool
	Error bool
}

// Frame is one acquired thermal frame: the raw 16-bit pixel plane plus
// the header fields embedded in the frame's framing preamble (spec 4.4).
type Frame struct {
	Pix      [Width * Height]uint16
	HighGain bool
	Frozen   bool
}

// Port is the narrow interface the frame pipeline (C6) drives. A real
// implementation talks to the physical module; t1ctest.Fake stands in
// for tests and for builds without hardware.
type Port interface {
	// Boot powers up the module, validates firmware and serial, and
	// starts the Y16 preview stream with linear transfer.
	Boot() error

	// ReadFrame blocks until one frame is available and fills f.
	ReadFrame(f *Frame) error

	// SetPreviewMode switches the streamed preview mode. Non-temperature,
	// non-gamma modes are bit-inverted on the wire; the port toggles the
	// inversion transparently so ReadFrame always delivers values in the
	// same sense regardless of mode (spec 4.4's data inversion).
	SetPreviewMode(mode PreviewMode) error

	GetParam(group Group, id ParamID) (uint16, error)
	SetParam(group Group, id ParamID, val uint16) error

	// IssueQuery writes the command registers for feature without
	// waiting for completion (spec 4.6.3: "do not wait").
	IssueQuery(feature Feature, args interface{}) error
	// PollReady reports the module's busy/status register.
	PollReady() (Status, error)
	// Fetch reads out the response of a previously issued query.
	// Returns one of *SpotResult, *MinMaxResult or *RegionResult
	// depending on feature.
	Fetch(feature Feature) (interface{}, error)

	ForceFFC() error
	Calibrate(kind CalKind, blackBodyTempK uint16) error
	RestoreDefaults() error

	Version() (string, error)
	Serial() (string, error)

	Close() error
}

// FrameInterval is the T1C's native frame cadence (spec 4.6.1: ≈25Hz).
const FrameInterval = time.Second / 25
