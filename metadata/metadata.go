// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package metadata implements the Metadata Builder (C10): an immutable
// snapshot of image- and TPD-parameter state taken at the moment a
// file-save frame is committed, plus the human-readable annotation
// lines. cmd/camera's file-save worker writes those lines to a text
// sidecar next to the saved PNG; nothing here embeds them in an image.
package metadata

import (
	"fmt"
	"time"

	"github.com/tclim/go-t1c/output"
	"github.com/tclim/go-t1c/pipeline"
)

// Snapshot is the immutable record attached to a saved frame (spec
// 4.10). No lookup or computation happens after it is built.
type Snapshot struct {
	Platform        string
	FirmwareVersion string
	SensorSerial    string
	Time            time.Time

	PaletteSave uint8

	Y16Min, Y16Max uint16
	HighGain       bool

	Spot   pipeline.SpotSnapshot
	MinMax pipeline.MinMaxSnapshot
	Region pipeline.RegionSnapshot

	Env pipeline.EnvSnapshot

	AtmosphericTempC  int16
	ReflectedTempC    int16
	DistanceCM        uint16
	HumidityPct       uint8
	Emissivity        uint8
	UseAutoAmbient    bool
	ReflEqualsAmbient bool
}

// Builder holds the boot-time-constant fields (platform name, firmware
// version, sensor serial) that every snapshot repeats, plus a clock so
// tests can control the stamped time.
type Builder struct {
	Platform        string
	FirmwareVersion string
	SensorSerial    string
	Now             func() time.Time
}

// Build returns a pipeline.MetadataFn bound to b, ready to wire into
// pipeline.Config.BuildMetadata.
func (b *Builder) Build() pipeline.MetadataFn {
	return func(frame pipeline.Snapshot, out output.Snapshot) interface{} {
		now := time.Now
		if b.Now != nil {
			now = b.Now
		}
		return &Snapshot{
			Platform:          b.Platform,
			FirmwareVersion:   b.FirmwareVersion,
			SensorSerial:      b.SensorSerial,
			Time:              now(),
			PaletteSave:       out.PaletteSave,
			Y16Min:            frame.Y16Min,
			Y16Max:            frame.Y16Max,
			HighGain:          frame.HighGain,
			Spot:              frame.Spot,
			MinMax:            frame.MinMax,
			Region:            frame.Region,
			Env:               frame.Env,
			AtmosphericTempC:  out.AtmosphericTempC,
			ReflectedTempC:    out.ReflectedTempC,
			DistanceCM:        out.DistanceCM,
			HumidityPct:       out.HumidityPct,
			Emissivity:        out.Emissivity,
			UseAutoAmbient:    out.UseAutoAmbient,
			ReflEqualsAmbient: out.ReflEqualsAmbient,
		}
	}
}

// AnnotationLines renders s as the human-readable lines the file-save
// worker writes to its text sidecar (spec 4.10): platform, firmware
// version, sensor serial, time, palette, scene extrema, spot/region
// stats, env readings, selected TPD settings.
func AnnotationLines(s *Snapshot) []string {
	lines := []string{
		fmt.Sprintf("platform: %s", s.Platform),
		fmt.Sprintf("firmware: %s", s.FirmwareVersion),
		fmt.Sprintf("serial: %s", s.SensorSerial),
		fmt.Sprintf("time: %s", s.Time.Format(time.RFC3339)),
		fmt.Sprintf("palette: %d", s.PaletteSave),
		fmt.Sprintf("scene: y16 [%d, %d] high-gain=%v", s.Y16Min, s.Y16Max, s.HighGain),
	}
	if s.Spot.Valid {
		lines = append(lines, fmt.Sprintf("spot: (%d,%d) %.1fC", s.Spot.X, s.Spot.Y, float64(s.Spot.TempC10)/10))
	}
	if s.MinMax.Valid {
		lines = append(lines, fmt.Sprintf("minmax: min %.1fC @(%d,%d) max %.1fC @(%d,%d)",
			float64(s.MinMax.MinTempC10)/10, s.MinMax.MinX, s.MinMax.MinY,
			float64(s.MinMax.MaxTempC10)/10, s.MinMax.MaxX, s.MinMax.MaxY))
	}
	if s.Region.Valid {
		lines = append(lines, fmt.Sprintf("region: [%d,%d]-[%d,%d] min %.1fC max %.1fC avg %.1fC",
			s.Region.Rect.X0, s.Region.Rect.Y0, s.Region.Rect.X1, s.Region.Rect.Y1,
			float64(s.Region.MinC10)/10, float64(s.Region.MaxC10)/10, float64(s.Region.AvgC10)/10))
	}
	if s.Env.AmbientValid {
		lines = append(lines, fmt.Sprintf("ambient: %.1fC", s.Env.AmbientTempC))
	}
	if s.Env.HumidityValid {
		lines = append(lines, fmt.Sprintf("humidity: %.0f%%", s.Env.HumidityPct))
	}
	if s.Env.DistanceValid {
		lines = append(lines, fmt.Sprintf("distance: %.1fcm", s.Env.DistanceCM))
	}
	lines = append(lines, fmt.Sprintf("tpd: ta=%dC tu=%dC dist=%dcm hum=%d%% emis=%d%% auto-ambient=%v refl=ambient=%v",
		s.AtmosphericTempC, s.ReflectedTempC, s.DistanceCM, s.HumidityPct, s.Emissivity, s.UseAutoAmbient, s.ReflEqualsAmbient))
	return lines
}
