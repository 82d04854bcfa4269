// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package envsense implements the Environment Sampler (C5): periodic
// reads of the optional ambient temperature+humidity and distance
// peripherals, each on its own subsidiary schedule, fed to the frame
// pipeline as EnvSample snapshots.
package envsense

import (
	"context"
	"time"

	logger "github.com/d2r2/go-logger"

	"github.com/tclim/go-t1c/notify"
)

var lg = logger.NewPackageLogger("envsense", logger.InfoLevel)

// Sample is the latest ambient/distance reading, each with its own
// validity flag (spec 3's EnvSample).
type Sample struct {
	AmbientTempC float64
	AmbientValid bool
	HumidityPct  float64
	HumidityValid bool
	DistanceCM   float64
	DistanceValid bool
}

// AmbientSensor reads ambient temperature (°C) and relative humidity
// (%). Implemented by an SHT3x-style driver in production, a fake in
// tests.
type AmbientSensor interface {
	Read() (tempC, humidityPct float64, err error)
}

// DistanceSensor reads a time-of-flight distance in centimeters.
// Implemented by a VL53L1X-style driver in production, a fake in tests.
type DistanceSensor interface {
	Read() (distanceCM float64, err error)
}

const (
	pollInterval     = 100 * time.Millisecond
	ambientInterval  = 2 * time.Second
	distanceInterval = 500 * time.Millisecond
)

// Sampler runs the C5 task over whichever optional peripherals were
// wired at construction; if neither is present, Run returns immediately
// (spec 4.5: "if neither is present, the task terminates").
type Sampler struct {
	ambient  AmbientSensor
	distance DistanceSensor
	mailbox  *notify.Mailbox

	last Sample
}

// New builds a Sampler. Either sensor may be nil if that peripheral is
// absent; mailbox receives notify.NewAmbient/notify.NewDistance whenever
// a fresh reading (valid or not) is produced.
func New(ambient AmbientSensor, distance DistanceSensor, mailbox *notify.Mailbox) *Sampler {
	return &Sampler{ambient: ambient, distance: distance, mailbox: mailbox}
}

// Latest returns the most recently produced sample.
func (s *Sampler) Latest() Sample {
	return s.last
}

// Run drives the sampling loop until ctx is canceled. It returns nil
// immediately if neither peripheral was wired at construction.
func (s *Sampler) Run(ctx context.Context) error {
	if s.ambient == nil && s.distance == nil {
		lg.Infof("envsense: no ambient or distance peripheral present, task exiting")
		return nil
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var nextAmbient, nextDistance time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			changed := false
			if s.ambient != nil && !now.Before(nextAmbient) {
				s.sampleAmbient()
				nextAmbient = now.Add(ambientInterval)
				changed = true
				if s.mailbox != nil {
					s.mailbox.Post(notify.NewAmbient)
				}
			}
			if s.distance != nil && !now.Before(nextDistance) {
				s.sampleDistance()
				nextDistance = now.Add(distanceInterval)
				changed = true
				if s.mailbox != nil {
					s.mailbox.Post(notify.NewDistance)
				}
			}
			_ = changed
		}
	}
}

func (s *Sampler) sampleAmbient() {
	t, h, err := s.ambient.Read()
	if err != nil {
		lg.Debugf("envsense: ambient read failed: %v", err)
		s.last.AmbientValid = false
		s.last.HumidityValid = false
		return
	}
	s.last.AmbientTempC = t
	s.last.AmbientValid = true
	s.last.HumidityPct = h
	s.last.HumidityValid = true
}

func (s *Sampler) sampleDistance() {
	d, err := s.distance.Read()
	if err != nil {
		lg.Debugf("envsense: distance read failed: %v", err)
		s.last.DistanceValid = false
		return
	}
	s.last.DistanceCM = d
	s.last.DistanceValid = true
}
