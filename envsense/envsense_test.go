// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package envsense

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tclim/go-t1c/notify"
)

type fakeAmbient struct {
	tempC, humidityPct float64
	err                error
	calls              int
}

func (f *fakeAmbient) Read() (float64, float64, error) {
	f.calls++
	if f.err != nil {
		return 0, 0, f.err
	}
	return f.tempC, f.humidityPct, nil
}

type fakeDistance struct {
	cm    float64
	err   error
	calls int
}

func (f *fakeDistance) Read() (float64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.cm, nil
}

func TestRunExitsImmediatelyWithNoPeripherals(t *testing.T) {
	s := New(nil, nil, nil)
	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return promptly with no peripherals wired")
	}
}

func TestSampleAmbientUpdatesLatest(t *testing.T) {
	a := &fakeAmbient{tempC: 21.5, humidityPct: 40}
	s := New(a, nil, notify.New())
	s.sampleAmbient()
	got := s.Latest()
	if !got.AmbientValid || got.AmbientTempC != 21.5 {
		t.Fatalf("got %+v", got)
	}
	if !got.HumidityValid || got.HumidityPct != 40 {
		t.Fatalf("got %+v", got)
	}
}

func TestSampleAmbientFailurePreservesPriorReading(t *testing.T) {
	a := &fakeAmbient{tempC: 21.5, humidityPct: 40}
	s := New(a, nil, nil)
	s.sampleAmbient()
	a.err = errors.New("bus timeout")
	s.sampleAmbient()
	got := s.Latest()
	if got.AmbientValid {
		t.Fatal("expected AmbientValid=false after failed read")
	}
	if got.AmbientTempC != 21.5 {
		t.Fatalf("expected prior reading preserved, got %v", got.AmbientTempC)
	}
}

func TestSampleDistanceFailurePreservesPriorReading(t *testing.T) {
	d := &fakeDistance{cm: 150}
	s := New(nil, d, nil)
	s.sampleDistance()
	d.err = errors.New("sensor not ready")
	s.sampleDistance()
	got := s.Latest()
	if got.DistanceValid {
		t.Fatal("expected DistanceValid=false after failed read")
	}
	if got.DistanceCM != 150 {
		t.Fatalf("expected prior reading preserved, got %v", got.DistanceCM)
	}
}

func TestRunPostsNotifications(t *testing.T) {
	a := &fakeAmbient{tempC: 20, humidityPct: 50}
	d := &fakeDistance{cm: 100}
	mb := notify.New()
	s := New(a, d, mb)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	<-done

	bits := mb.Drain()
	if !notify.Has(bits, notify.NewAmbient) {
		t.Error("expected NewAmbient bit posted")
	}
	if !notify.Has(bits, notify.NewDistance) {
		t.Error("expected NewDistance bit posted")
	}
}
