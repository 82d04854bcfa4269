// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"testing"
	"time"

	"github.com/tclim/go-t1c/cmdbus"
	"github.com/tclim/go-t1c/config"
	"github.com/tclim/go-t1c/notify"
	"github.com/tclim/go-t1c/output"
	"github.com/tclim/go-t1c/pipeline"
	"github.com/tclim/go-t1c/t1c/t1ctest"
	"github.com/tclim/go-t1c/tau"
)

func newTestEnv(t *testing.T) (*cmdbus.Bus, *commandEnv) {
	t.Helper()
	store := config.New(config.NewMemStore())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	out := output.New(store)
	if err := out.Init(); err != nil {
		t.Fatal(err)
	}
	fake := t1ctest.New()
	fake.FrameInterval = time.Millisecond
	mbox := notify.New()
	slots := [2]*pipeline.FrameSlot{{}, {}}
	fileSlot := &pipeline.FrameSlot{}
	pipe := pipeline.New(pipeline.Config{
		Port: fake, Output: out, Estimator: tau.NewEstimator(nil), Mailbox: mbox,
		DisplaySlots: slots, FileSlot: fileSlot,
	})

	var streamOn, battery int32
	env := &commandEnv{
		store: store, out: out, pipe: pipe, mbox: mbox,
		displaySlots: slots, fileSlot: fileSlot,
		streamOn: &streamOn, batteryPct: &battery,
	}
	bus := cmdbus.InitLocal()
	registerCommands(bus, env)
	return bus, env
}

func TestBrightnessRoundTrip(t *testing.T) {
	bus, _ := newTestEnv(t)
	if _, _, err := bus.Send(cmdbus.Set, cmdbus.Brightness, cmdbus.PayloadI32, cmdbus.EncodeI32(77)); err != nil {
		t.Fatal(err)
	}
	payload, _, err := bus.Send(cmdbus.Get, cmdbus.Brightness, cmdbus.PayloadI32, nil)
	if err != nil {
		t.Fatal(err)
	}
	got, err := cmdbus.DecodeI32(payload)
	if err != nil {
		t.Fatal(err)
	}
	if got != 77 {
		t.Fatalf("brightness = %d, want 77", got)
	}
}

func TestSpotLocSetsPipelineLocationAndNotifies(t *testing.T) {
	bus, env := newTestEnv(t)
	p := cmdbus.SpotLocPayload{X: 12, Y: 34}
	if _, _, err := bus.Send(cmdbus.Set, cmdbus.SpotLoc, cmdbus.PayloadBinary, p.Encode()); err != nil {
		t.Fatal(err)
	}
	if bits := env.mbox.Peek(); !notify.Has(bits, notify.SetSpotLocation) {
		t.Fatal("expected SetSpotLocation bit posted")
	}
}

func TestCtrlActivityRestoreDefaultsNotifies(t *testing.T) {
	bus, env := newTestEnv(t)
	p := cmdbus.ActivityPayload{Activity: cmdbus.ActivityRestoreDefaults}
	if _, _, err := bus.Send(cmdbus.Set, cmdbus.CtrlActivity, cmdbus.PayloadBinary, p.Encode()); err != nil {
		t.Fatal(err)
	}
	if bits := env.mbox.Peek(); !notify.Has(bits, notify.RestoreDefaults) {
		t.Fatal("expected RestoreDefaults bit posted")
	}
}

func TestAmbientCorrectPersistsAndNotifies(t *testing.T) {
	bus, env := newTestEnv(t)
	p := cmdbus.AmbientCorrectPayload{
		UseAuto: false, ReflEqualsAmbient: true,
		AtmosphericTempC: 18, DistanceCM: 200, HumidityPct: 60, ReflectedTempC: 18,
	}
	if _, _, err := bus.Send(cmdbus.Set, cmdbus.AmbientCorrect, cmdbus.PayloadBinary, p.Encode()); err != nil {
		t.Fatal(err)
	}
	snap := env.out.Snapshot()
	if snap.HumidityPct != 60 || snap.DistanceCM != 200 {
		t.Fatalf("output not updated: %+v", snap)
	}
	if bits := env.mbox.Peek(); !notify.Has(bits, notify.EnvUpdated) {
		t.Fatal("expected EnvUpdated bit posted")
	}
}
