// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package coordinator implements the Coordinator (C11): it boots the
// core's components in the fixed order spec 4.11 requires; their
// notification mailboxes are wired by the caller. It owns no steady-state logic
// of its own beyond that boot sequence.
package coordinator

import (
	"context"
	"fmt"

	logger "github.com/d2r2/go-logger"

	"github.com/tclim/go-t1c/config"
	"github.com/tclim/go-t1c/envsense"
	"github.com/tclim/go-t1c/output"
	"github.com/tclim/go-t1c/pipeline"
)

var lg = logger.NewPackageLogger("coordinator", logger.InfoLevel)

// FaultCode identifies why the coordinator halted (spec 4.11, 7).
type FaultCode int

const (
	FaultNone FaultCode = iota
	FaultStorage
	FaultOutputHydrate
	FaultWifi
	FaultSensorReset
	FaultSensorBoot
)

func (f FaultCode) String() string {
	switch f {
	case FaultNone:
		return "none"
	case FaultStorage:
		return "storage"
	case FaultOutputHydrate:
		return "output-hydrate"
	case FaultWifi:
		return "wifi"
	case FaultSensorReset:
		return "sensor-reset"
	case FaultSensorBoot:
		return "sensor-boot"
	default:
		return fmt.Sprintf("FaultCode(%d)", int(f))
	}
}

// HostUX is the narrow fault-reporting interface the coordinator holds
// onto the host-UX collaborator (display/LED fault indication, excluded
// from the core per spec 1).
type HostUX interface {
	SetFault(code FaultCode)
}

// Worker is anything the coordinator spawns once boot succeeds: C5, C6,
// the platform consumer, and file-save all share this shape.
type Worker interface {
	Run(ctx context.Context) error
}

// Config wires every collaborator the boot sequence touches. Consumer
// and FileSave are platform-specific (display/web, SD-card writer) and
// passed in already constructed; the coordinator only sequences and
// spawns them.
type Config struct {
	Store       *config.Store
	Output      *output.State
	HostUX      HostUX
	StartWifi   func() error // nil if the build has no WiFi
	ResetSensor func() error

	EnvSampler *envsense.Sampler // nil if no ambient/distance peripherals
	Pipeline   *pipeline.Pipeline
	Consumer   Worker
	FileSave   Worker
}

// Coordinator runs the fixed boot sequence and keeps the handles needed
// to know it completed (tests check which steps ran).
type Coordinator struct {
	cfg Config
}

// New returns a Coordinator for cfg. Call Boot to run the sequence.
func New(cfg Config) *Coordinator {
	return &Coordinator{cfg: cfg}
}

// Boot runs storage init -> output-state hydrate -> optional WiFi ->
// sensor reset strobe -> spawn C5, C6, consumer, file-save (spec 4.11).
// Buffer allocation is implicit: FrameSlots and the correction table are
// already allocated by the caller's Config construction, matching the
// "allocate all large buffers in the big-buffer region" step before any
// worker starts reading from them.
//
// A failure at any stage sets a fault code on HostUX and returns without
// spawning further workers; any worker already spawned is left running,
// per spec 4.11's "individual workers already started are left running".
func (c *Coordinator) Boot(ctx context.Context) error {
	if err := c.cfg.Store.Init(); err != nil {
		c.fault(FaultStorage)
		return fmt.Errorf("coordinator: storage init: %w", err)
	}
	if err := c.cfg.Output.Init(); err != nil {
		c.fault(FaultOutputHydrate)
		return fmt.Errorf("coordinator: output hydrate: %w", err)
	}
	if c.cfg.StartWifi != nil {
		if err := c.cfg.StartWifi(); err != nil {
			c.fault(FaultWifi)
			return fmt.Errorf("coordinator: wifi bring-up: %w", err)
		}
	}
	if c.cfg.ResetSensor != nil {
		if err := c.cfg.ResetSensor(); err != nil {
			c.fault(FaultSensorReset)
			return fmt.Errorf("coordinator: sensor reset: %w", err)
		}
	}

	if c.cfg.EnvSampler != nil {
		go func() {
			if err := c.cfg.EnvSampler.Run(ctx); err != nil {
				lg.Errorf("coordinator: environment sampler exited: %v", err)
			}
		}()
	}
	go func() {
		if err := c.cfg.Pipeline.Run(ctx); err != nil {
			lg.Errorf("coordinator: frame pipeline exited: %v", err)
		}
	}()
	if c.cfg.Consumer != nil {
		go func() {
			if err := c.cfg.Consumer.Run(ctx); err != nil {
				lg.Errorf("coordinator: consumer exited: %v", err)
			}
		}()
	}
	if c.cfg.FileSave != nil {
		go func() {
			if err := c.cfg.FileSave.Run(ctx); err != nil {
				lg.Errorf("coordinator: file-save worker exited: %v", err)
			}
		}()
	}
	return nil
}

func (c *Coordinator) fault(code FaultCode) {
	lg.Errorf("coordinator: halting boot, fault=%v", code)
	if c.cfg.HostUX != nil {
		c.cfg.HostUX.SetFault(code)
	}
}
