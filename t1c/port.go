// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package t1c

import (
	"fmt"
	"io"

	logger "github.com/d2r2/go-logger"
	"periph.io/x/periph/conn/i2c"
)

var lg = logger.NewPackageLogger("t1c", logger.InfoLevel)

// Dev is the real T1C Port implementation: a frame stream over a
// dedicated serial link plus a CCI shared over I²C with the auxiliary
// sensors envsense owns.
type Dev struct {
	serial *frameSerial
	cci    *cci
}

// Open wires a Dev against an already-opened frame stream reader and an
// I²C bus carrying the CCI. The frame stream reader is typically a
// serial port (e.g. opened via a termios-configured *os.File); the bus
// is typically shared with envsense through a mutex-wrapping adapter
// (spec 5).
func Open(frameStream io.Reader, bus i2c.Bus) *Dev {
	return &Dev{
		serial: newFrameSerial(frameStream),
		cci:    newCCI(bus),
	}
}

// Boot implements Port.
func (d *Dev) Boot() error {
	if _, err := d.cci.waitIdle(); err != nil {
		return fmt.Errorf("t1c: boot: module not responding: %w", err)
	}
	if err := d.cci.runSimple(opBoot); err != nil {
		return fmt.Errorf("t1c: boot: %w", err)
	}
	v, err := d.cci.version()
	if err != nil {
		return fmt.Errorf("t1c: boot: reading firmware version: %w", err)
	}
	s, err := d.cci.serial()
	if err != nil {
		return fmt.Errorf("t1c: boot: reading serial number: %w", err)
	}
	lg.Infof("t1c: booted, firmware %q serial %q", v, s)
	return nil
}

// ReadFrame implements Port.
func (d *Dev) ReadFrame(f *Frame) error {
	return d.serial.readFrame(f)
}

// SetPreviewMode implements Port. It dispatches the mode switch over the
// CCI, then tells the frame stream decoder whether to un-invert incoming
// pixel values so ReadFrame's output stays mode-independent.
func (d *Dev) SetPreviewMode(mode PreviewMode) error {
	if err := d.cci.setPreviewMode(mode); err != nil {
		return fmt.Errorf("t1c: set preview mode: %w", err)
	}
	d.serial.setInvert(mode.Invert())
	return nil
}

// GetParam implements Port.
func (d *Dev) GetParam(group Group, id ParamID) (uint16, error) {
	return d.cci.getParam(group, id)
}

// SetParam implements Port.
func (d *Dev) SetParam(group Group, id ParamID, val uint16) error {
	return d.cci.setParam(group, id, val)
}

// IssueQuery implements Port.
func (d *Dev) IssueQuery(feature Feature, args interface{}) error {
	return d.cci.issueQuery(feature, args)
}

// PollReady implements Port.
func (d *Dev) PollReady() (Status, error) {
	return d.cci.pollReady()
}

// Fetch implements Port.
func (d *Dev) Fetch(feature Feature) (interface{}, error) {
	return d.cci.fetch(feature)
}

// ForceFFC implements Port.
func (d *Dev) ForceFFC() error {
	return d.cci.forceFFC()
}

// Calibrate implements Port.
func (d *Dev) Calibrate(kind CalKind, blackBodyTempK uint16) error {
	return d.cci.calibrate(kind, blackBodyTempK)
}

// RestoreDefaults implements Port.
func (d *Dev) RestoreDefaults() error {
	return d.cci.restoreDefaults()
}

// Version implements Port.
func (d *Dev) Version() (string, error) {
	return d.cci.version()
}

// Serial implements Port.
func (d *Dev) Serial() (string, error) {
	return d.cci.serial()
}

// Close implements Port. The frame stream reader and I²C bus are owned
// by the caller (cmd/camera's main), which closes them during shutdown; Close
// here is a no-op placeholder for future transport-owned resources.
func (d *Dev) Close() error {
	return nil
}

var _ Port = (*Dev)(nil)
