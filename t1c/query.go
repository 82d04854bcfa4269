// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package t1c

import (
	"encoding/binary"
	"fmt"
)

// Out-of-band feature queries (spot, min/max, region) are split into
// issue/poll/fetch so the pipeline's CCI sub-state machine (spec 4.6.3)
// can interleave them with parameter writes without blocking the frame
// stream: IssueQuery only writes the command registers, PollReady is a
// cheap non-blocking status peek, and Fetch reads the result once ready.

func (c *cci) issueQuery(feature Feature, args interface{}) error {
	if _, err := c.waitIdle(); err != nil {
		return err
	}
	buf := make([]byte, 8)
	switch feature {
	case FeatureSpot:
		a, ok := args.(SpotArgs)
		if !ok {
			return fmt.Errorf("t1c: issueQuery(spot): want SpotArgs, got %T", args)
		}
		binary.LittleEndian.PutUint16(buf[0:], uint16(a.X))
		binary.LittleEndian.PutUint16(buf[2:], uint16(a.Y))
	case FeatureMinMax:
		// No arguments; min/max is scene-wide.
	case FeatureRegion:
		a, ok := args.(RegionArgs)
		if !ok {
			return fmt.Errorf("t1c: issueQuery(region): want RegionArgs, got %T", args)
		}
		binary.LittleEndian.PutUint16(buf[0:], uint16(a.X0))
		binary.LittleEndian.PutUint16(buf[2:], uint16(a.Y0))
		binary.LittleEndian.PutUint16(buf[4:], uint16(a.X1))
		binary.LittleEndian.PutUint16(buf[6:], uint16(a.Y1))
	default:
		return fmt.Errorf("t1c: issueQuery: unknown feature %v", feature)
	}
	if err := c.writeBlock(regArgs, buf); err != nil {
		return err
	}
	if err := c.writeReg16(regParam, uint16(feature)); err != nil {
		return err
	}
	// Write-only: do not wait for completion here, the pipeline polls
	// separately so the frame stream isn't blocked.
	return c.writeReg16(regOp, opIssueQuery)
}

func (c *cci) pollReady() (Status, error) {
	v, err := c.readReg16(regStatus)
	if err != nil {
		return Status{}, err
	}
	return Status{Busy: v&statusBusy != 0, Error: v&statusError != 0}, nil
}

func (c *cci) fetch(feature Feature) (interface{}, error) {
	b := make([]byte, 16)
	if err := c.readBlock(regResult, b); err != nil {
		return nil, err
	}
	switch feature {
	case FeatureSpot:
		return &SpotResult{
			X:       int(binary.LittleEndian.Uint16(b[0:])),
			Y:       int(binary.LittleEndian.Uint16(b[2:])),
			TempC10: int16(binary.LittleEndian.Uint16(b[4:])),
		}, nil
	case FeatureMinMax:
		return &MinMaxResult{
			MinX:       int(binary.LittleEndian.Uint16(b[0:])),
			MinY:       int(binary.LittleEndian.Uint16(b[2:])),
			MaxX:       int(binary.LittleEndian.Uint16(b[4:])),
			MaxY:       int(binary.LittleEndian.Uint16(b[6:])),
			MinTempC10: int16(binary.LittleEndian.Uint16(b[8:])),
			MaxTempC10: int16(binary.LittleEndian.Uint16(b[10:])),
		}, nil
	case FeatureRegion:
		return &RegionResult{
			Rect: RegionArgs{
				X0: int(binary.LittleEndian.Uint16(b[0:])),
				Y0: int(binary.LittleEndian.Uint16(b[2:])),
				X1: int(binary.LittleEndian.Uint16(b[4:])),
				Y1: int(binary.LittleEndian.Uint16(b[6:])),
			},
			MinC10: int16(binary.LittleEndian.Uint16(b[8:])),
			MaxC10: int16(binary.LittleEndian.Uint16(b[10:])),
			AvgC10: int16(binary.LittleEndian.Uint16(b[12:])),
		}, nil
	default:
		return nil, fmt.Errorf("t1c: fetch: unknown feature %v", feature)
	}
}

func (c *cci) forceFFC() error {
	return c.runSimple(opForceFFC)
}

func (c *cci) calibrate(kind CalKind, blackBodyTempK uint16) error {
	if _, err := c.waitIdle(); err != nil {
		return err
	}
	if err := c.writeReg16(regParam, uint16(kind)); err != nil {
		return err
	}
	if err := c.writeReg16(regValue, blackBodyTempK); err != nil {
		return err
	}
	if err := c.writeReg16(regOp, opCalibrate); err != nil {
		return err
	}
	status, err := c.waitIdle()
	if err != nil {
		return err
	}
	return c.checkError(status)
}

func (c *cci) restoreDefaults() error {
	return c.runSimple(opRestore)
}
