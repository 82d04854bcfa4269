// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package t1c

import (
	"encoding/binary"
	"fmt"
	"time"

	"periph.io/x/periph/conn/i2c"
)

// T1C CCI register map (spec 4.6.3's "group, parameter id, value"
// abstraction encoded over a real wire protocol). Unlike the Lepton's
// per-command register bank, the T1C exposes one small fixed register
// file and dispatches on an opcode register, closer to a tiny RPC.
const (
	regStatus RegisterAddress = 0x00 // 2 bytes, busy/error bits
	regOp     RegisterAddress = 0x02 // 1 byte, opcode
	regGroup  RegisterAddress = 0x03 // 1 byte
	regParam  RegisterAddress = 0x04 // 2 bytes
	regValue  RegisterAddress = 0x06 // 2 bytes
	regArgs   RegisterAddress = 0x08 // 8 bytes, feature query arguments
	regResult RegisterAddress = 0x10 // 16 bytes, feature query result
	regVers   RegisterAddress = 0x20 // 32 bytes, ASCII firmware version
	regSerial RegisterAddress = 0x40 // 16 bytes, ASCII serial number
)

// RegisterAddress is a CCI register offset.
type RegisterAddress uint16

// opcodes written to regOp.
const (
	opGet          = 0x01
	opSet          = 0x02
	opIssueQuery   = 0x03
	opForceFFC     = 0x04
	opCalibrate    = 0x05
	opRestore      = 0x06
	opBoot         = 0x07
	opSetPreview   = 0x08
)

// status bits read from regStatus, mirroring the Lepton CCI's status
// register convention (spec 4.6.3).
const (
	statusBusy  = 0x0001
	statusError = 0xFF00
)

const cciAddr = 0x2B

// cci is the T1C Command and Control Interface, a small register bank
// addressed over I²C, shared with the auxiliary sensors envsense owns
// (spec 5's shared-bus note).
type cci struct {
	dev i2c.Dev
}

func newCCI(bus i2c.Bus) *cci {
	return &cci{dev: i2c.Dev{Bus: bus, Addr: cciAddr}}
}

func (c *cci) waitIdle() (uint16, error) {
	for {
		v, err := c.readReg16(regStatus)
		if err != nil || v&statusBusy == 0 {
			return v, err
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func (c *cci) checkError(status uint16) error {
	if status&statusError != 0 {
		return fmt.Errorf("t1c: cci error 0x%02x", status>>8)
	}
	return nil
}

func (c *cci) readReg16(addr RegisterAddress) (uint16, error) {
	b := make([]byte, 2)
	if err := c.dev.Tx(putAddr(addr), b); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *cci) writeReg16(addr RegisterAddress, v uint16) error {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint16(buf, uint16(addr))
	binary.LittleEndian.PutUint16(buf[2:], v)
	return c.dev.Tx(buf, nil)
}

func (c *cci) readBlock(addr RegisterAddress, b []byte) error {
	return c.dev.Tx(putAddr(addr), b)
}

func (c *cci) writeBlock(addr RegisterAddress, b []byte) error {
	buf := make([]byte, 0, len(b)+2)
	buf = append(buf, putAddr(addr)...)
	buf = append(buf, b...)
	return c.dev.Tx(buf, nil)
}

func putAddr(addr RegisterAddress) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, uint16(addr))
	return b
}

// getParam implements Port.GetParam over the register file.
func (c *cci) getParam(group Group, id ParamID) (uint16, error) {
	if _, err := c.waitIdle(); err != nil {
		return 0, err
	}
	if err := c.writeReg16(regGroup, uint16(group)); err != nil {
		return 0, err
	}
	if err := c.writeReg16(regParam, uint16(id)); err != nil {
		return 0, err
	}
	if err := c.writeReg16(regOp, opGet); err != nil {
		return 0, err
	}
	status, err := c.waitIdle()
	if err != nil {
		return 0, err
	}
	if err := c.checkError(status); err != nil {
		return 0, err
	}
	return c.readReg16(regValue)
}

// setParam implements Port.SetParam over the register file.
func (c *cci) setParam(group Group, id ParamID, val uint16) error {
	if _, err := c.waitIdle(); err != nil {
		return err
	}
	if err := c.writeReg16(regGroup, uint16(group)); err != nil {
		return err
	}
	if err := c.writeReg16(regParam, uint16(id)); err != nil {
		return err
	}
	if err := c.writeReg16(regValue, val); err != nil {
		return err
	}
	if err := c.writeReg16(regOp, opSet); err != nil {
		return err
	}
	status, err := c.waitIdle()
	if err != nil {
		return err
	}
	return c.checkError(status)
}

// setPreviewMode implements Port.SetPreviewMode over the register file:
// the mode is written to regValue and opSetPreview dispatched, mirroring
// setParam's shape without a group/param pair.
func (c *cci) setPreviewMode(mode PreviewMode) error {
	if _, err := c.waitIdle(); err != nil {
		return err
	}
	if err := c.writeReg16(regValue, uint16(mode)); err != nil {
		return err
	}
	if err := c.writeReg16(regOp, opSetPreview); err != nil {
		return err
	}
	status, err := c.waitIdle()
	if err != nil {
		return err
	}
	return c.checkError(status)
}

func (c *cci) runSimple(op uint16) error {
	if _, err := c.waitIdle(); err != nil {
		return err
	}
	if err := c.writeReg16(regOp, op); err != nil {
		return err
	}
	status, err := c.waitIdle()
	if err != nil {
		return err
	}
	return c.checkError(status)
}

func (c *cci) version() (string, error) {
	if _, err := c.waitIdle(); err != nil {
		return "", err
	}
	b := make([]byte, 32)
	if err := c.readBlock(regVers, b); err != nil {
		return "", err
	}
	return trimASCIIZ(b), nil
}

func (c *cci) serial() (string, error) {
	if _, err := c.waitIdle(); err != nil {
		return "", err
	}
	b := make([]byte, 16)
	if err := c.readBlock(regSerial, b); err != nil {
		return "", err
	}
	return trimASCIIZ(b), nil
}

func trimASCIIZ(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
