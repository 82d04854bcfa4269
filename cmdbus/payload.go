// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package cmdbus

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// EncodeI32 encodes a PayloadI32 payload: one big-endian i32 (spec 6).
func EncodeI32(v int32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(v))
	return b
}

// DecodeI32 decodes a PayloadI32 payload.
func DecodeI32(b []byte) (int32, error) {
	if len(b) != 4 {
		return 0, fmt.Errorf("cmdbus: i32 payload size mismatch: got %d want 4", len(b))
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

// EncodeString encodes a PayloadString payload: the string followed by a
// terminating NUL (spec 6).
func EncodeString(s string) []byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return b
}

// DecodeString decodes a PayloadString payload, stopping at the first NUL
// (or the end of b if the terminator is absent).
func DecodeString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}

// AmbientCorrectPayload is the 18-byte ambient-correct payload (spec 6).
type AmbientCorrectPayload struct {
	UseAuto           bool
	ReflEqualsAmbient bool
	AtmosphericTempC  int32
	DistanceCM        uint32
	HumidityPct       uint32
	ReflectedTempC    int32
}

func (p *AmbientCorrectPayload) Encode() []byte {
	buf := &bytes.Buffer{}
	buf.WriteByte(boolToByte(p.UseAuto))
	buf.WriteByte(boolToByte(p.ReflEqualsAmbient))
	binary.Write(buf, binary.BigEndian, p.AtmosphericTempC)
	binary.Write(buf, binary.BigEndian, p.DistanceCM)
	binary.Write(buf, binary.BigEndian, p.HumidityPct)
	binary.Write(buf, binary.BigEndian, p.ReflectedTempC)
	return buf.Bytes()
}

func (p *AmbientCorrectPayload) Decode(b []byte) error {
	if len(b) != 18 {
		return fmt.Errorf("cmdbus: ambient-correct payload size mismatch: got %d want 18", len(b))
	}
	p.UseAuto = b[0] != 0
	p.ReflEqualsAmbient = b[1] != 0
	rd := bytes.NewReader(b[2:])
	binary.Read(rd, binary.BigEndian, &p.AtmosphericTempC)
	binary.Read(rd, binary.BigEndian, &p.DistanceCM)
	binary.Read(rd, binary.BigEndian, &p.HumidityPct)
	return binary.Read(rd, binary.BigEndian, &p.ReflectedTempC)
}

// ShutterPayload is the 13-byte shutter-info payload (spec 6).
type ShutterPayload struct {
	AutoFFC       bool
	TempThreshX10 uint32
	MinIntervalS  uint32
	MaxIntervalS  uint32
}

func (p *ShutterPayload) Encode() []byte {
	buf := &bytes.Buffer{}
	buf.WriteByte(boolToByte(p.AutoFFC))
	binary.Write(buf, binary.BigEndian, p.TempThreshX10)
	binary.Write(buf, binary.BigEndian, p.MinIntervalS)
	binary.Write(buf, binary.BigEndian, p.MaxIntervalS)
	return buf.Bytes()
}

func (p *ShutterPayload) Decode(b []byte) error {
	if len(b) != 13 {
		return fmt.Errorf("cmdbus: shutter payload size mismatch: got %d want 13", len(b))
	}
	p.AutoFFC = b[0] != 0
	rd := bytes.NewReader(b[1:])
	binary.Read(rd, binary.BigEndian, &p.TempThreshX10)
	binary.Read(rd, binary.BigEndian, &p.MinIntervalS)
	return binary.Read(rd, binary.BigEndian, &p.MaxIntervalS)
}

// TimePayload is the 36-byte time payload: nine be-i32 fields (spec 6).
type TimePayload struct {
	Sec, Min, Hour           int32
	MDay, Mon, YearSince1900 int32
	WDay, YDay               int32
	IsDST                    int32
}

func (p *TimePayload) Encode() []byte {
	buf := &bytes.Buffer{}
	for _, f := range []int32{p.Sec, p.Min, p.Hour, p.MDay, p.Mon, p.YearSince1900, p.WDay, p.YDay, p.IsDST} {
		binary.Write(buf, binary.BigEndian, f)
	}
	return buf.Bytes()
}

func (p *TimePayload) Decode(b []byte) error {
	if len(b) != 36 {
		return fmt.Errorf("cmdbus: time payload size mismatch: got %d want 36", len(b))
	}
	rd := bytes.NewReader(b)
	fields := []*int32{&p.Sec, &p.Min, &p.Hour, &p.MDay, &p.Mon, &p.YearSince1900, &p.WDay, &p.YDay, &p.IsDST}
	for _, f := range fields {
		if err := binary.Read(rd, binary.BigEndian, f); err != nil {
			return err
		}
	}
	return nil
}

// TimelapsePayload is the 10-byte timelapse-cfg payload (spec 6).
type TimelapsePayload struct {
	Enable   bool
	Notify   bool
	Interval uint32
	Count    uint32
}

func (p *TimelapsePayload) Encode() []byte {
	buf := &bytes.Buffer{}
	buf.WriteByte(boolToByte(p.Enable))
	buf.WriteByte(boolToByte(p.Notify))
	binary.Write(buf, binary.BigEndian, p.Interval)
	binary.Write(buf, binary.BigEndian, p.Count)
	return buf.Bytes()
}

func (p *TimelapsePayload) Decode(b []byte) error {
	if len(b) != 10 {
		return fmt.Errorf("cmdbus: timelapse payload size mismatch: got %d want 10", len(b))
	}
	p.Enable = b[0] != 0
	p.Notify = b[1] != 0
	rd := bytes.NewReader(b[2:])
	binary.Read(rd, binary.BigEndian, &p.Interval)
	return binary.Read(rd, binary.BigEndian, &p.Count)
}

// WifiPayload is the wifi-info payload (spec 6): 3 flag bytes, two
// 33-byte NUL-terminated SSIDs, two 64-byte NUL-terminated passphrases,
// three 4-byte IP/netmask fields.
type WifiPayload struct {
	MDNS     bool
	STAMode  bool
	StaticIP bool
	APSSID   string
	STASSID  string
	APPass   string
	STAPass  string
	APIP     [4]byte
	STAIP    [4]byte
	STAMask  [4]byte
}

const wifiPayloadSize = 3 + 33 + 33 + 64 + 64 + 4 + 4 + 4

func (p *WifiPayload) Encode() []byte {
	buf := &bytes.Buffer{}
	buf.WriteByte(boolToByte(p.MDNS))
	buf.WriteByte(boolToByte(p.STAMode))
	buf.WriteByte(boolToByte(p.StaticIP))
	buf.Write(zeroPad(p.APSSID, 33))
	buf.Write(zeroPad(p.STASSID, 33))
	buf.Write(zeroPad(p.APPass, 64))
	buf.Write(zeroPad(p.STAPass, 64))
	buf.Write(p.APIP[:])
	buf.Write(p.STAIP[:])
	buf.Write(p.STAMask[:])
	return buf.Bytes()
}

func (p *WifiPayload) Decode(b []byte) error {
	if len(b) != wifiPayloadSize {
		return fmt.Errorf("cmdbus: wifi payload size mismatch: got %d want %d", len(b), wifiPayloadSize)
	}
	p.MDNS, p.STAMode, p.StaticIP = b[0] != 0, b[1] != 0, b[2] != 0
	b = b[3:]
	p.APSSID, b = DecodeString(b[:33]), b[33:]
	p.STASSID, b = DecodeString(b[:33]), b[33:]
	p.APPass, b = DecodeString(b[:64]), b[64:]
	p.STAPass, b = DecodeString(b[:64]), b[64:]
	copy(p.APIP[:], b[:4])
	b = b[4:]
	copy(p.STAIP[:], b[:4])
	b = b[4:]
	copy(p.STAMask[:], b[:4])
	return nil
}

// SpotLocPayload is the 8-byte spot-loc payload: two be-i32 pixel
// coordinates (spec 6 names the wire shape generically as "location";
// spot and region locations share this encoding style).
type SpotLocPayload struct {
	X, Y int32
}

func (p *SpotLocPayload) Encode() []byte {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.BigEndian, p.X)
	binary.Write(buf, binary.BigEndian, p.Y)
	return buf.Bytes()
}

func (p *SpotLocPayload) Decode(b []byte) error {
	if len(b) != 8 {
		return fmt.Errorf("cmdbus: spot-loc payload size mismatch: got %d want 8", len(b))
	}
	rd := bytes.NewReader(b)
	binary.Read(rd, binary.BigEndian, &p.X)
	return binary.Read(rd, binary.BigEndian, &p.Y)
}

// RegionLocPayload is the 16-byte region-loc payload: four be-i32
// pixel-rectangle bounds.
type RegionLocPayload struct {
	X0, Y0, X1, Y1 int32
}

func (p *RegionLocPayload) Encode() []byte {
	buf := &bytes.Buffer{}
	for _, f := range []int32{p.X0, p.Y0, p.X1, p.Y1} {
		binary.Write(buf, binary.BigEndian, f)
	}
	return buf.Bytes()
}

func (p *RegionLocPayload) Decode(b []byte) error {
	if len(b) != 16 {
		return fmt.Errorf("cmdbus: region-loc payload size mismatch: got %d want 16", len(b))
	}
	rd := bytes.NewReader(b)
	fields := []*int32{&p.X0, &p.Y0, &p.X1, &p.Y1}
	for _, f := range fields {
		if err := binary.Read(rd, binary.BigEndian, f); err != nil {
			return err
		}
	}
	return nil
}

// ActivityPayload is the 8-byte ctrl-activity payload: two be-i32 words,
// activity and an auxiliary value (typically a black-body temperature).
type ActivityPayload struct {
	Activity Activity
	Aux      int32
}

func (p *ActivityPayload) Encode() []byte {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.BigEndian, int32(p.Activity))
	binary.Write(buf, binary.BigEndian, p.Aux)
	return buf.Bytes()
}

func (p *ActivityPayload) Decode(b []byte) error {
	if len(b) != 8 {
		return fmt.Errorf("cmdbus: ctrl-activity payload size mismatch: got %d want 8", len(b))
	}
	rd := bytes.NewReader(b)
	var a int32
	if err := binary.Read(rd, binary.BigEndian, &a); err != nil {
		return err
	}
	p.Activity = Activity(a)
	return binary.Read(rd, binary.BigEndian, &p.Aux)
}

func zeroPad(s string, n int) []byte {
	b := make([]byte, n)
	copy(b, s)
	return b
}

func boolToByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
