// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package config implements the persistent config store (C1): typed,
// fixed-layout config records with build-time defaults, atomic reload and
// versioning.
package config

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Kind identifies one of the three persisted record kinds.
type Kind int

// The closed set of record kinds.
const (
	Network Kind = iota
	T1C
	Output

	numKinds
)

// Key is the store key under which a Kind is persisted.
func (k Kind) Key() string {
	switch k {
	case Network:
		return "net"
	case T1C:
		return "t1c"
	case Output:
		return "out"
	default:
		return fmt.Sprintf("kind%d", int(k))
	}
}

func (k Kind) String() string {
	switch k {
	case Network:
		return "Network"
	case T1C:
		return "T1C"
	case Output:
		return "Output"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MaxRecordSize bounds every persisted record; the underlying store rejects
// anything larger (per spec 3, "total length <= the underlying store's
// per-record limit").
const MaxRecordSize = 256

// NetworkRecord is the persisted Wifi configuration. Layout matches the
// wire "WiFi payload" of spec 6 except for the leading Version byte, which
// is a store-only framing detail never sent over the wire.
type NetworkRecord struct {
	Version  uint8
	MDNS     bool
	STAMode  bool
	StaticIP bool
	APSSID   [33]byte
	STASSID  [33]byte
	APPass   [64]byte
	STAPass  [64]byte
	APIP     [4]byte
	STAIP    [4]byte
	STAMask  [4]byte
}

const networkRecordVersion = 1

// Encode serializes r into its fixed-size on-store representation.
func (r *NetworkRecord) Encode() []byte {
	buf := &bytes.Buffer{}
	buf.WriteByte(r.Version)
	buf.WriteByte(boolToByte(r.MDNS))
	buf.WriteByte(boolToByte(r.STAMode))
	buf.WriteByte(boolToByte(r.StaticIP))
	buf.Write(r.APSSID[:])
	buf.Write(r.STASSID[:])
	buf.Write(r.APPass[:])
	buf.Write(r.STAPass[:])
	buf.Write(r.APIP[:])
	buf.Write(r.STAIP[:])
	buf.Write(r.STAMask[:])
	return buf.Bytes()
}

// Decode populates r from its on-store representation. Returns an error if
// the length doesn't match the current layout size exactly (the caller
// treats that as "re-initialise from defaults", per 4.1).
func (r *NetworkRecord) Decode(b []byte) error {
	if len(b) != networkRecordSize {
		return fmt.Errorf("config: network record size mismatch: got %d want %d", len(b), networkRecordSize)
	}
	p := b
	r.Version, p = p[0], p[1:]
	r.MDNS, p = byteToBool(p[0]), p[1:]
	r.STAMode, p = byteToBool(p[0]), p[1:]
	r.StaticIP, p = byteToBool(p[0]), p[1:]
	copy(r.APSSID[:], p[:33])
	p = p[33:]
	copy(r.STASSID[:], p[:33])
	p = p[33:]
	copy(r.APPass[:], p[:64])
	p = p[64:]
	copy(r.STAPass[:], p[:64])
	p = p[64:]
	copy(r.APIP[:], p[:4])
	p = p[4:]
	copy(r.STAIP[:], p[:4])
	p = p[4:]
	copy(r.STAMask[:], p[:4])
	return nil
}

var networkRecordSize = len((&NetworkRecord{}).Encode())

// T1CRecord is the persisted sensor/TPD configuration.
type T1CRecord struct {
	Version            uint8
	AutoFFC            bool
	HighGain           bool
	ReflEqualsAmbient  bool
	UseAutoAmbient     bool
	AtmosphericTempC   int16
	ReflectedTempC     int16
	DistanceCM         uint16
	Emissivity         uint8
	HumidityPct        uint8
	FFCDeltaTx10       int16
	MinMaxFFCIntervalS uint16
}

const t1cRecordVersion = 1

func (r *T1CRecord) Encode() []byte {
	buf := &bytes.Buffer{}
	buf.WriteByte(r.Version)
	buf.WriteByte(boolToByte(r.AutoFFC))
	buf.WriteByte(boolToByte(r.HighGain))
	buf.WriteByte(boolToByte(r.ReflEqualsAmbient))
	buf.WriteByte(boolToByte(r.UseAutoAmbient))
	binary.Write(buf, binary.BigEndian, r.AtmosphericTempC)
	binary.Write(buf, binary.BigEndian, r.ReflectedTempC)
	binary.Write(buf, binary.BigEndian, r.DistanceCM)
	buf.WriteByte(r.Emissivity)
	buf.WriteByte(r.HumidityPct)
	binary.Write(buf, binary.BigEndian, r.FFCDeltaTx10)
	binary.Write(buf, binary.BigEndian, r.MinMaxFFCIntervalS)
	return buf.Bytes()
}

func (r *T1CRecord) Decode(b []byte) error {
	if len(b) != t1cRecordSize {
		return fmt.Errorf("config: t1c record size mismatch: got %d want %d", len(b), t1cRecordSize)
	}
	rd := bytes.NewReader(b)
	var ver, autoFFC, highGain, reflEq, autoAmb uint8
	binary.Read(rd, binary.BigEndian, &ver)
	binary.Read(rd, binary.BigEndian, &autoFFC)
	binary.Read(rd, binary.BigEndian, &highGain)
	binary.Read(rd, binary.BigEndian, &reflEq)
	binary.Read(rd, binary.BigEndian, &autoAmb)
	r.Version = ver
	r.AutoFFC = autoFFC != 0
	r.HighGain = highGain != 0
	r.ReflEqualsAmbient = reflEq != 0
	r.UseAutoAmbient = autoAmb != 0
	binary.Read(rd, binary.BigEndian, &r.AtmosphericTempC)
	binary.Read(rd, binary.BigEndian, &r.ReflectedTempC)
	binary.Read(rd, binary.BigEndian, &r.DistanceCM)
	binary.Read(rd, binary.BigEndian, &r.Emissivity)
	binary.Read(rd, binary.BigEndian, &r.HumidityPct)
	binary.Read(rd, binary.BigEndian, &r.FFCDeltaTx10)
	return binary.Read(rd, binary.BigEndian, &r.MinMaxFFCIntervalS)
}

var t1cRecordSize = len((&T1CRecord{}).Encode())

// OutputRecord is the persisted display/app configuration.
type OutputRecord struct {
	Version          uint8
	PaletteGUI       uint8
	PaletteSave      uint8
	PaletteVideo     uint8
	Brightness       uint8
	Backlight        uint8
	PALNotNTSC       bool
	MinMaxMarkersOn  bool
	MinMaxTempsShown bool
	RegionOn         bool
	SaveOverlayOn    bool
	SpotOn           bool
	UnitsMetric      bool
}

const outputRecordVersion = 1

func (r *OutputRecord) Encode() []byte {
	buf := &bytes.Buffer{}
	buf.WriteByte(r.Version)
	buf.WriteByte(r.PaletteGUI)
	buf.WriteByte(r.PaletteSave)
	buf.WriteByte(r.PaletteVideo)
	buf.WriteByte(r.Brightness)
	buf.WriteByte(r.Backlight)
	buf.WriteByte(boolToByte(r.PALNotNTSC))
	buf.WriteByte(boolToByte(r.MinMaxMarkersOn))
	buf.WriteByte(boolToByte(r.MinMaxTempsShown))
	buf.WriteByte(boolToByte(r.RegionOn))
	buf.WriteByte(boolToByte(r.SaveOverlayOn))
	buf.WriteByte(boolToByte(r.SpotOn))
	buf.WriteByte(boolToByte(r.UnitsMetric))
	return buf.Bytes()
}

func (r *OutputRecord) Decode(b []byte) error {
	if len(b) != outputRecordSize {
		return fmt.Errorf("config: output record size mismatch: got %d want %d", len(b), outputRecordSize)
	}
	r.Version = b[0]
	r.PaletteGUI = b[1]
	r.PaletteSave = b[2]
	r.PaletteVideo = b[3]
	r.Brightness = b[4]
	r.Backlight = b[5]
	r.PALNotNTSC = byteToBool(b[6])
	r.MinMaxMarkersOn = byteToBool(b[7])
	r.MinMaxTempsShown = byteToBool(b[8])
	r.RegionOn = byteToBool(b[9])
	r.SaveOverlayOn = byteToBool(b[10])
	r.SpotOn = byteToBool(b[11])
	r.UnitsMetric = byteToBool(b[12])
	return nil
}

var outputRecordSize = len((&OutputRecord{}).Encode())

func boolToByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func byteToBool(b uint8) bool {
	return b != 0
}
