// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package cmdbus implements the Command Bus (C7): a closed, numerically
// stable catalog of remote operations, payload codecs for their four wire
// shapes, and a registration/dispatch table shared by the local
// (in-process) and remote (websocket) transports.
package cmdbus

import "fmt"

// Kind is a command packet's verb (spec 6's wire "kind" field).
type Kind uint32

// The three wire kinds. Values are wire-visible; never renumber.
const (
	Get      Kind = 1
	Set      Kind = 2
	Response Kind = 3
)

func (k Kind) String() string {
	switch k {
	case Get:
		return "get"
	case Set:
		return "set"
	case Response:
		return "response"
	default:
		return fmt.Sprintf("Kind(%d)", uint32(k))
	}
}

// PayloadType identifies the wire shape of a command's payload.
type PayloadType uint32

// The four payload shapes. Values are wire-visible; never renumber.
const (
	PayloadNone   PayloadType = 1
	PayloadI32    PayloadType = 2
	PayloadString PayloadType = 3
	PayloadBinary PayloadType = 4
)

// ID is one entry in the closed command catalog (spec 6). The catalog
// starts at 0, follows spec 6's order, which is mostly but not strictly
// alphabetical (Time and the timelapse ids sit between Image and
// MinMaxEn), and is numerically stable: it only ever grows at the end.
type ID uint32

const (
	AmbientCorrect ID = iota
	Backlight
	BattLevel
	Brightness
	CardPresent
	CritBatt
	CtrlActivity
	Emissivity
	FFC
	FileCatalog
	FileDelete
	FileGetImage
	FwUpdEn
	FwUpdEnd
	Gain
	Image
	Time
	TimelapseCfg
	TimelapseStatus
	MinMaxEn
	MsgOn
	MsgOff
	Orientation
	Palette
	Poweroff
	RegionEn
	RegionLoc
	SaveBacklight
	SaveOvlEn
	SavePalette
	Shutdown
	ShutterInfo
	SpotEn
	SpotLoc
	StreamEn
	SysInfo
	TakePicture
	Units
	WifiInfo

	numIDs
)

var idNames = [numIDs]string{
	"ambient-correct", "backlight", "batt-level", "brightness", "card-present",
	"crit-batt", "ctrl-activity", "emissivity", "ffc", "file-catalog",
	"file-delete", "file-get-image", "fw-upd-en", "fw-upd-end", "gain",
	"image", "time", "timelapse-cfg", "timelapse-status", "min-max-en",
	"msg-on", "msg-off", "orientation", "palette", "poweroff", "region-en",
	"region-loc", "save-backlight", "save-ovl-en", "save-palette", "shutdown",
	"shutter-info", "spot-en", "spot-loc", "stream-en", "sys-info",
	"take-picture", "units", "wifi-info",
}

func (id ID) String() string {
	if id < numIDs {
		return idNames[id]
	}
	return fmt.Sprintf("ID(%d)", uint32(id))
}

// Valid reports whether id is within the closed catalog.
func (id ID) Valid() bool { return id < numIDs }

// Activity is a ctrl-activity subcommand (spec 6).
type Activity int32

const (
	ActivityRestoreDefaults Activity = 0
	ActivityCal1Pt          Activity = 1
	ActivityCal2PtLow       Activity = 2
	ActivityCal2PtHigh      Activity = 3
	ActivitySDFormat        Activity = 4
)
