// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package config

import (
	"fmt"
	"net"
)

// Build-time defaults. A real product build would override these via
// ldflags; they are plain constants here since the core doesn't own the
// build system.
const (
	DefaultAPSSIDPrefix = "T1C-"
	DefaultAPPass       = "thermalcam"
	DefaultBrightness   = 50
	DefaultBacklight    = 80
	DefaultEmissivity   = 95
	DefaultHumidityPct  = 50
	DefaultFFCDeltaTx10 = 30 // 3.0C
	DefaultMinMaxFFCS   = 180
	DefaultAtmosphereC  = 20
	DefaultReflectedC   = 20
)

// MACProvider returns the device's primary network interface MAC address.
// It is a var so tests can replace it; on a real device it reads the
// interface table.
var MACProvider = defaultMAC

func defaultMAC() ([6]byte, error) {
	var out [6]byte
	ifaces, err := net.Interfaces()
	if err != nil {
		return out, err
	}
	for _, iface := range ifaces {
		if len(iface.HardwareAddr) == 6 {
			copy(out[:], iface.HardwareAddr)
			return out, nil
		}
	}
	return out, fmt.Errorf("config: no interface with a MAC address found")
}

// defaultNetworkRecord builds the Network record default. The AP SSID
// incorporates the last 16 bits of the device MAC rendered as hex, per
// spec 3: "defaults are derived from a build-time constant plus, for
// Network, the device's MAC (last 16 bits rendered as hex into the
// default AP SSID)".
func defaultNetworkRecord() *NetworkRecord {
	r := &NetworkRecord{Version: networkRecordVersion}
	suffix := "0000"
	if mac, err := MACProvider(); err == nil {
		suffix = fmt.Sprintf("%02X%02X", mac[4], mac[5])
	}
	ssid := DefaultAPSSIDPrefix + suffix
	copy(r.APSSID[:], ssid)
	copy(r.APPass[:], DefaultAPPass)
	copy(r.APIP[:], []byte{192, 168, 4, 1})
	copy(r.STAMask[:], []byte{255, 255, 255, 0})
	return r
}

func defaultT1CRecord() *T1CRecord {
	return &T1CRecord{
		Version:            t1cRecordVersion,
		AutoFFC:            true,
		HighGain:           true,
		ReflEqualsAmbient:  true,
		UseAutoAmbient:     true,
		AtmosphericTempC:   DefaultAtmosphereC,
		ReflectedTempC:     DefaultReflectedC,
		DistanceCM:         100,
		Emissivity:         DefaultEmissivity,
		HumidityPct:        DefaultHumidityPct,
		FFCDeltaTx10:       DefaultFFCDeltaTx10,
		MinMaxFFCIntervalS: DefaultMinMaxFFCS,
	}
}

func defaultOutputRecord() *OutputRecord {
	return &OutputRecord{
		Version:          outputRecordVersion,
		PaletteGUI:       0,
		PaletteSave:      0,
		PaletteVideo:     0,
		Brightness:       DefaultBrightness,
		Backlight:        DefaultBacklight,
		PALNotNTSC:       false,
		MinMaxMarkersOn:  true,
		MinMaxTempsShown: true,
		RegionOn:         false,
		SaveOverlayOn:    true,
		SpotOn:           false,
		UnitsMetric:      true,
	}
}
