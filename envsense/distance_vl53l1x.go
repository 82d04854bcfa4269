// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package envsense

import (
	"time"

	"github.com/swdee/go-vl53l1x"
	"periph.io/x/periph/conn/i2c"
)

// VL53L1XDistance reads time-of-flight distance off a VL53L1X over I²C,
// sharing the bus with the T1C's CCI (spec 5).
type VL53L1XDistance struct {
	dev *vl53l1x.VL53L1X
}

// NewVL53L1XDistance opens a VL53L1X on bus and starts continuous
// ranging at a 50ms timing budget, comfortably faster than the
// sampler's 500ms distance schedule.
func NewVL53L1XDistance(bus i2c.Bus) (*VL53L1XDistance, error) {
	dev, err := vl53l1x.New(bus, vl53l1x.DefaultAddress)
	if err != nil {
		return nil, err
	}
	if err := dev.Init(); err != nil {
		return nil, err
	}
	if err := dev.StartContinuous(50 * time.Millisecond); err != nil {
		return nil, err
	}
	return &VL53L1XDistance{dev: dev}, nil
}

// Read implements DistanceSensor, returning the latest ranging result in
// centimeters.
func (d *VL53L1XDistance) Read() (float64, error) {
	mm, err := d.dev.Read(false)
	if err != nil {
		return 0, err
	}
	return float64(mm) / 10, nil
}

// Close stops ranging and releases the device.
func (d *VL53L1XDistance) Close() error {
	return d.dev.StopContinuous()
}
