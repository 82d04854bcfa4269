// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package envsense

import (
	i2c "github.com/d2r2/go-i2c"
	"github.com/d2r2/go-sht3x"
)

// SHT3xAmbient reads ambient temperature and humidity off a Sensirion
// SHT3x over I²C. It opens its own Linux I²C bus handle; it does not go
// through the mutex-shared bus that carries the T1C's CCI.
type SHT3xAmbient struct {
	bus    *i2c.I2C
	driver *sht3x.SHT3X
}

// NewSHT3xAmbient opens an SHT3x at addr on the given Linux i2c bus
// number (e.g. 1 for /dev/i2c-1).
func NewSHT3xAmbient(addr uint8, busNum int) (*SHT3xAmbient, error) {
	bus, err := i2c.NewI2C(addr, busNum)
	if err != nil {
		return nil, err
	}
	return &SHT3xAmbient{bus: bus, driver: sht3x.NewSHT3X()}, nil
}

// Read implements AmbientSensor.
func (a *SHT3xAmbient) Read() (tempC, humidityPct float64, err error) {
	t, h, err := a.driver.ReadTemperatureAndRelativeHumidity(a.bus, sht3x.RepeatabilityHigh)
	if err != nil {
		return 0, 0, err
	}
	return float64(t), float64(h), nil
}

// Close releases the underlying bus handle.
func (a *SHT3xAmbient) Close() error {
	return a.bus.Close()
}
