// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"time"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
)

// resetSensor strobes the named GPIO low for one reset pulse, then lets
// it float high again, generalized from lepton.Dev's own chip-select
// management (cs.Out(gpio.Low) / cs.Out(gpio.High)) but driving a
// dedicated reset line rather than an SPI CS pin.
func resetSensor(pinName string, pulse time.Duration) func() error {
	return func() error {
		if pinName == "" {
			return nil
		}
		pin := gpioreg.ByName(pinName)
		if pin == nil {
			return fmt.Errorf("camera: no GPIO pin named %q", pinName)
		}
		out, ok := pin.(gpio.PinOut)
		if !ok {
			return fmt.Errorf("camera: pin %q is not an output", pinName)
		}
		if err := out.Out(gpio.Low); err != nil {
			return fmt.Errorf("camera: asserting reset on %q: %w", pinName, err)
		}
		time.Sleep(pulse)
		if err := out.Out(gpio.High); err != nil {
			return fmt.Errorf("camera: releasing reset on %q: %w", pinName, err)
		}
		return nil
	}
}
