// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"sync"

	"periph.io/x/periph/conn/i2c"
)

// sharedI2CBus serializes access to an i2c.Bus the CCI and envsense's
// distance sensor both sit on (spec 5: "access is serialised behind a
// bus-level mutex"). Neither the CCI driver nor the VL53L1X driver
// synchronizes against the other on its own, so the coordinator hands
// each of them this wrapper instead of the raw bus handle.
type sharedI2CBus struct {
	mu   sync.Mutex
	bus  i2c.Bus
}

func newSharedI2CBus(bus i2c.Bus) *sharedI2CBus {
	return &sharedI2CBus{bus: bus}
}

func (s *sharedI2CBus) String() string {
	return s.bus.String()
}

func (s *sharedI2CBus) Tx(addr uint16, w, r []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bus.Tx(addr, w, r)
}

func (s *sharedI2CBus) Speed(hz int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bus.Speed(hz)
}

var _ i2c.Bus = (*sharedI2CBus)(nil)
