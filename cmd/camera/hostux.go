// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"sync/atomic"

	"github.com/tclim/go-t1c/coordinator"
)

// logFaultHostUX implements coordinator.HostUX. The real host-UX
// collaborator (an LED or small display) is excluded from the core
// (spec 1); this stand-in logs the fault, sets the fault_code gauge
// exported on /metrics, and keeps the last code for Fault.
type logFaultHostUX struct {
	code int32 // atomic coordinator.FaultCode
}

func (h *logFaultHostUX) SetFault(code coordinator.FaultCode) {
	atomic.StoreInt32(&h.code, int32(code))
	faultCode.Set(float64(code))
	lg.Errorf("camera: fault: %v", code)
}

func (h *logFaultHostUX) Fault() coordinator.FaultCode {
	return coordinator.FaultCode(atomic.LoadInt32(&h.code))
}
