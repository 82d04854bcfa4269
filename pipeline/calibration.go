// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pipeline

import (
	"github.com/tclim/go-t1c/output"
	"github.com/tclim/go-t1c/t1c"
)

// calibrate1Point implements spec 4.6.5's one-point procedure: restore
// TPD defaults, disable auto-FFC, force a manual FFC, run the vendor
// one-point recalibration, then re-enable auto-FFC. Any failure restores
// TPD defaults best-effort.
func (p *Pipeline) calibrate1Point(blackBodyTempK uint16) {
	if err := p.port.RestoreDefaults(); err != nil {
		lg.Errorf("pipeline: cal1pt: restoring TPD defaults: %v", err)
	}
	p.setAutoFFC(false)
	if err := p.port.ForceFFC(); err != nil {
		lg.Errorf("pipeline: cal1pt: forcing FFC: %v", err)
	}
	if err := p.port.Calibrate(t1c.Cal1Point, blackBodyTempK); err != nil {
		lg.Errorf("pipeline: cal1pt: vendor recalibration failed: %v", err)
		if err := p.port.RestoreDefaults(); err != nil {
			lg.Errorf("pipeline: cal1pt: restore-on-failure: %v", err)
		}
	}
	p.setAutoFFC(true)
}

// calibrate2PointLow implements the first half of spec 4.6.5's two-point
// procedure: it latches TPD parameter writes until the high half
// completes.
func (p *Pipeline) calibrate2PointLow(blackBodyTempK uint16) {
	p.setAutoFFC(false)
	if err := p.port.ForceFFC(); err != nil {
		lg.Errorf("pipeline: cal2pt-low: forcing FFC: %v", err)
	}
	if err := p.port.Calibrate(t1c.Cal2PointLow, blackBodyTempK); err != nil {
		lg.Errorf("pipeline: cal2pt-low: vendor recalibration failed: %v", err)
		if err := p.port.RestoreDefaults(); err != nil {
			lg.Errorf("pipeline: cal2pt-low: restore-on-failure: %v", err)
		}
		p.setAutoFFC(true)
		return
	}
	p.cal2PtLatch = true
}

// calibrate2PointHigh completes the two-point procedure, clearing the
// latch and re-enabling auto-FFC regardless of outcome.
func (p *Pipeline) calibrate2PointHigh(blackBodyTempK uint16) {
	defer func() {
		p.cal2PtLatch = false
		p.setAutoFFC(true)
	}()
	if err := p.port.Calibrate(t1c.Cal2PointHigh, blackBodyTempK); err != nil {
		lg.Errorf("pipeline: cal2pt-high: vendor recalibration failed: %v", err)
		if err := p.port.RestoreDefaults(); err != nil {
			lg.Errorf("pipeline: cal2pt-high: restore-on-failure: %v", err)
		}
	}
}

func (p *Pipeline) restoreDefaults() {
	if err := p.port.RestoreDefaults(); err != nil {
		lg.Errorf("pipeline: restoreDefaults: %v", err)
	}
}

func (p *Pipeline) setAutoFFC(on bool) {
	p.output.Mutate(func(s *output.State) {
		s.AutoFFC = on
	})
}
