// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pipeline

import "github.com/tclim/go-t1c/t1c"

// cciState is one state of the CCI sub-state machine (spec 4.6.3). Only
// one CCI interaction is advanced per frame so the pixel stream is never
// stalled waiting on the control bus.
type cciState int

const (
	stateIdle cciState = iota
	stateSpotRequest
	stateSpotWait
	stateMinMaxRequest
	stateMinMaxWait
	stateRegionRequest
	stateRegionWait
	stateParamIssue
	stateParamWait
)

// stepCCI advances the sub-state machine exactly one step, per the frame
// cycle's step 5.
func (p *Pipeline) stepCCI() {
	switch p.cciState {
	case stateIdle:
		p.cciState = p.nextEnabledRequest()

	case stateSpotRequest:
		x, y := p.spotLocation()
		p.issueFeature(t1c.FeatureSpot, t1c.SpotArgs{X: x, Y: y})
		p.cciState = stateSpotWait
	case stateMinMaxRequest:
		p.issueFeature(t1c.FeatureMinMax, nil)
		p.cciState = stateMinMaxWait
	case stateRegionRequest:
		p.issueFeature(t1c.FeatureRegion, p.regionLocation())
		p.cciState = stateRegionWait

	case stateSpotWait:
		p.cciState = p.waitFeature(t1c.FeatureSpot)
	case stateMinMaxWait:
		p.cciState = p.waitFeature(t1c.FeatureMinMax)
	case stateRegionWait:
		p.cciState = p.waitFeature(t1c.FeatureRegion)

	case stateParamIssue:
		if pw, ok := p.popParam(); ok {
			if err := p.port.SetParam(pw.Group, pw.ID, pw.Value); err != nil {
				lg.Warnf("pipeline: SetParam(%v, %v)=%v: %v", pw.Group, pw.ID, pw.Value, err)
			}
			p.pendingWrite = pw
			p.havePendingWrite = true
			p.cciState = stateParamWait
		} else {
			p.cciState = stateIdle
		}

	case stateParamWait:
		st, err := p.port.PollReady()
		if err != nil {
			lg.Warnf("pipeline: PollReady: %v", err)
			p.cciState = stateIdle
			return
		}
		if st.Busy {
			return
		}
		if !st.Error && p.havePendingWrite {
			p.recordWritten(p.pendingWrite)
			if p.pendingWrite.Group == t1c.GroupTPD && p.pendingWrite.ID == t1c.ParamTPDGain {
				p.onGainChanged()
			}
		}
		p.havePendingWrite = false
		p.cciState = p.nextEnabledRequest()
	}
}

// nextEnabledRequest walks Spot→MinMax→Region looking for the first
// enabled feature and returns its Request state; if none are enabled it
// falls through to ParamIssue (spec 4.6.3).
func (p *Pipeline) nextEnabledRequest() cciState {
	out := p.output.Snapshot()
	if out.SpotOn {
		return stateSpotRequest
	}
	if out.MinMaxMarkersOn || out.MinMaxTempsShown {
		return stateMinMaxRequest
	}
	if out.RegionOn {
		return stateRegionRequest
	}
	return stateParamIssue
}

func (p *Pipeline) issueFeature(feature t1c.Feature, args interface{}) {
	if err := p.port.IssueQuery(feature, args); err != nil {
		lg.Warnf("pipeline: IssueQuery(%v): %v", feature, err)
	}
}

// waitFeature polls the busy/status register for one outstanding feature
// query; on idle-pass it fetches and caches the result, on idle-error it
// invalidates the cached snapshot, either way advancing to the next
// enabled feature's Request (spec 4.6.3).
func (p *Pipeline) waitFeature(feature t1c.Feature) cciState {
	// next is the Request state of the first enabled feature after this
	// one in Spot→MinMax→Region order, else ParamIssue.
	next := func() cciState {
		out := p.output.Snapshot()
		if feature < t1c.FeatureMinMax && (out.MinMaxMarkersOn || out.MinMaxTempsShown) {
			return stateMinMaxRequest
		}
		if feature < t1c.FeatureRegion && out.RegionOn {
			return stateRegionRequest
		}
		return stateParamIssue
	}
	st, err := p.port.PollReady()
	if err != nil {
		lg.Warnf("pipeline: PollReady(%v): %v", feature, err)
		return next()
	}
	if st.Busy {
		switch feature {
		case t1c.FeatureSpot:
			return stateSpotWait
		case t1c.FeatureMinMax:
			return stateMinMaxWait
		default:
			return stateRegionWait
		}
	}
	if st.Error {
		p.invalidateFeature(feature)
		return next()
	}
	res, err := p.port.Fetch(feature)
	if err != nil {
		lg.Warnf("pipeline: Fetch(%v): %v", feature, err)
		p.invalidateFeature(feature)
		return next()
	}
	p.cacheFeature(feature, res)
	return next()
}
