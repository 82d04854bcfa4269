// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package t1ctest

import (
	"testing"
	"time"

	"github.com/tclim/go-t1c/t1c"
)

func TestReadFrameFillsPlane(t *testing.T) {
	f := New()
	f.FrameInterval = time.Millisecond
	if err := f.Boot(); err != nil {
		t.Fatal(err)
	}
	var fr t1c.Frame
	if err := f.ReadFrame(&fr); err != nil {
		t.Fatal(err)
	}
	nonZero := 0
	for _, p := range fr.Pix {
		if p != 0 {
			nonZero++
		}
	}
	if nonZero == 0 {
		t.Fatal("frame plane is all zero")
	}
}

func TestSetGetParamRoundTrip(t *testing.T) {
	f := New()
	if err := f.SetParam(t1c.GroupTPD, t1c.ParamTPDHumidity, 55); err != nil {
		t.Fatal(err)
	}
	got, err := f.GetParam(t1c.GroupTPD, t1c.ParamTPDHumidity)
	if err != nil {
		t.Fatal(err)
	}
	if got != 55 {
		t.Fatalf("got %d, want 55", got)
	}
}

func TestQueryIssuePollFetch(t *testing.T) {
	f := New()
	if err := f.IssueQuery(t1c.FeatureSpot, t1c.SpotArgs{X: 10, Y: 20}); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(time.Second)
	for {
		st, err := f.PollReady()
		if err != nil {
			t.Fatal(err)
		}
		if !st.Busy {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("query never became ready")
		}
		time.Sleep(time.Millisecond)
	}
	res, err := f.Fetch(t1c.FeatureSpot)
	if err != nil {
		t.Fatal(err)
	}
	sr, ok := res.(*t1c.SpotResult)
	if !ok {
		t.Fatalf("got %T, want *t1c.SpotResult", res)
	}
	if sr.X != 10 || sr.Y != 20 {
		t.Fatalf("got (%d,%d), want (10,20)", sr.X, sr.Y)
	}
}

func TestForceFFCCounts(t *testing.T) {
	f := New()
	if f.FFCCount() != 0 {
		t.Fatal("expected zero FFCs before any ForceFFC call")
	}
	if err := f.ForceFFC(); err != nil {
		t.Fatal(err)
	}
	if f.FFCCount() != 1 {
		t.Fatalf("got %d, want 1", f.FFCCount())
	}
}

// TestSetPreviewModeInvertsNonTemperatureFrames relies on makeNoise's fixed
// RNG seed: two fresh Fakes run through one identical update+render cycle,
// so the only difference between them is whichever preview mode was set
// before ReadFrame, isolating the inversion itself.
func TestSetPreviewModeInvertsNonTemperatureFrames(t *testing.T) {
	linearFake := New()
	linearFake.FrameInterval = time.Millisecond
	var linear t1c.Frame
	if err := linearFake.ReadFrame(&linear); err != nil {
		t.Fatal(err)
	}

	invertedFake := New()
	invertedFake.FrameInterval = time.Millisecond
	if err := invertedFake.SetPreviewMode(t1c.PreviewWhiteHot); err != nil {
		t.Fatal(err)
	}
	if got := invertedFake.PreviewMode(); got != t1c.PreviewWhiteHot {
		t.Fatalf("got %v, want %v", got, t1c.PreviewWhiteHot)
	}
	var inverted t1c.Frame
	if err := invertedFake.ReadFrame(&inverted); err != nil {
		t.Fatal(err)
	}

	for i, v := range linear.Pix {
		if inverted.Pix[i] != ^v {
			t.Fatalf("pixel %d: got %#04x, want bit-inverted %#04x", i, inverted.Pix[i], ^v)
		}
	}
}

func TestRestoreDefaultsClearsParams(t *testing.T) {
	f := New()
	if err := f.SetParam(t1c.GroupTPD, t1c.ParamTPDEmissivity, 95); err != nil {
		t.Fatal(err)
	}
	if err := f.RestoreDefaults(); err != nil {
		t.Fatal(err)
	}
	got, err := f.GetParam(t1c.GroupTPD, t1c.ParamTPDEmissivity)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Fatalf("got %d, want 0 after restore", got)
	}
}
