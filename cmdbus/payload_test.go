// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package cmdbus

import "testing"

func TestI32RoundTrip(t *testing.T) {
	got, err := DecodeI32(EncodeI32(-12345))
	if err != nil {
		t.Fatal(err)
	}
	if got != -12345 {
		t.Fatalf("got %d, want -12345", got)
	}
}

func TestStringRoundTrip(t *testing.T) {
	if got := DecodeString(EncodeString("hello")); got != "hello" {
		t.Fatalf("got %q, want %q", got, "hello")
	}
}

func TestAmbientCorrectPayloadRoundTrip(t *testing.T) {
	in := AmbientCorrectPayload{
		UseAuto: true, ReflEqualsAmbient: false,
		AtmosphericTempC: 22, DistanceCM: 150, HumidityPct: 45, ReflectedTempC: -3,
	}
	var out AmbientCorrectPayload
	if err := out.Decode(in.Encode()); err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: got %+v want %+v", out, in)
	}
}

func TestShutterPayloadRoundTrip(t *testing.T) {
	in := ShutterPayload{AutoFFC: true, TempThreshX10: 30, MinIntervalS: 60, MaxIntervalS: 600}
	var out ShutterPayload
	if err := out.Decode(in.Encode()); err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: got %+v want %+v", out, in)
	}
	if len(in.Encode()) != 13 {
		t.Fatalf("encoded size = %d, want 13", len(in.Encode()))
	}
}

func TestTimePayloadRoundTrip(t *testing.T) {
	in := TimePayload{Sec: 1, Min: 2, Hour: 3, MDay: 4, Mon: 5, YearSince1900: 126, WDay: 6, YDay: 200, IsDST: 0}
	var out TimePayload
	if err := out.Decode(in.Encode()); err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: got %+v want %+v", out, in)
	}
	if len(in.Encode()) != 36 {
		t.Fatalf("encoded size = %d, want 36", len(in.Encode()))
	}
}

func TestTimelapsePayloadRoundTrip(t *testing.T) {
	in := TimelapsePayload{Enable: true, Notify: false, Interval: 30, Count: 100}
	var out TimelapsePayload
	if err := out.Decode(in.Encode()); err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: got %+v want %+v", out, in)
	}
}

func TestWifiPayloadRoundTrip(t *testing.T) {
	in := WifiPayload{
		MDNS: true, STAMode: false, StaticIP: true,
		APSSID: "cam-ABCD", STASSID: "home-net",
		APPass: "hunter2", STAPass: "",
		APIP: [4]byte{192, 168, 4, 1}, STAIP: [4]byte{192, 168, 1, 42}, STAMask: [4]byte{255, 255, 255, 0},
	}
	enc := in.Encode()
	if len(enc) != wifiPayloadSize {
		t.Fatalf("encoded size = %d, want %d", len(enc), wifiPayloadSize)
	}
	var out WifiPayload
	if err := out.Decode(enc); err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: got %+v want %+v", out, in)
	}
}

func TestSpotLocPayloadRoundTrip(t *testing.T) {
	in := SpotLocPayload{X: 40, Y: -12}
	var out SpotLocPayload
	if err := out.Decode(in.Encode()); err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: got %+v want %+v", out, in)
	}
	if len(in.Encode()) != 8 {
		t.Fatalf("encoded size = %d, want 8", len(in.Encode()))
	}
}

func TestRegionLocPayloadRoundTrip(t *testing.T) {
	in := RegionLocPayload{X0: 10, Y0: 20, X1: 100, Y1: 120}
	var out RegionLocPayload
	if err := out.Decode(in.Encode()); err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: got %+v want %+v", out, in)
	}
	if len(in.Encode()) != 16 {
		t.Fatalf("encoded size = %d, want 16", len(in.Encode()))
	}
}

func TestActivityPayloadRoundTrip(t *testing.T) {
	in := ActivityPayload{Activity: ActivityCal2PtHigh, Aux: 31315}
	var out ActivityPayload
	if err := out.Decode(in.Encode()); err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: got %+v want %+v", out, in)
	}
	if len(in.Encode()) != 8 {
		t.Fatalf("encoded size = %d, want 8", len(in.Encode()))
	}
}

func TestDecodeRejectsWrongSize(t *testing.T) {
	var p AmbientCorrectPayload
	if err := p.Decode(make([]byte, 10)); err == nil {
		t.Fatal("expected a size-mismatch error")
	}
}
