// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package config

import (
	"bytes"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	raw := NewMemStore()
	s := New(raw)
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	in := defaultT1CRecord()
	in.Emissivity = 77
	in.AtmosphericTempC = 18
	if err := s.Set(T1C, in); err != nil {
		t.Fatal(err)
	}

	// Reload as if the process restarted.
	s2 := New(raw)
	if err := s2.Init(); err != nil {
		t.Fatal(err)
	}
	var got T1CRecord
	if err := s2.Get(T1C, &got); err != nil {
		t.Fatal(err)
	}
	if got.Emissivity != 77 || got.AtmosphericTempC != 18 {
		t.Fatalf("round trip mismatch: %#v", got)
	}
}

func TestDefaultStability(t *testing.T) {
	MACProvider = func() ([6]byte, error) { return [6]byte{1, 2, 3, 4, 0xAB, 0xCD}, nil }
	defer func() { MACProvider = defaultMAC }()

	s1 := New(NewMemStore())
	if err := s1.Init(); err != nil {
		t.Fatal(err)
	}
	s2 := New(NewMemStore())
	if err := s2.Init(); err != nil {
		t.Fatal(err)
	}

	var n1, n2 NetworkRecord
	if err := s1.Get(Network, &n1); err != nil {
		t.Fatal(err)
	}
	if err := s2.Get(Network, &n2); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(n1.Encode(), n2.Encode()) {
		t.Fatalf("two independent inits produced different network records")
	}
	wantSuffix := "ABCD"
	gotSSID := string(bytes.TrimRight(n1.APSSID[:], "\x00"))
	if gotSSID != DefaultAPSSIDPrefix+wantSuffix {
		t.Fatalf("ssid = %q, want suffix %q", gotSSID, wantSuffix)
	}

	var t1, t2 T1CRecord
	s1.Get(T1C, &t1)
	s2.Get(T1C, &t2)
	if !bytes.Equal(t1.Encode(), t2.Encode()) {
		t.Fatalf("T1C defaults differ across independent inits")
	}
}

func TestWriteFailureLeavesInMemoryMirrorUnchanged(t *testing.T) {
	raw := NewMemStore()
	s := New(raw)
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	var before T1CRecord
	s.Get(T1C, &before)

	raw.FailWrite = true
	in := defaultT1CRecord()
	in.Emissivity = 12
	if err := s.Set(T1C, in); err == nil {
		t.Fatal("expected Set to fail")
	}

	var after T1CRecord
	s.Get(T1C, &after)
	if !bytes.Equal(before.Encode(), after.Encode()) {
		t.Fatalf("in-memory mirror changed despite failed write: before=%#v after=%#v", before, after)
	}
}

func TestReinitOnSizeMismatch(t *testing.T) {
	raw := NewMemStore()
	raw.Write(T1C.Key(), []byte{1, 2, 3}) // too short
	s := New(raw)
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	var got T1CRecord
	s.Get(T1C, &got)
	want := defaultT1CRecord()
	if !bytes.Equal(got.Encode(), want.Encode()) {
		t.Fatalf("expected default record after size mismatch, got %#v", got)
	}
}
