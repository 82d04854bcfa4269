// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package transport

import (
	"testing"

	"github.com/tclim/go-t1c/cmdbus"
)

func TestLocalCallRoundTrip(t *testing.T) {
	bus := cmdbus.InitLocal()
	bus.Register(cmdbus.BattLevel, func(id cmdbus.ID) ([]byte, cmdbus.PayloadType, error) {
		return cmdbus.EncodeI32(88), cmdbus.PayloadI32, nil
	}, nil, nil)

	l := NewLocal(bus)
	resp, err := l.Call(&Packet{Kind: cmdbus.Get, ID: cmdbus.BattLevel, PayloadType: cmdbus.PayloadNone})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Kind != cmdbus.Response {
		t.Fatalf("response kind = %v, want Response", resp.Kind)
	}
	v, err := cmdbus.DecodeI32(resp.Payload)
	if err != nil || v != 88 {
		t.Fatalf("payload = %v (err %v), want 88", resp.Payload, err)
	}
}

func TestLocalCallPropagatesDispatchError(t *testing.T) {
	bus := cmdbus.InitLocal()
	l := NewLocal(bus)
	if _, err := l.Call(&Packet{Kind: cmdbus.Get, ID: cmdbus.Gain}); err == nil {
		t.Fatal("expected an error for an unregistered id")
	}
}
