// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package transport

import "github.com/tclim/go-t1c/cmdbus"

// Local is the in-process adapter (spec 4.8): it exchanges the same
// Packet envelope the remote websocket adapter uses, but calls straight
// through to the bus instead of touching a socket. The touchscreen GUI
// variant uses this so its command path is identical to the mini
// variant's websocket path up to the adapter boundary.
type Local struct {
	Bus *cmdbus.Bus
}

// NewLocal returns a Local adapter over bus.
func NewLocal(bus *cmdbus.Bus) *Local {
	return &Local{Bus: bus}
}

// Call dispatches pkt directly against the bus and returns a Response
// packet for pkt's id, carrying the get handler's payload; for a set or
// response the payload is empty.
func (l *Local) Call(pkt *Packet) (*Packet, error) {
	payload, pt, err := l.Bus.Dispatch(pkt.Kind, pkt.ID, pkt.PayloadType, pkt.Payload)
	if err != nil {
		return nil, err
	}
	return &Packet{Kind: cmdbus.Response, ID: pkt.ID, PayloadType: pt, Payload: payload}, nil
}
