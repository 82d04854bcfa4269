// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package cmdbus

import (
	"fmt"
	"sync"

	logger "github.com/d2r2/go-logger"
)

var lg = logger.NewPackageLogger("cmdbus", logger.InfoLevel)

// GetHandler answers a get command for id, returning the response
// payload and its wire shape.
type GetHandler func(id ID) ([]byte, PayloadType, error)

// SetHandler applies a set command's payload for id.
type SetHandler func(id ID, payload []byte, payloadType PayloadType) error

// RspHandler consumes a response packet for id (the remote path's
// reply to a get this side issued earlier).
type RspHandler func(id ID, payload []byte, payloadType PayloadType) error

// Sender hands a packet off to a transport (C8) in remote mode.
type Sender interface {
	Send(kind Kind, id ID, payloadType PayloadType, payload []byte) error
}

type registration struct {
	get GetHandler
	set SetHandler
	rsp RspHandler
}

// Bus is the Command Bus (C7): a registration table plus the dispatch
// rule that either short-circuits locally or hands off to a remote
// sender. Any of its methods may be called concurrently; the pipeline
// and command-handling workers both use it.
type Bus struct {
	mu     sync.Mutex
	table  map[ID]*registration
	sender Sender
}

// InitLocal returns a Bus with no remote sender: Send short-circuits
// straight back through Dispatch (spec 4.7).
func InitLocal() *Bus {
	return &Bus{table: map[ID]*registration{}}
}

// InitRemote returns a Bus that hands Send calls off to sender instead
// of dispatching them locally.
func InitRemote(sender Sender) *Bus {
	return &Bus{table: map[ID]*registration{}, sender: sender}
}

// Register installs handlers for id. Any of get, set, rsp may be nil;
// a nil handler makes the corresponding Dispatch kind a non-fatal error
// rather than a panic.
func (b *Bus) Register(id ID, get GetHandler, set SetHandler, rsp RspHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.table[id] = &registration{get: get, set: set, rsp: rsp}
}

// Dispatch routes an inbound packet to its registered handler. A packet
// naming an unknown id or a kind with no registered handler is logged
// and reported as an error; it is never fatal to the bus (spec 7's
// "protocol violation" taxonomy).
func (b *Bus) Dispatch(kind Kind, id ID, payloadType PayloadType, payload []byte) ([]byte, PayloadType, error) {
	if !id.Valid() {
		lg.Warnf("cmdbus: dispatch: unknown id %d", uint32(id))
		return nil, 0, fmt.Errorf("cmdbus: unknown id %d", uint32(id))
	}
	b.mu.Lock()
	reg := b.table[id]
	b.mu.Unlock()
	if reg == nil {
		lg.Warnf("cmdbus: dispatch %v/%v: no handler registered", kind, id)
		return nil, 0, fmt.Errorf("cmdbus: %v: no handler registered for %v", kind, id)
	}
	switch kind {
	case Get:
		if reg.get == nil {
			lg.Warnf("cmdbus: get %v: no get handler", id)
			return nil, 0, fmt.Errorf("cmdbus: %v: no get handler", id)
		}
		return reg.get(id)
	case Set:
		if reg.set == nil {
			lg.Warnf("cmdbus: set %v: no set handler", id)
			return nil, 0, fmt.Errorf("cmdbus: %v: no set handler", id)
		}
		return nil, 0, reg.set(id, payload, payloadType)
	case Response:
		if reg.rsp == nil {
			lg.Warnf("cmdbus: response %v: no response handler", id)
			return nil, 0, fmt.Errorf("cmdbus: %v: no response handler", id)
		}
		return nil, 0, reg.rsp(id, payload, payloadType)
	default:
		lg.Warnf("cmdbus: dispatch %v: unknown kind %v", id, kind)
		return nil, 0, fmt.Errorf("cmdbus: unknown kind %v", kind)
	}
}

// Send issues a command. In local mode it short-circuits straight back
// through Dispatch; in remote mode it hands the packet to the sender
// (typically a websocket transport).
func (b *Bus) Send(kind Kind, id ID, payloadType PayloadType, payload []byte) ([]byte, PayloadType, error) {
	b.mu.Lock()
	sender := b.sender
	b.mu.Unlock()
	if sender == nil {
		return b.Dispatch(kind, id, payloadType, payload)
	}
	return nil, 0, sender.Send(kind, id, payloadType, payload)
}
