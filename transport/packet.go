// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package transport implements the Transport Adapters (C8): the local
// in-process glue that short-circuits a command straight back through
// the bus, and the remote websocket glue that frames packets over the
// wire per spec 6, plus the two specialised binary image producers.
package transport

import (
	"encoding/binary"
	"fmt"

	"github.com/tclim/go-t1c/cmdbus"
)

// headerSize is the four u32 fields {total_length, kind, id,
// payload_type} that precede every packet's opaque bytes (spec 6).
const headerSize = 16

// Packet is a decoded websocket command packet.
type Packet struct {
	Kind        cmdbus.Kind
	ID          cmdbus.ID
	PayloadType cmdbus.PayloadType
	Payload     []byte
}

// Encode serializes p into its wire form: four big-endian u32 headers
// followed by the opaque payload bytes.
func (p *Packet) Encode() []byte {
	b := make([]byte, headerSize+len(p.Payload))
	binary.BigEndian.PutUint32(b[0:4], uint32(headerSize+len(p.Payload)))
	binary.BigEndian.PutUint32(b[4:8], uint32(p.Kind))
	binary.BigEndian.PutUint32(b[8:12], uint32(p.ID))
	binary.BigEndian.PutUint32(b[12:16], uint32(p.PayloadType))
	copy(b[headerSize:], p.Payload)
	return b
}

// DecodePacket validates and decodes a received packet. It rejects
// anything below the 16-byte floor and any declared length that doesn't
// match the bytes actually received (spec 6's receive-side validation).
func DecodePacket(b []byte) (*Packet, error) {
	if len(b) < headerSize {
		return nil, fmt.Errorf("transport: packet of %d bytes below the %d-byte floor", len(b), headerSize)
	}
	total := binary.BigEndian.Uint32(b[0:4])
	if int(total) != len(b) {
		return nil, fmt.Errorf("transport: declared length %d does not match received length %d", total, len(b))
	}
	p := &Packet{
		Kind:        cmdbus.Kind(binary.BigEndian.Uint32(b[4:8])),
		ID:          cmdbus.ID(binary.BigEndian.Uint32(b[8:12])),
		PayloadType: cmdbus.PayloadType(binary.BigEndian.Uint32(b[12:16])),
	}
	if len(b) > headerSize {
		p.Payload = append([]byte(nil), b[headerSize:]...)
	}
	return p, nil
}
