// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package transport

import (
	"io"
	"sync"

	logger "github.com/d2r2/go-logger"
	"golang.org/x/net/websocket"

	"github.com/tclim/go-t1c/cmdbus"
)

var lg = logger.NewPackageLogger("transport", logger.InfoLevel)

// Websocket is the remote adapter (spec 4.8): it frames commands over a
// single websocket connection, draining a bounded circular send queue on
// one goroutine while a second goroutine decodes inbound packets and
// dispatches them against the bus. Grounded on the web variant's own
// websocket.Handler/sync.Cond fan-out convention.
type Websocket struct {
	conn *websocket.Conn
	bus  *cmdbus.Bus

	queue *sendQueue
	cond  *sync.Cond
	mu    sync.Mutex

	closed bool
}

// NewWebsocket wraps conn, dispatching its inbound packets against bus.
// It does not register itself as bus's Sender; replies go out through
// this Websocket's own Send.
func NewWebsocket(conn *websocket.Conn, bus *cmdbus.Bus) *Websocket {
	w := &Websocket{conn: conn, bus: bus, queue: newSendQueue()}
	w.cond = sync.NewCond(&w.mu)
	return w
}

// Send implements cmdbus.Sender: it encodes pkt and enqueues it onto the
// bounded send queue. If the queue is full the packet is dropped and an
// error returned; it is never truncated (spec 6).
func (w *Websocket) Send(kind cmdbus.Kind, id cmdbus.ID, payloadType cmdbus.PayloadType, payload []byte) error {
	pkt := &Packet{Kind: kind, ID: id, PayloadType: payloadType, Payload: payload}
	if err := w.queue.push(pkt.Encode()); err != nil {
		lg.Warnf("transport: websocket send queue full, dropping %v/%v", kind, id)
		return err
	}
	w.mu.Lock()
	w.cond.Broadcast()
	w.mu.Unlock()
	return nil
}

// RunSender drains the send queue onto the socket until Close is called
// or a write fails. Intended to run on its own goroutine.
func (w *Websocket) RunSender() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for {
		for w.queue.len() == 0 && !w.closed {
			w.cond.Wait()
		}
		if w.closed {
			return
		}
		w.mu.Unlock()
		buf, ok := w.queue.pop()
		w.mu.Lock()
		if !ok {
			continue
		}
		w.mu.Unlock()
		_, err := w.conn.Write(buf)
		w.mu.Lock()
		if err != nil {
			lg.Warnf("transport: websocket write failed: %v", err)
			w.closed = true
			return
		}
	}
}

// RunReceiver decodes inbound packets until the connection closes,
// dispatching each one against the bus and, for a get, sending the
// response back out.
func (w *Websocket) RunReceiver() error {
	buf := make([]byte, 64*1024)
	for {
		n, err := w.conn.Read(buf)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		pkt, err := DecodePacket(buf[:n])
		if err != nil {
			lg.Warnf("transport: dropping malformed packet: %v", err)
			continue
		}
		payload, pt, err := w.bus.Dispatch(pkt.Kind, pkt.ID, pkt.PayloadType, pkt.Payload)
		if err != nil {
			lg.Warnf("transport: dispatch %v/%v failed: %v", pkt.Kind, pkt.ID, err)
			continue
		}
		if pkt.Kind == cmdbus.Get {
			if err := w.Send(cmdbus.Response, pkt.ID, pt, payload); err != nil {
				lg.Warnf("transport: sending response for %v: %v", pkt.ID, err)
			}
		}
	}
}

// Close stops RunSender and closes the underlying connection.
func (w *Websocket) Close() error {
	w.mu.Lock()
	w.closed = true
	w.cond.Broadcast()
	w.mu.Unlock()
	return w.conn.Close()
}

var _ cmdbus.Sender = (*Websocket)(nil)
