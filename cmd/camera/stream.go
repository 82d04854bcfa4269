// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/net/websocket"

	"github.com/tclim/go-t1c/pipeline"
	"github.com/tclim/go-t1c/transport"
)

// webStreamer is the mini variant's image-streaming consumer (the
// "web streamer" mentioned alongside display/renderer and file-save in
// spec 3's list of FrameSlot readers). It is adapted from
// cmd/lepton/server.go's WebServer: a cond-guarded ring of recent packed
// frames, broadcast to every connected websocket.Conn.
//
// There is no notify hookup from the pipeline to display consumers
// (spec 3's FrameSlot is plain mutex-guarded, not itself an event
// source), so unlike the teacher's AddImg push model this worker polls
// the display slot on a ticker and only broadcasts when the frame's
// Y16Min or Y16Max differs from the last broadcast frame's.
type webStreamer struct {
	slot     *pipeline.FrameSlot
	streamOn *int32

	cond       *sync.Cond
	images     [30][]byte
	lastIndex  int
	lastY16Min uint16 // cheap change signal: Y16Min/Max of the last broadcast frame
	lastY16Max uint16
}

func newWebStreamer(slot *pipeline.FrameSlot, streamOn *int32) *webStreamer {
	return &webStreamer{slot: slot, streamOn: streamOn, cond: sync.NewCond(&sync.Mutex{}), lastIndex: -1}
}

// Run implements coordinator.Worker.
func (s *webStreamer) Run(ctx context.Context) error {
	t := time.NewTicker(40 * time.Millisecond)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			s.cond.L.Lock()
			s.cond.Broadcast()
			s.cond.L.Unlock()
			return nil
		case <-t.C:
			if atomic.LoadInt32(s.streamOn) == 0 {
				continue
			}
			snap := s.slot.Copy()
			if snap.Y16Min == s.lastY16Min && snap.Y16Max == s.lastY16Max {
				continue
			}
			packed := transport.PackThermalFrame(&snap.Pix, snap.Y16Min, snap.Y16Max, snap.HighGain, snap.Frozen)
			s.cond.L.Lock()
			s.lastIndex = (s.lastIndex + 1) % len(s.images)
			s.images[s.lastIndex] = packed
			s.lastY16Min, s.lastY16Max = snap.Y16Min, snap.Y16Max
			s.cond.Broadcast()
			s.cond.L.Unlock()
		}
	}
}

// handler serves one connected client, pushing every new packed frame
// until the connection or context closes.
func (s *webStreamer) handler(ctx context.Context) websocket.Handler {
	return func(ws *websocket.Conn) {
		lg.Infof("camera: stream client %s connected", ws.Config().Origin)
		streamClients.Inc()
		defer streamClients.Dec()
		defer ws.Close()
		lastIndex := 0
		s.cond.L.Lock()
		defer s.cond.L.Unlock()
		var err error
		for ctx.Err() == nil && err == nil {
			s.cond.Wait()
			for ctx.Err() == nil && err == nil && lastIndex != s.lastIndex {
				lastIndex = (lastIndex + 1) % len(s.images)
				img := s.images[lastIndex]
				s.cond.L.Unlock()
				_, err = ws.Write(img)
				s.cond.L.Lock()
			}
		}
		lg.Infof("camera: stream client %s disconnected: %v", ws.Config().Origin, err)
	}
}
