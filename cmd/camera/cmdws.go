// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"golang.org/x/net/websocket"

	"github.com/tclim/go-t1c/cmdbus"
	"github.com/tclim/go-t1c/transport"
)

// commandWebsocketHandler serves the C8 remote command/response protocol
// (spec 6) on one connection per client, grounded on
// cmd/lepton/server.go's websocket.Handler(w.stream) registration but
// wired to transport.Websocket instead of a raw image push loop.
func commandWebsocketHandler(bus *cmdbus.Bus) websocket.Handler {
	return func(conn *websocket.Conn) {
		ws := transport.NewWebsocket(conn, bus)
		lg.Infof("camera: command client %s connected", conn.Config().Origin)
		go ws.RunSender()
		if err := ws.RunReceiver(); err != nil {
			lg.Infof("camera: command client %s disconnected: %v", conn.Config().Origin, err)
		}
		ws.Close()
	}
}
