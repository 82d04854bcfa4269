// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package transport

import (
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/net/websocket"

	"github.com/tclim/go-t1c/cmdbus"
)

func TestWebsocketGetRoundTrip(t *testing.T) {
	bus := cmdbus.InitLocal()
	bus.Register(cmdbus.Brightness, func(id cmdbus.ID) ([]byte, cmdbus.PayloadType, error) {
		return cmdbus.EncodeI32(64), cmdbus.PayloadI32, nil
	}, nil, nil)

	var serverSide *Websocket
	ready := make(chan struct{})
	srv := httptest.NewServer(websocket.Handler(func(c *websocket.Conn) {
		serverSide = NewWebsocket(c, bus)
		close(ready)
		go serverSide.RunSender()
		serverSide.RunReceiver()
	}))
	defer srv.Close()

	wsURL := "ws" + srv.URL[len("http"):] + "/"
	client, err := websocket.Dial(wsURL, "", srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()

	req := (&Packet{Kind: cmdbus.Get, ID: cmdbus.Brightness, PayloadType: cmdbus.PayloadNone}).Encode()
	if _, err := client.Write(req); err != nil {
		t.Fatal(err)
	}

	<-ready

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 1024)
	n, err := client.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := DecodePacket(buf[:n])
	if err != nil {
		t.Fatal(err)
	}
	if resp.Kind != cmdbus.Response || resp.ID != cmdbus.Brightness {
		t.Fatalf("response header = %+v", resp)
	}
	v, err := cmdbus.DecodeI32(resp.Payload)
	if err != nil || v != 64 {
		t.Fatalf("payload = %v (err %v), want 64", resp.Payload, err)
	}
}
