// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package coordinator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tclim/go-t1c/config"
	"github.com/tclim/go-t1c/output"
	"github.com/tclim/go-t1c/pipeline"
	"github.com/tclim/go-t1c/t1c/t1ctest"
	"github.com/tclim/go-t1c/tau"
)

type fakeHostUX struct{ fault FaultCode }

func (h *fakeHostUX) SetFault(code FaultCode) { h.fault = code }

type fakeWorker struct{ ran chan struct{} }

func newFakeWorker() *fakeWorker { return &fakeWorker{ran: make(chan struct{}, 1)} }

func (w *fakeWorker) Run(ctx context.Context) error {
	select {
	case w.ran <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return nil
}

func newTestPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()
	store := config.New(config.NewMemStore())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	out := output.New(store)
	if err := out.Init(); err != nil {
		t.Fatal(err)
	}
	fake := t1ctest.New()
	fake.FrameInterval = time.Millisecond
	est := tau.NewEstimator(nil)
	return pipeline.New(pipeline.Config{
		Port:         fake,
		Output:       out,
		Estimator:    est,
		DisplaySlots: [2]*pipeline.FrameSlot{{}, {}},
		FileSlot:     &pipeline.FrameSlot{},
	})
}

func TestBootHaltsOnStorageFailure(t *testing.T) {
	store := config.New(&failingRawStore{})
	hostUX := &fakeHostUX{}
	c := New(Config{Store: store, HostUX: hostUX})

	if err := c.Boot(context.Background()); err == nil {
		t.Fatal("expected Boot to fail when storage init fails")
	}
	if hostUX.fault != FaultStorage {
		t.Fatalf("fault = %v, want FaultStorage", hostUX.fault)
	}
}

func TestBootHaltsOnWifiFailure(t *testing.T) {
	store := config.New(config.NewMemStore())
	out := output.New(store)
	hostUX := &fakeHostUX{}
	c := New(Config{
		Store: store, Output: out, HostUX: hostUX,
		StartWifi: func() error { return errors.New("no radio") },
	})

	if err := c.Boot(context.Background()); err == nil {
		t.Fatal("expected Boot to fail when WiFi bring-up fails")
	}
	if hostUX.fault != FaultWifi {
		t.Fatalf("fault = %v, want FaultWifi", hostUX.fault)
	}
}

func TestBootSpawnsWorkersOnSuccess(t *testing.T) {
	store := config.New(config.NewMemStore())
	out := output.New(store)
	consumer := newFakeWorker()
	fileSave := newFakeWorker()
	c := New(Config{
		Store: store, Output: out,
		Pipeline: newTestPipeline(t),
		Consumer: consumer, FileSave: fileSave,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := c.Boot(ctx); err != nil {
		t.Fatal(err)
	}

	select {
	case <-consumer.ran:
	case <-time.After(time.Second):
		t.Fatal("consumer worker was never spawned")
	}
	select {
	case <-fileSave.ran:
	case <-time.After(time.Second):
		t.Fatal("file-save worker was never spawned")
	}
}

// failingRawStore fails every Read so Store.Init() fails immediately.
type failingRawStore struct{}

func (failingRawStore) Read(key string) ([]byte, error)   { return nil, errBoom }
func (failingRawStore) Write(key string, data []byte) error { return errBoom }

var errBoom = errors.New("coordinator_test: simulated store failure")
