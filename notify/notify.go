// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package notify implements the core's sole cross-worker signalling
// primitive: a 32-bit bit-mailbox per task.
//
// post() ORs bits in atomically; wait() returns the accumulated bits and
// clears them. Multiple posts between waits coalesce: presence is kept,
// count is lost.
package notify

import (
	"sync"
	"sync/atomic"
	"time"
)

// Bit is a single notification. No payload travels with a Bit; richer data
// travels through a separate typed queue (see the pipeline package's
// paramQueue, envsense.Sample).
type Bit uint32

// All bits the core may post. Numbering is not wire-visible, only the
// bit position matters, so it is free to grow.
const (
	SetSpotLocation Bit = 1 << iota
	SetRegionLocation
	RestoreDefaults
	Cal1Pt
	Cal2PtLow
	Cal2PtHigh
	ManualFFC
	EnvUpdated
	ConfigUpdated
	NewAmbient
	NewDistance
	FileWantsImage
	Shutdown
)

// Mailbox is a single worker's bit-mailbox. Create one with New; the zero
// value has no condition variable, so Post and Wait on it panic.
type Mailbox struct {
	bits int32 // atomic.

	mu   sync.Mutex
	cond *sync.Cond
}

// New returns a ready to use Mailbox.
func New() *Mailbox {
	m := &Mailbox{}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Post ORs bits into the mailbox and wakes any waiter. Safe for concurrent
// use by multiple posters.
func (m *Mailbox) Post(bits Bit) {
	for {
		old := atomic.LoadInt32(&m.bits)
		n := old | int32(bits)
		if atomic.CompareAndSwapInt32(&m.bits, old, n) {
			break
		}
	}
	m.cond.Broadcast()
}

// Wait blocks until at least one bit is posted or timeout elapses, then
// returns the accumulated bits and clears the mailbox. A zero return means
// the timeout expired with nothing pending.
//
// Cancel-idempotent: calling Wait again after it already drained never
// returns a bit that was already consumed; if nothing new is posted it
// blocks until the timeout and returns 0.
func (m *Mailbox) Wait(timeout time.Duration) Bit {
	deadline := time.Now().Add(timeout)
	m.mu.Lock()
	defer m.mu.Unlock()
	for atomic.LoadInt32(&m.bits) == 0 {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return 0
		}
		t := time.AfterFunc(remaining, m.cond.Broadcast)
		m.cond.Wait()
		t.Stop()
		if time.Now().After(deadline) && atomic.LoadInt32(&m.bits) == 0 {
			return 0
		}
	}
	return m.drain()
}

// Peek returns the accumulated bits without clearing them, so a caller
// (the command handler tests, for one) can check what was posted without
// consuming it.
func (m *Mailbox) Peek() Bit {
	return Bit(atomic.LoadInt32(&m.bits))
}

// Drain returns the accumulated bits and clears the mailbox without
// blocking. This is what the frame pipeline's per-frame poll uses: it must
// never suspend waiting for a notification (5, suspension points).
func (m *Mailbox) Drain() Bit {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.drain()
}

func (m *Mailbox) drain() Bit {
	old := atomic.SwapInt32(&m.bits, 0)
	return Bit(old)
}

// Has reports whether all of the given bits are set within v.
func Has(v, bits Bit) bool {
	return v&bits == bits
}
