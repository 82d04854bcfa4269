// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pipeline

import (
	"sync"
	"time"

	"github.com/tclim/go-t1c/t1c"
)

// ParamWrite is one pending CCI parameter write, popped one at a time by
// the ParamIssue state (spec 4.6.3).
type ParamWrite struct {
	Group t1c.Group
	ID    t1c.ParamID
	Value uint16
}

// paramQueueCap bounds the pending-write queue; pushes block for up to
// one second waiting for room, then drop (spec 5's suspension-point
// policy for a full parameter queue).
const paramQueueCap = 32

// paramQueue is a FIFO guarded by a single mutex for both push and pop;
// only the pipeline worker pops (spec 5). It supports
// skipping past TPD-group writes while a two-point calibration latch is
// held, without losing FIFO order among the writes it does let through.
type paramQueue struct {
	mu    sync.Mutex
	cond  *sync.Cond
	items []ParamWrite
}

func newParamQueue() *paramQueue {
	q := &paramQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push appends pw, waiting up to one second for room before dropping it.
// Returns false if the write was dropped. If an item for the same
// (Group, ID) is still queued (not yet popped), pw replaces its value in
// place instead of appending a second entry, so a newer write for the
// same parameter supersedes an older one still waiting for the CCI.
func (q *paramQueue) push(pw ParamWrite) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, existing := range q.items {
		if existing.Group == pw.Group && existing.ID == pw.ID {
			q.items[i] = pw
			return true
		}
	}
	if len(q.items) < paramQueueCap {
		q.items = append(q.items, pw)
		q.cond.Broadcast()
		return true
	}
	deadline := time.Now().Add(time.Second)
	timedOut := false
	timer := time.AfterFunc(time.Second, func() {
		q.mu.Lock()
		timedOut = true
		q.cond.Broadcast()
		q.mu.Unlock()
	})
	defer timer.Stop()
	for len(q.items) >= paramQueueCap {
		if timedOut || time.Now().After(deadline) {
			return false
		}
		q.cond.Wait()
	}
	q.items = append(q.items, pw)
	return true
}

// pop removes and returns the oldest write that group gating allows;
// blockTPD, when true, skips over (but does not drop) GroupTPD writes.
func (q *paramQueue) pop(blockTPD bool) (ParamWrite, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, pw := range q.items {
		if blockTPD && pw.Group == t1c.GroupTPD {
			continue
		}
		q.items = append(q.items[:i:i], q.items[i+1:]...)
		q.cond.Broadcast()
		return pw, true
	}
	return ParamWrite{}, false
}
