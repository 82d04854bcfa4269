// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package transport

import "testing"

func TestSendQueueFIFO(t *testing.T) {
	q := newSendQueue()
	for i := 0; i < 3; i++ {
		if err := q.push([]byte{byte(i)}); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 3; i++ {
		buf, ok := q.pop()
		if !ok || buf[0] != byte(i) {
			t.Fatalf("pop %d = %v ok=%v, want [%d]", i, buf, ok, i)
		}
	}
	if _, ok := q.pop(); ok {
		t.Fatal("expected the drained queue to report empty")
	}
}

func TestSendQueueDropsOnFull(t *testing.T) {
	q := newSendQueue()
	for i := 0; i < sendQueueCap; i++ {
		if err := q.push([]byte{byte(i)}); err != nil {
			t.Fatalf("push %d: unexpected error filling the queue: %v", i, err)
		}
	}
	if err := q.push([]byte{0xff}); err != errQueueFull {
		t.Fatalf("push beyond capacity: got %v, want errQueueFull", err)
	}
	if q.len() != sendQueueCap {
		t.Fatalf("len = %d, want %d (the dropped push must not grow the queue)", q.len(), sendQueueCap)
	}
}

func TestSendQueueWrapsAroundAfterDraining(t *testing.T) {
	q := newSendQueue()
	for i := 0; i < sendQueueCap; i++ {
		q.push([]byte{byte(i)})
	}
	for i := 0; i < sendQueueCap/2; i++ {
		q.pop()
	}
	for i := 0; i < sendQueueCap/2; i++ {
		if err := q.push([]byte{0xaa}); err != nil {
			t.Fatalf("push after partial drain should have room: %v", err)
		}
	}
	if q.len() != sendQueueCap {
		t.Fatalf("len = %d, want %d after refilling the drained half", q.len(), sendQueueCap)
	}
}
