// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package config

import (
	"errors"
	"fmt"
	"sync"

	logger "github.com/d2r2/go-logger"
)

var lg = logger.NewPackageLogger("config", logger.InfoLevel)

// ErrNotFound is returned by RawStore.Read when the key has never been
// written.
var ErrNotFound = errors.New("config: key not found")

// RawStore is the narrow interface the store needs from the underlying
// persistence medium (SD card partition, flash KV area, ...). It is
// intentionally this small: the filesystem/flash driver itself is an
// excluded external collaborator (spec 1).
type RawStore interface {
	Read(key string) ([]byte, error)
	Write(key string, data []byte) error
}

type record interface {
	Encode() []byte
	Decode([]byte) error
}

// Store is the Persistent Config Store (C1).
type Store struct {
	raw RawStore

	mu  sync.Mutex
	net NetworkRecord
	t1c T1CRecord
	out OutputRecord
}

// New wraps raw into a Store. Call Init before using it.
func New(raw RawStore) *Store {
	return &Store{raw: raw}
}

// Init probes the store for each kind: if missing or size-mismatched, it
// writes and adopts the default record; otherwise it loads the persisted
// one into the in-memory mirror. Returns an error only if the underlying
// store itself is unusable (e.g. Write fails while establishing a
// default) — a single bad record is repaired silently, not fatal.
func (s *Store) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := Network; k < numKinds; k++ {
		if err := s.loadOrDefaultLocked(k); err != nil {
			return fmt.Errorf("config: init %s: %w", k, err)
		}
	}
	return nil
}

func (s *Store) loadOrDefaultLocked(k Kind) error {
	rec := s.recordLocked(k)
	raw, err := s.raw.Read(k.Key())
	if err == nil {
		if decErr := rec.Decode(raw); decErr == nil {
			return nil
		}
		lg.Notify(fmt.Sprintf("config: %s record size mismatch, reinitializing from defaults", k))
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	return s.reinitLocked(k)
}

// Get copies the current in-memory record of kind k into out. out must be
// a pointer to the matching record type (*NetworkRecord, *T1CRecord or
// *OutputRecord).
func (s *Store) Get(k Kind, out record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.recordLocked(k)
	if rec == nil {
		return fmt.Errorf("config: unknown kind %v", k)
	}
	return copyRecord(rec, out)
}

// Set copies in into the in-memory mirror, persists it and commits before
// returning success. On a write failure the in-memory mirror is left
// unchanged (spec 4.1: "write commit fails: operation fails, in-memory
// mirror unchanged").
func (s *Store) Set(k Kind, in record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.recordLocked(k)
	if rec == nil {
		return fmt.Errorf("config: unknown kind %v", k)
	}
	if err := s.raw.Write(k.Key(), in.Encode()); err != nil {
		return fmt.Errorf("config: set %s: %w", k, err)
	}
	return copyRecord(in, rec)
}

// Reinit re-initializes kind k from its build-time default and persists
// it.
func (s *Store) Reinit(k Kind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reinitLocked(k)
}

// ReinitAll re-initializes every kind from defaults.
func (s *Store) ReinitAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := Network; k < numKinds; k++ {
		if err := s.reinitLocked(k); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) reinitLocked(k Kind) error {
	var def record
	switch k {
	case Network:
		def = defaultNetworkRecord()
	case T1C:
		def = defaultT1CRecord()
	case Output:
		def = defaultOutputRecord()
	default:
		return fmt.Errorf("config: unknown kind %v", k)
	}
	if err := s.raw.Write(k.Key(), def.Encode()); err != nil {
		return err
	}
	return copyRecord(def, s.recordLocked(k))
}

func (s *Store) recordLocked(k Kind) record {
	switch k {
	case Network:
		return &s.net
	case T1C:
		return &s.t1c
	case Output:
		return &s.out
	default:
		return nil
	}
}

func copyRecord(src, dst record) error {
	return dst.Decode(src.Encode())
}
