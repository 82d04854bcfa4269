// Copyright 2016 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package config

import (
	fsnotify "gopkg.in/fsnotify.v1"
)

// WatchDir watches dir (the FileStore's directory) for out-of-band
// changes — e.g. a configuration pushed onto the SD card by a companion
// tool — and calls s.Init to re-read every kind from raw storage. Generalized from the teacher's
// cmd/lepton/watch_linux.go, which watches the running binary itself for
// redeploys; here the watched path and the reaction differ but the
// watch-a-path/react-on-event shape is the same.
//
// The returned stop function closes the watcher; it is safe to call more
// than once.
func WatchDir(s *Store, dir string) (stop func() error, err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) != 0 {
					lg.Infof("config: detected external change to %s, reloading", ev.Name)
					if err := s.Init(); err != nil {
						lg.Errorf("config: reload after external change failed: %v", err)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				lg.Errorf("config: watcher error: %v", err)
			}
		}
	}()
	closed := false
	return func() error {
		if closed {
			return nil
		}
		closed = true
		close(done)
		return w.Close()
	}, nil
}
