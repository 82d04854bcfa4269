// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tau

import (
	"io"
	"os"
	"path/filepath"
)

// DirLoader loads correction tables from files named after their asset
// name ("tau_H", "tau_L") in a directory, per spec 6's persistence
// layout.
type DirLoader struct {
	Dir string
}

// OpenTable implements Loader.
func (d DirLoader) OpenTable(name string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(d.Dir, name))
}
