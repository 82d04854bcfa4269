// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tclim/go-t1c/metadata"
	"github.com/tclim/go-t1c/notify"
	"github.com/tclim/go-t1c/pipeline"
	"github.com/tclim/go-t1c/t1c"
)

// fileSaveWorker is the file-save collaborator (spec 3's FrameSlot
// consumer list): it waits for the pipeline's FileWantsImage signal,
// copies the committed file-save frame, and writes a 16-bit grayscale
// PNG plus a text sidecar of metadata.AnnotationLines. Rendering a
// palette-colored JPEG with embedded comments is the excluded rendering
// collaborator's job (spec 1); the PNG writing is grounded on
// lepton-grab's image/png usage.
type fileSaveWorker struct {
	slot *pipeline.FrameSlot
	mbox *notify.Mailbox
	dir  string
}

func newFileSaveWorker(slot *pipeline.FrameSlot, mbox *notify.Mailbox, dir string) *fileSaveWorker {
	return &fileSaveWorker{slot: slot, mbox: mbox, dir: dir}
}

// Run implements coordinator.Worker.
func (f *fileSaveWorker) Run(ctx context.Context) error {
	for {
		bits := f.mbox.Wait(time.Second)
		if ctx.Err() != nil {
			return nil
		}
		if !notify.Has(bits, notify.FileWantsImage) {
			continue
		}
		if err := f.save(); err != nil {
			lg.Errorf("camera: file-save: %v", err)
		}
	}
}

func (f *fileSaveWorker) save() error {
	snap := f.slot.Copy()
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("file-save: %w", err)
	}
	stamp := time.Now().Format("20060102-150405.000")
	base := filepath.Join(f.dir, stamp)

	img := image.NewGray16(image.Rect(0, 0, t1c.Width, t1c.Height))
	for y := 0; y < t1c.Height; y++ {
		for x := 0; x < t1c.Width; x++ {
			v := snap.Pix[y*t1c.Width+x]
			img.SetGray16(x, y, color.Gray16{Y: v})
		}
	}
	pf, err := os.Create(base + ".png")
	if err != nil {
		return fmt.Errorf("file-save: %w", err)
	}
	defer pf.Close()
	if err := png.Encode(pf, img); err != nil {
		return fmt.Errorf("file-save: encoding png: %w", err)
	}

	if meta, ok := snap.Meta.(*metadata.Snapshot); ok {
		lines := metadata.AnnotationLines(meta)
		if err := os.WriteFile(base+".txt", []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
			return fmt.Errorf("file-save: writing annotation sidecar: %w", err)
		}
	}
	lg.Infof("camera: saved %s.png", base)
	return nil
}
