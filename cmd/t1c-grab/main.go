// Copyright 2017 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// t1c-grab captures a single frame off a T1C module and saves it as a
// 16-bit grayscale PNG. Adapted from lepton-grab: same one-shot bus-open
// and save shape, generalized from SPI+i2c to the T1C's serial frame
// link plus I²C CCI.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io/ioutil"
	"log"
	"os"

	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/host"

	"github.com/tclim/go-t1c/t1c"
)

func mainImpl() error {
	i2cName := flag.String("i2c", "", "I²C bus to use")
	i2cHz := flag.Int("i2chz", 0, "I²C bus speed")
	serialPath := flag.String("serial", "/dev/ttyAMA1", "frame serial device")
	serialBaud := flag.Uint("baud", 921600, "frame serial baud rate (reported on boot failure; the port is opened as already configured)")
	meta := flag.Bool("meta", false, "print frame flags")
	verbose := flag.Bool("v", false, "verbose mode")
	flag.Parse()
	if !*verbose {
		log.SetOutput(ioutil.Discard)
	}
	log.SetFlags(log.Lmicroseconds)

	if flag.NArg() != 1 {
		return errors.New("supply path to PNG to save")
	}

	if _, err := host.Init(); err != nil {
		return err
	}

	f, err := os.OpenFile(*serialPath, os.O_RDONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	i2cBus, err := i2creg.Open(*i2cName)
	if err != nil {
		return err
	}
	defer i2cBus.Close()
	if *i2cHz != 0 {
		if err := i2cBus.SetSpeed(int64(*i2cHz)); err != nil {
			return err
		}
	}

	dev := t1c.Open(f, i2cBus)
	defer dev.Close()
	if err := dev.Boot(); err != nil {
		return fmt.Errorf("%s\nbaud=%d", err, *serialBaud)
	}

	var frame t1c.Frame
	if err := dev.ReadFrame(&frame); err != nil {
		return err
	}
	if *meta {
		fmt.Printf("HighGain: %t\n", frame.HighGain)
		fmt.Printf("Frozen:   %t\n", frame.Frozen)
	}

	img := image.NewGray16(image.Rect(0, 0, t1c.Width, t1c.Height))
	for y := 0; y < t1c.Height; y++ {
		for x := 0; x < t1c.Width; x++ {
			img.SetGray16(x, y, color.Gray16{Y: frame.Pix[y*t1c.Width+x]})
		}
	}
	out, err := os.Create(flag.Args()[0])
	if err != nil {
		return err
	}
	defer out.Close()
	return png.Encode(out, img)
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "\nt1c-grab: %s.\n", err)
		os.Exit(1)
	}
}
