// Copyright 2017 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// t1c-query uses the T1C's I²C CCI to print its boot-time identity and
// TPD parameters, and can optionally trigger a forced FFC. Adapted from
// lepton-query: same bare bus-open-and-print shape, generalized from the
// Lepton's cci.New to t1c.Open's split serial/I²C Dev.
package main

import (
	"flag"
	"fmt"
	"os"

	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/host"

	"github.com/tclim/go-t1c/t1c"
)

func mainImpl() error {
	i2cName := flag.String("i2c", "", "I²C bus to use")
	i2cHz := flag.Int("hz", 0, "I²C bus speed")
	ffc := flag.Bool("ffc", false, "trigger a forced FFC")
	flag.Parse()

	if len(flag.Args()) != 0 {
		return fmt.Errorf("unexpected argument: %s", flag.Args())
	}

	if _, err := host.Init(); err != nil {
		return err
	}
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

	// t1c-query never reads frames, so it hands Open a reader that
	// always blocks; nothing here calls ReadFrame.
	dev := t1c.Open(blockingReader{}, i2cBus)
	defer dev.Close()
	if err := dev.Boot(); err != nil {
		return err
	}

	version, err := dev.Version()
	if err != nil {
		return err
	}
	fmt.Printf("Version: %s\n", version)
	serial, err := dev.Serial()
	if err != nil {
		return err
	}
	fmt.Printf("Serial:  %s\n", serial)

	for _, p := range []struct {
		name string
		id   t1c.ParamID
	}{
		{"Gain", t1c.ParamTPDGain},
		{"AtmosphericTemp", t1c.ParamTPDAtmosphericTemp},
		{"ReflectedTemp", t1c.ParamTPDReflectedTemp},
		{"Distance", t1c.ParamTPDDistance},
		{"Humidity", t1c.ParamTPDHumidity},
		{"Emissivity", t1c.ParamTPDEmissivity},
		{"Tau", t1c.ParamTPDTau},
	} {
		v, err := dev.GetParam(t1c.GroupTPD, p.id)
		if err != nil {
			return fmt.Errorf("reading %s: %w", p.name, err)
		}
		fmt.Printf("TPD.%-16s %d\n", p.name, v)
	}

	if *ffc {
		return dev.ForceFFC()
	}
	return nil
}

// blockingReader never returns, satisfying io.Reader for a Dev that is
// only used for parameter and query access.
type blockingReader struct{}

func (blockingReader) Read(p []byte) (int, error) {
	select {}
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "\nt1c-query: %s.\n", err)
		os.Exit(1)
	}
}
