// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// camera runs the full core (C1-C11) against real T1C hardware: a
// serial frame link, a shared I²C bus carrying the CCI and the optional
// distance peripheral, the optional ambient peripheral on its own I²C
// bus handle, and a websocket command/image server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/user"
	"path/filepath"
	"runtime/pprof"
	"time"

	logger "github.com/d2r2/go-logger"
	shell "github.com/d2r2/go-shell"
	"github.com/maruel/interrupt"
	"github.com/maruel/serve-dir/loghttp"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/host"

	"github.com/tclim/go-t1c/cmdbus"
	"github.com/tclim/go-t1c/config"
	"github.com/tclim/go-t1c/coordinator"
	"github.com/tclim/go-t1c/envsense"
	"github.com/tclim/go-t1c/metadata"
	"github.com/tclim/go-t1c/notify"
	"github.com/tclim/go-t1c/output"
	"github.com/tclim/go-t1c/pipeline"
	"github.com/tclim/go-t1c/t1c"
	"github.com/tclim/go-t1c/tau"
)

// bootConfig is the JSON sidecar read/written at
// ~/.config/camera/camera.json, generalized from cmd/lepton/main.go's Config/-writeConfig pattern.
type bootConfig struct {
	Port          int    `json:"port"`
	ConfigDir     string `json:"config_dir"`
	TauDir        string `json:"tau_dir"`
	FileSaveDir   string `json:"file_save_dir"`
	WebRoot       string `json:"web_root"`
	FrameSerial   string `json:"frame_serial"`
	FrameBaud     uint32 `json:"frame_baud"`
	I2CBus        string `json:"i2c_bus"`
	ResetPin      string `json:"reset_pin"`
	SHT3xAddr     uint8  `json:"sht3x_addr"`
	SHT3xBus      int    `json:"sht3x_bus"`
	SensorSerial  string `json:"sensor_serial"`
	FirmwareLabel string `json:"firmware_label"`
}

func defaultBootConfig() bootConfig {
	return bootConfig{
		Port: 8010, ConfigDir: "/var/lib/camera/config", TauDir: "/usr/share/camera/tau",
		FileSaveDir: "/var/lib/camera/saved", WebRoot: "/usr/share/camera/www",
		FrameSerial: "/dev/ttyAMA1", FrameBaud: 921600, I2CBus: "", ResetPin: "",
		SHT3xAddr: 0x44, SHT3xBus: 1, SensorSerial: "unknown", FirmwareLabel: "unknown",
	}
}

func mainImpl() error {
	cpuprofile := flag.String("cpuprofile", "", "dump CPU profile in file")
	writeConfig := flag.Bool("writeConfig", false, "write the current config (defaults merged with any existing file) and exit")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	if *verbose {
		logger.ChangePackageLogLevel("camera", logger.DebugLevel)
	}
	defer logger.FinalizeLogger()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return err
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	usr, _ := user.Current()
	configPath := filepath.Join(usr.HomeDir, ".config", "camera", "camera.json")
	cfg := defaultBootConfig()
	if f, err := os.Open(configPath); err == nil {
		err := json.NewDecoder(f).Decode(&cfg)
		f.Close()
		if err != nil {
			return err
		}
	}
	if *writeConfig {
		if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
			return err
		}
		f, err := os.OpenFile(configPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
		if err != nil {
			return err
		}
		defer f.Close()
		data, err := json.MarshalIndent(&cfg, "", "  ")
		if err != nil {
			return err
		}
		_, err = f.Write(append(data, '\n'))
		return err
	}

	interrupt.HandleCtrlC()
	done := make(chan struct{})
	defer close(done)
	ctx, cancel := context.WithCancel(context.Background())
	shell.CloseContextOnKillSignal(cancel, done)
	go func() {
		<-interrupt.Channel
		cancel()
	}()

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("camera: host.Init: %w", err)
	}

	store, err := config.NewFileStore(cfg.ConfigDir)
	if err != nil {
		return fmt.Errorf("camera: opening config store: %w", err)
	}
	cstore := config.New(store)
	out := output.New(cstore)

	stopWatch, err := config.WatchDir(cstore, cfg.ConfigDir)
	if err != nil {
		lg.Errorf("camera: watching config dir: %v", err)
	} else {
		defer stopWatch()
	}

	frameDev, err := openFrameSerial(cfg.FrameSerial, cfg.FrameBaud)
	if err != nil {
		return err
	}
	defer frameDev.Close()

	i2cBus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return fmt.Errorf("camera: opening i2c bus: %w", err)
	}
	defer i2cBus.Close()
	shared := newSharedI2CBus(i2cBus)

	port := t1c.Open(frameDev, shared)

	var ambient envsense.AmbientSensor
	var distance envsense.DistanceSensor
	if sht3x, err := envsense.NewSHT3xAmbient(cfg.SHT3xAddr, cfg.SHT3xBus); err != nil {
		lg.Errorf("camera: ambient sensor unavailable: %v", err)
	} else {
		defer sht3x.Close()
		ambient = sht3x
	}
	if vl, err := envsense.NewVL53L1XDistance(shared); err != nil {
		lg.Errorf("camera: distance sensor unavailable: %v", err)
	} else {
		defer vl.Close()
		distance = vl
	}

	pipelineMbox := notify.New()
	fileSaveMbox := notify.New()
	sampler := envsense.New(ambient, distance, pipelineMbox)

	est := tau.NewEstimator(tau.DirLoader{Dir: cfg.TauDir})
	if err := est.ReadTable(tau.GainLow); err != nil {
		lg.Errorf("camera: loading low-gain correction table: %v", err)
	}

	builder := &metadata.Builder{Platform: "camera", FirmwareVersion: cfg.FirmwareLabel, SensorSerial: cfg.SensorSerial}

	displaySlots := [2]*pipeline.FrameSlot{{}, {}}
	fileSlot := &pipeline.FrameSlot{}

	pipe := pipeline.New(pipeline.Config{
		Port: port, Output: out, Estimator: est,
		Mailbox: pipelineMbox, FileSaveMailbox: fileSaveMbox,
		DisplaySlots: displaySlots, FileSlot: fileSlot,
		BuildMetadata: builder.Build(), EnvSampler: sampler,
	})

	bus := cmdbus.InitLocal()
	var streamOn int32
	var batteryPct int32 = 100
	hostUX := &logFaultHostUX{}
	env := &commandEnv{
		store: cstore, out: out, pipe: pipe, mbox: pipelineMbox,
		displaySlots: displaySlots, fileSlot: fileSlot,
		batteryPct: &batteryPct, streamOn: &streamOn,
		sys: sysInfo{Platform: "camera", FirmwareVersion: cfg.FirmwareLabel, SensorSerial: cfg.SensorSerial},
		shutdownFn: cancel,
	}
	registerCommands(bus, env)

	streamer := newWebStreamer(displaySlots[0], &streamOn)
	fileSave := newFileSaveWorker(fileSlot, fileSaveMbox, cfg.FileSaveDir)

	c := coordinator.New(coordinator.Config{
		Store: cstore, Output: out, HostUX: hostUX,
		ResetSensor: resetSensor(cfg.ResetPin, 10*time.Millisecond),
		EnvSampler:  sampler, Pipeline: pipe, Consumer: streamer, FileSave: fileSave,
	})
	if err := c.Boot(ctx); err != nil {
		return fmt.Errorf("camera: boot: %w", err)
	}
	if err := port.Boot(); err != nil {
		hostUX.SetFault(coordinator.FaultSensorBoot)
		return fmt.Errorf("camera: t1c boot: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(cfg.WebRoot)))
	mux.Handle("/stream", streamer.handler(ctx))
	mux.Handle("/cmd", commandWebsocketHandler(bus))
	registerMetricsHandler(mux)

	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Port), Handler: loghttp.Log(mux)}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	lg.Notify("camera: listening on %d", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("camera: http server: %w", err)
	}
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "camera: %s\n", err)
		os.Exit(1)
	}
}
