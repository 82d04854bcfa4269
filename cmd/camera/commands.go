// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"sync"
	"sync/atomic"
	"time"

	logger "github.com/d2r2/go-logger"

	"github.com/tclim/go-t1c/cmdbus"
	"github.com/tclim/go-t1c/config"
	"github.com/tclim/go-t1c/notify"
	"github.com/tclim/go-t1c/output"
	"github.com/tclim/go-t1c/pipeline"
	"github.com/tclim/go-t1c/t1c"
	"github.com/tclim/go-t1c/transport"
)

var lg = logger.NewPackageLogger("camera", logger.InfoLevel)

// sysInfo carries the boot-time-constant identity fields sys-info reports,
// matching the fields metadata.Builder stamps onto saved frames.
type sysInfo struct {
	Platform        string
	FirmwareVersion string
	SensorSerial    string
}

// commandEnv bundles everything registerCommands wires the catalog
// against. The collaborators are assembled and owned by cmd/camera's
// main; commandEnv itself owns only the timelapse settings and their
// mutex.
type commandEnv struct {
	store        *config.Store
	out          *output.State
	pipe         *pipeline.Pipeline
	mbox         *notify.Mailbox // pipeline's own inbox
	displaySlots [2]*pipeline.FrameSlot
	fileSlot     *pipeline.FrameSlot

	batteryPct  *int32 // atomic; host-UX/battery-monitor collaborator is excluded, this stands in
	streamOn    *int32 // atomic bool; gates the web image streamer
	sys         sysInfo
	shutdownFn  func()
	timelapseMu sync.Mutex
	timelapse   cmdbus.TimelapsePayload
}

// registerCommands installs a GetHandler/SetHandler/RspHandler triple for
// every entry of the closed catalog (spec 6) against bus. IDs whose real
// backing collaborator is explicitly excluded (battery monitor, SD
// filesystem, firmware updater, WiFi/mDNS, host-UX message overlay) get a
// narrow stub that logs and reports success, so the wire protocol around
// them is still exercised end to end.
func registerCommands(bus *cmdbus.Bus, env *commandEnv) {
	bus.Register(cmdbus.AmbientCorrect,
		func(id cmdbus.ID) ([]byte, cmdbus.PayloadType, error) {
			s := env.out.Snapshot()
			p := cmdbus.AmbientCorrectPayload{
				UseAuto: s.UseAutoAmbient, ReflEqualsAmbient: s.ReflEqualsAmbient,
				AtmosphericTempC: int32(s.AtmosphericTempC), DistanceCM: uint32(s.DistanceCM),
				HumidityPct: uint32(s.HumidityPct), ReflectedTempC: int32(s.ReflectedTempC),
			}
			return p.Encode(), cmdbus.PayloadBinary, nil
		},
		func(id cmdbus.ID, payload []byte, pt cmdbus.PayloadType) error {
			var p cmdbus.AmbientCorrectPayload
			if err := p.Decode(payload); err != nil {
				return err
			}
			env.out.Mutate(func(s *output.State) {
				s.UseAutoAmbient = p.UseAuto
				s.ReflEqualsAmbient = p.ReflEqualsAmbient
				s.AtmosphericTempC = int16(p.AtmosphericTempC)
				s.DistanceCM = uint16(p.DistanceCM)
				s.HumidityPct = uint8(p.HumidityPct)
				s.ReflectedTempC = int16(p.ReflectedTempC)
			})
			if _, err := env.out.Save(env.mbox); err != nil {
				return err
			}
			env.pipe.EnqueueParam(t1c.GroupTPD, t1c.ParamTPDHumidity, uint16(p.HumidityPct))
			env.mbox.Post(notify.EnvUpdated)
			return nil
		}, nil)

	bus.Register(cmdbus.Backlight,
		getI32(func() int32 { return int32(env.out.Snapshot().Backlight) }),
		setI32(func(v int32) error {
			env.out.Mutate(func(s *output.State) { s.Backlight = uint8(v) })
			return nil
		}), nil)

	bus.Register(cmdbus.SaveBacklight, nil,
		func(id cmdbus.ID, payload []byte, pt cmdbus.PayloadType) error {
			_, err := env.out.Save(env.mbox)
			return err
		}, nil)

	bus.Register(cmdbus.BattLevel, getI32(func() int32 { return atomic.LoadInt32(env.batteryPct) }), nil, nil)
	bus.Register(cmdbus.CritBatt, getI32(func() int32 {
		if atomic.LoadInt32(env.batteryPct) < 5 {
			return 1
		}
		return 0
	}), nil, nil)

	bus.Register(cmdbus.Brightness,
		getI32(func() int32 { return int32(env.out.Snapshot().Brightness) }),
		setI32(func(v int32) error {
			env.out.Mutate(func(s *output.State) { s.Brightness = uint8(v) })
			_, err := env.out.Save(env.mbox)
			return err
		}), nil)

	bus.Register(cmdbus.CardPresent, getI32(func() int32 { return 1 }), nil, nil)

	bus.Register(cmdbus.CtrlActivity, nil,
		func(id cmdbus.ID, payload []byte, pt cmdbus.PayloadType) error {
			var p cmdbus.ActivityPayload
			if err := p.Decode(payload); err != nil {
				return err
			}
			switch p.Activity {
			case cmdbus.ActivityRestoreDefaults:
				env.mbox.Post(notify.RestoreDefaults)
			case cmdbus.ActivityCal1Pt:
				env.pipe.SetPendingCalTemp(uint16(p.Aux))
				env.mbox.Post(notify.Cal1Pt)
			case cmdbus.ActivityCal2PtLow:
				env.pipe.SetPendingCalTemp(uint16(p.Aux))
				env.mbox.Post(notify.Cal2PtLow)
			case cmdbus.ActivityCal2PtHigh:
				env.pipe.SetPendingCalTemp(uint16(p.Aux))
				env.mbox.Post(notify.Cal2PtHigh)
			case cmdbus.ActivitySDFormat:
				lg.Notify("camera: sd-format requested; SD filesystem access is a host collaborator, not implemented here")
			}
			return nil
		}, nil)

	bus.Register(cmdbus.Emissivity,
		getI32(func() int32 { return int32(env.out.Snapshot().Emissivity) }),
		setI32(func(v int32) error {
			env.out.Mutate(func(s *output.State) { s.Emissivity = uint8(v) })
			if _, err := env.out.Save(env.mbox); err != nil {
				return err
			}
			env.pipe.EnqueueParam(t1c.GroupTPD, t1c.ParamTPDEmissivity, uint16(v))
			return nil
		}), nil)

	bus.Register(cmdbus.FFC, nil,
		func(id cmdbus.ID, payload []byte, pt cmdbus.PayloadType) error {
			env.mbox.Post(notify.ManualFFC)
			return nil
		}, nil)

	bus.Register(cmdbus.FileCatalog, func(id cmdbus.ID) ([]byte, cmdbus.PayloadType, error) {
		lg.Debugf("camera: file-catalog: SD filesystem access is a host collaborator, reporting empty")
		return cmdbus.EncodeString(""), cmdbus.PayloadString, nil
	}, nil, nil)

	bus.Register(cmdbus.FileDelete, nil,
		func(id cmdbus.ID, payload []byte, pt cmdbus.PayloadType) error {
			lg.Notify("camera: file-delete %q: SD filesystem access is a host collaborator, ignored", cmdbus.DecodeString(payload))
			return nil
		}, nil)

	bus.Register(cmdbus.FileGetImage, func(id cmdbus.ID) ([]byte, cmdbus.PayloadType, error) {
		snap := env.fileSlot.Copy()
		return transport.PackFileImageRGB(&snap.Pix, grayscaleRenderer(snap.Y16Min, snap.Y16Max)), cmdbus.PayloadBinary, nil
	}, nil, nil)

	bus.Register(cmdbus.FwUpdEn, nil, setI32Only(func(v int32) error {
		lg.Notify("camera: fw-upd-en(%d): firmware updater is a host collaborator, ignored", v)
		return nil
	}), nil)
	bus.Register(cmdbus.FwUpdEnd, nil, setI32Only(func(v int32) error {
		lg.Notify("camera: fw-upd-end(%d): firmware updater is a host collaborator, ignored", v)
		return nil
	}), nil)

	bus.Register(cmdbus.Gain,
		getI32(func() int32 {
			if env.out.Snapshot().HighGain {
				return 1
			}
			return 0
		}),
		setI32(func(v int32) error {
			high := v != 0
			env.out.Mutate(func(s *output.State) { s.HighGain = high })
			if _, err := env.out.Save(env.mbox); err != nil {
				return err
			}
			var reg uint16
			if high {
				reg = 1
			}
			env.pipe.EnqueueParam(t1c.GroupTPD, t1c.ParamTPDGain, reg)
			return nil
		}), nil)

	bus.Register(cmdbus.Image, func(id cmdbus.ID) ([]byte, cmdbus.PayloadType, error) {
		snap := env.displaySlots[0].Copy()
		return transport.PackThermalFrame(&snap.Pix, snap.Y16Min, snap.Y16Max, snap.HighGain, snap.Frozen), cmdbus.PayloadBinary, nil
	}, nil, nil)

	bus.Register(cmdbus.Time,
		func(id cmdbus.ID) ([]byte, cmdbus.PayloadType, error) {
			now := time.Now()
			p := cmdbus.TimePayload{
				Sec: int32(now.Second()), Min: int32(now.Minute()), Hour: int32(now.Hour()),
				MDay: int32(now.Day()), Mon: int32(now.Month()), YearSince1900: int32(now.Year() - 1900),
				WDay: int32(now.Weekday()), YDay: int32(now.YearDay()),
			}
			return p.Encode(), cmdbus.PayloadBinary, nil
		},
		func(id cmdbus.ID, payload []byte, pt cmdbus.PayloadType) error {
			var p cmdbus.TimePayload
			if err := p.Decode(payload); err != nil {
				return err
			}
			lg.Notify("camera: time set request %+v: host clock is a host collaborator, ignored", p)
			return nil
		}, nil)

	bus.Register(cmdbus.TimelapseCfg,
		func(id cmdbus.ID) ([]byte, cmdbus.PayloadType, error) {
			env.timelapseMu.Lock()
			defer env.timelapseMu.Unlock()
			return env.timelapse.Encode(), cmdbus.PayloadBinary, nil
		},
		func(id cmdbus.ID, payload []byte, pt cmdbus.PayloadType) error {
			var p cmdbus.TimelapsePayload
			if err := p.Decode(payload); err != nil {
				return err
			}
			env.timelapseMu.Lock()
			env.timelapse = p
			env.timelapseMu.Unlock()
			return nil
		}, nil)

	bus.Register(cmdbus.TimelapseStatus, func(id cmdbus.ID) ([]byte, cmdbus.PayloadType, error) {
		env.timelapseMu.Lock()
		defer env.timelapseMu.Unlock()
		return env.timelapse.Encode(), cmdbus.PayloadBinary, nil
	}, nil, nil)

	bus.Register(cmdbus.MinMaxEn,
		getBool(func() bool { return env.out.Snapshot().MinMaxMarkersOn }),
		setBool(func(v bool) error {
			env.out.Mutate(func(s *output.State) { s.MinMaxMarkersOn = v })
			_, err := env.out.Save(env.mbox)
			return err
		}), nil)

	bus.Register(cmdbus.MsgOn, nil, setI32Only(func(v int32) error {
		lg.Debugf("camera: msg-on(%d): host-UX message overlay, ignored here", v)
		return nil
	}), nil)
	bus.Register(cmdbus.MsgOff, nil, setI32Only(func(v int32) error {
		lg.Debugf("camera: msg-off(%d): host-UX message overlay, ignored here", v)
		return nil
	}), nil)

	bus.Register(cmdbus.Orientation,
		getBool(func() bool { return env.out.Snapshot().Portrait }),
		setBool(func(v bool) error {
			env.out.Mutate(func(s *output.State) { s.Portrait = v })
			return nil
		}), nil)

	bus.Register(cmdbus.Palette,
		getI32(func() int32 { return int32(env.out.Snapshot().PaletteGUI) }),
		setI32(func(v int32) error {
			env.out.Mutate(func(s *output.State) { s.PaletteGUI = uint8(v) })
			return nil
		}), nil)
	bus.Register(cmdbus.SavePalette,
		getI32(func() int32 { return int32(env.out.Snapshot().PaletteSave) }),
		setI32(func(v int32) error {
			env.out.Mutate(func(s *output.State) { s.PaletteSave = uint8(v) })
			_, err := env.out.Save(env.mbox)
			return err
		}), nil)

	bus.Register(cmdbus.Poweroff, nil,
		func(id cmdbus.ID, payload []byte, pt cmdbus.PayloadType) error {
			lg.Notify("camera: poweroff requested")
			if env.shutdownFn != nil {
				env.shutdownFn()
			}
			return nil
		}, nil)

	bus.Register(cmdbus.RegionEn,
		getBool(func() bool { return env.out.Snapshot().RegionOn }),
		setBool(func(v bool) error {
			env.out.Mutate(func(s *output.State) { s.RegionOn = v })
			_, err := env.out.Save(env.mbox)
			return err
		}), nil)

	bus.Register(cmdbus.RegionLoc, nil,
		func(id cmdbus.ID, payload []byte, pt cmdbus.PayloadType) error {
			var p cmdbus.RegionLocPayload
			if err := p.Decode(payload); err != nil {
				return err
			}
			env.pipe.SetRegionLocation(t1c.RegionArgs{X0: int(p.X0), Y0: int(p.Y0), X1: int(p.X1), Y1: int(p.Y1)})
			env.mbox.Post(notify.SetRegionLocation)
			return nil
		}, nil)

	bus.Register(cmdbus.SaveOvlEn,
		getBool(func() bool { return env.out.Snapshot().SaveOverlayOn }),
		setBool(func(v bool) error {
			env.out.Mutate(func(s *output.State) { s.SaveOverlayOn = v })
			_, err := env.out.Save(env.mbox)
			return err
		}), nil)

	bus.Register(cmdbus.Shutdown, nil,
		func(id cmdbus.ID, payload []byte, pt cmdbus.PayloadType) error {
			lg.Notify("camera: shutdown command received")
			env.mbox.Post(notify.Shutdown)
			if env.shutdownFn != nil {
				env.shutdownFn()
			}
			return nil
		}, nil)

	bus.Register(cmdbus.ShutterInfo,
		func(id cmdbus.ID) ([]byte, cmdbus.PayloadType, error) {
			s := env.out.Snapshot()
			p := cmdbus.ShutterPayload{
				AutoFFC: s.AutoFFC, TempThreshX10: uint32(s.FFCDeltaTx10),
				MinIntervalS: uint32(s.MinMaxFFCIntervalS), MaxIntervalS: uint32(s.MinMaxFFCIntervalS),
			}
			return p.Encode(), cmdbus.PayloadBinary, nil
		},
		func(id cmdbus.ID, payload []byte, pt cmdbus.PayloadType) error {
			var p cmdbus.ShutterPayload
			if err := p.Decode(payload); err != nil {
				return err
			}
			env.out.Mutate(func(s *output.State) {
				s.AutoFFC = p.AutoFFC
				s.FFCDeltaTx10 = int16(p.TempThreshX10)
				s.MinMaxFFCIntervalS = uint16(p.MinIntervalS)
			})
			_, err := env.out.Save(env.mbox)
			return err
		}, nil)

	bus.Register(cmdbus.SpotEn,
		getBool(func() bool { return env.out.Snapshot().SpotOn }),
		setBool(func(v bool) error {
			env.out.Mutate(func(s *output.State) { s.SpotOn = v })
			_, err := env.out.Save(env.mbox)
			return err
		}), nil)

	bus.Register(cmdbus.SpotLoc, nil,
		func(id cmdbus.ID, payload []byte, pt cmdbus.PayloadType) error {
			var p cmdbus.SpotLocPayload
			if err := p.Decode(payload); err != nil {
				return err
			}
			env.pipe.SetSpotLocation(int(p.X), int(p.Y))
			env.mbox.Post(notify.SetSpotLocation)
			return nil
		}, nil)

	bus.Register(cmdbus.StreamEn,
		getBool(func() bool { return atomic.LoadInt32(env.streamOn) != 0 }),
		setBool(func(v bool) error {
			var n int32
			if v {
				n = 1
			}
			atomic.StoreInt32(env.streamOn, n)
			return nil
		}), nil)

	bus.Register(cmdbus.SysInfo, func(id cmdbus.ID) ([]byte, cmdbus.PayloadType, error) {
		s := env.sys.Platform + "\x00" + env.sys.FirmwareVersion + "\x00" + env.sys.SensorSerial
		return cmdbus.EncodeString(s), cmdbus.PayloadString, nil
	}, nil, nil)

	bus.Register(cmdbus.TakePicture, nil,
		func(id cmdbus.ID, payload []byte, pt cmdbus.PayloadType) error {
			env.pipe.RequestFileFrame()
			return nil
		}, nil)

	bus.Register(cmdbus.Units,
		getBool(func() bool { return env.out.Snapshot().UnitsMetric }),
		setBool(func(v bool) error {
			env.out.Mutate(func(s *output.State) { s.UnitsMetric = v })
			_, err := env.out.Save(env.mbox)
			return err
		}), nil)

	bus.Register(cmdbus.WifiInfo,
		func(id cmdbus.ID) ([]byte, cmdbus.PayloadType, error) {
			var r config.NetworkRecord
			if err := env.store.Get(config.Network, &r); err != nil {
				return nil, 0, err
			}
			p := cmdbus.WifiPayload{
				MDNS: r.MDNS, STAMode: r.STAMode, StaticIP: r.StaticIP,
				APSSID: cmdbus.DecodeString(r.APSSID[:]), STASSID: cmdbus.DecodeString(r.STASSID[:]),
				APPass: cmdbus.DecodeString(r.APPass[:]), STAPass: cmdbus.DecodeString(r.STAPass[:]),
				APIP: r.APIP, STAIP: r.STAIP, STAMask: r.STAMask,
			}
			return p.Encode(), cmdbus.PayloadBinary, nil
		},
		func(id cmdbus.ID, payload []byte, pt cmdbus.PayloadType) error {
			var p cmdbus.WifiPayload
			if err := p.Decode(payload); err != nil {
				return err
			}
			r := config.NetworkRecord{Version: 1, MDNS: p.MDNS, STAMode: p.STAMode, StaticIP: p.StaticIP, APIP: p.APIP, STAIP: p.STAIP, STAMask: p.STAMask}
			copy(r.APSSID[:], p.APSSID)
			copy(r.STASSID[:], p.STASSID)
			copy(r.APPass[:], p.APPass)
			copy(r.STAPass[:], p.STAPass)
			lg.Notify("camera: wifi-info set: WiFi/mDNS bring-up is a host collaborator, only persisting the record")
			return env.store.Set(config.Network, &r)
		}, nil)
}

func getI32(f func() int32) cmdbus.GetHandler {
	return func(id cmdbus.ID) ([]byte, cmdbus.PayloadType, error) {
		commandsServed.WithLabelValues(id.String(), "get").Inc()
		return cmdbus.EncodeI32(f()), cmdbus.PayloadI32, nil
	}
}

func setI32(f func(int32) error) cmdbus.SetHandler {
	return func(id cmdbus.ID, payload []byte, pt cmdbus.PayloadType) error {
		commandsServed.WithLabelValues(id.String(), "set").Inc()
		v, err := cmdbus.DecodeI32(payload)
		if err != nil {
			return err
		}
		return f(v)
	}
}

// setI32Only is identical to setI32; named separately for IDs whose
// setter intentionally ignores most of the decoded value beyond logging
// it, to keep call sites self-documenting.
func setI32Only(f func(int32) error) cmdbus.SetHandler { return setI32(f) }

func getBool(f func() bool) cmdbus.GetHandler {
	return getI32(func() int32 {
		if f() {
			return 1
		}
		return 0
	})
}

func setBool(f func(bool) error) cmdbus.SetHandler {
	return setI32(func(v int32) error { return f(v != 0) })
}
