// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// openFrameSerial opens path (e.g. "/dev/ttyAMA1") and puts it into raw
// mode at baud via termios ioctls, generalized from the teacher's
// MakeLepton, which configures /dev/spidev0.0 through the SPI-specific
// ioctl numbers. The T1C's frame stream is a plain serial link rather
// than SPI, so this reaches for the termios TCGETS/TCSETS pair instead.
func openFrameSerial(path string, baud uint32) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_NOCTTY, 0)
	if err != nil {
		return nil, fmt.Errorf("camera: opening frame serial %s: %w", path, err)
	}
	t, err := unix.IoctlGetTermios(int(f.Fd()), unix.TCGETS)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("camera: reading termios for %s: %w", path, err)
	}

	t.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP |
		unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	t.Oflag &^= unix.OPOST
	t.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	t.Cflag &^= unix.CSIZE | unix.PARENB
	t.Cflag |= unix.CS8 | unix.CLOCAL
	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 0

	speed, err := termiosSpeed(baud)
	if err != nil {
		f.Close()
		return nil, err
	}
	t.Ispeed = speed
	t.Ospeed = speed

	if err := unix.IoctlSetTermios(int(f.Fd()), unix.TCSETS, t); err != nil {
		f.Close()
		return nil, fmt.Errorf("camera: configuring termios for %s: %w", path, err)
	}
	return f, nil
}

func termiosSpeed(baud uint32) (uint32, error) {
	switch baud {
	case 115200:
		return unix.B115200, nil
	case 921600:
		return unix.B921600, nil
	case 1000000:
		return unix.B1000000, nil
	default:
		return 0, fmt.Errorf("camera: unsupported baud rate %d", baud)
	}
}
