//go:build linux

package main

import (
	"os"

	"golang.org/x/sys/unix"
)

// enterRawTerm turns off line buffering and echo on a terminal, so each
// key reaches the console as it is typed. The returned function restores
// the previous mode.
func enterRawTerm(tty *os.File) (restore func(), err error) {
	fd := int(tty.Fd())

	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return
	}

	saved := *termios
	termstate := *termios

	termstate.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.INLCR
	termstate.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.IEXTEN
	termstate.Cflag &^= unix.CSIZE | unix.PARENB
	termstate.Cflag |= unix.CS8

	// Block until at least one byte is available.
	termstate.Cc[unix.VMIN] = 1
	termstate.Cc[unix.VTIME] = 0

	err = unix.IoctlSetTermios(fd, unix.TCSETS, &termstate)
	if err != nil {
		return
	}

	restore = func() {
		_ = unix.IoctlSetTermios(fd, unix.TCSETS, &saved)
	}

	return
}
