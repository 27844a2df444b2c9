//go:build !linux

package main

import (
	"errors"
	"os"
)

// enterRawTerm is only supported on Linux.
func enterRawTerm(tty *os.File) (restore func(), err error) {
	err = errors.New("not supported on this platform")
	return
}
