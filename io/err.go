package io

import (
	"errors"

	"github.com/ezrec/native8080/translate"
)

var f = translate.From

var (
	// Port errors
	ErrChannelFull = errors.New(f("channel full"))
	ErrPortInvalid = errors.New(f("port invalid"))
)
