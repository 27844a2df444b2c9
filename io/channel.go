// Package io provides the port I/O contract of the 8080 core and the
// devices that can be attached to it.
//
// The core only knows about Bus, a pair of optional port read/write
// functions. Ports maps the 256 port numbers onto Device implementations
// such as the byte-stream Tape (console) and the Temporary loopback FIFO.
package io

import (
	"log"
)

// FLOATING_BUS is the value read from a port with nothing attached.
const FLOATING_BUS = uint8(0xff)

// Bus is the port capability handed to the CPU on each step.
// Either function may be nil: reads then return FLOATING_BUS and writes
// are dropped.
type Bus struct {
	In  func(port uint8) uint8
	Out func(port uint8, value uint8)
}

// Read a value from a port.
func (bus *Bus) Read(port uint8) uint8 {
	if bus == nil || bus.In == nil {
		return FLOATING_BUS
	}
	return bus.In(port)
}

// Write a value to a port.
func (bus *Bus) Write(port uint8, value uint8) {
	if bus == nil || bus.Out == nil {
		return
	}
	bus.Out(port, value)
}

// Device defines the interface for a peripheral attached to one or more
// I/O ports. Neither method may block.
type Device interface {
	// Rewind resets the device to its initial state.
	Rewind()
	// In returns the value the device presents on a port.
	In(port uint8) uint8
	// Out delivers a value written to a port.
	Out(port uint8, value uint8)
}

// Ports is the I/O port space: one optional device per port number.
type Ports struct {
	Verbose bool // If set, logs accesses to unattached ports.

	device [256]Device
}

// SetDevice attaches a device to a port. A nil device detaches the port.
func (ports *Ports) SetDevice(port uint8, device Device) {
	ports.device[port] = device
}

// GetDevice gets the device attached to a port.
func (ports *Ports) GetDevice(port uint8) (device Device, err error) {
	device = ports.device[port]
	if device == nil {
		err = ErrPortInvalid
	}
	return
}

// Rewind rewinds every attached device once.
func (ports *Ports) Rewind() {
	seen := map[Device]bool{}
	for _, device := range ports.device {
		if device == nil || seen[device] {
			continue
		}
		seen[device] = true
		device.Rewind()
	}
}

// In reads from the device on a port.
func (ports *Ports) In(port uint8) (value uint8) {
	device := ports.device[port]
	if device == nil {
		if ports.Verbose {
			log.Printf("io: in port 0x%02x -> 0x%02x (unattached)", port, FLOATING_BUS)
		}
		return FLOATING_BUS
	}
	return device.In(port)
}

// Out writes to the device on a port.
func (ports *Ports) Out(port uint8, value uint8) {
	device := ports.device[port]
	if device == nil {
		if ports.Verbose {
			log.Printf("io: out port 0x%02x <- 0x%02x (unattached)", port, value)
		}
		return
	}
	device.Out(port, value)
}

// Bus returns the port capability backed by the attached devices.
func (ports *Ports) Bus() *Bus {
	return &Bus{
		In:  ports.In,
		Out: ports.Out,
	}
}
