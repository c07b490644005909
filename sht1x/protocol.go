// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sht1x

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Mode is the drive direction of a line.
type Mode int

const (
	modeUnset Mode = iota
	Input
	Output
)

func (m Mode) String() string {
	switch m {
	case Input:
		return "Input"
	case Output:
		return "Output"
	default:
		return "Unset"
	}
}

// Command is a sensor command. Only the low 5 bits are sent, the address
// bits are always 000.
type Command byte

const (
	TemperatureCommand Command = 0x03
	HumidityCommand    Command = 0x05
)

func (c Command) String() string {
	switch c {
	case TemperatureCommand:
		return "temperature"
	case HumidityCommand:
		return "humidity"
	default:
		return fmt.Sprintf("command(0x%02x)", byte(c))
	}
}

// line is a GPIO pin with the drive mode last requested by the driver.
//
// level is the output latch: selecting Output drives the last written level.
type line struct {
	p     gpio.PinIO
	name  string
	mode  Mode
	level gpio.Level
}

func (l *line) String() string {
	return fmt.Sprintf("%s(%s)", l.name, l.p)
}

// setMode selects the drive direction of l. Pin errors are recorded in
// dev.err and returned at the end of the transaction.
func (dev *Dev) setMode(l *line, m Mode) {
	l.mode = m
	var err error
	if m == Input {
		err = l.p.In(gpio.PullUp, gpio.NoEdge)
	} else {
		err = l.p.Out(l.level)
	}
	dev.fail(l, err)
}

// write drives l to level. l must be in Output mode.
func (dev *Dev) write(l *line, level gpio.Level) {
	if l.mode != Output {
		panic(fmt.Sprintf("sht1x: write on %s in %s mode", l, l.mode))
	}
	l.level = level
	dev.fail(l, l.p.Out(level))
}

// read samples l. l must be in Input mode.
func (dev *Dev) read(l *line) gpio.Level {
	if l.mode != Input {
		panic(fmt.Sprintf("sht1x: read on %s in %s mode", l, l.mode))
	}
	return l.p.Read()
}

func (dev *Dev) fail(l *line, err error) {
	if err != nil && dev.err == nil {
		dev.err = fmt.Errorf("sht1x: %s: %w", l, err)
	}
}

func (dev *Dev) pulseClock() {
	dev.write(&dev.clock, gpio.High)
	dev.write(&dev.clock, gpio.Low)
}

// startTransmission emits the "Transmission Start" sequence: DATA falls
// while SCK is high, then rises again during the next SCK high phase.
//
// Both lines must be in Output mode.
func (dev *Dev) startTransmission() {
	dev.write(&dev.data, gpio.High)
	dev.write(&dev.clock, gpio.High)
	dev.write(&dev.data, gpio.Low)
	dev.write(&dev.clock, gpio.Low)
	dev.write(&dev.clock, gpio.High)
	dev.write(&dev.data, gpio.High)
	dev.write(&dev.clock, gpio.Low)
}

// shiftOutByte clocks v out on DATA, MSB first.
func (dev *Dev) shiftOutByte(v byte) {
	dev.setMode(&dev.data, Output)
	dev.setMode(&dev.clock, Output)
	for i := 7; i >= 0; i-- {
		dev.write(&dev.data, gpio.Level(v&(1<<uint(i)) != 0))
		dev.pulseClock()
	}
}

// shiftInBits clocks n bits in from DATA, MSB first. DATA is sampled while
// SCK is high.
func (dev *Dev) shiftInBits(n int) uint16 {
	if n < 1 || n > 16 {
		panic(fmt.Sprintf("sht1x: can't shift in %d bits", n))
	}
	dev.setMode(&dev.data, Input)
	dev.setMode(&dev.clock, Output)
	var v uint16
	for i := 0; i < n; i++ {
		dev.write(&dev.clock, gpio.High)
		v <<= 1
		if dev.read(&dev.data) == gpio.High {
			v |= 1
		}
		dev.write(&dev.clock, gpio.Low)
	}
	return v
}

// skipCrc leaves DATA high during the acknowledge clock after the second
// data byte, which tells the sensor to not send the CRC.
func (dev *Dev) skipCrc() {
	dev.setMode(&dev.data, Output)
	dev.setMode(&dev.clock, Output)
	dev.write(&dev.data, gpio.High)
	dev.pulseClock()
}

// sendCommand starts a transmission and sends cmd. The two acknowledgement
// levels are checked; a mismatch is logged and reported in the returned
// Status but the transaction goes on.
func (dev *Dev) sendCommand(cmd Command) Status {
	dev.setMode(&dev.data, Output)
	dev.setMode(&dev.clock, Output)
	dev.startTransmission()
	dev.shiftOutByte(byte(cmd))

	var st Status
	dev.setMode(&dev.data, Input)
	dev.write(&dev.clock, gpio.High)
	if dev.read(&dev.data) != gpio.Low {
		st |= AckCommandMismatch
		dev.opts.Logger.Warn("sht1x: command not acknowledged", "command", cmd)
	}
	dev.write(&dev.clock, gpio.Low)
	if dev.read(&dev.data) != gpio.High {
		st |= AckStartMismatch
		dev.opts.Logger.Warn("sht1x: DATA not released after acknowledge", "command", cmd)
	}
	return st
}

// waitForMeasurement polls DATA until the sensor pulls it low to signal the
// end of the conversion. Returns false if that didn't happen before
// Opts.MeasurementTimeout.
func (dev *Dev) waitForMeasurement() bool {
	dev.setMode(&dev.data, Input)
	start := time.Now()
	deadline := start.Add(dev.opts.MeasurementTimeout)
	polls := 0
	for {
		polls++
		if dev.read(&dev.data) == gpio.Low {
			dev.opts.Logger.Debug("sht1x: measurement ready", "polls", polls, "elapsed", time.Since(start))
			return true
		}
		if dev.err != nil || !time.Now().Before(deadline) {
			return false
		}
		sleep(dev.opts.PollInterval)
	}
}

// readRaw16 shifts in the two data bytes, acknowledging the first one, and
// skips the CRC.
func (dev *Dev) readRaw16() uint16 {
	dev.setMode(&dev.data, Input)
	dev.setMode(&dev.clock, Output)
	v := dev.shiftInBits(8) * 256

	dev.setMode(&dev.data, Output)
	dev.write(&dev.data, gpio.High)
	dev.write(&dev.data, gpio.Low)
	dev.pulseClock()

	dev.setMode(&dev.data, Input)
	v |= dev.shiftInBits(8)

	dev.skipCrc()
	return v
}

// measure runs one complete transaction for cmd. dev.mu must be held.
func (dev *Dev) measure(cmd Command) (uint16, Status, error) {
	if dev.halted {
		return 0, 0, ErrHalted
	}
	dev.err = nil
	st := dev.sendCommand(cmd)
	if dev.err != nil {
		return 0, st, dev.err
	}
	if !dev.waitForMeasurement() {
		if dev.err != nil {
			return 0, st, dev.err
		}
		return 0, st, &MeasurementTimeoutError{Command: cmd}
	}
	raw := dev.readRaw16()
	if dev.err != nil {
		return 0, st, dev.err
	}
	return raw, st, nil
}

var sleep = time.Sleep
