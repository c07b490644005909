// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sht1x

import (
	"errors"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// wire is the far end of a pair of fakePin.
type wire interface {
	dataChanged(prev, next gpio.Level)
	clockChanged(next gpio.Level)
	// sample returns the level driven on DATA by the far end.
	sample() gpio.Level
}

// fakePin records the direction and level set by the driver and forwards
// every change to a wire. The rest of gpio.PinIO comes from gpiotest.Pin.
type fakePin struct {
	*gpiotest.Pin
	w      wire
	isData bool
	output bool
	level  gpio.Level
	outErr error
}

func (p *fakePin) In(pull gpio.Pull, edge gpio.Edge) error {
	p.output = false
	return nil
}

func (p *fakePin) Out(l gpio.Level) error {
	if p.outErr != nil {
		return p.outErr
	}
	prev := p.level
	p.output = true
	p.level = l
	if p.isData {
		p.w.dataChanged(prev, l)
	} else if prev != l {
		p.w.clockChanged(l)
	}
	return nil
}

func (p *fakePin) Read() gpio.Level {
	if !p.output && p.isData {
		return p.w.sample()
	}
	return p.level
}

func newPins(w wire) (*fakePin, *fakePin) {
	data := &fakePin{Pin: &gpiotest.Pin{N: "DATA", Num: 24}, w: w, isData: true}
	clock := &fakePin{Pin: &gpiotest.Pin{N: "SCK", Num: 23}, w: w}
	return data, clock
}

type sensorState int

const (
	idle sensorState = iota
	startLow
	receiving
	ackPending
	acking
	released
	measuring
	transmitting
)

// fakeSensor models the sensor side of the protocol closely enough to
// exercise the driver: start detection, command decoding, both acknowledge
// levels, the conversion delay on DATA and the 16 bit answer.
type fakeSensor struct {
	mu    sync.Mutex
	data  *fakePin
	clock *fakePin

	// readings are the raw values returned per command.
	readings map[Command]uint16
	// busyPolls is the number of DATA reads answered High while converting.
	// Negative never completes.
	busyPolls int
	// noAck leaves DATA high after the command byte.
	noAck bool
	// holdAck keeps DATA low after the acknowledge clock.
	holdAck bool

	state    sensorState
	bits     int
	cmd      byte
	pending  int
	out      uint16
	acked    bool
	line     gpio.Level
	commands []Command
	crcSkips int
	errs     []error
}

func newFakeSensor(readings map[Command]uint16) *fakeSensor {
	s := &fakeSensor{readings: readings, line: gpio.High}
	s.data, s.clock = newPins(s)
	return s
}

func (s *fakeSensor) dev(opts *Opts) (*Dev, error) {
	return New(s.data, s.clock, opts)
}

// driven is the level driven on DATA by the driver, High when released.
func (s *fakeSensor) driven() gpio.Level {
	if s.data.output {
		return s.data.level
	}
	return gpio.High
}

func (s *fakeSensor) dataChanged(prev, next gpio.Level) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clock.level != gpio.High || prev == next {
		return
	}
	switch {
	case s.state == idle && next == gpio.Low:
		s.state = startLow
	case s.state == startLow && next == gpio.High:
		s.state = receiving
		s.bits, s.cmd = 0, 0
	}
}

func (s *fakeSensor) clockChanged(next gpio.Level) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rising := next == gpio.High
	switch s.state {
	case receiving:
		if !rising {
			return
		}
		s.cmd <<= 1
		if s.driven() == gpio.High {
			s.cmd |= 1
		}
		s.bits++
		if s.bits == 8 {
			s.state = ackPending
		}
	case ackPending:
		if rising {
			return
		}
		if !s.noAck {
			s.line = gpio.Low
		}
		s.state = acking
	case acking:
		if rising {
			return
		}
		if !s.holdAck {
			s.line = gpio.High
		}
		c := Command(s.cmd)
		s.commands = append(s.commands, c)
		v, ok := s.readings[c]
		if !ok {
			s.errs = append(s.errs, errors.New("unexpected command "+c.String()))
		}
		s.out = v
		s.bits = 0
		s.acked = false
		s.state = released
	case transmitting:
		if !rising {
			return
		}
		switch {
		case s.bits == 8 && !s.acked:
			if s.driven() != gpio.Low {
				s.errs = append(s.errs, errors.New("first byte not acknowledged"))
			}
			s.acked = true
			s.line = gpio.High
		case s.bits == 16:
			if s.driven() == gpio.High {
				s.crcSkips++
			} else {
				s.errs = append(s.errs, errors.New("CRC requested"))
			}
			s.line = gpio.High
			s.state = idle
		default:
			s.line = gpio.Level(s.out&(1<<uint(15-s.bits)) != 0)
			s.bits++
		}
	}
}

func (s *fakeSensor) sample() gpio.Level {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case released:
		// The driver checks DATA once right after the acknowledge clock.
		v := s.line
		s.line = gpio.High
		s.pending = s.busyPolls
		s.state = measuring
		return v
	case measuring:
		switch {
		case s.pending == 0:
			s.line = gpio.Low
			s.state = transmitting
		case s.pending > 0:
			s.pending--
		}
	}
	return s.line
}

// loopback replays, on the SCK rising edges seen while DATA is an input, the
// bits it latched on the rising edges seen while DATA was an output.
type loopback struct {
	data    *fakePin
	clock   *fakePin
	latched []gpio.Level
	present gpio.Level
}

func newLoopback() *loopback {
	l := &loopback{present: gpio.High}
	l.data, l.clock = newPins(l)
	return l
}

func (l *loopback) dataChanged(prev, next gpio.Level) {}

func (l *loopback) clockChanged(next gpio.Level) {
	if next != gpio.High {
		return
	}
	if l.data.output {
		l.latched = append(l.latched, l.data.level)
		return
	}
	if len(l.latched) == 0 {
		l.present = gpio.High
		return
	}
	l.present = l.latched[0]
	l.latched = l.latched[1:]
}

func (l *loopback) sample() gpio.Level {
	return l.present
}
