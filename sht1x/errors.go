// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sht1x

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrPinUnavailable is returned when a GPIO line can't be obtained for
	// the sensor. The Dev is unusable in that case.
	ErrPinUnavailable = errors.New("sht1x: pin unavailable")
	// ErrMeasurementTimeout is returned when the sensor didn't pull DATA low
	// before Opts.MeasurementTimeout elapsed.
	ErrMeasurementTimeout = errors.New("sht1x: measurement timeout")
	// ErrHalted is returned by reads issued after Halt.
	ErrHalted = errors.New("sht1x: device halted")
)

// PinError reports a pin identifier that could not be claimed.
type PinError struct {
	Pin    int
	Reason string
}

func (e *PinError) Error() string {
	return fmt.Sprintf("sht1x: pin %d unavailable: %s", e.Pin, e.Reason)
}

func (e *PinError) Unwrap() error {
	return ErrPinUnavailable
}

// MeasurementTimeoutError is returned when a conversion did not complete.
type MeasurementTimeoutError struct {
	Command Command
}

func (e *MeasurementTimeoutError) Error() string {
	return fmt.Sprintf("sht1x: %s measurement did not complete", e.Command)
}

func (e *MeasurementTimeoutError) Unwrap() error {
	return ErrMeasurementTimeout
}

// Status reports the protocol anomalies seen during a read. They don't fail
// the read, but the values of a cycle with a non-zero Status may be wrong.
type Status uint8

const (
	// AckCommandMismatch is set when the sensor didn't pull DATA low after
	// the command byte.
	AckCommandMismatch Status = 1 << iota
	// AckStartMismatch is set when the sensor didn't release DATA after
	// acknowledging the command.
	AckStartMismatch
)

// OK returns true when no anomaly was recorded.
func (s Status) OK() bool {
	return s == 0
}

func (s Status) String() string {
	if s == 0 {
		return "ok"
	}
	var parts []string
	if s&AckCommandMismatch != 0 {
		parts = append(parts, "command ack mismatch")
	}
	if s&AckStartMismatch != 0 {
		parts = append(parts, "start ack mismatch")
	}
	if rest := s &^ (AckCommandMismatch | AckStartMismatch); rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%02x", uint8(rest)))
	}
	return strings.Join(parts, ", ")
}
