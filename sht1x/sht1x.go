// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sht1x

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
)

// Opts holds the configuration options.
type Opts struct {
	// Logger receives protocol warnings. Defaults to slog.Default().
	Logger *slog.Logger
	// MeasurementTimeout bounds the wait for the end of a conversion.
	MeasurementTimeout time.Duration
	// PollInterval is the sleep between two reads of DATA while waiting for
	// the end of a conversion.
	PollInterval time.Duration
}

// DefaultOpts is the recommended default options. 400ms leaves some margin
// over the 320ms worst case of a 14 bit temperature conversion.
var DefaultOpts = Opts{
	MeasurementTimeout: 400 * time.Millisecond,
	PollInterval:       time.Millisecond,
}

// minSampleInterval keeps self-heating below 0.1°C, see section 3.3 of the
// datasheet.
const minSampleInterval = time.Second

// Sample is the result of one complete read of the sensor.
type Sample struct {
	TemperatureC float64
	TemperatureF float64
	// Humidity is the relative humidity in percent.
	Humidity  float64
	DewPointC float64
	// Status collects the acknowledge anomalies of both transactions.
	Status Status
}

// Dev is a handle to an SHT1x sensor.
//
// The lines are owned by Dev. Transactions are serialized internally but
// nothing else may drive the pins while the Dev is in use.
type Dev struct {
	opts Opts

	mu     sync.Mutex
	data   line
	clock  line
	err    error
	halted bool
	stop   chan struct{}
	done   chan struct{}
}

// New returns a Dev driving the sensor through the data and clock pins. A nil
// opts uses DefaultOpts.
//
// DATA is released (input with pull-up) and SCK driven low.
func New(data, clock gpio.PinIO, opts *Opts) (*Dev, error) {
	if data == nil || clock == nil {
		return nil, fmt.Errorf("%w: nil pin", ErrPinUnavailable)
	}
	if data == clock {
		return nil, fmt.Errorf("%w: DATA and SCK are both %s", ErrPinUnavailable, data)
	}
	o := DefaultOpts
	if opts != nil {
		o = *opts
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.MeasurementTimeout <= 0 {
		o.MeasurementTimeout = DefaultOpts.MeasurementTimeout
	}
	if o.PollInterval < 0 {
		o.PollInterval = 0
	}
	dev := &Dev{
		opts:  o,
		data:  line{p: data, name: "DATA", level: gpio.High},
		clock: line{p: clock, name: "SCK", level: gpio.Low},
	}
	dev.setMode(&dev.data, Input)
	dev.setMode(&dev.clock, Output)
	if dev.err != nil {
		return nil, dev.err
	}
	return dev, nil
}

// Open looks up the GPIO pins by number in gpioreg and returns a Dev using
// them. host.Init() must have been called.
//
// The number is first resolved as a name, which works on hosts that register
// numeric aliases (bcm283x, allwinner), then matched against Number() of
// every registered pin.
//
// The returned error wraps ErrPinUnavailable when a number is unknown or
// used for both lines.
func Open(dataPin, clockPin int, opts *Opts) (*Dev, error) {
	if dataPin == clockPin {
		return nil, &PinError{Pin: clockPin, Reason: "already claimed for DATA"}
	}
	data := byNumber(dataPin)
	if data == nil {
		return nil, &PinError{Pin: dataPin, Reason: "not found"}
	}
	clock := byNumber(clockPin)
	if clock == nil {
		return nil, &PinError{Pin: clockPin, Reason: "not found"}
	}
	return New(data, clock, opts)
}

func byNumber(n int) gpio.PinIO {
	if p := gpioreg.ByName(strconv.Itoa(n)); p != nil {
		return p
	}
	for _, p := range gpioreg.All() {
		if p.Number() == n {
			return p
		}
	}
	return nil
}

// ReadTemperatureRaw runs a temperature conversion and returns the raw
// reading.
func (dev *Dev) ReadTemperatureRaw() (uint16, Status, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.measure(TemperatureCommand)
}

// ReadHumidity runs a humidity conversion and returns the relative humidity
// compensated with tempC. tempC should come from a temperature read made just
// before.
func (dev *Dev) ReadHumidity(tempC float64) (float64, Status, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	raw, st, err := dev.measure(HumidityCommand)
	if err != nil {
		return 0, st, err
	}
	return Humidity(raw, tempC), st, nil
}

// ReadTemperatureC returns the temperature in °C.
func (dev *Dev) ReadTemperatureC() (float64, error) {
	raw, _, err := dev.ReadTemperatureRaw()
	if err != nil {
		return 0, err
	}
	return TemperatureC(raw), nil
}

// ReadTemperatureF returns the temperature in °F.
func (dev *Dev) ReadTemperatureF() (float64, error) {
	raw, _, err := dev.ReadTemperatureRaw()
	if err != nil {
		return 0, err
	}
	return TemperatureF(raw), nil
}

// Read runs a temperature then a humidity conversion and returns the
// calibrated values. The humidity is compensated with the temperature read in
// the same call.
//
// On error the returned Sample holds the values computed so far.
func (dev *Dev) Read() (Sample, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	var s Sample
	raw, st, err := dev.measure(TemperatureCommand)
	s.Status |= st
	if err != nil {
		return s, err
	}
	s.TemperatureC = TemperatureC(raw)
	s.TemperatureF = TemperatureF(raw)

	raw, st, err = dev.measure(HumidityCommand)
	s.Status |= st
	if err != nil {
		return s, err
	}
	s.Humidity = Humidity(raw, s.TemperatureC)
	s.DewPointC = DewPoint(s.TemperatureC, s.Humidity)
	return s, nil
}

// Sense implements physic.SenseEnv. Pressure is not measured.
func (dev *Dev) Sense(e *physic.Env) error {
	e.Temperature = 0
	e.Pressure = 0
	e.Humidity = 0
	s, err := dev.Read()
	if err != nil {
		return err
	}
	e.Temperature = physic.ZeroCelsius + physic.Temperature(s.TemperatureC*float64(physic.Kelvin))
	e.Humidity = physic.RelativeHumidity(s.Humidity * float64(physic.PercentRH))
	return nil
}

// Precision implements physic.SenseEnv.
func (dev *Dev) Precision(e *physic.Env) {
	e.Temperature = physic.Kelvin / 100
	e.Humidity = physic.PercentRH / 20
	e.Pressure = 0
}

// SenseContinuous implements physic.SenseEnv. Reads that fail are logged and
// skipped. Call Halt to stop.
func (dev *Dev) SenseContinuous(interval time.Duration) (<-chan physic.Env, error) {
	if interval < minSampleInterval {
		return nil, fmt.Errorf("sht1x: interval %s is below %s", interval, minSampleInterval)
	}
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if dev.halted {
		return nil, ErrHalted
	}
	if dev.stop != nil {
		return nil, errors.New("sht1x: SenseContinuous already running")
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	dev.stop, dev.done = stop, done
	ch := make(chan physic.Env, 16)
	go func() {
		defer close(done)
		defer close(ch)
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				var e physic.Env
				if err := dev.Sense(&e); err != nil {
					dev.opts.Logger.Warn("sht1x: read failed", "err", err)
					continue
				}
				select {
				case ch <- e:
				case <-stop:
					return
				}
			}
		}
	}()
	return ch, nil
}

// Halt stops a running SenseContinuous and releases both lines by switching
// them to input. The Dev can't be used afterward.
//
// Implements conn.Resource.
func (dev *Dev) Halt() error {
	dev.mu.Lock()
	stop, done := dev.stop, dev.done
	dev.stop, dev.done = nil, nil
	dev.mu.Unlock()
	if stop != nil {
		close(stop)
		<-done
	}

	dev.mu.Lock()
	defer dev.mu.Unlock()
	if dev.halted {
		return nil
	}
	dev.halted = true
	dev.err = nil
	dev.setMode(&dev.data, Input)
	dev.setMode(&dev.clock, Input)
	return dev.err
}

func (dev *Dev) String() string {
	return "sht1x"
}

var _ conn.Resource = &Dev{}
var _ physic.SenseEnv = &Dev{}
