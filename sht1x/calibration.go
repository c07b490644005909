// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sht1x

import "math"

// Conversion coefficients from the datasheet, 14 bit temperature @ 5V and
// 12 bit humidity.
const (
	d1  = -40.0
	d2C = 0.01
	d2F = 0.018

	c1 = -4.0
	c2 = 0.0405
	c3 = -0.0000028

	t1 = 0.01
	t2 = 0.00008
)

// TemperatureC converts a raw temperature reading to degrees Celsius.
func TemperatureC(raw uint16) float64 {
	return float64(raw)*d2C + d1
}

// TemperatureF converts a raw temperature reading to degrees Fahrenheit.
func TemperatureF(raw uint16) float64 {
	return float64(raw)*d2F + d1
}

// Humidity converts a raw humidity reading to relative humidity in percent,
// compensated for the temperature tempC measured in the same cycle.
//
// The result is not clamped and can go slightly above 100 in condensing
// conditions.
func Humidity(raw uint16, tempC float64) float64 {
	r := float64(raw)
	linear := c1 + c2*r + c3*r*r
	return linear + (tempC-25.0)*(t1+t2*r)
}

// DewPoint returns the dew point in degrees Celsius for the given temperature
// and relative humidity.
//
// The saturation vapor pressure is computed with the Goff-Gratch formulation
// and the dew point derived from it with the Magnus form. tempC must be above
// absolute zero and rh above 0, otherwise the result is NaN or infinite.
func DewPoint(tempC, rh float64) float64 {
	ratio := 373.15 / (273.15 + tempC)
	rhs := -7.90298 * (ratio - 1)
	rhs += 5.02808 * math.Log10(ratio)
	rhs += -1.3816e-7 * (math.Pow(10, 11.344*(1-1/ratio)) - 1)
	rhs += 8.1328e-3 * (math.Pow(10, -3.49149*(ratio-1)) - 1)
	rhs += math.Log10(1013.246)

	// -3 scales hPa times %RH to the kPa vapor pressure.
	vp := math.Pow(10, rhs-3) * rh
	t := math.Log(vp / 0.61078)
	return (241.88 * t) / (17.558 - t)
}
