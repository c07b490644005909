// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sht1x drives the Sensirion SHT10, SHT11 and SHT15
// temperature/humidity sensors over two general purpose GPIO lines.
//
// The sensor speaks a two-wire protocol that looks like I²C but is not
// compatible with it, so the driver bit-bangs the DATA and SCK lines itself:
// transmission start, command shift-out, acknowledgements, the wait for
// the end of the conversion and the 16 bit shift-in of the result. The CRC
// byte sent by the sensor is skipped.
//
// DATA needs a pull-up resistor (10kΩ in the datasheet's reference circuit).
//
// # Datasheet
//
// https://sensirion.com/media/documents/BD45ECB5/61642783/Sensirion_Humidity_Sensors_SHT1x_Datasheet.pdf
//
// # Accuracy
//
// SHT10: ±4.5 % RH, ±0.5 °C
//
// SHT11: ±3.0 % RH, ±0.4 °C
//
// SHT15: ±2.0 % RH, ±0.3 °C
//
// Conversions run at the default resolution of 14 bit for temperature and
// 12 bit for humidity and take up to 320ms and 80ms respectively.
package sht1x
