// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sht15 holds the SHT1x humidity and temperature sensor driver in
// package sht1x and the cmd/sht15 polling daemon built on it.
package sht15
