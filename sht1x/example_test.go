// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sht1x_test

import (
	"log"
	"time"

	"github.com/GermanBionicSystems/sht15/sht1x"
	"periph.io/x/host/v3"
)

// Example reads an SHT15 wired to GPIO24 (DATA) and GPIO23 (SCK).
func Example() {
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	dev, err := sht1x.Open(24, 23, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer dev.Halt()

	for i := 0; i < 5; i++ {
		s, err := dev.Read()
		if err != nil {
			log.Println(err)
		} else {
			log.Printf("Temperature: %.2f°C %.2f°F  Humidity: %.2f%%  Dew point: %.2f°C  (%s)\n",
				s.TemperatureC, s.TemperatureF, s.Humidity, s.DewPointC, s.Status)
		}
		time.Sleep(5 * time.Second)
	}
}
