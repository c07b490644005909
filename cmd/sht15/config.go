// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

type config struct {
	AppEnv   string
	LogLevel slog.Level
	DataPin  int
	ClockPin int
	Interval time.Duration
	HTTPAddr string
}

// loadFromEnv reads the configuration from the environment. getenv is
// os.Getenv outside of tests.
func loadFromEnv(getenv func(string) string) (config, error) {
	cfg := config{
		AppEnv:   "dev",
		LogLevel: slog.LevelInfo,
		DataPin:  24,
		ClockPin: 23,
		Interval: 5 * time.Second,
		HTTPAddr: ":8080",
	}
	get := func(k string) string { return strings.TrimSpace(getenv(k)) }

	if v := get("APP_ENV"); v != "" {
		switch v {
		case "dev", "prod":
			cfg.AppEnv = v
		default:
			return config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", v)
		}
	}
	if v := get("LOG_LEVEL"); v != "" {
		level, err := parseLogLevel(v)
		if err != nil {
			return config{}, err
		}
		cfg.LogLevel = level
	}
	var err error
	if cfg.DataPin, err = parsePin("SHT15_DATA_PIN", get("SHT15_DATA_PIN"), cfg.DataPin); err != nil {
		return config{}, err
	}
	if cfg.ClockPin, err = parsePin("SHT15_CLOCK_PIN", get("SHT15_CLOCK_PIN"), cfg.ClockPin); err != nil {
		return config{}, err
	}
	if cfg.DataPin == cfg.ClockPin {
		return config{}, fmt.Errorf("SHT15_DATA_PIN and SHT15_CLOCK_PIN are both %d", cfg.DataPin)
	}
	if v := get("SHT15_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return config{}, fmt.Errorf("invalid SHT15_INTERVAL %q: %w", v, err)
		}
		if d < time.Second {
			return config{}, fmt.Errorf("invalid SHT15_INTERVAL %q: must be at least 1s", v)
		}
		cfg.Interval = d
	}
	if v := get("HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	return cfg, nil
}

func parsePin(name, v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q: expected a GPIO number", name, v)
	}
	return n, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
