// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// sht15 polls an SHT1x sensor wired to two GPIO lines and serves the last
// reading as an HTML table on / and as plain text on /status.txt.
//
// Configuration comes from the environment:
//
//	APP_ENV          dev (colored logs) or prod (JSON logs)
//	LOG_LEVEL        debug, info, warn or error
//	SHT15_DATA_PIN   GPIO number of DATA, default 24
//	SHT15_CLOCK_PIN  GPIO number of SCK, default 23
//	SHT15_INTERVAL   polling interval, default 5s
//	HTTP_ADDR        listen address, default :8080
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GermanBionicSystems/sht15/sht1x"
	"periph.io/x/host/v3"
)

func mainImpl() error {
	cfg, err := loadFromEnv(os.Getenv)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("host init: %w", err)
	}
	dev, err := sht1x.Open(cfg.DataPin, cfg.ClockPin, &sht1x.Opts{
		Logger:             logger,
		MeasurementTimeout: sht1x.DefaultOpts.MeasurementTimeout,
		PollInterval:       sht1x.DefaultOpts.PollInterval,
	})
	if err != nil {
		return err
	}
	logger.Info("sensor ready", "data", cfg.DataPin, "clock", cfg.ClockPin, "interval", cfg.Interval)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l := &latest{}
	polled := make(chan struct{})
	go func() {
		defer close(polled)
		cycle(dev, l, logger)
		poll(ctx, dev, l, cfg.Interval, logger)
	}()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newMux(l, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}
	srvErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
		close(srvErr)
	}()

	select {
	case <-ctx.Done():
	case err = <-srvErr:
		stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		logger.Warn("http shutdown", "err", serr)
	}
	// The pins are released only once no transaction is in flight.
	<-polled
	if herr := dev.Halt(); herr != nil {
		logger.Warn("halt", "err", herr)
	}
	return err
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "sht15: %s.\n", err)
		os.Exit(1)
	}
}
