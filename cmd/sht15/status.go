// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/GermanBionicSystems/sht15/sht1x"
)

// sampler is implemented by *sht1x.Dev.
type sampler interface {
	Read() (sht1x.Sample, error)
}

// latest holds the most recent sample. A failed cycle keeps the previous
// sample and records the error.
type latest struct {
	mu      sync.Mutex
	sample  sht1x.Sample
	at      time.Time
	err     error
	samples int
}

func (l *latest) set(s sht1x.Sample, at time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sample, l.at, l.err = s, at, nil
	l.samples++
}

func (l *latest) fail(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = err
}

// get returns the last sample and the time it was taken. ok is false until
// the first successful cycle.
func (l *latest) get() (s sht1x.Sample, at time.Time, ok bool, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sample, l.at, l.samples != 0, l.err
}

// cycle reads the sensor once and publishes the result.
func cycle(dev sampler, l *latest, logger *slog.Logger) {
	s, err := dev.Read()
	if err != nil {
		logger.Warn("read failed", "err", err)
		l.fail(err)
		return
	}
	if !s.Status.OK() {
		logger.Warn("protocol anomaly", "status", s.Status)
	}
	logger.Info("sample",
		"temperature_c", s.TemperatureC,
		"temperature_f", s.TemperatureF,
		"humidity", s.Humidity,
		"dew_point_c", s.DewPointC)
	l.set(s, time.Now())
}

// poll runs one cycle per tick until ctx is canceled. Cycles never overlap
// since they run on this goroutine.
func poll(ctx context.Context, dev sampler, l *latest, interval time.Duration, logger *slog.Logger) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			cycle(dev, l, logger)
		}
	}
}

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>SHT15</title></head>
<body>
{{- if .OK}}
<table>
<tr><th>Taken</th><td>{{.At}}</td></tr>
<tr><th>Temperature (°C)</th><td>{{printf "%.2f" .Sample.TemperatureC}}</td></tr>
<tr><th>Temperature (°F)</th><td>{{printf "%.2f" .Sample.TemperatureF}}</td></tr>
<tr><th>Humidity (%)</th><td>{{printf "%.2f" .Sample.Humidity}}</td></tr>
<tr><th>Dew point (°C)</th><td>{{printf "%.2f" .Sample.DewPointC}}</td></tr>
<tr><th>Status</th><td>{{.Sample.Status}}</td></tr>
</table>
{{- else}}
<p>No reading yet.</p>
{{- end}}
{{- with .Err}}
<p>Last error: {{.}}</p>
{{- end}}
</body>
</html>
`))

type view struct {
	OK     bool
	At     string
	Sample sht1x.Sample
	Err    string
}

func snapshot(l *latest) view {
	s, at, ok, err := l.get()
	v := view{OK: ok, Sample: s}
	if ok {
		v.At = at.Format(time.RFC3339)
	}
	if err != nil {
		v.Err = err.Error()
	}
	return v
}

func newMux(l *latest, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		v := snapshot(l)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		if !v.OK {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		if err := page.Execute(w, v); err != nil {
			logger.Warn("render", "err", err)
		}
	})
	mux.HandleFunc("GET /status.txt", func(w http.ResponseWriter, r *http.Request) {
		v := snapshot(l)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		if !v.OK {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintln(w, "SHT15: no reading yet")
		} else {
			fmt.Fprintf(w, "SHT15 @ %s\n", v.At)
			fmt.Fprintf(w, "Temperature: %.2f C\n", v.Sample.TemperatureC)
			fmt.Fprintf(w, "Temperature: %.2f F\n", v.Sample.TemperatureF)
			fmt.Fprintf(w, "Humidity: %.2f %%\n", v.Sample.Humidity)
			fmt.Fprintf(w, "Dew point: %.2f C\n", v.Sample.DewPointC)
			fmt.Fprintf(w, "Status: %s\n", v.Sample.Status)
		}
		if v.Err != "" {
			fmt.Fprintf(w, "Last error: %s\n", v.Err)
		}
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}
