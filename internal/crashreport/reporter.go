// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package crashreport sends opt-in crash reports for the playground CLI and
// daemon.
//
// Reports go to Sentry when a DSN is configured, and are POSTed as JSON to a
// custom endpoint when one is configured. Nothing is sent unless crash
// reporting is enabled and at least one sink is set. Reports carry the
// error message, stack, platform and build version only; contract
// addresses and WASM never leave the machine.
package crashreport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/JoseCToscano/policies-playground-sub000/internal/errors"
	"github.com/JoseCToscano/policies-playground-sub000/internal/logger"
	"github.com/getsentry/sentry-go"
)

const sendTimeout = 5 * time.Second

// Report is the JSON payload delivered to the custom endpoint.
type Report struct {
	Version      string `json:"version"`
	CommitSHA    string `json:"commit_sha,omitempty"`
	OS           string `json:"os"`
	Arch         string `json:"arch"`
	GoVersion    string `json:"go_version"`
	CrashTime    string `json:"crash_time"`
	ErrorMessage string `json:"error_message"`
	StackTrace   string `json:"stack_trace,omitempty"`
	// Command is the cobra command path, e.g. "playground inspect".
	Command string `json:"command,omitempty"`
}

// Config controls reporter behaviour. It is usually filled from the
// crash_* settings of config.Config.
type Config struct {
	Enabled   bool
	SentryDSN string
	Endpoint  string
	Version   string
	CommitSHA string
}

// Reporter dispatches crash reports to every configured sink.
type Reporter struct {
	cfg          Config
	client       *http.Client
	sentryActive bool
}

// New creates a Reporter, initialising Sentry when enabled with a DSN.
func New(cfg Config) *Reporter {
	r := &Reporter{
		cfg:    cfg,
		client: &http.Client{Timeout: sendTimeout},
	}

	if cfg.Enabled && cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:     cfg.SentryDSN,
			Release: "playground@" + cfg.Version,
		})
		if err != nil {
			logger.Logger.Warn("Sentry disabled", "error", err)
		} else {
			r.sentryActive = true
		}
	}
	return r
}

// IsEnabled reports whether any report would be sent.
func (r *Reporter) IsEnabled() bool {
	return r.cfg.Enabled && (r.sentryActive || r.cfg.Endpoint != "")
}

// Send builds a report from err and stack and delivers it to each sink.
// Sink errors are joined; on a crash path they are informational only.
func (r *Reporter) Send(ctx context.Context, err error, stack []byte, command string) error {
	if !r.IsEnabled() {
		return nil
	}

	report := r.buildReport(err, stack, command)

	var errs []error
	if r.sentryActive {
		if sendErr := r.sendToSentry(report); sendErr != nil {
			errs = append(errs, sendErr)
		}
	}
	if r.cfg.Endpoint != "" {
		if sendErr := r.sendToEndpoint(ctx, report); sendErr != nil {
			errs = append(errs, sendErr)
		}
	}

	if joined := errors.Join(errs...); joined != nil {
		return fmt.Errorf("crashreport: %w", joined)
	}
	return nil
}

func (r *Reporter) sendToSentry(report Report) error {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("os", report.OS)
		scope.SetTag("arch", report.Arch)
		scope.SetTag("go_version", report.GoVersion)
		scope.SetTag("command", report.Command)
		scope.SetExtra("stack_trace", report.StackTrace)
		scope.SetExtra("commit_sha", report.CommitSHA)

		sentry.CaptureMessage(report.ErrorMessage)
	})
	if !sentry.Flush(sendTimeout) {
		return fmt.Errorf("sentry flush timed out")
	}
	return nil
}

func (r *Reporter) sendToEndpoint(ctx context.Context, report Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return errors.WrapMarshalFailed(err)
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "playground/"+r.cfg.Version)

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}
	return nil
}

func (r *Reporter) buildReport(err error, stack []byte, command string) Report {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}

	return Report{
		Version:      r.cfg.Version,
		CommitSHA:    r.cfg.CommitSHA,
		OS:           runtime.GOOS,
		Arch:         runtime.GOARCH,
		GoVersion:    runtime.Version(),
		CrashTime:    time.Now().UTC().Format(time.RFC3339),
		ErrorMessage: errMsg,
		StackTrace:   string(stack),
		Command:      command,
	}
}

// HandlePanic is deferred at the top of main. It reports an in-flight panic
// and then re-panics so the process still exits non-zero.
func (r *Reporter) HandlePanic(ctx context.Context, command string) {
	v := recover()
	if v == nil {
		return
	}

	panicErr, ok := v.(error)
	if !ok {
		panicErr = fmt.Errorf("%v", v)
	}
	_ = r.Send(ctx, panicErr, debug.Stack(), command)

	panic(v)
}
