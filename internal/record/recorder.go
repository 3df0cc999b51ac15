// SPDX-License-Identifier: MIT

// Package record persists the findings of a fuzzing run.
//
// The CSV failure log is the durable record of record: a failed row write
// is irrecoverable and must abort the run. Response body captures are a
// best-effort side channel running on tracked goroutines; their failures
// are logged and counted, never fatal, and Close joins them so no capture
// is silently lost on shutdown.
package record

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"

	xglog "github.com/ManuGH/shakedown/internal/log"
	"github.com/ManuGH/shakedown/internal/metrics"
	"github.com/ManuGH/shakedown/internal/outcome"
)

// FailureLogName is the file name of the tabular failure log.
const FailureLogName = "failures.csv"

var csvHeader = []string{"method", "uri", "reason"}

// Recorder consumes classified outcomes and persists the bad ones.
// Record is safe for concurrent use; rows are serialized on an internal
// mutex and appear in completion order.
type Recorder struct {
	dir    string
	logger zerolog.Logger

	mu  sync.Mutex
	f   *os.File
	csv *csv.Writer

	captures        sync.WaitGroup
	captureFailures atomic.Int64
	rows            atomic.Int64
}

// New creates the output directory and the failure log with its header.
func New(outdir string) (*Recorder, error) {
	if err := os.MkdirAll(outdir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	f, err := os.Create(filepath.Join(outdir, FailureLogName))
	if err != nil {
		return nil, fmt.Errorf("create failure log: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write failure log header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write failure log header: %w", err)
	}

	return &Recorder{
		dir:    outdir,
		logger: xglog.WithComponent("record"),
		f:      f,
		csv:    w,
	}, nil
}

// Path returns the failure log location.
func (r *Recorder) Path() string {
	return filepath.Join(r.dir, FailureLogName)
}

// Record consumes one outcome. Good outcomes are logged at debug level
// and discarded. Bad outcomes append a row to the failure log; server
// errors additionally capture the response body asynchronously. The
// returned error is non-nil only for row-write failures, which the
// caller must treat as irrecoverable.
func (r *Recorder) Record(o outcome.Outcome) error {
	switch o.Kind {
	case outcome.Good:
		r.logger.Debug().
			Str(xglog.FieldMethod, o.Method.String()).
			Str(xglog.FieldURI, o.URI).
			Int(xglog.FieldStatus, o.Status).
			Msg("good outcome")
		return nil
	case outcome.BadServerError:
		r.captures.Add(1)
		go r.captureBody(o)
	case outcome.BadTransport:
		// row only
	}

	if err := r.writeRow(o.Method.String(), o.URI, o.Reason()); err != nil {
		return fmt.Errorf("write failure row: %w", err)
	}
	r.rows.Add(1)
	metrics.IncFailureRecorded(o.Kind.String())
	return nil
}

// Failures reports how many failure rows have been recorded so far.
func (r *Recorder) Failures() int64 {
	return r.rows.Load()
}

func (r *Recorder) writeRow(method, uri, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.csv.Write([]string{method, uri, reason}); err != nil {
		return err
	}
	// Flush per row: the log must survive an abrupt end of the run.
	r.csv.Flush()
	return r.csv.Error()
}

// captureBody persists a raw response body under <outdir>/<METHOD>/...
// atomically. Best effort: failures are observable but never fatal.
func (r *Recorder) captureBody(o outcome.Outcome) {
	defer r.captures.Done()

	err := func() error {
		path, err := bodyPath(r.dir, o.Method, o.URI)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create capture directory: %w", err)
		}
		if err := renameio.WriteFile(path, o.Body, 0o644); err != nil {
			return fmt.Errorf("write capture file: %w", err)
		}
		r.logger.Debug().
			Str(xglog.FieldMethod, o.Method.String()).
			Str(xglog.FieldURI, o.URI).
			Str(xglog.FieldPath, path).
			Msg("response body captured")
		return nil
	}()
	if err != nil {
		r.captureFailures.Add(1)
		metrics.IncBodyCaptureFailure()
		r.logger.Error().
			Err(err).
			Str(xglog.FieldEvent, "record.body_capture_failed").
			Str(xglog.FieldMethod, o.Method.String()).
			Str(xglog.FieldURI, o.URI).
			Msg("failed to capture response body")
	}
}

// CaptureFailures reports how many body captures failed so far.
func (r *Recorder) CaptureFailures() int64 {
	return r.captureFailures.Load()
}

// Close joins outstanding body captures and closes the failure log.
func (r *Recorder) Close() error {
	r.captures.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.csv.Flush()
	flushErr := r.csv.Error()
	closeErr := r.f.Close()
	if flushErr != nil {
		return fmt.Errorf("flush failure log: %w", flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close failure log: %w", closeErr)
	}
	return nil
}
