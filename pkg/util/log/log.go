// Copyright 2015 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package log implements leveled, context-tagged logging for the planner.
//
// Messages are formatted in the crdb-v1 style:
//
//	I241017 15:04:05.123456 memo.go:42  [opt,q=7] built join rel (1,2)
//
// Context tags attached with logtags.AddTag are rendered between brackets.
// Arguments are rendered through redact; values implementing
// redact.SafeValue are never marked as sensitive.
package log

import (
	"context"
	"io"
	"os"
	"sync"
	"sync/atomic"
)

// Severity is the severity of a log entry.
type Severity int32

// Severities, in increasing order.
const (
	SeverityInfo Severity = iota + 1
	SeverityWarning
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	case SeverityFatal:
		return "FATAL"
	}
	return "UNKNOWN"
}

// char returns the one-letter prefix used in the entry header.
func (s Severity) char() byte {
	switch s {
	case SeverityInfo:
		return 'I'
	case SeverityWarning:
		return 'W'
	case SeverityError:
		return 'E'
	case SeverityFatal:
		return 'F'
	}
	return '?'
}

// OrigStderr points to the original stderr stream.
var OrigStderr = os.Stderr

type loggingT struct {
	// verbosity is the V level; VEventf with a level above it is dropped.
	verbosity int32

	mu struct {
		sync.Mutex
		out        io.Writer
		redactable bool
		// minSeverity filters out entries below it.
		minSeverity Severity
		exitOverride struct {
			f         func(int)
			hideStack bool
		}
	}
}

var logging = func() *loggingT {
	l := &loggingT{}
	l.mu.out = OrigStderr
	l.mu.minSeverity = SeverityInfo
	return l
}()

// SetOutput redirects log output to w and returns a function restoring the
// previous writer.
func SetOutput(w io.Writer) (restore func()) {
	logging.mu.Lock()
	defer logging.mu.Unlock()
	prev := logging.mu.out
	logging.mu.out = w
	return func() {
		logging.mu.Lock()
		defer logging.mu.Unlock()
		logging.mu.out = prev
	}
}

// SetVerbosity sets the global V level.
func SetVerbosity(level int32) {
	atomic.StoreInt32(&logging.verbosity, level)
}

// SetMinSeverity drops entries whose severity is below sev.
func SetMinSeverity(sev Severity) {
	logging.mu.Lock()
	defer logging.mu.Unlock()
	logging.mu.minSeverity = sev
}

// SetRedactable controls whether redaction markers are kept in the output.
func SetRedactable(redactable bool) {
	logging.mu.Lock()
	defer logging.mu.Unlock()
	logging.mu.redactable = redactable
}

// V returns true if the logging verbosity is set to the specified level or
// higher.
func V(level int32) bool {
	return atomic.LoadInt32(&logging.verbosity) >= level
}

// Infof logs to the INFO log.
func Infof(ctx context.Context, format string, args ...interface{}) {
	addStructured(ctx, SeverityInfo, 1, format, args)
}

// Warningf logs to the WARNING log.
func Warningf(ctx context.Context, format string, args ...interface{}) {
	addStructured(ctx, SeverityWarning, 1, format, args)
}

// Errorf logs to the ERROR log.
func Errorf(ctx context.Context, format string, args ...interface{}) {
	addStructured(ctx, SeverityError, 1, format, args)
}

// Fatalf logs to the FATAL log and then exits the process, unless an exit
// function was installed with SetExitFunc.
func Fatalf(ctx context.Context, format string, args ...interface{}) {
	addStructured(ctx, SeverityFatal, 1, format, args)
	exit(2)
}

// VEventf logs to the INFO log if the verbosity is at least level.
func VEventf(ctx context.Context, level int32, format string, args ...interface{}) {
	if V(level) {
		addStructured(ctx, SeverityInfo, 1, format, args)
	}
}

// InfofDepth logs to the INFO log, offsetting the caller's stack frame by
// 'depth'.
func InfofDepth(ctx context.Context, depth int, format string, args ...interface{}) {
	addStructured(ctx, SeverityInfo, depth+1, format, args)
}
