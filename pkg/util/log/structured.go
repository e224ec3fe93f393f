// Copyright 2015 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package log

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/redact"
)

// FormatWithContextTags formats the string and prepends the context
// tags.
//
// Redaction markers are *not* inserted. The resulting
// string is generally unsafe for reporting.
func FormatWithContextTags(ctx context.Context, format string, args ...interface{}) string {
	var buf strings.Builder
	formatTags(ctx, true /* brackets */, &buf)
	renderArgs(false /* redactable */, &buf, format, args...)
	return buf.String()
}

// formatTags appends the context tags to buf. Returns true if any tag was
// written.
func formatTags(ctx context.Context, brackets bool, buf interface{ WriteString(string) (int, error) }) bool {
	tags := logtags.FromContext(ctx)
	if tags == nil || len(tags.Get()) == 0 {
		return false
	}
	if brackets {
		_, _ = buf.WriteString("[")
	}
	for i, t := range tags.Get() {
		if i > 0 {
			_, _ = buf.WriteString(",")
		}
		_, _ = buf.WriteString(t.Key())
		if v := t.Value(); v != nil {
			if len(t.Key()) > 1 {
				_, _ = buf.WriteString("=")
			}
			_, _ = buf.WriteString(fmt.Sprint(v))
		}
	}
	if brackets {
		_, _ = buf.WriteString("] ")
	}
	return true
}

// renderArgs renders the message through redact so that safe values are kept
// as-is and everything else is enclosed in redaction markers.
func renderArgs(
	redactable bool, buf interface{ WriteString(string) (int, error) }, format string, args ...interface{},
) {
	var msg redact.RedactableString
	if len(format) == 0 {
		msg = redact.Sprint(args...)
	} else {
		msg = redact.Sprintf(format, args...)
	}
	if redactable {
		_, _ = buf.WriteString(string(msg))
	} else {
		_, _ = buf.WriteString(msg.StripMarkers())
	}
}

// addStructured creates a structured log entry and writes it to the
// configured output.
func addStructured(
	ctx context.Context, sev Severity, depth int, format string, args []interface{},
) {
	if ctx == nil {
		panic("nil context")
	}
	logging.mu.Lock()
	defer logging.mu.Unlock()
	if sev < logging.mu.minSeverity {
		return
	}

	_, file, line, ok := runtime.Caller(depth + 1)
	if !ok {
		file, line = "???", 1
	}

	var buf bytes.Buffer
	cp := colorProfileFor(logging.mu.out)
	formatHeader(&buf, cp, sev, timeNow(), filepath.Base(file), line)
	formatTags(ctx, true /* brackets */, &buf)
	renderArgs(logging.mu.redactable, &buf, format, args...)
	if buf.Len() == 0 || buf.Bytes()[buf.Len()-1] != '\n' {
		buf.WriteByte('\n')
	}
	_, _ = logging.mu.out.Write(buf.Bytes())
}

// timeNow is overridden in tests.
var timeNow = time.Now

// formatHeader writes the crdb-v1 style header:
//
//	Lyymmdd hh:mm:ss.uuuuuu file:line
func formatHeader(
	buf *bytes.Buffer, cp *colorProfile, sev Severity, now time.Time, file string, line int,
) {
	if cp != nil {
		switch sev {
		case SeverityInfo:
			buf.Write(cp.infoPrefix)
		case SeverityWarning:
			buf.Write(cp.warnPrefix)
		default:
			buf.Write(cp.errorPrefix)
		}
	}
	buf.WriteByte(sev.char())
	if cp != nil {
		buf.Write(colorReset)
		buf.Write(cp.timePrefix)
	}
	buf.WriteString(now.Format("060102 15:04:05.000000"))
	if cp != nil {
		buf.Write(colorReset)
	}
	fmt.Fprintf(buf, " %s:%d  ", file, line)
}
