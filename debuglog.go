package classicbloom

import (
	"log/slog"
	"sync"
	"time"
)

// DebugLog is an injectable throttled diagnostics sink. The pipeline emits at
// most one record per MinInterval, so per-frame invocation cannot flood the
// log. A nil *DebugLog discards everything.
type DebugLog struct {
	// Logger receives the records. Defaults to slog.Default.
	Logger *slog.Logger
	// MinInterval is the minimum wall-clock gap between records.
	// Zero logs every call.
	MinInterval time.Duration

	mu   sync.Mutex
	last time.Time
}

// Logf emits one throttled record when p enables debug logging.
func (l *DebugLog) Logf(p Parameters, msg string, args ...any) {
	if l == nil || !p.DebugLogging {
		return
	}

	l.mu.Lock()
	now := time.Now()
	if !l.last.IsZero() && now.Sub(l.last) < l.MinInterval {
		l.mu.Unlock()
		return
	}
	l.last = now
	l.mu.Unlock()

	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug(msg, args...)
}
