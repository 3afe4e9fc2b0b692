package recoder

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var logger atomic.Pointer[zap.Logger]

// Logger returns the recoder package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	logger.CompareAndSwap(nil, zap.NewNop())
	return logger.Load()
}

// SetLogger configures the recoder package's logger. Safe to call at any
// time, including concurrently with readers that are logging.
func SetLogger(l *zap.Logger) {
	logger.Store(l)
}
