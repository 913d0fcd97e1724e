// Package logging provides a process-wide structured logger for heapcore.
//
// It wraps github.com/sirupsen/logrus behind a single global instance,
// initialized lazily the first time it's needed, and exposes context
// helpers (WithTx, WithPage, WithTable) that pre-populate structured
// fields so call sites don't repeat them — the same shape the teacher's
// slog-based pkg/logging uses, backed by logrus instead.
package logging

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	logger   *logrus.Logger
	initOnce sync.Once
)

// Init configures the global logger's level. Safe to call once at
// process startup; if never called, GetLogger lazily creates a default
// Info-level logger to stderr.
func Init(level logrus.Level) {
	initOnce.Do(func() {
		logger = newLogger(level)
	})
}

func newLogger(level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

// GetLogger returns the process-wide logger, initializing it with
// sensible defaults if Init was never called.
func GetLogger() *logrus.Logger {
	initOnce.Do(func() {
		logger = newLogger(logrus.InfoLevel)
	})
	return logger
}

// WithTx returns a logger entry tagged with the transaction's identity.
func WithTx(tx fmt.Stringer) *logrus.Entry {
	return GetLogger().WithField("tx", tx.String())
}

// WithPage returns a logger entry tagged with a page identity.
func WithPage(pid fmt.Stringer) *logrus.Entry {
	return GetLogger().WithField("page", pid.String())
}

// WithTable returns a logger entry tagged with a table identity.
func WithTable(table fmt.Stringer) *logrus.Entry {
	return GetLogger().WithField("table", table.String())
}
