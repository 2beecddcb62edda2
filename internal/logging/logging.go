// Package logging holds the module-wide zap logger.
//
// The logger is a no-op until a host installs one with Set. Packages log at
// debug level on traversal boundaries only, never per byte.
package logging

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var logger atomic.Pointer[zap.Logger]

// Logger returns the installed logger, or a no-op logger.
func Logger() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	nop := zap.NewNop()
	if logger.CompareAndSwap(nil, nop) {
		return nop
	}
	return logger.Load()
}

// Set installs l as the module logger. A nil logger restores the no-op logger.
func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l)
}

// Named returns a child of the module logger scoped to a component.
func Named(component string) *zap.Logger {
	return Logger().Named(component)
}
