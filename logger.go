package kspp

import "go.uber.org/zap"

// Logger is the package-wide, swappable logger every engine component
// writes through. It defaults to a no-op logger, in the same spirit as
// sarama's own package-level Logger variable — SetLogger installs a real
// sink (typically the application's own *zap.Logger) before any topology
// is started.
var Logger = zap.NewNop()

// SetLogger replaces the package-wide logger. Passing nil restores the
// no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	Logger = l
}
