package events

import "github.com/sirupsen/logrus"

// LogrusSink turns Events into structured logrus lines. It is the default
// Sink used by the CLI glue (package cmd) when the dashboard itself isn't
// wired up — e.g. under --verbose, or in any environment where the fuller
// terminal UI (an external collaborator, out of scope for this package) is
// unavailable.
type LogrusSink struct {
	Logger *logrus.Logger
}

// NewLogrusSink builds a LogrusSink around logger. A nil logger falls back
// to logrus.StandardLogger().
func NewLogrusSink(logger *logrus.Logger) LogrusSink {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return LogrusSink{Logger: logger}
}

// Emit implements Sink.
func (s LogrusSink) Emit(e Event) {
	switch e.Kind {
	case Progress:
		s.Logger.WithFields(logrus.Fields{
			"component": "engine",
			"block":     e.BlockIdx,
			"units":     e.Units,
		}).Debug("progress")
	case WIP:
		s.Logger.WithFields(logrus.Fields{
			"component": "engine",
			"block":     e.BlockIdx,
			"wip_hex":   e.WIPHex,
			"wip_ascii": e.WIPASCII,
		}).Trace("wip")
	case BlockSolved:
		s.Logger.WithFields(logrus.Fields{
			"component": "engine",
			"block":     e.BlockIdx,
		}).Info("block solved")
	case Log:
		entry := s.Logger.WithField("component", "engine")
		switch e.Level {
		case LevelDebug:
			entry.Debug(e.Message)
		case LevelWarn:
			entry.Warn(e.Message)
		case LevelError:
			entry.Error(e.Message)
		default:
			entry.Info(e.Message)
		}
	}
}
