// Package log exposes the logger used by the wbs SDK.
//
// The SDK is silent by default ([Noop]). Use [NewLogrus] to log through
// logrus, or implement [Logger] to plug any other logger:
//
//	client, err := lib.New(ctx, lib.Config{
//	    Logger: log.NewLogrus(logrus.StandardLogger()),
//	})
//
// Every SDK component tags its log lines with a "svc" value, e.g.
// "app.TaskUpdate" or "propagation.Driver".
package log

import (
	"github.com/sirupsen/logrus"

	"github.com/slok/wbs/internal/log"
	logruslog "github.com/slok/wbs/internal/log/logrus"
)

// Logger is the SDK logger, only the format methods need meaningful
// implementations, the rest carry the structured values.
type Logger = log.Logger

// Kv are structured logging key-value pairs.
type Kv = log.Kv

// Noop discards all log output, it's the default when [lib.Config] has no logger.
var Noop Logger = log.Noop

// NewLogrus returns a Logger that writes through a logrus logger.
func NewLogrus(l *logrus.Logger) Logger {
	return logruslog.NewLogrus(logrus.NewEntry(l))
}
