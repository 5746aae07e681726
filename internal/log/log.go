// Package log wires up op/go-logging for gatebuilder's CLI output,
// adapted from kryptco-kr's logging.go: no syslog backend (this is a
// one-shot build tool, not a daemon), but the same stderr backend,
// per-invocation level override, and colorized format string.
package log

import (
	"os"

	"github.com/op/go-logging"
)

var stderrFormat = logging.MustStringFormatter(
	`%{color}%{time:15:04:05.000} %{level:.4s} ▶%{color:reset} %{message}`,
)

// Setup builds a *logging.Logger named module, writing to stderr at
// defaultLevel unless overridden by the GATEBUILDER_LOG_LEVEL environment
// variable.
func Setup(module string, defaultLevel logging.Level) *logging.Logger {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	formatted := logging.NewBackendFormatter(backend, stderrFormat)
	leveled := logging.AddModuleLevel(formatted)

	level := defaultLevel
	switch os.Getenv("GATEBUILDER_LOG_LEVEL") {
	case "CRITICAL":
		level = logging.CRITICAL
	case "ERROR":
		level = logging.ERROR
	case "WARNING":
		level = logging.WARNING
	case "NOTICE":
		level = logging.NOTICE
	case "INFO":
		level = logging.INFO
	case "DEBUG":
		level = logging.DEBUG
	}
	leveled.SetLevel(level, module)

	logging.SetBackend(leveled)
	return logging.MustGetLogger(module)
}
