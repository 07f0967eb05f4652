// Package logger builds the structured event sink spec.md §6 describes:
// {level, file:line, msg, timestamp} records emitted at accept, close,
// command error, and shutdown events. No column field is recorded: logrus
// reports the caller's file and line only. It is backed by
// github.com/sirupsen/logrus, the structured logger the wider example
// corpus reaches for in place of the standard library's bare log.Logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/sirupsen/logrus"
)

// New builds a logrus.Logger writing to logfile (stdout if logfile is
// empty), with its level floor derived from spec.md §6's `verbose`
// config key: 0 maps to Info, anything higher enables Debug.
func New(logfile string, verbose uint8) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		CallerPrettyfier: callerPrettyfier,
	})
	log.SetReportCaller(true)

	if verbose > 0 {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}

	out, err := openSink(logfile)
	if err != nil {
		return nil, err
	}
	log.SetOutput(out)
	return log, nil
}

func openSink(logfile string) (io.Writer, error) {
	if logfile == "" {
		return os.Stdout, nil
	}
	f, err := os.OpenFile(logfile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// callerPrettyfier supplies the file/line fields spec.md §6's record shape
// requires; logrus only exposes caller info through this hook.
func callerPrettyfier(f *runtime.Frame) (function string, file string) {
	return f.Function, fmt.Sprintf("%s:%d", f.File, f.Line)
}
