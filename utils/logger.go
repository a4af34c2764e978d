package utils

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	InfoLogger  = newLogger(os.Stdout, logrus.InfoLevel)
	ErrorLogger = newLogger(os.Stderr, logrus.ErrorLevel)
)

func newLogger(out *os.File, level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(level)
	return l
}

// InitLogger configures both loggers. level is a logrus level name applied to
// InfoLogger ("debug" turns on per-request detail); format is "text" or "json".
func InitLogger(level, format string) {
	InfoLogger = newLogger(os.Stdout, logrus.InfoLevel)
	ErrorLogger = newLogger(os.Stderr, logrus.ErrorLevel)

	if lvl, err := logrus.ParseLevel(strings.TrimSpace(level)); err == nil {
		InfoLogger.SetLevel(lvl)
	} else if level != "" {
		ErrorLogger.Errorf("unknown log level %q, using info", level)
	}

	if strings.EqualFold(format, "json") {
		InfoLogger.SetFormatter(&logrus.JSONFormatter{})
		ErrorLogger.SetFormatter(&logrus.JSONFormatter{})
	}
}
