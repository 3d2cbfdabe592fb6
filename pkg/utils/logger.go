package utils

import (
	"os"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

// Config controls logger behaviour
type Config struct {
	LogLevel  string
	LogFormat string // "text" or "json"
	Pretty    bool
}

// Logger wraps logrus with caller-aware helpers
type Logger struct {
	*logrus.Logger
}

// NewLogger creates a configured logger
func NewLogger(cfg Config) *Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   cfg.Pretty,
		})
	}

	return &Logger{Logger: log}
}

// WithFunc attaches the calling function name as a log field
func (l *Logger) WithFunc() *logrus.Entry {
	pc, _, _, ok := runtime.Caller(1)
	if !ok {
		return l.WithField("func", "unknown")
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return l.WithField("func", "unknown")
	}
	name := fn.Name()
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	return l.WithField("func", name)
}
