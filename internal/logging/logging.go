// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging builds the process logger from LogConfig.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/pdiddy/thesis-engine/pkg/types"
)

const defaultMaxSizeMB = 10

// New returns a logrus logger configured by cfg. Logs go to stderr unless
// cfg.File is set, in which case they go to a size-rotated file.
func New(cfg types.LogConfig) (*logrus.Logger, error) {
	log := logrus.New()

	var out io.Writer = os.Stderr
	if cfg.File != "" {
		maxSize := cfg.MaxSizeMB
		if maxSize <= 0 {
			maxSize = defaultMaxSizeMB
		}
		out = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    maxSize,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		}
	}
	log.SetOutput(out)

	switch strings.ToLower(cfg.Format) {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	default:
		return nil, fmt.Errorf("unknown log format %q: use text or json", cfg.Format)
	}

	level := logrus.InfoLevel
	if cfg.Level != "" {
		l, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("parsing log level: %w", err)
		}
		level = l
	}
	log.SetLevel(level)

	return log, nil
}

// Discard returns a logger that drops everything. Components use it when
// the caller supplies no logger.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// OrDiscard returns log, or a discarding logger when log is nil.
func OrDiscard(log logrus.FieldLogger) logrus.FieldLogger {
	if log == nil {
		return Discard()
	}
	return log
}
