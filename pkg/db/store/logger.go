package store

import (
	"strings"
	"time"

	"github.com/mwantia/nfosync/pkg/log"
	"gorm.io/gorm/logger"
)

// gormWriter forwards gorm's log lines to a LoggerService.
type gormWriter struct {
	log log.LoggerService
}

func (w gormWriter) Printf(format string, args ...any) {
	w.log.Debug(strings.TrimSpace(format), args...)
}

// NewGormLogger builds a gorm logger that writes through the given service.
func NewGormLogger(l log.LoggerService, level logger.LogLevel) logger.Interface {
	return logger.New(gormWriter{log: l}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// ParseGormLogLevel maps a config string onto a gorm log level.
func ParseGormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "error":
		return logger.Error
	case "warn", "warning":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return logger.Silent
	}
}
