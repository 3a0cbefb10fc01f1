package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var Logger *logrus.Logger

// InitLogger builds the process logger from the configured level and format
// ("json" or "text") and stores it as the global instance.
func InitLogger(level, format string) *logrus.Logger {
	log := logrus.New()

	if level == "" {
		level = "info"
	}

	if parsed, err := logrus.ParseLevel(strings.ToLower(level)); err == nil {
		log.SetLevel(parsed)
	} else {
		log.SetLevel(logrus.InfoLevel)
		log.WithField("invalid_level", level).Warn("Invalid LOG_LEVEL, using INFO")
	}

	if strings.ToLower(format) == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	log.SetOutput(os.Stdout)

	Logger = log

	return log
}

// GetLogger returns the global logger instance
func GetLogger() *logrus.Logger {
	if Logger == nil {
		return InitLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	}
	return Logger
}

// WithOptimizationID creates a logger with optimization context
func WithOptimizationID(optimizationID string) *logrus.Entry {
	return GetLogger().WithField("optimization_id", optimizationID)
}

// WithGenerationContext tags entries for one roster generation run.
func WithGenerationContext(optimizationID string, budget float64, poolSize int) *logrus.Entry {
	return GetLogger().WithFields(logrus.Fields{
		"optimization_id": optimizationID,
		"budget":          budget,
		"pool_size":       poolSize,
	})
}

func WithComponent(component string) *logrus.Entry {
	return GetLogger().WithField("component", component)
}
