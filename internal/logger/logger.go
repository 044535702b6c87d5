// Package logger configures the process-wide structured logger.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/snapdish/snapdish-api/config"
)

// New builds a logrus logger from configuration. Unknown levels fall back
// to info rather than failing startup.
func New(cfg config.LogConfig) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return log
}
