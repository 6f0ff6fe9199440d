package config

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// ApplyLogging configures the global logrus logger. verbose forces debug.
func (l LogConfig) ApplyLogging(verbose bool) error {
	level := log.InfoLevel
	if l.Level != "" {
		parsed, err := log.ParseLevel(l.Level)
		if err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
		level = parsed
	}
	if verbose {
		level = log.DebugLevel
	}
	log.SetLevel(level)

	if l.JSON {
		log.SetFormatter(&log.JSONFormatter{})
		return nil
	}
	// Leading timestamp in ISO8601 format
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})
	return nil
}
