/*
logging.go - Structured logger setup

PURPOSE:
  Builds the shared logrus logger from configuration. Production and
  staging emit JSON for log shippers; everything else gets colored text.

SEE ALSO:
  - config/config.go: LOG_LEVEL and ENVIRONMENT settings
*/
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a logger configured for the given level and environment.
// Invalid levels fall back to info.
func New(level, environment string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)

	switch environment {
	case "production", "staging":
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	default:
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return log
}
