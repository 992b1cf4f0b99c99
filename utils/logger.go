package utils

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the application-wide structured logger
var Logger = logrus.New()

// InitLogger configures Logger for the given level and environment.
// Production logs are JSON so they can be shipped as-is.
func InitLogger(level string, production bool) {
	Logger.SetOutput(os.Stdout)

	if production {
		Logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		Logger.WithField("level", level).Warn("Unknown LOG_LEVEL, falling back to info")
		parsed = logrus.InfoLevel
	}
	Logger.SetLevel(parsed)
}
