package internal

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the shared logger instance for the whole process.
var Logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetVerbose enables debug-level logging.
func SetVerbose(verbose bool) {
	if verbose {
		Logger.SetLevel(logrus.DebugLevel)
	} else {
		Logger.SetLevel(logrus.InfoLevel)
	}
}

// SetLogLevel sets the log level from a configuration string such as
// "debug" or "warn". Unknown levels return an error and leave the
// current level unchanged.
func SetLogLevel(level string) error {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	Logger.SetLevel(parsed)
	return nil
}
