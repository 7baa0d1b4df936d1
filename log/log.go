package log

import (
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

// DebugEnv enables debug level for loggers created with GetLogger.
const DebugEnv = "FIFO_DEBUG"

var debug bool

// Logger is what transports log through. Both *logrus.Logger and
// *logrus.Entry satisfy it.
type Logger interface {
	Debug(...interface{})
	Info(...interface{})
}

func init() {
	// unparsable values leave debug off
	debug, _ = strconv.ParseBool(os.Getenv(DebugEnv))
}

// GetLogger returns a logrus logger writing to stderr. Its level is debug
// when DebugEnv is set to a true value, info otherwise.
func GetLogger() *logrus.Logger {
	l := logrus.New()
	if debug {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// Silent is a logger that discards everything.
type Silent struct{}

// Debug implements Logger.
func (Silent) Debug(args ...interface{}) {}

// Info implements Logger.
func (Silent) Info(args ...interface{}) {}
