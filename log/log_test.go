package log_test

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"pipelined.dev/writefifo/log"
)

func TestGetLogger(t *testing.T) {
	l := log.GetLogger()
	var buf bytes.Buffer
	l.SetOutput(&buf)

	var logger log.Logger = l
	logger.Info("path = fifo")
	assert.Contains(t, buf.String(), "path = fifo")
	if l.GetLevel() != logrus.DebugLevel {
		buf.Reset()
		logger.Debug("hidden")
		assert.Empty(t, buf.String())
	}
}

func TestSilent(t *testing.T) {
	var logger log.Logger = log.Silent{}
	logger.Info("nothing")
	logger.Debug("nothing")
}
