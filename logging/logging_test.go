package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
	"go.viam.com/test"
)

func TestObservedTestLogger(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.Debugw("tick", "count", 3)
	sub := logger.Sublogger("scheduler")
	sub.Infow("command interrupted", "command", "ArcadeDrive")

	test.That(t, logs.Len(), test.ShouldEqual, 2)
	entries := logs.FilterMessage("command interrupted").All()
	test.That(t, entries, test.ShouldHaveLength, 1)
	test.That(t, entries[0].LoggerName, test.ShouldEqual, "scheduler")
	test.That(t, entries[0].ContextMap()["command"], test.ShouldEqual, "ArcadeDrive")
}

func TestSetLevel(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.SetLevel(zapcore.WarnLevel)
	logger.Info("dropped")
	logger.Warn("kept")
	test.That(t, logs.Len(), test.ShouldEqual, 1)
	test.That(t, logs.All()[0].Message, test.ShouldEqual, "kept")
}

func TestNewLoggerAtLevel(t *testing.T) {
	logger, err := NewLoggerAtLevel("sim", "warn")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, logger.Level(), test.ShouldEqual, zapcore.WarnLevel)

	_, err = NewLoggerAtLevel("sim", "loud")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestReplaceGlobal(t *testing.T) {
	prev := Global()
	t.Cleanup(func() { ReplaceGlobal(prev) })

	logger, logs := NewObservedTestLogger(t)
	ReplaceGlobal(logger)
	test.That(t, Global(), test.ShouldEqual, logger)
	Global().Info("through the global logger")
	test.That(t, logs.FilterMessage("through the global logger").Len(), test.ShouldEqual, 1)
}
