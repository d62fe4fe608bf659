package calculation

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlogLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))

	l.Debugf("hidden %d", 1)
	l.Infof("hidden %d", 2)
	l.Warnf("settlement for %d did not converge", 2031)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "settlement for 2031 did not converge")
	assert.Contains(t, out, "component=calculation")
}

func TestEngineSetLoggerNil(t *testing.T) {
	e, err := NewCashFlowEngine(testPlan())
	if !assert.NoError(t, err) {
		return
	}
	e.SetLogger(nil)
	assert.IsType(t, NopLogger{}, e.logger)
}
