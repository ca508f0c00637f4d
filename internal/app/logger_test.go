package app

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestCharmLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, log.InfoLevel)

	logger.Infof("loader", "background loaded in %dms", 12)
	logger.Errorf("web", "bad request")

	out := buf.String()
	assert.Contains(t, out, "background loaded in 12ms")
	assert.Contains(t, out, "component=loader")
	assert.Contains(t, out, "bad request")
	assert.Contains(t, out, "component=web")
}

func TestCharmLoggerDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, log.InfoLevel).Debugf("app", "hidden")
	assert.Empty(t, buf.String())

	NewLogger(&buf, log.DebugLevel).Debugf("app", "shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestMultiLogger(t *testing.T) {
	var a, b bytes.Buffer
	m := MultiLogger{NewLogger(&a, log.InfoLevel), NewLogger(&b, log.InfoLevel), NoopLogger{}}
	m.Infof("app", "hello")
	assert.Contains(t, a.String(), "hello")
	assert.Contains(t, b.String(), "hello")
}
