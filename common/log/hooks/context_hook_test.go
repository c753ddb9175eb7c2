package hooks

import (
	"bytes"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestContextHookAddsCaller(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New()
	logger.Out = &buf
	logger.Formatter = &log.JSONFormatter{}
	logger.AddHook(NewContextHook())

	logger.Info("placed")
	assert.Contains(t, buf.String(), `"file:line":"`)
	assert.Contains(t, buf.String(), "context_hook_test.go:")
}
