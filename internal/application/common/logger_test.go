package common_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mickdekkers/skyrim-alchemy-go/internal/application/common"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/application/mediator"
)

type entry struct {
	level, message string
	metadata       map[string]interface{}
}

type recordingLogger struct{ entries []entry }

func (l *recordingLogger) Log(level, message string, metadata map[string]interface{}) {
	l.entries = append(l.entries, entry{level, message, metadata})
}

type exportCommand struct{}

func TestLoggerFromContext_FallsBackToNoOp(t *testing.T) {
	logger := common.LoggerFromContext(context.Background())

	assert.NotNil(t, logger)
	logger.Log(common.LevelInfo, "ignored", nil)
}

func TestLoggingMiddleware(t *testing.T) {
	// Arrange
	logger := &recordingLogger{}
	ctx := common.WithLogger(context.Background(), logger)
	m := mediator.NewMediator()
	m.Use(common.LoggingMiddleware())
	fail := false
	require.NoError(t, mediator.RegisterHandler[*exportCommand](m, mediator.HandlerFunc(
		func(context.Context, mediator.Request) (mediator.Response, error) {
			if fail {
				return nil, errors.New("disk full")
			}
			return "ok", nil
		})))

	// Act
	_, err := m.Send(ctx, &exportCommand{})
	require.NoError(t, err)
	fail = true
	_, err = m.Send(ctx, &exportCommand{})

	// Assert
	require.Error(t, err)
	require.Len(t, logger.entries, 4)
	assert.Equal(t, "exportCommand", logger.entries[0].metadata["request"])
	assert.Equal(t, common.LevelDebug, logger.entries[1].level)
	assert.Equal(t, common.LevelError, logger.entries[3].level)
	assert.Equal(t, "disk full", logger.entries[3].metadata["error"])
}
