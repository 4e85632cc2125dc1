package callback

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/callbacks"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_ErrorIncludesElapsed(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewLogger(zap.New(core), true)
	info := &callbacks.RunInfo{Name: "rerank", Type: "Lambda", Component: "Lambda"}

	ctx := l.OnStart(context.Background(), info, nil)
	l.OnError(ctx, info, errors.New("timeout"))

	entries := logs.FilterMessage("component error").All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "rerank", fields["name"])
		assert.Contains(t, fields, "elapsed")
		assert.Equal(t, "timeout", fields["error"])
	}
	assert.Equal(t, 1, logs.FilterMessage("component start").Len())
}

func TestLogger_NoDebugSkipsStartEnd(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewLogger(zap.New(core), false)
	info := &callbacks.RunInfo{Name: "embed"}

	ctx := l.OnStart(context.Background(), info, nil)
	l.OnEnd(ctx, info, nil)
	assert.Equal(t, 0, logs.Len())
}
