// Package callback Eino 组件回调日志
package callback

import (
	"context"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"
)

type startKey struct{}

// Logger 记录 Eino 组件的开始、结束和错误
// 结束时输出组件耗时，需要配合 OnStart 写入的起始时间
type Logger struct {
	log   *zap.Logger
	debug bool
}

// NewLogger 创建回调日志处理器
func NewLogger(log *zap.Logger, debug bool) *Logger {
	return &Logger{log: log.Named("eino"), debug: debug}
}

// OnStart 组件执行开始
func (l *Logger) OnStart(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
	if l.debug {
		l.log.Debug("component start", fields(info)...)
	}
	return context.WithValue(ctx, startKey{}, time.Now())
}

// OnEnd 组件执行成功结束
func (l *Logger) OnEnd(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
	if l.debug {
		l.log.Debug("component end", append(fields(info), elapsed(ctx))...)
	}
	return ctx
}

// OnError 组件执行出错
func (l *Logger) OnError(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	l.log.Warn("component error", append(fields(info), elapsed(ctx), zap.Error(err))...)
	return ctx
}

// OnStartWithStreamInput 流式输入开始
func (l *Logger) OnStartWithStreamInput(ctx context.Context, info *callbacks.RunInfo, input *schema.StreamReader[callbacks.CallbackInput]) context.Context {
	input.Close()
	return l.OnStart(ctx, info, nil)
}

// OnEndWithStreamOutput 流式输出结束
func (l *Logger) OnEndWithStreamOutput(ctx context.Context, info *callbacks.RunInfo, output *schema.StreamReader[callbacks.CallbackOutput]) context.Context {
	output.Close()
	return l.OnEnd(ctx, info, nil)
}

func fields(info *callbacks.RunInfo) []zap.Field {
	if info == nil {
		return nil
	}
	return []zap.Field{
		zap.String("name", info.Name),
		zap.String("type", info.Type),
		zap.String("component", string(info.Component)),
	}
}

func elapsed(ctx context.Context) zap.Field {
	if start, ok := ctx.Value(startKey{}).(time.Time); ok {
		return zap.Duration("elapsed", time.Since(start))
	}
	return zap.Skip()
}

// SetupGlobalCallbacks 注册全局回调
func SetupGlobalCallbacks(log *zap.Logger, debug bool) {
	callbacks.AppendGlobalHandlers(NewLogger(log, debug))
	log.Info("eino global callbacks registered", zap.Bool("debug", debug))
}
