package infra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gateway/internal/logger"

	"go.uber.org/zap"
	gormLogger "gorm.io/gorm/logger"
)

// slowQueryThreshold 超过该耗时的语句按慢查询记录
const slowQueryThreshold = 200 * time.Millisecond

// gormZapLogger 把 GORM 的日志写入 zap，语句日志带上请求 ID
type gormZapLogger struct {
	zl    *zap.Logger
	level gormLogger.LogLevel
}

// NewGormZapLogger 创建 GORM 日志适配器
func NewGormZapLogger(l *zap.Logger, level gormLogger.LogLevel) gormLogger.Interface {
	return &gormZapLogger{zl: l.Named("gorm"), level: level}
}

func (l *gormZapLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *gormZapLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.printf(ctx, gormLogger.Info, msg, data...)
}

func (l *gormZapLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.printf(ctx, gormLogger.Warn, msg, data...)
}

func (l *gormZapLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.printf(ctx, gormLogger.Error, msg, data...)
}

func (l *gormZapLogger) printf(ctx context.Context, level gormLogger.LogLevel, msg string, data ...interface{}) {
	if l.level < level {
		return
	}
	text := fmt.Sprintf(msg, data...)
	zl := l.withRequest(ctx)
	switch level {
	case gormLogger.Error:
		zl.Error(text)
	case gormLogger.Warn:
		zl.Warn(text)
	default:
		zl.Info(text)
	}
}

// Trace 记录一条 SQL：出错记 Error，慢查询记 Warn，其余仅在 Info 级别下记 Debug
func (l *gormZapLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormLogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gormLogger.ErrRecordNotFound)
	slow := elapsed > slowQueryThreshold
	if !failed && !slow && l.level < gormLogger.Info {
		return
	}

	sql, rows := fc()
	zl := l.withRequest(ctx).With(
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	)
	switch {
	case failed && l.level >= gormLogger.Error:
		zl.Error("SQL 执行失败", zap.Error(err))
	case slow && l.level >= gormLogger.Warn:
		zl.Warn("SQL 慢查询")
	case l.level >= gormLogger.Info:
		zl.Debug("SQL 执行")
	}
}

func (l *gormZapLogger) withRequest(ctx context.Context) *zap.Logger {
	if id := logger.GetRequestID(ctx); id != "" {
		return l.zl.With(zap.String("request_id", id))
	}
	return l.zl
}
