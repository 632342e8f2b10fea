// Package adapters provides logger adapters for plugging external logging
// libraries into the SDK's logger interface.
package adapters

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/kart-io/feishubot/logger"
)

// AdapterBase provides common functionality for logger adapters
type AdapterBase struct {
	level logger.LogLevel
}

// NewAdapterBase creates a new adapter base
func NewAdapterBase(level logger.LogLevel) *AdapterBase {
	return &AdapterBase{level: level}
}

// ShouldLog checks if the message should be logged at the given level
func (a *AdapterBase) ShouldLog(level logger.LogLevel) bool {
	return a.level >= level
}

// GetLevel returns the current log level
func (a *AdapterBase) GetLevel() logger.LogLevel {
	return a.level
}

// CustomLogger defines a minimal interface for custom logger implementations
type CustomLogger interface {
	Log(level logger.LogLevel, msg string, fields map[string]interface{})
}

// CustomAdapter adapts any logger that implements CustomLogger
type CustomAdapter struct {
	*AdapterBase
	logger CustomLogger
}

// NewCustomAdapter creates a new custom adapter
func NewCustomAdapter(customLogger CustomLogger, level logger.LogLevel) logger.Interface {
	return &CustomAdapter{
		AdapterBase: NewAdapterBase(level),
		logger:      customLogger,
	}
}

func (c *CustomAdapter) LogMode(level logger.LogLevel) logger.Interface {
	return &CustomAdapter{
		AdapterBase: NewAdapterBase(level),
		logger:      c.logger,
	}
}

func (c *CustomAdapter) Info(ctx context.Context, msg string, data ...interface{}) {
	if c.ShouldLog(logger.Info) {
		c.logger.Log(logger.Info, msg, parseFields(data...))
	}
}

func (c *CustomAdapter) Warn(ctx context.Context, msg string, data ...interface{}) {
	if c.ShouldLog(logger.Warn) {
		c.logger.Log(logger.Warn, msg, parseFields(data...))
	}
}

func (c *CustomAdapter) Error(ctx context.Context, msg string, data ...interface{}) {
	if c.ShouldLog(logger.Error) {
		c.logger.Log(logger.Error, msg, parseFields(data...))
	}
}

func (c *CustomAdapter) Debug(ctx context.Context, msg string, data ...interface{}) {
	if c.ShouldLog(logger.Debug) {
		c.logger.Log(logger.Debug, msg, parseFields(data...))
	}
}

func (c *CustomAdapter) Trace(ctx context.Context, begin time.Time, fc func() (string, string), err error) {
	if c.GetLevel() <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	operation, ref := fc()

	fields := map[string]interface{}{
		"operation":   operation,
		"duration_ms": float64(elapsed.Nanoseconds()) / 1e6,
		"reference":   ref,
	}

	if err != nil {
		fields["error"] = err.Error()
		if c.ShouldLog(logger.Error) {
			c.logger.Log(logger.Error, "operation failed", fields)
		}
		return
	}
	if c.ShouldLog(logger.Info) {
		c.logger.Log(logger.Info, "operation completed", fields)
	}
}

// parseFields converts variadic key-value arguments to a map
func parseFields(data ...interface{}) map[string]interface{} {
	fields := make(map[string]interface{})
	for i := 0; i < len(data)-1; i += 2 {
		if key, ok := data[i].(string); ok {
			fields[key] = data[i+1]
		}
	}
	return fields
}

// ZerologAdapter adapts a zerolog.Logger to the SDK logger interface
type ZerologAdapter struct {
	*AdapterBase
	zl zerolog.Logger
}

// NewZerologAdapter creates a new zerolog adapter
func NewZerologAdapter(zl zerolog.Logger, level logger.LogLevel) logger.Interface {
	return &ZerologAdapter{
		AdapterBase: NewAdapterBase(level),
		zl:          zl,
	}
}

func (z *ZerologAdapter) LogMode(level logger.LogLevel) logger.Interface {
	return &ZerologAdapter{
		AdapterBase: NewAdapterBase(level),
		zl:          z.zl,
	}
}

func (z *ZerologAdapter) Info(ctx context.Context, msg string, data ...interface{}) {
	if z.ShouldLog(logger.Info) {
		z.zl.Info().Fields(parseFields(data...)).Msg(msg)
	}
}

func (z *ZerologAdapter) Warn(ctx context.Context, msg string, data ...interface{}) {
	if z.ShouldLog(logger.Warn) {
		z.zl.Warn().Fields(parseFields(data...)).Msg(msg)
	}
}

func (z *ZerologAdapter) Error(ctx context.Context, msg string, data ...interface{}) {
	if z.ShouldLog(logger.Error) {
		z.zl.Error().Fields(parseFields(data...)).Msg(msg)
	}
}

func (z *ZerologAdapter) Debug(ctx context.Context, msg string, data ...interface{}) {
	if z.ShouldLog(logger.Debug) {
		z.zl.Debug().Fields(parseFields(data...)).Msg(msg)
	}
}

func (z *ZerologAdapter) Trace(ctx context.Context, begin time.Time, fc func() (string, string), err error) {
	if z.GetLevel() <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	operation, ref := fc()

	ev := z.zl.Info()
	if err != nil {
		if !z.ShouldLog(logger.Error) {
			return
		}
		ev = z.zl.Error().Err(err)
	} else if !z.ShouldLog(logger.Info) {
		return
	}

	ev.Str("operation", operation).
		Str("reference", ref).
		Float64("duration_ms", float64(elapsed.Nanoseconds())/1e6).
		Msg("operation")
}
