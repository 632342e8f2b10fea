package logger

import (
	"context"
	"fmt"
	"log"
	"time"
)

// defaultLogger implements Interface on top of a Writer
type defaultLogger struct {
	Writer
	Config
	infoStr, warnStr, errStr, debugStr  string
	traceStr, traceWarnStr, traceErrStr string
}

// New creates a new logger instance
func New(writer Writer, config Config) Interface {
	var (
		infoStr      = "%s\n[info] "
		warnStr      = "%s\n[warn] "
		errStr       = "%s\n[error] "
		debugStr     = "%s\n[debug] "
		traceStr     = "%s\n[%.3fms] [ref:%v] %s\n"
		traceWarnStr = "%s %s\n[%.3fms] [ref:%v] %s\n"
		traceErrStr  = "%s %s\n[%.3fms] [ref:%v] %s\n"
	)

	if config.Colorful {
		infoStr = Green + "%s\n" + Reset + Green + "[info] " + Reset
		warnStr = BlueBold + "%s\n" + Reset + Magenta + "[warn] " + Reset
		errStr = Magenta + "%s\n" + Reset + Red + "[error] " + Reset
		debugStr = White + "%s\n" + Reset + Blue + "[debug] " + Reset
		traceStr = Green + "%s\n" + Reset + Yellow + "[%.3fms] " + BlueBold + "[ref:%v]" + Reset + " %s\n"
		traceWarnStr = Green + "%s " + Yellow + "%s\n" + Reset + RedBold + "[%.3fms] " + Yellow + "[ref:%v]" + Magenta + " %s" + Reset + "\n"
		traceErrStr = RedBold + "%s " + MagentaBold + "%s\n" + Reset + Yellow + "[%.3fms] " + BlueBold + "[ref:%v]" + Reset + " %s\n"
	}

	return &defaultLogger{
		Writer:       writer,
		Config:       config,
		infoStr:      infoStr,
		warnStr:      warnStr,
		errStr:       errStr,
		debugStr:     debugStr,
		traceStr:     traceStr,
		traceWarnStr: traceWarnStr,
		traceErrStr:  traceErrStr,
	}
}

// LogMode creates a new logger with the specified log level
func (l *defaultLogger) LogMode(level LogLevel) Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

func (l *defaultLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Info {
		l.Printf(l.infoStr+msg+"\n", append([]interface{}{source()}, data...)...)
	}
}

func (l *defaultLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Warn {
		l.Printf(l.warnStr+msg+"\n", append([]interface{}{source()}, data...)...)
	}
}

func (l *defaultLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Error {
		l.Printf(l.errStr+msg+"\n", append([]interface{}{source()}, data...)...)
	}
}

func (l *defaultLogger) Debug(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Debug {
		l.Printf(l.debugStr+msg+"\n", append([]interface{}{source()}, data...)...)
	}
}

// Trace logs API call operations with duration
func (l *defaultLogger) Trace(ctx context.Context, begin time.Time, fc func() (operation string, reference string), err error) {
	if l.LogLevel <= Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && l.LogLevel >= Error:
		operation, ref := fc()
		l.Printf(l.traceErrStr, source(), err, float64(elapsed.Nanoseconds())/1e6, orDash(ref), operation)
	case elapsed > l.SlowThreshold && l.SlowThreshold != 0 && l.LogLevel >= Warn:
		operation, ref := fc()
		slowLog := fmt.Sprintf("SLOW OPERATION >= %v", l.SlowThreshold)
		l.Printf(l.traceWarnStr, source(), slowLog, float64(elapsed.Nanoseconds())/1e6, orDash(ref), operation)
	case l.LogLevel >= Info:
		operation, ref := fc()
		l.Printf(l.traceStr, source(), float64(elapsed.Nanoseconds())/1e6, orDash(ref), operation)
	}
}

func orDash(ref string) string {
	if ref == "" {
		return "-"
	}
	return ref
}

// source tags log lines with the SDK name
func source() string {
	return "feishubot"
}

// NewStdLogger creates a logger that outputs through Go's standard log package
func NewStdLogger(level LogLevel) Interface {
	return New(stdWriter{}, Config{
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      level,
		Colorful:      false,
	})
}

// stdWriter wraps Go's standard log package
type stdWriter struct{}

func (stdWriter) Printf(msg string, data ...interface{}) {
	log.Printf(msg, data...)
}
