package logging

import (
	"fmt"
	"runtime"
	"time"
)

var _ ILogger = (*DefaultLogger)(nil)

type DefaultLogger struct {
	path           string
	handler        ILogHandler
	logDataBuilder func(data *LogData)
}

func NewDefaultLogger(path string, handler ILogHandler, logDataBuilder func(data *LogData)) *DefaultLogger {
	return &DefaultLogger{
		path:           path,
		handler:        handler,
		logDataBuilder: logDataBuilder,
	}
}

func (ss *DefaultLogger) Path() string {
	return ss.path
}

// Log 以任意级别记录日志，level 可以是组合值
func (ss *DefaultLogger) Log(level LogLevel, format string, args ...any) {
	ss.log(1, level, format, args...)
}

// LogDepth 与 Log 相同，调用位置向上多跳过 depth 层，供封装函数使用
func (ss *DefaultLogger) LogDepth(depth int, level LogLevel, format string, args ...any) {
	ss.log(depth+1, level, format, args...)
}

func (ss *DefaultLogger) log(depth int, level LogLevel, format string, args ...any) {
	var pcs [1]uintptr
	// 0: runtime.Callers 1: log 2: Log/Debugf...
	runtime.Callers(depth+2, pcs[:])

	logData := &LogData{
		Time:  time.Now(),
		Path:  ss.path,
		Level: level,
		PC:    pcs[0],
		Message: func() string {
			return fmt.Sprintf(format, args...)
		},
	}
	if ss.logDataBuilder != nil {
		ss.logDataBuilder(logData)
	}
	ss.handler.Log(logData)
}

func (ss *DefaultLogger) Debugf(format string, args ...any) {
	ss.log(1, Debug, format, args...)
}

func (ss *DefaultLogger) Infof(format string, args ...any) {
	ss.log(1, Info, format, args...)
}

func (ss *DefaultLogger) Eventf(format string, args ...any) {
	ss.log(1, Event, format, args...)
}

func (ss *DefaultLogger) Warnf(format string, args ...any) {
	ss.log(1, Warn, format, args...)
}

func (ss *DefaultLogger) Errorf(format string, args ...any) {
	ss.log(1, Error, format, args...)
}
