package slog

import (
	"sync"

	"github.com/mogud/snowlog/core/logging"
	"github.com/mogud/snowlog/core/logging/handler/compound"
	"github.com/mogud/snowlog/core/logging/handler/console"
)

const globalPath = "Global"

var (
	lock          sync.Mutex
	globalHandler logging.ILogHandler
	globalLogger  logging.ILogger
	// globalLogger 由本包创建，而非 BindGlobalLogger 绑定
	ownLogger bool
)

// BindGlobalHandler 替换全局 handler；由 BindGlobalLogger 绑定的 logger 保持不变
func BindGlobalHandler(h logging.ILogHandler) {
	lock.Lock()
	defer lock.Unlock()

	globalHandler = h
	if globalLogger == nil || ownLogger {
		globalLogger = logging.NewDefaultLogger(globalPath, h, nil)
		ownLogger = true
	}
}

func BindGlobalLogger(l logging.ILogger) {
	lock.Lock()
	defer lock.Unlock()

	globalLogger = l
	ownLogger = false
}

func Handler() logging.ILogHandler {
	lock.Lock()
	defer lock.Unlock()

	ensure()
	return globalHandler
}

func getLogger() logging.ILogger {
	lock.Lock()
	defer lock.Unlock()

	ensure()
	return globalLogger
}

func ensure() {
	if globalHandler == nil {
		globalHandler = compound.NewHandler(console.NewHandler())
	}
	if globalLogger == nil {
		globalLogger = logging.NewDefaultLogger(globalPath, globalHandler, nil)
		ownLogger = true
	}
}

type depthLogger interface {
	LogDepth(depth int, level logging.LogLevel, format string, args ...any)
}

// 调用位置取包级函数的调用者
func log(level logging.LogLevel, format string, args ...any) {
	l := getLogger()
	if dl, ok := l.(depthLogger); ok {
		dl.LogDepth(2, level, format, args...)
		return
	}

	switch level {
	case logging.Debug:
		l.Debugf(format, args...)
	case logging.Info:
		l.Infof(format, args...)
	case logging.Event:
		l.Eventf(format, args...)
	case logging.Warn:
		l.Warnf(format, args...)
	default:
		l.Errorf(format, args...)
	}
}

func Debugf(format string, args ...any) {
	log(logging.Debug, format, args...)
}

func Infof(format string, args ...any) {
	log(logging.Info, format, args...)
}

func Eventf(format string, args ...any) {
	log(logging.Event, format, args...)
}

func Warnf(format string, args ...any) {
	log(logging.Warn, format, args...)
}

func Errorf(format string, args ...any) {
	log(logging.Error, format, args...)
}
