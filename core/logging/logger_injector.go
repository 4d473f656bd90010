package logging

import "reflect"

// Logger 按类型生成 logger
//
//	T 的完整路径即 logger 的 path，可用于 Filter 的前缀匹配
type Logger[T any] struct {
	handler ILogHandler
}

func NewLogger[T any](handler ILogHandler) *Logger[T] {
	return &Logger[T]{handler: handler}
}

func (ss *Logger[T]) Path() string {
	ty := reflect.TypeOf((*T)(nil)).Elem()
	return ty.PkgPath() + "/" + ty.Name()
}

func (ss *Logger[T]) Get(logDataBuilder func(data *LogData)) ILogger {
	return NewDefaultLogger(ss.Path(), ss.handler, logDataBuilder)
}
