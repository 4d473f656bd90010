package logging

import (
	"runtime"
	"time"
)

type LogData struct {
	Time    time.Time
	Path    string
	Name    string
	ID      string
	File    string
	Line    int
	PC      uintptr // 调用位置，File 为空时由 handler 按需解析
	Level   LogLevel
	Custom  []any
	Message func() string
}

// WithCaller 返回带有调用位置的副本，原记录保持不变
func (ss *LogData) WithCaller(file string, line int) *LogData {
	d := *ss
	d.File = file
	d.Line = line
	return &d
}

// ResolveCaller 当记录尚无文件位置且带有 PC 时，返回填充了 File/Line 的副本
func (ss *LogData) ResolveCaller() *LogData {
	if len(ss.File) != 0 || ss.PC == 0 {
		return ss
	}
	frame, _ := runtime.CallersFrames([]uintptr{ss.PC}).Next()
	if len(frame.File) == 0 {
		return ss
	}
	return ss.WithCaller(frame.File, frame.Line)
}

type ILogHandler interface {
	Log(data *LogData)
}

type ILogger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Eventf(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}
