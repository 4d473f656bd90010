package logging

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/ndsky1003/buffer/v2"
)

var pool = buffer.NewBufferPool(buffer.Options().SetCalibratedSz(0).SetMinSize(256))

type LogFormatterContainer struct {
	lock       sync.RWMutex
	formatters map[string]func(logData *LogData) string
}

// NewLogFormatterRepository 预置 Default、Color、JSON 三种格式
func NewLogFormatterRepository() *LogFormatterContainer {
	repo := &LogFormatterContainer{
		formatters: make(map[string]func(logData *LogData) string),
	}
	repo.AddFormatter("Default", DefaultLogFormatter)
	repo.AddFormatter("Color", ColorLogFormatter)
	repo.AddFormatter("JSON", JSONLogFormatter)
	return repo
}

func (ss *LogFormatterContainer) AddFormatter(name string, formatter func(logData *LogData) string) {
	ss.lock.Lock()
	defer ss.lock.Unlock()
	ss.formatters[name] = formatter
}

func (ss *LogFormatterContainer) GetFormatter(name string) func(logData *LogData) string {
	ss.lock.RLock()
	defer ss.lock.RUnlock()
	return ss.formatters[name]
}

func DefaultLogFormatter(logData *LogData) string {
	return formatText(logData, false)
}

func ColorLogFormatter(logData *LogData) string {
	return formatText(logData, true)
}

func formatText(logData *LogData, colored bool) string {
	sb := pool.Get()
	defer pool.Put(sb)

	writeTime(sb, logData.Time)

	info := levelInfoOf(logData.Level)
	if colored {
		sb.WriteString(info.color)
	}
	sb.WriteString(" " + info.str)

	id := logData.ID
	if len(id) == 0 {
		id = "-"
	} else if len(id) > 12 {
		id = id[:10] + ".."
	}
	sb.WriteString(fmt.Sprintf(" %12s", id))

	name := logData.Name
	if len(name) == 0 {
		name = "System"
	} else if len(name) > 16 {
		name = name[:14] + ".."
	}
	sb.WriteString(fmt.Sprintf(" %16s", name))

	if len(logData.File) != 0 {
		sb.WriteString(fmt.Sprintf(" %s(%d)", logData.File, logData.Line))
	}
	sb.WriteString(" " + logData.Message())
	if colored {
		sb.WriteString("\x1b[0m")
	}
	return sb.String()
}

func writeTime(sb *bytes.Buffer, now time.Time) {
	year, mon, day := now.Date()
	hour, m, sec := now.Clock()
	sb.WriteString(fmt.Sprintf(
		"%04d/%02d/%02d %02d:%02d:%02d.%02d",
		year, mon, day,
		hour, m, sec,
		now.Nanosecond()/1000/1000/10,
	))
}

type jsonLogRecord struct {
	Time    string `json:"time"`
	Level   string `json:"level"`
	Path    string `json:"path,omitempty"`
	Name    string `json:"name,omitempty"`
	ID      string `json:"id,omitempty"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Message string `json:"msg"`
	Custom  []any  `json:"custom,omitempty"`
}

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONLogFormatter 每条日志输出为一行 JSON，level 字段使用级别表达式
func JSONLogFormatter(logData *LogData) string {
	rec := jsonLogRecord{
		Time:    logData.Time.Format(time.RFC3339Nano),
		Level:   logData.Level.Expr(),
		Path:    logData.Path,
		Name:    logData.Name,
		ID:      logData.ID,
		File:    logData.File,
		Line:    logData.Line,
		Message: logData.Message(),
		Custom:  logData.Custom,
	}
	s, err := jsonAPI.MarshalToString(&rec)
	if err != nil {
		rec.Custom = nil
		rec.Message = fmt.Sprintf("%s (custom fields dropped: %v)", rec.Message, err)
		s, _ = jsonAPI.MarshalToString(&rec)
	}
	return s
}

type levelInfo struct {
	str   string
	color string
}

var l2info = map[LogLevel]levelInfo{
	Debug: {"DEBUG", "\x1b[1;36m"},
	Info:  {" INFO", "\x1b[1;37m"},
	Event: {"EVENT", "\x1b[1;32m"},
	Warn:  {" WARN", "\x1b[1;33m"},
	Error: {"ERROR", "\x1b[1;31m"},
}

// 组合级别没有固定标签，以表达式代替并按其中最严重的级别着色
func levelInfoOf(l LogLevel) levelInfo {
	if info, ok := l2info[l]; ok {
		return info
	}

	info := levelInfo{str: strings.ToUpper(l.Expr()), color: "\x1b[1;37m"}
	if flags := l.Flags(); len(flags) > 0 {
		info.color = l2info[flags[len(flags)-1]].color
	}
	return info
}
