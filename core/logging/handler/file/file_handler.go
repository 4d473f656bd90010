package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mogud/snowlog/core/logging"
	"github.com/mogud/snowlog/core/option"
)

var _ logging.ILogHandler = (*Handler)(nil)

const fileNameRefreshInterval = 10 * time.Second

type Option struct {
	LogPath                    string                      `koanf:"LogPath"`
	MaxLogChanLength           int                         `koanf:"MaxLogChanLength"`
	Formatter                  string                      `koanf:"Formatter"`
	FileLineLevels             logging.LogLevel            `koanf:"FileLineLevels"`
	Filter                     map[string]logging.LogLevel `koanf:"Filter"`
	DefaultLevels              logging.LogLevel            `koanf:"DefaultLevels"`
	FileNameFormat             string                      `koanf:"FileNameFormat"`
	FileRollingMegabytes       int                         `koanf:"FileRollingMegabytes"`
	FileRollingIntervalSeconds int                         `koanf:"FileRollingIntervalSeconds"`
	Compress                   bool                        `koanf:"Compress"` // 滚动后的旧文件压缩为 .gz
}

func DefaultOption(o *Option) {
	o.LogPath = "logs"
	o.MaxLogChanLength = 102400
	o.Formatter = "Default"
	o.FileLineLevels = logging.Warn | logging.Error
	o.DefaultLevels = logging.AtLeast(logging.Info)
}

type Handler struct {
	lock sync.Mutex

	lastFileLogTime         time.Time
	lastFileNameRefreshTime time.Time
	fileName                string
	template                fileNameTemplate
	index                   int32
	logChan                 chan *writerElement
	fileWriter              *writer
	closed                  bool

	option    *Option
	filter    *logging.Filter
	formatter func(logData *logging.LogData) string
}

func NewHandler() *Handler {
	opt := &Option{}
	DefaultOption(opt)

	handler := &Handler{
		formatter: logging.DefaultLogFormatter,
	}
	handler.apply(opt)
	return handler
}

func (ss *Handler) Construct(opt *option.Option[Option], repo *logging.LogFormatterContainer) {
	ss.lock.Lock()
	ss.formatter = formatterOf(opt.Get(), repo)
	ss.apply(opt.Get())
	ss.lock.Unlock()

	opt.OnChanged(func() {
		newOption := opt.Get()

		ss.lock.Lock()
		defer ss.lock.Unlock()

		ss.formatter = formatterOf(newOption, repo)
		ss.apply(newOption)
	})
}

func formatterOf(opt *Option, repo *logging.LogFormatterContainer) func(logData *logging.LogData) string {
	if repo != nil {
		if f := repo.GetFormatter(opt.Formatter); f != nil {
			return f
		}
	}
	return logging.DefaultLogFormatter
}

// apply 需在持有锁时调用
func (ss *Handler) apply(opt *Option) {
	checked := *opt

	if checked.MaxLogChanLength <= 0 {
		checked.MaxLogChanLength = 102400
	}


	if checked.FileRollingMegabytes <= 0 {
		checked.FileRollingMegabytes = 100
	}

	if checked.FileRollingIntervalSeconds <= 0 {
		checked.FileRollingIntervalSeconds = 3600
	} else if checked.FileRollingIntervalSeconds < 60 {
		checked.FileRollingIntervalSeconds = 60
	}

	if len(checked.FileNameFormat) == 0 {
		checked.FileNameFormat = "%Y_%02M_%02D_%02h_%02m_%04i.log"
	}

	if len(checked.LogPath) == 0 {
		checked.LogPath = "logs"
	}

	old := ss.option
	ss.option = &checked
	ss.filter = logging.NewFilter(checked.Filter, checked.DefaultLevels)

	if ss.closed {
		return
	}
	if ss.logChan == nil || checked.MaxLogChanLength != cap(ss.logChan) || checked.Compress != ss.fileWriter.compress {
		ss.restartWriter(checked.MaxLogChanLength, checked.Compress)
	}
	if old != nil && (old.LogPath != checked.LogPath || old.FileNameFormat != checked.FileNameFormat) {
		ss.fileName = ""
	}
}

// restartWriter 需在持有锁时调用，旧通道中的日志会先写完
func (ss *Handler) restartWriter(chanLength int, compress bool) {
	if ss.logChan != nil {
		close(ss.logChan)
		ss.fileWriter.wait()
	}
	ss.logChan = make(chan *writerElement, chanLength)
	ss.fileWriter = newWriter(ss.logChan, compress)
}

func (ss *Handler) Levels() logging.LogLevel {
	ss.lock.Lock()
	defer ss.lock.Unlock()
	return ss.option.DefaultLevels
}

func (ss *Handler) SetLevels(levels logging.LogLevel) {
	ss.lock.Lock()
	defer ss.lock.Unlock()

	opt := *ss.option
	opt.DefaultLevels = levels
	ss.apply(&opt)
}

// Close 停止接收日志并等待已提交的日志落盘
func (ss *Handler) Close() {
	ss.lock.Lock()
	if ss.closed {
		ss.lock.Unlock()
		return
	}
	ss.closed = true
	close(ss.logChan)
	w := ss.fileWriter
	ss.lock.Unlock()

	w.wait()
}

// FileName 返回当前写入的文件路径
func (ss *Handler) FileName() string {
	ss.lock.Lock()
	defer ss.lock.Unlock()
	return ss.fileName
}

func (ss *Handler) Log(logData *logging.LogData) {
	if logData.Level == logging.Off {
		return
	}

	ss.lock.Lock()
	curOption := ss.option
	filter := ss.filter
	formatter := ss.formatter
	ss.lock.Unlock()

	if !filter.Enabled(logData.Path, logData.Level) {
		return
	}

	if curOption.FileLineLevels.Overlaps(logData.Level) {
		logData = logData.ResolveCaller()
	}

	message := formatter(logData)

	ss.lock.Lock()
	defer ss.lock.Unlock()

	if ss.closed {
		return
	}

	unit := &writerElement{
		File:    ss.refreshFileName(logData.Time),
		Message: message,
	}
	select {
	case ss.logChan <- unit:
	default:
		_, _ = fmt.Fprintln(os.Stderr, "file log channel full")
	}
}

// refreshFileName 需在持有锁时调用
func (ss *Handler) refreshFileName(now time.Time) string {
	if len(ss.fileName) != 0 && now.Sub(ss.lastFileNameRefreshTime) <= fileNameRefreshInterval {
		return ss.fileName
	}
	ss.lastFileNameRefreshTime = now

	interval := time.Duration(ss.option.FileRollingIntervalSeconds) * time.Second
	rollingFile := false
	if now.Sub(ss.lastFileLogTime) > interval {
		ss.lastFileLogTime = now.Truncate(interval)
		rollingFile = true
	}

	tpl := parseFileNameFormat(ss.option.FileNameFormat, ss.lastFileLogTime)
	if len(ss.fileName) == 0 || ss.template != tpl {
		fresh := len(ss.fileName) == 0
		ss.template = tpl
		ss.index = 0

		fullName := filepath.Join(ss.option.LogPath, tpl.name(ss.index))
		if fresh && tpl.hasIndex() {
			for fileExists(fullName) {
				ss.index++
				fullName = filepath.Join(ss.option.LogPath, tpl.name(ss.index))
			}
		}
		ss.fileName = fullName
		return ss.fileName
	}

	if !tpl.hasIndex() {
		return ss.fileName
	}

	// 模板未变时有两种情况需要增加索引：
	// 1. 时间未跨越模板粒度，但文件大小超过限制
	// 2. 模板时间粒度大于滚动间隔
	if !rollingFile {
		if stat, err := os.Stat(ss.fileName); err == nil && stat.Size() > int64(ss.option.FileRollingMegabytes)*1024*1024 {
			rollingFile = true
		}
	}

	if rollingFile {
		ss.index++
		ss.fileName = filepath.Join(ss.option.LogPath, tpl.name(ss.index))
	}
	return ss.fileName
}

func fileExists(name string) bool {
	if _, err := os.Stat(name); err == nil {
		return true
	}
	_, err := os.Stat(name + ".gz")
	return err == nil
}
