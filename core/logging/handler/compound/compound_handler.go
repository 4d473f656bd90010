package compound

import (
	"sync"

	"github.com/mogud/snowlog/core/logging"
	"github.com/mogud/snowlog/core/option"
)

var _ logging.ILogHandler = (*Handler)(nil)

type Option struct {
	Name string `koanf:"Name"` // 记录未设置 Name 时使用
	ID   string `koanf:"ID"`   // 记录未设置 ID 时使用
}

// Handler 将日志分发给所有子 handler
type Handler struct {
	lock  sync.RWMutex
	proxy []logging.ILogHandler
	opt   *Option
}

func NewHandler(handlers ...logging.ILogHandler) *Handler {
	return &Handler{
		proxy: handlers,
		opt:   &Option{},
	}
}

func (ss *Handler) Construct(opt *option.Option[Option]) {
	ss.lock.Lock()
	ss.opt = opt.Get()
	ss.lock.Unlock()

	opt.OnChanged(func() {
		ss.lock.Lock()
		defer ss.lock.Unlock()
		ss.opt = opt.Get()
	})
}

func (ss *Handler) Log(data *logging.LogData) {
	ss.lock.RLock()
	opt := ss.opt
	proxy := ss.proxy
	ss.lock.RUnlock()

	if (len(data.Name) == 0 && len(opt.Name) > 0) || (len(data.ID) == 0 && len(opt.ID) > 0) {
		d := *data
		if len(d.Name) == 0 {
			d.Name = opt.Name
		}
		if len(d.ID) == 0 {
			d.ID = opt.ID
		}
		data = &d
	}

	for _, handler := range proxy {
		handler.Log(data)
	}
}

func (ss *Handler) AddHandler(handler logging.ILogHandler) {
	ss.lock.Lock()
	defer ss.lock.Unlock()

	proxy := make([]logging.ILogHandler, 0, len(ss.proxy)+1)
	proxy = append(proxy, ss.proxy...)
	ss.proxy = append(proxy, handler)
}

func (ss *Handler) Len() int {
	ss.lock.RLock()
	defer ss.lock.RUnlock()
	return len(ss.proxy)
}
