package option

import (
	"sync"

	"github.com/knadh/koanf/v2"
)

// Option 某段配置的当前值，重载后自动更新
type Option[T any] struct {
	lock      sync.RWMutex
	value     *T
	listeners []func()
}

// Value 返回不与任何配置源绑定的 Option
func Value[T any](v *T) *Option[T] {
	return &Option[T]{value: v}
}

func (ss *Option[T]) Get() *T {
	ss.lock.RLock()
	defer ss.lock.RUnlock()
	return ss.value
}

// OnChanged 注册配置变化回调，回调在 Set 或重载的协程中同步执行
func (ss *Option[T]) OnChanged(fn func()) {
	ss.lock.Lock()
	defer ss.lock.Unlock()
	ss.listeners = append(ss.listeners, fn)
}

func (ss *Option[T]) Set(v *T) {
	ss.lock.Lock()
	ss.value = v
	listeners := append([]func(){}, ss.listeners...)
	ss.lock.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// Bind 将 path 处的配置解码为 T，defaults 用于在解码前填充默认值
func Bind[T any](repo *Repository, path string, defaults func(*T)) (*Option[T], error) {
	decode := func(k *koanf.Koanf) (*T, error) {
		v := new(T)
		if defaults != nil {
			defaults(v)
		}
		if len(path) > 0 && !k.Exists(path) {
			return v, nil
		}
		if err := unmarshal(k, path, v); err != nil {
			return nil, err
		}
		return v, nil
	}

	repo.lock.Lock()
	defer repo.lock.Unlock()

	v, err := decode(repo.k)
	if err != nil {
		return nil, err
	}

	opt := Value(v)
	repo.bound = append(repo.bound, func(k *koanf.Koanf) {
		nv, err := decode(k)
		if err != nil {
			repo.reportError(err)
			return
		}
		opt.Set(nv)
	})
	return opt, nil
}
