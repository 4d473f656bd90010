package task

import (
	"fmt"
	"sync"

	assert "github.com/arl/assertgo"
	"github.com/panjf2000/ants/v2"
)

const defaultPoolSize = 1024

var (
	once sync.Once
	p    *ants.PoolWithFunc
)

func pool() *ants.PoolWithFunc {
	once.Do(func() {
		var err error
		p, err = ants.NewPoolWithFunc(defaultPoolSize, func(f any) {
			(f.(func()))()
		}, ants.WithNonblocking(false))

		if err != nil {
			panic(fmt.Sprintf("init goroutine pool: %v", err))
		}
	})
	return p
}

// Execute 在协程池中执行 f，池已关闭时退化为直接起协程
func Execute(f func()) {
	assert.True(f != nil, "task.Execute: nil func")

	if err := pool().Invoke(f); err != nil {
		go f()
	}
}
