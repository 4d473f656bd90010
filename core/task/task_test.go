package task_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/mogud/snowlog/core/task"
	"github.com/stretchr/testify/assert"
)

func TestExecute(t *testing.T) {
	var count atomic.Int32
	wg := sync.WaitGroup{}
	for i := 0; i < 100; i++ {
		wg.Add(1)
		task.Execute(func() {
			defer wg.Done()
			count.Add(1)
		})
	}
	wg.Wait()
	assert.Equal(t, int32(100), count.Load())
}
