package compound_test

import (
	"sync"
	"testing"

	"github.com/mogud/snowlog/core/logging"
	"github.com/mogud/snowlog/core/logging/handler/compound"
	"github.com/mogud/snowlog/core/option"
	"github.com/stretchr/testify/assert"
)

type recorder struct {
	lock sync.Mutex
	data []*logging.LogData
}

func (ss *recorder) Log(data *logging.LogData) {
	ss.lock.Lock()
	defer ss.lock.Unlock()
	ss.data = append(ss.data, data)
}

func TestCompoundFanOut(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	h := compound.NewHandler(a)
	h.AddHandler(b)
	assert.Equal(t, 2, h.Len())

	logging.NewDefaultLogger("p", h, nil).Eventf("hello %s", "world")

	assert.Len(t, a.data, 1)
	assert.Len(t, b.data, 1)
	assert.Equal(t, logging.Event, a.data[0].Level)
	assert.Equal(t, "hello world", b.data[0].Message())
}

func TestCompoundStampsNameAndID(t *testing.T) {
	r := &recorder{}
	h := compound.NewHandler(r)
	h.Construct(option.Value(&compound.Option{Name: "node-1", ID: "42"}))

	logging.NewDefaultLogger("p", h, nil).Infof("a")
	logging.NewDefaultLogger("p", h, func(d *logging.LogData) { d.Name = "custom" }).Infof("b")

	assert.Equal(t, "node-1", r.data[0].Name)
	assert.Equal(t, "42", r.data[0].ID)
	assert.Equal(t, "custom", r.data[1].Name)
	assert.Equal(t, "42", r.data[1].ID)
}
