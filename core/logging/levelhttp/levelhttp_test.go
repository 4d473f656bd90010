package levelhttp_test

import (
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/mogud/snowlog/core/logging"
	"github.com/mogud/snowlog/core/logging/levelhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

type levelSwitch struct {
	v logging.LevelVar
}

func (ss *levelSwitch) Levels() logging.LogLevel          { return ss.v.Load() }
func (ss *levelSwitch) SetLevels(levels logging.LogLevel) { ss.v.Store(levels) }

func do(srv *levelhttp.Server, method, uri, body string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	if len(body) > 0 {
		ctx.Request.SetBodyString(body)
	}
	srv.Handler(ctx)
	return ctx
}

func decode(t *testing.T, ctx *fasthttp.RequestCtx) map[string]any {
	m := map[string]any{}
	require.NoError(t, jsoniter.Unmarshal(ctx.Response.Body(), &m))
	return m
}

func TestGetLevels(t *testing.T) {
	sw := &levelSwitch{}
	sw.SetLevels(logging.Debug | logging.Error)
	srv := levelhttp.NewServer("/level", sw, nil)

	ctx := do(srv, "GET", "/level", "")
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	m := decode(t, ctx)
	assert.Equal(t, "Debug|Error", m["Levels"])
	assert.Equal(t, float64(17), m["Raw"])
	assert.Equal(t, "Unknown", m["Description"])
}

func TestSetLevels(t *testing.T) {
	sw := &levelSwitch{}
	h := &recorder{}
	srv := levelhttp.NewServer("/level", sw, logging.NewDefaultLogger("admin", h, nil))

	ctx := do(srv, "PUT", "/level?levels=%3E%3DWarn", "")
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, logging.Warn|logging.Error, sw.Levels())
	assert.Equal(t, "Warn|Error", decode(t, ctx)["Levels"])
	assert.Equal(t, 1, h.count)

	ctx = do(srv, "POST", "/level", "Event")
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, logging.Event, sw.Levels())
	assert.Equal(t, "Event", decode(t, ctx)["Description"])
}

func TestBadRequests(t *testing.T) {
	sw := &levelSwitch{}
	sw.SetLevels(logging.Info)
	srv := levelhttp.NewServer("/level", sw, nil)

	ctx := do(srv, "PUT", "/level?levels=loud", "")
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
	assert.Equal(t, logging.Info, sw.Levels())

	ctx = do(srv, "DELETE", "/level", "")
	assert.Equal(t, fasthttp.StatusMethodNotAllowed, ctx.Response.StatusCode())

	ctx = do(srv, "GET", "/other", "")
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
}

type recorder struct {
	count int
}

func (ss *recorder) Log(*logging.LogData) {
	ss.count++
}
