package levelhttp

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/mogud/snowlog/core/logging"
	"github.com/valyala/fasthttp"
)

// Switch 可在运行时修改级别集合的 handler
type Switch interface {
	Levels() logging.LogLevel
	SetLevels(levels logging.LogLevel)
}

type levelResponse struct {
	Levels      string `json:"Levels"`
	Raw         uint32 `json:"Raw"`
	Description string `json:"Description"`
}

type errorResponse struct {
	Error string `json:"Error"`
}

// Server 通过 HTTP 查看和修改级别
//
//	GET /level
//	PUT|POST /level?levels=Debug|Error
type Server struct {
	pattern  string
	sw       Switch
	logger   logging.ILogger
	handlers map[string]fasthttp.RequestHandler
}

func NewServer(pattern string, sw Switch, logger logging.ILogger) *Server {
	ss := &Server{
		pattern:  pattern,
		sw:       sw,
		logger:   logger,
		handlers: make(map[string]fasthttp.RequestHandler),
	}
	ss.handleRequestMethod(http.MethodGet, ss.get)
	ss.handleRequestMethod(http.MethodPut, ss.set)
	ss.handleRequestMethod(http.MethodPost, ss.set)
	return ss
}

func (ss *Server) handleRequestMethod(method string, handler fasthttp.RequestHandler) {
	ss.handlers[method] = handler
}

func (ss *Server) Handler(ctx *fasthttp.RequestCtx) {
	if string(ctx.Path()) != ss.pattern {
		writeJSON(ctx, fasthttp.StatusNotFound, &errorResponse{Error: "not found"})
		return
	}

	h, ok := ss.handlers[string(ctx.Method())]
	if !ok {
		ctx.Response.Header.Set("Allow", "GET, PUT, POST")
		writeJSON(ctx, fasthttp.StatusMethodNotAllowed, &errorResponse{Error: "method not allowed"})
		return
	}
	h(ctx)
}

func (ss *Server) get(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusOK, response(ss.sw.Levels()))
}

func (ss *Server) set(ctx *fasthttp.RequestCtx) {
	expr := string(ctx.QueryArgs().Peek("levels"))
	if len(expr) == 0 {
		expr = string(ctx.PostBody())
	}

	levels, err := logging.ParseLevel(expr)
	if err != nil {
		writeJSON(ctx, fasthttp.StatusBadRequest, &errorResponse{Error: err.Error()})
		return
	}

	old := ss.sw.Levels()
	ss.sw.SetLevels(levels)
	if ss.logger != nil {
		ss.logger.Eventf("levels changed from %s to %s by %v", old.Expr(), levels.Expr(), ctx.RemoteAddr())
	}
	writeJSON(ctx, fasthttp.StatusOK, response(levels))
}

func response(l logging.LogLevel) *levelResponse {
	return &levelResponse{
		Levels:      l.Expr(),
		Raw:         l.RawValue(),
		Description: l.String(),
	}
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	bs, err := jsoniter.ConfigDefault.Marshal(v)
	if err != nil {
		ctx.Error("marshal response: "+err.Error(), fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(bs)
}
