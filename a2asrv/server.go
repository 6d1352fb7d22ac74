package a2asrv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/davidvonthenen/a2a-simple/a2a"
	"github.com/davidvonthenen/a2a-simple/logging"
)

// ServerOptions holds dependency and configuration overrides passed to NewServer.
type ServerOptions struct {
	// TaskStore persists task snapshots. Defaults to an in-memory store.
	TaskStore TaskStore
	// QueueSize sets event channel buffering per request.
	QueueSize int
	// Logger receives server telemetry. Defaults to a no-op logger.
	Logger logging.Logger
}

// Server exposes one agent over HTTP: the agent card under the well-known
// path and the JSON-RPC endpoint at the root. message/stream responses are
// delivered as Server-Sent Events.
type Server struct {
	card    a2a.AgentCard
	handler *Handler
	logger  logging.Logger
	httpSrv *http.Server
}

// NewServer wires an executor into a ready-to-start HTTP server.
func NewServer(addr string, card a2a.AgentCard, executor Executor, optFns ...func(o *ServerOptions)) *Server {
	opts := ServerOptions{
		TaskStore: NewInMemoryTaskStore(),
		QueueSize: DefaultQueueSize,
		Logger:    logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	handler := NewHandler(executor, func(o *HandlerOptions) {
		o.TaskStore = opts.TaskStore
		o.QueueSize = opts.QueueSize
		o.Logger = opts.Logger
	})

	s := &Server{
		card:    card,
		handler: handler,
		logger:  opts.Logger,
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), RequestLogger(opts.Logger), CORSMiddleware())
	engine.GET(a2a.WellKnownCardPath, s.handleCard)
	engine.POST("/", s.handleRPC)

	s.httpSrv = &http.Server{Addr: addr, Handler: engine}

	return s
}

// HTTPHandler returns the server's handler for use with httptest servers.
func (s *Server) HTTPHandler() http.Handler { return s.httpSrv.Handler }

// Start listens until Shutdown is called or the listener fails.
func (s *Server) Start() error {
	s.logger.Info("a2asrv.listening", "addr", s.httpSrv.Addr, "agent", s.card.Name)

	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleCard(c *gin.Context) {
	c.JSON(http.StatusOK, s.card)
}

// handleRPC dispatches one JSON-RPC request. Protocol errors are returned as
// JSON-RPC error envelopes with HTTP 200, matching A2A conventions.
func (s *Server) handleRPC(c *gin.Context) {
	var req a2a.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, a2a.NewErrorResponse(nil, a2a.NewParseError()))
		return
	}

	if req.JSONRPC != a2a.Version || req.Method == "" {
		c.JSON(http.StatusOK, a2a.NewErrorResponse(req.ID, a2a.NewInvalidRequestError()))
		return
	}

	ctx := c.Request.Context()

	switch req.Method {
	case a2a.MethodMessageSend:
		var params a2a.MessageSendParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			c.JSON(http.StatusOK, a2a.NewErrorResponse(req.ID, a2a.NewInvalidParamsError(err.Error())))
			return
		}
		result, err := s.handler.OnMessageSend(ctx, params)
		s.respond(c, req.ID, result, err)
	case a2a.MethodMessageStream:
		var params a2a.MessageSendParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			c.JSON(http.StatusOK, a2a.NewErrorResponse(req.ID, a2a.NewInvalidParamsError(err.Error())))
			return
		}
		events, err := s.handler.OnMessageStream(ctx, params)
		if err != nil {
			c.JSON(http.StatusOK, a2a.NewErrorResponse(req.ID, toRPCError(err)))
			return
		}
		s.streamEvents(c, req.ID, events)
	case a2a.MethodTasksGet:
		var params a2a.TaskQueryParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			c.JSON(http.StatusOK, a2a.NewErrorResponse(req.ID, a2a.NewInvalidParamsError(err.Error())))
			return
		}
		task, err := s.handler.OnGetTask(ctx, params)
		s.respond(c, req.ID, task, err)
	case a2a.MethodTasksCancel:
		var params a2a.TaskIDParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			c.JSON(http.StatusOK, a2a.NewErrorResponse(req.ID, a2a.NewInvalidParamsError(err.Error())))
			return
		}
		task, err := s.handler.OnCancelTask(ctx, params)
		s.respond(c, req.ID, task, err)
	default:
		c.JSON(http.StatusOK, a2a.NewErrorResponse(req.ID, a2a.NewMethodNotFoundError(req.Method)))
	}
}

func (s *Server) respond(c *gin.Context, id any, result any, err error) {
	if err != nil {
		c.JSON(http.StatusOK, a2a.NewErrorResponse(id, toRPCError(err)))
		return
	}

	resp, err := a2a.NewResponse(id, result)
	if err != nil {
		c.JSON(http.StatusOK, a2a.NewErrorResponse(id, a2a.NewInternalError(err.Error())))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// streamEvents writes one SSE data frame per protocol event, each framing a
// complete JSON-RPC response envelope.
func (s *Server) streamEvents(c *gin.Context, id any, events <-chan a2a.Event) {
	header := c.Writer.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	for ev := range events {
		resp, err := a2a.NewResponse(id, ev)
		if err != nil {
			s.logger.Error("a2asrv.stream.marshal_failed", "error", err.Error())
			continue
		}

		data, err := json.Marshal(resp)
		if err != nil {
			s.logger.Error("a2asrv.stream.marshal_failed", "error", err.Error())
			continue
		}

		if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", data); err != nil {
			// Client went away; the request context cancellation stops the
			// event pump.
			s.logger.Debug("a2asrv.stream.client_gone", "error", err.Error())
			return
		}
		c.Writer.Flush()
	}
}

// toRPCError maps handler errors onto JSON-RPC error objects, passing
// protocol errors through untouched.
func toRPCError(err error) *a2a.Error {
	var rpcErr *a2a.Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}

	return a2a.NewInternalError(err.Error())
}
