package host

import (
	"context"
	_ "embed"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/davidvonthenen/a2a-simple/a2asrv"
	"github.com/davidvonthenen/a2a-simple/logging"
)

//go:embed index.html
var indexPage []byte

// ServerOptions holds configuration overrides passed to NewServer.
type ServerOptions struct {
	// Logger receives server telemetry. Defaults to a no-op logger.
	Logger logging.Logger
}

// Server exposes the routing agent over HTTP: an embedded chat page at the
// root, a websocket endpoint streaming per-turn replies, and a plain REST
// endpoint for programmatic use.
type Server struct {
	agent    *RoutingAgent
	logger   logging.Logger
	upgrader websocket.Upgrader
	httpSrv  *http.Server
}

// NewServer wires the routing agent into a ready-to-start HTTP server.
func NewServer(addr string, agent *RoutingAgent, optFns ...func(o *ServerOptions)) *Server {
	opts := ServerOptions{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	s := &Server{
		agent:  agent,
		logger: opts.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Same posture as the CORS middleware: the chat page may be
			// served from anywhere in this demo.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), a2asrv.RequestLogger(opts.Logger), a2asrv.CORSMiddleware())
	engine.GET("/", s.handleIndex)
	engine.GET("/ws", s.handleWebSocket)
	engine.POST("/api/chat", s.handleChat)
	engine.GET("/healthz", s.handleHealth)

	s.httpSrv = &http.Server{Addr: addr, Handler: engine}

	return s
}

// HTTPHandler returns the server's handler for use with httptest servers.
func (s *Server) HTTPHandler() http.Handler { return s.httpSrv.Handler }

// Start listens until Shutdown is called or the listener fails.
func (s *Server) Start() error {
	s.logger.Info("host.listening", "addr", s.httpSrv.Addr, "agents", len(s.agent.RemoteAgents()))

	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// chatRequest is the inbound payload for both chat surfaces. ContextID is
// only meaningful on the REST endpoint; each websocket connection carries an
// implicit session.
type chatRequest struct {
	Message   string `json:"message"`
	ContextID string `json:"contextId"`
}

// chatResponse is the REST endpoint's reply envelope.
type chatResponse struct {
	ContextID string  `json:"contextId"`
	Replies   []Reply `json:"replies"`
}

func (s *Server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexPage)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "agents": len(s.agent.RemoteAgents())})
}

// handleChat runs one turn for a stateless client. A missing context id
// starts a fresh session and the assigned id is echoed back for follow-ups.
func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message must not be empty"})
		return
	}

	contextID := req.ContextID
	if contextID == "" {
		contextID = uuid.NewString()
	}

	replies, err := s.agent.HandleMessage(c.Request.Context(), message, contextID, nil)
	if err != nil {
		s.logger.Error("host.chat.turn_failed", "context_id", contextID, "error", err.Error())
		c.JSON(http.StatusBadGateway, gin.H{"error": "the host agent could not complete the request"})
		return
	}

	c.JSON(http.StatusOK, chatResponse{ContextID: contextID, Replies: replies})
}

// handleWebSocket serves the chat page's connection. Each connection is one
// session; every inbound {"message": ...} triggers a turn whose replies are
// pushed as individual frames, so the delegation status line shows up while
// the remote agent is still working.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error response.
		s.logger.Warn("host.ws.upgrade_failed", "error", err.Error())
		return
	}
	defer conn.Close()

	sessionID := uuid.NewString()
	s.logger.Info("host.ws.connected", "session_id", sessionID)

	for {
		var req chatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("host.ws.read_failed", "session_id", sessionID, "error", err.Error())
			}
			return
		}

		message := strings.TrimSpace(req.Message)
		if message == "" {
			if err := conn.WriteJSON(Reply{Kind: ReplyKindError, Text: "Please enter a message."}); err != nil {
				return
			}
			continue
		}

		emit := func(r Reply) {
			if err := conn.WriteJSON(r); err != nil {
				s.logger.Warn("host.ws.write_failed", "session_id", sessionID, "error", err.Error())
			}
		}

		if _, err := s.agent.HandleMessage(c.Request.Context(), message, sessionID, emit); err != nil {
			s.logger.Error("host.ws.turn_failed", "session_id", sessionID, "error", err.Error())

			if err := conn.WriteJSON(Reply{
				Kind: ReplyKindError,
				Text: "Something went wrong while handling your message. Please try again.",
			}); err != nil {
				return
			}
		}
	}
}
