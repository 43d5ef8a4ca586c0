// Package server exposes conversation sessions over HTTP.
package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/austiecodes/vera/internal/engine"
	"github.com/austiecodes/vera/internal/session"
)

// ChatRequest is the body of POST /chat. An empty SessionID starts a new
// conversation.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message" binding:"required"`
}

// ChatResponse is returned by POST /chat. Warning is set when the reply
// was delivered but not saved.
type ChatResponse struct {
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
	Warning   string `json:"warning,omitempty"`
}

// Server routes HTTP requests to sessions.
type Server struct {
	sessions *session.Manager
	metrics  *Metrics
	router   *gin.Engine
}

// New builds the router. metrics may be nil.
func New(sessions *session.Manager, apiKey string, metrics *Metrics) *Server {
	if metrics == nil {
		metrics = NewMetrics()
	}
	s := &Server{sessions: sessions, metrics: metrics}

	r := gin.New()
	r.Use(gin.Recovery(), s.instrument())

	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	authed := r.Group("/", bearerAuth(apiKey))
	authed.POST("/chat", s.handleChat)
	authed.DELETE("/sessions/:id", s.handleDeleteSession)

	s.router = r
	return s
}

// Handler returns the http.Handler to serve.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.requests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		s.metrics.latency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	sess, err := s.sessions.Get(c.Request.Context(), req.SessionID)
	if err != nil {
		slog.Error("could not open session", "session_id", req.SessionID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not open session"})
		return
	}

	reply, err := sess.Respond(c.Request.Context(), req.Message)

	var persistErr *engine.PersistError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, ChatResponse{SessionID: sess.ID, Response: reply})
	case errors.As(err, &persistErr):
		s.metrics.persistFailures.Inc()
		slog.Warn("reply not saved", "session_id", sess.ID, "error", err)
		c.JSON(http.StatusOK, ChatResponse{
			SessionID: sess.ID,
			Response:  reply,
			Warning:   "response was not saved to long-term memory",
		})
	case errors.Is(err, session.ErrBusy):
		s.metrics.busyRejections.Inc()
		c.JSON(http.StatusConflict, gin.H{"session_id": sess.ID, "error": err.Error()})
	case errors.Is(err, engine.ErrGeneration):
		slog.Error("generation failed", "session_id", sess.ID, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"session_id": sess.ID, "error": "model request failed"})
	default:
		slog.Error("chat failed", "session_id", sess.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"session_id": sess.ID, "error": "internal error"})
	}
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	if !s.sessions.Delete(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
