// Package api exposes the ordering assistant over HTTP: JSON endpoints for
// session, chat, cart, and checkout, plus a websocket for streaming chat.
package api

import (
	"net/http"
	"strconv"
	"sync"

	"tiffin/internal/monitoring"
	"tiffin/internal/orchestrator"
	"tiffin/internal/rl"

	"github.com/gin-gonic/gin"
)

// Server is the HTTP front of the ordering assistant.
type Server struct {
	Router       *gin.Engine
	orchestrator *orchestrator.Orchestrator
	monitor      *monitoring.Monitor

	mu       sync.RWMutex
	sessions map[string]*orchestrator.Session
}

// NewServer creates the API server and registers its routes.
func NewServer(orc *orchestrator.Orchestrator, monitor *monitoring.Monitor) *Server {
	server := &Server{
		Router:       gin.Default(),
		orchestrator: orc,
		monitor:      monitor,
		sessions:     make(map[string]*orchestrator.Session),
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes() {
	s.Router.GET("/health", s.Health)

	api := s.Router.Group("/api")
	{
		api.POST("/init", s.InitSession)
		api.POST("/chat", s.Chat)
		api.GET("/cart", s.GetCart)
		api.POST("/add_to_cart", s.AddToCart)
		api.POST("/checkout", s.Checkout)
		api.POST("/feedback", s.Feedback)
		api.GET("/rl/summary", s.RLSummary)
	}

	s.Router.GET("/ws", s.ChatSocket)
}

// Health reports liveness plus the coarse runtime counters.
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"metrics": s.monitor.GetMetrics(),
	})
}

// InitSession creates a conversation session for a user.
func (s *Server) InitSession(c *gin.Context) {
	var request struct {
		UserID int `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, welcome := s.orchestrator.NewSession(request.UserID)

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"session_id": session.ID,
		"user_id":    session.UserID,
		"user_name":  session.UserName,
		"message":    welcome,
	})
}

// Chat processes one user message within a session.
func (s *Server) Chat(c *gin.Context) {
	var request struct {
		SessionID string `json:"session_id" binding:"required"`
		Message   string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, ok := s.session(request.SessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return
	}

	response := s.orchestrator.Chat(c.Request.Context(), session, request.Message)
	c.JSON(http.StatusOK, response)
}

// GetCart returns the session's cart state.
func (s *Server) GetCart(c *gin.Context) {
	session, ok := s.session(c.Query("session_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return
	}
	c.JSON(http.StatusOK, s.orchestrator.CartState(session))
}

// AddToCart adds an item directly, outside the conversational flow.
func (s *Server) AddToCart(c *gin.Context) {
	var request struct {
		SessionID string `json:"session_id" binding:"required"`
		ItemID    int    `json:"item_id" binding:"required"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, ok := s.session(request.SessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return
	}

	state, err := s.orchestrator.AddToCart(session, request.ItemID, request.Quantity)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "cart": state})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": state})
}

// Checkout completes the session's order.
func (s *Server) Checkout(c *gin.Context) {
	var request struct {
		SessionID string `json:"session_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, ok := s.session(request.SessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return
	}

	result := s.orchestrator.Checkout(session)
	if !result.Success {
		c.JSON(http.StatusUnprocessableEntity, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Feedback applies an explicit rating to the learning loop.
func (s *Server) Feedback(c *gin.Context) {
	var request struct {
		UserID int     `json:"user_id" binding:"required"`
		ItemID int     `json:"item_id" binding:"required"`
		Score  float64 `json:"score"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.orchestrator.Feedback(request.UserID, request.ItemID, request.Score); err != nil {
		if err == rl.ErrInvalidIdentifier || err == rl.ErrInvalidScore {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RLSummary reports the learning state for a user.
func (s *Server) RLSummary(c *gin.Context) {
	userID, err := strconv.Atoi(c.Query("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id must be an integer"})
		return
	}

	summary, err := s.orchestrator.Summary(userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) session(id string) (*orchestrator.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}
