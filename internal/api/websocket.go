package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"tiffin/internal/orchestrator"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// wsRequest is an inbound websocket frame. The first frame must carry a
// user_id to open a session; later frames carry chat messages.
type wsRequest struct {
	UserID  int    `json:"user_id,omitempty"`
	Message string `json:"message,omitempty"`
}

// wsConnection maintains one chat connection with a client.
type wsConnection struct {
	conn    *websocket.Conn
	send    chan []byte
	server  *Server
	session *orchestrator.Session
}

// ChatSocket upgrades the request and runs the chat loop over websocket.
func (s *Server) ChatSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	wsConn := &wsConnection{
		conn:   conn,
		send:   make(chan []byte, 256),
		server: s,
	}

	go wsConn.writePump()
	go wsConn.readPump()
}

// readPump pumps messages from the websocket connection to the pipeline
func (c *wsConnection) readPump() {
	defer func() {
		close(c.send)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(64 * 1024)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
		c.handleMessage(message)
	}
}

// handleMessage dispatches one inbound frame.
func (c *wsConnection) handleMessage(raw []byte) {
	var request wsRequest
	if err := json.Unmarshal(raw, &request); err != nil {
		c.reply(map[string]interface{}{"error": "invalid message"})
		return
	}

	if c.session == nil {
		if request.UserID == 0 {
			c.reply(map[string]interface{}{"error": "send user_id first to open a session"})
			return
		}

		session, welcome := c.server.orchestrator.NewSession(request.UserID)
		c.server.mu.Lock()
		c.server.sessions[session.ID] = session
		c.server.mu.Unlock()
		c.session = session

		c.reply(map[string]interface{}{
			"session_id": session.ID,
			"message":    welcome,
		})
		return
	}

	if request.Message == "" {
		c.reply(map[string]interface{}{"error": "empty message"})
		return
	}

	response := c.server.orchestrator.Chat(context.Background(), c.session, request.Message)
	c.reply(response)
}

func (c *wsConnection) reply(payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to encode websocket reply: %v", err)
		return
	}
	c.send <- data
}

// writePump pumps messages from the server to the websocket connection
func (c *wsConnection) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
