package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"tutor-track/internal/shared/auth"
	"tutor-track/internal/shared/util"
)

const (
	wsAuthDeadline = 5 * time.Second
	wsReadDeadline = 60 * time.Second
	wsPingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsClient serializes writes: the keepalive ping loop and the consumer
// fanout both write to the same connection.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *wsClient) writeControl(messageType int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(messageType, nil)
}

// StudentHub holds the live websocket connections, one per student. A
// student who is not connected simply misses frames; the REST reads stay
// authoritative.
type StudentHub struct {
	secret  []byte
	logger  *util.Logger
	mu      sync.RWMutex
	clients map[string]*wsClient
}

func NewStudentHub(secret []byte, logger *util.Logger) *StudentHub {
	return &StudentHub{
		secret:  secret,
		logger:  logger,
		clients: make(map[string]*wsClient),
	}
}

// StudentWSHandler upgrades the connection, then waits for a first frame
// {"type":"auth","token":"Bearer <jwt>"} whose subject matches the path.
// Unauthenticated sockets are dropped after the deadline.
func (hub *StudentHub) StudentWSHandler(w http.ResponseWriter, r *http.Request) {
	instance := "StudentHub.StudentWSHandler"
	studentID := r.PathValue("student_id")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.logger.Warn(instance, fmt.Sprintf("upgrade failed: %v", err))
		return
	}
	defer conn.Close()

	client := &wsClient{conn: conn}
	if !hub.awaitAuth(client, studentID) {
		return
	}

	hub.register(studentID, client)
	defer hub.unregister(studentID, client)
	hub.logger.Info(instance, "student connected: "+studentID)

	conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			hub.logger.Info(instance, "student disconnected: "+studentID)
			return
		case <-ticker.C:
			if err := client.writeControl(websocket.PingMessage); err != nil {
				return
			}
		}
	}
}

func (hub *StudentHub) awaitAuth(client *wsClient, studentID string) bool {
	timer := time.NewTimer(wsAuthDeadline)
	defer timer.Stop()

	authCh := make(chan string, 1)
	go func() {
		for {
			_, msg, err := client.conn.ReadMessage()
			if err != nil {
				return
			}
			var frame wsAuthMessage
			if err := json.Unmarshal(msg, &frame); err != nil {
				continue
			}
			if frame.Type == "auth" {
				authCh <- frame.Token
				return
			}
		}
	}()

	select {
	case token := <-authCh:
		token = strings.TrimPrefix(token, "Bearer ")
		ident, err := auth.VerifyToken(hub.secret, token)
		if err != nil || ident.Role != auth.RoleStudent || ident.UserID != studentID {
			_ = client.writeJSON(wsEnvelope{Type: "error", Message: "invalid token"})
			return false
		}
		_ = client.writeJSON(wsEnvelope{Type: "auth_success", Message: "authenticated"})
		return true
	case <-timer.C:
		_ = client.writeJSON(wsEnvelope{Type: "error", Message: "auth timeout"})
		return false
	}
}

func (hub *StudentHub) register(studentID string, c *wsClient) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	hub.clients[studentID] = c
}

func (hub *StudentHub) unregister(studentID string, c *wsClient) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	if hub.clients[studentID] == c {
		delete(hub.clients, studentID)
	}
}

// SendToStudent pushes one frame to a connected student. A dead connection
// is dropped from the registry; the student reconnects on their own.
func (hub *StudentHub) SendToStudent(studentID string, message interface{}) error {
	hub.mu.RLock()
	client, ok := hub.clients[studentID]
	hub.mu.RUnlock()
	if !ok {
		return nil
	}

	if err := client.writeJSON(message); err != nil {
		hub.unregister(studentID, client)
		return err
	}
	return nil
}

// Connected reports whether a student currently holds a live socket.
func (hub *StudentHub) Connected(studentID string) bool {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	_, ok := hub.clients[studentID]
	return ok
}
