// internal/websocket/server.go
// Package websocket serves the App's exported methods as an RPC surface
// for browser frontends, mirroring the bindings the desktop build gets
// from the runtime bridge.
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // local use only
	},
}

// Server exposes the App surface over websocket RPC. Clients connect to
// /ws, issue rpc_request messages, and receive rpc_response and event
// messages back.
type Server struct {
	addr    string
	authKey string
	router  *Router

	mu      sync.RWMutex
	clients map[string]*Client

	httpServer *http.Server
	port       int
}

// NewServer builds a server routing calls to app's exported methods.
// An empty addr binds an ephemeral loopback port. When FUNEDIT_AUTH_KEY
// is set, connections must present it in the X-Auth-Key header.
func NewServer(app interface{}, addr string) *Server {
	if addr == "" {
		addr = "127.0.0.1:0"
	}
	return &Server{
		addr:    addr,
		authKey: os.Getenv("FUNEDIT_AUTH_KEY"),
		router:  NewRouter(app),
		clients: make(map[string]*Client),
	}
}

// Start binds the listener and begins serving. It returns the bound
// port, which is also printed so a wrapping launcher can read it.
func (s *Server) Start(ctx context.Context) (int, error) {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return 0, fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	s.port = listener.Addr().(*net.TCPAddr).Port

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	s.httpServer = &http.Server{Handler: mux}

	go func() {
		if err := s.httpServer.Serve(listener); err != http.ErrServerClosed {
			log.Printf("websocket server: %v", err)
		}
	}()

	fmt.Printf("WS_PORT:%d\n", s.port)
	return s.port, nil
}

// Stop disconnects all clients and shuts the listener down.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	for _, c := range s.clients {
		c.Close()
	}
	s.clients = make(map[string]*Client)
	s.mu.Unlock()

	return s.httpServer.Shutdown(ctx)
}

// GetPort returns the bound port, zero before Start.
func (s *Server) GetPort() int { return s.port }

// BroadcastEvent pushes an event to every connected client. Implements
// eventhub.Broadcaster.
func (s *Server) BroadcastEvent(eventType string, payload interface{}) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.clients {
		c.SendEvent(eventType, payload)
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if s.authKey != "" && r.Header.Get("X-Auth-Key") != s.authKey {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade: %v", err)
		return
	}

	client := newClient(conn)
	s.register(client)
	defer s.unregister(client)

	go client.writeLoop()

	err = client.readLoop(func(data []byte) {
		s.dispatch(client, data)
	})
	if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
		log.Printf("websocket read: %v", err)
	}
}

func (s *Server) register(c *Client) {
	s.mu.Lock()
	s.clients[c.ID()] = c
	s.mu.Unlock()
}

func (s *Server) unregister(c *Client) {
	s.mu.Lock()
	delete(s.clients, c.ID())
	s.mu.Unlock()
	c.Close()
}

// dispatch decodes one inbound frame and routes rpc_request messages
// through the router. Unknown kinds are dropped.
func (s *Server) dispatch(client *Client, data []byte) {
	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("websocket: invalid message: %v", err)
		return
	}
	if msg.Kind != "rpc_request" || msg.Request == nil {
		return
	}

	result, err := s.router.Call(msg.Request.Method, msg.Request.Params)
	var errMsg string
	if err != nil {
		errMsg = err.Error()
	}
	if err := client.SendResponse(msg.Request.ID, result, errMsg); err != nil {
		log.Printf("websocket: send response: %v", err)
	}
}
