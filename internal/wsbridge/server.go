package wsbridge

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"tally/internal/logging"
	"tally/internal/protocol"
)

// AttachFunc connects a request handler to a freshly accepted bridge and
// returns the function that detaches it again.
type AttachFunc func(protocol.Bridge) (func(), error)

// Server accepts websocket clients and hands each connection to the
// attached request handler. It also fans notifications out to every
// connected client, which makes it the daemon's Publisher.
type Server struct {
	logger   *slog.Logger
	attach   AttachFunc
	upgrader websocket.Upgrader

	listener   net.Listener
	httpServer *http.Server

	mu     sync.Mutex
	conns  map[*Conn]struct{}
	closed bool

	wg sync.WaitGroup
}

// NewServer binds the listener immediately so the caller learns the
// effective address before serving. Bind may name port 0.
func NewServer(bind string, attach AttachFunc, logger *slog.Logger) (*Server, error) {
	if attach == nil {
		return nil, errors.New("wsbridge server requires an attach function")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", bind, err)
	}

	s := &Server{
		logger:   logging.NewComponentLogger(logger, "wsbridge"),
		attach:   attach,
		listener: listener,
		conns:    make(map[*Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Clients are local editor processes; the daemon binds to
			// loopback so origin checking adds nothing here.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	s.httpServer = &http.Server{
		Handler:      mux,
		ReadTimeout:  0,
		WriteTimeout: 0,
	}
	return s, nil
}

// Addr reports the bound address, useful when the configured port was 0.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Serve accepts connections until Close is called.
func (s *Server) Serve() {
	s.logger.Info("listening", logging.String("addr", s.Addr()))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Warn("serve ended", logging.Error(err))
		}
	}()
}

// Publish broadcasts a notification to every connected client. Send
// failures close the offending connection and never block other clients.
func (s *Server) Publish(notificationType string, payload any) {
	notification, err := protocol.NewNotification(notificationType, payload)
	if err != nil {
		s.logger.Warn("notification dropped", logging.Error(err))
		return
	}

	s.mu.Lock()
	conns := make([]*Conn, 0, len(s.conns))
	for conn := range s.conns {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	for _, conn := range conns {
		if err := conn.Send(notification); err != nil {
			s.logger.Debug("client dropped during broadcast", logging.Error(err))
			conn.Close()
		}
	}
}

// ClientCount reports the number of connected clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Close stops accepting, disconnects every client, and waits for the
// serving goroutines to finish.
func (s *Server) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	conns := make([]*Conn, 0, len(s.conns))
	for conn := range s.conns {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
	s.httpServer.Close()
	s.wg.Wait()
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", logging.Error(err))
		return
	}

	conn := newConn(ws, s.logger)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.conns[conn] = struct{}{}
	s.mu.Unlock()

	detach, err := s.attach(conn)
	if err != nil {
		s.logger.Warn("attach failed", logging.Error(err))
		s.drop(conn)
		conn.Close()
		return
	}

	s.logger.Info("client connected", logging.String("remote", r.RemoteAddr))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		<-conn.Done()
		detach()
		s.drop(conn)
		s.logger.Info("client disconnected", logging.String("remote", r.RemoteAddr))
	}()
}

func (s *Server) drop(conn *Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

// Dial connects to a daemon at addr and returns the bridge for a protocol
// manager. addr is a host:port; the websocket endpoint is fixed at /ws.
func Dial(addr string, timeout time.Duration, logger *slog.Logger) (*Conn, error) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	dialer := websocket.Dialer{HandshakeTimeout: timeout}
	ws, _, err := dialer.Dial(fmt.Sprintf("ws://%s/ws", addr), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return newConn(ws, logger), nil
}
