package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"rugwatch/internal/domain"
)

// WSConfig configures WebSocket feed behavior.
type WSConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultWSConfig returns default WebSocket configuration.
func DefaultWSConfig() WSConfig {
	return WSConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// WSDeploymentSource streams contract deployments from a WebSocket feed.
// The feed pushes one JSON deployment event per message; the source
// reconnects with exponential backoff and resubscribes on connection loss.
type WSDeploymentSource struct {
	endpoint string
	config   WSConfig

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	events chan *domain.ContractRecord

	// done signals shutdown
	done chan struct{}
	wg   sync.WaitGroup

	// reconnecting indicates reconnection in progress
	reconnecting atomic.Bool

	subscribed atomic.Bool
}

// deploymentMessage is the wire shape of a feed event.
type deploymentMessage struct {
	Address    string `json:"address"`
	Deployer   string `json:"deployer"`
	DeployedAt int64  `json:"deployed_at"`
}

type wsSubscribeRequest struct {
	Op      string `json:"op"`
	Channel string `json:"channel"`
}

// NewWSDeploymentSource creates the source and connects to the endpoint.
func NewWSDeploymentSource(ctx context.Context, endpoint string, config *WSConfig) (*WSDeploymentSource, error) {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}

	s := &WSDeploymentSource{
		endpoint: endpoint,
		config:   cfg,
		// Blocking send ensures no event loss; buffer absorbs burst
		events: make(chan *domain.ContractRecord, 10000),
		done:   make(chan struct{}),
	}

	if err := s.connect(ctx); err != nil {
		return nil, err
	}

	return s, nil
}

// connect establishes the WebSocket connection.
func (s *WSDeploymentSource) connect(ctx context.Context) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, s.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	s.conn = conn
	return nil
}

// Subscribe sends the subscribe request and starts the reader and ping
// loops. Only one subscription per source.
func (s *WSDeploymentSource) Subscribe(ctx context.Context) (<-chan *domain.ContractRecord, error) {
	if s.closed.Load() {
		return nil, fmt.Errorf("source closed")
	}
	if s.subscribed.Swap(true) {
		return nil, fmt.Errorf("already subscribed")
	}

	if err := s.sendSubscribe(); err != nil {
		return nil, err
	}

	s.wg.Add(1)
	go s.readLoop()

	s.wg.Add(1)
	go s.pingLoop()

	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.done:
		}
	}()

	return s.events, nil
}

func (s *WSDeploymentSource) sendSubscribe() error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.conn == nil {
		return fmt.Errorf("not connected")
	}

	req := wsSubscribeRequest{Op: "subscribe", Channel: "deployments"}
	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := s.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("write subscribe: %w", err)
	}
	return nil
}

// Close closes the connection and the event channel.
func (s *WSDeploymentSource) Close() error {
	if s.closed.Swap(true) {
		return nil // Already closed
	}

	close(s.done)

	s.connMu.Lock()
	if s.conn != nil {
		s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.conn.Close()
	}
	s.connMu.Unlock()

	s.wg.Wait()
	close(s.events)
	return nil
}

// readLoop reads feed messages and dispatches deployment records.
func (s *WSDeploymentSource) readLoop() {
	defer s.wg.Done()

	reconnectDelay := s.config.ReconnectDelay

	for !s.closed.Load() {
		s.connMu.Lock()
		conn := s.conn
		s.connMu.Unlock()

		if conn == nil {
			select {
			case <-s.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if s.closed.Load() {
				return
			}

			// Connection error - attempt reconnect with exponential backoff
			if !s.reconnecting.Swap(true) {
				go s.reconnect(reconnectDelay)
			}

			reconnectDelay = reconnectDelay * 2
			if reconnectDelay > s.config.MaxReconnectDelay {
				reconnectDelay = s.config.MaxReconnectDelay
			}

			select {
			case <-s.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		// Reset delay on successful read
		reconnectDelay = s.config.ReconnectDelay

		s.handleMessage(message)
	}
}

// reconnect attempts to reconnect and resubscribe.
func (s *WSDeploymentSource) reconnect(delay time.Duration) {
	defer s.reconnecting.Store(false)

	if s.closed.Load() {
		return
	}

	select {
	case <-s.done:
		return
	case <-time.After(delay):
	}

	s.connMu.Lock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.connect(ctx); err != nil {
		// Reconnect failed, will retry on next read error
		return
	}

	if err := s.sendSubscribe(); err != nil {
		log.Printf("[ws-deploy] resubscribe failed: %v", err)
	}
}

// handleMessage parses a feed message into a deployment record.
func (s *WSDeploymentSource) handleMessage(message []byte) {
	var msg deploymentMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Printf("[ws-deploy] skip malformed message: %v", err)
		return
	}
	if msg.Address == "" || msg.Deployer == "" {
		return
	}

	record := &domain.ContractRecord{
		Address:    msg.Address,
		Deployer:   msg.Deployer,
		DeployedAt: msg.DeployedAt,
	}

	// Block until we can send - never drop events
	select {
	case s.events <- record:
	case <-s.done:
	}
}

// pingLoop sends periodic ping frames to keep the connection alive.
func (s *WSDeploymentSource) pingLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.connMu.Lock()
			if s.conn != nil {
				s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
				if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					// Connection might be dead, reader will handle reconnect
				}
			}
			s.connMu.Unlock()
		}
	}
}
