package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"conquest-backend/internal/domain"
	"conquest-backend/internal/service/signaling"
	"conquest-backend/pkg/constants"
	apperrors "conquest-backend/pkg/errors"
	"conquest-backend/pkg/logger"
	"conquest-backend/pkg/metrics"
)

// CallGateway terminates call-signaling websocket connections and bridges
// them to the engine. It tracks clients by connection id so the engine can
// address events to a specific socket, including a superseded one.
type CallGateway struct {
	engine *signaling.Engine

	// Registered clients keyed by connection id
	clients map[uuid.UUID]*callClient
	mu      sync.RWMutex

	metrics *metrics.Metrics

	// Concurrency limit: maxConnections is the maximum number of concurrent
	// WebSocket connections
	maxConnections int
	semaphore      chan struct{}
}

// callClient is one websocket connection. participantID stays Nil until the
// connection sends a register event.
type callClient struct {
	gateway       *CallGateway
	conn          *websocket.Conn
	send          chan *domain.ServerEvent
	connectionID  uuid.UUID
	participantID uuid.UUID
	registered    bool
}

// GetAllowedOrigins returns allowed WebSocket origins from environment or defaults
func GetAllowedOrigins() map[string]bool {
	allowedOrigins := map[string]bool{
		"http://localhost:3000": true,
		"http://localhost:8080": true,
		"http://127.0.0.1:3000": true,
		"http://127.0.0.1:8080": true,
	}

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			allowedOrigins[strings.TrimSpace(origin)] = true
		}
	}

	return allowedOrigins
}

var callUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			// Reject empty origins - require explicit origin for security
			return false
		}

		allowedOrigins := GetAllowedOrigins()
		for allowed := range allowedOrigins {
			if origin == allowed {
				return true
			}
		}
		return false
	},
}

// NewCallGateway creates a gateway bound to an engine.
func NewCallGateway(engine *signaling.Engine, m *metrics.Metrics) *CallGateway {
	// Default max connections: 1000 (configurable via environment if needed)
	maxConns := 1000
	if val := os.Getenv("WS_MAX_CALL_CONNECTIONS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			maxConns = n
		}
	}

	return &CallGateway{
		engine:         engine,
		clients:        make(map[uuid.UUID]*callClient),
		metrics:        m,
		maxConnections: maxConns,
		semaphore:      make(chan struct{}, maxConns),
	}
}

// Send delivers an event to the connection, implementing the engine's
// sender. A missing connection or a full send buffer is a delivery failure;
// the engine treats both as best-effort.
func (g *CallGateway) Send(connectionID uuid.UUID, event *domain.ServerEvent) error {
	g.mu.RLock()
	client, ok := g.clients[connectionID]
	g.mu.RUnlock()
	if !ok {
		return apperrors.NotConnectedError()
	}

	select {
	case client.send <- event:
		return nil
	default:
		return apperrors.InternalError("send buffer full")
	}
}

// ServeWS upgrades an HTTP request to a signaling websocket connection.
func (g *CallGateway) ServeWS(c *gin.Context) {
	// Acquire semaphore to limit concurrent connections; released when the
	// connection's read pump exits.
	select {
	case g.semaphore <- struct{}{}:
	default:
		logger.Warn("WebSocket connection rejected: max connections reached",
			zap.Int("max_connections", g.maxConnections))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Server at capacity, please try again later"})
		return
	}

	conn, err := callUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		<-g.semaphore
		logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	client := &callClient{
		gateway:      g,
		conn:         conn,
		send:         make(chan *domain.ServerEvent, constants.WebSocketSendBuffer),
		connectionID: uuid.New(),
	}

	g.mu.Lock()
	g.clients[client.connectionID] = client
	g.mu.Unlock()

	if g.metrics != nil {
		g.metrics.ConnectionOpened()
	}
	logger.Debug("WebSocket connection opened",
		zap.String("connection_id", client.connectionID.String()))

	go client.writePump()
	go client.readPump()
}

// CloseAll closes every live connection. Used on graceful shutdown.
func (g *CallGateway) CloseAll() {
	g.mu.Lock()
	clients := make([]*callClient, 0, len(g.clients))
	for _, client := range g.clients {
		clients = append(clients, client)
	}
	g.mu.Unlock()

	for _, client := range clients {
		client.conn.Close()
	}
}

func (g *CallGateway) removeClient(client *callClient) {
	g.mu.Lock()
	if current, ok := g.clients[client.connectionID]; ok && current == client {
		delete(g.clients, client.connectionID)
		close(client.send)
	}
	g.mu.Unlock()

	if g.metrics != nil {
		g.metrics.ConnectionClosed()
	}
}

// readPump reads client events from the websocket and dispatches them to
// the engine.
func (c *callClient) readPump() {
	defer func() {
		c.gateway.removeClient(c)
		if c.registered {
			c.gateway.engine.Disconnect(context.Background(), c.participantID, c.connectionID)
		}
		c.conn.Close()
		<-c.gateway.semaphore
	}()

	c.conn.SetReadDeadline(time.Now().Add(constants.WebSocketPingInterval))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(constants.WebSocketPingInterval))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Debug("WebSocket connection closed",
					zap.String("connection_id", c.connectionID.String()),
					zap.Error(err))
			}
			break
		}

		var ev domain.ClientEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			logger.Warn("Invalid message format from WebSocket",
				zap.String("connection_id", c.connectionID.String()),
				zap.Error(err))
			c.sendError(apperrors.InvalidInputError("Malformed event"))
			if c.gateway.metrics != nil {
				c.gateway.metrics.RecordWebsocketError("malformed")
			}
			continue
		}

		c.dispatch(&ev)
	}
}

// dispatch routes one client event. Protocol violations come back from the
// engine as typed errors and turn into ERROR events; the connection stays
// open either way.
func (c *callClient) dispatch(ev *domain.ClientEvent) {
	if c.gateway.metrics != nil {
		c.gateway.metrics.RecordEvent("in", ev.Type)
	}

	ctx := context.Background()

	if ev.Type == domain.EventRegister {
		if ev.ParticipantID == uuid.Nil {
			c.sendError(apperrors.ValidationError("participant_id required"))
			return
		}
		if c.registered {
			c.sendError(apperrors.InvalidStateError("Connection already registered"))
			return
		}
		c.participantID = ev.ParticipantID
		c.registered = true
		c.gateway.engine.Register(ctx, ev.ParticipantID, c.connectionID)
		return
	}

	if !c.registered {
		c.sendError(apperrors.NotRegisteredError())
		return
	}

	var appErr *apperrors.AppError
	switch ev.Type {
	case domain.EventCall:
		appErr = c.gateway.engine.Call(ctx, c.participantID, ev.TargetID)
	case domain.EventAccept:
		appErr = c.gateway.engine.Accept(ctx, c.participantID, ev.CallerID)
	case domain.EventReject:
		appErr = c.gateway.engine.Reject(ctx, c.participantID, ev.CallerID)
	case domain.EventCancel:
		appErr = c.gateway.engine.Cancel(ctx, c.participantID, ev.TargetID)
	case domain.EventMessage:
		appErr = c.gateway.engine.Relay(ctx, c.participantID, ev.TargetID, ev.Text, ev.MessageType)
	case domain.EventHangup:
		appErr = c.gateway.engine.Hangup(ctx, c.participantID, ev.Reason)
	default:
		appErr = apperrors.InvalidInputError("Unknown event type")
	}

	if appErr != nil {
		c.sendError(appErr)
	}
}

func (c *callClient) sendError(appErr *apperrors.AppError) {
	ev := &domain.ServerEvent{
		Type:      domain.EventError,
		Code:      string(appErr.Code),
		Message:   appErr.Message,
		Timestamp: time.Now(),
	}
	select {
	case c.send <- ev:
	default:
	}
}

// writePump writes events to the websocket and keeps the connection alive
// with pings.
func (c *callClient) writePump() {
	// Ping ahead of the read deadline so a healthy peer always pongs in time.
	ticker := time.NewTicker(constants.WebSocketPingInterval * 9 / 10)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(constants.WebSocketWriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			payload, err := json.Marshal(event)
			if err != nil {
				logger.Error("Failed to marshal server event",
					zap.String("event", event.Type),
					zap.Error(err))
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(constants.WebSocketWriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
