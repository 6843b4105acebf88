package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"ptzhub/internal/protocol"
	"ptzhub/internal/ptz"
)

const (
	readDeadline  = 60 * time.Second
	writeDeadline = 10 * time.Second
	pingInterval  = 30 * time.Second
)

// Client represents a connected WebSocket client
type Client struct {
	conn   *websocket.Conn
	server *Server
	send   chan []byte
	mu     sync.Mutex
	closed bool
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		conn:   conn,
		server: s,
		send:   make(chan []byte, 256),
	}

	s.clientsMu.Lock()
	s.clients[client] = true
	s.clientsMu.Unlock()

	go client.writePump()
	go client.readPump()

	client.sendStatus()
}

// broadcastStatus pushes the current session state to every client.
func (s *Server) broadcastStatus() {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for client := range s.clients {
		client.sendStatus()
	}
}

func (c *Client) sendStatus() {
	id, proto, connected := c.server.session()
	c.sendMessage(protocol.TypeStatus, protocol.StatusPayload{
		CameraConnected: connected,
		ControlProtocol: string(proto),
		EndpointID:      id,
	})
}

func (c *Client) sendMessage(msgType string, payload any) {
	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		c.server.log.Warn("failed to create message", "error", err)
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		c.server.log.Warn("failed to marshal message", "error", err)
		return
	}

	select {
	case c.send <- data:
	default:
		c.server.log.Warn("client send buffer full, dropping message")
	}
}

func (c *Client) sendCommandError(err error) {
	code := protocol.ErrCommandFailed
	if errors.Is(err, ptz.ErrNotConnected) || errors.Is(err, ptz.ErrConnectionFailed) {
		code = protocol.ErrCameraDisconnected
	}
	c.sendMessage(protocol.TypeError, protocol.ErrorPayload{
		Code:    code,
		Message: err.Error(),
	})
}

func (c *Client) readPump() {
	defer func() {
		c.server.clientsMu.Lock()
		delete(c.server.clients, c)
		c.server.clientsMu.Unlock()
		c.Close()
	}()

	c.conn.SetReadLimit(65536)
	c.conn.SetReadDeadline(time.Now().Add(readDeadline))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.server.log.Warn("websocket error", "error", err)
			}
			return
		}
		c.handleMessage(data)
	}
}

func (c *Client) handleMessage(data []byte) {
	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendMessage(protocol.TypeError, protocol.ErrorPayload{
			Code:    protocol.ErrInvalidMessage,
			Message: "failed to parse message",
		})
		return
	}

	ctx := context.Background()
	d := c.server.dispatcher

	switch msg.Type {
	case protocol.TypePing:
		var payload protocol.PingPayload
		if err := msg.ParsePayload(&payload); err != nil {
			return
		}
		c.sendMessage(protocol.TypePong, protocol.PongPayload{
			ClientTimestamp: payload.Timestamp,
			ServerTimestamp: time.Now().UnixMilli(),
		})

	case protocol.TypePTZCommand:
		var payload protocol.PTZCommandPayload
		if err := msg.ParsePayload(&payload); err != nil {
			return
		}
		if err := d.ContinuousMove(ctx, payload.Pan, payload.Tilt); err != nil {
			c.sendCommandError(err)
			return
		}
		if err := d.ContinuousZoom(ctx, payload.Zoom); err != nil {
			c.sendCommandError(err)
		}

	case protocol.TypePTZStop:
		if err := d.Stop(ctx); err != nil {
			c.sendCommandError(err)
		}

	case protocol.TypePTZPreset:
		var payload protocol.PTZPresetPayload
		if err := msg.ParsePayload(&payload); err != nil {
			return
		}
		var err error
		switch payload.Action {
		case "recall":
			err = d.RecallPreset(ctx, payload.PresetNumber)
		case "save":
			err = d.StorePreset(ctx, payload.PresetNumber)
		default:
			c.sendMessage(protocol.TypeError, protocol.ErrorPayload{
				Code:    protocol.ErrInvalidMessage,
				Message: "unknown preset action " + payload.Action,
			})
			return
		}
		if err != nil {
			c.sendCommandError(err)
		}

	case protocol.TypeGetPosition:
		pos, err := d.Position(ctx)
		if err != nil {
			c.sendCommandError(err)
			return
		}
		c.sendMessage(protocol.TypePosition, protocol.PositionPayload{
			Pan:  pos.Pan,
			Tilt: pos.Tilt,
			Zoom: pos.Zoom,
		})

	default:
		c.server.log.Warn("unknown message type", "type", msg.Type)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close closes the client connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}
