package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024 * 64,
	WriteBufferSize: 1024 * 64,
	CheckOrigin:     sameOrigin,
}

// WebSocket message types from client.
const (
	wsMsgResolve = "resolve"
	wsMsgContext = "context"
)

// WebSocket message types to client.
const (
	wsMsgResult  = "result"
	wsMsgSnippet = "snippet"
	wsMsgError   = "error"
)

// wsMessage is the envelope for WebSocket messages in both directions. ID is
// echoed back so clients can pipeline requests.
type wsMessage struct {
	Type string          `json:"type"`
	ID   string          `json:"id,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade", "err", err)
		return
	}
	defer conn.Close()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read", "err", err)
			}
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.sendWSError(conn, "", "invalid message format")
			continue
		}

		switch msg.Type {
		case wsMsgResolve:
			s.handleWSResolve(r.Context(), conn, msg)
		case wsMsgContext:
			s.handleWSContext(conn, msg)
		default:
			s.sendWSError(conn, msg.ID, "unknown message type: "+msg.Type)
		}
	}
}

func (s *Server) handleWSResolve(ctx context.Context, conn *websocket.Conn, msg wsMessage) {
	var req resolveRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		s.sendWSError(conn, msg.ID, "invalid resolve data")
		return
	}

	resp, err := s.resolveOne(ctx, req)
	if err != nil {
		s.sendWSError(conn, msg.ID, err.Error())
		return
	}
	s.sendWSMessage(conn, wsMsgResult, msg.ID, resp)
}

func (s *Server) handleWSContext(conn *websocket.Conn, msg wsMessage) {
	var req contextRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		s.sendWSError(conn, msg.ID, "invalid context data")
		return
	}

	resp, err := contextSnippet(req)
	if err != nil {
		s.sendWSError(conn, msg.ID, err.Error())
		return
	}
	s.sendWSMessage(conn, wsMsgSnippet, msg.ID, resp)
}

func (s *Server) sendWSMessage(conn *websocket.Conn, msgType, id string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		s.logger.Error("ws marshal", "err", err)
		return
	}
	msg := wsMessage{Type: msgType, ID: id, Data: raw}
	if err := conn.WriteJSON(msg); err != nil {
		s.logger.Warn("ws write", "err", err)
	}
}

func (s *Server) sendWSError(conn *websocket.Conn, id, errMsg string) {
	s.sendWSMessage(conn, wsMsgError, id, map[string]string{"message": errMsg})
}
