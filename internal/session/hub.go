package session

import (
	"sync"
	"time"

	"diskregistry/pkg/log"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 5 * time.Second

// Conn 会话底层连接，*websocket.Conn 满足该接口
type Conn interface {
	WriteJSON(v interface{}) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}

// Session 一个 agent 的 websocket 会话
type Session struct {
	AgentId string
	NodeId  uint32

	conn    Conn
	mu      sync.Mutex
	dropped bool
}

// Send 向 agent 写一条 JSON 消息，gorilla 连接不支持并发写
func (s *Session) Send(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(v)
}

func (s *Session) Ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// Dropped 会话是否已被 registry 主动断开
func (s *Session) Dropped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

func (s *Session) close(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dropped {
		return
	}
	s.dropped = true
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	_ = s.conn.Close()
}

// Hub 按 agent id 维护当前会话
type Hub struct {
	logger *log.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Attach 登记新会话，同一 agent 的旧会话被关闭
func (h *Hub) Attach(agentId string, nodeId uint32, conn Conn) *Session {
	s := &Session{AgentId: agentId, NodeId: nodeId, conn: conn}

	h.mu.Lock()
	prev := h.sessions[agentId]
	h.sessions[agentId] = s
	h.mu.Unlock()

	if prev != nil {
		h.logger.Info("agent session superseded",
			zap.String("agent_id", agentId),
			zap.Uint32("old_node_id", prev.NodeId),
			zap.Uint32("node_id", nodeId))
		prev.close("session superseded")
	}
	return s
}

// Detach 移除会话，返回它是否仍是该 agent 的当前会话
func (h *Hub) Detach(s *Session) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sessions[s.AgentId] != s {
		return false
	}
	delete(h.sessions, s.AgentId)
	return !s.Dropped()
}

// DropSession 断开 agent 在 nodeId 上的会话，nodeId 不匹配时忽略
func (h *Hub) DropSession(agentId string, nodeId uint32) {
	h.mu.Lock()
	s := h.sessions[agentId]
	if s == nil || s.NodeId != nodeId {
		h.mu.Unlock()
		return
	}
	delete(h.sessions, agentId)
	h.mu.Unlock()

	h.logger.Info("drop agent session", zap.String("agent_id", agentId), zap.Uint32("node_id", nodeId))
	s.close("session dropped by registry")
}

// Get 返回 agent 的当前会话
func (h *Hub) Get(agentId string) (*Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[agentId]
	return s, ok
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Close 关闭全部会话
func (h *Hub) Close() {
	h.mu.Lock()
	sessions := h.sessions
	h.sessions = make(map[string]*Session)
	h.mu.Unlock()

	for _, s := range sessions {
		s.close("registry shutting down")
	}
}
