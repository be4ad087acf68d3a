package handler

import (
	"context"
	"net/http"
	"time"

	v1 "diskregistry/api/v1"
	"diskregistry/internal/service"
	"diskregistry/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	sessionRegisterWait = 10 * time.Second
	sessionPongWait     = 60 * time.Second
	sessionPingPeriod   = sessionPongWait * 9 / 10
)

type AgentSessionHandler struct {
	*Handler
	agentService service.AgentService
	hub          *session.Hub
	upgrader     websocket.Upgrader
}

func NewAgentSessionHandler(handler *Handler, agentService service.AgentService, hub *session.Hub) *AgentSessionHandler {
	return &AgentSessionHandler{
		Handler:      handler,
		agentService: agentService,
		hub:          hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Session godoc
// @Summary agent 会话
// @Description websocket 长连接。首条消息必须是 register，之后可发送 stats；连接断开即视为 agent 断连
// @Tags agent模块
// @Success 101
// @Router /api/v1/agents/session [get]
func (h *AgentSessionHandler) Session(ctx *gin.Context) {
	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		h.logger.WithContext(ctx).Warn("agent session upgrade failed", zap.Error(err))
		return
	}
	// 会话生命周期不受请求 ctx 约束
	reqCtx := context.WithoutCancel(ctx.Request.Context())

	s, ok := h.register(reqCtx, conn)
	if !ok {
		_ = conn.Close()
		return
	}

	stop := make(chan struct{})
	go h.ping(s, stop)
	h.serve(reqCtx, conn, s)
	close(stop)
	_ = conn.Close()

	if h.hub.Detach(s) {
		if err := h.agentService.AgentConnectionLost(reqCtx, s.AgentId, s.NodeId); err != nil {
			h.logger.Warn("agent connection lost", zap.String("agent_id", s.AgentId), zap.Error(err))
		}
	}
}

func (h *AgentSessionHandler) register(ctx context.Context, conn *websocket.Conn) (*session.Session, bool) {
	_ = conn.SetReadDeadline(time.Now().Add(sessionRegisterWait))
	var msg v1.AgentSessionMessage
	if err := conn.ReadJSON(&msg); err != nil {
		h.logger.Warn("read agent register message", zap.Error(err))
		return nil, false
	}
	if msg.Type != v1.SessionMessageRegister || msg.Register == nil || msg.Register.AgentId == "" {
		_ = conn.WriteJSON(errorReply(v1.SessionMessageRegister, v1.ErrBadRequest))
		return nil, false
	}

	data, err := h.agentService.RegisterAgent(ctx, msg.Register)
	if err != nil {
		_ = conn.WriteJSON(errorReply(v1.SessionMessageRegister, err))
		return nil, false
	}
	s := h.hub.Attach(msg.Register.AgentId, msg.Register.NodeId, conn)
	if err := s.Send(successReply(v1.SessionMessageRegister, data)); err != nil {
		h.hub.Detach(s)
		return nil, false
	}
	return s, true
}

// serve 处理注册之后的消息，连接关闭或 agent 注销时返回
func (h *AgentSessionHandler) serve(ctx context.Context, conn *websocket.Conn, s *session.Session) {
	_ = conn.SetReadDeadline(time.Now().Add(sessionPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(sessionPongWait))
	})
	for {
		var msg v1.AgentSessionMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if !s.Dropped() && websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("agent session closed", zap.String("agent_id", s.AgentId), zap.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(sessionPongWait))

		switch msg.Type {
		case v1.SessionMessageStats:
			if msg.Stats == nil {
				_ = s.Send(errorReply(msg.Type, v1.ErrBadRequest))
				continue
			}
			// 会话内只允许上报自己的统计
			msg.Stats.AgentId = s.AgentId
			if err := h.agentService.UpdateAgentStats(ctx, msg.Stats); err != nil {
				_ = s.Send(errorReply(msg.Type, err))
				continue
			}
			_ = s.Send(successReply(msg.Type, nil))
		case v1.SessionMessageUnregister:
			_ = s.Send(successReply(msg.Type, nil))
			return
		default:
			_ = s.Send(errorReply(msg.Type, v1.ErrBadRequest))
		}
	}
}

func (h *AgentSessionHandler) ping(s *session.Session, stop <-chan struct{}) {
	ticker := time.NewTicker(sessionPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := s.Ping(); err != nil {
				return
			}
		}
	}
}

func successReply(msgType string, data interface{}) v1.AgentSessionReply {
	code, _ := v1.ErrorCode(v1.ErrSuccess)
	return v1.AgentSessionReply{Type: msgType, Code: code, Message: v1.ErrSuccess.Error(), Data: data}
}

func errorReply(msgType string, err error) v1.AgentSessionReply {
	code, ok := v1.ErrorCode(err)
	if !ok {
		code = http.StatusInternalServerError
	}
	return v1.AgentSessionReply{Type: msgType, Code: code, Message: err.Error()}
}
