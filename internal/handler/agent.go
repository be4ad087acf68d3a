package handler

import (
	"net/http"

	v1 "diskregistry/api/v1"
	"diskregistry/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AgentHandler struct {
	*Handler
	agentService service.AgentService
}

func NewAgentHandler(handler *Handler, agentService service.AgentService) *AgentHandler {
	return &AgentHandler{
		Handler:      handler,
		agentService: agentService,
	}
}

// RegisterAgent godoc
// @Summary 注册 agent
// @Description 上报 agent 及其全部设备，seq_number 低于已登记值时被拒绝
// @Tags agent模块
// @Accept json
// @Produce json
// @Param request body v1.RegisterAgentRequest true "params"
// @Success 200 {object} v1.Response
// @Router /api/v1/agents/register [post]
func (h *AgentHandler) RegisterAgent(ctx *gin.Context) {
	req := new(v1.RegisterAgentRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	data, err := h.agentService.RegisterAgent(ctx, req)
	if err != nil {
		h.logger.WithContext(ctx).Error("agentService.RegisterAgent error", zap.Error(err))
		v1.HandleError(ctx, statusOf(err), err, nil)
		return
	}

	v1.HandleSuccess(ctx, data)
}

// UnregisterAgent godoc
// @Summary 注销 agent
// @Description 等同于会话断开，agent 进入断连超时
// @Tags agent模块
// @Accept json
// @Produce json
// @Param request body v1.UnregisterAgentRequest true "params"
// @Success 200 {object} v1.Response
// @Router /api/v1/agents/unregister [post]
func (h *AgentHandler) UnregisterAgent(ctx *gin.Context) {
	req := new(v1.UnregisterAgentRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	if err := h.agentService.UnregisterAgent(ctx, req); err != nil {
		h.logger.WithContext(ctx).Error("agentService.UnregisterAgent error", zap.Error(err))
		v1.HandleError(ctx, statusOf(err), err, nil)
		return
	}

	v1.HandleSuccess(ctx, nil)
}

// UpdateAgentStats godoc
// @Summary 上报设备统计
// @Tags agent模块
// @Accept json
// @Produce json
// @Param request body v1.UpdateAgentStatsRequest true "params"
// @Success 200 {object} v1.Response
// @Router /api/v1/agents/stats [post]
func (h *AgentHandler) UpdateAgentStats(ctx *gin.Context) {
	req := new(v1.UpdateAgentStatsRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	if err := h.agentService.UpdateAgentStats(ctx, req); err != nil {
		h.logger.WithContext(ctx).Error("agentService.UpdateAgentStats error", zap.Error(err))
		v1.HandleError(ctx, statusOf(err), err, nil)
		return
	}

	v1.HandleSuccess(ctx, nil)
}

// ChangeAgentState godoc
// @Summary 修改 agent 状态
// @Tags agent模块
// @Accept json
// @Produce json
// @Security Bearer
// @Param agent_id path string true "agent id"
// @Param request body v1.ChangeAgentStateRequest true "params"
// @Success 200 {object} v1.Response
// @Router /api/v1/agents/{agent_id}/state [put]
func (h *AgentHandler) ChangeAgentState(ctx *gin.Context) {
	req := new(v1.ChangeAgentStateRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	if err := h.agentService.ChangeAgentState(ctx, ctx.Param("agent_id"), req); err != nil {
		h.logger.WithContext(ctx).Error("agentService.ChangeAgentState error", zap.Error(err))
		v1.HandleError(ctx, statusOf(err), err, nil)
		return
	}

	v1.HandleSuccess(ctx, nil)
}

// GetAgent godoc
// @Summary 获取 agent 详情
// @Tags agent模块
// @Produce json
// @Security Bearer
// @Param agent_id path string true "agent id"
// @Success 200 {object} v1.Response
// @Router /api/v1/agents/{agent_id} [get]
func (h *AgentHandler) GetAgent(ctx *gin.Context) {
	agent, err := h.agentService.GetAgent(ctx, ctx.Param("agent_id"))
	if err != nil {
		v1.HandleError(ctx, statusOf(err), err, nil)
		return
	}

	v1.HandleSuccess(ctx, agent)
}

// ListAgents godoc
// @Summary 获取 agent 列表
// @Tags agent模块
// @Produce json
// @Security Bearer
// @Success 200 {object} v1.ListAgentsResponse
// @Router /api/v1/agents [get]
func (h *AgentHandler) ListAgents(ctx *gin.Context) {
	data, err := h.agentService.ListAgents(ctx)
	if err != nil {
		h.logger.WithContext(ctx).Error("agentService.ListAgents error", zap.Error(err))
		v1.HandleError(ctx, statusOf(err), err, nil)
		return
	}

	v1.HandleSuccess(ctx, data)
}
