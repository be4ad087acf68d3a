package router

import (
	"diskregistry/internal/middleware"

	"github.com/gin-gonic/gin"
)

func InitAgentRouter(
	deps RouterDeps,
	r *gin.RouterGroup,
) {
	// agent 自身调用的接口不走 JWT，按 agent 限流
	agentRouter := r.Group("/agents").Use(middleware.AgentRateLimit(deps.AgentLimiter, deps.Logger))
	{
		agentRouter.POST("/register", deps.AgentHandler.RegisterAgent)
		agentRouter.POST("/unregister", deps.AgentHandler.UnregisterAgent)
		agentRouter.POST("/stats", deps.AgentHandler.UpdateAgentStats)
		agentRouter.GET("/session", deps.AgentSessionHandler.Session)
	}

	strictAuthRouter := r.Group("/agents").Use(middleware.StrictAuth(deps.JWT, deps.Logger))
	{
		strictAuthRouter.GET("", deps.AgentHandler.ListAgents)
		strictAuthRouter.GET("/:agent_id", deps.AgentHandler.GetAgent)
		strictAuthRouter.PUT("/:agent_id/state", deps.AgentHandler.ChangeAgentState)
	}
}
