package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	v1 "diskregistry/api/v1"
	"diskregistry/pkg/log"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultAgentRPS         = 10
	defaultAgentBurst       = 20
	defaultAgentIdleTimeout = 10 * time.Minute
)

type agentLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// AgentLimiter 按 agent 限流，agent_id 取自路径参数或请求体，都没有时退化为客户端 IP
type AgentLimiter struct {
	rps         rate.Limit
	burst       int
	idleTimeout time.Duration
	now         func() time.Time

	mu        sync.Mutex
	agents    map[string]*agentLimiter
	lastSweep time.Time
}

func NewAgentLimiter(rps float64, burst int, idleTimeout time.Duration) *AgentLimiter {
	return &AgentLimiter{
		rps:         rate.Limit(rps),
		burst:       burst,
		idleTimeout: idleTimeout,
		now:         time.Now,
		agents:      make(map[string]*agentLimiter),
	}
}

// NewAgentLimiterFromConfig 读取 security.ratelimit.*
func NewAgentLimiterFromConfig(conf *viper.Viper) *AgentLimiter {
	rps := conf.GetFloat64("security.ratelimit.rps")
	if rps <= 0 {
		rps = defaultAgentRPS
	}
	burst := conf.GetInt("security.ratelimit.burst")
	if burst <= 0 {
		burst = defaultAgentBurst
	}
	idle := conf.GetDuration("security.ratelimit.idle_timeout")
	if idle <= 0 {
		idle = defaultAgentIdleTimeout
	}
	return NewAgentLimiter(rps, burst, idle)
}

func (l *AgentLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > l.idleTimeout {
		for k, v := range l.agents {
			if now.Sub(v.lastSeen) > l.idleTimeout {
				delete(l.agents, k)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.agents[key]
	if !ok {
		v = &agentLimiter{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.agents[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func AgentRateLimit(limiter *AgentLimiter, logger *log.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		key := agentKey(ctx)
		if !limiter.Allow(key) {
			logger.WithContext(ctx).Warn("agent request rate limited", zap.String("key", key))
			v1.HandleError(ctx, http.StatusTooManyRequests, v1.ErrTooManyRequests, nil)
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

func agentKey(ctx *gin.Context) string {
	if id := ctx.Param("agent_id"); id != "" {
		return id
	}
	if ctx.Request.Body != nil && ctx.ContentType() == gin.MIMEJSON {
		body, err := ctx.GetRawData()
		if err == nil {
			ctx.Request.Body = io.NopCloser(bytes.NewBuffer(body))
			var peek struct {
				AgentId string `json:"agent_id"`
			}
			if json.Unmarshal(body, &peek) == nil && peek.AgentId != "" {
				return peek.AgentId
			}
		}
	}
	return ctx.ClientIP()
}
