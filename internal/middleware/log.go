package middleware

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"diskregistry/pkg/log"

	"github.com/duke-git/lancet/v2/cryptor"
	"github.com/duke-git/lancet/v2/random"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	traceHeader = "X-Trace-Id"
	maxLogBody  = 4096
)

// 高频的 agent 上报接口只在 debug 级别记录
var quietRoutes = map[string]bool{
	"/api/v1/agents/stats": true,
}

// 出现在路由中的资源 id，会作为日志字段带上
var routeParams = []string{"agent_id", "device_id", "disk_id", "group_id"}

func RequestLogMiddleware(logger *log.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		uuid, err := random.UUIdV4()
		if err != nil {
			ctx.Next()
			return
		}
		trace := cryptor.Md5String(uuid)
		ctx.Header(traceHeader, trace)
		logger.WithValue(ctx, zap.String("trace", trace))
		logger.WithValue(ctx, zap.String("request_method", ctx.Request.Method))
		logger.WithValue(ctx, zap.String("request_url", ctx.Request.URL.String()))
		for _, name := range routeParams {
			if v := ctx.Param(name); v != "" {
				logger.WithValue(ctx, zap.String(name, v))
			}
		}

		if ctx.Request.Body != nil && ctx.Request.ContentLength != 0 {
			bodyBytes, _ := ctx.GetRawData()
			ctx.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			logger.WithValue(ctx, zap.String("request_params", string(truncate(bodyBytes))))
		}
		logAt(logger, ctx, zapcore.InfoLevel, "Request")
		ctx.Next()
	}
}

func ResponseLogMiddleware(logger *log.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		// agent 会话是长连接，握手之后不再包装 ResponseWriter
		if ctx.GetHeader("Upgrade") == "websocket" {
			startTime := time.Now()
			ctx.Next()
			logger.WithContext(ctx).Info("Agent session closed", zap.Duration("time", time.Since(startTime)))
			return
		}

		blw := &bodyLogWriter{body: bytes.NewBufferString(""), ResponseWriter: ctx.Writer}
		ctx.Writer = blw
		startTime := time.Now()
		ctx.Next()

		level := zapcore.InfoLevel
		if ctx.Writer.Status() >= http.StatusInternalServerError {
			level = zapcore.ErrorLevel
		}
		logAt(logger, ctx, level, "Response",
			zap.Int("status", ctx.Writer.Status()),
			zap.String("response_body", string(truncate(blw.body.Bytes()))),
			zap.Duration("time", time.Since(startTime)),
		)
	}
}

func logAt(logger *log.Logger, ctx *gin.Context, level zapcore.Level, msg string, fields ...zap.Field) {
	if level < zapcore.ErrorLevel && quietRoutes[ctx.FullPath()] {
		level = zapcore.DebugLevel
	}
	if ce := logger.WithContext(ctx).Check(level, msg); ce != nil {
		ce.Write(fields...)
	}
}

func truncate(b []byte) []byte {
	if len(b) > maxLogBody {
		return b[:maxLogBody]
	}
	return b
}

type bodyLogWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyLogWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}
