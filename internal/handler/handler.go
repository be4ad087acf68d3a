package handler

import (
	"errors"
	"net/http"

	v1 "diskregistry/api/v1"
	"diskregistry/pkg/jwt"
	"diskregistry/pkg/log"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	logger *log.Logger
}

func NewHandler(
	logger *log.Logger,
) *Handler {
	return &Handler{
		logger: logger,
	}
}

func GetUserIdFromCtx(ctx *gin.Context) string {
	v, exists := ctx.Get("claims")
	if !exists {
		return ""
	}
	return v.(*jwt.MyCustomClaims).UserId
}

var errorStatus = []struct {
	err    error
	status int
}{
	{v1.ErrBadRequest, http.StatusBadRequest},
	{v1.ErrUnauthorized, http.StatusUnauthorized},
	{v1.ErrInvalidCredentials, http.StatusUnauthorized},
	{v1.ErrNotFound, http.StatusNotFound},
	{v1.ErrAgentNotFound, http.StatusNotFound},
	{v1.ErrDeviceNotFound, http.StatusNotFound},
	{v1.ErrDiskNotFound, http.StatusNotFound},
	{v1.ErrTooManyRequests, http.StatusTooManyRequests},
	{v1.ErrRateLimited, http.StatusTooManyRequests},
	{v1.ErrInvalidSeqNumber, http.StatusConflict},
	{v1.ErrInsufficientResources, http.StatusConflict},
	{v1.ErrPlacementViolation, http.StatusConflict},
	{v1.ErrPlacementGroupExists, http.StatusConflict},
	{v1.ErrRejected, http.StatusServiceUnavailable},
}

// statusOf 业务错误对应的 HTTP 状态码
func statusOf(err error) int {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}
