package handler

import (
	"net/http"

	v1 "diskregistry/api/v1"
	"diskregistry/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RegistryHandler struct {
	*Handler
	registryService service.RegistryService
}

func NewRegistryHandler(handler *Handler, registryService service.RegistryService) *RegistryHandler {
	return &RegistryHandler{
		Handler:         handler,
		registryService: registryService,
	}
}

// SetWritableState godoc
// @Summary 切换 registry 读写状态
// @Description 只读状态下所有修改类请求返回 rejected
// @Tags registry模块
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body v1.SetWritableStateRequest true "params"
// @Success 200 {object} v1.Response
// @Router /api/v1/registry/writable [put]
func (h *RegistryHandler) SetWritableState(ctx *gin.Context) {
	req := new(v1.SetWritableStateRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	if err := h.registryService.SetWritableState(ctx, req); err != nil {
		h.logger.WithContext(ctx).Error("registryService.SetWritableState error", zap.Error(err))
		v1.HandleError(ctx, statusOf(err), err, nil)
		return
	}

	v1.HandleSuccess(ctx, nil)
}

// CleanupDisks godoc
// @Summary 清理不再被引用的磁盘
// @Tags registry模块
// @Produce json
// @Security Bearer
// @Success 200 {object} v1.Response
// @Router /api/v1/registry/cleanup [post]
func (h *RegistryHandler) CleanupDisks(ctx *gin.Context) {
	data, err := h.registryService.CleanupDisks(ctx)
	if err != nil {
		h.logger.WithContext(ctx).Error("registryService.CleanupDisks error", zap.Error(err))
		v1.HandleError(ctx, statusOf(err), err, nil)
		return
	}

	v1.HandleSuccess(ctx, data)
}
