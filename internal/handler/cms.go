package handler

import (
	"net/http"

	v1 "diskregistry/api/v1"
	"diskregistry/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CmsHandler struct {
	*Handler
	cmsService service.CmsService
}

func NewCmsHandler(handler *Handler, cmsService service.CmsService) *CmsHandler {
	return &CmsHandler{
		Handler:    handler,
		cmsService: cmsService,
	}
}

// ExecuteActions godoc
// @Summary 运维摘除/恢复主机与设备
// @Description 每个动作单独返回结果；dependent_disk_ids 非空时需等待 timeout 秒后重试
// @Tags CMS模块
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body v1.CmsActionRequest true "params"
// @Success 200 {object} v1.Response
// @Router /api/v1/cms/actions [post]
func (h *CmsHandler) ExecuteActions(ctx *gin.Context) {
	req := new(v1.CmsActionRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	data, err := h.cmsService.ExecuteActions(ctx, req)
	if err != nil {
		h.logger.WithContext(ctx).Error("cmsService.ExecuteActions error", zap.Error(err))
		v1.HandleError(ctx, statusOf(err), err, nil)
		return
	}

	v1.HandleSuccess(ctx, data)
}
