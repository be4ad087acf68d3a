package handler

import (
	"net/http"

	v1 "diskregistry/api/v1"
	"diskregistry/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PlacementGroupHandler struct {
	*Handler
	placementGroupService service.PlacementGroupService
}

func NewPlacementGroupHandler(handler *Handler, placementGroupService service.PlacementGroupService) *PlacementGroupHandler {
	return &PlacementGroupHandler{
		Handler:               handler,
		placementGroupService: placementGroupService,
	}
}

// CreatePlacementGroup godoc
// @Summary 创建放置组
// @Tags 放置组模块
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body v1.CreatePlacementGroupRequest true "params"
// @Success 200 {object} v1.Response
// @Router /api/v1/placement-groups [post]
func (h *PlacementGroupHandler) CreatePlacementGroup(ctx *gin.Context) {
	req := new(v1.CreatePlacementGroupRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	if err := h.placementGroupService.CreatePlacementGroup(ctx, req); err != nil {
		h.logger.WithContext(ctx).Error("placementGroupService.CreatePlacementGroup error", zap.Error(err))
		v1.HandleError(ctx, statusOf(err), err, nil)
		return
	}

	v1.HandleSuccess(ctx, nil)
}

// DestroyPlacementGroup godoc
// @Summary 删除放置组
// @Tags 放置组模块
// @Produce json
// @Security Bearer
// @Param group_id path string true "group id"
// @Success 200 {object} v1.Response
// @Router /api/v1/placement-groups/{group_id} [delete]
func (h *PlacementGroupHandler) DestroyPlacementGroup(ctx *gin.Context) {
	if err := h.placementGroupService.DestroyPlacementGroup(ctx, ctx.Param("group_id")); err != nil {
		h.logger.WithContext(ctx).Error("placementGroupService.DestroyPlacementGroup error", zap.Error(err))
		v1.HandleError(ctx, statusOf(err), err, nil)
		return
	}

	v1.HandleSuccess(ctx, nil)
}

// ListPlacementGroups godoc
// @Summary 放置组列表
// @Tags 放置组模块
// @Produce json
// @Security Bearer
// @Success 200 {object} v1.Response
// @Router /api/v1/placement-groups [get]
func (h *PlacementGroupHandler) ListPlacementGroups(ctx *gin.Context) {
	data, err := h.placementGroupService.ListPlacementGroups(ctx)
	if err != nil {
		v1.HandleError(ctx, statusOf(err), err, nil)
		return
	}

	v1.HandleSuccess(ctx, data)
}
