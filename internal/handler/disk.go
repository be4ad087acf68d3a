package handler

import (
	"net/http"

	v1 "diskregistry/api/v1"
	"diskregistry/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DiskHandler struct {
	*Handler
	diskService service.DiskService
}

func NewDiskHandler(handler *Handler, diskService service.DiskService) *DiskHandler {
	return &DiskHandler{
		Handler:     handler,
		diskService: diskService,
	}
}

// AllocateDisk godoc
// @Summary 分配磁盘
// @Description 同一 disk_id 重复调用是幂等的；容量变大时追加设备，变小时被拒绝
// @Tags 磁盘模块
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body v1.AllocateDiskRequest true "params"
// @Success 200 {object} v1.AllocateDiskResponse
// @Router /api/v1/disks [post]
func (h *DiskHandler) AllocateDisk(ctx *gin.Context) {
	req := new(v1.AllocateDiskRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	disk, err := h.diskService.AllocateDisk(ctx, req)
	if err != nil {
		h.logger.WithContext(ctx).Error("diskService.AllocateDisk error", zap.Error(err))
		v1.HandleError(ctx, statusOf(err), err, nil)
		return
	}

	v1.HandleSuccess(ctx, disk)
}

// DeallocateDisk godoc
// @Summary 释放磁盘
// @Description 磁盘需先标记为待清理，force=true 时跳过该检查
// @Tags 磁盘模块
// @Produce json
// @Security Bearer
// @Param disk_id path string true "disk id"
// @Param force query bool false "强制释放"
// @Success 200 {object} v1.Response
// @Router /api/v1/disks/{disk_id} [delete]
func (h *DiskHandler) DeallocateDisk(ctx *gin.Context) {
	req := new(v1.DeallocateDiskRequest)
	if err := ctx.ShouldBindQuery(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	if err := h.diskService.DeallocateDisk(ctx, ctx.Param("disk_id"), req.Force); err != nil {
		h.logger.WithContext(ctx).Error("diskService.DeallocateDisk error", zap.Error(err))
		v1.HandleError(ctx, statusOf(err), err, nil)
		return
	}

	v1.HandleSuccess(ctx, nil)
}

// MarkDiskForCleanup godoc
// @Summary 标记磁盘待清理
// @Tags 磁盘模块
// @Produce json
// @Security Bearer
// @Param disk_id path string true "disk id"
// @Success 200 {object} v1.Response
// @Router /api/v1/disks/{disk_id}/cleanup [post]
func (h *DiskHandler) MarkDiskForCleanup(ctx *gin.Context) {
	if err := h.diskService.MarkDiskForCleanup(ctx, ctx.Param("disk_id")); err != nil {
		h.logger.WithContext(ctx).Error("diskService.MarkDiskForCleanup error", zap.Error(err))
		v1.HandleError(ctx, statusOf(err), err, nil)
		return
	}

	v1.HandleSuccess(ctx, nil)
}

// DescribeDisk godoc
// @Summary 获取磁盘详情
// @Tags 磁盘模块
// @Produce json
// @Security Bearer
// @Param disk_id path string true "disk id"
// @Success 200 {object} v1.AllocateDiskResponse
// @Router /api/v1/disks/{disk_id} [get]
func (h *DiskHandler) DescribeDisk(ctx *gin.Context) {
	disk, err := h.diskService.DescribeDisk(ctx, ctx.Param("disk_id"))
	if err != nil {
		v1.HandleError(ctx, statusOf(err), err, nil)
		return
	}

	v1.HandleSuccess(ctx, disk)
}

// ReplaceDevice godoc
// @Summary 替换磁盘中的设备
// @Tags 磁盘模块
// @Accept json
// @Produce json
// @Security Bearer
// @Param disk_id path string true "disk id"
// @Param request body v1.ReplaceDeviceRequest true "params"
// @Success 200 {object} v1.AllocateDiskResponse
// @Router /api/v1/disks/{disk_id}/replace [post]
func (h *DiskHandler) ReplaceDevice(ctx *gin.Context) {
	req := new(v1.ReplaceDeviceRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	disk, err := h.diskService.ReplaceDevice(ctx, ctx.Param("disk_id"), req)
	if err != nil {
		h.logger.WithContext(ctx).Error("diskService.ReplaceDevice error", zap.Error(err))
		v1.HandleError(ctx, statusOf(err), err, nil)
		return
	}

	v1.HandleSuccess(ctx, disk)
}

// FinishMigration godoc
// @Summary 完成设备迁移
// @Tags 磁盘模块
// @Accept json
// @Produce json
// @Security Bearer
// @Param disk_id path string true "disk id"
// @Param request body v1.FinishMigrationRequest true "params"
// @Success 200 {object} v1.Response
// @Router /api/v1/disks/{disk_id}/migrations/finish [post]
func (h *DiskHandler) FinishMigration(ctx *gin.Context) {
	req := new(v1.FinishMigrationRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	if err := h.diskService.FinishMigration(ctx, ctx.Param("disk_id"), req); err != nil {
		h.logger.WithContext(ctx).Error("diskService.FinishMigration error", zap.Error(err))
		v1.HandleError(ctx, statusOf(err), err, nil)
		return
	}

	v1.HandleSuccess(ctx, nil)
}

// ListDisksToNotify godoc
// @Summary 待通知的磁盘
// @Tags 磁盘模块
// @Produce json
// @Security Bearer
// @Success 200 {object} v1.ListDisksToNotifyResponse
// @Router /api/v1/notifications [get]
func (h *DiskHandler) ListDisksToNotify(ctx *gin.Context) {
	data, err := h.diskService.ListDisksToNotify(ctx)
	if err != nil {
		v1.HandleError(ctx, statusOf(err), err, nil)
		return
	}

	v1.HandleSuccess(ctx, data)
}
