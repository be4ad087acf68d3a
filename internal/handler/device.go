package handler

import (
	"net/http"

	v1 "diskregistry/api/v1"
	"diskregistry/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DeviceHandler struct {
	*Handler
	deviceService service.DeviceService
}

func NewDeviceHandler(handler *Handler, deviceService service.DeviceService) *DeviceHandler {
	return &DeviceHandler{
		Handler:       handler,
		deviceService: deviceService,
	}
}

// GetDevice godoc
// @Summary 获取设备详情
// @Tags 设备模块
// @Produce json
// @Security Bearer
// @Param device_id path string true "device id"
// @Success 200 {object} v1.GetDeviceResponse
// @Router /api/v1/devices/{device_id} [get]
func (h *DeviceHandler) GetDevice(ctx *gin.Context) {
	dev, err := h.deviceService.GetDevice(ctx, ctx.Param("device_id"))
	if err != nil {
		v1.HandleError(ctx, statusOf(err), err, nil)
		return
	}

	v1.HandleSuccess(ctx, dev)
}

// ListDevices godoc
// @Summary 获取设备列表
// @Tags 设备模块
// @Produce json
// @Security Bearer
// @Param agent_id query string false "agent id"
// @Param pool_name query string false "pool name"
// @Param state query string false "online/warning/error"
// @Param disk_id query string false "disk id"
// @Param dirty query bool false "仅返回待擦除/已擦除设备"
// @Param suspended query bool false "仅返回挂起的设备"
// @Success 200 {object} v1.ListDevicesResponse
// @Router /api/v1/devices [get]
func (h *DeviceHandler) ListDevices(ctx *gin.Context) {
	req := new(v1.ListDevicesRequest)
	if err := ctx.ShouldBindQuery(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	data, err := h.deviceService.ListDevices(ctx, req)
	if err != nil {
		h.logger.WithContext(ctx).Error("deviceService.ListDevices error", zap.Error(err))
		v1.HandleError(ctx, statusOf(err), err, nil)
		return
	}

	v1.HandleSuccess(ctx, data)
}

// ChangeDeviceState godoc
// @Summary 修改设备状态
// @Tags 设备模块
// @Accept json
// @Produce json
// @Security Bearer
// @Param device_id path string true "device id"
// @Param request body v1.ChangeDeviceStateRequest true "params"
// @Success 200 {object} v1.Response
// @Router /api/v1/devices/{device_id}/state [put]
func (h *DeviceHandler) ChangeDeviceState(ctx *gin.Context) {
	req := new(v1.ChangeDeviceStateRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	if err := h.deviceService.ChangeDeviceState(ctx, ctx.Param("device_id"), req); err != nil {
		h.logger.WithContext(ctx).Error("deviceService.ChangeDeviceState error", zap.Error(err))
		v1.HandleError(ctx, statusOf(err), err, nil)
		return
	}

	v1.HandleSuccess(ctx, nil)
}

// SuspendDevice godoc
// @Summary 挂起设备
// @Description 挂起的设备不再参与分配和擦除
// @Tags 设备模块
// @Produce json
// @Security Bearer
// @Param device_id path string true "device id"
// @Success 200 {object} v1.Response
// @Router /api/v1/devices/{device_id}/suspend [post]
func (h *DeviceHandler) SuspendDevice(ctx *gin.Context) {
	if err := h.deviceService.SuspendDevice(ctx, ctx.Param("device_id")); err != nil {
		h.logger.WithContext(ctx).Error("deviceService.SuspendDevice error", zap.Error(err))
		v1.HandleError(ctx, statusOf(err), err, nil)
		return
	}

	v1.HandleSuccess(ctx, nil)
}

// ResumeDevice godoc
// @Summary 恢复挂起的设备
// @Tags 设备模块
// @Produce json
// @Security Bearer
// @Param device_id path string true "device id"
// @Success 200 {object} v1.Response
// @Router /api/v1/devices/{device_id}/resume [post]
func (h *DeviceHandler) ResumeDevice(ctx *gin.Context) {
	if err := h.deviceService.ResumeDevice(ctx, ctx.Param("device_id")); err != nil {
		h.logger.WithContext(ctx).Error("deviceService.ResumeDevice error", zap.Error(err))
		v1.HandleError(ctx, statusOf(err), err, nil)
		return
	}

	v1.HandleSuccess(ctx, nil)
}
