package service

import (
	"context"

	v1 "diskregistry/api/v1"
	"diskregistry/internal/model"
	"diskregistry/internal/registry"
	"diskregistry/pkg/log"

	"go.uber.org/zap"
)

type DeviceService interface {
	GetDevice(ctx context.Context, deviceId string) (*v1.DeviceItem, error)
	ListDevices(ctx context.Context, req *v1.ListDevicesRequest) (*v1.ListDevicesResponseData, error)
	ChangeDeviceState(ctx context.Context, deviceId string, req *v1.ChangeDeviceStateRequest) error
	SuspendDevice(ctx context.Context, deviceId string) error
	ResumeDevice(ctx context.Context, deviceId string) error
}

func NewDeviceService(
	service *Service,
	diskRegistry DiskRegistry,
	logger *log.Logger,
) DeviceService {
	return &deviceService{
		Service:  service,
		registry: diskRegistry,
		logger:   logger,
	}
}

type deviceService struct {
	*Service
	registry DiskRegistry
	logger   *log.Logger
}

func (s *deviceService) GetDevice(ctx context.Context, deviceId string) (*v1.DeviceItem, error) {
	dev, err := s.registry.FindDevice(ctx, deviceId)
	if err != nil {
		return nil, toApiError(ctx, s.logger, "find_device", err, v1.ErrDeviceNotFound)
	}
	dirty, err := s.dirtySet(ctx)
	if err != nil {
		return nil, err
	}
	_, isDirty := dirty[dev.DeviceId]
	item := toDeviceItem(dev, isDirty)
	return &item, nil
}

func (s *deviceService) ListDevices(ctx context.Context, req *v1.ListDevicesRequest) (*v1.ListDevicesResponseData, error) {
	devices, err := s.registry.ListDevices(ctx, registry.DeviceFilter{
		AgentId:   req.AgentId,
		PoolName:  req.PoolName,
		State:     model.DeviceState(req.State),
		DiskId:    req.DiskId,
		Dirty:     req.Dirty,
		Suspended: req.Suspended,
	})
	if err != nil {
		return nil, toApiError(ctx, s.logger, "list_devices", err, nil)
	}
	dirty, err := s.dirtySet(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]v1.DeviceItem, 0, len(devices))
	for _, d := range devices {
		_, isDirty := dirty[d.DeviceId]
		list = append(list, toDeviceItem(d, isDirty))
	}
	return &v1.ListDevicesResponseData{Total: int64(len(list)), List: list}, nil
}

func (s *deviceService) ChangeDeviceState(ctx context.Context, deviceId string, req *v1.ChangeDeviceStateRequest) error {
	err := s.registry.ChangeDeviceState(ctx, deviceId, model.DeviceState(req.State), req.Message)
	if err != nil {
		return toApiError(ctx, s.logger, "change_device_state", err, v1.ErrDeviceNotFound)
	}
	s.logger.WithContext(ctx).Info("device state changed",
		zap.String("device_id", deviceId),
		zap.String("state", req.State),
		zap.String("message", req.Message))
	return nil
}

func (s *deviceService) SuspendDevice(ctx context.Context, deviceId string) error {
	if err := s.registry.SuspendDevice(ctx, deviceId); err != nil {
		return toApiError(ctx, s.logger, "suspend_device", err, v1.ErrDeviceNotFound)
	}
	s.logger.WithContext(ctx).Info("device suspended", zap.String("device_id", deviceId))
	return nil
}

func (s *deviceService) ResumeDevice(ctx context.Context, deviceId string) error {
	if err := s.registry.ResumeDevice(ctx, deviceId); err != nil {
		return toApiError(ctx, s.logger, "resume_device", err, v1.ErrDeviceNotFound)
	}
	s.logger.WithContext(ctx).Info("device resumed", zap.String("device_id", deviceId))
	return nil
}

func (s *deviceService) dirtySet(ctx context.Context) (map[string]struct{}, error) {
	dirty, err := s.registry.ListDirtyDevices(ctx)
	if err != nil {
		return nil, toApiError(ctx, s.logger, "list_dirty_devices", err, nil)
	}
	set := make(map[string]struct{}, len(dirty))
	for _, d := range dirty {
		set[d.DeviceId] = struct{}{}
	}
	return set, nil
}
