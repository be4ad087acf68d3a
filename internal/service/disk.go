package service

import (
	"context"

	v1 "diskregistry/api/v1"
	"diskregistry/internal/model"
	"diskregistry/internal/registry"
	"diskregistry/pkg/log"

	"go.uber.org/zap"
)

type DiskService interface {
	AllocateDisk(ctx context.Context, req *v1.AllocateDiskRequest) (*v1.DiskData, error)
	DeallocateDisk(ctx context.Context, diskId string, force bool) error
	MarkDiskForCleanup(ctx context.Context, diskId string) error
	DescribeDisk(ctx context.Context, diskId string) (*v1.DiskData, error)
	ReplaceDevice(ctx context.Context, diskId string, req *v1.ReplaceDeviceRequest) (*v1.DiskData, error)
	FinishMigration(ctx context.Context, diskId string, req *v1.FinishMigrationRequest) error
	ListDisksToNotify(ctx context.Context) (*v1.ListDisksToNotifyResponseData, error)
}

func NewDiskService(
	service *Service,
	diskRegistry DiskRegistry,
	logger *log.Logger,
) DiskService {
	return &diskService{
		Service:  service,
		registry: diskRegistry,
		logger:   logger,
	}
}

type diskService struct {
	*Service
	registry DiskRegistry
	logger   *log.Logger
}

func (s *diskService) AllocateDisk(ctx context.Context, req *v1.AllocateDiskRequest) (*v1.DiskData, error) {
	disk, err := s.registry.AllocateDisk(ctx, registry.AllocateRequest{
		DiskId:           req.DiskId,
		BlocksCount:      req.BlocksCount,
		BlockSize:        req.BlockSize,
		MediaKind:        model.MediaKind(req.MediaKind),
		PlacementGroupId: req.PlacementGroupId,
		ReplicaCount:     req.ReplicaCount,
		CloudId:          req.CloudId,
		FolderId:         req.FolderId,
		PreferredRacks:   req.PreferredRacks,
	})
	if err != nil {
		return nil, toApiError(ctx, s.logger, "allocate_disk", err, v1.ErrNotFound)
	}
	s.logger.WithContext(ctx).Info("disk allocated",
		zap.String("disk_id", disk.DiskId),
		zap.String("media_kind", string(disk.MediaKind)),
		zap.Strings("devices", disk.Devices))
	return s.diskData(ctx, disk)
}

func (s *diskService) DeallocateDisk(ctx context.Context, diskId string, force bool) error {
	err := s.registry.DeallocateDisk(ctx, diskId, force)
	if err != nil {
		return toApiError(ctx, s.logger, "deallocate_disk", err, v1.ErrDiskNotFound)
	}
	s.logger.WithContext(ctx).Info("disk deallocated", zap.String("disk_id", diskId), zap.Bool("force", force))
	return nil
}

func (s *diskService) MarkDiskForCleanup(ctx context.Context, diskId string) error {
	err := s.registry.MarkDiskForCleanup(ctx, diskId)
	return toApiError(ctx, s.logger, "mark_disk_for_cleanup", err, v1.ErrDiskNotFound)
}

func (s *diskService) DescribeDisk(ctx context.Context, diskId string) (*v1.DiskData, error) {
	disk, err := s.registry.DescribeDisk(ctx, diskId)
	if err != nil {
		return nil, toApiError(ctx, s.logger, "describe_disk", err, v1.ErrDiskNotFound)
	}
	return s.diskData(ctx, disk)
}

func (s *diskService) ReplaceDevice(ctx context.Context, diskId string, req *v1.ReplaceDeviceRequest) (*v1.DiskData, error) {
	disk, err := s.registry.ReplaceDevice(ctx, diskId, req.DeviceId)
	if err != nil {
		return nil, toApiError(ctx, s.logger, "replace_device", err, v1.ErrNotFound)
	}
	s.logger.WithContext(ctx).Info("device replaced", zap.String("disk_id", diskId), zap.String("device_id", req.DeviceId))
	return s.diskData(ctx, disk)
}

func (s *diskService) FinishMigration(ctx context.Context, diskId string, req *v1.FinishMigrationRequest) error {
	err := s.registry.FinishMigration(ctx, diskId, req.SourceDeviceId, req.TargetDeviceId)
	return toApiError(ctx, s.logger, "finish_migration", err, v1.ErrNotFound)
}

func (s *diskService) ListDisksToNotify(ctx context.Context) (*v1.ListDisksToNotifyResponseData, error) {
	ids, err := s.registry.ListDisksToNotify(ctx)
	if err != nil {
		return nil, toApiError(ctx, s.logger, "list_disks_to_notify", err, nil)
	}
	if ids == nil {
		ids = []string{}
	}
	return &v1.ListDisksToNotifyResponseData{DiskIds: ids}, nil
}

func (s *diskService) diskData(ctx context.Context, disk *model.Disk) (*v1.DiskData, error) {
	devices, err := s.registry.ListDevices(ctx, registry.DeviceFilter{DiskId: disk.DiskId})
	if err != nil {
		return nil, toApiError(ctx, s.logger, "list_disk_devices", err, nil)
	}
	byId := make(map[string]*model.Device, len(devices))
	for _, d := range devices {
		byId[d.DeviceId] = d
	}
	return toDiskData(disk, byId), nil
}
