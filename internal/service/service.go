package service

import (
	"context"

	"diskregistry/internal/model"
	"diskregistry/internal/registry"
	"diskregistry/internal/repository"
	"diskregistry/pkg/jwt"
	"diskregistry/pkg/log"
	"diskregistry/pkg/sid"
)

type Service struct {
	logger *log.Logger
	sid    *sid.Sid
	jwt    *jwt.JWT
	tm     repository.Transaction
}

func NewService(
	tm repository.Transaction,
	logger *log.Logger,
	sid *sid.Sid,
	jwt *jwt.JWT,
) *Service {
	return &Service{
		logger: logger,
		sid:    sid,
		jwt:    jwt,
		tm:     tm,
	}
}

// DiskRegistry registry 事件循环对外暴露的操作，由 *registry.Registry 实现
type DiskRegistry interface {
	RegisterAgent(ctx context.Context, cfg registry.AgentConfig) (*model.Agent, error)
	AgentDisconnected(ctx context.Context, agentId string, nodeId uint32) error
	UpdateAgentStats(ctx context.Context, agentId string, stats []registry.DeviceStats) error
	ChangeAgentState(ctx context.Context, agentId string, state model.AgentState, message string) error
	ChangeDeviceState(ctx context.Context, deviceId string, state model.DeviceState, message string) error
	SuspendDevice(ctx context.Context, deviceId string) error
	ResumeDevice(ctx context.Context, deviceId string) error
	AllocateDisk(ctx context.Context, req registry.AllocateRequest) (*model.Disk, error)
	MarkDiskForCleanup(ctx context.Context, diskId string) error
	DeallocateDisk(ctx context.Context, diskId string, force bool) error
	ReplaceDevice(ctx context.Context, diskId, deviceId string) (*model.Disk, error)
	FinishMigration(ctx context.Context, diskId, sourceId, targetId string) error
	CmsAction(ctx context.Context, action registry.CmsAction) (*registry.CmsActionResult, error)
	CreatePlacementGroup(ctx context.Context, groupId string) error
	DestroyPlacementGroup(ctx context.Context, groupId string) error
	SetWritableState(ctx context.Context, writable bool) error
	CleanupDisks(ctx context.Context) ([]string, error)
	DescribeDisk(ctx context.Context, diskId string) (*model.Disk, error)
	DescribeAgent(ctx context.Context, agentId string) (*model.Agent, error)
	FindDevice(ctx context.Context, deviceId string) (*model.Device, error)
	ListAgents(ctx context.Context) ([]*model.Agent, error)
	ListDevices(ctx context.Context, filter registry.DeviceFilter) ([]*model.Device, error)
	ListPlacementGroups(ctx context.Context) ([]*model.PlacementGroup, error)
	ListDisksToNotify(ctx context.Context) ([]string, error)
	ListDirtyDevices(ctx context.Context) ([]*model.DirtyDevice, error)
}

var _ DiskRegistry = (*registry.Registry)(nil)
