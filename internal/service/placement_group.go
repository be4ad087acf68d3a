package service

import (
	"context"

	v1 "diskregistry/api/v1"
	"diskregistry/pkg/log"

	"go.uber.org/zap"
)

type PlacementGroupService interface {
	CreatePlacementGroup(ctx context.Context, req *v1.CreatePlacementGroupRequest) error
	DestroyPlacementGroup(ctx context.Context, groupId string) error
	ListPlacementGroups(ctx context.Context) (*v1.ListPlacementGroupsResponseData, error)
}

func NewPlacementGroupService(
	service *Service,
	diskRegistry DiskRegistry,
	logger *log.Logger,
) PlacementGroupService {
	return &placementGroupService{
		Service:  service,
		registry: diskRegistry,
		logger:   logger,
	}
}

type placementGroupService struct {
	*Service
	registry DiskRegistry
	logger   *log.Logger
}

func (s *placementGroupService) CreatePlacementGroup(ctx context.Context, req *v1.CreatePlacementGroupRequest) error {
	err := s.registry.CreatePlacementGroup(ctx, req.GroupId)
	if err != nil {
		return toApiError(ctx, s.logger, "create_placement_group", err, nil)
	}
	s.logger.WithContext(ctx).Info("placement group created", zap.String("group_id", req.GroupId))
	return nil
}

func (s *placementGroupService) DestroyPlacementGroup(ctx context.Context, groupId string) error {
	err := s.registry.DestroyPlacementGroup(ctx, groupId)
	if err != nil {
		return toApiError(ctx, s.logger, "destroy_placement_group", err, nil)
	}
	s.logger.WithContext(ctx).Info("placement group destroyed", zap.String("group_id", groupId))
	return nil
}

func (s *placementGroupService) ListPlacementGroups(ctx context.Context) (*v1.ListPlacementGroupsResponseData, error) {
	groups, err := s.registry.ListPlacementGroups(ctx)
	if err != nil {
		return nil, toApiError(ctx, s.logger, "list_placement_groups", err, nil)
	}
	list := make([]v1.PlacementGroupItem, 0, len(groups))
	for _, g := range groups {
		ids := g.DiskIds
		if ids == nil {
			ids = []string{}
		}
		list = append(list, v1.PlacementGroupItem{GroupId: g.GroupId, DiskIds: ids})
	}
	return &v1.ListPlacementGroupsResponseData{List: list}, nil
}
