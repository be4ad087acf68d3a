package repository

import (
	"context"

	"diskregistry/internal/model"

	"gorm.io/gorm/clause"
)

// TableRepository 以字符串主键存取一张 registry 表
type TableRepository[T any] interface {
	List(ctx context.Context) ([]*T, error)
	Upsert(ctx context.Context, rows []*T) error
	Delete(ctx context.Context, ids []string) error
}

type tableRepository[T any] struct {
	*Repository
	key string
}

func newTableRepository[T any](r *Repository, key string) TableRepository[T] {
	return &tableRepository[T]{Repository: r, key: key}
}

func NewAgentRepository(r *Repository) TableRepository[model.Agent] {
	return newTableRepository[model.Agent](r, "agent_id")
}

func NewDeviceRepository(r *Repository) TableRepository[model.Device] {
	return newTableRepository[model.Device](r, "device_id")
}

func NewDiskRepository(r *Repository) TableRepository[model.Disk] {
	return newTableRepository[model.Disk](r, "disk_id")
}

func NewPlacementGroupRepository(r *Repository) TableRepository[model.PlacementGroup] {
	return newTableRepository[model.PlacementGroup](r, "group_id")
}

func NewDirtyDeviceRepository(r *Repository) TableRepository[model.DirtyDevice] {
	return newTableRepository[model.DirtyDevice](r, "device_id")
}

func NewDiskNotificationRepository(r *Repository) TableRepository[model.DiskNotification] {
	return newTableRepository[model.DiskNotification](r, "disk_id")
}

func NewReplacedDeviceRepository(r *Repository) TableRepository[model.ReplacedDevice] {
	return newTableRepository[model.ReplacedDevice](r, "device_id")
}

func NewRegistryMetaRepository(r *Repository) TableRepository[model.RegistryMeta] {
	return newTableRepository[model.RegistryMeta](r, "id")
}

func (r *tableRepository[T]) List(ctx context.Context) ([]*T, error) {
	var rows []*T
	if err := r.DB(ctx).Order(r.key).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *tableRepository[T]) Upsert(ctx context.Context, rows []*T) error {
	if len(rows) == 0 {
		return nil
	}
	return r.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: r.key}},
		UpdateAll: true,
	}).Create(&rows).Error
}

func (r *tableRepository[T]) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	var row T
	return r.DB(ctx).Where(r.key+" IN ?", ids).Delete(&row).Error
}
