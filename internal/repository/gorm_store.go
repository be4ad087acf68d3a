package repository

import (
	"context"
	"fmt"

	"diskregistry/internal/model"
	"diskregistry/internal/registry"

	"github.com/duke-git/lancet/v2/maputil"
	"github.com/duke-git/lancet/v2/slice"
)

// GormStore 基于 SQL 的 registry.StateStore，每次 Apply 是一个数据库事务
type GormStore struct {
	tm       Transaction
	meta     TableRepository[model.RegistryMeta]
	agents   TableRepository[model.Agent]
	devices  TableRepository[model.Device]
	disks    TableRepository[model.Disk]
	groups   TableRepository[model.PlacementGroup]
	dirty    TableRepository[model.DirtyDevice]
	notifies TableRepository[model.DiskNotification]
	replaced TableRepository[model.ReplacedDevice]
}

func NewGormStore(r *Repository) *GormStore {
	return &GormStore{
		tm:       NewTransaction(r),
		meta:     NewRegistryMetaRepository(r),
		agents:   NewAgentRepository(r),
		devices:  NewDeviceRepository(r),
		disks:    NewDiskRepository(r),
		groups:   NewPlacementGroupRepository(r),
		dirty:    NewDirtyDeviceRepository(r),
		notifies: NewDiskNotificationRepository(r),
		replaced: NewReplacedDeviceRepository(r),
	}
}

func (s *GormStore) Load(ctx context.Context) (*registry.Snapshot, error) {
	snap := &registry.Snapshot{}
	err := s.tm.Transaction(ctx, func(ctx context.Context) error {
		metas, err := s.meta.List(ctx)
		if err != nil {
			return fmt.Errorf("load registry meta: %w", err)
		}
		for _, m := range metas {
			if m.Id == model.RegistryMetaId {
				snap.Meta = m
			}
		}
		if snap.Agents, err = s.agents.List(ctx); err != nil {
			return fmt.Errorf("load agents: %w", err)
		}
		if snap.Devices, err = s.devices.List(ctx); err != nil {
			return fmt.Errorf("load devices: %w", err)
		}
		if snap.Disks, err = s.disks.List(ctx); err != nil {
			return fmt.Errorf("load disks: %w", err)
		}
		if snap.PlacementGroups, err = s.groups.List(ctx); err != nil {
			return fmt.Errorf("load placement groups: %w", err)
		}
		if snap.DirtyDevices, err = s.dirty.List(ctx); err != nil {
			return fmt.Errorf("load dirty devices: %w", err)
		}
		if snap.Notifications, err = s.notifies.List(ctx); err != nil {
			return fmt.Errorf("load disk notifications: %w", err)
		}
		if snap.ReplacedDevices, err = s.replaced.List(ctx); err != nil {
			return fmt.Errorf("load replaced devices: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *GormStore) Apply(ctx context.Context, m *registry.Mutation) error {
	if m.Empty() {
		return nil
	}
	return s.tm.Transaction(ctx, func(ctx context.Context) error {
		if m.Meta != nil {
			meta := m.Meta.Clone()
			meta.Id = model.RegistryMetaId
			if err := s.meta.Upsert(ctx, []*model.RegistryMeta{meta}); err != nil {
				return fmt.Errorf("apply registry meta: %w", err)
			}
		}
		if err := applyTable(ctx, "agents", s.agents, m.Agents); err != nil {
			return err
		}
		if err := applyTable(ctx, "devices", s.devices, m.Devices); err != nil {
			return err
		}
		if err := applyTable(ctx, "disks", s.disks, m.Disks); err != nil {
			return err
		}
		if err := applyTable(ctx, "placement groups", s.groups, m.PlacementGroups); err != nil {
			return err
		}
		if err := applyTable(ctx, "dirty devices", s.dirty, m.DirtyDevices); err != nil {
			return err
		}
		if err := applyTable(ctx, "disk notifications", s.notifies, m.Notifications); err != nil {
			return err
		}
		return applyTable(ctx, "replaced devices", s.replaced, m.ReplacedDevices)
	})
}

// applyTable 按主键顺序写入，nil 值表示删除
func applyTable[T any](ctx context.Context, name string, repo TableRepository[T], changes map[string]*T) error {
	if len(changes) == 0 {
		return nil
	}
	ids := maputil.Keys(changes)
	slice.Sort(ids)

	var (
		upserts []*T
		deletes []string
	)
	for _, id := range ids {
		if v := changes[id]; v != nil {
			upserts = append(upserts, v)
		} else {
			deletes = append(deletes, id)
		}
	}
	if err := repo.Delete(ctx, deletes); err != nil {
		return fmt.Errorf("apply %s: %w", name, err)
	}
	if err := repo.Upsert(ctx, upserts); err != nil {
		return fmt.Errorf("apply %s: %w", name, err)
	}
	return nil
}
