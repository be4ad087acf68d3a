package registry

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// MarkDiskForCleanup 标记磁盘待清理，不释放设备
func (s *State) MarkDiskForCleanup(ctx context.Context, now time.Time, diskId string) error {
	if err := s.checkWritable(); err != nil {
		return err
	}
	disk, ok := s.disks.get(diskId)
	if !ok {
		return fmt.Errorf("%w: disk %s", ErrNotFound, diskId)
	}
	if disk.MarkedForCleanup {
		return nil
	}
	return s.update(ctx, func() error {
		d := s.disks.mut(diskId)
		d.MarkedForCleanup = true
		d.UpdateTime = now
		return nil
	})
}

// DisksToCleanup 已标记待清理的磁盘
func (s *State) DisksToCleanup() []string {
	var out []string
	for _, id := range sortedKeys(s.disks.rows) {
		if s.disks.rows[id].MarkedForCleanup {
			out = append(out, id)
		}
	}
	return out
}

// ReleaseDisks 删除已确认不再被引用的磁盘，未标记或已删除的磁盘跳过
func (s *State) ReleaseDisks(ctx context.Context, now time.Time, diskIds []string) ([]string, error) {
	if err := s.checkWritable(); err != nil {
		return nil, err
	}
	var removed []string
	err := s.update(ctx, func() error {
		for _, id := range diskIds {
			disk, ok := s.disks.get(id)
			if !ok || !disk.MarkedForCleanup {
				continue
			}
			s.deallocate(now, id)
			removed = append(removed, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(removed) > 0 {
		s.logger.Info("disks cleaned up", zap.Strings("disk_ids", removed))
	}
	return removed, nil
}

// DeallocateDisk 立即释放磁盘，未标记清理时需要 force
func (s *State) DeallocateDisk(ctx context.Context, now time.Time, diskId string, force bool) error {
	if err := s.checkWritable(); err != nil {
		return err
	}
	disk, ok := s.disks.get(diskId)
	if !ok {
		return fmt.Errorf("%w: disk %s", ErrNotFound, diskId)
	}
	if !disk.MarkedForCleanup && !force {
		return fmt.Errorf("%w: disk %s is not marked for cleanup", ErrInvalidArgument, diskId)
	}
	err := s.update(ctx, func() error {
		s.deallocate(now, diskId)
		return nil
	})
	if err == nil {
		s.logger.Info("disk deallocated", zap.String("disk_id", diskId), zap.Bool("force", force))
	}
	return err
}

func (s *State) deallocate(now time.Time, diskId string) {
	disk, ok := s.disks.get(diskId)
	if !ok {
		return
	}
	for _, id := range disk.AllDeviceIds() {
		s.releaseDevice(now, id, diskId)
	}
	s.removeFromPlacementGroup(now, disk.PlacementGroupId, diskId)
	s.notifications.del(diskId)
	s.disks.del(diskId)
}
