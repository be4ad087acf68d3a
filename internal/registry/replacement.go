package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"diskregistry/internal/model"

	"github.com/duke-git/lancet/v2/slice"
	"go.uber.org/zap"
)

// deviceBad 设备故障或所在 agent 不可用
func (s *State) deviceBad(deviceId string) bool {
	dev, ok := s.devices.get(deviceId)
	if !ok || dev.State == model.DeviceStateError {
		return true
	}
	agent, ok := s.agents.get(dev.AgentId)
	return !ok || agent.State == model.AgentStateUnavailable
}

// positionMasked 副本 r 第 i 个设备故障时，是否有其他副本或迁移目标可以兜底
func (s *State) positionMasked(disk *model.Disk, layout [][]string, r, i int) bool {
	source := layout[r][i]
	for _, m := range disk.Migrations {
		if m.SourceDeviceId == source && !s.deviceBad(m.TargetDeviceId) {
			return true
		}
	}
	for r2, replica := range layout {
		if r2 != r && i < len(replica) && !s.deviceBad(replica[i]) {
			return true
		}
	}
	return false
}

func (s *State) reevaluateDisks(now time.Time, diskIds []string) {
	for _, id := range slice.Unique(diskIds) {
		s.reevaluateDisk(now, id)
	}
}

// reevaluateDisk 根据设备状态重新计算磁盘的 ioMode / muteIoErrors / state
func (s *State) reevaluateDisk(now time.Time, diskId string) {
	disk, ok := s.disks.get(diskId)
	if !ok {
		return
	}
	layout := disk.Layout()
	bad, anyError, masked := 0, false, true
	for r, replica := range layout {
		for i, id := range replica {
			if !s.deviceBad(id) {
				continue
			}
			bad++
			if dev, ok := s.devices.get(id); !ok || dev.State == model.DeviceStateError {
				anyError = true
			}
			if !s.positionMasked(disk, layout, r, i) {
				masked = false
			}
		}
	}

	ioMode, mute, brokenTs, state := disk.IoMode, disk.MuteIoErrors, disk.BrokenTs, disk.State
	if bad == 0 {
		ioMode, mute, brokenTs = model.DiskIoModeOk, false, time.Time{}
		state = model.DiskStateOnline
		if len(disk.Migrations) > 0 {
			state = model.DiskStateWarning
		}
	} else {
		mute = true
		if brokenTs.IsZero() {
			brokenTs = now
		}
		switch {
		case masked:
			state = model.DiskStateWarning
		case anyError:
			state = model.DiskStateError
		default:
			state = model.DiskStateTemporarilyUnavailable
		}
		if now.Sub(brokenTs) >= s.cfg.SwitchToReadOnlyTimeout {
			ioMode = model.DiskIoModeErrorReadOnly
		}
	}

	if ioMode == disk.IoMode && mute == disk.MuteIoErrors && brokenTs.Equal(disk.BrokenTs) && state == disk.State {
		return
	}
	notify := ioMode != disk.IoMode || mute != disk.MuteIoErrors
	d := s.disks.mut(diskId)
	if ioMode != d.IoMode {
		d.IoModeTs = now
	}
	if state != d.State {
		d.StateTs = now
	}
	d.IoMode, d.MuteIoErrors, d.BrokenTs, d.State = ioMode, mute, brokenTs, state
	d.UpdateTime = now
	if notify {
		s.logger.Info("disk io mode changed",
			zap.String("disk_id", diskId),
			zap.String("io_mode", string(ioMode)),
			zap.Bool("mute_io_errors", mute),
			zap.String("state", string(state)))
		s.notifyDisk(diskId)
	}
}

// locate 返回设备在磁盘布局中的位置
func locate(layout [][]string, deviceId string) (int, int, bool) {
	for r, replica := range layout {
		for i, id := range replica {
			if id == deviceId {
				return r, i, true
			}
		}
	}
	return 0, 0, false
}

func setLayoutDevice(d *model.Disk, r, i int, deviceId string) {
	if r == 0 {
		d.Devices[i] = deviceId
		return
	}
	d.Replicas[r-1][i] = deviceId
}

// checkReplacementRate 滚动窗口内的替换次数与单盘迁移数限制
func (s *State) checkReplacementRate(now time.Time, disk *model.Disk, agentId string) error {
	if s.cfg.MaxMigrationsPerDisk > 0 && len(disk.Migrations) >= s.cfg.MaxMigrationsPerDisk {
		return fmt.Errorf("%w: disk %s has %d migrations in progress", ErrRateLimited, disk.DiskId, len(disk.Migrations))
	}
	if s.cfg.MaxReplacementsPerHour <= 0 {
		return nil
	}
	since := now.Add(-s.cfg.ReplacementWindow)
	count := 0
	for _, r := range s.replaced.rows {
		if !r.ReplacedAt.After(since) {
			continue
		}
		switch s.cfg.ReplacementScope {
		case ReplacementScopeRegistry:
			count++
		case ReplacementScopeAgent:
			if r.AgentId == agentId {
				count++
			}
		default:
			if r.DiskId == disk.DiskId {
				count++
			}
		}
	}
	if count >= s.cfg.MaxReplacementsPerHour {
		return fmt.Errorf("%w: %d replacements within %s", ErrRateLimited, count, s.cfg.ReplacementWindow)
	}
	return nil
}

// pickReplacement 为磁盘副本 r 的第 i 个位置选择新设备，规则与分配一致
func (s *State) pickReplacement(disk *model.Disk, r, i int) (string, error) {
	unit, ok := s.cfg.AllocationUnits[disk.MediaKind]
	if !ok {
		return "", fmt.Errorf("%w: unsupported media kind %q", ErrInvalidArgument, disk.MediaKind)
	}
	layout := disk.Layout()
	forbidden := s.placementGroupRacks(disk.PlacementGroupId, disk.DiskId)
	for r2, replica := range layout {
		if r2 != r && i < len(replica) {
			forbidden[s.rackOf(replica[i])] = struct{}{}
		}
	}
	if s.cfg.SpreadReplicaDevices {
		for j, id := range layout[r] {
			if j != i {
				forbidden[s.rackOf(id)] = struct{}{}
			}
		}
	}
	for _, dev := range s.freeDevices(s.cfg.Pools[disk.MediaKind], unit, nil) {
		if _, ok := forbidden[dev.Rack]; ok {
			continue
		}
		return dev.DeviceId, nil
	}
	return "", fmt.Errorf("%w: no replacement for position %d of replica %d in disk %s",
		ErrInsufficientResources, i, r, disk.DiskId)
}

// ReplaceDevice 用新设备替换磁盘中的指定设备，被替换的设备进入擦除队列
func (s *State) ReplaceDevice(ctx context.Context, now time.Time, diskId, deviceId string) (*model.Disk, error) {
	if err := s.checkWritable(); err != nil {
		return nil, err
	}
	var disk *model.Disk
	err := s.update(ctx, func() error {
		if err := s.replaceDevice(now, diskId, deviceId); err != nil {
			return err
		}
		disk = s.disks.rows[diskId].Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return disk, nil
}

func (s *State) replaceDevice(now time.Time, diskId, deviceId string) error {
	disk, ok := s.disks.get(diskId)
	if !ok {
		return fmt.Errorf("%w: disk %s", ErrNotFound, diskId)
	}
	r, i, ok := locate(disk.Layout(), deviceId)
	if !ok {
		return fmt.Errorf("%w: device %s in disk %s", ErrNotFound, deviceId, diskId)
	}
	old, _ := s.devices.get(deviceId)
	agentId := ""
	if old != nil {
		agentId = old.AgentId
	}
	if err := s.checkReplacementRate(now, disk, agentId); err != nil {
		return err
	}
	target, err := s.pickReplacement(disk, r, i)
	if err != nil {
		return err
	}

	d := s.disks.mut(diskId)
	setLayoutDevice(d, r, i, target)
	d.UpdateTime = now
	s.devices.mut(target).DiskId = diskId
	s.releaseDevice(now, deviceId, diskId)
	// 以被替换设备为源的迁移一并取消
	var keep []model.DeviceMigration
	for _, m := range d.Migrations {
		if m.SourceDeviceId == deviceId {
			s.releaseDevice(now, m.TargetDeviceId, diskId)
			continue
		}
		keep = append(keep, m)
	}
	d.Migrations = keep
	s.replaced.put(deviceId, &model.ReplacedDevice{
		DeviceId:   deviceId,
		DiskId:     diskId,
		AgentId:    agentId,
		ReplacedAt: now,
	})
	s.logger.Info("device replaced",
		zap.String("disk_id", diskId),
		zap.String("device_id", deviceId),
		zap.String("replacement", target))
	s.reevaluateDisk(now, diskId)
	return nil
}

// releaseDevice 解除设备与磁盘的关联并加入擦除队列
func (s *State) releaseDevice(now time.Time, deviceId, diskId string) {
	if dev := s.devices.mut(deviceId); dev != nil {
		dev.DiskId = ""
		dev.UpdateTime = now
	}
	s.queueDirty(now, deviceId, diskId)
}

// replaceBrokenDevices 自动替换镜像盘中故障的设备
func (s *State) replaceBrokenDevices(now time.Time) {
	if !s.cfg.AutomaticReplacement || !s.Writable() {
		return
	}
	for _, diskId := range sortedKeys(s.disks.rows) {
		disk := s.disks.rows[diskId]
		if disk.ReplicaCount == 0 || disk.MarkedForCleanup {
			continue
		}
		layout := disk.Layout()
		for r, replica := range layout {
			for i, id := range replica {
				if !s.brokenForReplacement(now, id) || !s.positionMasked(disk, layout, r, i) {
					continue
				}
				err := s.replaceDevice(now, diskId, id)
				if err == nil {
					disk = s.disks.rows[diskId]
					layout = disk.Layout()
					continue
				}
				if !errors.Is(err, ErrRateLimited) && !errors.Is(err, ErrInsufficientResources) {
					s.logger.Error("automatic replacement failed", zap.String("disk_id", diskId), zap.Error(err))
				}
			}
		}
	}
}

// brokenForReplacement 设备故障，或 agent 不可用超过宽限期
func (s *State) brokenForReplacement(now time.Time, deviceId string) bool {
	dev, ok := s.devices.get(deviceId)
	if !ok || dev.State == model.DeviceStateError {
		return true
	}
	agent, ok := s.agents.get(dev.AgentId)
	if !ok {
		return true
	}
	return agent.State == model.AgentStateUnavailable && now.Sub(agent.StateTs) >= s.cfg.UnavailableAgentGracePeriod
}

// purgeReplacementHistory 清理窗口之外的替换记录
func (s *State) purgeReplacementHistory(now time.Time) {
	since := now.Add(-s.cfg.ReplacementWindow)
	for _, id := range sortedKeys(s.replaced.rows) {
		if !s.replaced.rows[id].ReplacedAt.After(since) {
			s.replaced.del(id)
		}
	}
}

func (s *State) migrationsInProgress() int {
	n := 0
	for _, d := range s.disks.rows {
		n += len(d.Migrations)
	}
	return n
}

// startMigrations 为被 CMS 摘除的设备启动迁移，返回依赖这些设备的磁盘
func (s *State) startMigrations(now time.Time, deviceIds []string) []string {
	var dependent []string
	for _, id := range deviceIds {
		dev, ok := s.devices.get(id)
		if !ok || dev.DiskId == "" {
			continue
		}
		diskId := dev.DiskId
		dependent = append(dependent, diskId)
		disk := s.disks.rows[diskId]
		r, i, ok := locate(disk.Layout(), id)
		if !ok || slice.ContainBy(disk.Migrations, func(m model.DeviceMigration) bool { return m.SourceDeviceId == id }) {
			continue
		}
		if s.cfg.MaxMigrationsPerDisk > 0 && len(disk.Migrations) >= s.cfg.MaxMigrationsPerDisk {
			continue
		}
		if s.cfg.MaxMigrationsInProgress > 0 && s.migrationsInProgress() >= s.cfg.MaxMigrationsInProgress {
			continue
		}
		target, err := s.pickReplacement(disk, r, i)
		if err != nil {
			s.logger.Warn("can not start migration", zap.String("disk_id", diskId), zap.String("device_id", id), zap.Error(err))
			continue
		}
		d := s.disks.mut(diskId)
		d.Migrations = append(d.Migrations, model.DeviceMigration{SourceDeviceId: id, TargetDeviceId: target})
		d.UpdateTime = now
		s.devices.mut(target).DiskId = diskId
		s.logger.Info("migration started",
			zap.String("disk_id", diskId),
			zap.String("source", id),
			zap.String("target", target))
		s.reevaluateDisk(now, diskId)
	}
	return slice.Unique(dependent)
}

// FinishMigration 迁移完成：目标设备替换源设备，源设备进入擦除队列
func (s *State) FinishMigration(ctx context.Context, now time.Time, diskId, sourceId, targetId string) error {
	if err := s.checkWritable(); err != nil {
		return err
	}
	disk, ok := s.disks.get(diskId)
	if !ok {
		return fmt.Errorf("%w: disk %s", ErrNotFound, diskId)
	}
	idx := slice.IndexOf(disk.Migrations, model.DeviceMigration{SourceDeviceId: sourceId, TargetDeviceId: targetId})
	if idx < 0 {
		return fmt.Errorf("%w: migration %s -> %s in disk %s", ErrNotFound, sourceId, targetId, diskId)
	}
	r, i, ok := locate(disk.Layout(), sourceId)
	if !ok {
		return fmt.Errorf("%w: device %s in disk %s", ErrNotFound, sourceId, diskId)
	}
	return s.update(ctx, func() error {
		d := s.disks.mut(diskId)
		setLayoutDevice(d, r, i, targetId)
		d.Migrations = append(d.Migrations[:idx:idx], d.Migrations[idx+1:]...)
		d.UpdateTime = now
		s.releaseDevice(now, sourceId, diskId)
		s.reevaluateDisk(now, diskId)
		return nil
	})
}

// dependentDisks 依赖给定设备的磁盘，按 id 排序
func (s *State) dependentDisks(deviceIds []string) []string {
	var out []string
	for _, id := range deviceIds {
		if dev, ok := s.devices.get(id); ok && dev.DiskId != "" {
			out = append(out, dev.DiskId)
		}
	}
	out = slice.Unique(out)
	sort.Strings(out)
	return out
}
