package registry

import (
	"context"
	"fmt"
	"sort"
	"time"

	"diskregistry/internal/model"

	"github.com/duke-git/lancet/v2/slice"
	"go.uber.org/zap"
)

type AllocateRequest struct {
	DiskId           string
	BlocksCount      uint64
	BlockSize        uint32
	MediaKind        model.MediaKind
	PlacementGroupId string
	ReplicaCount     uint32
	CloudId          string
	FolderId         string
	// PreferredRacks 优先从这些机架上挑选设备
	PreferredRacks []string
}

// placementQuery 一次设备选择的约束
type placementQuery struct {
	pool      PoolConfig
	unitBytes uint64
	// existing 每个副本已有的设备，下标为副本号
	existing [][]string
	// count 每个副本需要追加的设备数
	count          int
	forbiddenRacks map[string]struct{}
	preferredRacks map[string]struct{}
	exclude        map[string]struct{}
}

func replicaCountFor(kind model.MediaKind) uint32 {
	switch kind {
	case model.MediaKindSSDMirror2:
		return 1
	case model.MediaKindSSDMirror3:
		return 2
	default:
		return 0
	}
}

// AllocateDisk 分配磁盘，对已存在的磁盘幂等（更大的容量视为扩容）
func (s *State) AllocateDisk(ctx context.Context, now time.Time, req AllocateRequest) (*model.Disk, error) {
	if err := s.checkWritable(); err != nil {
		return nil, err
	}
	if req.DiskId == "" || req.BlockSize == 0 || req.BlocksCount == 0 {
		return nil, fmt.Errorf("%w: disk id, block size and blocks count are required", ErrInvalidArgument)
	}
	unit, ok := s.cfg.AllocationUnits[req.MediaKind]
	if !ok || unit == 0 {
		return nil, fmt.Errorf("%w: unsupported media kind %q", ErrInvalidArgument, req.MediaKind)
	}
	replicas := replicaCountFor(req.MediaKind)
	if req.ReplicaCount != 0 && req.ReplicaCount != replicas {
		return nil, fmt.Errorf("%w: media kind %s requires replica count %d", ErrInvalidArgument, req.MediaKind, replicas)
	}
	req.ReplicaCount = replicas
	bytes := req.BlocksCount * uint64(req.BlockSize)
	needed := int((bytes + unit - 1) / unit)

	existing, exists := s.disks.get(req.DiskId)
	if exists {
		if existing.MediaKind != req.MediaKind || existing.BlockSize != req.BlockSize || existing.ReplicaCount != req.ReplicaCount {
			return nil, fmt.Errorf("%w: disk %s already allocated with different parameters", ErrInvalidArgument, req.DiskId)
		}
		if req.BlocksCount < existing.BlocksCount {
			return nil, fmt.Errorf("%w: disk %s can not be shrunk", ErrInvalidArgument, req.DiskId)
		}
		if req.PlacementGroupId != "" && req.PlacementGroupId != existing.PlacementGroupId {
			return nil, fmt.Errorf("%w: disk %s belongs to placement group %q", ErrInvalidArgument, req.DiskId, existing.PlacementGroupId)
		}
		if req.BlocksCount == existing.BlocksCount {
			return existing.Clone(), nil
		}
	}

	if req.PlacementGroupId != "" && !exists {
		group, ok := s.groups.get(req.PlacementGroupId)
		if !ok {
			return nil, fmt.Errorf("%w: placement group %s", ErrNotFound, req.PlacementGroupId)
		}
		if s.cfg.MaxDisksInPlacementGroup > 0 && len(group.DiskIds) >= s.cfg.MaxDisksInPlacementGroup {
			return nil, fmt.Errorf("%w: placement group %s already has %d disks",
				ErrPlacementViolation, req.PlacementGroupId, len(group.DiskIds))
		}
	}

	groupId := req.PlacementGroupId
	q := placementQuery{
		pool:      s.cfg.Pools[req.MediaKind],
		unitBytes: unit,
		existing:  make([][]string, replicas+1),
	}
	if exists {
		groupId = existing.PlacementGroupId
		q.existing = existing.Layout()
	}
	q.forbiddenRacks = s.placementGroupRacks(groupId, req.DiskId)
	q.preferredRacks = make(map[string]struct{}, len(req.PreferredRacks))
	for _, rack := range req.PreferredRacks {
		q.preferredRacks[rack] = struct{}{}
	}
	q.count = needed - len(q.existing[0])

	var added [][]string
	if q.count > 0 {
		var err error
		if added, err = s.planDevices(q); err != nil {
			return nil, fmt.Errorf("disk %s: %w", req.DiskId, err)
		}
	}

	var disk *model.Disk
	err := s.update(ctx, func() error {
		if exists {
			disk = s.disks.mut(req.DiskId)
		} else {
			disk = &model.Disk{
				DiskId:           req.DiskId,
				BlockSize:        req.BlockSize,
				MediaKind:        req.MediaKind,
				ReplicaCount:     req.ReplicaCount,
				PlacementGroupId: req.PlacementGroupId,
				CloudId:          req.CloudId,
				FolderId:         req.FolderId,
				IoMode:           model.DiskIoModeOk,
				IoModeTs:         now,
				State:            model.DiskStateOnline,
				StateTs:          now,
				CreateTime:       now,
			}
			if replicas > 0 {
				disk.Replicas = make([][]string, replicas)
			}
			s.disks.put(req.DiskId, disk)
			if req.PlacementGroupId != "" {
				g := s.groups.mut(req.PlacementGroupId)
				g.DiskIds = append(g.DiskIds, req.DiskId)
				g.UpdateTime = now
			}
		}
		disk.BlocksCount = req.BlocksCount
		disk.UpdateTime = now
		for r, ids := range added {
			for _, id := range ids {
				s.devices.mut(id).DiskId = req.DiskId
			}
			if r == 0 {
				disk.Devices = append(disk.Devices, ids...)
			} else {
				disk.Replicas[r-1] = append(disk.Replicas[r-1], ids...)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("disk allocated",
		zap.String("disk_id", req.DiskId),
		zap.String("media_kind", string(req.MediaKind)),
		zap.Uint64("blocks_count", req.BlocksCount),
		zap.Int("devices", len(disk.Devices)),
		zap.Uint32("replica_count", replicas))
	return disk.Clone(), nil
}

// freeDevices 满足池与容量要求的空闲设备
// 位于 preferred 机架上的排在前面，其余按 (agentId, deviceId) 排序
func (s *State) freeDevices(pool PoolConfig, unitBytes uint64, preferred map[string]struct{}) []*model.Device {
	var out []*model.Device
	for _, dev := range s.devices.rows {
		if dev.PoolName != pool.PoolName || dev.Bytes() < unitBytes || !s.isFree(dev) {
			continue
		}
		out = append(out, dev)
	}
	sort.Slice(out, func(i, j int) bool {
		_, pi := preferred[out[i].Rack]
		_, pj := preferred[out[j].Rack]
		if pi != pj {
			return pi
		}
		if out[i].AgentId != out[j].AgentId {
			return out[i].AgentId < out[j].AgentId
		}
		return out[i].DeviceId < out[j].DeviceId
	})
	return out
}

func (s *State) rackOf(deviceId string) string {
	if dev, ok := s.devices.get(deviceId); ok {
		return dev.Rack
	}
	return ""
}

// planDevices 为每个副本追加 q.count 个设备，不修改状态
// 同一位置上不同副本的设备不能位于同一机架
func (s *State) planDevices(q placementQuery) ([][]string, error) {
	candidates := s.freeDevices(q.pool, q.unitBytes, q.preferredRacks)
	used := make(map[string]struct{})
	for id := range q.exclude {
		used[id] = struct{}{}
	}
	replicas := len(q.existing)
	added := make([][]string, replicas)

	deviceAt := func(r, pos int) (string, bool) {
		if pos < len(q.existing[r]) {
			return q.existing[r][pos], true
		}
		if k := pos - len(q.existing[r]); k < len(added[r]) {
			return added[r][k], true
		}
		return "", false
	}

	for r := 0; r < replicas; r++ {
		replicaRacks := make(map[string]struct{})
		for _, id := range q.existing[r] {
			replicaRacks[s.rackOf(id)] = struct{}{}
		}
		for k := 0; k < q.count; k++ {
			pos := len(q.existing[r]) + k
			forbidden := make(map[string]struct{}, len(q.forbiddenRacks))
			for rack := range q.forbiddenRacks {
				forbidden[rack] = struct{}{}
			}
			for r2 := 0; r2 < replicas; r2++ {
				if r2 == r {
					continue
				}
				if id, ok := deviceAt(r2, pos); ok {
					forbidden[s.rackOf(id)] = struct{}{}
				}
			}
			if s.cfg.SpreadReplicaDevices {
				for rack := range replicaRacks {
					forbidden[rack] = struct{}{}
				}
			}

			picked := ""
			for _, dev := range candidates {
				if _, ok := used[dev.DeviceId]; ok {
					continue
				}
				if _, ok := forbidden[dev.Rack]; ok {
					continue
				}
				picked = dev.DeviceId
				replicaRacks[dev.Rack] = struct{}{}
				break
			}
			if picked == "" {
				return nil, fmt.Errorf("%w: no eligible device for replica %d position %d in pool %q",
					ErrInsufficientResources, r, pos, q.pool.PoolName)
			}
			used[picked] = struct{}{}
			added[r] = append(added[r], picked)
		}
	}
	return added, nil
}

// placementGroupRacks 同一放置组内其他磁盘占用的机架
func (s *State) placementGroupRacks(groupId, diskId string) map[string]struct{} {
	racks := make(map[string]struct{})
	if groupId == "" {
		return racks
	}
	group, ok := s.groups.get(groupId)
	if !ok {
		return racks
	}
	for _, other := range group.DiskIds {
		if other == diskId {
			continue
		}
		if d, ok := s.disks.get(other); ok {
			for _, id := range d.AllDeviceIds() {
				racks[s.rackOf(id)] = struct{}{}
			}
		}
	}
	return racks
}

func (s *State) CreatePlacementGroup(ctx context.Context, now time.Time, groupId string) error {
	if err := s.checkWritable(); err != nil {
		return err
	}
	if groupId == "" {
		return fmt.Errorf("%w: empty group id", ErrInvalidArgument)
	}
	if s.groups.has(groupId) {
		return fmt.Errorf("%w: placement group %s", ErrAlreadyExists, groupId)
	}
	return s.update(ctx, func() error {
		s.groups.put(groupId, &model.PlacementGroup{GroupId: groupId, CreateTime: now, UpdateTime: now})
		return nil
	})
}

// DestroyPlacementGroup 删除放置组，成员磁盘脱离该组
func (s *State) DestroyPlacementGroup(ctx context.Context, now time.Time, groupId string) error {
	if err := s.checkWritable(); err != nil {
		return err
	}
	group, ok := s.groups.get(groupId)
	if !ok {
		return fmt.Errorf("%w: placement group %s", ErrNotFound, groupId)
	}
	members := append([]string(nil), group.DiskIds...)
	return s.update(ctx, func() error {
		for _, id := range members {
			if d := s.disks.mut(id); d != nil {
				d.PlacementGroupId = ""
				d.UpdateTime = now
			}
		}
		s.groups.del(groupId)
		return nil
	})
}

func (s *State) ListPlacementGroups() []*model.PlacementGroup {
	out := make([]*model.PlacementGroup, 0, s.groups.len())
	for _, id := range sortedKeys(s.groups.rows) {
		out = append(out, s.groups.rows[id].Clone())
	}
	return out
}

func (s *State) removeFromPlacementGroup(now time.Time, groupId, diskId string) {
	if groupId == "" {
		return
	}
	g := s.groups.mut(groupId)
	if g == nil {
		return
	}
	g.DiskIds = slice.Filter(g.DiskIds, func(_ int, id string) bool { return id != diskId })
	g.UpdateTime = now
}
