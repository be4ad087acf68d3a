package registry

import (
	"context"
	"sort"

	"diskregistry/internal/model"
)

// notifyDisk 磁盘对外可见的状态变化，分配新的序号
func (s *State) notifyDisk(diskId string) {
	meta := s.mutMeta()
	meta.LastDiskStateSeqNo++
	s.notifications.put(diskId, &model.DiskNotification{DiskId: diskId, SeqNo: meta.LastDiskStateSeqNo})
}

func (s *State) ListDisksToNotify() []string {
	return sortedKeys(s.notifications.rows)
}

func (s *State) PendingNotifications() []*model.DiskNotification {
	out := make([]*model.DiskNotification, 0, s.notifications.len())
	for _, n := range s.notifications.rows {
		out = append(out, n.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeqNo < out[j].SeqNo })
	return out
}

// ConfirmNotification 通知已送达；期间若有更新的序号则保留
func (s *State) ConfirmNotification(ctx context.Context, diskId string, seqNo uint64) error {
	n, ok := s.notifications.get(diskId)
	if !ok || n.SeqNo != seqNo {
		return nil
	}
	return s.update(ctx, func() error {
		s.notifications.del(diskId)
		return nil
	})
}
