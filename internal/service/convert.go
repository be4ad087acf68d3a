package service

import (
	v1 "diskregistry/api/v1"
	"diskregistry/internal/model"
)

func toAgentItem(a *model.Agent) v1.AgentItem {
	item := v1.AgentItem{
		AgentId:           a.AgentId,
		NodeId:            a.NodeId,
		SeqNumber:         a.SeqNumber,
		Endpoint:          a.Endpoint,
		State:             string(a.State),
		StateMessage:      a.StateMessage,
		StateTs:           a.StateTs,
		Connected:         a.Connected,
		DisconnectTimeout: a.DisconnectTimeout.Seconds(),
		DeviceIds:         a.DeviceIds,
	}
	if !a.DisconnectDeadline.IsZero() {
		deadline := a.DisconnectDeadline
		item.DisconnectDeadline = &deadline
	}
	if item.DeviceIds == nil {
		item.DeviceIds = []string{}
	}
	return item
}

func toDeviceItem(d *model.Device, dirty bool) v1.DeviceItem {
	return v1.DeviceItem{
		DeviceId:     d.DeviceId,
		DeviceName:   d.DeviceName,
		AgentId:      d.AgentId,
		NodeId:       d.NodeId,
		PoolName:     d.PoolName,
		PoolKind:     string(d.PoolKind),
		BlockSize:    d.BlockSize,
		BlocksCount:  d.BlocksCount,
		Rack:         d.Rack,
		State:        string(d.State),
		StateMessage: d.StateMessage,
		StateTs:      d.StateTs,
		DiskId:       d.DiskId,
		Dirty:        dirty,
		Suspended:    d.Suspended,
	}
}

// toDiskData devices 为磁盘涉及的全部设备，缺失的设备只保留 id
func toDiskData(d *model.Disk, devices map[string]*model.Device) *v1.DiskData {
	item := func(id string) v1.DeviceItem {
		if dev, ok := devices[id]; ok {
			return toDeviceItem(dev, false)
		}
		return v1.DeviceItem{DeviceId: id}
	}
	data := &v1.DiskData{
		DiskId:           d.DiskId,
		BlocksCount:      d.BlocksCount,
		BlockSize:        d.BlockSize,
		MediaKind:        string(d.MediaKind),
		ReplicaCount:     d.ReplicaCount,
		PlacementGroupId: d.PlacementGroupId,
		CloudId:          d.CloudId,
		FolderId:         d.FolderId,
		Devices:          make([]v1.DeviceItem, 0, len(d.Devices)),
		Replicas:         make([][]v1.DeviceItem, 0, len(d.Replicas)),
		Migrations:       make([]v1.DeviceMigration, 0, len(d.Migrations)),
		IoMode:           string(d.IoMode),
		IoModeTs:         d.IoModeTs,
		MuteIoErrors:     d.MuteIoErrors,
		MarkedForCleanup: d.MarkedForCleanup,
		State:            string(d.State),
	}
	for _, id := range d.Devices {
		data.Devices = append(data.Devices, item(id))
	}
	for _, replica := range d.Replicas {
		items := make([]v1.DeviceItem, 0, len(replica))
		for _, id := range replica {
			items = append(items, item(id))
		}
		data.Replicas = append(data.Replicas, items)
	}
	for _, m := range d.Migrations {
		data.Migrations = append(data.Migrations, v1.DeviceMigration{
			SourceDeviceId: m.SourceDeviceId,
			Target:         item(m.TargetDeviceId),
		})
	}
	return data
}
