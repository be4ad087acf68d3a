package model

import (
	"time"
)

type DiskIoMode string

const (
	DiskIoModeOk            DiskIoMode = "ok"
	DiskIoModeErrorReadOnly DiskIoMode = "error_read_only"
)

type DiskState string

const (
	DiskStateOnline                 DiskState = "online"
	DiskStateWarning                DiskState = "warning"
	DiskStateTemporarilyUnavailable DiskState = "temporarily_unavailable"
	DiskStateError                  DiskState = "error"
)

type MediaKind string

const (
	MediaKindSSDNonReplicated MediaKind = "ssd_nonreplicated"
	MediaKindHDDNonReplicated MediaKind = "hdd_nonreplicated"
	MediaKindSSDMirror2       MediaKind = "ssd_mirror2"
	MediaKindSSDMirror3       MediaKind = "ssd_mirror3"
	MediaKindSSDLocal         MediaKind = "ssd_local"
)

type DeviceMigration struct {
	SourceDeviceId string `json:"source_device_id"`
	TargetDeviceId string `json:"target_device_id"`
}

type Disk struct {
	DiskId           string    `json:"disk_id" gorm:"column:disk_id;primaryKey;size:255"`
	BlockSize        uint32    `json:"block_size" gorm:"column:block_size"`
	BlocksCount      uint64    `json:"blocks_count" gorm:"column:blocks_count"`
	MediaKind        MediaKind `json:"media_kind" gorm:"column:media_kind;size:64"`
	ReplicaCount     uint32    `json:"replica_count" gorm:"column:replica_count"`
	PlacementGroupId string    `json:"placement_group_id" gorm:"column:placement_group_id;size:255"`
	CloudId          string    `json:"cloud_id" gorm:"column:cloud_id"`
	FolderId         string    `json:"folder_id" gorm:"column:folder_id"`
	// Devices 为主副本（replica 0），Replicas 依次为 replica 1..n，与 Devices 按位置一一对应
	Devices          []string          `json:"devices" gorm:"column:devices;serializer:json"`
	Replicas         [][]string        `json:"replicas" gorm:"column:replicas;serializer:json"`
	Migrations       []DeviceMigration `json:"migrations" gorm:"column:migrations;serializer:json"`
	IoMode           DiskIoMode        `json:"io_mode" gorm:"column:io_mode;size:32"`
	IoModeTs         time.Time         `json:"io_mode_ts" gorm:"column:io_mode_ts"`
	MuteIoErrors     bool              `json:"mute_io_errors" gorm:"column:mute_io_errors"`
	MarkedForCleanup bool              `json:"marked_for_cleanup" gorm:"column:marked_for_cleanup"`
	State            DiskState         `json:"state" gorm:"column:state;size:32"`
	StateTs          time.Time         `json:"state_ts" gorm:"column:state_ts"`
	BrokenTs         time.Time         `json:"broken_ts" gorm:"column:broken_ts"`
	CreateTime       time.Time         `json:"create_time" gorm:"column:gmt_create"`
	UpdateTime       time.Time         `json:"update_time" gorm:"column:gmt_modified"`
}

func (Disk) TableName() string {
	return "disks"
}

// Layout 返回全部副本的设备列表，下标即副本号
func (d *Disk) Layout() [][]string {
	layout := make([][]string, 0, len(d.Replicas)+1)
	layout = append(layout, d.Devices)
	return append(layout, d.Replicas...)
}

// AllDeviceIds 包含迁移目标设备
func (d *Disk) AllDeviceIds() []string {
	var ids []string
	for _, replica := range d.Layout() {
		ids = append(ids, replica...)
	}
	for _, m := range d.Migrations {
		ids = append(ids, m.TargetDeviceId)
	}
	return ids
}

func (d *Disk) Clone() *Disk {
	c := *d
	c.Devices = append([]string(nil), d.Devices...)
	if d.Replicas != nil {
		c.Replicas = make([][]string, len(d.Replicas))
		for i, r := range d.Replicas {
			c.Replicas[i] = append([]string(nil), r...)
		}
	}
	c.Migrations = append([]DeviceMigration(nil), d.Migrations...)
	return &c
}
