package v1

import "time"

type AllocateDiskRequest struct {
	DiskId           string   `json:"disk_id" binding:"required" example:"vol0"`
	BlocksCount      uint64   `json:"blocks_count" binding:"required" example:"5242880"`
	BlockSize        uint32   `json:"block_size" binding:"required" example:"4096"`
	MediaKind        string   `json:"media_kind" binding:"required,oneof=ssd_nonreplicated hdd_nonreplicated ssd_mirror2 ssd_mirror3 ssd_local" example:"ssd_nonreplicated"`
	PlacementGroupId string   `json:"placement_group_id" example:""`
	ReplicaCount     uint32   `json:"replica_count" example:"0"`
	CloudId          string   `json:"cloud_id" example:"cloud-1"`
	FolderId         string   `json:"folder_id" example:"folder-1"`
	PreferredRacks   []string `json:"preferred_racks" example:"rack-1"`
}

type DeviceMigration struct {
	SourceDeviceId string     `json:"source_device_id"`
	Target         DeviceItem `json:"target"`
}

type DiskData struct {
	DiskId           string            `json:"disk_id"`
	BlocksCount      uint64            `json:"blocks_count"`
	BlockSize        uint32            `json:"block_size"`
	MediaKind        string            `json:"media_kind"`
	ReplicaCount     uint32            `json:"replica_count"`
	PlacementGroupId string            `json:"placement_group_id"`
	CloudId          string            `json:"cloud_id"`
	FolderId         string            `json:"folder_id"`
	Devices          []DeviceItem      `json:"devices"`
	Replicas         [][]DeviceItem    `json:"replicas"`
	Migrations       []DeviceMigration `json:"migrations"`
	IoMode           string            `json:"io_mode"`
	IoModeTs         time.Time         `json:"io_mode_ts"`
	MuteIoErrors     bool              `json:"mute_io_errors"`
	MarkedForCleanup bool              `json:"marked_for_cleanup"`
	State            string            `json:"state"`
}

type AllocateDiskResponse struct {
	Response
	Data DiskData
}

type DeallocateDiskRequest struct {
	Force bool `form:"force" example:"false"`
}

type ReplaceDeviceRequest struct {
	DeviceId string `json:"device_id" binding:"required" example:"uuid-1"`
}

type FinishMigrationRequest struct {
	SourceDeviceId string `json:"source_device_id" binding:"required" example:"uuid-1"`
	TargetDeviceId string `json:"target_device_id" binding:"required" example:"uuid-7"`
}

type ListDisksToNotifyResponseData struct {
	DiskIds []string `json:"disk_ids"`
}

type ListDisksToNotifyResponse struct {
	Response
	Data ListDisksToNotifyResponseData
}

type CleanupDisksResponseData struct {
	RemovedDiskIds []string `json:"removed_disk_ids"`
}
