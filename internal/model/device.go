package model

import (
	"time"
)

type DeviceState string

const (
	DeviceStateOnline  DeviceState = "online"
	DeviceStateWarning DeviceState = "warning"
	DeviceStateError   DeviceState = "error"
)

type PoolKind string

const (
	PoolKindDefault PoolKind = "default"
	PoolKindLocal   PoolKind = "local"
	PoolKindGlobal  PoolKind = "global"
)

type Device struct {
	DeviceId     string      `json:"device_id" gorm:"column:device_id;primaryKey;size:255"`
	DeviceName   string      `json:"device_name" gorm:"column:device_name"`
	AgentId      string      `json:"agent_id" gorm:"column:agent_id;index;size:255"`
	NodeId       uint32      `json:"node_id" gorm:"column:node_id"`
	PoolName     string      `json:"pool_name" gorm:"column:pool_name"`
	PoolKind     PoolKind    `json:"pool_kind" gorm:"column:pool_kind;size:32"`
	BlockSize    uint32      `json:"block_size" gorm:"column:block_size"`
	BlocksCount  uint64      `json:"blocks_count" gorm:"column:blocks_count"`
	Rack         string      `json:"rack" gorm:"column:rack"`
	State        DeviceState `json:"state" gorm:"column:state;size:32"`
	StateTs      time.Time   `json:"state_ts" gorm:"column:state_ts"`
	StateMessage string      `json:"state_message" gorm:"column:state_message"`
	DiskId       string      `json:"disk_id" gorm:"column:disk_id;index;size:255"`
	// Suspended 挂起的设备不参与分配和擦除
	Suspended  bool      `json:"suspended" gorm:"column:suspended"`
	CreateTime time.Time `json:"create_time" gorm:"column:gmt_create"`
	UpdateTime time.Time `json:"update_time" gorm:"column:gmt_modified"`
}

func (Device) TableName() string {
	return "devices"
}

func (d *Device) Bytes() uint64 {
	return uint64(d.BlockSize) * d.BlocksCount
}

func (d *Device) Clone() *Device {
	c := *d
	return &c
}
