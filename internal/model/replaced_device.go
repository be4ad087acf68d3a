package model

import (
	"time"
)

// ReplacedDevice 设备替换记录，用于按小时窗口限流
type ReplacedDevice struct {
	DeviceId   string    `json:"device_id" gorm:"column:device_id;primaryKey;size:255"`
	DiskId     string    `json:"disk_id" gorm:"column:disk_id;index;size:255"`
	AgentId    string    `json:"agent_id" gorm:"column:agent_id"`
	ReplacedAt time.Time `json:"replaced_at" gorm:"column:replaced_at"`
}

func (ReplacedDevice) TableName() string {
	return "replaced_devices"
}

func (r *ReplacedDevice) Clone() *ReplacedDevice {
	c := *r
	return &c
}
