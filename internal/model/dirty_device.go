package model

import (
	"time"
)

// DirtyDevice 等待安全擦除的设备
type DirtyDevice struct {
	DeviceId      string    `json:"device_id" gorm:"column:device_id;primaryKey;size:255"`
	DiskId        string    `json:"disk_id" gorm:"column:disk_id"`
	QueuedAt      time.Time `json:"queued_at" gorm:"column:queued_at"`
	Attempt       uint32    `json:"attempt" gorm:"column:attempt"`
	NextAttemptAt time.Time `json:"next_attempt_at" gorm:"column:next_attempt_at"`
}

func (DirtyDevice) TableName() string {
	return "dirty_devices"
}

func (d *DirtyDevice) Clone() *DirtyDevice {
	c := *d
	return &c
}
