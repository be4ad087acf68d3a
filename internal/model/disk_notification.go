package model

type DiskNotification struct {
	DiskId string `json:"disk_id" gorm:"column:disk_id;primaryKey;size:255"`
	SeqNo  uint64 `json:"seq_no" gorm:"column:seq_no"`
}

func (DiskNotification) TableName() string {
	return "disk_notifications"
}

func (n *DiskNotification) Clone() *DiskNotification {
	c := *n
	return &c
}
