package model

import (
	"time"
)

type PlacementGroup struct {
	GroupId    string    `json:"group_id" gorm:"column:group_id;primaryKey;size:255"`
	DiskIds    []string  `json:"disk_ids" gorm:"column:disk_ids;serializer:json"`
	CreateTime time.Time `json:"create_time" gorm:"column:gmt_create"`
	UpdateTime time.Time `json:"update_time" gorm:"column:gmt_modified"`
}

func (PlacementGroup) TableName() string {
	return "placement_groups"
}

func (g *PlacementGroup) Clone() *PlacementGroup {
	c := *g
	c.DiskIds = append([]string(nil), g.DiskIds...)
	return &c
}
