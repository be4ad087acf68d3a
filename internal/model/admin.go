package model

import (
	"time"
)

// Admin 管理接口账号
type Admin struct {
	Id         uint      `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	UserId     string    `json:"user_id" gorm:"column:user_id;unique;not null;size:64"`
	Username   string    `json:"username" gorm:"column:username;unique;not null;size:64"`
	Password   string    `json:"-" gorm:"column:password;not null"`
	CreateTime time.Time `json:"create_time" gorm:"column:gmt_create"`
	UpdateTime time.Time `json:"update_time" gorm:"column:gmt_modified"`
}

func (Admin) TableName() string {
	return "admins"
}
