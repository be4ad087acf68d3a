package model

import (
	"time"
)

type AgentState string

const (
	AgentStateOnline      AgentState = "online"
	AgentStateWarning     AgentState = "warning"
	AgentStateUnavailable AgentState = "unavailable"
)

type Agent struct {
	AgentId      string     `json:"agent_id" gorm:"column:agent_id;primaryKey;size:255"`
	NodeId       uint32     `json:"node_id" gorm:"column:node_id"`
	SeqNumber    uint64     `json:"seq_number" gorm:"column:seq_number"`
	Endpoint     string     `json:"endpoint" gorm:"column:endpoint"`
	State        AgentState `json:"state" gorm:"column:state;size:32"`
	StateTs      time.Time  `json:"state_ts" gorm:"column:state_ts"`
	StateMessage string     `json:"state_message" gorm:"column:state_message"`
	// 连接状态与断连退避：(DisconnectDeadline, DisconnectTimeout) 随记录持久化，重启后可还原
	Connected          bool          `json:"connected" gorm:"column:connected"`
	ConnectedTs        time.Time     `json:"connected_ts" gorm:"column:connected_ts"`
	DisconnectTs       time.Time     `json:"disconnect_ts" gorm:"column:disconnect_ts"`
	DisconnectDeadline time.Time     `json:"disconnect_deadline" gorm:"column:disconnect_deadline"`
	DisconnectTimeout  time.Duration `json:"disconnect_timeout" gorm:"column:disconnect_timeout"`
	DeviceIds          []string      `json:"device_ids" gorm:"column:device_ids;serializer:json"`
	ConfigHash         string        `json:"config_hash" gorm:"column:config_hash"`
	CreateTime         time.Time     `json:"create_time" gorm:"column:gmt_create"`
	UpdateTime         time.Time     `json:"update_time" gorm:"column:gmt_modified"`
}

func (Agent) TableName() string {
	return "agents"
}

// DisconnectPending 已断连但尚未超时
func (a *Agent) DisconnectPending() bool {
	return !a.Connected && !a.DisconnectDeadline.IsZero()
}

func (a *Agent) Clone() *Agent {
	c := *a
	c.DeviceIds = append([]string(nil), a.DeviceIds...)
	return &c
}
