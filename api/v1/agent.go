package v1

import "time"

// DeviceConfig agent 注册时上报的设备
type DeviceConfig struct {
	DeviceId    string `json:"device_id" binding:"required" example:"uuid-1"`
	DeviceName  string `json:"device_name" binding:"required" example:"/dev/disk/by-partlabel/NVMENBS01"`
	PoolName    string `json:"pool_name" example:""`
	PoolKind    string `json:"pool_kind" binding:"omitempty,oneof=default local global" example:"default"`
	BlockSize   uint32 `json:"block_size" binding:"required" example:"4096"`
	BlocksCount uint64 `json:"blocks_count" binding:"required" example:"2621440"`
	Rack        string `json:"rack" example:"rack-1"`
}

type RegisterAgentRequest struct {
	AgentId   string         `json:"agent_id" binding:"required" example:"agent-1.example.net"`
	NodeId    uint32         `json:"node_id" example:"1"`
	SeqNumber uint64         `json:"seq_number" example:"1"`
	Endpoint  string         `json:"endpoint" example:"agent-1.example.net:9766"`
	Devices   []DeviceConfig `json:"devices" binding:"dive"`
}

type RegisterAgentResponseData struct {
	AgentId   string `json:"agent_id"`
	SeqNumber uint64 `json:"seq_number"`
	State     string `json:"state"`
}

type UnregisterAgentRequest struct {
	AgentId string `json:"agent_id" binding:"required" example:"agent-1.example.net"`
	NodeId  uint32 `json:"node_id" example:"1"`
}

type ChangeAgentStateRequest struct {
	State   string `json:"state" binding:"required,oneof=online warning unavailable" example:"warning"`
	Message string `json:"message" example:"maintenance"`
}

type DeviceStats struct {
	DeviceId      string `json:"device_id" binding:"required" example:"uuid-1"`
	Errors        uint64 `json:"errors" example:"0"`
	NumReadOps    uint64 `json:"num_read_ops" example:"100"`
	NumWriteOps   uint64 `json:"num_write_ops" example:"100"`
	BytesRead     uint64 `json:"bytes_read" example:"409600"`
	BytesWritten  uint64 `json:"bytes_written" example:"409600"`
	NumZeroBlocks uint64 `json:"num_zero_blocks" example:"0"`
}

type UpdateAgentStatsRequest struct {
	AgentId     string        `json:"agent_id" binding:"required" example:"agent-1.example.net"`
	DeviceStats []DeviceStats `json:"device_stats" binding:"dive"`
}

type AgentItem struct {
	AgentId            string     `json:"agent_id"`
	NodeId             uint32     `json:"node_id"`
	SeqNumber          uint64     `json:"seq_number"`
	Endpoint           string     `json:"endpoint"`
	State              string     `json:"state"`
	StateMessage       string     `json:"state_message"`
	StateTs            time.Time  `json:"state_ts"`
	Connected          bool       `json:"connected"`
	DisconnectDeadline *time.Time `json:"disconnect_deadline,omitempty"`
	DisconnectTimeout  float64    `json:"disconnect_timeout"` // 秒
	DeviceIds          []string   `json:"device_ids"`
}

type ListAgentsResponseData struct {
	Total int64       `json:"total"`
	List  []AgentItem `json:"list"`
}

type ListAgentsResponse struct {
	Response
	Data ListAgentsResponseData
}

// agent 会话消息类型（websocket）
const (
	SessionMessageRegister   = "register"
	SessionMessageStats      = "stats"
	SessionMessageUnregister = "unregister"
)

// AgentSessionMessage agent 通过 websocket 会话发送的消息
type AgentSessionMessage struct {
	Type     string                   `json:"type"`
	Register *RegisterAgentRequest    `json:"register,omitempty"`
	Stats    *UpdateAgentStatsRequest `json:"stats,omitempty"`
}

type AgentSessionReply struct {
	Type    string      `json:"type"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
