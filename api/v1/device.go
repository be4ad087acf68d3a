package v1

import "time"

type DeviceItem struct {
	DeviceId     string    `json:"device_id"`
	DeviceName   string    `json:"device_name"`
	AgentId      string    `json:"agent_id"`
	NodeId       uint32    `json:"node_id"`
	PoolName     string    `json:"pool_name"`
	PoolKind     string    `json:"pool_kind"`
	BlockSize    uint32    `json:"block_size"`
	BlocksCount  uint64    `json:"blocks_count"`
	Rack         string    `json:"rack"`
	State        string    `json:"state"`
	StateMessage string    `json:"state_message"`
	StateTs      time.Time `json:"state_ts"`
	DiskId       string    `json:"disk_id"`
	Dirty        bool      `json:"dirty"`
	Suspended    bool      `json:"suspended"`
}

type GetDeviceResponse struct {
	Response
	Data DeviceItem
}

type ChangeDeviceStateRequest struct {
	State   string `json:"state" binding:"required,oneof=online warning error" example:"error"`
	Message string `json:"message" example:"replaced by cms"`
}

type ListDevicesRequest struct {
	AgentId   string `form:"agent_id" example:"agent-1.example.net"`
	PoolName  string `form:"pool_name" example:""`
	State     string `form:"state" binding:"omitempty,oneof=online warning error" example:"online"`
	DiskId    string `form:"disk_id" example:"vol0"`
	Dirty     *bool  `form:"dirty" example:"false"`
	Suspended *bool  `form:"suspended" example:"false"`
}

type ListDevicesResponseData struct {
	Total int64        `json:"total"`
	List  []DeviceItem `json:"list"`
}

type ListDevicesResponse struct {
	Response
	Data ListDevicesResponseData
}
