package v1

const (
	CmsActionRemoveHost   = "remove_host"
	CmsActionAddHost      = "add_host"
	CmsActionRemoveDevice = "remove_device"
	CmsActionAddDevice    = "add_device"
)

type CmsAction struct {
	Type   string `json:"type" binding:"required,oneof=remove_host add_host remove_device add_device" example:"remove_host"`
	Host   string `json:"host" binding:"required" example:"agent-1.example.net"`
	Device string `json:"device" example:"/dev/disk/by-partlabel/NVMENBS01"`
}

type CmsActionRequest struct {
	Actions []CmsAction `json:"actions" binding:"required,dive"`
}

type CmsActionResult struct {
	Type             string   `json:"type"`
	Host             string   `json:"host"`
	Device           string   `json:"device"`
	Code             int      `json:"code"`
	Message          string   `json:"message"`
	DependentDiskIds []string `json:"dependent_disk_ids"`
	Timeout          float64  `json:"timeout"` // 秒，0 表示可以立即操作
}

type CmsActionResponseData struct {
	Results []CmsActionResult `json:"results"`
}
