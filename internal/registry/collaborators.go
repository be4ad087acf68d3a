package registry

import (
	"context"

	"diskregistry/internal/model"
)

// Eraser 向 agent 发起安全擦除，返回擦除成功的设备
type Eraser interface {
	SecureErase(ctx context.Context, reqs []EraseRequest) ([]string, error)
	// Stop 之后所有等待中的调用返回 ErrRejected
	Stop()
}

// SessionManager 断开被新注册取代的 agent 会话
type SessionManager interface {
	DropSession(agentId string, nodeId uint32)
}

// VolumeDirectory 外部卷目录，确认磁盘是否仍被卷引用
type VolumeDirectory interface {
	ReferencedDisks(ctx context.Context, diskIds []string) ([]string, error)
}

type DiskStateNotification struct {
	DiskId       string           `json:"disk_id"`
	SeqNo        uint64           `json:"seq_no"`
	IoMode       model.DiskIoMode `json:"io_mode"`
	MuteIoErrors bool             `json:"mute_io_errors"`
	State        model.DiskState  `json:"state"`
}

// Notifier 向卷服务推送磁盘状态变化
type Notifier interface {
	NotifyDiskState(ctx context.Context, n DiskStateNotification) error
}

// CookieGenerator 为异步操作生成唯一标识
type CookieGenerator interface {
	GenUint64() (uint64, error)
}
