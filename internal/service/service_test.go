package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	v1 "diskregistry/api/v1"
	"diskregistry/internal/model"
	"diskregistry/internal/registry"
	"diskregistry/internal/registry/mocks"
	"diskregistry/internal/service"
	"diskregistry/pkg/jwt"
	"diskregistry/pkg/log"
	"diskregistry/pkg/sid"

	"github.com/golang/mock/gomock"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

const (
	gib       = uint64(1) << 30
	blockSize = 4096
)

func eraseAll(_ context.Context, reqs []registry.EraseRequest) ([]string, error) {
	ids := make([]string, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.DeviceId)
	}
	return ids, nil
}

// newTestRegistry 内存存储的 registry，擦除总是成功
func newTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	ctrl := gomock.NewController(t)

	eraser := mocks.NewMockEraser(ctrl)
	eraser.EXPECT().SecureErase(gomock.Any(), gomock.Any()).DoAndReturn(eraseAll).AnyTimes()
	eraser.EXPECT().Stop().AnyTimes()
	sessions := mocks.NewMockSessionManager(ctrl)
	sessions.EXPECT().DropSession(gomock.Any(), gomock.Any()).AnyTimes()
	volumes := mocks.NewMockVolumeDirectory(ctrl)
	volumes.EXPECT().ReferencedDisks(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	notifier := mocks.NewMockNotifier(ctrl)
	notifier.EXPECT().NotifyDiskState(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	cfg := registry.DefaultConfig()
	for kind := range cfg.AllocationUnits {
		cfg.AllocationUnits[kind] = 10 * gib
	}
	cfg.AutomaticReplacement = false

	r := registry.NewRegistry(cfg, log.NewNop(), registry.NewMemoryStore(), eraser, sessions, volumes, notifier, sid.NewSid())
	require.NoError(t, r.Start(context.Background()))
	t.Cleanup(func() {
		_ = r.Stop(context.Background())
	})
	return r
}

func newTestService() *service.Service {
	conf := viper.New()
	conf.Set("security.jwt.key", "test-key")
	return service.NewService(nil, log.NewNop(), sid.NewSid(), jwt.NewJwt(conf))
}

func registerRequest(agentId string, nodeId uint32, seq uint64, rack string, n int) *v1.RegisterAgentRequest {
	req := &v1.RegisterAgentRequest{
		AgentId:   agentId,
		NodeId:    nodeId,
		SeqNumber: seq,
		Endpoint:  agentId + ":9766",
	}
	for i := 1; i <= n; i++ {
		req.Devices = append(req.Devices, v1.DeviceConfig{
			DeviceId:    fmt.Sprintf("%s-%d", agentId, i),
			DeviceName:  fmt.Sprintf("/dev/disk/by-partlabel/NVMENBS%02d", i),
			BlockSize:   blockSize,
			BlocksCount: 10 * gib / blockSize,
			Rack:        rack,
		})
	}
	return req
}

// registerClean 注册 agent 并等待新设备擦除完成
func registerClean(t *testing.T, r *registry.Registry, agents service.AgentService, req *v1.RegisterAgentRequest) {
	t.Helper()
	_, err := agents.RegisterAgent(context.Background(), req)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		dirty, err := r.ListDirtyDevices(context.Background())
		return err == nil && len(dirty) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func allocateRequest(diskId string, kind model.MediaKind) *v1.AllocateDiskRequest {
	return &v1.AllocateDiskRequest{
		DiskId:      diskId,
		BlockSize:   blockSize,
		BlocksCount: 10 * gib / blockSize,
		MediaKind:   string(kind),
	}
}
