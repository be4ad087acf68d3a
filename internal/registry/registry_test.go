package registry_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"diskregistry/internal/model"
	"diskregistry/internal/registry"
	"diskregistry/internal/registry/mocks"
	"diskregistry/pkg/log"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counterCookies struct {
	n atomic.Uint64
}

func (c *counterCookies) GenUint64() (uint64, error) {
	return c.n.Add(1), nil
}

type registryDeps struct {
	eraser   *mocks.MockEraser
	sessions *mocks.MockSessionManager
	volumes  *mocks.MockVolumeDirectory
	notifier *mocks.MockNotifier
}

func eraseAll(_ context.Context, reqs []registry.EraseRequest) ([]string, error) {
	return erasedIds(reqs), nil
}

// startRegistry 启动事件循环，测试结束时停止
func startRegistry(t *testing.T, cfg registry.Config, store registry.StateStore, setup func(d registryDeps)) *registry.Registry {
	t.Helper()
	return startRegistryWithClock(t, cfg, store, nil, setup)
}

func startRegistryWithClock(t *testing.T, cfg registry.Config, store registry.StateStore, now func() time.Time, setup func(d registryDeps)) *registry.Registry {
	t.Helper()
	ctrl := gomock.NewController(t)
	d := registryDeps{
		eraser:   mocks.NewMockEraser(ctrl),
		sessions: mocks.NewMockSessionManager(ctrl),
		volumes:  mocks.NewMockVolumeDirectory(ctrl),
		notifier: mocks.NewMockNotifier(ctrl),
	}
	d.eraser.EXPECT().Stop().Times(1)
	if setup != nil {
		setup(d)
	}
	r := registry.NewRegistry(cfg, log.NewNop(), store, d.eraser, d.sessions, d.volumes, d.notifier, &counterCookies{})
	if now != nil {
		r.WithClock(now)
	}
	require.NoError(t, r.Start(context.Background()))
	t.Cleanup(func() {
		_ = r.Stop(context.Background())
	})
	return r
}

func waitClean(t *testing.T, r *registry.Registry) {
	t.Helper()
	require.Eventually(t, func() bool {
		dirty, err := r.ListDirtyDevices(context.Background())
		return err == nil && len(dirty) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRegistryErasesNewDevices(t *testing.T) {
	ctx := context.Background()
	r := startRegistry(t, testConfig(), registry.NewMemoryStore(), func(d registryDeps) {
		d.eraser.EXPECT().SecureErase(gomock.Any(), gomock.Len(2)).DoAndReturn(eraseAll).Times(1)
	})

	agent, err := r.RegisterAgent(ctx, registry.AgentConfig{AgentId: "agent-1", NodeId: 1, Devices: rackDevices("a1", "rack-1", 2)})
	require.NoError(t, err)
	assert.Equal(t, []string{"a1-1", "a1-2"}, agent.DeviceIds)
	waitClean(t, r)

	disk, err := r.AllocateDisk(ctx, registry.AllocateRequest{
		DiskId:      "disk-1",
		BlockSize:   blockSize,
		BlocksCount: 10 * gib / blockSize,
		MediaKind:   model.MediaKindSSDNonReplicated,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a1-1"}, disk.Devices)
}

func TestRegistryRetriesFailedErase(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.SecureEraseRetryBackoff = time.Hour
	r := startRegistry(t, cfg, registry.NewMemoryStore(), func(d registryDeps) {
		d.eraser.EXPECT().SecureErase(gomock.Any(), gomock.Any()).
			Return([]string{"a1-1"}, assert.AnError).Times(1)
	})

	_, err := r.RegisterAgent(ctx, registry.AgentConfig{AgentId: "agent-1", NodeId: 1, Devices: rackDevices("a1", "rack-1", 2)})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		dirty, err := r.ListDirtyDevices(ctx)
		return err == nil && len(dirty) == 1 && dirty[0].DeviceId == "a1-2" && dirty[0].Attempt == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRegistryAbandonsEraseOnDisconnect(t *testing.T) {
	ctx := context.Background()
	release := make(chan struct{})
	started := make(chan struct{})
	var calls atomic.Int32
	r := startRegistry(t, backoffConfig(), registry.NewMemoryStore(), func(d registryDeps) {
		d.eraser.EXPECT().SecureErase(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, reqs []registry.EraseRequest) ([]string, error) {
				if calls.Add(1) == 1 {
					close(started)
					<-release
				}
				return erasedIds(reqs), nil
			}).Times(2)
	})
	defer close(release)

	devices := rackDevices("a1", "rack-1", 1)
	_, err := r.RegisterAgent(ctx, registry.AgentConfig{AgentId: "agent-1", NodeId: 1, Devices: devices})
	require.NoError(t, err)
	<-started

	require.NoError(t, r.AgentDisconnected(ctx, "agent-1", 1))
	_, err = r.RegisterAgent(ctx, registry.AgentConfig{AgentId: "agent-1", NodeId: 1, Devices: devices})
	require.NoError(t, err)

	waitClean(t, r)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRegistryDropsReplacedSession(t *testing.T) {
	ctx := context.Background()
	dropped := make(chan struct{})
	r := startRegistry(t, testConfig(), registry.NewMemoryStore(), func(d registryDeps) {
		d.sessions.EXPECT().DropSession("agent-1", uint32(1)).Do(func(string, uint32) { close(dropped) }).Times(1)
	})

	_, err := r.RegisterAgent(ctx, registry.AgentConfig{AgentId: "agent-1", NodeId: 1, SeqNumber: 1})
	require.NoError(t, err)
	_, err = r.RegisterAgent(ctx, registry.AgentConfig{AgentId: "agent-1", NodeId: 2, SeqNumber: 2})
	require.NoError(t, err)

	select {
	case <-dropped:
	case <-time.After(2 * time.Second):
		t.Fatal("session was not dropped")
	}
}

func TestRegistryStartResetsSessions(t *testing.T) {
	ctx := context.Background()
	cfg := backoffConfig()
	store := registry.NewMemoryStore()
	s := registry.NewState(cfg, log.NewNop(), store)
	registerAgent(t, s, t0, "agent-1", 1, device("a1-1", "rack-1"))

	r := startRegistry(t, cfg, store, nil)
	agent, err := r.DescribeAgent(ctx, "agent-1")
	require.NoError(t, err)
	assert.False(t, agent.Connected)
	assert.True(t, agent.DisconnectPending())

	_, err = r.DescribeAgent(ctx, "agent-x")
	assert.ErrorIs(t, err, registry.ErrNotFound)
}

func TestRegistryPushesDiskNotifications(t *testing.T) {
	ctx := context.Background()
	var (
		mu   sync.Mutex
		sent []registry.DiskStateNotification
	)
	r := startRegistry(t, testConfig(), registry.NewMemoryStore(), func(d registryDeps) {
		d.eraser.EXPECT().SecureErase(gomock.Any(), gomock.Any()).DoAndReturn(eraseAll).AnyTimes()
		d.notifier.EXPECT().NotifyDiskState(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, n registry.DiskStateNotification) error {
				mu.Lock()
				defer mu.Unlock()
				sent = append(sent, n)
				return nil
			}).Times(1)
	})

	_, err := r.RegisterAgent(ctx, registry.AgentConfig{AgentId: "agent-1", NodeId: 1, Devices: rackDevices("a1", "rack-1", 1)})
	require.NoError(t, err)
	waitClean(t, r)
	_, err = r.AllocateDisk(ctx, registry.AllocateRequest{
		DiskId:      "disk-1",
		BlockSize:   blockSize,
		BlocksCount: 10 * gib / blockSize,
		MediaKind:   model.MediaKindSSDNonReplicated,
	})
	require.NoError(t, err)

	require.NoError(t, r.ChangeDeviceState(ctx, "a1-1", model.DeviceStateError, "smart"))
	require.Eventually(t, func() bool {
		pending, err := r.ListDisksToNotify(ctx)
		return err == nil && len(pending) == 0
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, sent, 1)
	assert.Equal(t, registry.DiskStateNotification{
		DiskId:       "disk-1",
		SeqNo:        1,
		IoMode:       model.DiskIoModeOk,
		MuteIoErrors: true,
		State:        model.DiskStateError,
	}, sent[0])
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestRegistryBacksOffFailedNotifications(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.NotificationRetryBackoff = time.Second
	cfg.NotificationMaxRetryBackoff = 8 * time.Second
	clock := &testClock{now: t0}
	var calls atomic.Int32
	r := startRegistryWithClock(t, cfg, registry.NewMemoryStore(), clock.Now, func(d registryDeps) {
		d.eraser.EXPECT().SecureErase(gomock.Any(), gomock.Any()).DoAndReturn(eraseAll).AnyTimes()
		d.notifier.EXPECT().NotifyDiskState(gomock.Any(), gomock.Any()).DoAndReturn(
			func(context.Context, registry.DiskStateNotification) error {
				calls.Add(1)
				return assert.AnError
			}).AnyTimes()
	})

	_, err := r.RegisterAgent(ctx, registry.AgentConfig{AgentId: "agent-1", NodeId: 1, Devices: rackDevices("a1", "rack-1", 1)})
	require.NoError(t, err)
	waitClean(t, r)
	_, err = r.AllocateDisk(ctx, registry.AllocateRequest{
		DiskId:      "disk-1",
		BlockSize:   blockSize,
		BlocksCount: 10 * gib / blockSize,
		MediaKind:   model.MediaKindSSDNonReplicated,
	})
	require.NoError(t, err)
	require.NoError(t, r.ChangeDeviceState(ctx, "a1-1", model.DeviceStateError, "smart"))

	require.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
	// 时钟不动时，失败不会立即重推
	for i := 0; i < 20; i++ {
		require.NoError(t, r.Tick(ctx))
	}
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	clock.Advance(time.Second)
	require.NoError(t, r.Tick(ctx))
	require.Eventually(t, func() bool { return calls.Load() == 2 }, 2*time.Second, 5*time.Millisecond)

	// 第二次失败后等待 2s
	clock.Advance(time.Second)
	require.NoError(t, r.Tick(ctx))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(2), calls.Load())

	// 一分钟内按秒驱动，退避上限 8s，推送次数有界
	for i := 0; i < 60; i++ {
		clock.Advance(time.Second)
		require.NoError(t, r.Tick(ctx))
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)
	got := calls.Load()
	assert.GreaterOrEqual(t, got, int32(4))
	assert.LessOrEqual(t, got, int32(12))

	pending, err := r.ListDisksToNotify(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"disk-1"}, pending)
}

func TestRegistryCleanupDisks(t *testing.T) {
	ctx := context.Background()
	called := make(chan struct{})
	release := make(chan struct{})
	r := startRegistry(t, testConfig(), registry.NewMemoryStore(), func(d registryDeps) {
		d.eraser.EXPECT().SecureErase(gomock.Any(), gomock.Any()).DoAndReturn(eraseAll).AnyTimes()
		d.volumes.EXPECT().ReferencedDisks(gomock.Any(), []string{"disk-1", "disk-2"}).DoAndReturn(
			func(context.Context, []string) ([]string, error) {
				close(called)
				<-release
				return []string{"disk-2"}, nil
			}).Times(1)
	})

	_, err := r.RegisterAgent(ctx, registry.AgentConfig{AgentId: "agent-1", NodeId: 1, Devices: rackDevices("a1", "rack-1", 3)})
	require.NoError(t, err)
	waitClean(t, r)
	for _, id := range []string{"disk-1", "disk-2", "disk-3"} {
		_, err := r.AllocateDisk(ctx, registry.AllocateRequest{
			DiskId:      id,
			BlockSize:   blockSize,
			BlocksCount: 10 * gib / blockSize,
			MediaKind:   model.MediaKindSSDNonReplicated,
		})
		require.NoError(t, err)
	}
	require.NoError(t, r.MarkDiskForCleanup(ctx, "disk-1"))
	require.NoError(t, r.MarkDiskForCleanup(ctx, "disk-2"))

	// 第二个请求与进行中的确认合并
	var wg sync.WaitGroup
	results := make([][]string, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = r.CleanupDisks(ctx)
	}()
	<-called
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1], _ = r.CleanupDisks(ctx)
	}()
	time.Sleep(200 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, []string{"disk-1"}, results[0])
	assert.Equal(t, []string{"disk-1"}, results[1])
	_, err = r.DescribeDisk(ctx, "disk-1")
	assert.ErrorIs(t, err, registry.ErrNotFound)
	_, err = r.DescribeDisk(ctx, "disk-2")
	assert.NoError(t, err)
}

func TestRegistryCleanupDisksIsIdempotent(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.SecureEraseRetryBackoff = time.Hour
	var erases atomic.Int32
	r := startRegistry(t, cfg, registry.NewMemoryStore(), func(d registryDeps) {
		// 注册时的擦除成功，之后的擦除失败，释放的设备保持 dirty
		d.eraser.EXPECT().SecureErase(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, reqs []registry.EraseRequest) ([]string, error) {
				if erases.Add(1) == 1 {
					return eraseAll(ctx, reqs)
				}
				return nil, assert.AnError
			}).AnyTimes()
		d.volumes.EXPECT().ReferencedDisks(gomock.Any(), []string{"disk-1"}).Return(nil, nil).Times(1)
	})

	_, err := r.RegisterAgent(ctx, registry.AgentConfig{AgentId: "agent-1", NodeId: 1, Devices: rackDevices("a1", "rack-1", 2)})
	require.NoError(t, err)
	waitClean(t, r)
	for _, id := range []string{"disk-1", "disk-2"} {
		_, err := r.AllocateDisk(ctx, registry.AllocateRequest{
			DiskId:      id,
			BlockSize:   blockSize,
			BlocksCount: 10 * gib / blockSize,
			MediaKind:   model.MediaKindSSDNonReplicated,
		})
		require.NoError(t, err)
	}
	require.NoError(t, r.MarkDiskForCleanup(ctx, "disk-1"))

	removed, err := r.CleanupDisks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"disk-1"}, removed)
	dirty, err := r.ListDirtyDevices(ctx)
	require.NoError(t, err)
	require.Len(t, dirty, 1)
	assert.Equal(t, "a1-1", dirty[0].DeviceId)

	removed, err = r.CleanupDisks(ctx)
	require.NoError(t, err)
	assert.Empty(t, removed)
	again, err := r.ListDirtyDevices(ctx)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, "a1-1", again[0].DeviceId)

	_, err = r.DescribeDisk(ctx, "disk-2")
	assert.NoError(t, err)
}

func TestRegistryRejectsCommandsAfterStop(t *testing.T) {
	ctx := context.Background()
	r := startRegistry(t, testConfig(), registry.NewMemoryStore(), nil)

	require.NoError(t, r.Stop(ctx))
	_, err := r.RegisterAgent(ctx, registry.AgentConfig{AgentId: "agent-1"})
	assert.ErrorIs(t, err, registry.ErrRejected)
	assert.ErrorIs(t, r.Tick(ctx), registry.ErrRejected)
}
