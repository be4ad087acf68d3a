package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	v1 "diskregistry/api/v1"
	"diskregistry/internal/handler"
	"diskregistry/internal/middleware"
	"diskregistry/internal/model"
	"diskregistry/internal/registry"
	"diskregistry/internal/registry/mocks"
	"diskregistry/internal/repository"
	"diskregistry/internal/router"
	"diskregistry/internal/service"
	"diskregistry/internal/session"
	"diskregistry/pkg/jwt"
	"diskregistry/pkg/log"
	"diskregistry/pkg/sid"

	"github.com/gavv/httpexpect/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang/mock/gomock"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	gib       = uint64(1) << 30
	blockSize = 4096
)

type testEnv struct {
	e        *httpexpect.Expect
	registry *registry.Registry
	hub      *session.Hub
	token    string
}

func eraseAll(_ context.Context, reqs []registry.EraseRequest) ([]string, error) {
	ids := make([]string, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.DeviceId)
	}
	return ids, nil
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := log.NewNop()

	conf := viper.New()
	conf.Set("security.jwt.key", "test-key")
	conf.Set("security.ratelimit.rps", 1000)
	conf.Set("security.ratelimit.burst", 1000)
	j := jwt.NewJwt(conf)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&model.Admin{}))

	ctrl := gomock.NewController(t)
	eraser := mocks.NewMockEraser(ctrl)
	eraser.EXPECT().SecureErase(gomock.Any(), gomock.Any()).DoAndReturn(eraseAll).AnyTimes()
	eraser.EXPECT().Stop().AnyTimes()
	volumes := mocks.NewMockVolumeDirectory(ctrl)
	volumes.EXPECT().ReferencedDisks(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	notifier := mocks.NewMockNotifier(ctrl)
	notifier.EXPECT().NotifyDiskState(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	cfg := registry.DefaultConfig()
	for kind := range cfg.AllocationUnits {
		cfg.AllocationUnits[kind] = 10 * gib
	}
	cfg.AutomaticReplacement = false

	hub := session.NewHub(logger)
	reg := registry.NewRegistry(cfg, logger, registry.NewMemoryStore(), eraser, hub, volumes, notifier, sid.NewSid())
	require.NoError(t, reg.Start(context.Background()))
	t.Cleanup(func() {
		hub.Close()
		_ = reg.Stop(context.Background())
	})

	repo := repository.NewRepository(logger, db, nil)
	svc := service.NewService(repository.NewTransaction(repo), logger, sid.NewSid(), j)
	adminService := service.NewAdminService(svc, repository.NewAdminRepository(repo))
	_, err = adminService.EnsureAdmin(context.Background(), "admin", "Ab123456")
	require.NoError(t, err)
	agentService := service.NewAgentService(svc, reg, logger)

	h := handler.NewHandler(logger)
	deps := router.RouterDeps{
		Logger:                logger,
		Config:                conf,
		JWT:                   j,
		AgentLimiter:          middleware.NewAgentLimiterFromConfig(conf),
		AdminHandler:          handler.NewAdminHandler(h, adminService),
		AgentHandler:          handler.NewAgentHandler(h, agentService),
		AgentSessionHandler:   handler.NewAgentSessionHandler(h, agentService, hub),
		DiskHandler:           handler.NewDiskHandler(h, service.NewDiskService(svc, reg, logger)),
		DeviceHandler:         handler.NewDeviceHandler(h, service.NewDeviceService(svc, reg, logger)),
		CmsHandler:            handler.NewCmsHandler(h, service.NewCmsService(svc, reg, logger)),
		PlacementGroupHandler: handler.NewPlacementGroupHandler(h, service.NewPlacementGroupService(svc, reg, logger)),
		RegistryHandler:       handler.NewRegistryHandler(h, service.NewRegistryService(svc, reg, logger)),
	}
	engine := gin.New()
	api := engine.Group("/api/v1")
	router.InitAdminRouter(deps, api)
	router.InitAgentRouter(deps, api)
	router.InitDiskRouter(deps, api)
	router.InitDeviceRouter(deps, api)
	router.InitRegistryRouter(deps, api)

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)

	e := httpexpect.Default(t, srv.URL)
	token := e.POST("/api/v1/login").
		WithJSON(v1.LoginRequest{Account: "admin", Password: "Ab123456"}).
		Expect().
		Status(http.StatusOK).
		JSON().Object().Value("data").Object().Value("accessToken").String().Raw()

	return &testEnv{e: e, registry: reg, hub: hub, token: token}
}

func (env *testEnv) auth(req *httpexpect.Request) *httpexpect.Request {
	return req.WithHeader("Authorization", "Bearer "+env.token)
}

func registerRequest(agentId string, nodeId uint32, seq uint64, rack string, n int) v1.RegisterAgentRequest {
	req := v1.RegisterAgentRequest{
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

func (env *testEnv) waitClean(t *testing.T) {
	t.Helper()
	require.Eventually(t, func() bool {
		dirty, err := env.registry.ListDirtyDevices(context.Background())
		return err == nil && len(dirty) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	env.e.POST("/api/v1/login").
		WithJSON(v1.LoginRequest{Account: "admin", Password: "wrong"}).
		Expect().
		Status(http.StatusUnauthorized)

	env.e.POST("/api/v1/login").
		WithJSON(map[string]string{"account": "admin"}).
		Expect().
		Status(http.StatusBadRequest)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	env.e.GET("/api/v1/agents").Expect().Status(http.StatusUnauthorized)
	env.e.POST("/api/v1/disks").WithJSON(map[string]string{}).Expect().Status(http.StatusUnauthorized)
	env.auth(env.e.GET("/api/v1/agents")).Expect().Status(http.StatusOK)
}

func TestAgentRoutes(t *testing.T) {
	env := newTestEnv(t)

	env.e.POST("/api/v1/agents/register").
		WithJSON(registerRequest("agent-1", 1, 1, "rack-1", 2)).
		Expect().
		Status(http.StatusOK).
		JSON().Object().Value("data").Object().HasValue("agent_id", "agent-1")

	// 旧 seqNumber 的注册被拒绝
	env.e.POST("/api/v1/agents/register").
		WithJSON(registerRequest("agent-1", 2, 0, "rack-1", 2)).
		Expect().
		Status(http.StatusConflict).
		JSON().Object().HasValue("code", 3001)

	agent := env.auth(env.e.GET("/api/v1/agents/agent-1")).
		Expect().
		Status(http.StatusOK).
		JSON().Object().Value("data").Object()
	agent.HasValue("connected", true)
	agent.Value("device_ids").Array().Length().IsEqual(2)

	env.auth(env.e.GET("/api/v1/agents/missing")).
		Expect().
		Status(http.StatusNotFound)

	env.e.POST("/api/v1/agents/stats").
		WithJSON(v1.UpdateAgentStatsRequest{
			AgentId:     "agent-1",
			DeviceStats: []v1.DeviceStats{{DeviceId: "agent-1-1", NumReadOps: 1}},
		}).
		Expect().
		Status(http.StatusOK)

	env.auth(env.e.PUT("/api/v1/agents/agent-1/state")).
		WithJSON(v1.ChangeAgentStateRequest{State: "bogus"}).
		Expect().
		Status(http.StatusBadRequest)

	env.auth(env.e.PUT("/api/v1/agents/agent-1/state")).
		WithJSON(v1.ChangeAgentStateRequest{State: "warning", Message: "maintenance"}).
		Expect().
		Status(http.StatusOK)

	env.auth(env.e.GET("/api/v1/agents")).
		Expect().
		Status(http.StatusOK).
		JSON().Object().Value("data").Object().HasValue("total", 1)

	env.e.POST("/api/v1/agents/unregister").
		WithJSON(v1.UnregisterAgentRequest{AgentId: "agent-1", NodeId: 1}).
		Expect().
		Status(http.StatusOK)

	env.auth(env.e.GET("/api/v1/agents/agent-1")).
		Expect().
		Status(http.StatusOK).
		JSON().Object().Value("data").Object().HasValue("connected", false)
}

func TestDiskLifecycleRoutes(t *testing.T) {
	env := newTestEnv(t)
	env.e.POST("/api/v1/agents/register").WithJSON(registerRequest("agent-1", 1, 1, "rack-1", 2)).Expect().Status(http.StatusOK)
	env.e.POST("/api/v1/agents/register").WithJSON(registerRequest("agent-2", 2, 1, "rack-2", 2)).Expect().Status(http.StatusOK)
	env.waitClean(t)

	env.auth(env.e.POST("/api/v1/disks")).
		WithJSON(map[string]interface{}{"disk_id": "vol0"}).
		Expect().
		Status(http.StatusBadRequest)

	allocate := v1.AllocateDiskRequest{
		DiskId:      "vol0",
		BlockSize:   blockSize,
		BlocksCount: 10 * gib / blockSize,
		MediaKind:   string(model.MediaKindSSDNonReplicated),
	}
	disk := env.auth(env.e.POST("/api/v1/disks")).
		WithJSON(allocate).
		Expect().
		Status(http.StatusOK).
		JSON().Object().Value("data").Object()
	disk.HasValue("disk_id", "vol0")
	disk.Value("devices").Array().Length().IsEqual(1)

	env.auth(env.e.GET("/api/v1/disks/vol0")).
		Expect().
		Status(http.StatusOK).
		JSON().Object().Value("data").Object().HasValue("disk_id", "vol0")

	env.auth(env.e.GET("/api/v1/disks/missing")).
		Expect().
		Status(http.StatusNotFound).
		JSON().Object().HasValue("code", 3103)

	env.auth(env.e.GET("/api/v1/devices")).
		WithQuery("disk_id", "vol0").
		Expect().
		Status(http.StatusOK).
		JSON().Object().Value("data").Object().HasValue("total", 1)

	env.auth(env.e.GET("/api/v1/devices")).
		WithQuery("state", "broken").
		Expect().
		Status(http.StatusBadRequest)

	env.auth(env.e.GET("/api/v1/devices/agent-2-1")).
		Expect().
		Status(http.StatusOK).
		JSON().Object().Value("data").Object().HasValue("agent_id", "agent-2")

	env.auth(env.e.POST("/api/v1/devices/agent-2-1/suspend")).Expect().Status(http.StatusOK)
	env.auth(env.e.GET("/api/v1/devices/agent-2-1")).
		Expect().
		Status(http.StatusOK).
		JSON().Object().Value("data").Object().HasValue("suspended", true)
	env.auth(env.e.POST("/api/v1/devices/agent-2-1/resume")).Expect().Status(http.StatusOK)
	env.auth(env.e.POST("/api/v1/devices/missing/suspend")).
		Expect().
		Status(http.StatusNotFound).
		JSON().Object().HasValue("code", 3102)

	env.auth(env.e.GET("/api/v1/notifications")).
		Expect().
		Status(http.StatusOK)

	// 未标记清理的磁盘不能直接释放
	env.auth(env.e.DELETE("/api/v1/disks/vol0")).
		Expect().
		Status(http.StatusBadRequest)

	env.auth(env.e.POST("/api/v1/disks/vol0/cleanup")).Expect().Status(http.StatusOK)
	env.auth(env.e.DELETE("/api/v1/disks/vol0")).Expect().Status(http.StatusOK)
	env.auth(env.e.GET("/api/v1/disks/vol0")).Expect().Status(http.StatusNotFound)

	// 只读状态下拒绝分配
	env.auth(env.e.PUT("/api/v1/registry/writable")).
		WithJSON(map[string]bool{"writable": false}).
		Expect().
		Status(http.StatusOK)
	allocate.DiskId = "vol1"
	env.auth(env.e.POST("/api/v1/disks")).
		WithJSON(allocate).
		Expect().
		Status(http.StatusServiceUnavailable).
		JSON().Object().HasValue("code", 3005)
	env.auth(env.e.PUT("/api/v1/registry/writable")).
		WithJSON(map[string]bool{"writable": true}).
		Expect().
		Status(http.StatusOK)

	env.auth(env.e.POST("/api/v1/registry/cleanup")).
		Expect().
		Status(http.StatusOK)
}

func TestPlacementGroupRoutes(t *testing.T) {
	env := newTestEnv(t)

	env.auth(env.e.POST("/api/v1/placement-groups")).
		WithJSON(v1.CreatePlacementGroupRequest{GroupId: "pg-1"}).
		Expect().
		Status(http.StatusOK)
	env.auth(env.e.POST("/api/v1/placement-groups")).
		WithJSON(v1.CreatePlacementGroupRequest{GroupId: "pg-1"}).
		Expect().
		Status(http.StatusConflict)

	list := env.auth(env.e.GET("/api/v1/placement-groups")).
		Expect().
		Status(http.StatusOK).
		JSON().Object().Value("data").Object().Value("list").Array()
	list.Length().IsEqual(1)
	list.Value(0).Object().HasValue("group_id", "pg-1")

	env.auth(env.e.DELETE("/api/v1/placement-groups/pg-1")).Expect().Status(http.StatusOK)
	env.auth(env.e.GET("/api/v1/placement-groups")).
		Expect().
		Status(http.StatusOK).
		JSON().Object().Value("data").Object().Value("list").Array().IsEmpty()
}

func TestCmsRoutes(t *testing.T) {
	env := newTestEnv(t)

	env.auth(env.e.POST("/api/v1/cms/actions")).
		WithJSON(map[string]interface{}{}).
		Expect().
		Status(http.StatusBadRequest)

	env.e.POST("/api/v1/agents/register").WithJSON(registerRequest("agent-1", 1, 1, "rack-1", 1)).Expect().Status(http.StatusOK)
	env.waitClean(t)

	results := env.auth(env.e.POST("/api/v1/cms/actions")).
		WithJSON(v1.CmsActionRequest{Actions: []v1.CmsAction{
			{Type: v1.CmsActionRemoveHost, Host: "agent-1"},
			{Type: v1.CmsActionRemoveHost, Host: "missing"},
		}}).
		Expect().
		Status(http.StatusOK).
		JSON().Object().Value("data").Object().Value("results").Array()
	results.Length().IsEqual(2)
	results.Value(0).Object().HasValue("host", "agent-1")
	results.Value(1).Object().HasValue("code", 3101)
}

func TestAgentSession(t *testing.T) {
	env := newTestEnv(t)

	ws := env.e.GET("/api/v1/agents/session").
		WithWebsocketUpgrade().
		Expect().
		Status(http.StatusSwitchingProtocols).
		Websocket()

	register := registerRequest("agent-ws", 7, 1, "rack-1", 1)
	ws.WriteJSON(v1.AgentSessionMessage{Type: v1.SessionMessageRegister, Register: &register})
	reply := ws.Expect().JSON().Object()
	reply.HasValue("type", v1.SessionMessageRegister)
	reply.HasValue("code", 0)
	require.Eventually(t, func() bool { return env.hub.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	ws.WriteJSON(v1.AgentSessionMessage{
		Type:  v1.SessionMessageStats,
		Stats: &v1.UpdateAgentStatsRequest{DeviceStats: []v1.DeviceStats{{DeviceId: "agent-ws-1"}}},
	})
	ws.Expect().JSON().Object().HasValue("code", 0)

	ws.WriteJSON(v1.AgentSessionMessage{Type: "bogus"})
	ws.Expect().JSON().Object().HasValue("code", 400)

	ws.Disconnect()

	// 连接断开后 agent 被标记为断连
	require.Eventually(t, func() bool {
		agent, err := env.registry.DescribeAgent(context.Background(), "agent-ws")
		return err == nil && !agent.Connected
	}, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, 0, env.hub.Len())
}
