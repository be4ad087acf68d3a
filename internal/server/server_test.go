package server

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	v1 "diskregistry/api/v1"
	"diskregistry/internal/model"
	"diskregistry/internal/repository"
	"diskregistry/internal/service"
	"diskregistry/pkg/jwt"
	"diskregistry/pkg/log"
	"diskregistry/pkg/sid"

	"github.com/glebarez/sqlite"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fakeJobs struct {
	ticks    atomic.Int32
	cleanups atomic.Int32
}

func (f *fakeJobs) Tick(context.Context) error {
	f.ticks.Add(1)
	return nil
}

func (f *fakeJobs) CleanupDisks(context.Context) ([]string, error) {
	f.cleanups.Add(1)
	return []string{"vol0"}, nil
}

func TestJobServer(t *testing.T) {
	conf := viper.New()
	conf.Set("job.tick_interval", "20ms")
	conf.Set("job.cleanup_interval", "50ms")
	jobs := &fakeJobs{}
	s := newJobServer(log.NewNop(), conf, jobs)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	assert.Eventually(t, func() bool {
		return jobs.ticks.Load() >= 2 && jobs.cleanups.Load() >= 1
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, s.Stop(context.Background()))
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("job server did not return")
	}
}

func TestJobServerDefaults(t *testing.T) {
	s := newJobServer(log.NewNop(), viper.New(), &fakeJobs{})
	assert.Equal(t, defaultTickInterval, s.tickInterval)
	assert.Equal(t, defaultCleanupInterval, s.cleanupInterval)
}

func TestMigrateServer(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	conf := viper.New()
	conf.Set("security.jwt.key", "test-key")
	conf.Set("security.admin.username", "ops")
	conf.Set("security.admin.password", "secret")
	repo := repository.NewRepository(log.NewNop(), db, nil)
	svc := service.NewService(repository.NewTransaction(repo), log.NewNop(), sid.NewSid(), jwt.NewJwt(conf))
	admins := service.NewAdminService(svc, repository.NewAdminRepository(repo))

	m := NewMigrateServer(db, log.NewNop(), conf, admins)
	exitCode := -1
	m.exit = func(code int) { exitCode = code }
	require.NoError(t, m.Start(context.Background()))
	assert.Equal(t, 0, exitCode)

	for _, table := range []interface{}{&model.Agent{}, &model.Device{}, &model.Disk{}, &model.RegistryMeta{}} {
		assert.True(t, db.Migrator().HasTable(table))
	}
	_, err = admins.Login(context.Background(), &v1.LoginRequest{Account: "ops", Password: "secret"})
	assert.NoError(t, err)

	// 重复执行保持幂等
	require.NoError(t, m.Migrate(context.Background()))
}
