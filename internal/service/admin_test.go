package service_test

import (
	"context"
	"testing"

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

func newAdminService(t *testing.T) (service.AdminService, *jwt.JWT) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&model.Admin{}))

	conf := viper.New()
	conf.Set("security.jwt.key", "test-key")
	j := jwt.NewJwt(conf)

	repo := repository.NewRepository(log.NewNop(), db, nil)
	svc := service.NewService(repository.NewTransaction(repo), log.NewNop(), sid.NewSid(), j)
	return service.NewAdminService(svc, repository.NewAdminRepository(repo)), j
}

func TestAdminService_Login(t *testing.T) {
	ctx := context.Background()
	admins, j := newAdminService(t)

	created, err := admins.EnsureAdmin(ctx, "admin", "Ab123456")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = admins.EnsureAdmin(ctx, "admin", "other")
	require.NoError(t, err)
	assert.False(t, created)

	token, err := admins.Login(ctx, &v1.LoginRequest{Account: "admin", Password: "Ab123456"})
	require.NoError(t, err)
	claims, err := j.ParseToken("Bearer " + token)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.UserId)

	_, err = admins.Login(ctx, &v1.LoginRequest{Account: "admin", Password: "other"})
	assert.ErrorIs(t, err, v1.ErrInvalidCredentials)

	_, err = admins.Login(ctx, &v1.LoginRequest{Account: "root", Password: "Ab123456"})
	assert.ErrorIs(t, err, v1.ErrInvalidCredentials)
}
