package server

import (
	"context"
	"os"

	"diskregistry/internal/model"
	"diskregistry/internal/service"
	"diskregistry/pkg/log"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "Ab123456"
)

type MigrateServer struct {
	db           *gorm.DB
	log          *log.Logger
	conf         *viper.Viper
	adminService service.AdminService
	exit         func(code int)
}

func NewMigrateServer(db *gorm.DB, log *log.Logger, conf *viper.Viper, adminService service.AdminService) *MigrateServer {
	return &MigrateServer{
		db:           db,
		log:          log,
		conf:         conf,
		adminService: adminService,
		exit:         os.Exit,
	}
}

func (m *MigrateServer) Start(ctx context.Context) error {
	if err := m.Migrate(ctx); err != nil {
		return err
	}
	m.exit(0)
	return nil
}

// Migrate 建表并创建默认管理员
func (m *MigrateServer) Migrate(ctx context.Context) error {
	if err := m.db.AutoMigrate(
		&model.Admin{},
		// registry 状态表
		&model.RegistryMeta{},
		&model.Agent{},
		&model.Device{},
		&model.Disk{},
		&model.PlacementGroup{},
		&model.DirtyDevice{},
		&model.DiskNotification{},
		&model.ReplacedDevice{},
	); err != nil {
		m.log.Error("migrate error", zap.Error(err))
		return err
	}
	m.log.Info("AutoMigrate success")

	username := m.conf.GetString("security.admin.username")
	if username == "" {
		username = defaultAdminUsername
	}
	password := m.conf.GetString("security.admin.password")
	if password == "" {
		password = defaultAdminPassword
	}
	created, err := m.adminService.EnsureAdmin(ctx, username, password)
	if err != nil {
		m.log.Error("create default admin error", zap.Error(err))
		return err
	}
	if created {
		m.log.Info("default admin created successfully", zap.String("username", username))
	} else {
		m.log.Info("default admin already exists", zap.String("username", username))
	}
	return nil
}

func (m *MigrateServer) Stop(ctx context.Context) error {
	m.log.Info("AutoMigrate stop")
	return nil
}
