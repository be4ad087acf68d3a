package repository

import (
	"fmt"

	"diskregistry/internal/registry"
	"diskregistry/pkg/log"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// NewStateStore 按 data.store 选择 registry 的持久化实现：gorm（默认）、etcd 或 memory
func NewStateStore(conf *viper.Viper, logger *log.Logger, r *Repository) (registry.StateStore, func(), error) {
	kind := conf.GetString("data.store")
	switch kind {
	case "", "gorm":
		logger.Info("registry state store", zap.String("kind", "gorm"))
		return NewGormStore(r), func() {}, nil
	case "etcd":
		client, err := NewEtcdClient(conf)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("registry state store",
			zap.String("kind", "etcd"),
			zap.Strings("endpoints", conf.GetStringSlice("data.etcd.endpoints")))
		cleanup := func() {
			if err := client.Close(); err != nil {
				logger.Error("close etcd client", zap.Error(err))
			}
		}
		return NewEtcdStore(client, conf.GetString("data.etcd.prefix")), cleanup, nil
	case "memory":
		logger.Warn("registry state store is in memory, state is lost on restart")
		return registry.NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown data.store %q", kind)
	}
}
