package repository_test

import (
	"testing"

	"diskregistry/internal/registry"
	"diskregistry/internal/repository"
	"diskregistry/pkg/log"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStateStore(t *testing.T) {
	repo := newSqliteRepository(t)

	conf := viper.New()
	store, cleanup, err := repository.NewStateStore(conf, log.NewNop(), repo)
	require.NoError(t, err)
	defer cleanup()
	assert.IsType(t, &repository.GormStore{}, store)

	conf.Set("data.store", "memory")
	store, cleanup, err = repository.NewStateStore(conf, log.NewNop(), repo)
	require.NoError(t, err)
	defer cleanup()
	assert.IsType(t, &registry.MemoryStore{}, store)

	conf.Set("data.store", "leveldb")
	_, _, err = repository.NewStateStore(conf, log.NewNop(), repo)
	assert.Error(t, err)
}
