package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"diskregistry/internal/model"
	"diskregistry/internal/registry"

	"github.com/duke-git/lancet/v2/maputil"
	"github.com/duke-git/lancet/v2/slice"
	"github.com/spf13/viper"
	clientv3 "go.etcd.io/etcd/client/v3"
)

const defaultEtcdPrefix = "/diskregistry/v1"

// EtcdStore 基于 etcd 的 registry.StateStore，每个实体一个 key 前缀，Apply 是一次 etcd 事务
type EtcdStore struct {
	client *clientv3.Client
	prefix string
}

func NewEtcdClient(conf *viper.Viper) (*clientv3.Client, error) {
	timeout := conf.GetDuration("data.etcd.dial_timeout")
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client, err := clientv3.New(clientv3.Config{
		Endpoints:   conf.GetStringSlice("data.etcd.endpoints"),
		DialTimeout: timeout,
		Username:    conf.GetString("data.etcd.username"),
		Password:    conf.GetString("data.etcd.password"),
	})
	if err != nil {
		return nil, fmt.Errorf("etcd dial: %w", err)
	}
	return client, nil
}

func NewEtcdStore(client *clientv3.Client, prefix string) *EtcdStore {
	if prefix == "" {
		prefix = defaultEtcdPrefix
	}
	return &EtcdStore{client: client, prefix: strings.TrimSuffix(prefix, "/")}
}

func (s *EtcdStore) key(table, id string) string {
	return fmt.Sprintf("%s/%s/%s", s.prefix, table, id)
}

func (s *EtcdStore) tablePrefix(table string) string {
	return fmt.Sprintf("%s/%s/", s.prefix, table)
}

func (s *EtcdStore) Load(ctx context.Context) (*registry.Snapshot, error) {
	snap := &registry.Snapshot{}
	metas, err := etcdList[model.RegistryMeta](ctx, s.client, s.tablePrefix(model.RegistryMeta{}.TableName()))
	if err != nil {
		return nil, err
	}
	for _, m := range metas {
		if m.Id == model.RegistryMetaId {
			snap.Meta = m
		}
	}
	if snap.Agents, err = etcdList[model.Agent](ctx, s.client, s.tablePrefix(model.Agent{}.TableName())); err != nil {
		return nil, err
	}
	if snap.Devices, err = etcdList[model.Device](ctx, s.client, s.tablePrefix(model.Device{}.TableName())); err != nil {
		return nil, err
	}
	if snap.Disks, err = etcdList[model.Disk](ctx, s.client, s.tablePrefix(model.Disk{}.TableName())); err != nil {
		return nil, err
	}
	if snap.PlacementGroups, err = etcdList[model.PlacementGroup](ctx, s.client, s.tablePrefix(model.PlacementGroup{}.TableName())); err != nil {
		return nil, err
	}
	if snap.DirtyDevices, err = etcdList[model.DirtyDevice](ctx, s.client, s.tablePrefix(model.DirtyDevice{}.TableName())); err != nil {
		return nil, err
	}
	if snap.Notifications, err = etcdList[model.DiskNotification](ctx, s.client, s.tablePrefix(model.DiskNotification{}.TableName())); err != nil {
		return nil, err
	}
	if snap.ReplacedDevices, err = etcdList[model.ReplacedDevice](ctx, s.client, s.tablePrefix(model.ReplacedDevice{}.TableName())); err != nil {
		return nil, err
	}
	return snap, nil
}

// Apply 所有变更放进同一个 txn，超过 etcd 的 --max-txn-ops 时整体失败
func (s *EtcdStore) Apply(ctx context.Context, m *registry.Mutation) error {
	if m.Empty() {
		return nil
	}
	ops, err := s.mutationOps(m)
	if err != nil {
		return err
	}
	if _, err := s.client.Txn(ctx).Then(ops...).Commit(); err != nil {
		return fmt.Errorf("etcd txn (%d ops): %w", len(ops), err)
	}
	return nil
}

func (s *EtcdStore) mutationOps(m *registry.Mutation) ([]clientv3.Op, error) {
	var ops []clientv3.Op
	if m.Meta != nil {
		meta := m.Meta.Clone()
		meta.Id = model.RegistryMetaId
		op, err := putOp(s.key(meta.TableName(), meta.Id), meta)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	var err error
	if ops, err = appendOps(ops, s, model.Agent{}.TableName(), m.Agents); err != nil {
		return nil, err
	}
	if ops, err = appendOps(ops, s, model.Device{}.TableName(), m.Devices); err != nil {
		return nil, err
	}
	if ops, err = appendOps(ops, s, model.Disk{}.TableName(), m.Disks); err != nil {
		return nil, err
	}
	if ops, err = appendOps(ops, s, model.PlacementGroup{}.TableName(), m.PlacementGroups); err != nil {
		return nil, err
	}
	if ops, err = appendOps(ops, s, model.DirtyDevice{}.TableName(), m.DirtyDevices); err != nil {
		return nil, err
	}
	if ops, err = appendOps(ops, s, model.DiskNotification{}.TableName(), m.Notifications); err != nil {
		return nil, err
	}
	return appendOps(ops, s, model.ReplacedDevice{}.TableName(), m.ReplacedDevices)
}

func appendOps[T any](ops []clientv3.Op, s *EtcdStore, table string, changes map[string]*T) ([]clientv3.Op, error) {
	ids := maputil.Keys(changes)
	slice.Sort(ids)
	for _, id := range ids {
		k := s.key(table, id)
		v := changes[id]
		if v == nil {
			ops = append(ops, clientv3.OpDelete(k))
			continue
		}
		op, err := putOp(k, v)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func putOp(k string, v any) (clientv3.Op, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return clientv3.Op{}, fmt.Errorf("marshal %q: %w", k, err)
	}
	return clientv3.OpPut(k, string(data)), nil
}

func etcdList[T any](ctx context.Context, client *clientv3.Client, pfx string) ([]*T, error) {
	resp, err := client.Get(ctx, pfx, clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("etcd list %q: %w", pfx, err)
	}
	out := make([]*T, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		item := new(T)
		if err := json.Unmarshal(kv.Value, item); err != nil {
			return nil, fmt.Errorf("unmarshal %q: %w", string(kv.Key), err)
		}
		out = append(out, item)
	}
	return out, nil
}
