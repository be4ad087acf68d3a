package eraser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"diskregistry/internal/registry"
	"diskregistry/pkg/log"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

// AgentClient 向 agent 发起单个设备的擦除
type AgentClient interface {
	SecureEraseDevice(ctx context.Context, endpoint, deviceId, deviceName string) error
}

// Dispatcher 并发调用 agent 擦除设备
// 同一设备的并发请求合并为一次 RPC，Stop 后所有等待者返回 ErrRejected
type Dispatcher struct {
	logger  *log.Logger
	client  AgentClient
	timeout time.Duration
	sem     *semaphore.Weighted
	group   singleflight.Group
	stopCtx context.Context
	stop    context.CancelFunc
}

func NewDispatcher(logger *log.Logger, client AgentClient, cfg registry.Config) *Dispatcher {
	limit := int64(cfg.SecureEraseMaxInFlight)
	if limit <= 0 {
		limit = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		logger:  logger,
		client:  client,
		timeout: cfg.SecureEraseTimeout,
		sem:     semaphore.NewWeighted(limit),
		stopCtx: ctx,
		stop:    cancel,
	}
}

// SecureErase 返回擦除成功的设备，失败的设备通过 error 汇总
func (d *Dispatcher) SecureErase(ctx context.Context, reqs []registry.EraseRequest) ([]string, error) {
	errs := make([]error, len(reqs))
	var eg errgroup.Group
	for i, req := range reqs {
		eg.Go(func() error {
			errs[i] = d.eraseOne(ctx, req)
			return nil
		})
	}
	_ = eg.Wait()

	var erased []string
	var failed []error
	for i, err := range errs {
		if err == nil {
			erased = append(erased, reqs[i].DeviceId)
			continue
		}
		failed = append(failed, fmt.Errorf("device %s: %w", reqs[i].DeviceId, err))
	}
	return erased, errors.Join(failed...)
}

func (d *Dispatcher) eraseOne(ctx context.Context, req registry.EraseRequest) error {
	ch := d.group.DoChan(req.DeviceId, func() (interface{}, error) {
		if err := d.sem.Acquire(d.stopCtx, 1); err != nil {
			return nil, registry.ErrRejected
		}
		defer d.sem.Release(1)

		rpcCtx, cancel := context.WithTimeout(d.stopCtx, d.timeout)
		defer cancel()
		start := time.Now()
		err := d.client.SecureEraseDevice(rpcCtx, req.Endpoint, req.DeviceId, req.DeviceName)
		if err != nil {
			d.logger.Warn("secure erase rpc failed",
				zap.String("agent_id", req.AgentId),
				zap.String("device_id", req.DeviceId),
				zap.Error(err))
			return nil, err
		}
		d.logger.Info("device erased",
			zap.String("agent_id", req.AgentId),
			zap.String("device_id", req.DeviceId),
			zap.Duration("latency", time.Since(start)))
		return nil, nil
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	case <-d.stopCtx.Done():
		return registry.ErrRejected
	}
}

func (d *Dispatcher) Stop() {
	d.stop()
}
