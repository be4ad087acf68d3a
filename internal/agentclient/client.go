package agentclient

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"diskregistry/pkg/log"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
)

// Client agent gRPC 客户端，按 endpoint 复用连接
type Client struct {
	logger   *log.Logger
	dialOpts []grpc.DialOption

	mu    sync.Mutex
	conns map[string]*grpc.ClientConn
}

func NewClient(logger *log.Logger, opts ...grpc.DialOption) *Client {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	}
	return &Client{
		logger:   logger,
		dialOpts: append(dialOpts, opts...),
		conns:    make(map[string]*grpc.ClientConn),
	}
}

// NewClientFromConfig 读取 agent_client.* 配置
func NewClientFromConfig(conf *viper.Viper, logger *log.Logger) *Client {
	var opts []grpc.DialOption
	if t := conf.GetDuration("agent_client.keepalive_time"); t > 0 {
		opts = append(opts, grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                t,
			Timeout:             conf.GetDuration("agent_client.keepalive_timeout"),
			PermitWithoutStream: true,
		}))
	}
	return NewClient(logger, opts...)
}

func (c *Client) conn(endpoint string) (*grpc.ClientConn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cc, ok := c.conns[endpoint]; ok {
		return cc, nil
	}
	cc, err := grpc.NewClient(endpoint, c.dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("dial agent %s: %w", endpoint, err)
	}
	c.conns[endpoint] = cc
	return cc, nil
}

func (c *Client) SecureEraseDevice(ctx context.Context, endpoint, deviceId, deviceName string) error {
	if endpoint == "" {
		return fmt.Errorf("device %s: agent endpoint is unknown", deviceId)
	}
	cc, err := c.conn(endpoint)
	if err != nil {
		return err
	}
	req := &SecureEraseDeviceRequest{DeviceId: deviceId, DeviceName: deviceName}
	if err := cc.Invoke(ctx, secureEraseMethod, req, &SecureEraseDeviceResponse{}); err != nil {
		return fmt.Errorf("secure erase device %s on %s: %w", deviceId, endpoint, err)
	}
	return nil
}

// Close 关闭所有连接
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var errs []error
	for endpoint, cc := range c.conns {
		if err := cc.Close(); err != nil {
			c.logger.Warn("close agent connection failed", zap.String("endpoint", endpoint), zap.Error(err))
			errs = append(errs, err)
		}
		delete(c.conns, endpoint)
	}
	return errors.Join(errs...)
}
