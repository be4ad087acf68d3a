package eraser

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"diskregistry/internal/registry"
	"diskregistry/pkg/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	calls   atomic.Int32
	block   chan struct{}
	started chan string
	fail    map[string]error
	mu      sync.Mutex
}

func (c *fakeClient) SecureEraseDevice(ctx context.Context, endpoint, deviceId, deviceName string) error {
	c.calls.Add(1)
	if c.started != nil {
		c.started <- deviceId
	}
	if c.block != nil {
		select {
		case <-c.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fail[deviceId]
}

func testConfig(maxInFlight int) registry.Config {
	cfg := registry.DefaultConfig()
	cfg.SecureEraseMaxInFlight = maxInFlight
	cfg.SecureEraseTimeout = time.Second
	return cfg
}

func requests(ids ...string) []registry.EraseRequest {
	out := make([]registry.EraseRequest, 0, len(ids))
	for _, id := range ids {
		out = append(out, registry.EraseRequest{DeviceId: id, DeviceName: "/dev/" + id, AgentId: "agent-1", Endpoint: "h1:9766"})
	}
	return out
}

func TestSecureErasePartialFailure(t *testing.T) {
	client := &fakeClient{fail: map[string]error{"dev-2": errors.New("io error")}}
	d := NewDispatcher(log.NewNop(), client, testConfig(4))

	erased, err := d.SecureErase(context.Background(), requests("dev-1", "dev-2", "dev-3"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dev-2")
	assert.ElementsMatch(t, []string{"dev-1", "dev-3"}, erased)
	assert.Equal(t, int32(3), client.calls.Load())
}

func TestSecureEraseCoalescesSameDevice(t *testing.T) {
	client := &fakeClient{block: make(chan struct{}), started: make(chan string, 4)}
	d := NewDispatcher(log.NewNop(), client, testConfig(4))

	var wg sync.WaitGroup
	results := make([][]string, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = d.SecureErase(context.Background(), requests("dev-1"))
	}()
	<-client.started
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1], _ = d.SecureErase(context.Background(), requests("dev-1"))
	}()
	time.Sleep(50 * time.Millisecond)
	close(client.block)
	wg.Wait()

	assert.Equal(t, int32(1), client.calls.Load())
	assert.Equal(t, []string{"dev-1"}, results[0])
	assert.Equal(t, []string{"dev-1"}, results[1])
}

func TestStopRejectsWaiters(t *testing.T) {
	client := &fakeClient{block: make(chan struct{}), started: make(chan string, 4)}
	d := NewDispatcher(log.NewNop(), client, testConfig(1))

	done := make(chan error, 1)
	go func() {
		_, err := d.SecureErase(context.Background(), requests("dev-1", "dev-2"))
		done <- err
	}()
	<-client.started
	d.Stop()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, registry.ErrRejected)
	case <-time.After(2 * time.Second):
		t.Fatal("waiters were not rejected")
	}
	assert.Equal(t, int32(1), client.calls.Load())
	close(client.block)
}
