package volumedir

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferencedDisks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/volumes/referenced-disks", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req referencedDisksRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"disk-1", "disk-2"}, req.DiskIds)
		_, _ = w.Write([]byte(`{"code":0,"data":{"disk_ids":["disk-2"]}}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, "secret")
	require.NoError(t, err)
	referenced, err := c.ReferencedDisks(context.Background(), []string{"disk-1", "disk-2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"disk-2"}, referenced)
}

func TestReferencedDisksRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"disk_ids":[]}}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, "")
	require.NoError(t, err)
	c.WithRetry(3, time.Millisecond)

	referenced, err := c.ReferencedDisks(context.Background(), []string{"disk-1"})
	require.NoError(t, err)
	assert.Empty(t, referenced)
	assert.Equal(t, int32(3), calls.Load())
}

func TestReferencedDisksDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"bad disk id"}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, "")
	require.NoError(t, err)
	c.WithRetry(5, time.Millisecond)

	_, err = c.ReferencedDisks(context.Background(), []string{"disk-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad disk id")
	assert.Equal(t, int32(1), calls.Load())
}

func TestNewDirectoryWithoutAddr(t *testing.T) {
	dir, err := NewDirectory(viper.New())
	require.NoError(t, err)
	assert.IsType(t, Null{}, dir)

	referenced, err := dir.ReferencedDisks(context.Background(), []string{"disk-1"})
	require.NoError(t, err)
	assert.Empty(t, referenced)
}

func TestNewDirectoryVerifiesCertificates(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": referencedDisksResponse{DiskIds: []string{"disk-1"}}})
	}))
	defer srv.Close()

	conf := viper.New()
	conf.Set("volume_directory.addr", srv.URL)
	conf.Set("volume_directory.retry_attempts", 1)
	dir, err := NewDirectory(conf)
	require.NoError(t, err)
	// 默认校验证书，测试服务器的自签名证书不被信任
	_, err = dir.ReferencedDisks(context.Background(), []string{"disk-1"})
	assert.Error(t, err)

	conf.Set("volume_directory.insecure_skip_verify", true)
	dir, err = NewDirectory(conf)
	require.NoError(t, err)
	referenced, err := dir.ReferencedDisks(context.Background(), []string{"disk-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"disk-1"}, referenced)
}
