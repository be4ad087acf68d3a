package volumedir

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go"
	"github.com/spf13/viper"
)

// Client 卷目录服务的 HTTP 客户端
type Client struct {
	baseUrl    *url.URL
	httpClient *http.Client
	Token      string // Authorization: Bearer <token>
	attempts   uint
	delay      time.Duration
}

func NewClient(apiURL, token string) (*Client, error) {
	baseUrl, err := url.Parse(apiURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseUrl: baseUrl,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				Proxy:           http.ProxyFromEnvironment,
				TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
			},
		},
		Token:    token,
		attempts: 3,
		delay:    200 * time.Millisecond,
	}, nil
}

// WithRetry 设置重试次数与初始间隔
func (c *Client) WithRetry(attempts uint, delay time.Duration) *Client {
	if attempts > 0 {
		c.attempts = attempts
	}
	c.delay = delay
	return c
}

// WithInsecureSkipVerify 跳过服务端证书校验，只用于自签名证书的测试环境
func (c *Client) WithInsecureSkipVerify(skip bool) *Client {
	if t, ok := c.httpClient.Transport.(*http.Transport); ok {
		t.TLSClientConfig.InsecureSkipVerify = skip
	}
	return c
}

// errStatus 服务端返回的 4xx 错误不重试
type errStatus struct {
	code int
	body string
}

func (e *errStatus) Error() string {
	return fmt.Sprintf("volume directory API error (status %d): %s", e.code, e.body)
}

func (c *Client) Request(ctx context.Context, method, path string, body, result interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return err
		}
	}
	endpoint := c.baseUrl.JoinPath(path).String()

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")
			if c.Token != "" {
				req.Header.Set("Authorization", "Bearer "+c.Token)
			}
			return c.do(req, result)
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var se *errStatus
			if errors.As(err, &se) {
				return se.code >= http.StatusInternalServerError
			}
			return true
		}),
	)
}

func (c *Client) do(req *http.Request, result interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		var errResp struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &errResp) == nil && errResp.Message != "" {
			return &errStatus{code: resp.StatusCode, body: errResp.Message}
		}
		return &errStatus{code: resp.StatusCode, body: string(body)}
	}

	if result != nil {
		var apiResp struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
			return err
		}
		if len(apiResp.Data) > 0 {
			return json.Unmarshal(apiResp.Data, result)
		}
	}
	return nil
}

type referencedDisksRequest struct {
	DiskIds []string `json:"disk_ids"`
}

type referencedDisksResponse struct {
	DiskIds []string `json:"disk_ids"`
}

// ReferencedDisks 返回仍被卷引用的磁盘
// POST /api/v1/volumes/referenced-disks
func (c *Client) ReferencedDisks(ctx context.Context, diskIds []string) ([]string, error) {
	var resp referencedDisksResponse
	if err := c.Request(ctx, http.MethodPost, "/api/v1/volumes/referenced-disks", referencedDisksRequest{DiskIds: diskIds}, &resp); err != nil {
		return nil, err
	}
	return resp.DiskIds, nil
}

// Null 未配置卷目录时使用，认为没有磁盘被引用
type Null struct{}

func (Null) ReferencedDisks(context.Context, []string) ([]string, error) {
	return nil, nil
}

// Directory 与 registry.VolumeDirectory 一致
type Directory interface {
	ReferencedDisks(ctx context.Context, diskIds []string) ([]string, error)
}

// NewDirectory 根据 volume_directory.* 配置创建客户端，未配置地址时返回 Null
func NewDirectory(conf *viper.Viper) (Directory, error) {
	addr := conf.GetString("volume_directory.addr")
	if addr == "" {
		return Null{}, nil
	}
	c, err := NewClient(addr, conf.GetString("volume_directory.token"))
	if err != nil {
		return nil, err
	}
	c.WithInsecureSkipVerify(conf.GetBool("volume_directory.insecure_skip_verify"))
	if conf.IsSet("volume_directory.retry_attempts") || conf.IsSet("volume_directory.retry_delay") {
		c.WithRetry(conf.GetUint("volume_directory.retry_attempts"), conf.GetDuration("volume_directory.retry_delay"))
	}
	return c, nil
}
