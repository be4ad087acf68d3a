package registryctl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	v1 "diskregistry/api/v1"
)

// Client diskregistry HTTP API 客户端
type Client struct {
	baseUrl    *url.URL
	httpClient *http.Client
	Token      string // Authorization: Bearer <token>
}

func NewClient(apiURL, token string) (*Client, error) {
	baseUrl, err := url.Parse(apiURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseUrl:    baseUrl,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		Token:      token,
	}, nil
}

// APIError 服务端返回的业务错误
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("diskregistry API error (status %d, code %d): %s", e.Status, e.Code, e.Message)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) Request(ctx context.Context, method, path string, query url.Values, body, result interface{}) error {
	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(b)
	}
	u := c.baseUrl.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), payload)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &APIError{Status: resp.StatusCode, Code: -1, Message: string(raw)}
	}
	if resp.StatusCode >= 300 || env.Code != 0 {
		return &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Message}
	}
	if result != nil && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, result)
	}
	return nil
}

func (c *Client) Login(ctx context.Context, account, password string) (string, error) {
	var data v1.LoginResponseData
	err := c.Request(ctx, http.MethodPost, "/api/v1/login", nil, v1.LoginRequest{Account: account, Password: password}, &data)
	return data.AccessToken, err
}

func (c *Client) ListAgents(ctx context.Context) (*v1.ListAgentsResponseData, error) {
	data := new(v1.ListAgentsResponseData)
	return data, c.Request(ctx, http.MethodGet, "/api/v1/agents", nil, nil, data)
}

func (c *Client) GetAgent(ctx context.Context, agentId string) (*v1.AgentItem, error) {
	data := new(v1.AgentItem)
	return data, c.Request(ctx, http.MethodGet, "/api/v1/agents/"+url.PathEscape(agentId), nil, nil, data)
}

func (c *Client) ChangeAgentState(ctx context.Context, agentId string, req v1.ChangeAgentStateRequest) error {
	return c.Request(ctx, http.MethodPut, "/api/v1/agents/"+url.PathEscape(agentId)+"/state", nil, req, nil)
}

func (c *Client) ListDevices(ctx context.Context, filter url.Values) (*v1.ListDevicesResponseData, error) {
	data := new(v1.ListDevicesResponseData)
	return data, c.Request(ctx, http.MethodGet, "/api/v1/devices", filter, nil, data)
}

func (c *Client) GetDevice(ctx context.Context, deviceId string) (*v1.DeviceItem, error) {
	data := new(v1.DeviceItem)
	return data, c.Request(ctx, http.MethodGet, "/api/v1/devices/"+url.PathEscape(deviceId), nil, nil, data)
}

func (c *Client) ChangeDeviceState(ctx context.Context, deviceId string, req v1.ChangeDeviceStateRequest) error {
	return c.Request(ctx, http.MethodPut, "/api/v1/devices/"+url.PathEscape(deviceId)+"/state", nil, req, nil)
}

func (c *Client) SuspendDevice(ctx context.Context, deviceId string) error {
	return c.Request(ctx, http.MethodPost, "/api/v1/devices/"+url.PathEscape(deviceId)+"/suspend", nil, nil, nil)
}

func (c *Client) ResumeDevice(ctx context.Context, deviceId string) error {
	return c.Request(ctx, http.MethodPost, "/api/v1/devices/"+url.PathEscape(deviceId)+"/resume", nil, nil, nil)
}

func (c *Client) AllocateDisk(ctx context.Context, req v1.AllocateDiskRequest) (*v1.DiskData, error) {
	data := new(v1.DiskData)
	return data, c.Request(ctx, http.MethodPost, "/api/v1/disks", nil, req, data)
}

func (c *Client) DescribeDisk(ctx context.Context, diskId string) (*v1.DiskData, error) {
	data := new(v1.DiskData)
	return data, c.Request(ctx, http.MethodGet, "/api/v1/disks/"+url.PathEscape(diskId), nil, nil, data)
}

func (c *Client) MarkDiskForCleanup(ctx context.Context, diskId string) error {
	return c.Request(ctx, http.MethodPost, "/api/v1/disks/"+url.PathEscape(diskId)+"/cleanup", nil, nil, nil)
}

func (c *Client) DeallocateDisk(ctx context.Context, diskId string, force bool) error {
	var query url.Values
	if force {
		query = url.Values{"force": []string{"true"}}
	}
	return c.Request(ctx, http.MethodDelete, "/api/v1/disks/"+url.PathEscape(diskId), query, nil, nil)
}

func (c *Client) ReplaceDevice(ctx context.Context, diskId, deviceId string) (*v1.DiskData, error) {
	data := new(v1.DiskData)
	return data, c.Request(ctx, http.MethodPost, "/api/v1/disks/"+url.PathEscape(diskId)+"/replace", nil, v1.ReplaceDeviceRequest{DeviceId: deviceId}, data)
}

func (c *Client) FinishMigration(ctx context.Context, diskId string, req v1.FinishMigrationRequest) error {
	return c.Request(ctx, http.MethodPost, "/api/v1/disks/"+url.PathEscape(diskId)+"/migrations/finish", nil, req, nil)
}

func (c *Client) ListDisksToNotify(ctx context.Context) (*v1.ListDisksToNotifyResponseData, error) {
	data := new(v1.ListDisksToNotifyResponseData)
	return data, c.Request(ctx, http.MethodGet, "/api/v1/notifications", nil, nil, data)
}

func (c *Client) ExecuteCmsActions(ctx context.Context, req v1.CmsActionRequest) (*v1.CmsActionResponseData, error) {
	data := new(v1.CmsActionResponseData)
	return data, c.Request(ctx, http.MethodPost, "/api/v1/cms/actions", nil, req, data)
}

func (c *Client) CreatePlacementGroup(ctx context.Context, groupId string) error {
	return c.Request(ctx, http.MethodPost, "/api/v1/placement-groups", nil, v1.CreatePlacementGroupRequest{GroupId: groupId}, nil)
}

func (c *Client) DestroyPlacementGroup(ctx context.Context, groupId string) error {
	return c.Request(ctx, http.MethodDelete, "/api/v1/placement-groups/"+url.PathEscape(groupId), nil, nil, nil)
}

func (c *Client) ListPlacementGroups(ctx context.Context) (*v1.ListPlacementGroupsResponseData, error) {
	data := new(v1.ListPlacementGroupsResponseData)
	return data, c.Request(ctx, http.MethodGet, "/api/v1/placement-groups", nil, nil, data)
}

func (c *Client) SetWritableState(ctx context.Context, writable bool) error {
	return c.Request(ctx, http.MethodPut, "/api/v1/registry/writable", nil, v1.SetWritableStateRequest{Writable: &writable}, nil)
}

func (c *Client) CleanupDisks(ctx context.Context) (*v1.CleanupDisksResponseData, error) {
	data := new(v1.CleanupDisksResponseData)
	return data, c.Request(ctx, http.MethodPost, "/api/v1/registry/cleanup", nil, nil, data)
}
