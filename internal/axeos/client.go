// Package axeos is an HTTP client for the AxeOS (ESP-Miner) device API.
//
// It covers exactly the three operations fleet updates need: fetching system
// info, uploading the web interface image and uploading the firmware image.
// Every operation makes a single attempt and returns a *DeviceError on
// failure; retry policy belongs to the caller, not here. The device applies
// an accepted upload asynchronously (it reboots after a 200), so a successful
// upload only means the device acknowledged the bytes.
package axeos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout is the default per-request timeout. Firmware images are a
// few MB and the ESP32 writes flash while receiving, so uploads are slow.
const DefaultTimeout = 60 * time.Second

// unknownField is substituted for optional info fields the device omits.
const unknownField = "unknown"

// Client talks to AxeOS devices over HTTP. One Client serves any number of
// devices; it holds no per-device state beyond the shared http.Client.
type Client struct {
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a device client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FetchInfo retrieves system information from the device at addr.
// Optional fields missing from the response default to "unknown"; only a
// missing version field makes the response unusable.
func (c *Client) FetchInfo(ctx context.Context, addr string) (*SystemInfo, error) {
	const op = "fetch info"

	url := fmt.Sprintf("http://%s/api/system/info", addr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &DeviceError{Kind: ErrKindProtocol, Addr: addr, Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(op, addr, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, &DeviceError{Kind: ErrKindUnauthorized, Addr: addr, Op: op, StatusCode: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		return nil, &DeviceError{Kind: ErrKindProtocol, Addr: addr, Op: op, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(op, addr, err)
	}

	var info SystemInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, &DeviceError{Kind: ErrKindProtocol, Addr: addr, Op: op, Err: err}
	}
	if info.Version == "" {
		return nil, &DeviceError{Kind: ErrKindProtocol, Addr: addr, Op: op,
			Err: fmt.Errorf("info response has no version field")}
	}

	if info.Hostname == "" {
		info.Hostname = unknownField
	}
	if info.BoardVersion == "" {
		info.BoardVersion = unknownField
	}
	if info.ASICModel == "" {
		info.ASICModel = unknownField
	}

	return &info, nil
}

// UploadAsset posts a binary image to the device's OTA endpoint for kind.
// The payload is sent as-is with Content-Type application/octet-stream, the
// format the ESP-Miner OTA handler expects. Only HTTP 200 counts as success;
// the call returns as soon as the device acknowledges, without waiting for
// the reboot that follows a firmware upload.
func (c *Client) UploadAsset(ctx context.Context, addr string, kind AssetKind, data []byte) error {
	op := "upload " + kind.String()

	url := fmt.Sprintf("http://%s%s", addr, kind.endpoint())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return &DeviceError{Kind: ErrKindProtocol, Addr: addr, Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.ContentLength = int64(len(data))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(op, addr, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return &DeviceError{Kind: ErrKindUnauthorized, Addr: addr, Op: op, StatusCode: resp.StatusCode}
	case resp.StatusCode >= 400:
		return &DeviceError{Kind: ErrKindPayloadRejected, Addr: addr, Op: op, StatusCode: resp.StatusCode}
	default:
		return &DeviceError{Kind: ErrKindProtocol, Addr: addr, Op: op, StatusCode: resp.StatusCode}
	}
}
