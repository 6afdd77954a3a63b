package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/YogeshJat8965/SwastikMotorsUjjain-sub001/internal/common/config"
	"github.com/YogeshJat8965/SwastikMotorsUjjain-sub001/internal/common/middleware"
)

// ErrUploadRejected 媒体托管方拒绝了这次上传（非 2xx）。
var ErrUploadRejected = errors.New("media host rejected upload")

// maxUploadBytes 单张图片上限。
const maxUploadBytes = 8 << 20

// Client 图片托管协作方的上传客户端。本服务只存 URL，原始字节
// 直接转交托管方；托管方连续失败会熔断一段时间快速失败。
type Client struct {
	endpoint string
	apiKey   string
	httpc    *http.Client
	breaker  *middleware.CircuitBreaker
}

func NewClient(cfg config.MediaConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	maxFailures := cfg.MaxFailures
	if maxFailures <= 0 {
		maxFailures = 5
	}
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		httpc:    &http.Client{Timeout: timeout},
		breaker:  middleware.NewCircuitBreaker("media-upload", maxFailures, 30*time.Second),
	}
}

type uploadResponse struct {
	URL string `json:"url"`
}

// Upload 以 multipart 转发一张图片，返回托管方给出的稳定 URL。
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	if c == nil || c.endpoint == "" {
		return "", fmt.Errorf("media client not configured")
	}

	var uploadedURL string
	err := c.breaker.Call(ctx, func() error {
		u, err := c.doUpload(ctx, filename, r)
		if err != nil {
			return err
		}
		uploadedURL = u
		return nil
	})
	if err != nil {
		return "", err
	}
	return uploadedURL, nil
}

func (c *Client) doUpload(ctx context.Context, filename string, r io.Reader) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	n, err := io.Copy(part, io.LimitReader(r, maxUploadBytes+1))
	if err != nil {
		return "", err
	}
	if n > maxUploadBytes {
		return "", fmt.Errorf("file exceeds %d bytes", maxUploadBytes)
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// 响应体内容不外露，只记状态码
		return "", fmt.Errorf("%w: status %d", ErrUploadRejected, resp.StatusCode)
	}

	var ur uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if err := ValidateURL(ur.URL); err != nil {
		return "", err
	}
	return ur.URL, nil
}

// ValidateURL 校验托管方返回（或客户端直填）的图片 URL。
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid image url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid image url: %q", raw)
	}
	return nil
}
