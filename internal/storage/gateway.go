package storage

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"vtube-api/pkg/logger"
)

// Kind selects the remote resource type for deletions.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Config holds the media storage gateway credentials. The gateway is
// constructed from this struct explicitly so tests can substitute endpoints.
type Config struct {
	BaseURL   string
	CloudName string
	APIKey    string
	APISecret string
	Timeout   time.Duration
}

// Asset describes a stored media object.
type Asset struct {
	URL      string  `json:"url"`
	PublicID string  `json:"public_id"`
	Duration float64 `json:"duration"`
}

// Gateway uploads and deletes media assets on the remote storage/CDN service.
type Gateway struct {
	cfg        Config
	httpClient *http.Client
	logger     *logger.Logger
}

// New creates a new media storage gateway
func New(cfg Config, log *logger.Logger) *Gateway {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Gateway{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
	}
}

// Upload sends a locally staged file to the storage service and returns the
// durable asset reference. The local file is removed before returning, on
// success and failure alike.
func (g *Gateway) Upload(ctx context.Context, localPath string) (*Asset, error) {
	if localPath == "" {
		return nil, fmt.Errorf("local path is required")
	}
	defer func() {
		if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
			g.logger.WithError(err).WithField("path", localPath).Warn("Failed to remove staged upload file")
		}
	}()

	file, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open staged file: %w", err)
	}
	defer file.Close()

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	params := map[string]string{
		"timestamp": timestamp,
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(localPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create multipart field: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to read staged file: %w", err)
	}

	for k, v := range params {
		if err := writer.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("failed to write multipart field: %w", err)
		}
	}
	if err := writer.WriteField("api_key", g.cfg.APIKey); err != nil {
		return nil, fmt.Errorf("failed to write multipart field: %w", err)
	}
	if err := writer.WriteField("signature", signParams(params, g.cfg.APISecret)); err != nil {
		return nil, fmt.Errorf("failed to write multipart field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	// resource_type auto lets the service detect image vs video
	endpoint := fmt.Sprintf("%s/%s/auto/upload", strings.TrimRight(g.cfg.BaseURL, "/"), g.cfg.CloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call storage service: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read storage response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("storage service returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var asset Asset
	if err := json.Unmarshal(respBody, &asset); err != nil {
		g.logger.WithFields(map[string]interface{}{
			"response_body": string(respBody),
			"status_code":   resp.StatusCode,
		}).Error("Failed to parse storage response")
		return nil, fmt.Errorf("failed to parse storage response: %w", err)
	}
	if asset.URL == "" || asset.PublicID == "" {
		return nil, fmt.Errorf("storage response missing asset reference")
	}

	g.logger.WithFields(map[string]interface{}{
		"public_id": asset.PublicID,
		"duration":  asset.Duration,
	}).Debug("Uploaded asset to storage service")

	return &asset, nil
}

// Destroy deletes a stored asset by public id. The call is awaited; the
// caller decides whether a failure is fatal.
func (g *Gateway) Destroy(ctx context.Context, publicID string, kind Kind) error {
	if publicID == "" {
		return fmt.Errorf("public id is required")
	}
	if kind == "" {
		kind = KindImage
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	params := map[string]string{
		"public_id": publicID,
		"timestamp": timestamp,
	}

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}
	form.Set("api_key", g.cfg.APIKey)
	form.Set("signature", signParams(params, g.cfg.APISecret))

	endpoint := fmt.Sprintf("%s/%s/%s/destroy", strings.TrimRight(g.cfg.BaseURL, "/"), g.cfg.CloudName, kind)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create destroy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call storage service: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read storage response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("storage service returned status %d: %s", resp.StatusCode, string(respBody))
	}

	g.logger.WithFields(map[string]interface{}{
		"public_id":     publicID,
		"resource_type": string(kind),
	}).Debug("Deleted asset from storage service")

	return nil
}

// signParams produces the request signature: SHA-1 over the sorted
// key=value pairs joined with '&', concatenated with the API secret.
func signParams(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(sum[:])
}
