// Package ipfs is a thin client for the IPFS HTTP API, used to keep a
// content-addressed replica of encrypted blobs. Pinning is optional; a
// client built without an API URL degrades to a no-op.
package ipfs

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
	"strings"
	"time"

	"blockvault/internal/domain"
)

// ErrDisabled is returned for content reads when no IPFS node is configured.
var ErrDisabled = errors.New("ipfs pinning is not configured")

// Client talks to an IPFS node's HTTP API (Kubo or a pinning service).
type Client struct {
	apiURL  string
	gateway string
	token   string
	http    *http.Client
}

// New builds a client. An empty apiURL disables pinning. A token containing
// ":" is sent as basic auth credentials, anything else as a bearer token.
func New(apiURL, gateway, token string) *Client {
	return &Client{
		apiURL:  strings.TrimRight(apiURL, "/"),
		gateway: strings.TrimRight(gateway, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Enabled reports whether an API endpoint is configured.
func (c *Client) Enabled() bool { return c.apiURL != "" }

// Add uploads data under name, pins it, and returns its CID. Returns ""
// when pinning is disabled.
func (c *Client) Add(ctx context.Context, name string, data []byte) (string, error) {
	if !c.Enabled() {
		return "", nil
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		return "", err
	}
	if _, err := fw.Write(data); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	resp, err := c.post(ctx, "/api/v0/add?pin=true", mw.FormDataContentType(), &body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", apiError("add", resp)
	}

	var out struct {
		Hash string `json:"Hash"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("parse add response: %w", err)
	}
	if out.Hash == "" {
		return "", errors.New("ipfs add returned no hash")
	}
	return out.Hash, nil
}

// Cat fetches pinned content by CID.
func (c *Client) Cat(ctx context.Context, cid string) ([]byte, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}
	resp, err := c.post(ctx, "/api/v0/cat?arg="+url.QueryEscape(cid), "", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, apiError("cat", resp)
	}
	return io.ReadAll(resp.Body)
}

// Unpin removes the pin for cid. Missing pins are not an error.
func (c *Client) Unpin(ctx context.Context, cid string) error {
	if !c.Enabled() {
		return nil
	}
	resp, err := c.post(ctx, "/api/v0/pin/rm?arg="+url.QueryEscape(cid), "", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusInternalServerError {
		return apiError("pin/rm", resp)
	}
	return nil
}

// GatewayURL returns a public gateway link for cid, or "" when no gateway
// is configured.
func (c *Client) GatewayURL(cid string) string {
	if c.gateway == "" || cid == "" {
		return ""
	}
	return c.gateway + "/ipfs/" + cid
}

func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		if user, pass, ok := strings.Cut(c.token, ":"); ok {
			req.SetBasicAuth(user, pass)
		} else {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
	}
	return c.http.Do(req)
}

func apiError(op string, resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("ipfs %s: status %d: %s", op, resp.StatusCode, strings.TrimSpace(string(b)))
}

// Compile-time assertion that Client implements domain.Pinner.
var _ domain.Pinner = (*Client)(nil)
