package upload

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
	"path/filepath"
	"strings"
	"time"
)

// Client uploads images to the chat server's HTTP side.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new upload client.
// baseURL is the server's HTTP origin, e.g., "http://localhost:10000".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetHTTPClient allows setting a custom HTTP client.
func (c *Client) SetHTTPClient(client *http.Client) {
	if client != nil {
		c.httpClient = client
	}
}

// Upload posts r as a multipart file to /upload/<displayName>/<roomID> and
// returns the stored file's URL as reported by the server.
func (c *Client) Upload(ctx context.Context, displayName, roomID, filename string, r io.Reader) (*Response, error) {
	if r == nil {
		return nil, errors.New("nil file reader")
	}
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(FileField, filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	endpoint := c.baseURL + "/upload/" + url.PathEscape(displayName) + "/" + url.PathEscape(roomID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp Response
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	if resp.URL == "" {
		return nil, errors.New("upload response has no url")
	}
	return &resp, nil
}

func (c *Client) do(req *http.Request, dest any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp ErrorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.message() != "" {
			return fmt.Errorf("api error (status %d): %s", resp.StatusCode, errResp.message())
		}
		return fmt.Errorf("http error: %s (status %d)", strings.TrimSpace(string(body)), resp.StatusCode)
	}

	if dest != nil {
		if err := json.Unmarshal(body, dest); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}
