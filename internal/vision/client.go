package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
)

// Client talks to the relay's prediction API.
type Client struct {
	url    *url.URL
	client *http.Client
}

// NewClient creates a client for the relay at the given base URL. A nil
// http.Client falls back to http.DefaultClient.
func NewClient(rawURL string, client *http.Client) (*Client, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}

	if client == nil {
		client = http.DefaultClient
	}

	return &Client{url: u, client: client}, nil
}

// Predict submits an image as a multipart upload with field name "file"
// and decodes the relayed backend response. Any non-2xx status is an
// error; the relay's own error detail is logged by callers but never
// shown to the user.
func (c *Client) Predict(ctx context.Context, filename string, image io.Reader) (*PredictResponse, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form: %w", err)
	}

	if _, err = io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("copy image data: %w", err)
	}

	if err = writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	_url := c.url.JoinPath("/api/predict").String()
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, _url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	request.Header.Set("Content-Type", writer.FormDataContentType())

	response, err := c.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		resp, _ := io.ReadAll(response.Body)
		return nil, fmt.Errorf("relay response status code: %d, body: %s", response.StatusCode, resp)
	}

	var resp PredictResponse
	if err = json.NewDecoder(response.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode response body: %w", err)
	}

	return &resp, nil
}
