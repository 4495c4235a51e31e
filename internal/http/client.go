package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

const (
	// DefaultUserAgent is sent with every request unless configured otherwise.
	DefaultUserAgent = "KHInsider/1.0"

	// DefaultTimeout bounds each request, including reading the body.
	DefaultTimeout = 30 * time.Second
)

// Options configures a Client. Zero values use the defaults.
type Options struct {
	UserAgent string
	Timeout   time.Duration

	// ProxyURL routes requests through a proxy. "system" uses the
	// environment, empty or "none" connects directly.
	ProxyURL string
}

// StatusError is returned for responses other than 200 OK.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d for %s: %s", e.StatusCode, e.URL, e.Status)
}

// Client fetches album pages, cover art and audio files.
type Client struct {
	hc        *http.Client
	userAgent string
}

// NewClient creates a Client. An unparsable ProxyURL is ignored and the
// client connects directly.
func NewClient(opts Options) *Client {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = proxyFunc(opts.ProxyURL)

	return &Client{
		hc:        &http.Client{Timeout: opts.Timeout, Transport: transport},
		userAgent: opts.UserAgent,
	}
}

func proxyFunc(proxy string) func(*http.Request) (*url.URL, error) {
	switch proxy {
	case "", "none":
		return nil
	case "system":
		return http.ProxyFromEnvironment
	}
	u, err := url.Parse(proxy)
	if err != nil {
		return nil
	}
	return http.ProxyURL(u)
}

// fetch sends the request and returns the response only when it is 200 OK.
// The caller closes the body.
func (c *Client) fetch(ctx context.Context, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return resp, nil
}

// Get returns the response body.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := c.fetch(ctx, http.MethodGet, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// GetString returns the response body as text, for HTML pages.
func (c *Client) GetString(ctx context.Context, rawURL string) (string, error) {
	body, err := c.Get(ctx, rawURL)
	return string(body), err
}

// GetFileSize reports the Content-Length of a HEAD response. A response
// without one is an error.
func (c *Client) GetFileSize(ctx context.Context, rawURL string) (int64, error) {
	resp, err := c.fetch(ctx, http.MethodHead, rawURL)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()

	if resp.ContentLength < 0 {
		return 0, fmt.Errorf("no Content-Length header for %s", rawURL)
	}
	return resp.ContentLength, nil
}

// progressWriter counts bytes on their way to w.
type progressWriter struct {
	w        io.Writer
	total    int64
	written  int64
	onUpdate func(written, total int64)
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.w.Write(p)
	pw.written += int64(n)
	pw.onUpdate(pw.written, pw.total)
	return n, err
}

// DownloadFile streams rawURL into destPath. The body is written to
// destPath+".part" and renamed once complete; a failed or short transfer
// removes the partial file. onProgress may be nil; its total is -1 when the
// server sends no Content-Length.
func (c *Client) DownloadFile(ctx context.Context, rawURL, destPath string, onProgress func(written, total int64)) error {
	resp, err := c.fetch(ctx, http.MethodGet, rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	partPath := destPath + ".part"
	file, err := os.Create(partPath)
	if err != nil {
		return err
	}

	var dst io.Writer = file
	if onProgress != nil {
		dst = &progressWriter{w: file, total: resp.ContentLength, onUpdate: onProgress}
	}

	n, err := io.Copy(dst, resp.Body)
	if err == nil && resp.ContentLength >= 0 && n != resp.ContentLength {
		err = fmt.Errorf("%s: got %d of %d bytes: %w", rawURL, n, resp.ContentLength, io.ErrUnexpectedEOF)
	}
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(partPath)
		return err
	}

	return os.Rename(partPath, destPath)
}

// DownloadBytes reads a small file, such as cover art, into memory.
func (c *Client) DownloadBytes(ctx context.Context, rawURL string) ([]byte, error) {
	return c.Get(ctx, rawURL)
}
