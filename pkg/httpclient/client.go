package httpclient

import (
	"net/http"
	"time"
)

// ClientType represents the header profile an HTTP client uses.
type ClientType string

const (
	// BrowserClient uses browser-like headers to avoid 406 (Not Acceptable)
	// errors from sites that require a browser User-Agent.
	BrowserClient ClientType = "browser"

	// CloudflareClient uses simple headers (like curl) to avoid 403
	// (Forbidden) errors from Cloudflare-protected sites, which allow simple
	// tools but block browser-like User-Agents.
	CloudflareClient ClientType = "cloudflare"

	// BearerAuthClient sends an Authorization bearer token. Used for the
	// serverless extraction/translation endpoints.
	BearerAuthClient ClientType = "bearer"
)

// HTTPClient wraps an http.Client with a header profile.
type HTTPClient struct {
	client     *http.Client
	clientType ClientType
	token      string
}

// NewClient creates an HTTP client with the specified header profile.
func NewClient(clientType ClientType) *HTTPClient {
	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			// Follow up to 10 redirects
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}

	return &HTTPClient{
		client:     client,
		clientType: clientType,
	}
}

// NewBearerClient creates a client that authenticates every request with the
// given bearer token and enforces a request timeout.
func NewBearerClient(token string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:     &http.Client{Timeout: timeout},
		clientType: BearerAuthClient,
		token:      token,
	}
}

// Do executes an HTTP request with the appropriate headers for the client type.
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	c.setHeaders(req)
	return c.client.Do(req)
}

// Get is a convenience method for GET requests.
func (c *HTTPClient) Get(url string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// setHeaders sets the appropriate headers based on client type.
func (c *HTTPClient) setHeaders(req *http.Request) {
	switch c.clientType {
	case BrowserClient:
		req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Connection", "keep-alive")
		req.Header.Set("Upgrade-Insecure-Requests", "1")

	case CloudflareClient:
		// Simple headers like curl; Cloudflare blocks browser-like
		// User-Agents from non-browser tools.
		req.Header.Set("User-Agent", "curl/8.7.1")

	case BearerAuthClient:
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

	default:
		// Go's default User-Agent.
	}
}
