package contentstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"institution-site-backend/config"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 300
)

// ErrNotConfigured is returned by Query when no project id is set
var ErrNotConfigured = errors.New("contentstore: project id not configured")

// Client is a lightweight client for the Sanity GROQ query API.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

type queryResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Description string `json:"description"`
		Type        string `json:"type"`
	} `json:"error,omitempty"`
}

// NewClient creates a client for the project and dataset of cfg.
// Authenticated requests bypass the CDN, as the API requires.
func NewClient(cfg *config.Config) *Client {
	timeout := cfg.ContentTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		token:      cfg.SanityAPIToken,
		httpClient: &http.Client{Timeout: timeout},
	}
	if cfg.SanityProjectID != "" {
		host := "api"
		if cfg.SanityUseCDN && cfg.SanityAPIToken == "" {
			host = "apicdn"
		}
		c.endpoint = fmt.Sprintf("https://%s.%s.sanity.io/v%s/data/query/%s",
			cfg.SanityProjectID, host, strings.TrimPrefix(cfg.SanityAPIVersion, "v"), cfg.SanityDataset)
	}
	return c
}

// NewClientWithEndpoint targets an explicit query endpoint (e.g. a local mirror)
func NewClientWithEndpoint(endpoint, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{endpoint: endpoint, token: token, httpClient: httpClient}
}

// Query runs a GROQ query and returns the raw "result" member.
// Params are sent as $name=<json> query arguments.
func (c *Client) Query(ctx context.Context, query string, params map[string]any) (json.RawMessage, error) {
	if c.endpoint == "" {
		return nil, ErrNotConfigured
	}

	values := url.Values{}
	values.Set("query", query)
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		encoded, err := json.Marshal(params[k])
		if err != nil {
			return nil, fmt.Errorf("contentstore: encode param %s: %w", k, err)
		}
		values.Set("$"+strings.TrimPrefix(k, "$"), string(encoded))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+values.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("contentstore: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("contentstore: http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("contentstore: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := truncateUTF8(respBody, maxErrorBody)
		return nil, fmt.Errorf("contentstore: status %d: %s", resp.StatusCode, msg)
	}

	var out queryResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("contentstore: unmarshal response: %w", err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("contentstore: query error: %s", out.Error.Description)
	}
	return out.Result, nil
}

// truncateUTF8 cuts b to at most n bytes without splitting a rune
func truncateUTF8(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	cut := n
	for i := 0; i < utf8.UTFMax && cut > 0 && !utf8.RuneStart(b[cut]); i++ {
		cut--
	}
	return string(b[:cut])
}
