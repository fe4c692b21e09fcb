package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"vgm/internal/counter"
	logger "vgm/internal/log"
	"vgm/internal/retry"
)

// TokenEnvVar supplies the credential for authenticated requests. Refresh
// re-reads it so a new token picked up mid-session takes effect.
const TokenEnvVar = "VGM_TOKEN"

// RemoteConfig is what the remote advertises about itself: the cache
// servers it fronts, the oldest client it is willing to talk to, and which
// release ring its clients should follow.
type RemoteConfig struct {
	CacheServers     []CacheServerEntry `json:"cacheServers"`
	MinClientVersion string             `json:"minClientVersion"`
	DefaultRing      string             `json:"defaultRing"`
}

type CacheServerEntry struct {
	Name          string `json:"name"`
	URL           string `json:"url"`
	GlobalDefault bool   `json:"globalDefault"`
}

// RefsPayload is the remote's reference set from one negotiation round trip.
type RefsPayload struct {
	Branches      map[string]string `json:"branches"`
	DefaultBranch string            `json:"defaultBranch"`
}

// Client issues authenticated requests against one remote. All calls share
// the operation's retry config; attempts feed the optional counter for
// status display.
type Client struct {
	remoteURL  string
	token      string
	retry      retry.Config
	attempts   *counter.Counter
	httpClient *http.Client
}

func NewClient(remoteURL string, retryConfig retry.Config, attempts *counter.Counter) *Client {
	return &Client{
		remoteURL:  strings.TrimSuffix(remoteURL, "/"),
		retry:      retryConfig,
		attempts:   attempts,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// RefreshCredentials must succeed before any config or ref fetch. It
// re-reads the token source so refreshed credentials are picked up.
func (c *Client) RefreshCredentials(_ context.Context) error {
	token := os.Getenv(TokenEnvVar)
	if token == "" {
		return fmt.Errorf("no credentials available; set %s", TokenEnvVar)
	}
	c.token = token
	return nil
}

func (c *Client) QueryConfig(ctx context.Context) (*RemoteConfig, error) {
	return getWithRetry[*RemoteConfig](ctx, c, "fetch remote configuration", c.endpoint("config", nil))
}

// QueryRefs fetches the reference set, scoped to one branch when branch is
// non-empty so the response stays small.
func (c *Client) QueryRefs(ctx context.Context, branch string) (*RefsPayload, error) {
	var query url.Values
	if branch != "" {
		query = url.Values{"branch": []string{branch}}
	}
	return getWithRetry[*RefsPayload](ctx, c, "fetch refs", c.endpoint("refs", query))
}

func (c *Client) endpoint(name string, query url.Values) string {
	endpoint := fmt.Sprintf("%s/vgm/%s", c.remoteURL, name)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	return endpoint
}

func getWithRetry[T any](ctx context.Context, c *Client, name string, url string) (T, error) {
	var result T
	err := c.retry.Do(ctx, name, c.attempts, func(ctx context.Context) error {
		var attemptErr error
		result, attemptErr = get[T](ctx, c, url)
		return attemptErr
	})
	if err != nil {
		var empty T
		return empty, err
	}
	return result, nil
}

// get performs one authenticated JSON GET. Rejections the remote will repeat
// (4xx other than 429) come back as permanent errors so the retry loop stops
// at the first occurrence; transport faults and 5xx stay retryable.
func get[T any](ctx context.Context, c *Client, url string) (T, error) {
	var emptyResult T
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return emptyResult, retry.Permanent(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return emptyResult, err
	}
	defer func(body io.ReadCloser) {
		err := body.Close()
		if err != nil {
			logger.Log.Errorf("Failed to close response body: %v", err)
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		statusErr := fmt.Errorf("request on %s failed with status: %s", url, resp.Status)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return emptyResult, retry.Permanent(statusErr)
		}
		return emptyResult, statusErr
	}

	var decodedResult T
	if err := json.NewDecoder(resp.Body).Decode(&decodedResult); err != nil {
		return emptyResult, retry.Permanent(fmt.Errorf("could not decode response from %s: %w", url, err))
	}

	return decodedResult, nil
}
