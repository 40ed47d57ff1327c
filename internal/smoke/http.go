package smoke

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/mergington/internal/domain/types"
	"github.com/okian/mergington/pkg/logger"
)

// HTTPClient wraps http.Client with the service base URL.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// rosterResponse is the decoded outcome of a signup or unregister call.
type rosterResponse struct {
	Status  int
	Message string
	Detail  string
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Activities fetches GET /activities.
func (c *HTTPClient) Activities(ctx context.Context) (types.Activities, error) {
	resp, err := c.Get(ctx, "/activities")
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list activities returned status %d", resp.StatusCode)
	}

	var activities types.Activities
	if err := json.Unmarshal(body, &activities); err != nil {
		return nil, fmt.Errorf("failed to decode activities: %w", err)
	}
	return activities, nil
}

// Signup calls POST /activities/{activity}/signup?email=.
func (c *HTTPClient) Signup(ctx context.Context, activity, email string) (rosterResponse, error) {
	return c.roster(ctx, "signup", activity, email)
}

// Unregister calls POST /activities/{activity}/unregister?email=.
func (c *HTTPClient) Unregister(ctx context.Context, activity, email string) (rosterResponse, error) {
	return c.roster(ctx, "unregister", activity, email)
}

func (c *HTTPClient) roster(ctx context.Context, action, activity, email string) (rosterResponse, error) {
	target := fmt.Sprintf("%s/activities/%s/%s?email=%s",
		c.baseURL, url.PathEscape(activity), action, url.QueryEscape(email))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, http.NoBody)
	if err != nil {
		return rosterResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return rosterResponse{}, fmt.Errorf("%s request failed: %w", action, err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return rosterResponse{}, err
	}

	out := rosterResponse{Status: resp.StatusCode}
	if resp.StatusCode == http.StatusOK {
		var msg types.MessageResponse
		if err := json.Unmarshal(body, &msg); err != nil {
			return out, fmt.Errorf("failed to decode %s response: %w", action, err)
		}
		out.Message = msg.Message
		return out, nil
	}
	var e types.ErrorResponse
	if err := json.Unmarshal(body, &e); err != nil {
		return out, fmt.Errorf("failed to decode %s error: %w", action, err)
	}
	out.Detail = e.Detail
	return out, nil
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return b, nil
}

// fanOut runs call for every email on config.Workers workers and returns
// the emails grouped by result.
func fanOut(ctx context.Context, config *Config, emails []string, call func(email string) string) map[string][]string {
	var (
		mu      sync.Mutex
		results = make(map[string][]string)
		done    int64
	)

	emailChan := make(chan string, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for email := range emailChan {
				if ctx.Err() != nil {
					return
				}
				result := call(email)

				mu.Lock()
				results[result] = append(results[result], email)
				mu.Unlock()

				n := atomic.AddInt64(&done, 1)
				if config.Verbose {
					logger.Get().Debug(ctx, "request completed",
						logger.String("email", email),
						logger.String("result", result),
						logger.Int("done", int(n)),
						logger.Int("total", len(emails)))
				}
			}
		}()
	}

	go func() {
		defer close(emailChan)
		for _, email := range emails {
			select {
			case <-ctx.Done():
				return
			case emailChan <- email:
			}
		}
	}()

	wg.Wait()
	return results
}

// signupAll signs every student up concurrently.
func signupAll(ctx context.Context, config *Config, client *HTTPClient, students []string, stats *Stats) []string {
	logger.Get().Info(ctx, "signing up students",
		logger.Int("students", len(students)),
		logger.Int("workers", config.Workers))

	results := fanOut(ctx, config, students, func(email string) string {
		resp, err := client.Signup(ctx, config.Activity, email)
		switch {
		case err != nil:
			return resultFailed
		case resp.Status == http.StatusOK:
			return resultAccepted
		case resp.Status == http.StatusBadRequest && strings.Contains(resp.Detail, detailFull):
			return resultFull
		default:
			return resultFailed
		}
	})

	stats.SignupsAccepted = len(results[resultAccepted])
	stats.SignupsFull = len(results[resultFull])
	stats.SignupsFailed = len(results[resultFailed])

	logger.Get().Info(ctx, "signups completed",
		logger.Int("accepted", stats.SignupsAccepted),
		logger.Int("full", stats.SignupsFull),
		logger.Int("failed", stats.SignupsFailed))
	return results[resultAccepted]
}

// unregisterAll removes every student concurrently.
func unregisterAll(ctx context.Context, config *Config, client *HTTPClient, students []string, stats *Stats) {
	logger.Get().Info(ctx, "unregistering students", logger.Int("students", len(students)))

	results := fanOut(ctx, config, students, func(email string) string {
		resp, err := client.Unregister(ctx, config.Activity, email)
		if err != nil || resp.Status != http.StatusOK {
			return resultFailed
		}
		return resultAccepted
	})

	stats.Unregistered = len(results[resultAccepted])
	stats.UnregisterFailed = len(results[resultFailed])
}
