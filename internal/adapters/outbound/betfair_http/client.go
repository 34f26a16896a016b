package betfair_http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charleschow/bf-trading/internal/adapters/betfair_auth"
	"github.com/charleschow/bf-trading/internal/telemetry"
	"golang.org/x/time/rate"
)

// Client talks to the Betfair Betting API (JSON REST flavour). Every call
// takes the session explicitly; the client holds no credentials.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	readLimiter  *rate.Limiter
	writeLimiter *rate.Limiter
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		readLimiter:  rate.NewLimiter(rate.Limit(20), 20),
		writeLimiter: rate.NewLimiter(rate.Limit(10), 10),
	}
}

// APIError is a non-2xx response from the Betting API. Code carries the
// APINGException error code when the body had one.
type APIError struct {
	Operation string
	Status    int
	Code      string
	Detail    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("betfair %s: status=%d code=%s %s", e.Operation, e.Status, e.Code, e.Detail)
	}
	return fmt.Sprintf("betfair %s: status=%d %s", e.Operation, e.Status, e.Detail)
}

type faultBody struct {
	FaultCode   string `json:"faultcode"`
	FaultString string `json:"faultstring"`
	Detail      struct {
		APINGException struct {
			ErrorCode    string `json:"errorCode"`
			ErrorDetails string `json:"errorDetails"`
		} `json:"APINGException"`
	} `json:"detail"`
}

func (c *Client) call(ctx context.Context, sess betfair_auth.Session, operation string, write bool, body, out any) error {
	lim := c.readLimiter
	if write {
		lim = c.writeLimiter
	}
	waitStart := time.Now()
	if err := lim.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	telemetry.Metrics.RateLimiterWait.Record(time.Since(waitStart))

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}

	url := c.baseURL + "/" + operation + "/"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if err := sess.SignRequest(req); err != nil {
		return fmt.Errorf("sign: %w", err)
	}

	telemetry.Metrics.APICalls.Inc()
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		telemetry.Metrics.APIErrors.Inc()
		return fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	elapsed := time.Since(start)
	telemetry.Metrics.APILatency.Record(elapsed)
	telemetry.Infof("betfair_http: %s -> %d (%s)", operation, resp.StatusCode, elapsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		telemetry.Metrics.APIErrors.Inc()
		return decodeFault(operation, resp.StatusCode, respBody)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal %s response: %w", operation, err)
	}
	return nil
}

func decodeFault(operation string, status int, body []byte) *APIError {
	apiErr := &APIError{Operation: operation, Status: status}

	var fb faultBody
	if err := json.Unmarshal(body, &fb); err != nil {
		apiErr.Detail = string(body)
		return apiErr
	}
	apiErr.Code = fb.Detail.APINGException.ErrorCode
	apiErr.Detail = fb.Detail.APINGException.ErrorDetails
	if apiErr.Code == "" {
		apiErr.Code = fb.FaultString
	}
	return apiErr
}
