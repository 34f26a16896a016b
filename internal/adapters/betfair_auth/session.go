package betfair_auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrLoginFailed = errors.New("betfair login failed")

// Session is the authenticated handle passed to every Betting API call.
// It is an immutable value; renewal is the caller's concern.
type Session struct {
	appKey string
	token  string
}

// NewSession wraps a pre-issued session token.
func NewSession(appKey, token string) Session {
	return Session{appKey: appKey, token: token}
}

// Enabled reports whether the session carries both an app key and a token.
func (s Session) Enabled() bool {
	return s.appKey != "" && s.token != ""
}

func (s Session) AppKey() string { return s.appKey }

// SignRequest sets the X-Application and X-Authentication headers on req.
func (s Session) SignRequest(req *http.Request) error {
	if !s.Enabled() {
		return fmt.Errorf("session not authenticated")
	}
	req.Header.Set("X-Application", s.appKey)
	req.Header.Set("X-Authentication", s.token)
	return nil
}

// LoginRequest holds the credentials for interactive login.
type LoginRequest struct {
	IdentityURL string
	AppKey      string
	Username    string
	Password    string
}

type loginResponse struct {
	Token   string `json:"token"`
	Product string `json:"product"`
	Status  string `json:"status"`
	Error   string `json:"error"`
}

// Login performs the interactive (non-certificate) login and returns a Session.
// A nil httpClient uses a client with a 15s timeout.
func Login(ctx context.Context, httpClient *http.Client, lr LoginRequest) (Session, error) {
	if lr.AppKey == "" || lr.Username == "" || lr.Password == "" {
		return Session{}, fmt.Errorf("%w: app key, username and password are required", ErrLoginFailed)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	form := url.Values{}
	form.Set("username", lr.Username)
	form.Set("password", lr.Password)

	endpoint := strings.TrimRight(lr.IdentityURL, "/") + "/api/login"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return Session{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("X-Application", lr.AppKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := httpClient.Do(req)
	if err != nil {
		return Session{}, fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Session{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Session{}, fmt.Errorf("%w: status=%d body=%s", ErrLoginFailed, resp.StatusCode, string(body))
	}

	var lresp loginResponse
	if err := json.Unmarshal(body, &lresp); err != nil {
		return Session{}, fmt.Errorf("unmarshal login response: %w", err)
	}
	if lresp.Status != "SUCCESS" || lresp.Token == "" {
		return Session{}, fmt.Errorf("%w: status=%s error=%s", ErrLoginFailed, lresp.Status, lresp.Error)
	}

	return NewSession(lr.AppKey, lresp.Token), nil
}
