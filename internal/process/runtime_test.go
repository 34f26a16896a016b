package process

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/charleschow/bf-trading/internal/adapters/betfair_auth"
	"github.com/charleschow/bf-trading/internal/adapters/outbound/betfair_http"
	"github.com/charleschow/bf-trading/internal/config"
	"github.com/charleschow/bf-trading/internal/events"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		AppKey:      "app-key",
		BettingURL:  "http://127.0.0.1:0",
		StrategyRef: "best_price",
		AuditDBPath: filepath.Join(t.TempDir(), "orders.db"),
	}
}

func TestBoot_PreIssuedToken(t *testing.T) {
	cfg := testConfig(t)
	cfg.SessionToken = "tok-123"

	rt, err := Boot(context.Background(), cfg, Options{})
	if err != nil {
		t.Fatalf("Boot: %v", err)
	}
	defer rt.Close()

	if !rt.Session.Enabled() || rt.Session.AppKey() != "app-key" {
		t.Fatalf("unexpected session: %+v", rt.Session)
	}
	if rt.Client == nil || rt.Bus == nil {
		t.Fatal("client and bus must be wired")
	}
}

func TestBoot_InteractiveLogin(t *testing.T) {
	identity := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/login" || r.FormValue("username") != "punter" {
			t.Errorf("unexpected login request %s user=%q", r.URL.Path, r.FormValue("username"))
		}
		w.Write([]byte(`{"token":"tok-login","product":"app-key","status":"SUCCESS","error":""}`))
	}))
	defer identity.Close()

	cfg := testConfig(t)
	cfg.IdentityURL = identity.URL
	cfg.Username, cfg.Password = "punter", "secret"

	rt, err := Boot(context.Background(), cfg, Options{})
	if err != nil {
		t.Fatalf("Boot: %v", err)
	}
	defer rt.Close()
	if !rt.Session.Enabled() {
		t.Fatal("expected authenticated session")
	}
}

func TestBoot_LoginRejected(t *testing.T) {
	identity := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token":"","product":"app-key","status":"FAIL","error":"INVALID_USERNAME_OR_PASSWORD"}`))
	}))
	defer identity.Close()

	cfg := testConfig(t)
	cfg.IdentityURL = identity.URL
	cfg.Username, cfg.Password = "punter", "wrong"

	if _, err := Boot(context.Background(), cfg, Options{}); !errors.Is(err, betfair_auth.ErrLoginFailed) {
		t.Fatalf("expected ErrLoginFailed, got %v", err)
	}
}

func TestBoot_InvalidConfig(t *testing.T) {
	if _, err := Boot(context.Background(), &config.Config{}, Options{}); err == nil {
		t.Fatal("expected config error")
	}
}

func TestBoot_AuditRecordsOutcomes(t *testing.T) {
	cfg := testConfig(t)
	cfg.SessionToken = "tok-123"

	rt, err := Boot(context.Background(), cfg, Options{Audit: true, Alerts: true})
	if err != nil {
		t.Fatalf("Boot: %v", err)
	}
	defer rt.Close()

	rt.Bus.Publish(events.New(events.EventOrderFailed, "1.23", events.OrderOutcome{
		Request: betfair_http.PlaceOrdersRequest{MarketID: "1.23"},
		Err:     errors.New("connection reset"),
	}))

	rows, err := rt.auditStore.Recent(10, "")
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(rows) != 1 || rows[0].MarketID != "1.23" || rows[0].Error != "connection reset" {
		t.Fatalf("unexpected audit rows: %+v", rows)
	}
}
