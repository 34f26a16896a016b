package process

import (
	"context"
	"fmt"

	"github.com/charleschow/bf-trading/internal/adapters/betfair_auth"
	"github.com/charleschow/bf-trading/internal/adapters/outbound/betfair_http"
	"github.com/charleschow/bf-trading/internal/adapters/outbound/discord"
	"github.com/charleschow/bf-trading/internal/config"
	"github.com/charleschow/bf-trading/internal/core/audit"
	"github.com/charleschow/bf-trading/internal/events"
	"github.com/charleschow/bf-trading/internal/telemetry"
)

// Options selects which optional infrastructure Boot wires up.
type Options struct {
	// Audit opens the order audit store and records every outcome from the bus.
	Audit bool
	// Alerts posts order outcomes to Discord when a webhook is configured.
	Alerts bool
}

// Runtime is the shared infrastructure every entry point needs.
type Runtime struct {
	Cfg     *config.Config
	Client  *betfair_http.Client
	Session betfair_auth.Session
	Bus     *events.Bus

	auditStore *audit.Store
}

// Boot authenticates against Betfair and wires the client, bus, audit
// recorder and alerts. The returned Runtime must be closed.
func Boot(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	sess, err := openSession(ctx, cfg)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{
		Cfg:     cfg,
		Client:  betfair_http.NewClient(cfg.BettingURL),
		Session: sess,
		Bus:     events.NewBus(),
	}

	if opts.Audit {
		store, err := audit.OpenStore(cfg.AuditDBPath)
		if err != nil {
			return nil, fmt.Errorf("audit store: %w", err)
		}
		rt.auditStore = store
		audit.NewRecorder(store).Attach(rt.Bus)
	}

	if opts.Alerts {
		notifier := discord.NewNotifier(cfg.DiscordWebhookURL)
		if notifier.Enabled() {
			notifier.Attach(rt.Bus)
			telemetry.Infof("Discord alerts enabled")
		}
	}

	return rt, nil
}

func openSession(ctx context.Context, cfg *config.Config) (betfair_auth.Session, error) {
	if cfg.SessionToken != "" {
		telemetry.Infof("Betfair: using pre-issued session token")
		return betfair_auth.NewSession(cfg.AppKey, cfg.SessionToken), nil
	}

	sess, err := betfair_auth.Login(ctx, nil, betfair_auth.LoginRequest{
		IdentityURL: cfg.IdentityURL,
		AppKey:      cfg.AppKey,
		Username:    cfg.Username,
		Password:    cfg.Password,
	})
	if err != nil {
		return betfair_auth.Session{}, err
	}
	telemetry.Infof("Betfair: logged in as %s", cfg.Username)
	return sess, nil
}

// Close releases the audit store and logs the metrics summary.
func (rt *Runtime) Close() error {
	m := &telemetry.Metrics
	telemetry.Infof("Done  api_calls=%d  api_errors=%d  books=%d  orders=%d  order_errors=%d  audit_writes=%d  api_p50=%v  api_p99=%v",
		m.APICalls.Value(), m.APIErrors.Value(), m.BooksFetched.Value(),
		m.OrdersSent.Value(), m.OrderErrors.Value(), m.AuditWrites.Value(),
		m.APILatency.P50(), m.APILatency.P99(),
	)
	return rt.auditStore.Close()
}
