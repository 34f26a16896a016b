package catalogue

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/charleschow/bf-trading/internal/adapters/betfair_auth"
	"github.com/charleschow/bf-trading/internal/adapters/outbound/betfair_http"
	"github.com/charleschow/bf-trading/internal/telemetry"
)

const (
	DefaultDays  = 7
	DefaultLimit = 100

	// SportSoccer is the exchange event type id for football.
	SportSoccer = "1"
)

type CompetitionRow struct {
	Name string
	ID   string
}

func (r CompetitionRow) DisplayName() string { return r.Name }

type EventRow struct {
	Name        string
	ID          string
	Venue       string
	CountryCode string
	TimeZone    string
	OpenDate    time.Time
	MarketCount int
}

func (r EventRow) DisplayName() string { return r.Name }

type MarketRow struct {
	Name         string
	ID           string
	TotalMatched float64
}

func (r MarketRow) DisplayName() string { return r.Name }

// Service projects catalogue responses into flat rows.
// Identical calls in flight at the same time share one request.
type Service struct {
	lister  Lister
	now     func() time.Time
	sfGroup singleflight.Group
}

func NewService(lister Lister) *Service {
	return &Service{lister: lister, now: time.Now}
}

// Competitions lists competitions of sportID with markets starting within days.
func (s *Service) Competitions(ctx context.Context, sess betfair_auth.Session, sportID string, days int) ([]CompetitionRow, error) {
	filter := s.sportFilter(sportID, days)
	key := fmt.Sprintf("competitions:%s:%s", sportID, filter.MarketStartTime.To)

	v, err, shared := s.sfGroup.Do(key, func() (any, error) {
		res, err := s.lister.ListCompetitions(ctx, sess, filter)
		if err != nil {
			return nil, fmt.Errorf("list competitions sport=%s: %w", sportID, err)
		}
		rows := make([]CompetitionRow, 0, len(res))
		for _, c := range res {
			rows = append(rows, CompetitionRow{Name: c.Competition.Name, ID: c.Competition.ID})
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		telemetry.Debugf("catalogue: shared in-flight %s", key)
	}
	return clone(v.([]CompetitionRow)), nil
}

// Events lists events of sportID with markets starting within days, soonest first.
func (s *Service) Events(ctx context.Context, sess betfair_auth.Session, sportID string, days int) ([]EventRow, error) {
	filter := s.sportFilter(sportID, days)
	key := fmt.Sprintf("events:%s:%s", sportID, filter.MarketStartTime.To)

	v, err, _ := s.sfGroup.Do(key, func() (any, error) {
		res, err := s.lister.ListEvents(ctx, sess, filter)
		if err != nil {
			return nil, fmt.Errorf("list events sport=%s: %w", sportID, err)
		}
		rows := make([]EventRow, 0, len(res))
		for _, e := range res {
			rows = append(rows, EventRow{
				Name:        e.Event.Name,
				ID:          e.Event.ID,
				Venue:       e.Event.Venue,
				CountryCode: e.Event.CountryCode,
				TimeZone:    e.Event.Timezone,
				OpenDate:    e.Event.OpenDate,
				MarketCount: e.MarketCount,
			})
		}
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].OpenDate.Before(rows[j].OpenDate) })
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return clone(v.([]EventRow)), nil
}

// Markets lists the market catalogue of eventIDs, most traded first.
func (s *Service) Markets(ctx context.Context, sess betfair_auth.Session, eventIDs []string, limit int) ([]MarketRow, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	filter := betfair_http.MarketFilter{EventIDs: eventIDs}
	key := fmt.Sprintf("markets:%s:%d", strings.Join(eventIDs, ","), limit)

	v, err, _ := s.sfGroup.Do(key, func() (any, error) {
		res, err := s.lister.ListMarketCatalogue(ctx, sess, filter, limit, betfair_http.SortMaximumTraded)
		if err != nil {
			return nil, fmt.Errorf("list market catalogue events=%v: %w", eventIDs, err)
		}
		rows := make([]MarketRow, 0, len(res))
		for _, m := range res {
			rows = append(rows, MarketRow{Name: m.MarketName, ID: m.MarketID, TotalMatched: m.TotalMatched})
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return clone(v.([]MarketRow)), nil
}

func (s *Service) sportFilter(sportID string, days int) betfair_http.MarketFilter {
	if days <= 0 {
		days = DefaultDays
	}
	return betfair_http.MarketFilter{
		EventTypeIDs:    []string{sportID},
		MarketStartTime: betfair_http.Until(s.now().AddDate(0, 0, days)),
	}
}

// clone keeps callers of a shared singleflight result from aliasing each other.
func clone[T any](rows []T) []T {
	return append([]T(nil), rows...)
}
