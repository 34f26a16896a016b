package catalogue

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charleschow/bf-trading/internal/adapters/betfair_auth"
	"github.com/charleschow/bf-trading/internal/adapters/outbound/betfair_http"
)

var testSession = betfair_auth.NewSession("app-key", "tok-123")

type mockLister struct {
	competitions []betfair_http.CompetitionResult
	events       []betfair_http.EventResult
	markets      []betfair_http.MarketCatalogue
	err          error

	mu         sync.Mutex
	filters    []betfair_http.MarketFilter
	maxResults int
	sort       string

	calls   atomic.Int32
	release chan struct{}
}

func (m *mockLister) record(f betfair_http.MarketFilter) {
	m.calls.Add(1)
	m.mu.Lock()
	m.filters = append(m.filters, f)
	m.mu.Unlock()
	if m.release != nil {
		<-m.release
	}
}

func (m *mockLister) ListCompetitions(_ context.Context, _ betfair_auth.Session, f betfair_http.MarketFilter) ([]betfair_http.CompetitionResult, error) {
	m.record(f)
	return m.competitions, m.err
}

func (m *mockLister) ListEvents(_ context.Context, _ betfair_auth.Session, f betfair_http.MarketFilter) ([]betfair_http.EventResult, error) {
	m.record(f)
	return m.events, m.err
}

func (m *mockLister) ListMarketCatalogue(_ context.Context, _ betfair_auth.Session, f betfair_http.MarketFilter, maxResults int, sort string) ([]betfair_http.MarketCatalogue, error) {
	m.mu.Lock()
	m.maxResults, m.sort = maxResults, sort
	m.mu.Unlock()
	m.record(f)
	return m.markets, m.err
}

func fixedNow() time.Time { return time.Date(2022, 12, 5, 18, 0, 0, 0, time.UTC) }

func TestCompetitions_FilterAndProjection(t *testing.T) {
	lister := &mockLister{competitions: []betfair_http.CompetitionResult{
		{Competition: betfair_http.Competition{ID: "12470022", Name: "FIFA World Cup"}, MarketCount: 120},
		{Competition: betfair_http.Competition{ID: "10932509", Name: "English Premier League"}, MarketCount: 40},
	}}
	svc := NewService(lister)
	svc.now = fixedNow

	rows, err := svc.Competitions(context.Background(), testSession, SportSoccer, 0)
	if err != nil {
		t.Fatalf("Competitions: %v", err)
	}
	if len(rows) != 2 || rows[0] != (CompetitionRow{Name: "FIFA World Cup", ID: "12470022"}) {
		t.Fatalf("unexpected rows: %+v", rows)
	}

	f := lister.filters[0]
	if len(f.EventTypeIDs) != 1 || f.EventTypeIDs[0] != "1" {
		t.Fatalf("event type filter = %v", f.EventTypeIDs)
	}
	if f.MarketStartTime == nil || f.MarketStartTime.To != "2022-12-12T18:00:00Z" {
		t.Fatalf("expected default 7 day window, got %+v", f.MarketStartTime)
	}
}

func TestEvents_SortedByOpenDate(t *testing.T) {
	late := time.Date(2022, 12, 6, 15, 0, 0, 0, time.UTC)
	early := time.Date(2022, 12, 5, 19, 0, 0, 0, time.UTC)
	lister := &mockLister{events: []betfair_http.EventResult{
		{Event: betfair_http.Event{ID: "2", Name: "Brazil v South Korea", OpenDate: late, CountryCode: "QA"}, MarketCount: 90},
		{Event: betfair_http.Event{ID: "1", Name: "Japan v Croatia", OpenDate: early, Timezone: "GMT"}, MarketCount: 88},
	}}
	svc := NewService(lister)
	svc.now = fixedNow

	rows, err := svc.Events(context.Background(), testSession, SportSoccer, 2)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(rows) != 2 || rows[0].ID != "1" || rows[1].ID != "2" {
		t.Fatalf("expected events sorted by open date, got %+v", rows)
	}
	if rows[0].TimeZone != "GMT" || rows[0].MarketCount != 88 || rows[1].CountryCode != "QA" {
		t.Fatalf("projection lost fields: %+v", rows)
	}
	if to := lister.filters[0].MarketStartTime.To; to != "2022-12-07T18:00:00Z" {
		t.Fatalf("window end = %s", to)
	}
}

func TestMarkets_DefaultsAndSort(t *testing.T) {
	lister := &mockLister{markets: []betfair_http.MarketCatalogue{
		{MarketID: "1.207303789", MarketName: "Match Odds", TotalMatched: 1523411.2},
	}}
	svc := NewService(lister)

	rows, err := svc.Markets(context.Background(), testSession, []string{"31936404"}, 0)
	if err != nil {
		t.Fatalf("Markets: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != "1.207303789" || rows[0].TotalMatched != 1523411.2 {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	if lister.maxResults != DefaultLimit || lister.sort != betfair_http.SortMaximumTraded {
		t.Fatalf("maxResults=%d sort=%s", lister.maxResults, lister.sort)
	}
	if ids := lister.filters[0].EventIDs; len(ids) != 1 || ids[0] != "31936404" {
		t.Fatalf("event ids = %v", ids)
	}
}

func TestService_WrapsListerError(t *testing.T) {
	cause := errors.New("boom")
	svc := NewService(&mockLister{err: cause})

	if _, err := svc.Markets(context.Background(), testSession, []string{"1"}, 10); !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestService_CollapsesConcurrentCalls(t *testing.T) {
	lister := &mockLister{
		competitions: []betfair_http.CompetitionResult{{Competition: betfair_http.Competition{ID: "1", Name: "A"}}},
		release:      make(chan struct{}),
	}
	svc := NewService(lister)
	svc.now = fixedNow

	const callers = 5
	var wg sync.WaitGroup
	results := make([][]CompetitionRow, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rows, err := svc.Competitions(context.Background(), testSession, SportSoccer, 7)
			if err != nil {
				t.Errorf("Competitions: %v", err)
			}
			results[i] = rows
		}(i)
	}

	// Let the first call reach the lister, then give the rest time to join it.
	for lister.calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)
	close(lister.release)
	wg.Wait()

	if n := lister.calls.Load(); n < 1 || n > callers {
		t.Fatalf("unexpected call count %d", n)
	}
	for i, rows := range results {
		if len(rows) != 1 || rows[0].ID != "1" {
			t.Fatalf("caller %d got %+v", i, rows)
		}
	}
	results[0][0].Name = "mutated"
	for i := 1; i < callers; i++ {
		if results[i][0].Name != "A" {
			t.Fatal("shared result aliased between callers")
		}
	}
}

func TestFilterByName(t *testing.T) {
	rows := []EventRow{
		{Name: "Atlético Madrid v Sevilla"},
		{Name: "Real  Madrid v Cádiz"},
		{Name: "Arsenal v Chelsea"},
	}

	got := FilterByName(rows, "atletico")
	if len(got) != 1 || got[0].Name != "Atlético Madrid v Sevilla" {
		t.Fatalf("diacritic-insensitive match failed: %+v", got)
	}
	if got := FilterByName(rows, "MADRID"); len(got) != 2 {
		t.Fatalf("case-insensitive match failed: %+v", got)
	}
	if got := FilterByName(rows, "real madrid v cadiz"); len(got) != 1 {
		t.Fatalf("whitespace collapse failed: %+v", got)
	}
	if got := FilterByName(rows, "  "); len(got) != 3 {
		t.Fatalf("blank query should keep all rows, got %d", len(got))
	}
	if got := FilterByName(rows, "liverpool"); len(got) != 0 {
		t.Fatalf("expected no match, got %+v", got)
	}
}

func TestWriteMarkets(t *testing.T) {
	var buf bytes.Buffer
	err := WriteMarkets(&buf, []MarketRow{{Name: "Match Odds", ID: "1.207303789", TotalMatched: 1523411.2}})
	if err != nil {
		t.Fatalf("WriteMarkets: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Total Matched", "Match Odds", "1.207303789", "1,523,411.2"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}
