package audit

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charleschow/bf-trading/internal/telemetry"

	_ "modernc.org/sqlite"
)

const (
	maxStoreBytes  int64   = 1 << 30 // 1 GiB
	evictPct       float64 = 0.10    // evict oldest 10% of rows
	vacuumInterval         = 10      // incremental vacuum every N evictions
)

// Placement is one order submission attempt and its outcome.
type Placement struct {
	ID           int64
	PlacedAt     time.Time
	EventType    string
	MarketID     string
	SelectionID  int64
	Side         string
	Price        float64
	Size         float64
	Persistence  string
	CustomerRef  string
	StrategyRef  string
	ReportStatus string // empty when the exchange never answered
	ErrorCode    string
	BetID        string
	SizeMatched  float64
	AvgPrice     float64
	Error        string
	RawReport    string
}

// Store persists Placement rows in a FIFO SQLite database capped at ~1 GiB.
// Oldest 10% of rows are evicted when the budget is exceeded.
type Store struct {
	db           *sql.DB
	mu           sync.Mutex
	maxBytes     int64
	cachedSize   int64
	rowCount     int64
	evictCounter int
}

func OpenStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create audit store dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)

	var avMode int
	if err := db.QueryRow(`PRAGMA auto_vacuum`).Scan(&avMode); err != nil {
		db.Close()
		return nil, fmt.Errorf("read auto_vacuum: %w", err)
	}
	if avMode != 2 {
		if _, err := db.Exec(`PRAGMA auto_vacuum = INCREMENTAL`); err != nil {
			db.Close()
			return nil, fmt.Errorf("set auto_vacuum: %w", err)
		}
		if _, err := db.Exec(`VACUUM`); err != nil {
			telemetry.Warnf("audit store: VACUUM to enable auto_vacuum failed: %v", err)
		}
	}

	for _, stmt := range []string{schema, marketIndex} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init audit schema: %w", err)
		}
	}

	var size int64
	db.QueryRow(`SELECT COALESCE(page_count * page_size, 0) FROM pragma_page_count(), pragma_page_size()`).Scan(&size)
	var rowCount int64
	db.QueryRow(`SELECT COUNT(*) FROM placements`).Scan(&rowCount)

	telemetry.Debugf("audit store: opened %s  size=%d  rows=%d", path, size, rowCount)
	return &Store{db: db, maxBytes: maxStoreBytes, cachedSize: size, rowCount: rowCount}, nil
}

const schema = `CREATE TABLE IF NOT EXISTS placements (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	placed_at     TEXT    NOT NULL,
	event_type    TEXT    NOT NULL,
	market_id     TEXT    NOT NULL,
	selection_id  INTEGER NOT NULL,
	side          TEXT    NOT NULL,
	price         REAL    NOT NULL,
	size          REAL    NOT NULL,
	persistence   TEXT    NOT NULL DEFAULT '',
	customer_ref  TEXT    NOT NULL DEFAULT '',
	strategy_ref  TEXT    NOT NULL DEFAULT '',

	-- Exchange report (NULL when no report was received)
	report_status TEXT,
	error_code    TEXT,
	bet_id        TEXT,
	size_matched  REAL,
	avg_price     REAL,
	raw_report    TEXT,

	error         TEXT
)`

const marketIndex = `CREATE INDEX IF NOT EXISTS placements_market ON placements (market_id, id)`

// Insert stores p and returns its row ID.
func (s *Store) Insert(p *Placement) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(
		`INSERT INTO placements (
			placed_at, event_type, market_id, selection_id, side, price, size,
			persistence, customer_ref, strategy_ref,
			report_status, error_code, bet_id, size_matched, avg_price, raw_report,
			error
		) VALUES (?,?,?,?,?,?,?, ?,?,?, ?,?,?,?,?,?, ?)`,
		p.PlacedAt.UTC().Format(time.RFC3339Nano), p.EventType, p.MarketID, p.SelectionID,
		p.Side, p.Price, p.Size,
		p.Persistence, p.CustomerRef, p.StrategyRef,
		nullStr(p.ReportStatus), nullStr(p.ErrorCode), nullStr(p.BetID),
		reportFloat(p, p.SizeMatched), reportFloat(p, p.AvgPrice), nullStr(p.RawReport),
		nullStr(p.Error),
	)
	if err != nil {
		return 0, fmt.Errorf("insert placement: %w", err)
	}

	id, _ := res.LastInsertId()
	s.rowCount++
	s.refreshSize()
	if s.cachedSize > s.maxBytes {
		s.evict()
	}
	return id, nil
}

// Recent returns up to n placements, newest first. A non-empty marketID
// restricts the result to that market.
func (s *Store) Recent(n int, marketID string) ([]Placement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `SELECT id, placed_at, event_type, market_id, selection_id, side, price, size,
			persistence, customer_ref, strategy_ref,
			report_status, error_code, bet_id, size_matched, avg_price, raw_report, error
		FROM placements`
	var args []any
	if marketID != "" {
		query += ` WHERE market_id = ?`
		args = append(args, marketID)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, n)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query placements: %w", err)
	}
	defer rows.Close()

	var out []Placement
	for rows.Next() {
		var (
			p                                 Placement
			placedAt                          string
			status, code, betID, raw, errText sql.NullString
			sizeMatched, avgPrice             sql.NullFloat64
		)
		if err := rows.Scan(&p.ID, &placedAt, &p.EventType, &p.MarketID, &p.SelectionID,
			&p.Side, &p.Price, &p.Size,
			&p.Persistence, &p.CustomerRef, &p.StrategyRef,
			&status, &code, &betID, &sizeMatched, &avgPrice, &raw, &errText,
		); err != nil {
			return nil, fmt.Errorf("scan placement: %w", err)
		}
		p.PlacedAt, _ = time.Parse(time.RFC3339Nano, placedAt)
		p.ReportStatus, p.ErrorCode, p.BetID = status.String, code.String, betID.String
		p.RawReport, p.Error = raw.String, errText.String
		p.SizeMatched, p.AvgPrice = sizeMatched.Float64, avgPrice.Float64
		out = append(out, p)
	}
	return out, rows.Err()
}

// refreshSize re-reads the database file size from SQLite pragmas.
// Must be called with s.mu held.
func (s *Store) refreshSize() {
	var size int64
	row := s.db.QueryRow(`SELECT COALESCE(page_count * page_size, 0) FROM pragma_page_count(), pragma_page_size()`)
	if err := row.Scan(&size); err == nil {
		s.cachedSize = size
	}
}

// evict deletes the oldest 10% of rows by count.
// Must be called with s.mu held.
func (s *Store) evict() {
	toDelete := int64(float64(s.rowCount) * evictPct)
	if toDelete < 1 {
		toDelete = 1
	}

	res, err := s.db.Exec(
		`DELETE FROM placements WHERE id IN (
			SELECT id FROM placements ORDER BY id ASC LIMIT ?
		)`, toDelete,
	)
	if err != nil {
		telemetry.Warnf("audit store evict: %v", err)
		return
	}

	deleted, _ := res.RowsAffected()
	s.rowCount -= deleted
	s.evictCounter++

	telemetry.Infof("audit store: evicted %d rows (target %d)", deleted, toDelete)

	if s.evictCounter%vacuumInterval == 0 {
		s.db.Exec(`PRAGMA incremental_vacuum`)
	}

	s.refreshSize()
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func nullStr(v string) any {
	if v == "" {
		return nil
	}
	return v
}

// reportFloat stores v only when a report was received.
func reportFloat(p *Placement, v float64) any {
	if p.ReportStatus == "" {
		return nil
	}
	return v
}
