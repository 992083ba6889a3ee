package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"MarketTerminal/internal/model"
)

var columns = []string{"Date", "Open", "High", "Low", "Close", "Volume", "Ticker"}

// SQLStore persists series through database/sql.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	mu      sync.Mutex
}

// Open connects to the database. driver is "sqlite" or "postgres".
func Open(driver, dsn string) (*SQLStore, error) {
	d, err := lookupDialect(driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.name, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.name, err)
	}
	for _, stmt := range d.init {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init %s: %w", d.name, err)
		}
	}
	log.Info().Str("driver", d.name).Msg("historical store opened")
	return &SQLStore{db: db, dialect: d}, nil
}

// Store drops and recreates the ticker's table inside one transaction, so
// a failed run leaves the previous table untouched.
func (s *SQLStore) Store(ctx context.Context, ticker string, series model.PriceSeries) (string, error) {
	table := SanitizeTable(ticker)
	if table == "" {
		return "", fmt.Errorf("%w: ticker %q sanitizes to an empty table name", ErrWrite, ticker)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return table, fmt.Errorf("%w: begin: %w", ErrWrite, err)
	}
	if err := s.replace(ctx, tx, table, ticker, series); err != nil {
		_ = tx.Rollback()
		return table, fmt.Errorf("%w: table %s: %w", ErrWrite, table, err)
	}
	if err := tx.Commit(); err != nil {
		return table, fmt.Errorf("%w: commit %s: %w", ErrWrite, table, err)
	}
	return table, nil
}

func (s *SQLStore) replace(ctx context.Context, tx *sql.Tx, table, ticker string, series model.PriceSeries) error {
	d := s.dialect
	q := quoteIdent(table)

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+q); err != nil {
		return fmt.Errorf("drop: %w", err)
	}
	create := fmt.Sprintf(`CREATE TABLE %s (
		"Date"   %s NOT NULL,
		"Open"   %s NOT NULL,
		"High"   %s NOT NULL,
		"Low"    %s NOT NULL,
		"Close"  %s NOT NULL,
		"Volume" %s NOT NULL,
		"Ticker" %s NOT NULL
	)`, q, d.timeType, d.realType, d.realType, d.realType, d.realType, d.intType, d.textType)
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create: %w", err)
	}

	placeholders := make([]string, len(columns))
	quoted := make([]string, len(columns))
	for i, c := range columns {
		placeholders[i] = d.placeholder(i + 1)
		quoted[i] = quoteIdent(c)
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		q, strings.Join(quoted, ", "), strings.Join(placeholders, ", ")))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, b := range series.Bars {
		if _, err := stmt.ExecContext(ctx, d.timeArg(b.Time), b.Open, b.High, b.Low, b.Close, b.Volume, ticker); err != nil {
			return fmt.Errorf("insert %s: %w", b.Time.Format("2006-01-02"), err)
		}
	}
	return nil
}

// Load reads a stored table back in time order.
func (s *SQLStore) Load(ctx context.Context, ticker string) (model.PriceSeries, error) {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		strings.Join(quoted, ", "), quoteIdent(SanitizeTable(ticker)), quoteIdent("Date"))

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("load %s: %w", ticker, err)
	}
	defer rows.Close()

	series := model.PriceSeries{Ticker: ticker}
	for rows.Next() {
		var (
			raw any
			b   model.PriceBar
		)
		if err := rows.Scan(&raw, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume, &b.Ticker); err != nil {
			return model.PriceSeries{}, fmt.Errorf("scan %s: %w", ticker, err)
		}
		if b.Time, err = parseStoredTime(raw); err != nil {
			return model.PriceSeries{}, fmt.Errorf("scan %s: %w", ticker, err)
		}
		series.Bars = append(series.Bars, b)
	}
	if err := rows.Err(); err != nil {
		return model.PriceSeries{}, fmt.Errorf("load %s: %w", ticker, err)
	}
	return series, nil
}

// Tables lists every table in the store.
func (s *SQLStore) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.listTables)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (s *SQLStore) Close() error {
	log.Info().Str("driver", s.dialect.name).Msg("closing historical store")
	return s.db.Close()
}
