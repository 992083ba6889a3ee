package store

import (
	"fmt"
	"strconv"
	"time"
)

// sqliteTimeLayout keeps the offset so a bar loads back as the same instant.
const sqliteTimeLayout = "2006-01-02 15:04:05-07:00"

// legacyTimeLayout is the offset-free form of earlier databases, read as UTC.
const legacyTimeLayout = "2006-01-02 15:04:05"

// dialect captures what differs between the supported SQL engines.
type dialect struct {
	name        string
	driver      string
	timeType    string
	realType    string
	intType     string
	textType    string
	init        []string
	listTables  string
	placeholder func(n int) string
	timeArg     func(t time.Time) any
}

var dialects = map[string]dialect{
	"sqlite": {
		name:     "sqlite",
		driver:   "sqlite",
		timeType: "TIMESTAMP",
		realType: "REAL",
		intType:  "INTEGER",
		textType: "TEXT",
		// WAL lets dashboards read while the ingestion job writes.
		init:        []string{"PRAGMA journal_mode=WAL"},
		listTables:  `SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`,
		placeholder: func(int) string { return "?" },
		timeArg:     func(t time.Time) any { return t.Format(sqliteTimeLayout) },
	},
	"postgres": {
		name:        "postgres",
		driver:      "postgres",
		timeType:    "TIMESTAMPTZ",
		realType:    "DOUBLE PRECISION",
		intType:     "BIGINT",
		textType:    "TEXT",
		listTables:  `SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() ORDER BY table_name`,
		placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
		timeArg:     func(t time.Time) any { return t },
	},
}

func lookupDialect(name string) (dialect, error) {
	d, ok := dialects[name]
	if !ok {
		return dialect{}, fmt.Errorf("unsupported database driver %q", name)
	}
	return d, nil
}

// parseStoredTime accepts what the drivers hand back for a timestamp column.
func parseStoredTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		return parseTimeText(t)
	case []byte:
		return parseTimeText(string(t))
	default:
		return time.Time{}, fmt.Errorf("unexpected timestamp type %T", v)
	}
}

func parseTimeText(s string) (time.Time, error) {
	for _, layout := range []string{sqliteTimeLayout, legacyTimeLayout, time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable timestamp %q", s)
}
