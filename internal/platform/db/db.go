// Package db holds shared database plumbing for the warehouse connection.
package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

const driverName = "mysql"

// Open connects to the warehouse and verifies the connection. parseTime is
// forced on so DATE/TIMESTAMP columns scan into time.Time regardless of the
// configured DSN.
func Open(dsn string) (*sql.DB, error) {
	normalized, err := normalizeDSN(dsn)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(driverName, normalized)
	if err != nil {
		return nil, fmt.Errorf("open warehouse connection: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping warehouse: %w", err)
	}

	// A sync run is a single batch pass; a small pool is plenty.
	conn.SetMaxOpenConns(8)
	conn.SetMaxIdleConns(4)
	conn.SetConnMaxLifetime(30 * time.Minute)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	return conn, nil
}

// normalizeDSN validates the DSN and forces parseTime on.
func normalizeDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse warehouse DSN: %w", err)
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}
