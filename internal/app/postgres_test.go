package app

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/guttosm/dappulse/config"
)

var testPostgres = config.PostgresConfig{User: "u", Password: "p", Host: "h", Port: 5432, DBName: "d", SSLMode: "disable"}

func TestPostgresDSN(t *testing.T) {
	tests := []struct {
		name string
		pg   config.PostgresConfig
		want string
	}{
		{name: "fields", pg: testPostgres, want: "postgres://u:p@h:5432/d?sslmode=disable"},
		{name: "escaped password", pg: config.PostgresConfig{User: "u", Password: "p@ss/w", Host: "h", Port: 5433, DBName: "d"}, want: "postgres://u:p%40ss%2Fw@h:5433/d"},
		{name: "url wins", pg: config.PostgresConfig{URL: "postgres://x@y/z", Host: "ignored"}, want: "postgres://x@y/z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := postgresDSN(tt.pg); got != tt.want {
				t.Fatalf("postgresDSN = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInitPostgres_OpenError(t *testing.T) {
	old := sqlOpener
	sqlOpener = func(driverName, dataSourceName string) (*sql.DB, error) {
		return nil, errors.New("open failed")
	}
	t.Cleanup(func() { sqlOpener = old })

	if _, err := InitPostgres(config.Config{Postgres: testPostgres}); err == nil {
		t.Fatalf("expected error from InitPostgres when open fails")
	}
}

func TestInitPostgres_PingErrorClosesHandle(t *testing.T) {
	var mock sqlmock.Sqlmock
	old := sqlOpener
	sqlOpener = func(driverName, dataSourceName string) (*sql.DB, error) {
		db, m, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		if err != nil {
			t.Fatalf("sqlmock new: %v", err)
		}
		m.ExpectPing().WillReturnError(errors.New("ping failed"))
		m.ExpectClose()
		mock = m
		return db, nil
	}
	t.Cleanup(func() { sqlOpener = old })

	if _, err := InitPostgres(config.Config{Postgres: testPostgres}); err == nil {
		t.Fatalf("expected ping error from InitPostgres")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("handle not closed after failed ping: %v", err)
	}
}

func TestInitPostgres_OK(t *testing.T) {
	old := sqlOpener
	sqlOpener = func(driverName, dataSourceName string) (*sql.DB, error) {
		if dataSourceName != "postgres://u:p@h:5432/d?sslmode=disable" {
			t.Errorf("unexpected dsn %q", dataSourceName)
		}
		db, m, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		if err != nil {
			t.Fatalf("sqlmock new: %v", err)
		}
		m.ExpectPing()
		return db, nil
	}
	t.Cleanup(func() { sqlOpener = old })

	db, err := InitPostgres(config.Config{Postgres: testPostgres})
	if err != nil {
		t.Fatalf("InitPostgres: %v", err)
	}
	_ = db.Close()
}
