package gormrepo

import (
	"context"
	"database/sql"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

func TestFailedMigrateClosesConnection(t *testing.T) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer sqlDB.Close()
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{DisableAutomaticPing: true})
	if err != nil {
		t.Fatalf("open gorm: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newStore(db.WithContext(ctx)); err == nil {
		t.Fatal("expected migrate to fail on a cancelled context")
	}
	if err := sqlDB.Ping(); err == nil {
		t.Fatal("connection pool left open after a failed migrate")
	}
}
