package database

import (
	"strings"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
)

func TestDSN(t *testing.T) {
	dsn := DSN("hotel", "s3cret", "db.local", "3307", "hotel")
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		t.Fatalf("ParseDSN(%q): %v", dsn, err)
	}
	if cfg.User != "hotel" || cfg.Passwd != "s3cret" || cfg.Addr != "db.local:3307" || cfg.DBName != "hotel" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if !cfg.ParseTime || cfg.Loc != time.UTC {
		t.Fatalf("parseTime/loc not set: %q", dsn)
	}
	if !strings.Contains(dsn, "charset=utf8mb4") {
		t.Fatalf("charset missing: %q", dsn)
	}
}

func TestDSNWithoutPassword(t *testing.T) {
	dsn := DSN("root", "", "127.0.0.1", "3306", "hotel")
	if !strings.HasPrefix(dsn, "root@tcp(127.0.0.1:3306)/hotel") {
		t.Fatalf("dsn = %q", dsn)
	}
}
