package db

import (
	"strings"
	"testing"

	gormlogger "gorm.io/gorm/logger"
)

func TestRLSPolicyStatements(t *testing.T) {
	stmts := rlsPolicy("bookings")
	if len(stmts) != 4 {
		t.Fatalf("got %d statements, want 4", len(stmts))
	}
	for _, s := range stmts {
		if strings.Contains(s, ";") {
			t.Errorf("statement must hold a single command: %q", s)
		}
		if !strings.Contains(s, "bookings") {
			t.Errorf("statement does not target the table: %q", s)
		}
	}
	if !strings.Contains(stmts[3], "app.current_tenant") || !strings.Contains(stmts[3], "app.bypass_rls") {
		t.Errorf("policy does not read the session settings: %q", stmts[3])
	}
}

func TestGormLevel(t *testing.T) {
	tests := map[string]gormlogger.LogLevel{
		"debug": gormlogger.Info,
		"WARN":  gormlogger.Warn,
		"error": gormlogger.Error,
		"info":  gormlogger.Silent,
		"":      gormlogger.Silent,
	}
	for in, want := range tests {
		if got := gormLevel(in); got != want {
			t.Errorf("gormLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
