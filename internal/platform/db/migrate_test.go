package db

import (
	"testing"
	"testing/fstest"
	"time"
)

func TestLoadMigrations(t *testing.T) {
	src := fstest.MapFS{
		"002_index.sql":    {Data: []byte("CREATE INDEX kv_updated ON kv_store (updated_at);")},
		"001_kv_store.sql": {Data: []byte("CREATE TABLE kv_store (key TEXT PRIMARY KEY);")},
		"010_later.sql":    {Data: []byte("SELECT 1;")},
	}

	migrations, err := NewMigrator(nil, src).LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations() error: %v", err)
	}
	if len(migrations) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migrations))
	}

	wantVersions := []int{1, 2, 10}
	for i, v := range wantVersions {
		if migrations[i].Version != v {
			t.Errorf("migration %d: expected version %d, got %d", i, v, migrations[i].Version)
		}
	}
	if migrations[0].Name != "001_kv_store.sql" {
		t.Errorf("expected name 001_kv_store.sql, got %s", migrations[0].Name)
	}
	if migrations[0].SQL != "CREATE TABLE kv_store (key TEXT PRIMARY KEY);" {
		t.Errorf("unexpected SQL content: %s", migrations[0].SQL)
	}
}

func TestLoadMigrations_SkipsInvalidFilenames(t *testing.T) {
	src := fstest.MapFS{
		"001_ok.sql":       {Data: []byte("SELECT 1;")},
		"readme.md":        {Data: []byte("docs")},
		"nounderscore.sql": {Data: []byte("SELECT 2;")},
		"abc_text.sql":     {Data: []byte("SELECT 3;")},
		"sub/002_x.sql":    {Data: []byte("SELECT 4;")},
	}

	migrations, err := NewMigrator(nil, src).LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations() error: %v", err)
	}
	if len(migrations) != 1 {
		t.Fatalf("expected 1 migration, got %d", len(migrations))
	}
	if migrations[0].Name != "001_ok.sql" {
		t.Errorf("expected 001_ok.sql, got %s", migrations[0].Name)
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	migrations, err := NewMigrator(nil, Migrations()).LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations() error: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("expected at least one embedded migration")
	}
	if migrations[0].Name != "001_kv_store.sql" {
		t.Errorf("expected first migration 001_kv_store.sql, got %s", migrations[0].Name)
	}
}

func TestPendingAndStatuses(t *testing.T) {
	migrations := []Migration{
		{Version: 1, Name: "001_kv_store.sql"},
		{Version: 2, Name: "002_index.sql"},
	}
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	applied := map[int]time.Time{1: at}

	p := pending(migrations, applied)
	if len(p) != 1 || p[0].Version != 2 {
		t.Fatalf("expected only version 2 pending, got %+v", p)
	}

	st := statuses(migrations, applied)
	if len(st) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(st))
	}
	if !st[0].Applied || st[0].AppliedAt == nil || !st[0].AppliedAt.Equal(at) {
		t.Errorf("expected version 1 applied at %v, got %+v", at, st[0])
	}
	if st[1].Applied || st[1].AppliedAt != nil {
		t.Errorf("expected version 2 pending, got %+v", st[1])
	}
}
