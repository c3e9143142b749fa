package database

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		version int
		ok      bool
	}{
		{"three digit prefix", "001_initial_schema.sql", 1, true},
		{"longer prefix", "0012_hero.sql", 12, true},
		{"no underscore", "001.sql", 0, false},
		{"non numeric", "abc_schema.sql", 0, false},
		{"zero version", "000_noop.sql", 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v, ok := parseVersion(tc.file)
			if v != tc.version || ok != tc.ok {
				t.Errorf("parseVersion(%q) = %d, %v; want %d, %v", tc.file, v, ok, tc.version, tc.ok)
			}
		})
	}
}

func TestListMigrations_SortsAndFilters(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"010_later.sql", "002_second.sql", "README.md", "001_first.sql", "bad_name.sql"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "003_dir.sql"), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}

	got, err := listMigrations(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []int{1, 2, 10}
	if len(got) != len(want) {
		t.Fatalf("expected %d migrations, got %d", len(want), len(got))
	}
	for i, v := range want {
		if got[i].version != v {
			t.Errorf("migration %d: expected version %d, got %d", i, v, got[i].version)
		}
	}
}

func TestListMigrations_MissingDir(t *testing.T) {
	if _, err := listMigrations(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
