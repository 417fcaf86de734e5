package database

import (
	"io/fs"
	"testing"
)

func TestMigrationVersion(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"001_reservations.sql", 1},
		{"012_add_index.sql", 12},
		{"abc.sql", 0},
		{"x", 0},
	}

	for _, tc := range tests {
		if got := migrationVersion(tc.name); got != tc.want {
			t.Errorf("migrationVersion(%q) = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestMigrations_Embedded(t *testing.T) {
	data, err := fs.ReadFile(Migrations(), "001_reservations.sql")
	if err != nil {
		t.Fatalf("expected embedded migration: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("embedded migration is empty")
	}
}
