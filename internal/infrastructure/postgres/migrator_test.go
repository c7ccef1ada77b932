package postgres

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestRunMigrationsMissingSource(t *testing.T) {
	err := RunMigrations("postgres://localhost:1/db?sslmode=disable", filepath.Join(t.TempDir(), "missing"), zerolog.Nop())
	if err == nil {
		t.Fatalf("expected error for missing migrations directory")
	}
}

func TestMigrationFilesArePaired(t *testing.T) {
	entries, err := os.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}

	if len(ups) == 0 {
		t.Fatalf("no migrations found")
	}

	var versions []string
	for v := range ups {
		if !downs[v] {
			t.Errorf("migration %s has no down file", v)
		}
		versions = append(versions, v)
	}
	sort.Strings(versions)
	for _, table := range []string{"payment_requests", "audit_logs", "outbox_events"} {
		found := false
		for _, v := range versions {
			body, _ := os.ReadFile(filepath.Join("migrations", v+".up.sql"))
			if strings.Contains(string(body), "CREATE TABLE IF NOT EXISTS "+table) {
				found = true
			}
		}
		if !found {
			t.Errorf("no migration creates %s", table)
		}
	}
}
