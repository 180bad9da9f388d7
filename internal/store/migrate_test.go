package store

import (
	"testing"
	"testing/fstest"
)

func TestMigrate(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	fsys := fstest.MapFS{
		"900_test.sql": {Data: []byte(`CREATE TABLE test_items (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL
		);`)},
	}

	if err := s.Migrate(fsys); err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM test_items").Scan(&count); err != nil {
		t.Fatalf("querying test_items: %v", err)
	}

	if err := s.Migrate(fsys); err != nil {
		t.Fatalf("second Migrate() failed: %v", err)
	}
}

func TestMigrateInvalidFilename(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	fsys := fstest.MapFS{"bad_name.sql": {Data: []byte("SELECT 1")}}

	if err := s.Migrate(fsys); err == nil {
		t.Fatal("expected error for invalid migration filename")
	}
}
