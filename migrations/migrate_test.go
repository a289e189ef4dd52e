package migrations

import (
	"testing"
	"testing/fstest"
)

func TestSortedNames(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_banners.sql": &fstest.MapFile{Data: []byte("ALTER TABLE events ADD COLUMN note TEXT;")},
		"0001_init.sql":    &fstest.MapFile{Data: []byte("CREATE TABLE items(id TEXT PRIMARY KEY);")},
		"drafts/0003.sql":  &fstest.MapFile{Data: []byte("-- not a top-level migration")},
	}

	names, err := sortedNames(fsys)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"0001_init.sql", "0002_banners.sql"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("got %v, want %v", names, want)
		}
	}
}

func TestPending(t *testing.T) {
	names := []string{"0001_init.sql", "0002_banners.sql", "0003_indexes.sql"}

	t.Run("fresh database runs everything", func(t *testing.T) {
		got := pending(names, nil)
		if len(got) != 3 {
			t.Fatalf("got %v, want all three", got)
		}
	})

	t.Run("rerun applies nothing", func(t *testing.T) {
		applied := map[string]bool{}
		for _, name := range names {
			applied[name] = true
		}
		if got := pending(names, applied); len(got) != 0 {
			t.Fatalf("already-applied files must be skipped, got %v", got)
		}
	})

	t.Run("only new files run, in order", func(t *testing.T) {
		applied := map[string]bool{"0001_init.sql": true}
		got := pending(names, applied)
		if len(got) != 2 || got[0] != "0002_banners.sql" || got[1] != "0003_indexes.sql" {
			t.Fatalf("got %v", got)
		}
	})
}

func TestEmbeddedMigrations(t *testing.T) {
	names, err := sortedNames(migrationFiles)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) == 0 {
		t.Fatal("no embedded migrations found")
	}
	if names[0] != "0001_init.sql" {
		t.Errorf("initial schema must sort first, got %q", names[0])
	}
	for i := 1; i < len(names); i++ {
		if names[i] <= names[i-1] {
			t.Errorf("names out of order: %q before %q", names[i-1], names[i])
		}
	}
}
