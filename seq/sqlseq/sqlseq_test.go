package sqlseq

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"testing"

	"github.com/kbukum/seqkit/seq"

	_ "modernc.org/sqlite"
)

type track struct {
	ID    int
	Title string
	Plays int
}

func scanTrack(rows *sql.Rows) (track, error) {
	var t track
	err := rows.Scan(&t.ID, &t.Title, &t.Plays)
	return t, err
}

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	stmts := []string{
		`CREATE TABLE tracks (id INTEGER PRIMARY KEY, title TEXT NOT NULL, plays INTEGER NOT NULL)`,
		`INSERT INTO tracks (id, title, plays) VALUES (1, 'intro', 10), (2, 'verse', 40), (3, 'chorus', 90), (4, 'bridge', 40), (5, 'outro', 5)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
	return db
}

func TestQuery_Restartable(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	s, err := Query(db, "SELECT id, title, plays FROM tracks ORDER BY id", nil, scanTrack)
	if err != nil {
		t.Fatal(err)
	}
	for range 2 {
		got, err := seq.ToSlice(ctx, s)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 5 || got[2].Title != "chorus" {
			t.Fatalf("got %v", got)
		}
	}
}

func TestQuery_ComposesWithOperators(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	s := seq.Must(Query(db, "SELECT id, title, plays FROM tracks WHERE plays >= ?", []any{10}, scanTrack))
	popular := seq.Must(seq.OrderByDescending(s, func(t track) int { return t.Plays }))
	top := seq.Must(seq.Map(seq.Must(seq.Take(popular.Sequence, 2)), func(_ context.Context, t track) (string, error) {
		return t.Title, nil
	}))

	got, err := seq.ToSlice(ctx, top)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []string{"chorus", "verse"}) {
		t.Errorf("got %v", got)
	}
}

func TestQuery_ReleasesConnectionOnAbandon(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	ids := seq.Must(Query(db, "SELECT id FROM tracks ORDER BY id", nil, Column[int]()))

	first, err := seq.First(ctx, ids)
	if err != nil || first != 1 {
		t.Fatalf("First() = %d, %v", first, err)
	}
	if inUse := db.Stats().InUse; inUse != 0 {
		t.Errorf("connections in use = %d, want 0", inUse)
	}
	n, err := seq.Count(ctx, ids)
	if err != nil || n != 5 {
		t.Errorf("Count() = %d, %v", n, err)
	}
}

func TestQuery_NotExecutedUntilPulled(t *testing.T) {
	db := openDB(t)
	s := seq.Must(Query(db, "SELECT nope FROM missing", nil, Column[int]()))
	it := s.Iter()
	if err := it.Close(); err != nil {
		t.Fatalf("closing an unpulled query should not fail: %v", err)
	}
	if _, err := seq.ToSlice(context.Background(), s); err == nil {
		t.Fatal("expected the bad statement to fail on first pull")
	}
}

func TestFromRows_SinglePass(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	rows, err := db.QueryContext(ctx, "SELECT title FROM tracks WHERE plays = 40 ORDER BY id")
	if err != nil {
		t.Fatal(err)
	}
	s := seq.Must(FromRows(rows, Column[string]()))

	got, err := seq.ToSlice(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []string{"verse", "bridge"}) {
		t.Errorf("got %v", got)
	}
	if _, err := seq.ToSlice(ctx, s); !errors.Is(err, seq.ErrSourceConsumed) {
		t.Errorf("second iteration error = %v, want SOURCE_CONSUMED", err)
	}
}

func TestQuery_Validation(t *testing.T) {
	db := openDB(t)
	tests := []struct {
		name string
		err  error
	}{
		{"nil db", func() error { _, err := Query[int](nil, "SELECT 1", nil, Column[int]()); return err }()},
		{"empty query", func() error { _, err := Query(db, "", nil, Column[int]()); return err }()},
		{"nil scan", func() error { _, err := Query[int](db, "SELECT 1", nil, nil); return err }()},
		{"nil rows", func() error { _, err := FromRows[int](nil, Column[int]()); return err }()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, seq.ErrInvalidArgument) {
				t.Errorf("error = %v, want INVALID_ARGUMENT", tt.err)
			}
		})
	}
}
