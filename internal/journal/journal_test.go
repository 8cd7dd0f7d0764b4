package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "journal.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entries := []Entry{
		{JourneyID: "j1", CurrentID: "eac", SenderName: "Ana", Letter: "hi", Location: "Sydney", ReplyText: "hello", FunFact: "f", ArrivedAt: base},
		{JourneyID: "j2", CurrentID: "kuroshio", SenderName: "Ben", Letter: "yo", Location: "Tokyo", ReplyText: "hey", FunFact: "g", QuizAnswered: 2, QuizCorrect: 1, Fallback: true, ArrivedAt: base.Add(time.Minute)},
	}
	for _, e := range entries {
		if err := s.Record(ctx, e); err != nil {
			t.Fatalf("record %s: %v", e.JourneyID, err)
		}
	}
	got, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 || got[0].JourneyID != "j2" || got[1].JourneyID != "j1" {
		t.Fatalf("recent = %+v", got)
	}
	g := got[0]
	if !g.ArrivedAt.Equal(entries[1].ArrivedAt) {
		t.Fatalf("arrived at = %v, want %v", g.ArrivedAt, entries[1].ArrivedAt)
	}
	g.ArrivedAt = entries[1].ArrivedAt
	if g != entries[1] {
		t.Fatalf("round trip = %+v, want %+v", g, entries[1])
	}
	if limited, _ := s.Recent(ctx, 1); len(limited) != 1 {
		t.Fatalf("limit ignored: %d", len(limited))
	}
}

func TestRecordDuplicateFails(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	e := Entry{JourneyID: "same", CurrentID: "eac", ArrivedAt: time.Now()}
	if err := s.Record(ctx, e); err != nil {
		t.Fatal(err)
	}
	if err := s.Record(ctx, e); err == nil {
		t.Fatal("duplicate journey recorded twice")
	}
}

func TestCount(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	for i, cur := range []string{"eac", "eac", "humboldt"} {
		e := Entry{JourneyID: string(rune('a' + i)), CurrentID: cur, ArrivedAt: time.Now()}
		if err := s.Record(ctx, e); err != nil {
			t.Fatal(err)
		}
	}
	if n, _ := s.Count(ctx, "eac"); n != 2 {
		t.Fatalf("eac count = %d", n)
	}
	if n, _ := s.Count(ctx, ""); n != 3 {
		t.Fatalf("total = %d", n)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Record(context.Background(), Entry{JourneyID: "x", CurrentID: "eac", ArrivedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}
	s.Close()
	s2, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	if n, _ := s2.Count(context.Background(), ""); n != 1 {
		t.Fatalf("count after reopen = %d", n)
	}
}
