package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestCursorRoundTrip(t *testing.T) {
	want := Cursor{CreatedAt: time.Date(2026, 3, 4, 5, 6, 7, 8, time.UTC), ID: uuid.New()}

	got, err := ParseCursor(EncodeCursor(want))
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) || got.ID != want.ID {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestParseCursorEmptyAndInvalid(t *testing.T) {
	got, err := ParseCursor("  ")
	if err != nil || got != nil {
		t.Fatalf("expected nil cursor for blank input, got %v %v", got, err)
	}
	if _, err := ParseCursor("not-base64!"); err == nil {
		t.Fatal("expected invalid cursor error")
	}
}

func TestNormalizeLimit(t *testing.T) {
	if NormalizeLimit(0) != DefaultLimit {
		t.Fatalf("expected default limit")
	}
	if NormalizeLimit(MaxLimit+10) != MaxLimit {
		t.Fatalf("expected max limit")
	}
	if LimitWithBuffer(10) != 11 {
		t.Fatalf("expected buffered limit 11")
	}
}

func TestTrim(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []Cursor{
		{CreatedAt: base.Add(3 * time.Second), ID: uuid.New()},
		{CreatedAt: base.Add(2 * time.Second), ID: uuid.New()},
		{CreatedAt: base.Add(time.Second), ID: uuid.New()},
	}
	key := func(c Cursor) Cursor { return c }

	page, next := Trim(rows, 2, key)
	if len(page) != 2 || next == "" {
		t.Fatalf("expected two rows and a cursor, got %d %q", len(page), next)
	}
	parsed, err := ParseCursor(next)
	if err != nil {
		t.Fatalf("parse next: %v", err)
	}
	if parsed.ID != rows[1].ID {
		t.Fatalf("expected cursor at second row")
	}

	page, next = Trim(rows, 5, key)
	if len(page) != 3 || next != "" {
		t.Fatalf("expected final page without cursor, got %d %q", len(page), next)
	}
}
