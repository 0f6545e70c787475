package id

import (
	"bytes"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTimeOrderedGenerator_Format(t *testing.T) {
	g := NewTimeOrderedGenerator()
	id, err := g.NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		t.Fatalf("parse %q: %v", id, err)
	}
	if parsed.Version() != 7 || parsed.Variant() != uuid.RFC4122 {
		t.Fatalf("expected an RFC 4122 version 7 id, got %s v%d", parsed.Variant(), parsed.Version())
	}
	want := time.Now().UnixMilli()
	sec, nsec := parsed.Time().UnixTime()
	if got := sec*1000 + nsec/1e6; got < want-1000 || got > want+1000 {
		t.Fatalf("embedded timestamp %d is far from now %d", got, want)
	}
}

func TestTimeOrderedGenerator_SortsInIssueOrder(t *testing.T) {
	now := time.Date(2031, 3, 6, 19, 0, 0, 0, time.UTC)
	g := NewTimeOrderedGenerator()
	g.now = func() time.Time { return now }

	ids := make([]string, 0, 50)
	for i := range 50 {
		if i%10 == 0 {
			now = now.Add(time.Millisecond)
		}
		id, err := g.NewID()
		if err != nil {
			t.Fatalf("new id: %v", err)
		}
		ids = append(ids, id)
	}

	if !slices.IsSorted(ids) {
		t.Fatalf("ids are not in issue order: %v", ids)
	}
	if len(slices.Compact(slices.Clone(ids))) != len(ids) {
		t.Fatalf("duplicate ids issued")
	}
}

func TestTimeOrderedGenerator_ClockGoingBackwardsStaysOrdered(t *testing.T) {
	now := time.Date(2031, 3, 6, 19, 0, 0, 0, time.UTC)
	g := NewTimeOrderedGenerator()
	g.now = func() time.Time { return now }

	first, _ := g.NewID()
	now = now.Add(-time.Second)
	second, _ := g.NewID()
	if second <= first {
		t.Fatalf("expected %q > %q", second, first)
	}
}

func TestTimeOrderedGenerator_EntropyFailure(t *testing.T) {
	g := NewTimeOrderedGenerator()
	g.entropy = bytes.NewReader(nil)
	if _, err := g.NewID(); err == nil {
		t.Fatalf("expected entropy error, got %v", err)
	}
}

func TestTimeOrderedGenerator_SequenceOverflowBorrowsNextMillisecond(t *testing.T) {
	now := time.Date(2031, 3, 6, 19, 0, 0, 0, time.UTC)
	g := NewTimeOrderedGenerator()
	g.now = func() time.Time { return now }

	prev, _ := g.NewID()
	for range 5000 {
		next, err := g.NewID()
		if err != nil {
			t.Fatalf("new id: %v", err)
		}
		if next <= prev {
			t.Fatalf("expected %q > %q", next, prev)
		}
		prev = next
	}
}
