package cache

import (
	"testing"
	"time"

	"ahorrapp/internal/query"

	"github.com/shopspring/decimal"
)

func TestStoreGetSet(t *testing.T) {
	s := NewStore[int](4, time.Minute)

	if _, ok := s.Get("missing"); ok {
		t.Fatal("expected miss for unknown key")
	}

	s.Set("a", 1)
	got, ok := s.Get("a")
	if !ok || got != 1 {
		t.Fatalf("Get(a) = %d, %v; want 1, true", got, ok)
	}

	s.Set("a", 2)
	got, _ = s.Get("a")
	if got != 2 {
		t.Fatalf("Get(a) after overwrite = %d; want 2", got)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d; want 1", s.Len())
	}
}

func TestStoreEvictsLeastRecentlyUsed(t *testing.T) {
	s := NewStore[int](2, time.Minute)

	s.Set("a", 1)
	s.Set("b", 2)
	if _, ok := s.Get("a"); !ok {
		t.Fatal("expected a to be present")
	}

	// b is now the least recently used
	s.Set("c", 3)

	if _, ok := s.Get("b"); ok {
		t.Fatal("expected b to be evicted")
	}
	if _, ok := s.Get("a"); !ok {
		t.Fatal("expected a to survive eviction")
	}
	if _, ok := s.Get("c"); !ok {
		t.Fatal("expected c to be present")
	}
}

func TestStoreExpiry(t *testing.T) {
	s := NewStore[int](4, time.Millisecond)

	s.Set("a", 1)
	time.Sleep(5 * time.Millisecond)

	if _, ok := s.Get("a"); ok {
		t.Fatal("expected expired entry to miss")
	}
}

func TestStoreSweep(t *testing.T) {
	s := NewStore[int](4, time.Millisecond)

	s.Set("a", 1)
	s.Set("b", 2)
	time.Sleep(5 * time.Millisecond)

	if removed := s.Sweep(); removed != 2 {
		t.Fatalf("Sweep() = %d; want 2", removed)
	}
	if s.Len() != 0 {
		t.Fatalf("Len() after sweep = %d; want 0", s.Len())
	}
}

func TestStoreDeletePrefix(t *testing.T) {
	s := NewStore[int](8, time.Minute)

	s.Set("u1|all", 1)
	s.Set("u1|month", 2)
	s.Set("u2|all", 3)

	if removed := s.DeletePrefix("u1|"); removed != 2 {
		t.Fatalf("DeletePrefix(u1|) = %d; want 2", removed)
	}
	if _, ok := s.Get("u2|all"); !ok {
		t.Fatal("expected u2 entry to survive")
	}
}

func TestSummaryCacheInvalidate(t *testing.T) {
	c := NewSummaryCache(16, time.Minute)

	month := query.Options{Filter: query.FilterMonth, Sort: query.SortDateDesc}
	all := query.DefaultOptions()
	summary := query.Summary{Balance: decimal.NewFromInt(10), TotalTransactions: 3}

	c.Set("u1", month, summary)
	c.Set("u1", all, summary)
	c.Set("u2", all, summary)

	got, ok := c.Get("u1", month)
	if !ok || got.TotalTransactions != 3 {
		t.Fatalf("Get = %+v, %v; want cached summary", got, ok)
	}

	if removed := c.Invalidate("u1"); removed != 2 {
		t.Fatalf("Invalidate(u1) = %d; want 2", removed)
	}
	if _, ok := c.Get("u1", month); ok {
		t.Fatal("expected u1 summaries to be gone")
	}
	if _, ok := c.Get("u2", all); !ok {
		t.Fatal("expected u2 summary to survive")
	}
}

func TestSummaryCacheKeyDistinguishesViews(t *testing.T) {
	c := NewSummaryCache(16, time.Minute)

	c.Set("u1", query.Options{Filter: query.FilterAll, Sort: query.SortDateDesc}, query.Summary{TotalTransactions: 1})
	c.Set("u1", query.Options{Filter: query.FilterAll, Search: "luz", Sort: query.SortDateDesc}, query.Summary{TotalTransactions: 2})

	got, ok := c.Get("u1", query.Options{Filter: query.FilterAll, Search: "luz", Sort: query.SortDateDesc})
	if !ok || got.TotalTransactions != 2 {
		t.Fatalf("Get with search = %+v, %v; want the searched view", got, ok)
	}
}
