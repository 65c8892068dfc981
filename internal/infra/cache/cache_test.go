package cache_test

import (
	"testing"
	"time"

	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/domain"
	"github.com/boddenberg/contratos-aditivos-bfa-go/internal/infra/cache"
)

func TestCache_SetAndGet(t *testing.T) {
	c := cache.New[*domain.ContractContext](5 * time.Minute)
	defer c.Close()

	c.Set("c-1", &domain.ContractContext{ContractID: "c-1"})
	val, ok := c.Get("c-1")
	if !ok {
		t.Fatal("expected key to exist")
	}
	if val.ContractID != "c-1" {
		t.Errorf("expected contract 'c-1', got '%s'", val.ContractID)
	}
}

func TestCache_GetMiss(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Close()

	_, ok := c.Get("nonexistent")
	if ok {
		t.Fatal("expected cache miss for nonexistent key")
	}
}

func TestCache_Expiration(t *testing.T) {
	c := cache.New[string](50 * time.Millisecond)
	defer c.Close()

	c.Set("draft-1", "value1")
	time.Sleep(100 * time.Millisecond)

	if _, ok := c.Get("draft-1"); ok {
		t.Fatal("expected cache entry to be expired")
	}
	if c.Touch("draft-1") {
		t.Fatal("expired entries cannot be touched")
	}
}

func TestCache_TouchExtendsTTL(t *testing.T) {
	c := cache.New[string](80 * time.Millisecond)
	defer c.Close()

	c.Set("draft-1", "value1")
	time.Sleep(50 * time.Millisecond)
	if !c.Touch("draft-1") {
		t.Fatal("expected live entry to be touched")
	}
	time.Sleep(50 * time.Millisecond)

	if _, ok := c.Get("draft-1"); !ok {
		t.Fatal("expected touched entry to survive past the original TTL")
	}
}

func TestCache_Delete(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Close()

	c.Set("key1", "value1")
	c.Delete("key1")

	if _, ok := c.Get("key1"); ok {
		t.Fatal("expected key to be deleted")
	}
}

func TestCache_Len(t *testing.T) {
	c := cache.New[int](5 * time.Minute)
	defer c.Close()

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("a", 3)

	if got := c.Len(); got != 2 {
		t.Errorf("expected 2 entries, got %d", got)
	}
}

func TestCache_CloseTwice(t *testing.T) {
	c := cache.New[int](time.Minute)
	c.Close()
	c.Close()

	c.Set("a", 1)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("cache must stay usable after Close")
	}
}
