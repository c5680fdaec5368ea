package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/law-makers/reviews/pkg/models"
)

func collection(provider string, n int) *models.ProviderReviewList {
	reviews := make([]models.Review, n)
	for i := range reviews {
		reviews[i] = models.Review{CreatedAt: time.Now()}
	}
	return &models.ProviderReviewList{Provider: provider, Reviews: reviews}
}

func TestMemoryCacheGetSet(t *testing.T) {
	mc := NewMemoryCache(10)
	defer mc.Close()

	if _, ok := mc.Get("http://x.test/a"); ok {
		t.Error("hit on empty cache")
	}

	if err := mc.Set("http://x.test/a", collection("acme", 3), time.Minute); err != nil {
		t.Fatal(err)
	}

	got, ok := mc.Get("http://x.test/a")
	if !ok {
		t.Fatal("miss after set")
	}
	if got.Provider != "acme" || len(got.Reviews) != 3 {
		t.Errorf("got %s with %d reviews", got.Provider, len(got.Reviews))
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache(10)
	defer mc.Close()

	if err := mc.Set("http://x.test/a", collection("acme", 1), 10*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)

	if _, ok := mc.Get("http://x.test/a"); ok {
		t.Error("hit on expired entry")
	}
}

func TestMemoryCacheLRUEviction(t *testing.T) {
	mc := NewMemoryCache(2)
	defer mc.Close()

	for i := 0; i < 3; i++ {
		url := fmt.Sprintf("http://x.test/%d", i)
		if err := mc.Set(url, collection("acme", 1), time.Minute); err != nil {
			t.Fatal(err)
		}
	}

	if _, ok := mc.Get("http://x.test/0"); ok {
		t.Error("oldest entry not evicted")
	}
	for i := 1; i < 3; i++ {
		if _, ok := mc.Get(fmt.Sprintf("http://x.test/%d", i)); !ok {
			t.Errorf("entry %d evicted unexpectedly", i)
		}
	}
}

func TestMemoryCacheClear(t *testing.T) {
	mc := NewMemoryCache(10)
	defer mc.Close()

	mc.Set("http://x.test/a", collection("acme", 1), time.Minute)
	if err := mc.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, ok := mc.Get("http://x.test/a"); ok {
		t.Error("hit after clear")
	}
}
