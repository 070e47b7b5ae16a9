package openai

import (
	"sync"
	"testing"

	"github.com/nanaosei-dev/chatvendor/internal/config"
)

func TestProviderPool_RoundRobin(t *testing.T) {
	pool := NewProviderPool([]config.AIProviderConfig{
		{Name: "a"}, {Name: "b"}, {Name: "c"},
	})

	got := []string{
		pool.Next().Name, pool.Next().Name, pool.Next().Name,
		pool.Next().Name,
	}
	want := []string{"a", "b", "c", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rotation = %v, want %v", got, want)
		}
	}
}

func TestProviderPool_ConcurrentNextCoversAllSlots(t *testing.T) {
	pool := NewProviderPool([]config.AIProviderConfig{
		{Name: "a"}, {Name: "b"},
	})

	const turns = 100
	counts := make(map[string]int)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cred := pool.Next()
			mu.Lock()
			counts[cred.Name]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	// Exact even split: the counter is atomic, so 100 draws over 2
	// slots land 50/50 no matter the interleaving.
	if counts["a"] != turns/2 || counts["b"] != turns/2 {
		t.Fatalf("counts = %v, want an even split", counts)
	}
}
