package realtime

import (
	"fmt"
	"io"
	"sync"
	"testing"
)

func newTestClient(id string) *Client {
	return newClient(id, io.Discard)
}

func TestRegistry_CountFollowsRegistrations(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if r.Count() != 0 {
		t.Fatalf("empty registry count = %d", r.Count())
	}

	const n = 10
	for i := 0; i < n; i++ {
		r.Register(fmt.Sprintf("conn-%d", i), newTestClient(fmt.Sprintf("conn-%d", i)))
	}
	if r.Count() != n {
		t.Fatalf("count = %d, want %d", r.Count(), n)
	}

	r.Remove("conn-3")
	if r.Count() != n-1 {
		t.Fatalf("count after remove = %d, want %d", r.Count(), n-1)
	}

	r.Remove("unknown")
	if r.Count() != n-1 {
		t.Fatalf("removing an unknown id must not change the count: %d", r.Count())
	}

	r.Remove("conn-3")
	if r.Count() != n-1 {
		t.Fatalf("removing an already removed id must not change the count: %d", r.Count())
	}
}

func TestRegistry_DuplicateRegisterReplaces(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	first := newTestClient("conn-1")
	second := newTestClient("conn-1")

	if replaced := r.Register("conn-1", first); replaced != nil {
		t.Fatalf("first register must not replace anything")
	}
	replaced := r.Register("conn-1", second)
	if replaced != first {
		t.Fatalf("expected the first client to be replaced")
	}
	if r.Count() != 1 {
		t.Fatalf("duplicate register must not duplicate the entry: count = %d", r.Count())
	}
}

func TestRegistry_ConcurrentMutations(t *testing.T) {
	t.Parallel()

	r := NewRegistry()

	const workers = 50
	var wg sync.WaitGroup

	// every worker registers two ids and removes one of them
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			keep := fmt.Sprintf("keep-%d", i)
			drop := fmt.Sprintf("drop-%d", i)
			r.Register(keep, newTestClient(keep))
			r.Register(drop, newTestClient(drop))
			_ = r.Count()
			r.Remove(drop)
		}(i)
	}
	wg.Wait()

	if r.Count() != workers {
		t.Fatalf("count = %d, want %d", r.Count(), workers)
	}
	if got := len(r.Clients()); got != workers {
		t.Fatalf("snapshot size = %d, want %d", got, workers)
	}
}
