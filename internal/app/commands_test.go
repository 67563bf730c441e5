package app_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"review_dashboard/internal/app"
	"review_dashboard/internal/domain"
)

type memStore struct {
	mu   sync.Mutex
	set  map[string]struct{}
	fail error
}

func newMemStore(ids ...string) *memStore {
	s := &memStore{set: map[string]struct{}{}}
	for _, id := range ids {
		s.set[id] = struct{}{}
	}
	return s
}

func (m *memStore) Load(ctx context.Context) (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]struct{}, len(m.set))
	for k := range m.set {
		out[k] = struct{}{}
	}
	return out, nil
}

func (m *memStore) Set(ctx context.Context, id string, approved bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	if approved {
		m.set[id] = struct{}{}
	} else {
		delete(m.set, id)
	}
	return nil
}

func (m *memStore) setFail(err error) {
	m.mu.Lock()
	m.fail = err
	m.mu.Unlock()
}

func (m *memStore) has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.set[id]
	return ok
}

func TestApprovalService_InitAndToggle(t *testing.T) {
	store := newMemStore("7453")
	svc := app.NewApprovalService(store)
	if err := svc.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	if !svc.IsApproved("7453") {
		t.Fatalf("loaded approval missing")
	}

	if err := svc.SetApproved(context.Background(), "7454", true); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := svc.SetApproved(context.Background(), "7453", false); err != nil {
		t.Fatalf("unset: %v", err)
	}
	if svc.IsApproved("7453") || !svc.IsApproved("7454") {
		t.Fatalf("in-memory state wrong: %v", svc.AllApproved())
	}
	if store.has("7453") || !store.has("7454") {
		t.Fatalf("store not updated")
	}

	// unapproving an unknown id is a no-op, not an error
	if err := svc.SetApproved(context.Background(), "never-seen", false); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
}

func TestApprovalService_RejectsEmptyID(t *testing.T) {
	svc := app.NewApprovalService(newMemStore())
	var ve *domain.ValidationError
	if err := svc.SetApproved(context.Background(), "  ", true); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if err := svc.SetMany(context.Background(), []string{"a", ""}, true); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if svc.IsApproved("a") {
		t.Fatalf("batch must be rejected as a whole")
	}
}

func TestApprovalService_PersistFailureKeepsMemoryAndFlushes(t *testing.T) {
	store := newMemStore()
	store.setFail(errors.New("connection refused"))
	svc := app.NewApprovalService(store)

	if err := svc.SetApproved(context.Background(), "7455", true); err != nil {
		t.Fatalf("persistence failure must not surface: %v", err)
	}
	if !svc.IsApproved("7455") {
		t.Fatalf("in-memory state must be updated")
	}
	if got := svc.Unsynced(); len(got) != 1 || !got["7455"] {
		t.Fatalf("unsynced: %v", got)
	}
	if err := svc.Flush(context.Background()); err == nil {
		t.Fatalf("flush against a failing store should error")
	}

	store.setFail(nil)
	if err := svc.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if len(svc.Unsynced()) != 0 || !store.has("7455") {
		t.Fatalf("flush did not persist")
	}
}

func TestApprovalService_ConcurrentWrites(t *testing.T) {
	store := newMemStore()
	svc := app.NewApprovalService(store)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = svc.SetApproved(context.Background(), fmt.Sprintf("r-%d", i), true)
		}(i)
	}
	wg.Wait()

	if n := len(svc.AllApproved()); n != 50 {
		t.Fatalf("lost updates: %d approved", n)
	}
	for i := 0; i < 50; i++ {
		if !store.has(fmt.Sprintf("r-%d", i)) {
			t.Fatalf("r-%d not persisted", i)
		}
	}
}

func TestApprovalService_SetMany(t *testing.T) {
	svc := app.NewApprovalService(newMemStore())
	if err := svc.SetMany(context.Background(), []string{"a", "b"}, true); err != nil {
		t.Fatalf("err: %v", err)
	}
	all := svc.AllApproved()
	all["c"] = struct{}{}
	if svc.IsApproved("c") {
		t.Fatalf("AllApproved must return a copy")
	}
	if !svc.IsApproved("a") || !svc.IsApproved("b") {
		t.Fatalf("batch not applied")
	}
}

type blockingStore struct {
	entered chan string
	release chan struct{}
}

func (b *blockingStore) Load(ctx context.Context) (map[string]struct{}, error) {
	return map[string]struct{}{}, nil
}

func (b *blockingStore) Set(ctx context.Context, id string, approved bool) error {
	b.entered <- id
	<-b.release
	return nil
}

func TestApprovalService_ReadsDoNotWaitOnDurableWrite(t *testing.T) {
	store := &blockingStore{entered: make(chan string, 1), release: make(chan struct{})}
	svc := app.NewApprovalService(store)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = svc.SetApproved(context.Background(), "a", true)
	}()
	<-store.entered

	reads := make(chan bool, 1)
	go func() {
		_ = svc.IsApproved("zzz")
		_ = svc.AllApproved()
		_ = svc.Unsynced()
		reads <- svc.IsApproved("a")
	}()
	select {
	case visible := <-reads:
		if !visible {
			t.Fatalf("in-memory decision should be visible before the durable write returns")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("reads blocked while a durable write is in flight")
	}

	close(store.release)
	<-done
}

func TestApprovalService_WritersSerialized(t *testing.T) {
	store := &blockingStore{entered: make(chan string, 2), release: make(chan struct{})}
	svc := app.NewApprovalService(store)

	var wg sync.WaitGroup
	for _, id := range []string{"a", "b"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_ = svc.SetApproved(context.Background(), id, true)
		}(id)
	}
	<-store.entered
	select {
	case id := <-store.entered:
		t.Fatalf("second durable write for %s started while the first was in flight", id)
	case <-time.After(100 * time.Millisecond):
	}
	close(store.release)
	wg.Wait()
}
