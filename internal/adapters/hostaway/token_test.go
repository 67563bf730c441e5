package hostaway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"review_dashboard/internal/domain"
)

func tokenServer(t *testing.T, hits *int32, delay time.Duration) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/accessTokens" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "client_credentials" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.PostForm.Get("client_secret") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		n := atomic.AddInt32(hits, 1)
		time.Sleep(delay)
		_ = json.NewEncoder(w).Encode(tokenResponse{
			TokenType: "Bearer", ExpiresIn: 120, AccessToken: fmt.Sprintf("tok-%d", n),
		})
	}))
}

func TestNewTokenSource_RequiresCredentials(t *testing.T) {
	if _, err := NewTokenSource("http://x", "", "k"); !errors.Is(err, domain.ErrNotConfigured) {
		t.Fatalf("got %v", err)
	}
	if _, err := NewTokenSource("http://x", "61148", ""); !errors.Is(err, domain.ErrNotConfigured) {
		t.Fatalf("got %v", err)
	}
}

func TestTokenSource_CachesUntilRefreshMargin(t *testing.T) {
	var hits int32
	srv := tokenServer(t, &hits, 0)
	defer srv.Close()

	ts, err := NewTokenSource(srv.URL, "61148", "secret")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	clock := time.Date(2024, 4, 20, 12, 0, 0, 0, time.UTC)
	ts.now = func() time.Time { return clock }

	first, err := ts.Token(context.Background())
	if err != nil || first != "tok-1" {
		t.Fatalf("first: %q %v", first, err)
	}
	clock = clock.Add(59 * time.Second)
	if again, _ := ts.Token(context.Background()); again != "tok-1" {
		t.Fatalf("expected cached token, got %q", again)
	}

	// 120s lifetime minus 60s margin
	clock = clock.Add(2 * time.Second)
	if renewed, _ := ts.Token(context.Background()); renewed != "tok-2" {
		t.Fatalf("expected refresh, got %q", renewed)
	}

	ts.Invalidate()
	if after, _ := ts.Token(context.Background()); after != "tok-3" {
		t.Fatalf("expected re-acquire after invalidate, got %q", after)
	}
}

func TestTokenSource_ConcurrentCallersShareRefresh(t *testing.T) {
	var hits int32
	srv := tokenServer(t, &hits, 50*time.Millisecond)
	defer srv.Close()

	ts, _ := NewTokenSource(srv.URL, "61148", "secret")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ts.Token(context.Background()); err != nil {
				t.Errorf("token: %v", err)
			}
		}()
	}
	wg.Wait()
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("expected a single token request, got %d", n)
	}
}

func TestTokenSource_RejectedCredentials(t *testing.T) {
	var hits int32
	srv := tokenServer(t, &hits, 0)
	defer srv.Close()

	ts, _ := NewTokenSource(srv.URL, "61148", "wrong")
	if _, err := ts.AuthHeaders(context.Background()); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("got %v", err)
	}
}
