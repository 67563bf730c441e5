package hostaway_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"review_dashboard/internal/adapters/hostaway"
)

type fakeAPI struct {
	tokens    int32
	reviews   int32
	reject401 int32 // number of /reviews calls to answer with 401
	total     int
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/accessTokens":
		n := atomic.AddInt32(&f.tokens, 1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token_type": "Bearer", "expires_in": 3600, "access_token": "tok-" + strconv.Itoa(int(n)),
		})
	case "/reviews":
		atomic.AddInt32(&f.reviews, 1)
		if atomic.AddInt32(&f.reject401, -1) >= 0 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		var page []map[string]any
		for i := offset; i < f.total && i < offset+limit; i++ {
			page = append(page, map[string]any{"id": i, "listingName": r.URL.Query().Get("listingId")})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "success", "result": page})
	default:
		http.NotFound(w, r)
	}
}

func newClient(t *testing.T, api *fakeAPI) *hostaway.Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	ts, err := hostaway.NewTokenSource(srv.URL, "61148", "secret")
	if err != nil {
		t.Fatalf("token source: %v", err)
	}
	c, err := hostaway.New(srv.URL, ts, 100)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	return c
}

func TestGetReviews_Pages(t *testing.T) {
	api := &fakeAPI{total: 105}
	got, err := newClient(t, api).GetReviews(context.Background(), "")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(got) != 105 {
		t.Fatalf("expected 105 records, got %d", len(got))
	}
	if n := atomic.LoadInt32(&api.reviews); n != 2 {
		t.Fatalf("expected 2 page requests, got %d", n)
	}
}

func TestGetReviews_ListingScope(t *testing.T) {
	api := &fakeAPI{total: 1}
	got, err := newClient(t, api).GetReviews(context.Background(), "2B-N1-A")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(got) != 1 || got[0]["listingName"] != "2B-N1-A" {
		t.Fatalf("listingId not forwarded: %+v", got)
	}
}

func TestGetReviews_ReauthOn401(t *testing.T) {
	api := &fakeAPI{total: 3, reject401: 1}
	got, err := newClient(t, api).GetReviews(context.Background(), "")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d records", len(got))
	}
	if n := atomic.LoadInt32(&api.tokens); n != 2 {
		t.Fatalf("expected token re-acquired once, got %d acquisitions", n)
	}
}

func TestGetReviews_PersistentUnauthorized(t *testing.T) {
	api := &fakeAPI{total: 3, reject401: 5}
	if _, err := newClient(t, api).GetReviews(context.Background(), ""); err == nil {
		t.Fatalf("expected error after one retry")
	}
	if n := atomic.LoadInt32(&api.reviews); n != 2 {
		t.Fatalf("expected exactly one retry, got %d calls", n)
	}
}
