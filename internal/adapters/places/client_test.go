package places_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"review_dashboard/internal/adapters/places"
	"review_dashboard/internal/domain"
)

func detailsServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/details/json" || r.URL.Query().Get("key") != "k" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNew_RequiresKey(t *testing.T) {
	if _, err := places.New("http://x", "", 5); !errors.Is(err, domain.ErrNotConfigured) {
		t.Fatalf("got %v", err)
	}
}

func TestGetPlaceReviews_OK(t *testing.T) {
	srv := detailsServer(t, `{"status":"OK","result":{"name":"Shoreditch Heights","reviews":[
		{"author_name":"Ana","rating":5,"text":"Lovely","time":1712829600},
		{"author_name":"Ben","rating":3,"text":"Fine","time":1712829700}]}}`)

	c, err := places.New(srv.URL, "k", 50)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	d, err := c.GetPlaceReviews(context.Background(), "ChIJabc")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if d.PlaceID != "ChIJabc" || d.Name != "Shoreditch Heights" || len(d.Reviews) != 2 {
		t.Fatalf("unexpected details: %+v", d)
	}
	if d.Reviews[0]["author_name"] != "Ana" {
		t.Fatalf("raw review not preserved: %+v", d.Reviews[0])
	}
}

func TestGetPlaceReviews_StatusMapping(t *testing.T) {
	cases := []struct {
		body string
		want error
	}{
		{`{"status":"NOT_FOUND"}`, domain.ErrNotFound},
		{`{"status":"INVALID_REQUEST"}`, domain.ErrNotFound},
		{`{"status":"REQUEST_DENIED","error_message":"bad key"}`, domain.ErrUnauthorized},
	}
	for _, tc := range cases {
		srv := detailsServer(t, tc.body)
		c, _ := places.New(srv.URL, "k", 50)
		if _, err := c.GetPlaceReviews(context.Background(), "p"); !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v", tc.body, err)
		}
	}

	srv := detailsServer(t, `{"status":"OVER_QUERY_LIMIT"}`)
	c, _ := places.New(srv.URL, "k", 50)
	if _, err := c.GetPlaceReviews(context.Background(), "p"); err == nil {
		t.Fatalf("expected error for unexpected status")
	}
}
