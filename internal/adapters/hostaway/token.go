package hostaway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"review_dashboard/internal/domain"
)

// refreshMargin renews a token this long before it actually expires.
const refreshMargin = 60 * time.Second

type tokenResponse struct {
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	AccessToken string `json:"access_token"`
}

// TokenSource caches the client-credentials access token and re-acquires it
// when it is absent, invalidated, or within refreshMargin of expiry.
type TokenSource struct {
	url      string
	clientID string
	secret   string
	hc       *http.Client
	now      func() time.Time

	mu        sync.RWMutex
	token     string
	expiresAt time.Time
	sf        singleflight.Group
}

func NewTokenSource(base, accountID, apiKey string) (*TokenSource, error) {
	if accountID == "" || apiKey == "" {
		return nil, domain.ErrNotConfigured
	}
	return &TokenSource{
		url:      strings.TrimRight(base, "/") + "/accessTokens",
		clientID: accountID,
		secret:   apiKey,
		hc:       &http.Client{Timeout: 10 * time.Second},
		now:      time.Now,
	}, nil
}

func (ts *TokenSource) cached() (string, bool) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	if ts.token == "" || !ts.now().Before(ts.expiresAt.Add(-refreshMargin)) {
		return "", false
	}
	return ts.token, true
}

// Token returns a valid access token; concurrent refreshes share one request.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	if t, ok := ts.cached(); ok {
		return t, nil
	}
	v, err, _ := ts.sf.Do("token", func() (any, error) {
		if t, ok := ts.cached(); ok {
			return t, nil
		}
		return ts.acquire(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (ts *TokenSource) AuthHeaders(ctx context.Context) (http.Header, error) {
	t, err := ts.Token(ctx)
	if err != nil {
		return nil, err
	}
	h := http.Header{}
	h.Set("Authorization", "Bearer "+t)
	h.Set("Cache-Control", "no-cache")
	return h, nil
}

// Invalidate drops the cached token so the next call re-acquires it.
func (ts *TokenSource) Invalidate() {
	ts.mu.Lock()
	ts.token = ""
	ts.expiresAt = time.Time{}
	ts.mu.Unlock()
}

func (ts *TokenSource) acquire(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", ts.clientID)
	form.Set("client_secret", ts.secret)
	form.Set("scope", "general")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.url, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := ts.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", fmt.Errorf("token request: %w", domain.ErrUnauthorized)
	}
	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("token request: status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	if tr.AccessToken == "" {
		return "", errors.New("token request: empty access_token")
	}

	exp := ts.now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	ts.mu.Lock()
	ts.token = tr.AccessToken
	ts.expiresAt = exp
	ts.mu.Unlock()
	log.Debug().Time("expires_at", exp).Msg("hostaway token acquired")
	return tr.AccessToken, nil
}
